package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/gin-gonic/gin"
)

// Evaluator is the subset of EvaluationService the handler depends on.
type Evaluator interface {
	EvaluateAndReward(ctx context.Context, betID int64) (*domain.EvaluateResponse, error)
}

// EvaluationHandler serves the evaluation-result endpoint.
type EvaluationHandler struct {
	evaluator Evaluator
}

// NewEvaluationHandler creates an EvaluationHandler.
func NewEvaluationHandler(evaluator Evaluator) *EvaluationHandler {
	return &EvaluationHandler{evaluator: evaluator}
}

// GetEvaluation godoc
// GET /api/evaluations/{betId}
// Renders the EvaluateResponse verbatim: payout == 0 on any non-winning
// outcome, message carries a stable category prefix.
func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	betID, err := strconv.ParseInt(c.Param("betId"), 10, 64)
	if err != nil || betID <= 0 {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BET_ID", "betId must be a positive integer")
		return
	}

	resp, err := h.evaluator.EvaluateAndReward(c.Request.Context(), betID)
	if err != nil {
		// Every recoverable outcome already comes back as a ZERO
		// EvaluateResponse with no error; anything reaching here is a
		// genuine failure (integrity violation, resolver/config error, DB
		// fault).
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not evaluate bet")
		return
	}
	c.JSON(http.StatusOK, resp)
}
