package handler

import (
	"context"
	"net/http"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Publisher is the subset of bus.Producer the handler depends on, declared
// here so this package does not need to import internal/bus directly.
type Publisher interface {
	Publish(ctx context.Context, event *domain.BetEvent) error
}

// BetHandler serves the bet-acceptance endpoint.
type BetHandler struct {
	publisher Publisher
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(pub Publisher) *BetHandler {
	return &BetHandler{publisher: pub}
}

// PlaceBet godoc
// POST /api/bets
// Body: {"bet_id":101,"user_id":50,"jackpot_id":1,"bet_amount":"250.00"}
// Publishes to the bus and returns 202 with an empty body: synchronous
// acceptance does not imply persistence.
func (h *BetHandler) PlaceBet(c *gin.Context) {
	var body struct {
		BetID     int64  `json:"bet_id"     binding:"required"`
		UserID    int64  `json:"user_id"    binding:"required"`
		JackpotID int64  `json:"jackpot_id" binding:"required"`
		BetAmount string `json:"bet_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.BetAmount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "bet_amount must be a decimal string")
		return
	}

	event := &domain.BetEvent{
		BetID:     body.BetID,
		UserID:    body.UserID,
		JackpotID: body.JackpotID,
		BetAmount: amount,
	}
	if err := event.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not accept bet")
		return
	}
	c.Status(http.StatusAccepted)
}
