package api

import (
	"net/http"

	"github.com/evetabi/jackpot/internal/api/handler"
	"github.com/evetabi/jackpot/internal/api/middleware"
	"github.com/evetabi/jackpot/internal/config"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	Publisher handler.Publisher
	Evaluator handler.Evaluator
	Cfg       *config.Config
}

// SetupRouter creates and configures the main Gin engine with the bet
// acceptance and evaluation-result routes — the only HTTP surface the
// core engine exposes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	betH := handler.NewBetHandler(deps.Publisher)
	evalH := handler.NewEvaluationHandler(deps.Evaluator)

	betRL := middleware.RateLimitMiddleware(deps.Cfg.Server.BetRateLimitRPS)

	api := r.Group("/api")
	{
		bets := api.Group("/bets")
		bets.Use(betRL)
		bets.POST("", betH.PlaceBet)

		api.GET("/evaluations/:betId", evalH.GetEvaluation)
	}

	return r
}
