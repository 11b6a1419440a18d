// Package metrics exposes Prometheus counters and gauges for jackpot
// contributions, rewards, and pool state, served on a dedicated mux rather
// than multiplexed into the gin engine.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ContributionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackpot_contributions_total",
			Help: "Total number of contributions credited to a jackpot pool.",
		},
		[]string{"jackpot_id"},
	)

	RewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackpot_rewards_total",
			Help: "Total number of winning finalizations paid out.",
		},
		[]string{"jackpot_id"},
	)

	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jackpot_evaluations_total",
			Help: "Total number of evaluateAndReward calls, by outcome category.",
		},
		[]string{"category"},
	)

	PoolCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jackpot_pool_current",
			Help: "Current pool amount for a jackpot, updated after each contribution or finalization.",
		},
		[]string{"jackpot_id"},
	)
)

// Server serves the Prometheus exposition endpoint on its own listener.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a metrics Server bound to addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the metrics server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.httpServer.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
