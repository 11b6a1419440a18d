package service

import (
	"context"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ──────────────────────────────────────────────────────────────────────────────
// Persistence contracts the services depend on. Declared as interfaces,
// satisfied implicitly by the concrete *repository.XRepository types, so
// tests can inject in-memory fakes without a database.
// ──────────────────────────────────────────────────────────────────────────────

// JackpotStore is the persistence contract for Jackpots.
type JackpotStore interface {
	FindByIDWithConfig(ctx context.Context, id int64) (*domain.Jackpot, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Jackpot, error)
	Save(ctx context.Context, tx *sqlx.Tx, j *domain.Jackpot) error
}

// ContributionStore is the persistence contract for Contributions.
type ContributionStore interface {
	FindByBetID(ctx context.Context, betID int64) (*domain.Contribution, error)
	FindByBetIDForUpdate(ctx context.Context, tx *sqlx.Tx, betID int64) (*domain.Contribution, error)
	Save(ctx context.Context, tx *sqlx.Tx, c *domain.Contribution) error
	MarkEvaluated(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, winning bool) error
}

// RewardStore is the persistence contract for Rewards.
type RewardStore interface {
	ExistsByJackpotAndCycle(ctx context.Context, tx *sqlx.Tx, jackpotID, cycle int64) (bool, error)
	Save(ctx context.Context, tx *sqlx.Tx, r *domain.Reward) error
}
