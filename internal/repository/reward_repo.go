package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicateReward is returned by Save when a Reward already exists for
// the given BetID, or when the (jackpot_id, cycle_at_win) pair has already
// been rewarded — either unique constraint firing means another writer won
// the race under the same pessimistic lock window.
var ErrDuplicateReward = errors.New("reward already exists")

// RewardRepository handles all database operations for Rewards.
type RewardRepository struct {
	db *sqlx.DB
}

// NewRewardRepository creates a new RewardRepository.
func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// ExistsByJackpotAndCycle reports whether a reward has already been issued
// for this jackpot's current cycle, checked inside the finalization
// transaction after the jackpot row is locked.
func (r *RewardRepository) ExistsByJackpotAndCycle(ctx context.Context, tx *sqlx.Tx, jackpotID, cycle int64) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM jackpot_rewards WHERE jackpot_id = $1 AND cycle_at_win = $2)`,
		jackpotID, cycle)
	if err != nil {
		return false, fmt.Errorf("reward_repo.ExistsByJackpotAndCycle: %w", err)
	}
	return exists, nil
}

// Save inserts a new reward inside an existing transaction. Returns
// ErrDuplicateReward when either unique constraint fires.
func (r *RewardRepository) Save(ctx context.Context, tx *sqlx.Tx, rw *domain.Reward) error {
	query := `
		INSERT INTO jackpot_rewards
			(id, bet_id, user_id, jackpot_id, amount, cycle_at_win, created_at)
		VALUES
			(:id, :bet_id, :user_id, :jackpot_id, :amount, :cycle_at_win, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, rw); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReward
		}
		return fmt.Errorf("reward_repo.Save: %w", err)
	}
	return nil
}
