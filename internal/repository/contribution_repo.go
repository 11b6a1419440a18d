package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique_violation error.
const uniqueViolation = "23505"

// ErrDuplicateContribution is returned by Save when a Contribution already
// exists for the given BetID (the unique (bet_id) constraint fired).
var ErrDuplicateContribution = errors.New("contribution already exists for bet")

// ContributionRepository handles all database operations for Contributions.
type ContributionRepository struct {
	db *sqlx.DB
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(db *sqlx.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// FindByBetID fetches a contribution by its unique BetID. Returns
// (nil, nil) when none exists — callers branch on nil rather than an error,
// since "not yet contributed" is an expected state, not a failure, for the
// ingestion-await loop polling this method while waiting on the bus.
func (r *ContributionRepository) FindByBetID(ctx context.Context, betID int64) (*domain.Contribution, error) {
	var c domain.Contribution
	err := r.db.GetContext(ctx, &c, `SELECT * FROM jackpot_contributions WHERE bet_id = $1`, betID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("contribution_repo.FindByBetID: %w", err)
	}
	return &c, nil
}

// FindByBetIDForUpdate fetches a contribution under FOR UPDATE inside an
// existing transaction, for callers that are about to flip Evaluated/Winning.
func (r *ContributionRepository) FindByBetIDForUpdate(ctx context.Context, tx *sqlx.Tx, betID int64) (*domain.Contribution, error) {
	var c domain.Contribution
	err := tx.GetContext(ctx, &c, `SELECT * FROM jackpot_contributions WHERE bet_id = $1 FOR UPDATE`, betID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("contribution_repo.FindByBetIDForUpdate: %w", err)
	}
	return &c, nil
}

// Save inserts a new contribution inside an existing transaction. Returns
// ErrDuplicateContribution when the unique bet_id constraint fires — the
// caller re-reads the existing row rather than treating this as a hard
// failure.
func (r *ContributionRepository) Save(ctx context.Context, tx *sqlx.Tx, c *domain.Contribution) error {
	query := `
		INSERT INTO jackpot_contributions
			(id, bet_id, user_id, jackpot_id, stake_amount, contribution_amount,
			 pool_snapshot, cycle_snapshot, evaluated, winning, created_at)
		VALUES
			(:id, :bet_id, :user_id, :jackpot_id, :stake_amount, :contribution_amount,
			 :pool_snapshot, :cycle_snapshot, :evaluated, :winning, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateContribution
		}
		return fmt.Errorf("contribution_repo.Save: %w", err)
	}
	return nil
}

// MarkEvaluated flips Evaluated (and Winning, when won) inside an existing
// transaction. One-way: NEW -> EVALUATED or NEW -> EVALUATED ∧ WINNING.
func (r *ContributionRepository) MarkEvaluated(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, winning bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE jackpot_contributions SET evaluated = true, winning = $1 WHERE id = $2`,
		winning, id)
	if err != nil {
		return fmt.Errorf("contribution_repo.MarkEvaluated: %w", err)
	}
	return nil
}
