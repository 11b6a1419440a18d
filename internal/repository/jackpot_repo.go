package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/jmoiron/sqlx"
)

// JackpotRepository handles all database operations for Jackpots and their
// JackpotConfig/ConfigEntry graph.
type JackpotRepository struct {
	db *sqlx.DB
}

// NewJackpotRepository creates a new JackpotRepository.
func NewJackpotRepository(db *sqlx.DB) *JackpotRepository {
	return &JackpotRepository{db: db}
}

// FindByIDWithConfig fetches a jackpot and eagerly loads its JackpotConfig
// and both ConfigEntry rows, so callers never issue a further fetch to
// resolve a slot.
func (r *JackpotRepository) FindByIDWithConfig(ctx context.Context, id int64) (*domain.Jackpot, error) {
	return r.findByID(ctx, r.db, id, "")
}

// FindByIDForUpdate fetches a jackpot and its config under FOR UPDATE,
// for use inside an existing transaction that will mutate CurrentAmount
// or Cycle.
func (r *JackpotRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Jackpot, error) {
	return r.findByID(ctx, tx, id, "FOR UPDATE")
}

// queryer is the subset of *sqlx.DB / *sqlx.Tx this repository needs, so the
// same loading logic serves both the plain read and the locked read.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (r *JackpotRepository) findByID(ctx context.Context, q queryer, id int64, lockClause string) (*domain.Jackpot, error) {
	var j domain.Jackpot
	query := `SELECT * FROM jackpots WHERE id = $1`
	if lockClause != "" {
		query += " " + lockClause
	}
	if err := q.GetContext(ctx, &j, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: jackpot %d", domain.ErrJackpotNotFound, id)
		}
		return nil, fmt.Errorf("jackpot_repo.findByID: %w", err)
	}

	var cfg domain.JackpotConfig
	if err := q.GetContext(ctx, &cfg, `SELECT id, name FROM jackpot_configs WHERE id = $1`, j.ConfigID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: jackpot %d config %q", domain.ErrConfigMissing, id, j.ConfigID)
		}
		return nil, fmt.Errorf("jackpot_repo.findByID config: %w", err)
	}

	var entries []*domain.ConfigEntry
	if err := q.SelectContext(ctx, &entries, `SELECT * FROM config_entries WHERE config_id = $1`, j.ConfigID); err != nil {
		return nil, fmt.Errorf("jackpot_repo.findByID entries: %w", err)
	}
	cfg.Entries = make(map[domain.Slot]*domain.ConfigEntry, len(entries))
	for _, e := range entries {
		cfg.Entries[e.Slot] = e
	}

	j.Config = &cfg
	return &j, nil
}

// ErrVersionConflict is returned by Save when the jackpot's version has
// already advanced past the one it was read at. It wraps no domain sentinel,
// so domain.IsSurfaced reports false for it.
var ErrVersionConflict = errors.New("jackpot version conflict")

// Save persists a jackpot's CurrentAmount, Cycle and Version inside an
// existing transaction, using optimistic concurrency on the version column:
// the WHERE clause pins the row to the version it was read at, and a
// RowsAffected of zero means another writer won the race.
func (r *JackpotRepository) Save(ctx context.Context, tx *sqlx.Tx, j *domain.Jackpot) error {
	query := `
		UPDATE jackpots
		SET current_amount = $1,
		    cycle          = $2,
		    version        = version + 1,
		    updated_at     = now()
		WHERE id = $3 AND version = $4`
	res, err := tx.ExecContext(ctx, query, j.CurrentAmount, j.Cycle, j.ID, j.Version)
	if err != nil {
		return fmt.Errorf("jackpot_repo.Save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("jackpot_repo.Save rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: jackpot %d version %d already advanced", ErrVersionConflict, j.ID, j.Version)
	}
	j.Version++
	return nil
}
