package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/evetabi/jackpot/internal/configresolver"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/evetabi/jackpot/internal/metrics"
	"github.com/evetabi/jackpot/internal/policy"
	"github.com/evetabi/jackpot/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ContributionService orchestrates crediting a bet's stake to its jackpot
// pool. Validation, the idempotency check, the jackpot read and the formula
// run happen before any transaction is opened; only the contribution insert
// and the pool update run inside a single PostgreSQL transaction, with the
// pool update guarded by the jackpot's optimistic version.
type ContributionService struct {
	db            *sqlx.DB
	jackpots      JackpotStore
	contributions ContributionStore
	resolver      *configresolver.Resolver
	registry      *policy.Registry
}

// NewContributionService creates a ContributionService.
func NewContributionService(
	db *sqlx.DB,
	jackpots JackpotStore,
	contributions ContributionStore,
	resolver *configresolver.Resolver,
	registry *policy.Registry,
) *ContributionService {
	return &ContributionService{
		db:            db,
		jackpots:      jackpots,
		contributions: contributions,
		resolver:      resolver,
		registry:      registry,
	}
}

// Contribute credits event's stake to its jackpot and records a
// Contribution row. Idempotent on BetID: a repeated call for a BetID that
// already has a Contribution returns that row unchanged, with no further
// jackpot touch or strategy invocation.
func (s *ContributionService) Contribute(ctx context.Context, event *domain.BetEvent) (*domain.Contribution, error) {
	// ── 1. Validate input ────────────────────────────────────────────────────
	if err := event.Validate(); err != nil {
		return nil, err
	}

	// ── 2. Idempotency: return an existing contribution unchanged ───────────
	existing, err := s.contributions.FindByBetID(ctx, event.BetID)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: find existing: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	// ── 3. Load the jackpot, config eagerly attached ─────────────────────────
	jackpot, err := s.jackpots.FindByIDWithConfig(ctx, event.JackpotID)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: load jackpot: %w", err)
	}

	// ── 4. Resolve and invoke the contribution formula ───────────────────────
	entry, err := s.resolver.Resolve(jackpot, domain.SlotContribution)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: resolve config: %w", err)
	}
	formula, err := s.registry.Contribution(entry.PolicyKey)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: resolve formula: %w", err)
	}
	contributionAmount, err := formula.Compute(event.BetAmount, jackpot, entry.ConfigBlob)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: compute: %w", err)
	}
	if contributionAmount.IsNegative() {
		return nil, fmt.Errorf("%w: formula %s computed %s for bet %d",
			domain.ErrPolicyViolation, entry.PolicyKey, contributionAmount, event.BetID)
	}

	// ── 5. Snapshot pool and cycle before mutating them ──────────────────────
	poolBefore := jackpot.CurrentAmount
	cycleSnapshot := jackpot.Cycle

	contribution := &domain.Contribution{
		ID:                 uuid.New(),
		BetID:              event.BetID,
		UserID:             event.UserID,
		JackpotID:          event.JackpotID,
		StakeAmount:        event.BetAmount,
		ContributionAmount: contributionAmount,
		PoolSnapshot:       poolBefore,
		CycleSnapshot:      cycleSnapshot,
		Evaluated:          false,
		Winning:            false,
		CreatedAt:          time.Now().UTC(),
	}

	// ── 6/7. Persist inside a transaction ────────────────────────────────────
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.contributions.Save(ctx, tx, contribution); err != nil {
		if errors.Is(err, repository.ErrDuplicateContribution) {
			_ = tx.Rollback()
			// Concurrent redelivery already inserted this bet's contribution;
			// recover by re-reading it rather than treating this as a failure.
			recovered, findErr := s.contributions.FindByBetID(ctx, event.BetID)
			if findErr != nil {
				return nil, fmt.Errorf("contribution_service.Contribute: recover duplicate: %w", findErr)
			}
			if recovered == nil {
				return nil, fmt.Errorf("%w: contribution for bet %d vanished after duplicate-key recovery",
					domain.ErrIntegrity, event.BetID)
			}
			err = nil // handled; suppress the deferred rollback
			return recovered, nil
		}
		return nil, fmt.Errorf("contribution_service.Contribute: save contribution: %w", err)
	}

	jackpot.CurrentAmount = poolBefore.Add(contributionAmount)
	if err = s.jackpots.Save(ctx, tx, jackpot); err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: save jackpot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("contribution_service.Contribute: commit: %w", err)
	}

	jackpotLabel := strconv.FormatInt(event.JackpotID, 10)
	metrics.ContributionsTotal.WithLabelValues(jackpotLabel).Inc()
	metrics.PoolCurrent.WithLabelValues(jackpotLabel).Set(jackpot.CurrentAmount.InexactFloat64())

	return contribution, nil
}
