package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evetabi/jackpot/internal/configresolver"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/evetabi/jackpot/internal/metrics"
	"github.com/evetabi/jackpot/internal/policy"
	"github.com/evetabi/jackpot/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// AwaitConfig controls the ingestion-await loop's exponential backoff.
type AwaitConfig struct {
	InitialBackoff time.Duration // default 50ms
	MaxBackoff     time.Duration // default 250ms
	Deadline       time.Duration // default 3000ms, cumulative
}

// EvaluationService orchestrates the win/lose roll and reward finalization
// for a single bet. The public operation runs inside one transaction, aside
// from the ingestion-await loop that precedes it.
type EvaluationService struct {
	db            *sqlx.DB
	jackpots      JackpotStore
	contributions ContributionStore
	rewards       RewardStore
	resolver      *configresolver.Resolver
	registry      *policy.Registry
	rng           policy.Source
	await         AwaitConfig
}

// NewEvaluationService creates an EvaluationService.
func NewEvaluationService(
	db *sqlx.DB,
	jackpots JackpotStore,
	contributions ContributionStore,
	rewards RewardStore,
	resolver *configresolver.Resolver,
	registry *policy.Registry,
	rng policy.Source,
	await AwaitConfig,
) *EvaluationService {
	return &EvaluationService{
		db:            db,
		jackpots:      jackpots,
		contributions: contributions,
		rewards:       rewards,
		resolver:      resolver,
		registry:      registry,
		rng:           rng,
		await:         await,
	}
}

// EvaluateAndReward rolls the win/lose decision for betID and finalizes the
// reward when it wins. Every outcome other than a genuine failure is
// returned as a ZERO-or-WIN EvaluateResponse, never a Go error.
func (s *EvaluationService) EvaluateAndReward(ctx context.Context, betID int64) (*domain.EvaluateResponse, error) {
	resp, err := s.evaluateAndReward(ctx, betID)
	if resp != nil {
		recordEvaluationMetrics(resp)
	}
	return resp, err
}

func recordEvaluationMetrics(resp *domain.EvaluateResponse) {
	category, _, _ := strings.Cut(resp.Message, ":")
	metrics.EvaluationsTotal.WithLabelValues(category).Inc()
	if resp.IsWin() {
		metrics.RewardsTotal.WithLabelValues(strconv.FormatInt(resp.JackpotID, 10)).Inc()
	}
}

func (s *EvaluationService) evaluateAndReward(ctx context.Context, betID int64) (*domain.EvaluateResponse, error) {
	// ── 1. Ingestion await ────────────────────────────────────────────────────
	contribution, err := s.awaitContribution(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: await: %w", err)
	}
	if contribution == nil {
		return zeroResponse(betID, domain.CategoryPendingIngestion, "contribution not yet ingested"), nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ── 2. Per-bet idempotency, locked against concurrent evaluators ─────────
	locked, err := s.contributions.FindByBetIDForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: lock contribution: %w", err)
	}
	if locked == nil {
		// Vanished between the await loop and the lock — treat as still pending.
		_ = tx.Rollback()
		err = nil
		return zeroResponse(betID, domain.CategoryPendingIngestion, "contribution not yet ingested"), nil
	}
	if locked.Winning {
		resp, ferr := s.finish(tx, zeroResponse(betID, domain.CategoryAlreadyRewarded, "bet already won"))
		err = ferr
		return resp, err
	}
	if locked.Evaluated {
		resp, ferr := s.finish(tx, zeroResponse(betID, domain.CategoryAlreadyEvaluated, "bet already evaluated"))
		err = ferr
		return resp, err
	}

	// ── 3. Load jackpot (unlocked read) ───────────────────────────────────────
	jackpot, loadErr := s.jackpots.FindByIDWithConfig(ctx, locked.JackpotID)
	if loadErr != nil {
		if domain.IsNotFound(loadErr) {
			resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
				zeroResponse(betID, domain.CategoryJackpotMissing, "jackpot not found"))
			err = ferr
			return resp, err
		}
		err = loadErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: load jackpot: %w", err)
	}

	// ── 4. Pre-lock cycle fairness ────────────────────────────────────────────
	if jackpot.Cycle != locked.CycleSnapshot {
		resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
			zeroResponse(betID, domain.CategoryCycleClosed, "jackpot cycle has advanced since this bet's contribution"))
		err = ferr
		return resp, err
	}

	// ── 5. Reward roll (unlocked) ─────────────────────────────────────────────
	entry, resolveErr := s.resolver.Resolve(jackpot, domain.SlotReward)
	if resolveErr != nil {
		err = resolveErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: resolve config: %w", err)
	}
	formula, resolveErr := s.registry.Reward(entry.PolicyKey)
	if resolveErr != nil {
		err = resolveErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: resolve formula: %w", err)
	}
	won, rollErr := formula.IsWinner(jackpot, entry.ConfigBlob, s.rng)
	if rollErr != nil {
		err = rollErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: roll: %w", err)
	}
	if !won {
		resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
			zeroResponse(betID, domain.CategoryLose, "roll did not win"))
		err = ferr
		return resp, err
	}

	// ── 6. Pessimistic finalization ───────────────────────────────────────────
	lockedJackpot, lockErr := s.jackpots.FindByIDForUpdate(ctx, tx, locked.JackpotID)
	if lockErr != nil {
		if domain.IsNotFound(lockErr) {
			resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
				zeroResponse(betID, domain.CategoryJackpotMissingUnderLock, "jackpot vanished under lock"))
			err = ferr
			return resp, err
		}
		err = lockErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: lock jackpot: %w", err)
	}
	if lockedJackpot.Cycle != locked.CycleSnapshot {
		resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
			zeroResponse(betID, domain.CategoryCycleClosed, "jackpot cycle advanced under lock"))
		err = ferr
		return resp, err
	}

	alreadyRewarded, existsErr := s.rewards.ExistsByJackpotAndCycle(ctx, tx, lockedJackpot.ID, locked.CycleSnapshot)
	if existsErr != nil {
		err = existsErr
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: check reward existence: %w", err)
	}
	if alreadyRewarded {
		resp, ferr := s.markEvaluatedAndFinish(ctx, tx, locked,
			zeroResponse(betID, domain.CategoryCycleAlreadyRewarded, "another evaluator already won this cycle"))
		err = ferr
		return resp, err
	}

	payout := lockedJackpot.CurrentAmount
	reward := &domain.Reward{
		ID:         uuid.New(),
		BetID:      locked.BetID,
		UserID:     locked.UserID,
		JackpotID:  lockedJackpot.ID,
		Amount:     payout,
		CycleAtWin: locked.CycleSnapshot,
		CreatedAt:  time.Now().UTC(),
	}
	if err = s.rewards.Save(ctx, tx, reward); err != nil {
		if errors.Is(err, repository.ErrDuplicateReward) {
			err = fmt.Errorf("%w: reward for (jackpot %d, cycle %d) already exists despite the existence check",
				domain.ErrIntegrity, lockedJackpot.ID, locked.CycleSnapshot)
		}
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: save reward: %w", err)
	}

	if err = s.contributions.MarkEvaluated(ctx, tx, locked.ID, true); err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: mark winning: %w", err)
	}

	lockedJackpot.CurrentAmount = lockedJackpot.InitialAmount
	lockedJackpot.Cycle++
	if err = s.jackpots.Save(ctx, tx, lockedJackpot); err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: reset jackpot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("evaluation_service.EvaluateAndReward: commit: %w", err)
	}

	metrics.PoolCurrent.WithLabelValues(strconv.FormatInt(lockedJackpot.ID, 10)).Set(lockedJackpot.CurrentAmount.InexactFloat64())

	return &domain.EvaluateResponse{
		BetID:     betID,
		JackpotID: lockedJackpot.ID,
		UserID:    locked.UserID,
		Payout:    payout,
		Message:   fmt.Sprintf("%s: payout %s", domain.CategoryWin, payout.String()),
	}, nil
}

// markEvaluatedAndFinish flips Evaluated (non-winning) and commits, returning
// resp. Used by every non-winning terminal path reached once the contribution
// row has been locked. The returned error (if any) must be assigned to the
// caller's tx-scoped err so the deferred rollback does not fire on a tx that
// this function already committed or left in a failed state.
func (s *EvaluationService) markEvaluatedAndFinish(ctx context.Context, tx *sqlx.Tx, c *domain.Contribution, resp *domain.EvaluateResponse) (*domain.EvaluateResponse, error) {
	if markErr := s.contributions.MarkEvaluated(ctx, tx, c.ID, false); markErr != nil {
		return nil, fmt.Errorf("evaluation_service: mark evaluated: %w", markErr)
	}
	return s.finish(tx, resp)
}

// finish commits tx and returns resp, or surfaces a commit error.
func (s *EvaluationService) finish(tx *sqlx.Tx, resp *domain.EvaluateResponse) (*domain.EvaluateResponse, error) {
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("evaluation_service: commit (bet %d): %w", resp.BetID, err)
	}
	return resp, nil
}

// awaitContribution polls FindByBetID with exponential backoff (starting at
// InitialBackoff, doubling, capped at MaxBackoff) until Deadline elapses or
// ctx is cancelled. Returns (nil, nil) — not an error — on timeout or
// cancellation; both surface to the caller as pending-ingestion.
func (s *EvaluationService) awaitContribution(ctx context.Context, betID int64) (*domain.Contribution, error) {
	deadline := time.Now().Add(s.await.Deadline)
	backoff := s.await.InitialBackoff

	for {
		c, err := s.contributions.FindByBetID(ctx, betID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}

		wait := backoff
		if remaining := time.Until(deadline); wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil
		case <-timer.C:
		}

		backoff *= 2
		if backoff > s.await.MaxBackoff {
			backoff = s.await.MaxBackoff
		}
	}
}

// zeroResponse builds a ZERO EvaluateResponse carrying category as the
// message's stable, machine-parseable prefix.
func zeroResponse(betID int64, category domain.Category, detail string) *domain.EvaluateResponse {
	return &domain.EvaluateResponse{
		BetID:   betID,
		Payout:  decimal.Zero,
		Message: fmt.Sprintf("%s: %s", category, detail),
	}
}
