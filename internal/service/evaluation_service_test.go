package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// fakeContributionStore implements ContributionStore. Only FindByBetID is
// exercised by awaitContribution; the tx-bound methods are never called in
// these tests and panic if they are.
type fakeContributionStore struct {
	findByBetID func(ctx context.Context, betID int64) (*domain.Contribution, error)
}

func (f *fakeContributionStore) FindByBetID(ctx context.Context, betID int64) (*domain.Contribution, error) {
	return f.findByBetID(ctx, betID)
}

func (f *fakeContributionStore) FindByBetIDForUpdate(ctx context.Context, tx *sqlx.Tx, betID int64) (*domain.Contribution, error) {
	panic("not used by awaitContribution")
}

func (f *fakeContributionStore) Save(ctx context.Context, tx *sqlx.Tx, c *domain.Contribution) error {
	panic("not used by awaitContribution")
}

func (f *fakeContributionStore) MarkEvaluated(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, winning bool) error {
	panic("not used by awaitContribution")
}

func testAwaitConfig() AwaitConfig {
	return AwaitConfig{InitialBackoff: 5 * time.Millisecond, MaxBackoff: 10 * time.Millisecond, Deadline: 40 * time.Millisecond}
}

func TestAwaitContribution_ReturnsImmediatelyWhenFound(t *testing.T) {
	want := &domain.Contribution{BetID: 1}
	s := &EvaluationService{
		contributions: &fakeContributionStore{
			findByBetID: func(ctx context.Context, betID int64) (*domain.Contribution, error) { return want, nil },
		},
		await: testAwaitConfig(),
	}

	got, err := s.awaitContribution(context.Background(), 1)
	if err != nil {
		t.Fatalf("awaitContribution: %v", err)
	}
	if got != want {
		t.Errorf("awaitContribution returned %v, want %v", got, want)
	}
}

func TestAwaitContribution_PollsUntilFound(t *testing.T) {
	want := &domain.Contribution{BetID: 1}
	var calls int32
	s := &EvaluationService{
		contributions: &fakeContributionStore{
			findByBetID: func(ctx context.Context, betID int64) (*domain.Contribution, error) {
				if atomic.AddInt32(&calls, 1) < 3 {
					return nil, nil
				}
				return want, nil
			},
		},
		await: testAwaitConfig(),
	}

	got, err := s.awaitContribution(context.Background(), 1)
	if err != nil {
		t.Fatalf("awaitContribution: %v", err)
	}
	if got != want {
		t.Errorf("awaitContribution returned %v, want %v", got, want)
	}
	if calls < 3 {
		t.Errorf("expected at least 3 polls before the contribution appeared, got %d", calls)
	}
}

func TestAwaitContribution_DeadlineExceeded_ReturnsNilNil(t *testing.T) {
	s := &EvaluationService{
		contributions: &fakeContributionStore{
			findByBetID: func(ctx context.Context, betID int64) (*domain.Contribution, error) { return nil, nil },
		},
		await: testAwaitConfig(),
	}

	got, err := s.awaitContribution(context.Background(), 1)
	if err != nil {
		t.Fatalf("awaitContribution: %v", err)
	}
	if got != nil {
		t.Errorf("awaitContribution = %v, want nil after deadline", got)
	}
}

func TestAwaitContribution_ContextCancelled_ReturnsNilNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &EvaluationService{
		contributions: &fakeContributionStore{
			findByBetID: func(ctx context.Context, betID int64) (*domain.Contribution, error) { return nil, nil },
		},
		await: AwaitConfig{InitialBackoff: time.Second, MaxBackoff: time.Second, Deadline: time.Minute},
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	got, err := s.awaitContribution(ctx, 1)
	if err != nil {
		t.Fatalf("awaitContribution: %v", err)
	}
	if got != nil {
		t.Errorf("awaitContribution = %v, want nil on context cancellation", got)
	}
}
