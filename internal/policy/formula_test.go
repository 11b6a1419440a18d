package policy_test

import (
	"testing"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/evetabi/jackpot/internal/policy"
	"github.com/shopspring/decimal"
)

func jackpotWithPool(pool string) *domain.Jackpot {
	return &domain.Jackpot{
		ID:            1,
		CurrentAmount: decimal.RequireFromString(pool),
		Cycle:         3,
	}
}

// ── FixedContribution ─────────────────────────────────────────────────────────

func TestFixedContribution_Compute(t *testing.T) {
	f := policy.FixedContribution{}
	stake := decimal.NewFromInt(200)

	got, err := f.Compute(stake, jackpotWithPool("1000"), `{"percent": 5, "scale": 2}`)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := decimal.NewFromInt(10) // 200 * 5% = 10
	if !got.Equal(want) {
		t.Errorf("Compute = %s, want %s", got, want)
	}
}

func TestFixedContribution_BlankBlob_YieldsZero(t *testing.T) {
	f := policy.FixedContribution{}
	got, err := f.Compute(decimal.NewFromInt(200), jackpotWithPool("1000"), "")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Compute with blank blob = %s, want 0", got)
	}
}

func TestFixedContribution_PercentClampedAbove100(t *testing.T) {
	f := policy.FixedContribution{}
	got, err := f.Compute(decimal.NewFromInt(10), jackpotWithPool("0"), `{"percent": 500}`)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Compute with percent=500 = %s, want 10 (clamped to 100%%)", got)
	}
}

// ── VariableContribution ──────────────────────────────────────────────────────

func TestVariableContribution_Degenerate_UsesStartPercent(t *testing.T) {
	f := policy.VariableContribution{}
	blob := `{"startPercent": 2, "endPercent": 10, "fromPool": 100, "toPool": 100}`
	got, err := f.Compute(decimal.NewFromInt(1000), jackpotWithPool("5000"), blob)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := decimal.NewFromInt(20) // 1000 * 2%
	if !got.Equal(want) {
		t.Errorf("degenerate range Compute = %s, want %s", got, want)
	}
}

func TestVariableContribution_Interpolates(t *testing.T) {
	f := policy.VariableContribution{}
	blob := `{"startPercent": 0, "endPercent": 10, "fromPool": 0, "toPool": 1000, "scale": 4}`

	got, err := f.Compute(decimal.NewFromInt(1000), jackpotWithPool("500"), blob)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// pool is halfway between fromPool and toPool -> effective percent = 5
	want := decimal.NewFromInt(50)
	if !got.Equal(want) {
		t.Errorf("midpoint Compute = %s, want %s", got, want)
	}
}

func TestVariableContribution_Saturates_AtToPool(t *testing.T) {
	f := policy.VariableContribution{}
	blob := `{"startPercent": 0, "endPercent": 10, "fromPool": 0, "toPool": 1000}`

	got, err := f.Compute(decimal.NewFromInt(1000), jackpotWithPool("5000"), blob)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := decimal.NewFromInt(100) // endPercent applies once pool >= toPool
	if !got.Equal(want) {
		t.Errorf("saturated Compute = %s, want %s", got, want)
	}
}

// ── FixedReward ───────────────────────────────────────────────────────────────

func TestFixedReward_WinsWhenDrawBelowChance(t *testing.T) {
	f := policy.FixedReward{}
	src := policy.FixedSource{Value: decimal.NewFromFloat(10)}

	won, err := f.IsWinner(jackpotWithPool("0"), `{"chancePercent": 25}`, src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if !won {
		t.Error("expected a win when the draw (10) is below the chance (25)")
	}
}

func TestFixedReward_LosesWhenDrawAboveChance(t *testing.T) {
	f := policy.FixedReward{}
	src := policy.FixedSource{Value: decimal.NewFromFloat(99)}

	won, err := f.IsWinner(jackpotWithPool("0"), `{"chancePercent": 25}`, src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if won {
		t.Error("expected a loss when the draw (99) is above the chance (25)")
	}
}

func TestFixedReward_BlankBlob_NeverWins(t *testing.T) {
	f := policy.FixedReward{}
	src := policy.FixedSource{Value: decimal.Zero}

	won, err := f.IsWinner(jackpotWithPool("0"), "", src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if won {
		t.Error("a blank config blob must never produce a winner, even with a draw of 0")
	}
}

// ── VariableReward ────────────────────────────────────────────────────────────

func TestVariableReward_GuaranteedWinAtOrAboveToPool(t *testing.T) {
	f := policy.VariableReward{}
	blob := `{"startPercent": 0, "endPercent": 50, "fromPool": 0, "toPool": 1000}`
	src := policy.FixedSource{Value: decimal.NewFromFloat(99.999)}

	won, err := f.IsWinner(jackpotWithPool("1000"), blob, src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if !won {
		t.Error("pool at toPool should be a guaranteed win regardless of the draw")
	}
}

func TestVariableReward_Degenerate_NotGuaranteed(t *testing.T) {
	f := policy.VariableReward{}
	blob := `{"startPercent": 0, "endPercent": 50, "fromPool": 1000, "toPool": 1000}`
	src := policy.FixedSource{Value: decimal.NewFromFloat(99.999)}

	won, err := f.IsWinner(jackpotWithPool("1000"), blob, src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if won {
		t.Error("a degenerate fromPool==toPool range should fall back to startPercent, not a guaranteed win")
	}
}

func TestVariableReward_BelowFromPool_UsesStartPercent(t *testing.T) {
	f := policy.VariableReward{}
	blob := `{"startPercent": 10, "endPercent": 50, "fromPool": 1000, "toPool": 2000}`
	src := policy.FixedSource{Value: decimal.NewFromFloat(5)}

	won, err := f.IsWinner(jackpotWithPool("500"), blob, src)
	if err != nil {
		t.Fatalf("IsWinner: %v", err)
	}
	if !won {
		t.Error("draw (5) below startPercent (10) should win")
	}
}
