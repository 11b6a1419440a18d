package policy_test

import (
	"errors"
	"testing"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/evetabi/jackpot/internal/policy"
)

func fullFormulaSet() ([]policy.ContributionFormula, []policy.RewardFormula) {
	return []policy.ContributionFormula{policy.FixedContribution{}, policy.VariableContribution{}},
		[]policy.RewardFormula{policy.FixedReward{}, policy.VariableReward{}}
}

func TestNewRegistry_AcceptsCompleteSet(t *testing.T) {
	cf, rf := fullFormulaSet()
	reg, err := policy.NewRegistry(cf, rf)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if _, err := reg.Contribution(domain.PolicyFixed); err != nil {
		t.Errorf("Contribution(FIXED): %v", err)
	}
	if _, err := reg.Reward(domain.PolicyVariable); err != nil {
		t.Errorf("Reward(VARIABLE): %v", err)
	}
}

func TestNewRegistry_RejectsMissingKey(t *testing.T) {
	_, err := policy.NewRegistry([]policy.ContributionFormula{policy.FixedContribution{}}, []policy.RewardFormula{policy.FixedReward{}, policy.VariableReward{}})
	if err == nil {
		t.Fatal("expected an error when VARIABLE contribution formula is missing")
	}
}

func TestNewRegistry_RejectsDuplicateKey(t *testing.T) {
	cf, rf := fullFormulaSet()
	cf = append(cf, policy.FixedContribution{})
	if _, err := policy.NewRegistry(cf, rf); err == nil {
		t.Fatal("expected an error on duplicate FIXED contribution formula")
	}
}

func TestRegistry_UnknownKey_WrapsConfigMissing(t *testing.T) {
	cf, rf := fullFormulaSet()
	reg, err := policy.NewRegistry(cf, rf)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := reg.Contribution(domain.PolicyKey("BOGUS")); !errors.Is(err, domain.ErrConfigMissing) {
		t.Fatalf("Contribution(BOGUS): err = %v, want wrapped ErrConfigMissing", err)
	}
}
