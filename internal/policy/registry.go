// Package policy implements the contribution and reward formulas bound to a
// jackpot through its JackpotConfig, and the registry that indexes them by
// policy key.
package policy

import (
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
	"github.com/shopspring/decimal"
)

// ContributionFormula computes the portion of a stake credited to a
// jackpot's pool. Compute must be deterministic for identical parameters and
// jackpot state; it must never return a negative amount for well-formed
// parameters — a negative result is treated by the caller as a policy
// violation.
type ContributionFormula interface {
	Key() domain.PolicyKey
	Compute(stake decimal.Decimal, jackpot *domain.Jackpot, configBlob string) (decimal.Decimal, error)
}

// RewardFormula decides whether the current bet wins the jackpot, given the
// jackpot's live (unlocked) state and a uniform draw from src.
type RewardFormula interface {
	Key() domain.PolicyKey
	IsWinner(jackpot *domain.Jackpot, configBlob string, src Source) (bool, error)
}

// Registry indexes formulas of each kind by policy key. Duplicate keys
// within a kind, or a kind missing a key, are startup errors — never
// surfaced to a request.
type Registry struct {
	contribution map[domain.PolicyKey]ContributionFormula
	reward       map[domain.PolicyKey]RewardFormula
}

// NewRegistry builds a Registry from the given formulas, validating that
// every recognised domain.PolicyKey has exactly one formula of each kind.
func NewRegistry(contributionFormulas []ContributionFormula, rewardFormulas []RewardFormula) (*Registry, error) {
	r := &Registry{
		contribution: make(map[domain.PolicyKey]ContributionFormula, len(contributionFormulas)),
		reward:       make(map[domain.PolicyKey]RewardFormula, len(rewardFormulas)),
	}

	for _, f := range contributionFormulas {
		if _, dup := r.contribution[f.Key()]; dup {
			return nil, fmt.Errorf("policy.NewRegistry: duplicate contribution formula for key %q", f.Key())
		}
		r.contribution[f.Key()] = f
	}
	for _, f := range rewardFormulas {
		if _, dup := r.reward[f.Key()]; dup {
			return nil, fmt.Errorf("policy.NewRegistry: duplicate reward formula for key %q", f.Key())
		}
		r.reward[f.Key()] = f
	}

	for _, key := range []domain.PolicyKey{domain.PolicyFixed, domain.PolicyVariable} {
		if _, ok := r.contribution[key]; !ok {
			return nil, fmt.Errorf("policy.NewRegistry: no contribution formula registered for key %q", key)
		}
		if _, ok := r.reward[key]; !ok {
			return nil, fmt.Errorf("policy.NewRegistry: no reward formula registered for key %q", key)
		}
	}

	return r, nil
}

// Contribution looks up a ContributionFormula by key. An unknown key is a
// startup/configuration error, not a request error.
func (r *Registry) Contribution(key domain.PolicyKey) (ContributionFormula, error) {
	f, ok := r.contribution[key]
	if !ok {
		return nil, fmt.Errorf("%w: no contribution formula for policy key %q", domain.ErrConfigMissing, key)
	}
	return f, nil
}

// Reward looks up a RewardFormula by key. An unknown key is a
// startup/configuration error, not a request error.
func (r *Registry) Reward(key domain.PolicyKey) (RewardFormula, error) {
	f, ok := r.reward[key]
	if !ok {
		return nil, fmt.Errorf("%w: no reward formula for policy key %q", domain.ErrConfigMissing, key)
	}
	return f, nil
}
