package policy

import (
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/shopspring/decimal"
)

// FixedContribution credits a fixed percentage of the stake to the pool.
//
//	result = round_half_up(stake × percent / 100, scale)
//
// Parameters: percent (0..100, clamped), scale (default 2).
type FixedContribution struct{}

// Key implements ContributionFormula.
func (FixedContribution) Key() domain.PolicyKey { return domain.PolicyFixed }

// Compute implements ContributionFormula.
func (FixedContribution) Compute(stake decimal.Decimal, _ *domain.Jackpot, configBlob string) (decimal.Decimal, error) {
	p := parseParams(configBlob)
	percent := p.percentField("percent", zero)
	scale := p.intField("scale", 2)

	result := stake.Mul(percent).Div(hundred)
	return roundHalfUp(result, scale), nil
}
