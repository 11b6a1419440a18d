package policy

import (
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/shopspring/decimal"
)

// interpScale is the interim scale used for linear interpolation before the
// final round_half_up to the formula's configured scale, kept well above
// the usual 2-decimal output scale to avoid compounding rounding error.
const interpScale = 10

// VariableContribution linearly interpolates the contribution percent
// between startPercent (at or below fromPool) and endPercent (at or above
// toPool), based on the jackpot's current pool level.
//
// Parameters: startPercent, endPercent (0..100, clamped); fromPool
// (default 0, clamped ≥ 0); toPool; scale (default 2).
type VariableContribution struct{}

// Key implements ContributionFormula.
func (VariableContribution) Key() domain.PolicyKey { return domain.PolicyVariable }

// Compute implements ContributionFormula.
func (VariableContribution) Compute(stake decimal.Decimal, jackpot *domain.Jackpot, configBlob string) (decimal.Decimal, error) {
	p := parseParams(configBlob)
	scale := p.intField("scale", 2)
	effective := effectivePercent(p, jackpot.CurrentAmount)

	result := stake.Mul(effective).Div(hundred)
	return roundHalfUp(result, scale), nil
}

// effectivePercent computes the interpolated start/end percent for the
// current pool level p, shared between the variable contribution and
// variable reward formulas — both interpolate the same way over pool size.
func effectivePercent(p params, pool decimal.Decimal) decimal.Decimal {
	startPercent := p.percentField("startPercent", zero)
	endPercent := p.percentField("endPercent", zero)
	fromPool := p.nonNegativeField("fromPool", zero)
	toPool := p.nonNegativeField("toPool", zero)

	if toPool.LessThanOrEqual(fromPool) || pool.LessThanOrEqual(fromPool) {
		return startPercent
	}
	if pool.GreaterThanOrEqual(toPool) {
		return endPercent
	}

	span := toPool.Sub(fromPool)
	progress := pool.Sub(fromPool).DivRound(span, interpScale)
	delta := endPercent.Sub(startPercent).Mul(progress)
	return roundHalfUp(startPercent.Add(delta), interpScale)
}
