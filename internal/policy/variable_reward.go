package policy

import (
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
)

// VariableReward linearly interpolates the winning chance between
// startPercent (at or below fromPool) and endPercent (just below toPool);
// once the pool reaches toPool the chance is a guaranteed 100 %. A degenerate
// range (toPool <= fromPool) always uses startPercent. Parameters:
// startPercent, endPercent (clamped); fromPool (default 0); toPool.
type VariableReward struct{}

// Key implements RewardFormula.
func (VariableReward) Key() domain.PolicyKey { return domain.PolicyVariable }

// IsWinner implements RewardFormula.
func (VariableReward) IsWinner(jackpot *domain.Jackpot, configBlob string, src Source) (bool, error) {
	p := parseParams(configBlob)
	fromPool := p.nonNegativeField("fromPool", zero)
	toPool := p.nonNegativeField("toPool", zero)
	pool := jackpot.CurrentAmount

	var chance = effectivePercent(p, pool)
	if toPool.GreaterThan(fromPool) && pool.GreaterThanOrEqual(toPool) {
		chance = hundred // guaranteed win once the pool reaches toPool
	}

	u, err := src.Uniform100()
	if err != nil {
		return false, fmt.Errorf("policy.VariableReward.IsWinner: draw: %w", err)
	}
	return u.LessThan(chance), nil
}
