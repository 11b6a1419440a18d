package policy

import (
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
)

// FixedReward wins with a fixed probability. Parameters: chancePercent
// (0..100, clamped). A blank or unparseable blob clamps to 0 — never a
// winner.
type FixedReward struct{}

// Key implements RewardFormula.
func (FixedReward) Key() domain.PolicyKey { return domain.PolicyFixed }

// IsWinner implements RewardFormula.
func (FixedReward) IsWinner(_ *domain.Jackpot, configBlob string, src Source) (bool, error) {
	p := parseParams(configBlob)
	chance := p.percentField("chancePercent", zero)

	u, err := src.Uniform100()
	if err != nil {
		return false, fmt.Errorf("policy.FixedReward.IsWinner: draw: %w", err)
	}
	return u.LessThan(chance), nil
}
