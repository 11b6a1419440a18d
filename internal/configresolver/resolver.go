// Package configresolver locates the ConfigEntry bound to a jackpot's slot.
package configresolver

import (
	"fmt"

	"github.com/evetabi/jackpot/internal/domain"
)

// Resolver resolves a (Jackpot, Slot) pair to the ConfigEntry bound to it.
// The entries are expected to already be loaded onto jackpot.Config by the
// repository's eager-loading query, so Resolve never issues a further fetch.
type Resolver struct{}

// NewResolver creates a Resolver. It carries no state: all lookups are pure
// reads against the jackpot's already-loaded config graph.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the ConfigEntry for the given slot, or an error wrapping
// domain.ErrConfigMissing if the jackpot has no config loaded or no entry
// for that slot. A jackpot whose JackpotConfig cannot be found is a
// programmer/data error (an invariant on the jackpot row), surfaced here
// rather than treated as a per-request failure.
func (r *Resolver) Resolve(jackpot *domain.Jackpot, slot domain.Slot) (*domain.ConfigEntry, error) {
	if jackpot == nil || jackpot.Config == nil {
		return nil, fmt.Errorf("%w: jackpot %v has no config loaded", domain.ErrConfigMissing, jackpotID(jackpot))
	}

	var entry *domain.ConfigEntry
	switch slot {
	case domain.SlotContribution:
		entry = jackpot.ContributionEntry()
	case domain.SlotReward:
		entry = jackpot.RewardEntry()
	default:
		entry = jackpot.Config.EntryFor(slot)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: config %q has no entry for slot %q", domain.ErrConfigMissing, jackpot.ConfigID, slot)
	}
	return entry, nil
}

func jackpotID(j *domain.Jackpot) any {
	if j == nil {
		return nil
	}
	return j.ID
}
