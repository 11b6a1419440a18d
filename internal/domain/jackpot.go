// Package domain defines the core business entities and types for the
// jackpot engine: jackpots, their policy configuration, contributions and
// rewards, and the error taxonomy the services raise.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Policy keys & slots
// ──────────────────────────────────────────────────────────────────────────────

// PolicyKey selects which formula implementation backs a ConfigEntry slot.
type PolicyKey string

const (
	PolicyFixed    PolicyKey = "FIXED"
	PolicyVariable PolicyKey = "VARIABLE"
)

// IsValid reports whether k is one of the recognised policy keys.
func (k PolicyKey) IsValid() bool {
	return k == PolicyFixed || k == PolicyVariable
}

// Slot is the role a ConfigEntry plays within a JackpotConfig.
type Slot string

const (
	SlotContribution Slot = "CONTRIBUTION"
	SlotReward       Slot = "REWARD"
)

// ──────────────────────────────────────────────────────────────────────────────
// JackpotConfig / ConfigEntry
// ──────────────────────────────────────────────────────────────────────────────

// ConfigEntry binds one slot of a JackpotConfig to a policy key and its
// opaque, free-form parameter blob (JSON text parsed by the formula itself).
type ConfigEntry struct {
	ID         uuid.UUID `json:"id"          db:"id"`
	ConfigID   string    `json:"config_id"   db:"config_id"`
	Slot       Slot      `json:"slot"        db:"slot"`
	PolicyKey  PolicyKey `json:"policy_key"  db:"policy_key"`
	ConfigBlob string    `json:"config_blob" db:"config_blob"`
}

// JackpotConfig owns the CONTRIBUTION and REWARD ConfigEntry pair shared by
// every Jackpot bound to it. Immutable after seed, from the core's
// perspective.
type JackpotConfig struct {
	ID      string                 `json:"id"   db:"id"`
	Name    string                 `json:"name" db:"name"`
	Entries map[Slot]*ConfigEntry  `json:"-"    db:"-"`
}

// EntryFor returns the ConfigEntry bound to slot, or nil when the config has
// no entry for it.
func (c *JackpotConfig) EntryFor(slot Slot) *ConfigEntry {
	if c == nil {
		return nil
	}
	return c.Entries[slot]
}

// ──────────────────────────────────────────────────────────────────────────────
// Jackpot
// ──────────────────────────────────────────────────────────────────────────────

// Jackpot is a named pool that grows with contributions and resets on a win.
type Jackpot struct {
	ID            int64           `json:"id"             db:"id"`
	Name          string          `json:"name"           db:"name"`
	ConfigID      string          `json:"config_id"      db:"config_id"`
	Config        *JackpotConfig  `json:"config,omitempty" db:"-"`
	InitialAmount decimal.Decimal `json:"initial_amount" db:"initial_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount" db:"current_amount"`
	Cycle         int64           `json:"cycle"          db:"cycle"`
	Version       int64           `json:"version"        db:"version"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"     db:"updated_at"`
}

// ContributionEntry returns the ConfigEntry bound to the CONTRIBUTION slot,
// or nil if the jackpot's config has none.
func (j *Jackpot) ContributionEntry() *ConfigEntry {
	if j == nil {
		return nil
	}
	return j.Config.EntryFor(SlotContribution)
}

// RewardEntry returns the ConfigEntry bound to the REWARD slot, or nil if
// the jackpot's config has none.
func (j *Jackpot) RewardEntry() *ConfigEntry {
	if j == nil {
		return nil
	}
	return j.Config.EntryFor(SlotReward)
}
