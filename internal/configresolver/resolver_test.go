package configresolver_test

import (
	"errors"
	"testing"

	"github.com/evetabi/jackpot/internal/configresolver"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/google/uuid"
)

func TestResolver_Resolve_ReturnsBoundEntry(t *testing.T) {
	entry := &domain.ConfigEntry{ID: uuid.New(), ConfigID: "cfg-1", Slot: domain.SlotContribution, PolicyKey: domain.PolicyFixed}
	jackpot := &domain.Jackpot{
		ID:       1,
		ConfigID: "cfg-1",
		Config: &domain.JackpotConfig{
			ID:      "cfg-1",
			Entries: map[domain.Slot]*domain.ConfigEntry{domain.SlotContribution: entry},
		},
	}

	r := configresolver.NewResolver()
	got, err := r.Resolve(jackpot, domain.SlotContribution)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != entry {
		t.Errorf("Resolve returned %v, want %v", got, entry)
	}
}

func TestResolver_Resolve_MissingSlot(t *testing.T) {
	jackpot := &domain.Jackpot{
		ID:       1,
		ConfigID: "cfg-1",
		Config:   &domain.JackpotConfig{ID: "cfg-1", Entries: map[domain.Slot]*domain.ConfigEntry{}},
	}

	r := configresolver.NewResolver()
	_, err := r.Resolve(jackpot, domain.SlotReward)
	if !errors.Is(err, domain.ErrConfigMissing) {
		t.Errorf("Resolve with missing slot: err = %v, want wrapped ErrConfigMissing", err)
	}
}

func TestResolver_Resolve_NilConfig(t *testing.T) {
	jackpot := &domain.Jackpot{ID: 1}

	r := configresolver.NewResolver()
	_, err := r.Resolve(jackpot, domain.SlotContribution)
	if !errors.Is(err, domain.ErrConfigMissing) {
		t.Errorf("Resolve with nil config: err = %v, want wrapped ErrConfigMissing", err)
	}
}
