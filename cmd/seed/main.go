// Package main seeds the four reference JackpotConfigs and their bound
// Jackpots used in local development and integration testing.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/evetabi/jackpot/internal/config"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// configSpec is one JackpotConfig and the two ConfigEntry rows it binds.
type configSpec struct {
	id                 string
	name               string
	contributionPolicy domain.PolicyKey
	contributionBlob   string
	rewardPolicy       domain.PolicyKey
	rewardBlob         string
}

// jackpotSpec is one Jackpot row bound to a configSpec by configID.
type jackpotSpec struct {
	id       int64
	name     string
	configID string
}

var configs = []configSpec{
	{
		id: "fixed-fixed", name: "Fixed contribution / fixed reward",
		contributionPolicy: domain.PolicyFixed, contributionBlob: `{"percent":20,"scale":2}`,
		rewardPolicy: domain.PolicyFixed, rewardBlob: `{"chancePercent":0.01}`,
	},
	{
		id: "fixed-variable", name: "Fixed contribution / variable reward",
		contributionPolicy: domain.PolicyFixed, contributionBlob: `{"percent":15,"scale":2}`,
		rewardPolicy: domain.PolicyVariable, rewardBlob: `{"startPercent":0.005,"endPercent":0.05,"fromPool":0,"toPool":50000.00}`,
	},
	{
		id: "variable-variable", name: "Variable contribution / variable reward",
		contributionPolicy: domain.PolicyVariable, contributionBlob: `{"startPercent":5,"endPercent":30,"fromPool":0,"toPool":1000.00,"scale":2}`,
		rewardPolicy: domain.PolicyVariable, rewardBlob: `{"startPercent":0.005,"endPercent":0.05,"fromPool":0,"toPool":50000.00}`,
	},
	{
		id: "variable-fixed", name: "Variable contribution / fixed reward",
		contributionPolicy: domain.PolicyVariable, contributionBlob: `{"startPercent":5,"endPercent":30,"fromPool":0,"toPool":1000.00,"scale":2}`,
		rewardPolicy: domain.PolicyFixed, rewardBlob: `{"chancePercent":0.01}`,
	},
}

var jackpots = []jackpotSpec{
	{id: 1, name: "Bronze Jackpot", configID: "fixed-fixed"},
	{id: 2, name: "Silver Jackpot", configID: "fixed-variable"},
	{id: 3, name: "Gold Jackpot", configID: "variable-variable"},
	{id: 4, name: "Platinum Jackpot", configID: "variable-fixed"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.MustLoad()

	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seed(db); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
	logger.Info("seed completed", "configs", len(configs), "jackpots", len(jackpots))
}

func seed(db *sqlx.DB) error {
	for _, c := range configs {
		if err := seedConfig(db, c); err != nil {
			return fmt.Errorf("seed config %q: %w", c.id, err)
		}
	}
	for _, j := range jackpots {
		if err := seedJackpot(db, j); err != nil {
			return fmt.Errorf("seed jackpot %d: %w", j.id, err)
		}
	}
	return nil
}

func seedConfig(db *sqlx.DB, c configSpec) error {
	if _, err := db.Exec(
		`INSERT INTO jackpot_configs (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		c.id, c.name,
	); err != nil {
		return err
	}

	entries := []struct {
		slot   domain.Slot
		policy domain.PolicyKey
		blob   string
	}{
		{domain.SlotContribution, c.contributionPolicy, c.contributionBlob},
		{domain.SlotReward, c.rewardPolicy, c.rewardBlob},
	}
	for _, e := range entries {
		if _, err := db.Exec(
			`INSERT INTO config_entries (id, config_id, slot, policy_key, config_blob)
			 VALUES (gen_random_uuid(), $1, $2, $3, $4)
			 ON CONFLICT (config_id, slot) DO UPDATE
			   SET policy_key = EXCLUDED.policy_key, config_blob = EXCLUDED.config_blob`,
			c.id, e.slot, e.policy, e.blob,
		); err != nil {
			return err
		}
	}
	return nil
}

func seedJackpot(db *sqlx.DB, j jackpotSpec) error {
	_, err := db.Exec(
		`INSERT INTO jackpots (id, name, config_id, initial_amount, current_amount, cycle, version)
		 VALUES ($1, $2, $3, 10000.00, 10000.00, 0, 0)
		 ON CONFLICT (id) DO NOTHING`,
		j.id, j.name, j.configID,
	)
	return err
}
