package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contribution is the portion of a bet credited to a jackpot pool, recorded
// once per BetID (unique). Evaluated and Winning are one-way flags: NEW →
// EVALUATED (non-winning) or NEW → EVALUATED ∧ WINNING (terminal).
type Contribution struct {
	ID                 uuid.UUID       `json:"id"                  db:"id"`
	BetID              int64           `json:"bet_id"              db:"bet_id"`
	UserID             int64           `json:"user_id"             db:"user_id"`
	JackpotID          int64           `json:"jackpot_id"          db:"jackpot_id"`
	StakeAmount        decimal.Decimal `json:"stake_amount"        db:"stake_amount"`
	ContributionAmount decimal.Decimal `json:"contribution_amount" db:"contribution_amount"`
	PoolSnapshot       decimal.Decimal `json:"pool_snapshot"       db:"pool_snapshot"`
	CycleSnapshot      int64           `json:"cycle_snapshot"      db:"cycle_snapshot"`
	Evaluated          bool            `json:"evaluated"           db:"evaluated"`
	Winning            bool            `json:"winning"             db:"winning"`
	CreatedAt          time.Time       `json:"created_at"          db:"created_at"`
}
