package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reward records a single winning finalization: exactly one per BetID, and
// exactly one per (JackpotID, CycleAtWin).
type Reward struct {
	ID         uuid.UUID       `json:"id"           db:"id"`
	BetID      int64           `json:"bet_id"       db:"bet_id"`
	UserID     int64           `json:"user_id"      db:"user_id"`
	JackpotID  int64           `json:"jackpot_id"   db:"jackpot_id"`
	Amount     decimal.Decimal `json:"amount"       db:"amount"`
	CycleAtWin int64           `json:"cycle_at_win" db:"cycle_at_win"`
	CreatedAt  time.Time       `json:"created_at"   db:"created_at"`
}

// EvaluateResponse is the outcome of EvaluationService.EvaluateAndReward.
// Payout is zero on any non-winning outcome; Message carries the stable
// category prefix so clients and tests can branch on it.
type EvaluateResponse struct {
	BetID     int64           `json:"bet_id"`
	JackpotID int64           `json:"jackpot_id,omitempty"`
	UserID    int64           `json:"user_id,omitempty"`
	Payout    decimal.Decimal `json:"payout"`
	Message   string          `json:"message"`
}

// IsWin reports whether this response represents a winning finalization.
func (r EvaluateResponse) IsWin() bool {
	return r.Payout.IsPositive()
}
