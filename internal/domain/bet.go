package domain

import "github.com/shopspring/decimal"

// BetEvent is the payload delivered by the message bus (or accepted by the
// HTTP surface for publishing). Messages are keyed by JackpotID so the bus
// preserves per-jackpot FIFO order to a single consumer.
type BetEvent struct {
	BetID     int64           `json:"bet_id"`
	UserID    int64           `json:"user_id"`
	JackpotID int64           `json:"jackpot_id"`
	BetAmount decimal.Decimal `json:"bet_amount"`
}

// Validate checks the input contract: all ids strictly positive, amount
// strictly positive. Returns the first violation found, wrapped with
// ErrInvalidInput naming the offending field.
func (e *BetEvent) Validate() error {
	if e == nil {
		return fieldErr("event", "must not be nil")
	}
	if e.BetID <= 0 {
		return fieldErr("betId", "must be strictly positive")
	}
	if e.UserID <= 0 {
		return fieldErr("userId", "must be strictly positive")
	}
	if e.JackpotID <= 0 {
		return fieldErr("jackpotId", "must be strictly positive")
	}
	if e.BetAmount.Sign() <= 0 {
		return fieldErr("betAmount", "must be strictly positive")
	}
	return nil
}
