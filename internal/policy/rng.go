package policy

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// rngScale is the decimal scale of values drawn by CryptoSource. 10^8 steps
// across [0, 100) gives enough resolution for any configured chancePercent
// while keeping the draw bit-stable and replayable in tests.
const rngScale = 6

var rngSteps = new(big.Int).Exp(big.NewInt(10), big.NewInt(rngScale+2), nil) // 100 * 10^rngScale

// Source draws a uniform value in [0, 100) used by reward formulas to decide
// a win. Implementations must be safe for concurrent use.
type Source interface {
	Uniform100() (decimal.Decimal, error)
}

// CryptoSource draws from crypto/rand: math/rand and its v2 successor are
// explicitly non-cryptographic and unsuitable for payout-grade randomness.
// Wrapped behind Source so tests can substitute a deterministic FixedSource.
type CryptoSource struct{}

// NewCryptoSource returns the process-wide cryptographic RNG source.
func NewCryptoSource() *CryptoSource { return &CryptoSource{} }

// Uniform100 draws a decimal in [0, 100) with rngScale fractional digits.
func (CryptoSource) Uniform100() (decimal.Decimal, error) {
	n, err := rand.Int(rand.Reader, rngSteps)
	if err != nil {
		return decimal.Zero, fmt.Errorf("policy.CryptoSource.Uniform100: %w", err)
	}
	return decimal.NewFromBigInt(n, -rngScale), nil
}

// FixedSource is a test seam that always returns the configured value,
// letting tests force a specific draw outcome deterministically.
type FixedSource struct {
	Value decimal.Decimal
}

// Uniform100 returns the fixed value, ignoring any randomness.
func (f FixedSource) Uniform100() (decimal.Decimal, error) {
	return f.Value, nil
}
