package policy_test

import (
	"testing"

	"github.com/evetabi/jackpot/internal/policy"
	"github.com/shopspring/decimal"
)

func TestCryptoSource_Uniform100_InRange(t *testing.T) {
	src := policy.NewCryptoSource()
	hundred := decimal.NewFromInt(100)

	for i := 0; i < 200; i++ {
		v, err := src.Uniform100()
		if err != nil {
			t.Fatalf("Uniform100: %v", err)
		}
		if v.IsNegative() || v.GreaterThanOrEqual(hundred) {
			t.Fatalf("Uniform100() = %s, want value in [0, 100)", v)
		}
	}
}

func TestFixedSource_AlwaysReturnsValue(t *testing.T) {
	want := decimal.NewFromFloat(42.5)
	src := policy.FixedSource{Value: want}

	for i := 0; i < 3; i++ {
		got, err := src.Uniform100()
		if err != nil {
			t.Fatalf("Uniform100: %v", err)
		}
		if !got.Equal(want) {
			t.Errorf("Uniform100() = %s, want %s", got, want)
		}
	}
}
