package policy

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseParams_BlankBlob(t *testing.T) {
	for _, blob := range []string{"", "   ", "not json", "null"} {
		p := parseParams(blob)
		if len(p) != 0 {
			t.Errorf("parseParams(%q) = %v, want empty map", blob, p)
		}
	}
}

func TestParams_DecimalField_AcceptsNumberOrString(t *testing.T) {
	p := parseParams(`{"a": 12.5, "b": "7.25", "c": "  "}`)

	v, ok := p.decimalField("a")
	if !ok || !v.Equal(decimal.NewFromFloat(12.5)) {
		t.Errorf("decimalField(a) = %v, %v, want 12.5, true", v, ok)
	}
	v, ok = p.decimalField("b")
	if !ok || !v.Equal(decimal.NewFromFloat(7.25)) {
		t.Errorf("decimalField(b) = %v, %v, want 7.25, true", v, ok)
	}
	if _, ok = p.decimalField("c"); ok {
		t.Error("decimalField(c) should be false for a blank string")
	}
	if _, ok = p.decimalField("missing"); ok {
		t.Error("decimalField(missing) should be false")
	}
}

func TestParams_PercentField_Clamps(t *testing.T) {
	p := parseParams(`{"over": 150, "under": -10, "ok": 42.5}`)

	if got := p.percentField("over", zero); !got.Equal(hundred) {
		t.Errorf("percentField(over) = %s, want 100", got)
	}
	if got := p.percentField("under", zero); !got.Equal(zero) {
		t.Errorf("percentField(under) = %s, want 0", got)
	}
	if got := p.percentField("ok", zero); !got.Equal(decimal.NewFromFloat(42.5)) {
		t.Errorf("percentField(ok) = %s, want 42.5", got)
	}
	if got := p.percentField("missing", decimal.NewFromInt(9)); !got.Equal(decimal.NewFromInt(9)) {
		t.Errorf("percentField(missing) = %s, want default 9", got)
	}
}

func TestParams_NonNegativeField_ClampsNegativeToZero(t *testing.T) {
	p := parseParams(`{"neg": -500, "pos": 500}`)

	if got := p.nonNegativeField("neg", zero); !got.Equal(zero) {
		t.Errorf("nonNegativeField(neg) = %s, want 0", got)
	}
	if got := p.nonNegativeField("pos", zero); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("nonNegativeField(pos) = %s, want 500", got)
	}
}

func TestParams_IntField(t *testing.T) {
	p := parseParams(`{"scale": 4}`)
	if got := p.intField("scale", 2); got != 4 {
		t.Errorf("intField(scale) = %d, want 4", got)
	}
	if got := p.intField("missing", 2); got != 2 {
		t.Errorf("intField(missing) = %d, want default 2", got)
	}
}
