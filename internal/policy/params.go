package policy

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// params is a parsed parameter blob: a free-form JSON object whose numeric
// fields may be encoded as JSON numbers or as strings. A missing, blank, or
// unparseable blob parses to an empty params map — callers must then fall
// back to the documented "zero result" / "non-winner" behavior, never an
// error.
type params map[string]any

// parseParams decodes blob into a params map. Any decode failure (empty
// string, malformed JSON, non-object top level) yields an empty map rather
// than an error.
func parseParams(blob string) params {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return params{}
	}
	var p params
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return params{}
	}
	if p == nil {
		return params{}
	}
	return p
}

// decimalField reads a numeric field that may be a JSON number or a numeric
// string. Returns (value, true) on success; (zero, false) when the field is
// absent, blank, or not parseable as a decimal.
func (p params) decimalField(key string) (decimal.Decimal, bool) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return decimal.Zero, false
	}
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// intField reads an integer-valued field (used for scale). Falls back to
// def when absent, blank, or unparseable.
func (p params) intField(key string, def int32) int32 {
	d, ok := p.decimalField(key)
	if !ok {
		return def
	}
	return int32(d.IntPart())
}

// percentField reads a percent field and clamps it into [0, 100].
func (p params) percentField(key string, def decimal.Decimal) decimal.Decimal {
	d, ok := p.decimalField(key)
	if !ok {
		d = def
	}
	return clampPercent(d)
}

// nonNegativeField reads a field and clamps it to be ≥ 0.
func (p params) nonNegativeField(key string, def decimal.Decimal) decimal.Decimal {
	d, ok := p.decimalField(key)
	if !ok {
		d = def
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// clampPercent clamps d into [0, 100].
func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(zero) {
		return zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// roundHalfUp rounds d to scale decimal places. shopspring/decimal's Round
// rounds half away from zero, which for the non-negative amounts this
// package deals with is exactly round-half-up.
func roundHalfUp(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.Round(scale)
}
