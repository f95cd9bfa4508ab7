// Package toer implements the Total Offensive Efficiency Rating: a composite
// 0-100 offensive rating built from eleven per-game metrics. The per-metric
// scoring brackets live in a declarative rule table compiled once at engine
// construction; each rule's condition string is parsed into a closed set of
// comparators, not a general expression language.
package toer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// Comparator is the closed set of condition operators a rule may use.
type Comparator int

const (
	GreaterEqual Comparator = iota
	Greater
	LessEqual
	Less
	Equal
	Range
)

// String returns the operator's source notation.
func (c Comparator) String() string {
	switch c {
	case GreaterEqual:
		return ">="
	case Greater:
		return ">"
	case LessEqual:
		return "<="
	case Less:
		return "<"
	case Equal:
		return "=="
	case Range:
		return ".."
	default:
		return "?"
	}
}

// Condition is one compiled rule condition. For Range, Value and Upper are
// the inclusive bounds; for all other comparators only Value is used.
type Condition struct {
	Cmp   Comparator
	Value float64
	Upper float64
}

// Matches evaluates the condition against a metric value.
func (c Condition) Matches(v float64) bool {
	switch c.Cmp {
	case GreaterEqual:
		return v >= c.Value
	case Greater:
		return v > c.Value
	case LessEqual:
		return v <= c.Value
	case Less:
		return v < c.Value
	case Equal:
		return v == c.Value
	case Range:
		return v >= c.Value && v <= c.Upper
	default:
		return false
	}
}

// String renders the condition in rule-table notation.
func (c Condition) String() string {
	if c.Cmp == Range {
		return fmt.Sprintf("%g..%g", c.Value, c.Upper)
	}
	return fmt.Sprintf("%s %g", c.Cmp, c.Value)
}

// ParseCondition compiles a condition string. Accepted forms:
//
//	">= 43"    "> 5.5"    "<= 10"    "< 2"    "== 5.5"    "5.45..5.49"
//
// Whitespace around the operator is optional.
func ParseCondition(s string) (Condition, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Condition{}, shared.WrapError("toer", "ParseCondition", shared.ErrInvalidFormat, "empty condition", nil)
	}

	if lo, hi, ok := strings.Cut(raw, ".."); ok {
		return parseRange(raw, lo, hi)
	}

	for _, op := range []struct {
		token string
		cmp   Comparator
	}{
		{">=", GreaterEqual},
		{"<=", LessEqual},
		{"==", Equal},
		{">", Greater},
		{"<", Less},
	} {
		if strings.HasPrefix(raw, op.token) {
			v, err := parseNumber(raw, raw[len(op.token):])
			if err != nil {
				return Condition{}, err
			}
			return Condition{Cmp: op.cmp, Value: v}, nil
		}
	}

	return Condition{}, shared.WrapError("toer", "ParseCondition", shared.ErrInvalidFormat,
		fmt.Sprintf("unrecognized condition %q", raw), nil)
}

func parseRange(raw, lo, hi string) (Condition, error) {
	low, err := parseNumber(raw, lo)
	if err != nil {
		return Condition{}, err
	}
	high, err := parseNumber(raw, hi)
	if err != nil {
		return Condition{}, err
	}
	if low > high {
		return Condition{}, shared.WrapError("toer", "ParseCondition", shared.ErrInvalidFormat,
			fmt.Sprintf("inverted range %q", raw), nil)
	}
	return Condition{Cmp: Range, Value: low, Upper: high}, nil
}

func parseNumber(raw, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, shared.WrapError("toer", "ParseCondition", shared.ErrInvalidFormat,
			fmt.Sprintf("bad number in condition %q", raw), err)
	}
	return v, nil
}
