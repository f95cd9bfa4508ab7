package toer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

func TestParseCondition_Operators(t *testing.T) {
	tests := []struct {
		raw string
		cmp Comparator
		val float64
	}{
		{">= 43", GreaterEqual, 43},
		{"> 5.5", Greater, 5.5},
		{"<= 10", LessEqual, 10},
		{"< 2", Less, 2},
		{"== 5.5", Equal, 5.5},
		{">=4.7", GreaterEqual, 4.7}, // no space
		{"  > 0  ", Greater, 0},
	}

	for _, tt := range tests {
		cond, err := ParseCondition(tt.raw)
		assert.NoError(t, err, tt.raw)
		assert.Equal(t, tt.cmp, cond.Cmp, tt.raw)
		assert.Equal(t, tt.val, cond.Value, tt.raw)
	}
}

func TestParseCondition_Range(t *testing.T) {
	cond, err := ParseCondition("5.45..5.49")
	assert.NoError(t, err)
	assert.Equal(t, Range, cond.Cmp)
	assert.Equal(t, 5.45, cond.Value)
	assert.Equal(t, 5.49, cond.Upper)

	assert.True(t, cond.Matches(5.45))
	assert.True(t, cond.Matches(5.47))
	assert.True(t, cond.Matches(5.49))
	assert.False(t, cond.Matches(5.44))
	assert.False(t, cond.Matches(5.50))
}

func TestParseCondition_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"!= 5",
		"5.5",
		">= abc",
		"1..x",
		"5.49..5.45", // inverted range
	} {
		_, err := ParseCondition(raw)
		assert.Error(t, err, raw)
		assert.True(t, errors.Is(err, shared.ErrInvalidFormat), raw)
	}
}

func TestCondition_Matches(t *testing.T) {
	assert.True(t, Condition{Cmp: GreaterEqual, Value: 43}.Matches(43))
	assert.False(t, Condition{Cmp: Greater, Value: 5.5}.Matches(5.5))
	assert.True(t, Condition{Cmp: Greater, Value: 5.5}.Matches(5.51))
	assert.True(t, Condition{Cmp: Equal, Value: 5.5}.Matches(5.5))
	assert.False(t, Condition{Cmp: Equal, Value: 5.5}.Matches(5.5001))
	assert.True(t, Condition{Cmp: LessEqual, Value: 10}.Matches(10))
	assert.True(t, Condition{Cmp: Less, Value: 2}.Matches(1.99))
}

func TestCondition_String(t *testing.T) {
	assert.Equal(t, ">= 43", Condition{Cmp: GreaterEqual, Value: 43}.String())
	assert.Equal(t, "5.45..5.49", Condition{Cmp: Range, Value: 5.45, Upper: 5.49}.String())
}
