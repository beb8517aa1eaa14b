package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stateline/pkg/domain"
)

func TestFieldMatch(t *testing.T) {
	testCases := []struct {
		name   string
		want   any
		actual any
		match  bool
	}{
		{"equal strings", "premium", "premium", true},
		{"different strings", "premium", "basic", false},
		{"int against float64", 5, float64(5), true},
		{"float64 against int", float64(42), 42, true},
		{"fractional float differs", 5.5, 5, false},
		{"bool forms agree", true, true, true},
		{"nil requires nil", nil, nil, true},
		{"nil actual fails", "x", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, domain.FieldMatch(tc.want, tc.actual))
		})
	}
}

func TestFieldMatchPredicate(t *testing.T) {
	atLeastTwo := domain.Predicate(func(actual any) bool {
		n, ok := actual.(float64)
		return ok && n >= 2
	})
	assert.True(t, domain.FieldMatch(atLeastTwo, float64(3)))
	assert.False(t, domain.FieldMatch(atLeastTwo, float64(1)))
	assert.False(t, domain.FieldMatch(atLeastTwo, "three"))
}

func TestSatisfied(t *testing.T) {
	data := map[string]any{
		"status": "booked",
		"booking": map[string]any{
			"confirmed": true,
			"seats":     float64(2),
		},
	}

	assert.True(t, domain.Satisfied(map[string]any{
		"status":            "booked",
		"booking.confirmed": true,
		"booking.seats":     2,
	}, data))

	assert.False(t, domain.Satisfied(map[string]any{
		"booking.seats": 3,
	}, data))

	assert.False(t, domain.Satisfied(map[string]any{
		"booking.missing": "x",
	}, data))
}

func TestMismatches(t *testing.T) {
	data := map[string]any{"tier": "basic"}

	got := domain.Mismatches(map[string]any{
		"tier":   "premium",
		"region": "eu",
	}, data)

	assert.Len(t, got, 2)
	byField := map[string]domain.Mismatch{}
	for _, m := range got {
		byField[m.Field] = m
	}
	assert.True(t, byField["tier"].Present)
	assert.Equal(t, "basic", byField["tier"].Actual)
	assert.False(t, byField["region"].Present)
}

func TestTruthy(t *testing.T) {
	assert.True(t, domain.Truthy(true))
	assert.True(t, domain.Truthy("yes"))
	assert.True(t, domain.Truthy("1"))
	assert.True(t, domain.Truthy(float64(7)))
	assert.False(t, domain.Truthy(false))
	assert.False(t, domain.Truthy(nil))
	assert.False(t, domain.Truthy(float64(0)))
	assert.False(t, domain.Truthy(""))
}
