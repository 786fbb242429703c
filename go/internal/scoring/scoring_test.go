package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name          string
		fracRemaining float64
		want          float64
	}{
		{"instant answer", 1.0, 1.5},
		{"just inside top tier", 0.80, 1.5},
		{"exactly three quarters", 0.75, 1.5},
		{"just below three quarters", 0.7499, 1.25},
		{"exactly half", 0.5, 1.25},
		{"just below half", 0.4999, 1.0},
		{"exactly one quarter", 0.25, 1.0},
		{"just below one quarter", 0.2499, 0.75},
		{"buzzer beater", 0.01, 0.75},
		{"after the deadline", -0.1, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiplier(tt.fracRemaining))
		})
	}
}

func TestPoints(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 12, 0, 20, 0, time.UTC)

	t.Run("full window remaining", func(t *testing.T) {
		answeredAt := deadline.Add(-20 * time.Second)
		assert.Equal(t, 750, Points(&deadline, answeredAt))
	})

	t.Run("half window remaining", func(t *testing.T) {
		answeredAt := deadline.Add(-10 * time.Second)
		assert.Equal(t, 625, Points(&deadline, answeredAt))
	})

	t.Run("quarter window remaining", func(t *testing.T) {
		answeredAt := deadline.Add(-5 * time.Second)
		assert.Equal(t, 500, Points(&deadline, answeredAt))
	})

	t.Run("last moment", func(t *testing.T) {
		answeredAt := deadline.Add(-1 * time.Second)
		assert.Equal(t, 375, Points(&deadline, answeredAt))
	})

	t.Run("nil deadline defaults to base", func(t *testing.T) {
		answeredAt := deadline.Add(-time.Second)
		assert.Equal(t, 500, Points(nil, answeredAt))
	})

	t.Run("zero answer time defaults to base", func(t *testing.T) {
		assert.Equal(t, 500, Points(&deadline, time.Time{}))
	})
}
