// Package scoring awards points for a finished round. The speed
// multiplier rewards answering early in the question window.
package scoring

import (
	"math"
	"time"

	"github.com/popqiz/popqiz/go/internal/models"
)

// Multiplier maps the fraction of the question window remaining at
// submission time to a speed multiplier. Tier boundaries are inclusive
// on the way up: exactly three quarters remaining earns the top tier.
func Multiplier(fracRemaining float64) float64 {
	switch {
	case fracRemaining >= 0.75:
		return 1.5
	case fracRemaining >= 0.5:
		return 1.25
	case fracRemaining >= 0.25:
		return 1.0
	default:
		return 0.75
	}
}

// Points computes the award for a correct answer. A nil deadline or a
// zero submission time means timing is unknown, so the multiplier
// defaults to 1.0 rather than punishing the player.
func Points(deadline *time.Time, answeredAt time.Time) int {
	mult := 1.0
	if deadline != nil && !answeredAt.IsZero() {
		remaining := deadline.Sub(answeredAt)
		mult = Multiplier(float64(remaining) / float64(models.QuestionDuration))
	}
	return int(math.Round(models.BasePoints * mult))
}
