package probe

import (
	"fmt"
	"math"

	"github.com/okian/mobicost/internal/domain/tier"
)

// probabilityTolerance matches the service's own distribution check.
const probabilityTolerance = 1e-6

// Verify checks a prediction against the response contract: a known tier
// and label, four probabilities in [0,1] summing to 1, and a confidence equal
// to the predicted tier's probability.
func Verify(p Prediction) error {
	if !tier.Valid(p.Tier) {
		return fmt.Errorf("%w: tier index %d out of range", ErrVerification, p.Tier)
	}
	if want := tier.Label(p.Tier); p.Label != want {
		return fmt.Errorf("%w: label %q does not match tier %d (%q)", ErrVerification, p.Label, p.Tier, want)
	}
	if len(p.Probabilities) != tier.Count {
		return fmt.Errorf("%w: got %d probabilities, want %d", ErrVerification, len(p.Probabilities), tier.Count)
	}
	var sum float64
	for i, v := range p.Probabilities {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: probability %d is %v", ErrVerification, i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrVerification, sum)
	}
	if math.Abs(p.Confidence-p.Probabilities[p.Tier]) > probabilityTolerance {
		return fmt.Errorf("%w: confidence %v differs from p[%d]=%v", ErrVerification, p.Confidence, p.Tier, p.Probabilities[p.Tier])
	}
	return nil
}
