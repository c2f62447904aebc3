// Package inference runs the feature engineering and classification pipeline.
package inference

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
)

// probaTolerance bounds how far a probability vector may sum away from 1.
const probaTolerance = 1e-6

// Classifier is a pre-trained four-class model.
type Classifier interface {
	// Predict returns the class index for a scaled vector.
	Predict(ctx context.Context, v features.Vector) (int, error)
	// PredictProba returns the per-class probabilities for a scaled vector.
	PredictProba(ctx context.Context, v features.Vector) ([]float64, error)
}

// Scaler is a pre-fitted normalization transform over the numeric subset.
type Scaler interface {
	Transform(sub []float64) ([]float64, error)
}

// Kinded is implemented by artifacts that can name their kind.
type Kinded interface {
	Kind() string
}

// Pipeline turns a RawSpec into a Prediction. It holds no mutable state and
// is safe for concurrent use.
type Pipeline struct {
	classifier Classifier
	scaler     Scaler
}

// NewPipeline binds the loaded artifacts. Both are required.
func NewPipeline(c Classifier, s Scaler) (*Pipeline, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: classifier", ErrMissingArtifact)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: scaler", ErrMissingArtifact)
	}
	return &Pipeline{classifier: c, scaler: s}, nil
}

// ClassifierKind names the bound classifier, or "unknown".
func (p *Pipeline) ClassifierKind() string { return kindOf(p.classifier) }

// ScalerKind names the bound scaler, or "unknown".
func (p *Pipeline) ScalerKind() string { return kindOf(p.scaler) }

func kindOf(a any) string {
	if k, ok := a.(Kinded); ok {
		return k.Kind()
	}
	return "unknown"
}

// Predict runs the full pipeline for s.
func (p *Pipeline) Predict(ctx context.Context, s model.RawSpec) (model.Prediction, error) {
	v, err := features.Assemble(s)
	if err != nil {
		return model.Prediction{}, err
	}
	return p.PredictVector(ctx, v)
}

// PredictVector runs scaling and classification on an assembled vector.
func (p *Pipeline) PredictVector(ctx context.Context, v features.Vector) (model.Prediction, error) {
	if err := v.Validate(); err != nil {
		return model.Prediction{}, err
	}
	scaled, err := p.Scale(v)
	if err != nil {
		return model.Prediction{}, err
	}
	idx, proba, err := p.classify(ctx, scaled)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Tier:          idx,
		Label:         tier.Label(idx),
		Probabilities: proba,
		Confidence:    proba[idx],
		Derived: model.Derived{
			PixelDensity: int(v[features.PixelDensity]),
			ScreenArea:   int(v[features.ScreenArea]),
			CameraTotal:  int(v[features.CameraTotal]),
		},
	}, nil
}

// Scale applies the scaler to the numeric subset of v. Every other position
// passes through unchanged.
func (p *Pipeline) Scale(v features.Vector) (features.Vector, error) {
	out, err := p.scaler.Transform(v.Numeric())
	if err != nil {
		return features.Vector{}, fmt.Errorf("%w: %w", ErrTransformFailure, err)
	}
	if len(out) != features.NumericWidth {
		return features.Vector{}, fmt.Errorf("%w: got %d scaled columns, want %d", ErrTransformFailure, len(out), features.NumericWidth)
	}
	for i, x := range out {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return features.Vector{}, fmt.Errorf("%w: non-finite output at column %d", ErrTransformFailure, i)
		}
	}
	scaled, err := v.WithNumeric(out)
	if err != nil {
		return features.Vector{}, fmt.Errorf("%w: %v", ErrTransformFailure, err)
	}
	return scaled, nil
}

func (p *Pipeline) classify(ctx context.Context, v features.Vector) (int, []float64, error) {
	var (
		idx   int
		proba []float64
		err   error
	)
	// Prefer the combined call when the classifier offers one.
	if both, ok := p.classifier.(interface {
		PredictWithProba(ctx context.Context, v features.Vector) (int, []float64, error)
	}); ok {
		idx, proba, err = both.PredictWithProba(ctx, v)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrClassifierFailure, err)
		}
	} else {
		if idx, err = p.classifier.Predict(ctx, v); err != nil {
			return 0, nil, fmt.Errorf("%w: predict: %w", ErrClassifierFailure, err)
		}
		if proba, err = p.classifier.PredictProba(ctx, v); err != nil {
			return 0, nil, fmt.Errorf("%w: predict_proba: %w", ErrClassifierFailure, err)
		}
	}
	if !tier.Valid(idx) {
		return 0, nil, fmt.Errorf("%w: class index %d out of range", ErrClassifierFailure, idx)
	}
	if err := CheckProba(proba); err != nil {
		return 0, nil, err
	}
	return idx, append([]float64(nil), proba...), nil
}

// CheckProba verifies a probability vector has one entry per tier, each in
// [0, 1], summing to 1.
func CheckProba(proba []float64) error {
	if len(proba) != tier.Count {
		return fmt.Errorf("%w: %d probabilities, want %d", ErrClassifierFailure, len(proba), tier.Count)
	}
	var sum float64
	for i, x := range proba {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return fmt.Errorf("%w: probability %d is %v", ErrClassifierFailure, i, x)
		}
		sum += x
	}
	if math.Abs(sum-1) > probaTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrClassifierFailure, sum)
	}
	return nil
}

// Argmax returns the index of the first maximum of xs.
func Argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}
