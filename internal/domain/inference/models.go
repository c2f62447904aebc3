package inference

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/tier"
)

var (
	errShape     = errors.New("artifact shape mismatch")
	errZeroScale = errors.New("zero scale")
)

// Softmax is a multinomial logistic regression over the scaled vector.
type Softmax struct {
	coef      [tier.Count]features.Vector
	intercept [tier.Count]float64
}

// NewSoftmax validates coef (one row of features.Width per tier) and
// intercept (one entry per tier).
func NewSoftmax(coef [][]float64, intercept []float64) (*Softmax, error) {
	if len(coef) != tier.Count || len(intercept) != tier.Count {
		return nil, fmt.Errorf("%w: softmax needs %d rows and intercepts", errShape, tier.Count)
	}
	m := &Softmax{}
	for k, row := range coef {
		v, err := features.FromSlice(row)
		if err != nil {
			return nil, fmt.Errorf("%w: coef row %d: %w", errShape, k, err)
		}
		m.coef[k] = v
		m.intercept[k] = intercept[k]
	}
	return m, nil
}

// Kind implements Kinded.
func (m *Softmax) Kind() string { return "softmax" }

// Predict implements Classifier.
func (m *Softmax) Predict(ctx context.Context, v features.Vector) (int, error) {
	idx, _, err := m.PredictWithProba(ctx, v)
	return idx, err
}

// PredictProba implements Classifier.
func (m *Softmax) PredictProba(ctx context.Context, v features.Vector) ([]float64, error) {
	_, p, err := m.PredictWithProba(ctx, v)
	return p, err
}

// PredictWithProba computes index and probabilities in one pass.
func (m *Softmax) PredictWithProba(_ context.Context, v features.Vector) (int, []float64, error) {
	logits := make([]float64, tier.Count)
	for k := range logits {
		z := m.intercept[k]
		for i, x := range v {
			z += m.coef[k][i] * x
		}
		logits[k] = z
	}
	// Shift by the max logit for numerical stability.
	maxZ := logits[Argmax(logits)]
	var sum float64
	for k, z := range logits {
		logits[k] = math.Exp(z - maxZ)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return Argmax(logits), logits, nil
}

// Node is one node of a decision tree in flat form. A node with a non-empty
// Value is a leaf.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     []float64
}

// Forest is an ensemble of decision trees whose leaf distributions are
// averaged.
type Forest struct {
	trees [][]Node
}

// NewForest validates every tree: feature indexes in range, children in
// bounds and pointing forward, leaves with one non-negative weight per tier.
func NewForest(trees [][]Node) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", errShape)
	}
	for t, nodes := range trees {
		if len(nodes) == 0 {
			return nil, fmt.Errorf("%w: tree %d is empty", errShape, t)
		}
		for n, nd := range nodes {
			if len(nd.Value) > 0 {
				if len(nd.Value) != tier.Count {
					return nil, fmt.Errorf("%w: tree %d leaf %d has %d weights", errShape, t, n, len(nd.Value))
				}
				var sum float64
				for _, w := range nd.Value {
					if w < 0 || math.IsNaN(w) {
						return nil, fmt.Errorf("%w: tree %d leaf %d has a negative weight", errShape, t, n)
					}
					sum += w
				}
				if sum == 0 {
					return nil, fmt.Errorf("%w: tree %d leaf %d has zero mass", errShape, t, n)
				}
				continue
			}
			if nd.Feature < 0 || nd.Feature >= features.Width {
				return nil, fmt.Errorf("%w: tree %d node %d splits on feature %d", errShape, t, n, nd.Feature)
			}
			if nd.Left <= n || nd.Left >= len(nodes) || nd.Right <= n || nd.Right >= len(nodes) {
				return nil, fmt.Errorf("%w: tree %d node %d has invalid children", errShape, t, n)
			}
		}
	}
	return &Forest{trees: trees}, nil
}

// Kind implements Kinded.
func (f *Forest) Kind() string { return "forest" }

// Trees reports the ensemble size.
func (f *Forest) Trees() int { return len(f.trees) }

// Predict implements Classifier.
func (f *Forest) Predict(ctx context.Context, v features.Vector) (int, error) {
	idx, _, err := f.PredictWithProba(ctx, v)
	return idx, err
}

// PredictProba implements Classifier.
func (f *Forest) PredictProba(ctx context.Context, v features.Vector) ([]float64, error) {
	_, p, err := f.PredictWithProba(ctx, v)
	return p, err
}

// PredictWithProba averages the normalized leaf distributions of every tree.
func (f *Forest) PredictWithProba(_ context.Context, v features.Vector) (int, []float64, error) {
	proba := make([]float64, tier.Count)
	for _, nodes := range f.trees {
		// Children always point forward, so the walk terminates.
		n := 0
		for len(nodes[n].Value) == 0 {
			if v[nodes[n].Feature] <= nodes[n].Threshold {
				n = nodes[n].Left
			} else {
				n = nodes[n].Right
			}
		}
		leaf := nodes[n].Value
		var sum float64
		for _, w := range leaf {
			sum += w
		}
		for k, w := range leaf {
			proba[k] += w / sum
		}
	}
	for k := range proba {
		proba[k] /= float64(len(f.trees))
	}
	return Argmax(proba), proba, nil
}

// StandardScaler computes (x - mean) / scale per column.
type StandardScaler struct {
	mean, scale []float64
}

// NewStandardScaler validates that both arrays cover the numeric subset and
// that no scale is zero.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if err := checkColumns(mean, scale); err != nil {
		return nil, err
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: column %d", errZeroScale, i)
		}
	}
	return &StandardScaler{mean: clone(mean), scale: clone(scale)}, nil
}

// Kind implements Kinded.
func (s *StandardScaler) Kind() string { return "standard" }

// Transform implements Scaler.
func (s *StandardScaler) Transform(sub []float64) ([]float64, error) {
	if len(sub) != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", errShape, len(sub), len(s.mean))
	}
	out := make([]float64, len(sub))
	for i, x := range sub {
		out[i] = (x - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// MinMaxScaler computes x * scale + min per column.
type MinMaxScaler struct {
	min, scale []float64
}

// NewMinMaxScaler validates the fitted min offsets and scale factors.
func NewMinMaxScaler(minOffset, scale []float64) (*MinMaxScaler, error) {
	if err := checkColumns(minOffset, scale); err != nil {
		return nil, err
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: column %d", errZeroScale, i)
		}
	}
	return &MinMaxScaler{min: clone(minOffset), scale: clone(scale)}, nil
}

// Kind implements Kinded.
func (s *MinMaxScaler) Kind() string { return "minmax" }

// Transform implements Scaler.
func (s *MinMaxScaler) Transform(sub []float64) ([]float64, error) {
	if len(sub) != len(s.min) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", errShape, len(sub), len(s.min))
	}
	out := make([]float64, len(sub))
	for i, x := range sub {
		out[i] = x*s.scale[i] + s.min[i]
	}
	return out, nil
}

func checkColumns(a, b []float64) error {
	if len(a) != features.NumericWidth || len(b) != features.NumericWidth {
		return fmt.Errorf("%w: scaler needs %d columns", errShape, features.NumericWidth)
	}
	for i := range a {
		if math.IsNaN(a[i]) || math.IsInf(a[i], 0) || math.IsNaN(b[i]) || math.IsInf(b[i], 0) {
			return fmt.Errorf("%w: column %d is not finite", errShape, i)
		}
	}
	return nil
}

func clone(xs []float64) []float64 { return append([]float64(nil), xs...) }
