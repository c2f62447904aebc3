// Package artifact loads the pre-trained classifier and pre-fitted scaler
// from YAML documents.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/inference"
	"github.com/okian/mobicost/internal/domain/tier"
)

// Artifact kinds.
const (
	KindSoftmax  = "softmax"
	KindForest   = "forest"
	KindRemote   = "remote"
	KindStandard = "standard"
	KindMinMax   = "minmax"
)

const defaultRemoteTimeout = 2 * time.Second

type classifierDoc struct {
	Kind      string      `koanf:"kind"`
	Version   string      `koanf:"version"`
	Classes   []string    `koanf:"classes"`
	Coef      [][]float64 `koanf:"coef"`
	Intercept []float64   `koanf:"intercept"`
	Trees     []treeDoc   `koanf:"trees"`
	Endpoint  string      `koanf:"endpoint"`
	TimeoutMS int         `koanf:"timeout_ms"`
}

type treeDoc struct {
	Nodes []nodeDoc `koanf:"nodes"`
}

type nodeDoc struct {
	Feature   int       `koanf:"feature"`
	Threshold float64   `koanf:"threshold"`
	Left      int       `koanf:"left"`
	Right     int       `koanf:"right"`
	Value     []float64 `koanf:"value"`
}

type scalerDoc struct {
	Kind     string    `koanf:"kind"`
	Version  string    `koanf:"version"`
	Features []string  `koanf:"features"`
	Mean     []float64 `koanf:"mean"`
	Scale    []float64 `koanf:"scale"`
	Min      []float64 `koanf:"min"`
}

// LoadClassifier reads the classifier artifact at path. Any failure is
// reported as inference.ErrMissingArtifact.
func LoadClassifier(ctx context.Context, path string, opts ...Option) (inference.Classifier, error) {
	o := newOptions(opts)
	var doc classifierDoc
	if err := read(ctx, path, &doc); err != nil {
		return nil, missing("classifier", path, err)
	}
	if len(doc.Classes) > 0 {
		labels := make([]string, tier.Count)
		for i := range labels {
			labels[i] = tier.Label(i)
		}
		if !slices.Equal(doc.Classes, labels) {
			return nil, missing("classifier", path, fmt.Errorf("%w: classes %v, want %v", ErrInvalidArtifact, doc.Classes, labels))
		}
	}

	var (
		c   inference.Classifier
		err error
	)
	switch doc.Kind {
	case KindSoftmax:
		c, err = inference.NewSoftmax(doc.Coef, doc.Intercept)
	case KindForest:
		trees := make([][]inference.Node, len(doc.Trees))
		for t, td := range doc.Trees {
			trees[t] = make([]inference.Node, len(td.Nodes))
			for n, nd := range td.Nodes {
				trees[t][n] = inference.Node(nd)
			}
		}
		c, err = inference.NewForest(trees)
	case KindRemote:
		timeout := defaultRemoteTimeout
		if doc.TimeoutMS > 0 {
			timeout = time.Duration(doc.TimeoutMS) * time.Millisecond
		}
		c, err = NewRemote(doc.Endpoint, timeout, o.httpClient)
	default:
		err = fmt.Errorf("%w: unknown classifier kind %q", ErrInvalidArtifact, doc.Kind)
	}
	if err != nil {
		return nil, missing("classifier", path, err)
	}
	return c, nil
}

// LoadScaler reads the scaler artifact at path. Any failure is reported as
// inference.ErrMissingArtifact.
func LoadScaler(ctx context.Context, path string) (inference.Scaler, error) {
	var doc scalerDoc
	if err := read(ctx, path, &doc); err != nil {
		return nil, missing("scaler", path, err)
	}
	if len(doc.Features) > 0 && !slices.Equal(doc.Features, features.NumericNames()) {
		return nil, missing("scaler", path, fmt.Errorf("%w: features %v, want %v", ErrInvalidArtifact, doc.Features, features.NumericNames()))
	}

	var (
		s   inference.Scaler
		err error
	)
	switch doc.Kind {
	case KindStandard:
		s, err = inference.NewStandardScaler(doc.Mean, doc.Scale)
	case KindMinMax:
		s, err = inference.NewMinMaxScaler(doc.Min, doc.Scale)
	default:
		err = fmt.Errorf("%w: unknown scaler kind %q", ErrInvalidArtifact, doc.Kind)
	}
	if err != nil {
		return nil, missing("scaler", path, err)
	}
	return s, nil
}

// LoadPipeline loads both artifacts and binds them into a pipeline.
func LoadPipeline(ctx context.Context, classifierPath, scalerPath string, opts ...Option) (*inference.Pipeline, error) {
	c, err := LoadClassifier(ctx, classifierPath, opts...)
	if err != nil {
		return nil, err
	}
	s, err := LoadScaler(ctx, scalerPath)
	if err != nil {
		return nil, err
	}
	return inference.NewPipeline(c, s)
}

func read(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return errors.New("path is empty")
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return err
	}
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"})
}

func missing(what, path string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", inference.ErrMissingArtifact, what, path, err)
}
