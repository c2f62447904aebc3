package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/mobicost/internal/domain/features"
)

const maxRemoteBody = 1 << 20

// Remote is a classifier served by an external inference endpoint.
type Remote struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	ClassIndex    *int      `json:"class_index"`
	Probabilities []float64 `json:"probabilities"`
}

// NewRemote validates the endpoint. A nil client selects http.DefaultClient.
func NewRemote(endpoint string, timeout time.Duration, client *http.Client) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: remote endpoint %q", ErrInvalidArtifact, endpoint)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{endpoint: endpoint, timeout: timeout, client: client}, nil
}

// Kind implements inference.Kinded.
func (r *Remote) Kind() string { return KindRemote }

// Predict implements inference.Classifier.
func (r *Remote) Predict(ctx context.Context, v features.Vector) (int, error) {
	idx, _, err := r.PredictWithProba(ctx, v)
	return idx, err
}

// PredictProba implements inference.Classifier.
func (r *Remote) PredictProba(ctx context.Context, v features.Vector) ([]float64, error) {
	_, p, err := r.PredictWithProba(ctx, v)
	return p, err
}

// PredictWithProba performs one round trip for both answers.
func (r *Remote) PredictWithProba(ctx context.Context, v features.Vector) (int, []float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{Features: v.Slice()})
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call %s: %w", r.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("%w: %d: %s", ErrRemoteStatus, resp.StatusCode, bytes.TrimSpace(data))
	}

	var out remoteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, nil, fmt.Errorf("decode response: %w", err)
	}
	if out.ClassIndex == nil {
		return 0, nil, errors.New("response has no class_index")
	}
	return *out.ClassIndex, out.Probabilities, nil
}
