package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
)

// PredictDependencies defines the inference operations the handler needs.
type PredictDependencies interface {
	Predict(ctx context.Context, spec model.RawSpec) (model.Prediction, error)
	PredictBatch(ctx context.Context, specs []model.RawSpec) ([]model.Outcome, error)
}

// PredictHandler serves single and batch predictions.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// predictResponse is a prediction enriched with its catalog entry.
type predictResponse struct {
	RequestID     string        `json:"request_id,omitempty"`
	Tier          int           `json:"tier"`
	Label         string        `json:"label"`
	Slug          string        `json:"slug"`
	Confidence    float64       `json:"confidence"`
	ConfidencePct string        `json:"confidence_pct"`
	Classes       []string      `json:"classes"`
	Probabilities []float64     `json:"probabilities"`
	Derived       model.Derived `json:"derived"`
	TypicalPrice  string        `json:"typical_price"`
	PopularModels []modelView   `json:"popular_models"`
	Strategy      tier.Strategy `json:"strategy"`
}

// batchRequest keeps items raw so a malformed item fails alone.
type batchRequest struct {
	Items []json.RawMessage `json:"items"`
}

type batchItem struct {
	Index      int              `json:"index"`
	Prediction *predictResponse `json:"prediction,omitempty"`
	Error      *errorResponse   `json:"error,omitempty"`
}

type batchResponse struct {
	RequestID string      `json:"request_id,omitempty"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Items     []batchItem `json:"items"`
}

// HandlePredict handles POST /v1/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	ctx := r.Context()

	var raw json.RawMessage
	if err := decode(w, r, &raw); err != nil {
		fail(ctx, w, Wrap(op, err))
		return
	}
	spec, err := parseSpec(op, raw)
	if err != nil {
		fail(ctx, w, err)
		return
	}
	p, err := h.deps.Predict(ctx, spec)
	if err != nil {
		fail(ctx, w, Wrap(op, err))
		return
	}
	resp, err := present(p)
	if err != nil {
		fail(ctx, w, Wrap(op, err))
		return
	}
	resp.RequestID = RequestIDFrom(ctx)
	writeJSON(w, http.StatusOK, resp)
}

// HandleBatch handles POST /v1/predict/batch requests. Items that fail
// validation are answered in place; the rest run on the worker pool.
func (h *PredictHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	ctx := r.Context()

	var req batchRequest
	if err := decode(w, r, &req); err != nil {
		fail(ctx, w, Wrap(op, err))
		return
	}
	if len(req.Items) == 0 {
		fail(ctx, w, WrapKind(op, ErrBadRequest, fmt.Errorf("items must not be empty")))
		return
	}

	items := make([]batchItem, len(req.Items))
	specs := make([]model.RawSpec, 0, len(req.Items))
	origin := make([]int, 0, len(req.Items))
	for i, raw := range req.Items {
		items[i].Index = i
		spec, err := parseSpec(op, raw)
		if err != nil {
			items[i].Error = itemError(err)
			continue
		}
		specs = append(specs, spec)
		origin = append(origin, i)
	}

	if len(specs) > 0 {
		outcomes, err := h.deps.PredictBatch(ctx, specs)
		if err != nil {
			fail(ctx, w, Wrap(op, err))
			return
		}
		for _, o := range outcomes {
			i := origin[o.Index]
			if o.Err != nil {
				items[i].Error = itemError(o.Err)
				continue
			}
			resp, err := present(o.Prediction)
			if err != nil {
				items[i].Error = itemError(err)
				continue
			}
			items[i].Prediction = &resp
		}
	}

	out := batchResponse{RequestID: RequestIDFrom(ctx), Items: items}
	for _, it := range items {
		if it.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// parseSpec turns one raw JSON spec into a RawSpec. Wrongly typed or absent
// fields are invalid feature vectors; anything else is a bad request.
func parseSpec(op string, raw json.RawMessage) (model.RawSpec, error) {
	spec, err := features.ParseSpec(raw)
	switch {
	case err == nil:
		return spec, nil
	case errors.Is(err, features.ErrInvalidFeatureVector):
		return model.RawSpec{}, Wrap(op, err)
	default:
		return model.RawSpec{}, WrapKind(op, ErrBadRequest, err)
	}
}

func itemError(err error) *errorResponse {
	_, code := statusOf(err)
	return &errorResponse{Code: code, Message: err.Error()}
}

// present joins a prediction with its tier's catalog entry.
func present(p model.Prediction) (predictResponse, error) {
	t, err := tier.Get(p.Tier)
	if err != nil {
		return predictResponse{}, err
	}
	classes := make([]string, tier.Count)
	for i := range classes {
		classes[i] = tier.Label(i)
	}
	return predictResponse{
		Tier:          p.Tier,
		Label:         p.Label,
		Slug:          t.Slug,
		Confidence:    p.Confidence,
		ConfidencePct: fmt.Sprintf("%.1f%%", p.Confidence*100),
		Classes:       classes,
		Probabilities: p.Probabilities,
		Derived:       p.Derived,
		TypicalPrice:  tier.FormatUSD(t.TypicalPrice()),
		PopularModels: modelViews(t.Models),
		Strategy:      t.Strategy,
	}, nil
}
