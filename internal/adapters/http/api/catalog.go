package api

import (
	"context"
	"net/http"

	"github.com/okian/mobicost/internal/domain/features"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
)

// PresetDependencies generates quick-start specs.
type PresetDependencies interface {
	Preset(ctx context.Context, id string) (tier.Tier, model.RawSpec, error)
}

// CatalogHandler serves the tier catalog, presets and feature metadata.
type CatalogHandler struct {
	deps PresetDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps PresetDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type modelView struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image"`
}

type tierView struct {
	Index        int           `json:"index"`
	Label        string        `json:"label"`
	Slug         string        `json:"slug"`
	Color        string        `json:"color"`
	Icon         string        `json:"icon"`
	TypicalPrice string        `json:"typical_price"`
	Models       []modelView   `json:"models"`
	Strategy     tier.Strategy `json:"strategy"`
}

type presetResponse struct {
	Tier  int           `json:"tier"`
	Label string        `json:"label"`
	Slug  string        `json:"slug"`
	Spec  model.RawSpec `json:"spec"`
}

type featuresResponse struct {
	Order  []string      `json:"order"`
	Scaled []string      `json:"scaled"`
	Fields []tier.Field  `json:"fields"`
	Impact []tier.Impact `json:"impact"`
}

func modelViews(ms []tier.Model) []modelView {
	out := make([]modelView, len(ms))
	for i, m := range ms {
		out[i] = modelView{Name: m.Name, Price: m.PriceLabel(), Image: m.Image}
	}
	return out
}

func viewOf(t tier.Tier) tierView {
	return tierView{
		Index:        t.Index,
		Label:        t.Label,
		Slug:         t.Slug,
		Color:        t.Color,
		Icon:         t.Icon,
		TypicalPrice: tier.FormatUSD(t.TypicalPrice()),
		Models:       modelViews(t.Models),
		Strategy:     t.Strategy,
	}
}

// HandleTiers handles GET /v1/tiers requests.
func (h *CatalogHandler) HandleTiers(w http.ResponseWriter, _ *http.Request) {
	all := tier.All()
	out := make([]tierView, len(all))
	for i, t := range all {
		out[i] = viewOf(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTier handles GET /v1/tiers/{id} requests; id is an index, slug or label.
func (h *CatalogHandler) HandleTier(w http.ResponseWriter, r *http.Request) {
	const op = "api.tier"
	t, err := tier.Parse(r.PathValue("id"))
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(t))
}

// HandlePreset handles GET /v1/presets/{id} requests.
func (h *CatalogHandler) HandlePreset(w http.ResponseWriter, r *http.Request) {
	const op = "api.preset"
	t, spec, err := h.deps.Preset(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, presetResponse{Tier: t.Index, Label: t.Label, Slug: t.Slug, Spec: spec})
}

// HandleFeatures handles GET /v1/features requests.
func (h *CatalogHandler) HandleFeatures(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, featuresResponse{
		Order:  features.Names(),
		Scaled: features.NumericNames(),
		Fields: tier.Fields(),
		Impact: tier.FeatureImpact(),
	})
}
