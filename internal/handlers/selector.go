package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/selector"
	"github.com/supremetuning/tuningcalc/internal/services"
)

// catalogFetcher adapts the catalog service to the selector's Fetcher
type catalogFetcher struct {
	catalog services.CatalogServicer
}

func (f catalogFetcher) Brands(ctx context.Context) ([]models.Brand, error) {
	return f.catalog.ListBrands(ctx)
}

func (f catalogFetcher) BrandHasGroups(ctx context.Context, brandID int) (bool, error) {
	return f.catalog.BrandHasGroups(ctx, brandID)
}

func (f catalogFetcher) Groups(ctx context.Context, brandID int) ([]models.Group, error) {
	return f.catalog.ListGroups(ctx, brandID)
}

func (f catalogFetcher) Models(ctx context.Context, brandID int, groupID *int) ([]models.Model, error) {
	return f.catalog.ListModels(ctx, brandID, groupID)
}

func (f catalogFetcher) Types(ctx context.Context, modelID int) ([]models.VehicleType, error) {
	return f.catalog.ListTypes(ctx, modelID)
}

func (f catalogFetcher) Engines(ctx context.Context, typeID int) ([]models.Engine, error) {
	return f.catalog.ListEngines(ctx, typeID)
}

// The selection flow is client state: every request gets its own Flow,
// seeded from whatever selection the client sends back. Nothing is shared
// between visitors.

// handleGetSelector builds a fresh flow and replays any selections passed
// as query parameters, so a shared or bookmarked link lands mid-flow.
func (h *Handlers) handleGetSelector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flow := selector.NewFlow(catalogFetcher{h.Catalog})
	state, err := flow.Reset(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	steps := []struct {
		param  string
		hasArg bool
		apply  func(context.Context, int) (*selector.State, error)
	}{
		{"brandId", true, flow.SelectBrand},
		{"groupId", true, flow.SelectGroup},
		{"modelId", true, flow.SelectModel},
		{"typeId", true, flow.SelectType},
		{"engineId", false, nil},
	}
	for _, step := range steps {
		value := r.URL.Query().Get(step.param)
		if value == "" {
			continue
		}
		id, err := strconv.Atoi(value)
		if err != nil {
			respondError(w, BadRequest("Invalid "+step.param+" parameter"))
			return
		}
		if !step.hasArg {
			state = flow.SelectEngine(id)
			continue
		}
		if state, err = step.apply(ctx, id); err != nil {
			respondError(w, err)
			return
		}
	}
	respondOK(w, state)
}

// handleSelectorStep advances the caller's selection by one level. The
// request carries the selection returned by the previous step.
func (h *Handlers) handleSelectorStep(w http.ResponseWriter, r *http.Request) {
	var req SelectorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	flow := selector.NewFlowFrom(catalogFetcher{h.Catalog}, req.Selection)
	var (
		state *selector.State
		err   error
	)
	switch req.Level {
	case "brand":
		state, err = flow.SelectBrand(ctx, req.ID)
	case "group":
		state, err = flow.SelectGroup(ctx, req.ID)
	case "model":
		state, err = flow.SelectModel(ctx, req.ID)
	case "type":
		state, err = flow.SelectType(ctx, req.ID)
	case "engine":
		state = flow.SelectEngine(req.ID)
	default:
		respondError(w, BadRequest("Unknown selector level: "+req.Level))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, state)
}
