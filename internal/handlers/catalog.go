package handlers

import (
	"net/http"
	"strconv"

	"github.com/supremetuning/tuningcalc/internal/stageview"
)

// handleGetBrands returns all brands
func (h *Handlers) handleGetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Catalog.ListBrands(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, brands)
}

// handleGetBrandGroups returns the group config for a brand
func (h *Handlers) handleGetBrandGroups(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseIntQuery(r, "brandId")
	if err != nil {
		respondError(w, err)
		return
	}

	config, err := h.Catalog.BrandGroups(r.Context(), brandID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, config)
}

// handleGetModels returns models for a brand, optionally scoped to a group
func (h *Handlers) handleGetModels(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseIntQuery(r, "brandId")
	if err != nil {
		respondError(w, err)
		return
	}

	var groupID *int
	if raw := r.URL.Query().Get("groupId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, BadRequest("Invalid groupId parameter"))
			return
		}
		groupID = &id
	}

	ms, err := h.Catalog.ListModels(r.Context(), brandID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ms)
}

// handleGetTypes returns vehicle types for a model
func (h *Handlers) handleGetTypes(w http.ResponseWriter, r *http.Request) {
	modelID, err := parseIntQuery(r, "modelId")
	if err != nil {
		respondError(w, err)
		return
	}

	ts, err := h.Catalog.ListTypes(r.Context(), modelID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ts)
}

// handleGetEngines returns engines for a vehicle type
func (h *Handlers) handleGetEngines(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseIntQuery(r, "typeId")
	if err != nil {
		respondError(w, err)
		return
	}

	es, err := h.Catalog.ListEngines(r.Context(), typeID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, es)
}

// handleGetStages returns an engine's stages with their comparison charts
func (h *Handlers) handleGetStages(w http.ResponseWriter, r *http.Request) {
	engineID, err := parseIntQuery(r, "engineId")
	if err != nil {
		respondError(w, err)
		return
	}

	// 404 on unknown engines rather than an empty list
	if _, err := h.Catalog.GetEngine(r.Context(), engineID); err != nil {
		respondError(w, err)
		return
	}

	stages, err := h.Catalog.ListStages(r.Context(), engineID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := StagesResponse{EngineID: engineID, Stages: make([]StageResponse, 0, len(stages))}
	for _, stage := range stages {
		resp.Stages = append(resp.Stages, StageResponse{
			Stage:      stage,
			Comparison: stageview.Compare(stage),
		})
	}
	respondOK(w, resp)
}

// handleGetEngineQR returns a PNG QR code linking to the engine's result page
func (h *Handlers) handleGetEngineQR(w http.ResponseWriter, r *http.Request) {
	engineID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Share.EngineQR(r.Context(), engineID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
