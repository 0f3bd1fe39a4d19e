package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/services"
)

// handleGetData returns the full catalog dataset
func (h *Handlers) handleGetData(w http.ResponseWriter, r *http.Request) {
	data, err := h.Catalog.GetData(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, data)
}

// handleSaveData replaces the full catalog dataset
func (h *Handlers) handleSaveData(w http.ResponseWriter, r *http.Request) {
	var data models.Dataset
	if err := decodeJSON(r, &data); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Catalog.SaveData(r.Context(), &data); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Data saved")
}

// handleExportData streams the dataset as a downloadable JSON file
func (h *Handlers) handleExportData(w http.ResponseWriter, r *http.Request) {
	data, err := h.Catalog.GetData(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("catalog-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	respondOK(w, data)
}

// handleUpdateStage patches a stage by id
func (h *Handlers) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var fields map[string]interface{}
	if err := decodeJSON(r, &fields); err != nil {
		respondError(w, err)
		return
	}

	stage, err := h.Catalog.UpdateStageFields(r.Context(), stageID, fields)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stage)
}

// handleUpdateStageByPath patches a stage addressed by hierarchy names
func (h *Handlers) handleUpdateStageByPath(w http.ResponseWriter, r *http.Request) {
	var req StagePathUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Brand == "" || req.Model == "" || req.Type == "" || req.Engine == "" {
		respondError(w, BadRequest("brand, model, type and engine are required"))
		return
	}

	stage, err := h.Catalog.UpdateStageByPath(r.Context(), services.StagePathUpdate{
		Brand:      req.Brand,
		Model:      req.Model,
		Type:       req.Type,
		Engine:     req.Engine,
		StageIndex: req.StageIndex,
		Fields:     req.Fields,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stage)
}

// ==================== Cascade Deletes ====================

func (h *Handlers) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Catalog.DeleteBrand(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Catalog.DeleteModel(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Catalog.DeleteType(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleDeleteEngine(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Catalog.DeleteEngine(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Groups ====================

func (h *Handlers) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Catalog.ListAllGroups(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, groups)
}

func (h *Handlers) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Catalog.CreateGroup(r.Context(), groupFromRequest(0, req))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, map[string]int{"id": id})
}

func (h *Handlers) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req GroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Catalog.UpdateGroup(r.Context(), groupFromRequest(id, req)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Group updated")
}

func (h *Handlers) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Catalog.DeleteGroup(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func groupFromRequest(id int, req GroupRequest) models.Group {
	return models.Group{
		ID:            id,
		BrandID:       req.BrandID,
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		IsPerformance: req.IsPerformance,
		Order:         req.Order,
		Tagline:       req.Tagline,
		Color:         req.Color,
		Icon:          req.Icon,
		Logo:          req.Logo,
	}
}

// ==================== Backups ====================

func (h *Handlers) handleListBackups(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := parseIntQuery(r, "limit")
		if err != nil {
			respondError(w, err)
			return
		}
		limit = parsed
	}

	backups, err := h.Backups.List(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, BackupListResponse{Backups: backups, Count: len(backups)})
}

func (h *Handlers) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	// Body is optional for manual backups, but a body that is present
	// must still be valid JSON
	var req CreateBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, BadRequest("Invalid JSON: "+err.Error()))
		return
	}

	backup, err := h.Backups.Create(r.Context(), req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	if backup == nil {
		respondSuccess(w, "Nothing to back up")
		return
	}
	respondCreated(w, models.BackupInfo{
		ID:          backup.ID,
		Timestamp:   backup.Timestamp,
		Description: backup.Description,
	})
}

func (h *Handlers) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req RestoreBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Backups.Restore(r.Context(), req.ID); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Backup restored")
}

func (h *Handlers) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	deleted, err := h.Backups.Delete(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !deleted {
		respondError(w, NotFound("Backup not found"))
		return
	}
	respondDeleted(w)
}

// ==================== Settings ====================

func (h *Handlers) handleGetBaseURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.Settings.BaseURL(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"baseUrl": url})
}

func (h *Handlers) handleSetBaseURL(w http.ResponseWriter, r *http.Request) {
	var req BaseURLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.SetBaseURL(r.Context(), req.BaseURL); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Base URL updated")
}
