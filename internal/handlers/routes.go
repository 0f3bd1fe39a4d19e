package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Catalog API (public)
	r.Get("/api/brands", h.handleGetBrands)
	r.Get("/api/brand-groups", h.handleGetBrandGroups)
	r.Get("/api/models", h.handleGetModels)
	r.Get("/api/types", h.handleGetTypes)
	r.Get("/api/engines", h.handleGetEngines)
	r.Get("/api/stages", h.handleGetStages)
	r.Get("/api/engines/{id}/qr", h.handleGetEngineQR)

	// Selection flow (public)
	r.Get("/api/selector", h.handleGetSelector)
	r.Post("/api/selector", h.handleSelectorStep)

	// Auth (public)
	r.Post("/api/auth/login", h.handleLogin)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAdmin)

		// Credentials
		r.Post("/api/auth/update-credentials", h.handleUpdateCredentials)

		// Full dataset
		r.Get("/api/admin/data", h.handleGetData)
		r.Post("/api/admin/data", h.handleSaveData)
		r.Get("/api/admin/export", h.handleExportData)

		// Stages
		r.Put("/api/admin/stages/{id}", h.handleUpdateStage)
		r.Put("/api/admin/data/stage", h.handleUpdateStageByPath)

		// Cascade deletes
		r.Delete("/api/admin/brands/{id}", h.handleDeleteBrand)
		r.Delete("/api/admin/models/{id}", h.handleDeleteModel)
		r.Delete("/api/admin/types/{id}", h.handleDeleteType)
		r.Delete("/api/admin/engines/{id}", h.handleDeleteEngine)

		// Groups
		r.Get("/api/admin/groups", h.handleListGroups)
		r.Post("/api/admin/groups", h.handleCreateGroup)
		r.Put("/api/admin/groups/{id}", h.handleUpdateGroup)
		r.Delete("/api/admin/groups/{id}", h.handleDeleteGroup)

		// Backups
		r.Get("/api/admin/backups", h.handleListBackups)
		r.Post("/api/admin/backups", h.handleCreateBackup)
		r.Post("/api/admin/backups/restore", h.handleRestoreBackup)
		r.Delete("/api/admin/backups/{id}", h.handleDeleteBackup)

		// Settings
		r.Get("/api/admin/settings/base-url", h.handleGetBaseURL)
		r.Put("/api/admin/settings/base-url", h.handleSetBaseURL)
	})

	return r
}
