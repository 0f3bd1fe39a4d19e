package handlers

import (
	"github.com/supremetuning/tuningcalc/internal/auth"
	"github.com/supremetuning/tuningcalc/internal/services"
	"github.com/supremetuning/tuningcalc/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Catalog  services.CatalogServicer
	Backups  services.BackupServicer
	Settings services.SettingsServicer
	Share    services.ShareServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	catalog services.CatalogServicer,
	backups services.BackupServicer,
	settings services.SettingsServicer,
	share services.ShareServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Catalog:  catalog,
		Backups:  backups,
		Settings: settings,
		Share:    share,
		Auth:     adminAuth,
		Hub:      hub,
		Log:      log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance for API endpoint tests
func NewForTesting(
	catalog services.CatalogServicer,
	backups services.BackupServicer,
	settings services.SettingsServicer,
	adminAuth *auth.Auth,
) *Handlers {
	return &Handlers{
		Catalog:  catalog,
		Backups:  backups,
		Settings: settings,
		Auth:     adminAuth,
		Log:      NoopHTTPLogger{},
	}
}
