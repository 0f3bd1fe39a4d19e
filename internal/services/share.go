package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/repository"
)

// ShareServicer builds shareable QR codes for engine result pages
type ShareServicer interface {
	EngineQR(ctx context.Context, engineID int) ([]byte, error)
}

// ShareService renders QR codes that link customers straight to an
// engine's stage overview page.
type ShareService struct {
	log      logger.Logger
	repo     repository.CatalogRepository
	settings SettingsServicer
}

// NewShareService creates a new share service
func NewShareService(log logger.Logger, repo repository.CatalogRepository, settings SettingsServicer) *ShareService {
	return &ShareService{log: log, repo: repo, settings: settings}
}

// EngineQR returns a PNG QR code linking to the engine's result page
func (s *ShareService) EngineQR(ctx context.Context, engineID int) ([]byte, error) {
	if _, err := s.repo.GetEngine(ctx, engineID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("engine %d not found", engineID)
		}
		return nil, err
	}

	baseURL, err := s.settings.BaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, errors.Validation("base URL not configured")
	}

	resultURL := fmt.Sprintf("%s/result?engineId=%d", strings.TrimSuffix(baseURL, "/"), engineID)
	return qrcode.Encode(resultURL, qrcode.Medium, 256)
}
