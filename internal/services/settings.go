package services

import (
	"context"
	stderrors "errors"

	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/repository"
)

const (
	settingAdminUsername = "admin_username"
	settingAdminPassword = "admin_password"
	settingBaseURL       = "base_url"

	defaultAdminUsername = "admin"
	defaultAdminPassword = "password"

	minPasswordLength = 6
)

// SettingsService handles admin credentials and instance settings
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// Credentials returns the stored admin username and password, falling
// back to the defaults when either setting is missing.
func (s *SettingsService) Credentials(ctx context.Context) (string, string, error) {
	username, err := s.repo.GetSetting(ctx, settingAdminUsername)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			return "", "", err
		}
		username = defaultAdminUsername
	}
	password, err := s.repo.GetSetting(ctx, settingAdminPassword)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			return "", "", err
		}
		password = defaultAdminPassword
	}
	return username, password, nil
}

// SeedCredentials overrides stored credentials at startup. Empty values
// are ignored so an unset environment leaves the stored ones alone.
func (s *SettingsService) SeedCredentials(ctx context.Context, username, password string) error {
	if username != "" {
		if err := s.repo.SetSetting(ctx, settingAdminUsername, username); err != nil {
			return err
		}
		s.log.Info("admin username seeded from environment")
	}
	if password != "" {
		if err := s.repo.SetSetting(ctx, settingAdminPassword, password); err != nil {
			return err
		}
		s.log.Info("admin password seeded from environment")
	}
	return nil
}

// UpdateCredentials changes the admin username and password after
// verifying the current password.
func (s *SettingsService) UpdateCredentials(ctx context.Context, currentPassword, newUsername, newPassword string) error {
	_, stored, err := s.Credentials(ctx)
	if err != nil {
		return err
	}
	if currentPassword != stored {
		return ErrPasswordMismatch
	}
	if newUsername == "" {
		return ErrMissingUsername
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	if err := s.repo.SetSetting(ctx, settingAdminUsername, newUsername); err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, settingAdminPassword, newPassword); err != nil {
		return err
	}
	s.log.Info("admin credentials updated", "username", newUsername)
	return nil
}

// BaseURL returns the configured public base URL, empty when unset
func (s *SettingsService) BaseURL(ctx context.Context) (string, error) {
	url, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return url, nil
}

// SetBaseURL stores the public base URL used for QR code links
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, settingBaseURL, url)
}
