package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/supremetuning/tuningcalc/internal/errors"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestEngineQR_GeneratesPNG(t *testing.T) {
	repo := newBackupTestRepo(t)
	settings := NewSettingsService(testLogger(), repo)
	svc := NewShareService(testLogger(), repo, settings)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := settings.SetBaseURL(ctx, "http://192.168.1.10:8080"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}

	png, err := svc.EngineQR(ctx, 1)
	if err != nil {
		t.Fatalf("EngineQR failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("expected PNG output")
	}
}

func TestEngineQR_UnknownEngine(t *testing.T) {
	repo := newBackupTestRepo(t)
	settings := NewSettingsService(testLogger(), repo)
	svc := NewShareService(testLogger(), repo, settings)

	_, err := svc.EngineQR(context.Background(), 42)
	apiErr, ok := err.(*errors.Error)
	if !ok || apiErr.Kind != errors.ErrNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestEngineQR_MissingBaseURL(t *testing.T) {
	repo := newBackupTestRepo(t)
	settings := NewSettingsService(testLogger(), repo)
	svc := NewShareService(testLogger(), repo, settings)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := svc.EngineQR(ctx, 1)
	apiErr, ok := err.(*errors.Error)
	if !ok || apiErr.Kind != errors.ErrValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
