package services

import (
	"context"
	"testing"

	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/repository"
	"github.com/supremetuning/tuningcalc/internal/testutil"
)

func testLogger() logger.Logger {
	return logger.New()
}

func newBackupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	return testutil.NewTestRepository(t)
}

func TestCreate_SkipsEmptyDataset(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	backup, err := svc.Create(ctx, "manual")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if backup != nil {
		t.Errorf("expected nil backup for empty dataset, got %+v", backup)
	}

	count, err := repo.CountBackups(ctx)
	if err != nil {
		t.Fatalf("CountBackups failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no backups stored, got %d", count)
	}
}

func TestCreate_StoresSnapshot(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	backup, err := svc.Create(ctx, "before import")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if backup == nil {
		t.Fatal("expected a backup")
	}
	if backup.Description != "before import" {
		t.Errorf("expected description kept, got %q", backup.Description)
	}
	if backup.Timestamp == "" {
		t.Error("expected a timestamp")
	}
	if len(backup.Data.Brands) != 2 || len(backup.Data.Stages) != 3 {
		t.Errorf("expected full snapshot, got %d brands, %d stages",
			len(backup.Data.Brands), len(backup.Data.Stages))
	}
}

func TestCreate_RotatesBeyondLimit(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var firstID int
	for i := 0; i < maxBackups+5; i++ {
		backup, err := svc.Create(ctx, "")
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if i == 0 {
			firstID = backup.ID
		}
	}

	count, err := repo.CountBackups(ctx)
	if err != nil {
		t.Fatalf("CountBackups failed: %v", err)
	}
	if count != maxBackups {
		t.Errorf("expected rotation to cap at %d, got %d", maxBackups, count)
	}

	// The earliest backups were dropped
	if _, err := repo.GetBackup(ctx, firstID); err != repository.ErrNotFound {
		t.Errorf("expected oldest backup rotated out, got %v", err)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	original := seedDataset()
	if err := repo.ReplaceDataset(ctx, original); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	backup, err := svc.Create(ctx, "checkpoint")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mangle the live data
	smaller := seedDataset()
	smaller.Brands = smaller.Brands[:1]
	smaller.Stages = nil
	if err := repo.ReplaceDataset(ctx, smaller); err != nil {
		t.Fatalf("ReplaceDataset failed: %v", err)
	}

	if err := svc.Restore(ctx, backup.ID); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	ds, err := repo.GetDataset(ctx)
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if len(ds.Brands) != 2 || len(ds.Stages) != 3 {
		t.Errorf("expected restored dataset, got %d brands, %d stages", len(ds.Brands), len(ds.Stages))
	}

	// Restore itself snapshots the pre-restore state
	list, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected checkpoint plus pre-restore backup, got %d", len(list))
	}
}

func TestRestore_NotFound(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)

	err := svc.Restore(context.Background(), 42)
	apiErr, ok := err.(*errors.Error)
	if !ok || apiErr.Kind != errors.ErrNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestDelete_ReportsExistence(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	backup, err := svc.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, backup.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}

	deleted, err = svc.Delete(ctx, backup.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if deleted {
		t.Error("expected deleted=false for missing backup")
	}
}

func TestList_DefaultLimit(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewBackupService(testLogger(), repo)
	ctx := context.Background()

	if err := repo.ReplaceDataset(ctx, seedDataset()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, ""); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := svc.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 backups, got %d", len(list))
	}

	limited, err := svc.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 backups with limit, got %d", len(limited))
	}
}
