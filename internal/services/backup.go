package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/repository"
)

// maxBackups is the rotation limit: once the store holds more than this
// many snapshots the oldest ones are dropped.
const maxBackups = 50

// defaultBackupListLimit caps listing when the caller gives no limit
const defaultBackupListLimit = 50

// BackupService handles dataset snapshots and restore
type BackupService struct {
	log         logger.Logger
	repo        repository.FullRepository
	broadcaster Broadcaster
}

// NewBackupService creates a new backup service
func NewBackupService(log logger.Logger, repo repository.FullRepository) *BackupService {
	return &BackupService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for backup events
func (s *BackupService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *BackupService) broadcast(event string, payload map[string]interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastCatalogEvent(event, payload)
	}
}

// Create snapshots the current dataset. An empty catalog (zero brands)
// is never worth snapshotting, so that case is skipped and reported as
// success with a nil backup.
func (s *BackupService) Create(ctx context.Context, description string) (*models.Backup, error) {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.Brands) == 0 {
		s.log.Debug("skipping backup of empty dataset", "description", description)
		return nil, nil
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	id, err := s.repo.InsertBackup(ctx, timestamp, description, ds)
	if err != nil {
		return nil, err
	}

	if err := s.rotate(ctx); err != nil {
		s.log.Warn("backup rotation failed", "error", err)
	}

	s.log.Info("backup created", "backup_id", id, "description", description)
	s.broadcast("backup_created", map[string]interface{}{"backupId": id})
	return &models.Backup{
		ID:          id,
		Timestamp:   timestamp,
		Description: description,
		Data:        *ds,
	}, nil
}

// rotate drops the oldest snapshots beyond the retention limit
func (s *BackupService) rotate(ctx context.Context) error {
	count, err := s.repo.CountBackups(ctx)
	if err != nil {
		return err
	}
	if count <= maxBackups {
		return nil
	}
	return s.repo.DeleteOldestBackups(ctx, count-maxBackups)
}

// List returns backup metadata, newest first, without the payloads
func (s *BackupService) List(ctx context.Context, limit int) ([]models.BackupInfo, error) {
	if limit <= 0 {
		limit = defaultBackupListLimit
	}
	return s.repo.ListBackups(ctx, limit)
}

// Restore replaces the live dataset with a backup's payload. The current
// state is snapshotted first so a restore is itself reversible.
func (s *BackupService) Restore(ctx context.Context, id int) error {
	backup, err := s.repo.GetBackup(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("backup %d not found", id)
		}
		return err
	}

	if _, err := s.Create(ctx, "before restore"); err != nil {
		s.log.Warn("pre-restore backup failed", "error", err)
	}

	if err := s.repo.ReplaceDataset(ctx, &backup.Data); err != nil {
		return err
	}

	s.log.Info("backup restored", "backup_id", id, "timestamp", backup.Timestamp)
	s.broadcast("backup_restored", map[string]interface{}{"backupId": id})
	return nil
}

// Delete removes a single backup. Returns false when no such backup exists.
func (s *BackupService) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.DeleteBackup(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("backup deleted", "backup_id", id)
	}
	return deleted, nil
}
