package repository

import (
	"context"

	"github.com/supremetuning/tuningcalc/internal/models"
)

// CatalogRepository defines catalog data operations
type CatalogRepository interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrandByName(ctx context.Context, name string) (*models.Brand, error)
	ListModels(ctx context.Context, brandID int, groupID *int) ([]models.Model, error)
	GetModelByName(ctx context.Context, brandID int, name string) (*models.Model, error)
	ListTypes(ctx context.Context, modelID int) ([]models.VehicleType, error)
	GetTypeByName(ctx context.Context, modelID int, name string) (*models.VehicleType, error)
	ListEngines(ctx context.Context, typeID int) ([]models.Engine, error)
	GetEngine(ctx context.Context, id int) (*models.Engine, error)
	ListStages(ctx context.Context, engineID int) ([]models.Stage, error)
	GetStage(ctx context.Context, id int) (*models.Stage, error)
	UpdateStage(ctx context.Context, stage models.Stage) error
	GetDataset(ctx context.Context) (*models.Dataset, error)
	ReplaceDataset(ctx context.Context, data *models.Dataset) error
	NextID(ctx context.Context, collection string) (int, error)
}

// GroupRepository defines brand group data operations
type GroupRepository interface {
	ListGroups(ctx context.Context, brandID int) ([]models.Group, error)
	ListAllGroups(ctx context.Context) ([]models.Group, error)
	GetGroup(ctx context.Context, id int) (*models.Group, error)
	CreateGroup(ctx context.Context, group models.Group) (int, error)
	UpdateGroup(ctx context.Context, group models.Group) error
	DeleteGroup(ctx context.Context, id int) error
	DeleteGroupsForBrand(ctx context.Context, brandID int) error
}

// BackupRepository defines backup data operations
type BackupRepository interface {
	InsertBackup(ctx context.Context, timestamp, description string, data *models.Dataset) (int, error)
	ListBackups(ctx context.Context, limit int) ([]models.BackupInfo, error)
	GetBackup(ctx context.Context, id int) (*models.Backup, error)
	DeleteBackup(ctx context.Context, id int) (bool, error)
	CountBackups(ctx context.Context) (int, error)
	DeleteOldestBackups(ctx context.Context, n int) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	CatalogRepository
	GroupRepository
	BackupRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
