package services

import (
	"context"

	"github.com/supremetuning/tuningcalc/internal/models"
)

// CatalogServicer defines the catalog business logic interface
type CatalogServicer interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListGroups(ctx context.Context, brandID int) ([]models.Group, error)
	ListAllGroups(ctx context.Context) ([]models.Group, error)
	BrandGroups(ctx context.Context, brandID int) (*BrandGroupConfig, error)
	BrandHasGroups(ctx context.Context, brandID int) (bool, error)
	ListModels(ctx context.Context, brandID int, groupID *int) ([]models.Model, error)
	ListTypes(ctx context.Context, modelID int) ([]models.VehicleType, error)
	ListEngines(ctx context.Context, typeID int) ([]models.Engine, error)
	GetEngine(ctx context.Context, id int) (*models.Engine, error)
	ListStages(ctx context.Context, engineID int) ([]models.Stage, error)

	GetData(ctx context.Context) (*models.Dataset, error)
	SaveData(ctx context.Context, data *models.Dataset) error
	UpdateStageFields(ctx context.Context, stageID int, fields map[string]interface{}) (*models.Stage, error)
	UpdateStageByPath(ctx context.Context, req StagePathUpdate) (*models.Stage, error)

	CreateGroup(ctx context.Context, group models.Group) (int, error)
	UpdateGroup(ctx context.Context, group models.Group) error
	DeleteGroup(ctx context.Context, id int) error

	DeleteBrand(ctx context.Context, brandID int) error
	DeleteModel(ctx context.Context, modelID int) error
	DeleteType(ctx context.Context, typeID int) error
	DeleteEngine(ctx context.Context, engineID int) error
}

// BackupServicer defines the backup/restore business logic interface
type BackupServicer interface {
	Create(ctx context.Context, description string) (*models.Backup, error)
	List(ctx context.Context, limit int) ([]models.BackupInfo, error)
	Restore(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) (bool, error)
}

// SettingsServicer defines the settings business logic interface
type SettingsServicer interface {
	Credentials(ctx context.Context) (username, password string, err error)
	SeedCredentials(ctx context.Context, username, password string) error
	UpdateCredentials(ctx context.Context, currentPassword, newUsername, newPassword string) error
	BaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
}

// Backupper is the pre-write snapshot hook used by mutating catalog operations
type Backupper interface {
	Create(ctx context.Context, description string) (*models.Backup, error)
}

// Broadcaster defines the interface for pushing catalog events to clients
type Broadcaster interface {
	BroadcastCatalogEvent(event string, payload map[string]interface{})
}
