package services

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/repository"
)

// stageFieldAllowList is the set of stage fields an admin may patch.
// Unknown keys are dropped silently so stale clients cannot corrupt rows.
var stageFieldAllowList = map[string]bool{
	"stageName": true,
	"stockHp":   true,
	"tunedHp":   true,
	"stockNm":   true,
	"tunedNm":   true,
	"price":     true,
}

// BrandGroupConfig describes how a brand's model list should be presented:
// either split into groups or as a single flat list.
type BrandGroupConfig struct {
	HasGroups bool           `json:"hasGroups"`
	BrandName string         `json:"brandName"`
	Groups    []models.Group `json:"groups"`
}

// StagePathUpdate identifies a stage by its position in the vehicle
// hierarchy rather than by id. Names match case-insensitively and also
// accept URL slugs; Engine additionally accepts a numeric id.
type StagePathUpdate struct {
	Brand      string
	Model      string
	Type       string
	Engine     string
	StageIndex int
	Fields     map[string]interface{}
}

// CatalogService handles catalog reads, bulk writes and stage editing
type CatalogService struct {
	log         logger.Logger
	repo        repository.FullRepository
	backups     Backupper
	broadcaster Broadcaster
}

// NewCatalogService creates a new catalog service. The backupper is
// invoked before every mutating operation; a nil backupper disables
// pre-write snapshots (used in tests).
func NewCatalogService(log logger.Logger, repo repository.FullRepository, backups Backupper) *CatalogService {
	return &CatalogService{
		log:     log,
		repo:    repo,
		backups: backups,
	}
}

// SetBroadcaster sets the broadcaster for catalog change events
func (s *CatalogService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *CatalogService) broadcast(event string, payload map[string]interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastCatalogEvent(event, payload)
	}
}

// preWriteBackup snapshots the dataset before a mutation. Backup failures
// are logged but never block the write itself.
func (s *CatalogService) preWriteBackup(ctx context.Context, description string) {
	if s.backups == nil {
		return
	}
	if _, err := s.backups.Create(ctx, description); err != nil {
		s.log.Warn("pre-write backup failed", "description", description, "error", err)
	}
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *CatalogService) ListGroups(ctx context.Context, brandID int) ([]models.Group, error) {
	return s.repo.ListGroups(ctx, brandID)
}

// ListAllGroups returns every group across all brands for the admin editor
func (s *CatalogService) ListAllGroups(ctx context.Context) ([]models.Group, error) {
	return s.repo.ListAllGroups(ctx)
}

// BrandGroups returns the group presentation config for a brand. A brand
// uses grouped navigation when it has more than one group, or exactly one
// group that is marked as a performance division.
func (s *CatalogService) BrandGroups(ctx context.Context, brandID int) (*BrandGroupConfig, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	var brandName string
	found := false
	for _, b := range brands {
		if b.ID == brandID {
			brandName = b.Name
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NotFoundf("brand %d not found", brandID)
	}

	groups, err := s.repo.ListGroups(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return &BrandGroupConfig{
		HasGroups: groupsEnableSplit(groups),
		BrandName: brandName,
		Groups:    groups,
	}, nil
}

// BrandHasGroups reports whether a brand's models are navigated via groups
func (s *CatalogService) BrandHasGroups(ctx context.Context, brandID int) (bool, error) {
	groups, err := s.repo.ListGroups(ctx, brandID)
	if err != nil {
		return false, err
	}
	return groupsEnableSplit(groups), nil
}

func groupsEnableSplit(groups []models.Group) bool {
	if len(groups) > 1 {
		return true
	}
	return len(groups) == 1 && groups[0].IsPerformance
}

func (s *CatalogService) ListModels(ctx context.Context, brandID int, groupID *int) ([]models.Model, error) {
	return s.repo.ListModels(ctx, brandID, groupID)
}

func (s *CatalogService) ListTypes(ctx context.Context, modelID int) ([]models.VehicleType, error) {
	return s.repo.ListTypes(ctx, modelID)
}

func (s *CatalogService) ListEngines(ctx context.Context, typeID int) ([]models.Engine, error) {
	return s.repo.ListEngines(ctx, typeID)
}

func (s *CatalogService) GetEngine(ctx context.Context, id int) (*models.Engine, error) {
	engine, err := s.repo.GetEngine(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("engine %d not found", id)
		}
		return nil, err
	}
	return engine, nil
}

func (s *CatalogService) ListStages(ctx context.Context, engineID int) ([]models.Stage, error) {
	return s.repo.ListStages(ctx, engineID)
}

// GetData returns the full catalog dataset
func (s *CatalogService) GetData(ctx context.Context) (*models.Dataset, error) {
	return s.repo.GetDataset(ctx)
}

// SaveData replaces the full catalog dataset. A snapshot is taken first
// so a bad import can always be rolled back.
func (s *CatalogService) SaveData(ctx context.Context, data *models.Dataset) error {
	if data == nil || data.Brands == nil {
		return errors.Validation("invalid data: brands must be an array")
	}

	s.preWriteBackup(ctx, "before full dataset save")

	if err := s.repo.ReplaceDataset(ctx, data); err != nil {
		return err
	}

	s.log.Info("dataset saved",
		"brands", len(data.Brands),
		"models", len(data.Models),
		"types", len(data.Types),
		"engines", len(data.Engines),
		"stages", len(data.Stages))
	s.broadcast("dataset_saved", map[string]interface{}{
		"brands": len(data.Brands),
		"stages": len(data.Stages),
	})
	return nil
}

// UpdateStageFields patches a single stage by id. Only the allow-listed
// fields are applied; anything else in the payload is ignored.
func (s *CatalogService) UpdateStageFields(ctx context.Context, stageID int, fields map[string]interface{}) (*models.Stage, error) {
	stage, err := s.repo.GetStage(ctx, stageID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundf("stage %d not found", stageID)
		}
		return nil, err
	}

	applyStageFields(stage, fields)

	s.preWriteBackup(ctx, "before stage update")

	if err := s.repo.UpdateStage(ctx, *stage); err != nil {
		return nil, err
	}

	s.log.Info("stage updated", "stage_id", stageID)
	s.broadcast("stage_updated", map[string]interface{}{"stageId": stageID})
	return stage, nil
}

// UpdateStageByPath patches a stage addressed by brand/model/type/engine
// names and a zero-based stage index. Each level that fails to resolve
// yields its own not-found error so the caller can tell which segment
// was wrong.
func (s *CatalogService) UpdateStageByPath(ctx context.Context, req StagePathUpdate) (*models.Stage, error) {
	brand, err := s.resolveBrand(ctx, req.Brand)
	if err != nil {
		return nil, err
	}

	model, err := s.resolveModel(ctx, brand.ID, req.Model)
	if err != nil {
		return nil, err
	}

	vtype, err := s.resolveType(ctx, model.ID, req.Type)
	if err != nil {
		return nil, err
	}

	engine, err := s.resolveEngine(ctx, vtype.ID, req.Engine)
	if err != nil {
		return nil, err
	}

	stages, err := s.repo.ListStages(ctx, engine.ID)
	if err != nil {
		return nil, err
	}
	if req.StageIndex < 0 || req.StageIndex >= len(stages) {
		return nil, errors.NotFoundf("stage index %d out of range for engine %q", req.StageIndex, engine.Name)
	}

	stage := stages[req.StageIndex]
	applyStageFields(&stage, req.Fields)

	s.preWriteBackup(ctx, "before stage update")

	if err := s.repo.UpdateStage(ctx, stage); err != nil {
		return nil, err
	}

	s.log.Info("stage updated by path",
		"brand", brand.Name, "model", model.Name,
		"type", vtype.Name, "engine", engine.Name,
		"stage_index", req.StageIndex)
	s.broadcast("stage_updated", map[string]interface{}{"stageId": stage.ID})
	return &stage, nil
}

func (s *CatalogService) resolveBrand(ctx context.Context, name string) (*models.Brand, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(name)
	for i := range brands {
		if strings.ToLower(brands[i].Name) == want || brands[i].Slug() == want {
			return &brands[i], nil
		}
	}
	return nil, errors.NotFoundf("brand %q not found", name)
}

func (s *CatalogService) resolveModel(ctx context.Context, brandID int, name string) (*models.Model, error) {
	ms, err := s.repo.ListModels(ctx, brandID, nil)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(name)
	for i := range ms {
		if strings.ToLower(ms[i].Name) == want || models.Slugify(ms[i].Name) == want {
			return &ms[i], nil
		}
	}
	return nil, errors.NotFoundf("model %q not found", name)
}

func (s *CatalogService) resolveType(ctx context.Context, modelID int, name string) (*models.VehicleType, error) {
	ts, err := s.repo.ListTypes(ctx, modelID)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(name)
	for i := range ts {
		if strings.ToLower(ts[i].Name) == want || models.Slugify(ts[i].Name) == want {
			return &ts[i], nil
		}
	}
	return nil, errors.NotFoundf("type %q not found", name)
}

func (s *CatalogService) resolveEngine(ctx context.Context, typeID int, nameOrID string) (*models.Engine, error) {
	es, err := s.repo.ListEngines(ctx, typeID)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(nameOrID)
	id, idErr := strconv.Atoi(nameOrID)
	for i := range es {
		if strings.ToLower(es[i].Name) == want || models.Slugify(es[i].Name) == want {
			return &es[i], nil
		}
		if idErr == nil && es[i].ID == id {
			return &es[i], nil
		}
	}
	return nil, errors.NotFoundf("engine %q not found", nameOrID)
}

// applyStageFields copies allow-listed values onto the stage. JSON numbers
// arrive as float64 and are rounded down to int for the hp/nm fields.
func applyStageFields(stage *models.Stage, fields map[string]interface{}) {
	for key, value := range fields {
		if !stageFieldAllowList[key] {
			continue
		}
		switch key {
		case "stageName":
			if v, ok := value.(string); ok {
				stage.StageName = v
			}
		case "stockHp":
			if v, ok := toInt(value); ok {
				stage.StockHp = v
			}
		case "tunedHp":
			if v, ok := toInt(value); ok {
				stage.TunedHp = v
			}
		case "stockNm":
			if v, ok := toInt(value); ok {
				stage.StockNm = v
			}
		case "tunedNm":
			if v, ok := toInt(value); ok {
				stage.TunedNm = v
			}
		case "price":
			if v, ok := toFloat(value); ok {
				stage.Price = v
			}
		}
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// CreateGroup creates a brand group with the next free id
func (s *CatalogService) CreateGroup(ctx context.Context, group models.Group) (int, error) {
	if group.Name == "" {
		return 0, errors.Validation("group name is required")
	}
	if group.BrandID <= 0 {
		return 0, errors.Validation("group brandId is required")
	}
	if group.DisplayName == "" {
		group.DisplayName = group.Name
	}

	id, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return 0, err
	}
	s.log.Info("group created", "group_id", id, "brand_id", group.BrandID, "name", group.Name)
	s.broadcast("group_created", map[string]interface{}{"groupId": id})
	return id, nil
}

func (s *CatalogService) UpdateGroup(ctx context.Context, group models.Group) error {
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("group %d not found", group.ID)
		}
		return err
	}
	s.broadcast("group_updated", map[string]interface{}{"groupId": group.ID})
	return nil
}

func (s *CatalogService) DeleteGroup(ctx context.Context, id int) error {
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFoundf("group %d not found", id)
		}
		return err
	}
	s.broadcast("group_deleted", map[string]interface{}{"groupId": id})
	return nil
}
