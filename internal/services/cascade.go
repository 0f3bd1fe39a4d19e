package services

import (
	"context"
	"fmt"

	"github.com/supremetuning/tuningcalc/internal/errors"
	"github.com/supremetuning/tuningcalc/internal/models"
)

// Cascade deletes work on an in-memory snapshot: descendant id sets are
// computed level by level before anything is removed, then the filtered
// dataset replaces the stored one in a single call. That way a delete
// can never leave a child row pointing at a missing parent.

type intSet map[int]bool

func (s intSet) add(id int)      { s[id] = true }
func (s intSet) has(id int) bool { return s[id] }

// DeleteBrand removes a brand and all of its models, types, engines,
// stages and groups.
func (s *CatalogService) DeleteBrand(ctx context.Context, brandID int) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}

	if !containsBrand(ds.Brands, brandID) {
		return errors.NotFoundf("brand %d not found", brandID)
	}

	s.preWriteBackup(ctx, fmt.Sprintf("before deleting brand %d", brandID))

	modelIDs := intSet{}
	for _, m := range ds.Models {
		if m.BrandID == brandID {
			modelIDs.add(m.ID)
		}
	}
	typeIDs, engineIDs := descendantIDs(ds, modelIDs)

	next := &models.Dataset{
		Brands:  []models.Brand{},
		Models:  []models.Model{},
		Types:   []models.VehicleType{},
		Engines: []models.Engine{},
		Stages:  []models.Stage{},
	}
	for _, b := range ds.Brands {
		if b.ID != brandID {
			next.Brands = append(next.Brands, b)
		}
	}
	filterChildren(ds, next, modelIDs, typeIDs, engineIDs)

	if err := s.repo.ReplaceDataset(ctx, next); err != nil {
		return err
	}
	if err := s.repo.DeleteGroupsForBrand(ctx, brandID); err != nil {
		s.log.Warn("failed to delete groups for brand", "brand_id", brandID, "error", err)
	}

	s.log.Info("brand deleted", "brand_id", brandID,
		"models", len(modelIDs), "types", len(typeIDs), "engines", len(engineIDs))
	s.broadcast("cascade_delete", map[string]interface{}{"level": "brand", "id": brandID})
	return nil
}

// DeleteModel removes a model and its types, engines and stages
func (s *CatalogService) DeleteModel(ctx context.Context, modelID int) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, m := range ds.Models {
		if m.ID == modelID {
			found = true
			break
		}
	}
	if !found {
		return errors.NotFoundf("model %d not found", modelID)
	}

	s.preWriteBackup(ctx, fmt.Sprintf("before deleting model %d", modelID))

	modelIDs := intSet{modelID: true}
	typeIDs, engineIDs := descendantIDs(ds, modelIDs)

	next := &models.Dataset{
		Brands:  ds.Brands,
		Models:  []models.Model{},
		Types:   []models.VehicleType{},
		Engines: []models.Engine{},
		Stages:  []models.Stage{},
	}
	filterChildren(ds, next, modelIDs, typeIDs, engineIDs)

	if err := s.repo.ReplaceDataset(ctx, next); err != nil {
		return err
	}

	s.log.Info("model deleted", "model_id", modelID,
		"types", len(typeIDs), "engines", len(engineIDs))
	s.broadcast("cascade_delete", map[string]interface{}{"level": "model", "id": modelID})
	return nil
}

// DeleteType removes a vehicle type and its engines and stages
func (s *CatalogService) DeleteType(ctx context.Context, typeID int) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, t := range ds.Types {
		if t.ID == typeID {
			found = true
			break
		}
	}
	if !found {
		return errors.NotFoundf("type %d not found", typeID)
	}

	s.preWriteBackup(ctx, fmt.Sprintf("before deleting type %d", typeID))

	typeIDs := intSet{typeID: true}
	engineIDs := intSet{}
	for _, e := range ds.Engines {
		if typeIDs.has(e.TypeID) {
			engineIDs.add(e.ID)
		}
	}

	next := &models.Dataset{
		Brands:  ds.Brands,
		Models:  ds.Models,
		Types:   []models.VehicleType{},
		Engines: []models.Engine{},
		Stages:  []models.Stage{},
	}
	for _, t := range ds.Types {
		if !typeIDs.has(t.ID) {
			next.Types = append(next.Types, t)
		}
	}
	for _, e := range ds.Engines {
		if !engineIDs.has(e.ID) {
			next.Engines = append(next.Engines, e)
		}
	}
	for _, st := range ds.Stages {
		if !engineIDs.has(st.EngineID) {
			next.Stages = append(next.Stages, st)
		}
	}

	if err := s.repo.ReplaceDataset(ctx, next); err != nil {
		return err
	}

	s.log.Info("type deleted", "type_id", typeID, "engines", len(engineIDs))
	s.broadcast("cascade_delete", map[string]interface{}{"level": "type", "id": typeID})
	return nil
}

// DeleteEngine removes an engine and its stages
func (s *CatalogService) DeleteEngine(ctx context.Context, engineID int) error {
	ds, err := s.repo.GetDataset(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, e := range ds.Engines {
		if e.ID == engineID {
			found = true
			break
		}
	}
	if !found {
		return errors.NotFoundf("engine %d not found", engineID)
	}

	s.preWriteBackup(ctx, fmt.Sprintf("before deleting engine %d", engineID))

	next := &models.Dataset{
		Brands:  ds.Brands,
		Models:  ds.Models,
		Types:   ds.Types,
		Engines: []models.Engine{},
		Stages:  []models.Stage{},
	}
	for _, e := range ds.Engines {
		if e.ID != engineID {
			next.Engines = append(next.Engines, e)
		}
	}
	for _, st := range ds.Stages {
		if st.EngineID != engineID {
			next.Stages = append(next.Stages, st)
		}
	}

	if err := s.repo.ReplaceDataset(ctx, next); err != nil {
		return err
	}

	s.log.Info("engine deleted", "engine_id", engineID)
	s.broadcast("cascade_delete", map[string]interface{}{"level": "engine", "id": engineID})
	return nil
}

func containsBrand(brands []models.Brand, id int) bool {
	for _, b := range brands {
		if b.ID == id {
			return true
		}
	}
	return false
}

// descendantIDs walks the hierarchy below the given model ids and
// returns the type and engine id sets that belong to them.
func descendantIDs(ds *models.Dataset, modelIDs intSet) (typeIDs, engineIDs intSet) {
	typeIDs = intSet{}
	for _, t := range ds.Types {
		if modelIDs.has(t.ModelID) {
			typeIDs.add(t.ID)
		}
	}
	engineIDs = intSet{}
	for _, e := range ds.Engines {
		if typeIDs.has(e.TypeID) {
			engineIDs.add(e.ID)
		}
	}
	return typeIDs, engineIDs
}

// filterChildren copies every model, type, engine and stage that is NOT
// in the given id sets from ds into next.
func filterChildren(ds, next *models.Dataset, modelIDs, typeIDs, engineIDs intSet) {
	for _, m := range ds.Models {
		if !modelIDs.has(m.ID) {
			next.Models = append(next.Models, m)
		}
	}
	for _, t := range ds.Types {
		if !typeIDs.has(t.ID) {
			next.Types = append(next.Types, t)
		}
	}
	for _, e := range ds.Engines {
		if !engineIDs.has(e.ID) {
			next.Engines = append(next.Engines, e)
		}
	}
	for _, st := range ds.Stages {
		if !engineIDs.has(st.EngineID) {
			next.Stages = append(next.Stages, st)
		}
	}
}
