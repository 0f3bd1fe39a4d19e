package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/supremetuning/tuningcalc/internal/auth"
	"github.com/supremetuning/tuningcalc/internal/logger"
	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/selector"
	"github.com/supremetuning/tuningcalc/internal/services"
	"github.com/supremetuning/tuningcalc/internal/testutil"
)

func intPtr(i int) *int { return &i }

func seedDataset() *models.Dataset {
	return &models.Dataset{
		Brands: []models.Brand{
			{ID: 1, Name: "Audi"},
			{ID: 2, Name: "BMW"},
		},
		Models: []models.Model{
			{ID: 1, BrandID: 1, Name: "A4"},
			{ID: 2, BrandID: 1, GroupID: intPtr(1), Name: "RS4"},
		},
		Types: []models.VehicleType{
			{ID: 1, ModelID: 1, BrandID: 1, Name: "B9"},
		},
		Engines: []models.Engine{
			{ID: 1, TypeID: 1, Name: "2.0 TDI", Fuel: "Diesel", Power: intPtr(190)},
		},
		Stages: []models.Stage{
			{ID: 1, EngineID: 1, StageName: "Stage 1", StockHp: 190, TunedHp: 230, StockNm: 400, TunedNm: 460, Price: 499},
		},
	}
}

// newTestServer builds the full API stack over an in-memory repository
func newTestServer(t *testing.T) (*httptest.Server, *Handlers) {
	t.Helper()

	log := logger.New()
	repo := testutil.NewTestRepository(t)
	if err := repo.ReplaceDataset(context.Background(), seedDataset()); err != nil {
		t.Fatalf("failed to seed dataset: %v", err)
	}

	backupService := services.NewBackupService(log, repo)
	catalogService := services.NewCatalogService(log, repo, backupService)
	settingsService := services.NewSettingsService(log, repo)
	shareService := services.NewShareService(log, repo, settingsService)
	adminAuth := auth.New(log, "test-secret", settingsService)

	h := NewForTesting(catalogService, backupService, settingsService, adminAuth)
	h.Share = shareService

	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)
	return server, h
}

func adminToken(t *testing.T, h *Handlers) string {
	t.Helper()
	token, err := h.Auth.Login(context.Background(), "admin", "password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return token
}

func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// ==================== Public Catalog ====================

func TestGetBrands(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/brands", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var brands []models.Brand
	decodeBody(t, resp, &brands)
	if len(brands) != 2 || brands[0].Name != "Audi" {
		t.Errorf("unexpected brands %+v", brands)
	}
}

func TestGetModels_RequiresBrandID(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/models", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without brandId, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/models?brandId=1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGetBrandGroups_RequiresBrandID(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/brand-groups", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without brandId, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/brand-groups?brandId=99", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown brand, got %d", resp.StatusCode)
	}
}

func TestGetStages_WithComparison(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/stages?engineId=1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body StagesResponse
	decodeBody(t, resp, &body)
	if len(body.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(body.Stages))
	}
	stage := body.Stages[0]
	if stage.Comparison.Power.Gain != 40 {
		t.Errorf("expected hp gain 40, got %d", stage.Comparison.Power.Gain)
	}
	if stage.Comparison.Torque.Gain != 60 {
		t.Errorf("expected nm gain 60, got %d", stage.Comparison.Torque.Gain)
	}
}

func TestGetStages_UnknownEngine(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/stages?engineId=99", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown engine, got %d", resp.StatusCode)
	}
}

// ==================== Auth ====================

func TestLoginEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/auth/login", "",
		LoginRequest{Username: "admin", Password: "password"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body LoginResponse
	decodeBody(t, resp, &body)
	if body.Token == "" {
		t.Error("expected a token")
	}
	if body.Role != "admin" {
		t.Errorf("expected admin role, got %q", body.Role)
	}
	if body.ExpiresIn != 7200 {
		t.Errorf("expected 2h expiry, got %d", body.ExpiresIn)
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/auth/login", "",
		LoginRequest{Username: "admin", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	server, _ := newTestServer(t)

	// No token
	resp := doRequest(t, http.MethodGet, server.URL+"/api/admin/data", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Bad token
	resp = doRequest(t, http.MethodGet, server.URL+"/api/admin/data", "not-a-token", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 with bad token, got %d", resp.StatusCode)
	}
}

// ==================== Admin ====================

func TestGetAndSaveData(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/admin/data", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ds models.Dataset
	decodeBody(t, resp, &ds)
	if len(ds.Brands) != 2 {
		t.Fatalf("expected 2 brands, got %d", len(ds.Brands))
	}

	// Save a modified dataset back
	ds.Brands = append(ds.Brands, models.Brand{ID: 3, Name: "VW"})
	resp = doRequest(t, http.MethodPost, server.URL+"/api/admin/data", token, ds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/brands", "", nil)
	var brands []models.Brand
	decodeBody(t, resp, &brands)
	if len(brands) != 3 {
		t.Errorf("expected 3 brands after save, got %d", len(brands))
	}
}

func TestSaveData_MissingBrands(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/admin/data", token,
		map[string]interface{}{"models": []interface{}{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing brands, got %d", resp.StatusCode)
	}
}

func TestUpdateStageEndpoint(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodPut, server.URL+"/api/admin/stages/1", token,
		map[string]interface{}{"tunedHp": 245, "engineId": 99})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stage models.Stage
	decodeBody(t, resp, &stage)
	if stage.TunedHp != 245 {
		t.Errorf("expected tunedHp applied, got %d", stage.TunedHp)
	}
	if stage.EngineID != 1 {
		t.Errorf("expected engineId protected, got %d", stage.EngineID)
	}
}

func TestUpdateStageByPathEndpoint(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodPut, server.URL+"/api/admin/data/stage", token,
		StagePathUpdateRequest{
			Brand: "audi", Model: "a4", Type: "b9", Engine: "2.0 tdi",
			StageIndex: 0,
			Fields:     map[string]interface{}{"price": 555},
		})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Unknown segment yields 404
	resp = doRequest(t, http.MethodPut, server.URL+"/api/admin/data/stage", token,
		StagePathUpdateRequest{
			Brand: "lada", Model: "a4", Type: "b9", Engine: "2.0 tdi",
			Fields: map[string]interface{}{"price": 555},
		})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown brand, got %d", resp.StatusCode)
	}
}

func TestDeleteBrandEndpoint(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodDelete, server.URL+"/api/admin/brands/1", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/admin/brands/1", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestBackupEndpoints(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	// Create
	resp := doRequest(t, http.MethodPost, server.URL+"/api/admin/backups", token,
		CreateBackupRequest{Description: "manual"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created models.BackupInfo
	decodeBody(t, resp, &created)

	// List
	resp = doRequest(t, http.MethodGet, server.URL+"/api/admin/backups", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list BackupListResponse
	decodeBody(t, resp, &list)
	if list.Count != 1 || list.Backups[0].Description != "manual" {
		t.Errorf("unexpected backup list %+v", list)
	}

	// Restore
	resp = doRequest(t, http.MethodPost, server.URL+"/api/admin/backups/restore", token,
		RestoreBackupRequest{ID: created.ID})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 on restore, got %d", resp.StatusCode)
	}

	// Delete unknown
	resp = doRequest(t, http.MethodDelete, server.URL+"/api/admin/backups/999", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown backup, got %d", resp.StatusCode)
	}
}

func TestCreateBackup_MalformedBody(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/admin/backups",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}

	// An empty body still means a plain unlabelled backup
	resp = doRequest(t, http.MethodPost, server.URL+"/api/admin/backups", token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for empty body, got %d", resp.StatusCode)
	}
}

func TestListGroupsEndpoint(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/admin/groups", token,
		GroupRequest{BrandID: 1, Name: "RS", IsPerformance: true})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp = doRequest(t, http.MethodPost, server.URL+"/api/admin/groups", token,
		GroupRequest{BrandID: 2, Name: "M", IsPerformance: true})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/admin/groups", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var groups []models.Group
	decodeBody(t, resp, &groups)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups across brands, got %d", len(groups))
	}
	if groups[0].BrandID != 1 || groups[1].BrandID != 2 {
		t.Errorf("expected groups ordered by brand, got %+v", groups)
	}
}

func TestUpdateCredentialsEndpoint(t *testing.T) {
	server, h := newTestServer(t)
	token := adminToken(t, h)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/auth/update-credentials", token,
		UpdateCredentialsRequest{CurrentPassword: "wrong", NewUsername: "boss", NewPassword: "longenough"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for wrong current password, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/api/auth/update-credentials", token,
		UpdateCredentialsRequest{CurrentPassword: "password", NewUsername: "boss", NewPassword: "longenough"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Old credentials no longer work
	resp = doRequest(t, http.MethodPost, server.URL+"/api/auth/login", "",
		LoginRequest{Username: "admin", Password: "password"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with old credentials, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/api/auth/login", "",
		LoginRequest{Username: "boss", Password: "longenough"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with new credentials, got %d", resp.StatusCode)
	}
}

func TestEngineQREndpoint(t *testing.T) {
	server, h := newTestServer(t)

	// Needs a base URL first
	if err := h.Settings.SetBaseURL(context.Background(), "http://192.168.1.10:8080"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}

	resp := doRequest(t, http.MethodGet, server.URL+"/api/engines/1/qr", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/engines/99/qr", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown engine, got %d", resp.StatusCode)
	}
}

func TestSelectorEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/selector", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/api/selector", "",
		SelectorRequest{Level: "brand", ID: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/api/selector", "",
		SelectorRequest{Level: "warp", ID: 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", resp.StatusCode)
	}
}

func TestSelectorReplayFromQuery(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet,
		server.URL+"/api/selector?brandId=1&modelId=1&typeId=1&engineId=1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var state selector.State
	decodeBody(t, resp, &state)
	if !state.CanSearch {
		t.Error("expected a complete replayed selection")
	}
	if state.Selection.EngineID != 1 {
		t.Errorf("expected engine 1 selected, got %d", state.Selection.EngineID)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/api/selector?brandId=abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad brandId, got %d", resp.StatusCode)
	}
}

func TestSelectorVisitorsAreIsolated(t *testing.T) {
	server, _ := newTestServer(t)

	// Two visitors each start their own flow
	respA := doRequest(t, http.MethodGet, server.URL+"/api/selector?brandId=1", "", nil)
	if respA.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", respA.StatusCode)
	}
	var stateA selector.State
	decodeBody(t, respA, &stateA)

	respB := doRequest(t, http.MethodGet, server.URL+"/api/selector?brandId=2", "", nil)
	if respB.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", respB.StatusCode)
	}

	// The first visitor's model step builds on their own brand, not on
	// whatever another visitor selected in between
	resp := doRequest(t, http.MethodPost, server.URL+"/api/selector", "",
		SelectorRequest{Level: "model", ID: 1, Selection: stateA.Selection})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var state selector.State
	decodeBody(t, resp, &state)
	if state.Selection.BrandID != 1 {
		t.Errorf("expected the visitor's own brand 1, got %d", state.Selection.BrandID)
	}
	if state.Selection.ModelID != 1 {
		t.Errorf("expected model 1, got %d", state.Selection.ModelID)
	}
}
