package handlers

import (
	"github.com/supremetuning/tuningcalc/internal/models"
	"github.com/supremetuning/tuningcalc/internal/stageview"
)

// LoginResponse carries the issued admin token
type LoginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// StageResponse is a stage with its rendered comparison chart
type StageResponse struct {
	models.Stage
	Comparison stageview.Comparison `json:"comparison"`
}

// StagesResponse wraps an engine's stages for the result page
type StagesResponse struct {
	EngineID int             `json:"engineId"`
	Stages   []StageResponse `json:"stages"`
}

// BackupListResponse wraps the backup listing
type BackupListResponse struct {
	Backups []models.BackupInfo `json:"backups"`
	Count   int                 `json:"count"`
}
