package handlers

import "github.com/supremetuning/tuningcalc/internal/selector"

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateCredentialsRequest changes the admin login
type UpdateCredentialsRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername"`
	NewPassword     string `json:"newPassword"`
}

// StagePathUpdateRequest patches a stage addressed by hierarchy names
type StagePathUpdateRequest struct {
	Brand      string                 `json:"brand"`
	Model      string                 `json:"model"`
	Type       string                 `json:"type"`
	Engine     string                 `json:"engine"`
	StageIndex int                    `json:"stageIndex"`
	Fields     map[string]interface{} `json:"fields"`
}

// GroupRequest creates or updates a brand group
type GroupRequest struct {
	BrandID       int    `json:"brandId"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description"`
	IsPerformance bool   `json:"isPerformance"`
	Order         int    `json:"order"`
	Tagline       string `json:"tagline"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
	Logo          string `json:"logo"`
}

// CreateBackupRequest optionally labels a manual backup
type CreateBackupRequest struct {
	Description string `json:"description"`
}

// RestoreBackupRequest selects the backup to restore
type RestoreBackupRequest struct {
	ID int `json:"id"`
}

// SelectorRequest advances a selection by one step. Selection echoes the
// state returned by the previous step so the flow stays client-owned.
type SelectorRequest struct {
	Level     string             `json:"level"`
	ID        int                `json:"id"`
	Selection selector.Selection `json:"selection"`
}

// BaseURLRequest sets the public base URL
type BaseURLRequest struct {
	BaseURL string `json:"baseUrl"`
}
