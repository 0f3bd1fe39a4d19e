package models

import "strings"

// Brand represents a vehicle manufacturer
type Brand struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Slug returns the URL slug for the brand name
func (b Brand) Slug() string {
	return Slugify(b.Name)
}

// Slugify lowercases a name and hyphenates spaces for URL use
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// Group represents an optional performance division of a brand (e.g. Audi RS, BMW M)
type Group struct {
	ID            int    `json:"id"`
	BrandID       int    `json:"brandId"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description,omitempty"`
	IsPerformance bool   `json:"isPerformance"`
	Order         int    `json:"order"`
	Tagline       string `json:"tagline,omitempty"`
	Color         string `json:"color,omitempty"`
	Icon          string `json:"icon,omitempty"`
	Logo          string `json:"logo,omitempty"`
}

// Model represents a vehicle model line belonging to a brand
type Model struct {
	ID      int    `json:"id"`
	BrandID int    `json:"brandId"`
	GroupID *int   `json:"groupId,omitempty"`
	Name    string `json:"name"`
}

// VehicleType represents a generation/chassis code of a model
type VehicleType struct {
	ID      int    `json:"id"`
	ModelID int    `json:"modelId"`
	BrandID int    `json:"brandId"` // denormalized for convenience
	Name    string `json:"name"`
}

// Engine represents an engine variant of a vehicle type
type Engine struct {
	ID          int    `json:"id"`
	TypeID      int    `json:"typeId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Fuel        string `json:"type,omitempty"` // fuel/engine family label ("Diesel", "Petrol")
	Power       *int   `json:"power,omitempty"`
}

// ECUUnlock describes an ECU unlock requirement attached to a stage
type ECUUnlock struct {
	Required  bool    `json:"required"`
	FromDate  string  `json:"fromDate,omitempty"`
	ExtraCost float64 `json:"extraCost,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// Stage represents a tuning package for one engine
type Stage struct {
	ID        int        `json:"id"`
	EngineID  int        `json:"engineId"`
	StageName string     `json:"stageName"`
	StockHp   int        `json:"stockHp"`
	TunedHp   int        `json:"tunedHp"`
	StockNm   int        `json:"stockNm"`
	TunedNm   int        `json:"tunedNm"`
	Price     float64    `json:"price"`
	Notes     string     `json:"notes,omitempty"`
	Features  []string   `json:"features,omitempty"`
	ECUUnlock *ECUUnlock `json:"ecuUnlock,omitempty"`
}

// Dataset is the full catalog: the unit of bulk export/import and of backups.
// Groups are managed separately and are not part of the bulk dataset.
type Dataset struct {
	Brands  []Brand       `json:"brands"`
	Models  []Model       `json:"models"`
	Types   []VehicleType `json:"types"`
	Engines []Engine      `json:"engines"`
	Stages  []Stage       `json:"stages"`
}

// Backup is a point-in-time copy of the full dataset
type Backup struct {
	ID          int     `json:"id"`
	Timestamp   string  `json:"timestamp"`
	Description string  `json:"description,omitempty"`
	Data        Dataset `json:"data"`
}

// BackupInfo is the payload-free backup listing entry
type BackupInfo struct {
	ID          int    `json:"id"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description,omitempty"`
}

// WSMessage represents a WebSocket message pushed to admin clients
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
