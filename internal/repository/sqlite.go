package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/supremetuning/tuningcalc/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS brands (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			logo TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY,
			brand_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			display_name TEXT,
			description TEXT,
			is_performance BOOLEAN DEFAULT 0,
			sort_order INTEGER DEFAULT 0,
			tagline TEXT,
			color TEXT,
			icon TEXT,
			logo TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS models (
			id INTEGER PRIMARY KEY,
			brand_id INTEGER NOT NULL,
			group_id INTEGER,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS types (
			id INTEGER PRIMARY KEY,
			model_id INTEGER NOT NULL,
			brand_id INTEGER NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS engines (
			id INTEGER PRIMARY KEY,
			type_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			fuel TEXT,
			power INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS stages (
			id INTEGER PRIMARY KEY,
			engine_id INTEGER NOT NULL,
			stage_name TEXT NOT NULL,
			stock_hp INTEGER DEFAULT 0,
			tuned_hp INTEGER DEFAULT 0,
			stock_nm INTEGER DEFAULT 0,
			tuned_nm INTEGER DEFAULT 0,
			price REAL DEFAULT 0,
			notes TEXT,
			features TEXT,
			ecu_unlock TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS backups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			description TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_groups_brand ON groups(brand_id)`,
		`CREATE INDEX IF NOT EXISTS idx_models_brand ON models(brand_id)`,
		`CREATE INDEX IF NOT EXISTS idx_types_model ON types(model_id)`,
		`CREATE INDEX IF NOT EXISTS idx_engines_type ON engines(type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stages_engine ON stages(engine_id)`,
		`CREATE INDEX IF NOT EXISTS idx_backups_timestamp ON backups(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists
	// Note: admin credentials can be overridden via environment on startup
	defaultSettings := map[string]string{
		"admin_username": "admin",
		"admin_password": "password",
		"base_url":       "",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// collectionTables maps collection names to their table for id allocation
var collectionTables = map[string]bool{
	"brands": true, "groups": true, "models": true, "types": true, "engines": true, "stages": true,
}

// NextID returns max(id)+1 for a collection, or 1 when it is empty.
// Ids are never reused after deletion.
func (r *Repository) NextID(ctx context.Context, collection string) (int, error) {
	if !collectionTables[collection] {
		return 0, ErrInvalidCollection
	}
	var next int
	// Safe to concatenate: the collection name was validated against the whitelist
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM `+collection).Scan(&next)
	return next, err
}

// ==================== Brand Methods ====================

// ListBrands returns all brands sorted by name
func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, logo FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		var logo sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &logo); err != nil {
			return nil, err
		}
		b.Logo = logo.String
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// GetBrandByName returns a brand by name, case-insensitive
func (r *Repository) GetBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var b models.Brand
	var logo sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, logo FROM brands WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&b.ID, &b.Name, &logo)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Logo = logo.String
	return &b, nil
}

// ==================== Group Methods ====================

// ListGroups returns a brand's groups sorted by their display order
func (r *Repository) ListGroups(ctx context.Context, brandID int) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, brand_id, name, display_name, description, is_performance, sort_order, tagline, color, icon, logo
		FROM groups WHERE brand_id = ? ORDER BY sort_order, id
	`, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// ListAllGroups retrieves every group across all brands for the admin editor
func (r *Repository) ListAllGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, brand_id, name, display_name, description, is_performance, sort_order, tagline, color, icon, logo
		FROM groups ORDER BY brand_id, sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a group by ID
func (r *Repository) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, brand_id, name, display_name, description, is_performance, sort_order, tagline, color, icon, logo
		FROM groups WHERE id = ?
	`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGroup creates a new group with the next available id
func (r *Repository) CreateGroup(ctx context.Context, group models.Group) (int, error) {
	id, err := r.NextID(ctx, "groups")
	if err != nil {
		return 0, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO groups (id, brand_id, name, display_name, description, is_performance, sort_order, tagline, color, icon, logo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, group.BrandID, group.Name, group.DisplayName, group.Description, group.IsPerformance,
		group.Order, group.Tagline, group.Color, group.Icon, group.Logo)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateGroup updates a group
func (r *Repository) UpdateGroup(ctx context.Context, group models.Group) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE groups SET brand_id = ?, name = ?, display_name = ?, description = ?, is_performance = ?,
			sort_order = ?, tagline = ?, color = ?, icon = ?, logo = ?
		WHERE id = ?
	`, group.BrandID, group.Name, group.DisplayName, group.Description, group.IsPerformance,
		group.Order, group.Tagline, group.Color, group.Icon, group.Logo, group.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup deletes a group
func (r *Repository) DeleteGroup(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroupsForBrand removes all groups belonging to a brand
func (r *Repository) DeleteGroupsForBrand(ctx context.Context, brandID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE brand_id = ?`, brandID)
	return err
}

// ==================== Model Methods ====================

// ListModels returns a brand's models sorted by name, optionally scoped to a group
func (r *Repository) ListModels(ctx context.Context, brandID int, groupID *int) ([]models.Model, error) {
	query := `SELECT id, brand_id, group_id, name FROM models WHERE brand_id = ?`
	args := []interface{}{brandID}
	if groupID != nil {
		query += ` AND group_id = ?`
		args = append(args, *groupID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Model
	for rows.Next() {
		var m models.Model
		var gid sql.NullInt64
		if err := rows.Scan(&m.ID, &m.BrandID, &gid, &m.Name); err != nil {
			return nil, err
		}
		if gid.Valid {
			id := int(gid.Int64)
			m.GroupID = &id
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetModelByName returns a model by name within a brand, case-insensitive
func (r *Repository) GetModelByName(ctx context.Context, brandID int, name string) (*models.Model, error) {
	var m models.Model
	var gid sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, brand_id, group_id, name FROM models WHERE brand_id = ? AND name = ? COLLATE NOCASE`,
		brandID, name,
	).Scan(&m.ID, &m.BrandID, &gid, &m.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if gid.Valid {
		id := int(gid.Int64)
		m.GroupID = &id
	}
	return &m, nil
}

// ==================== Type Methods ====================

// ListTypes returns a model's generations sorted by name
func (r *Repository) ListTypes(ctx context.Context, modelID int) ([]models.VehicleType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, model_id, brand_id, name FROM types WHERE model_id = ? ORDER BY name`, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.VehicleType
	for rows.Next() {
		var t models.VehicleType
		if err := rows.Scan(&t.ID, &t.ModelID, &t.BrandID, &t.Name); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetTypeByName returns a generation by name within a model, case-insensitive
func (r *Repository) GetTypeByName(ctx context.Context, modelID int, name string) (*models.VehicleType, error) {
	var t models.VehicleType
	err := r.db.QueryRowContext(ctx,
		`SELECT id, model_id, brand_id, name FROM types WHERE model_id = ? AND name = ? COLLATE NOCASE`,
		modelID, name,
	).Scan(&t.ID, &t.ModelID, &t.BrandID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ==================== Engine Methods ====================

// ListEngines returns a type's engines sorted by name
func (r *Repository) ListEngines(ctx context.Context, typeID int) ([]models.Engine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type_id, name, description, fuel, power
		FROM engines WHERE type_id = ? ORDER BY name
	`, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Engine
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// GetEngine returns an engine by ID
func (r *Repository) GetEngine(ctx context.Context, id int) (*models.Engine, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type_id, name, description, fuel, power FROM engines WHERE id = ?`, id)
	e, err := scanEngine(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ==================== Stage Methods ====================

// ListStages returns an engine's stages sorted by id
func (r *Repository) ListStages(ctx context.Context, engineID int) ([]models.Stage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, engine_id, stage_name, stock_hp, tuned_hp, stock_nm, tuned_nm, price, notes, features, ecu_unlock
		FROM stages WHERE engine_id = ? ORDER BY id
	`, engineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// GetStage returns a stage by ID
func (r *Repository) GetStage(ctx context.Context, id int) (*models.Stage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, engine_id, stage_name, stock_hp, tuned_hp, stock_nm, tuned_nm, price, notes, features, ecu_unlock
		FROM stages WHERE id = ?
	`, id)
	s, err := scanStage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateStage replaces a stage row
func (r *Repository) UpdateStage(ctx context.Context, stage models.Stage) error {
	featuresJSON, ecuJSON, err := marshalStageExtras(stage)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE stages SET engine_id = ?, stage_name = ?, stock_hp = ?, tuned_hp = ?, stock_nm = ?, tuned_nm = ?,
			price = ?, notes = ?, features = ?, ecu_unlock = ?
		WHERE id = ?
	`, stage.EngineID, stage.StageName, stage.StockHp, stage.TunedHp, stage.StockNm, stage.TunedNm,
		stage.Price, stage.Notes, featuresJSON, ecuJSON, stage.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Dataset Methods ====================

// GetDataset loads the full catalog (all five collections)
func (r *Repository) GetDataset(ctx context.Context) (*models.Dataset, error) {
	brands, err := r.ListBrands(ctx)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{Brands: brands}

	rows, err := r.db.QueryContext(ctx, `SELECT id, brand_id, group_id, name FROM models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m models.Model
		var gid sql.NullInt64
		if err := rows.Scan(&m.ID, &m.BrandID, &gid, &m.Name); err != nil {
			rows.Close()
			return nil, err
		}
		if gid.Valid {
			id := int(gid.Int64)
			m.GroupID = &id
		}
		ds.Models = append(ds.Models, m)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `SELECT id, model_id, brand_id, name FROM types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t models.VehicleType
		if err := rows.Scan(&t.ID, &t.ModelID, &t.BrandID, &t.Name); err != nil {
			rows.Close()
			return nil, err
		}
		ds.Types = append(ds.Types, t)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `SELECT id, type_id, name, description, fuel, power FROM engines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ds.Engines = append(ds.Engines, *e)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `
		SELECT id, engine_id, stage_name, stock_hp, tuned_hp, stock_nm, tuned_nm, price, notes, features, ecu_unlock
		FROM stages ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ds.Stages = append(ds.Stages, *s)
	}
	rows.Close()

	return ds, nil
}

// ReplaceDataset replaces all five catalog collections with the given data.
// Each table is cleared and re-inserted in sequence; the five operations do
// NOT run inside a single transaction, so a failure mid-way can leave the
// collections partially updated. Callers compute the complete new dataset in
// memory first so a single call carries the whole change.
func (r *Repository) ReplaceDataset(ctx context.Context, data *models.Dataset) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM brands`); err != nil {
		return err
	}
	for _, b := range data.Brands {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO brands (id, name, logo) VALUES (?, ?, ?)`, b.ID, b.Name, b.Logo); err != nil {
			return err
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM models`); err != nil {
		return err
	}
	for _, m := range data.Models {
		var gid interface{}
		if m.GroupID != nil {
			gid = *m.GroupID
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO models (id, brand_id, group_id, name) VALUES (?, ?, ?, ?)`,
			m.ID, m.BrandID, gid, m.Name); err != nil {
			return err
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM types`); err != nil {
		return err
	}
	for _, t := range data.Types {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO types (id, model_id, brand_id, name) VALUES (?, ?, ?, ?)`,
			t.ID, t.ModelID, t.BrandID, t.Name); err != nil {
			return err
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM engines`); err != nil {
		return err
	}
	for _, e := range data.Engines {
		var power interface{}
		if e.Power != nil {
			power = *e.Power
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO engines (id, type_id, name, description, fuel, power) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.TypeID, e.Name, e.Description, e.Fuel, power); err != nil {
			return err
		}
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM stages`); err != nil {
		return err
	}
	for _, s := range data.Stages {
		featuresJSON, ecuJSON, err := marshalStageExtras(s)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO stages (id, engine_id, stage_name, stock_hp, tuned_hp, stock_nm, tuned_nm, price, notes, features, ecu_unlock)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.ID, s.EngineID, s.StageName, s.StockHp, s.TunedHp, s.StockNm, s.TunedNm,
			s.Price, s.Notes, featuresJSON, ecuJSON); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Backup Methods ====================

// InsertBackup stores a dataset snapshot and returns its id
func (r *Repository) InsertBackup(ctx context.Context, timestamp, description string, data *models.Dataset) (int, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO backups (timestamp, description, data) VALUES (?, ?, ?)`,
		timestamp, description, string(payload))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	return int(id), err
}

// ListBackups returns backup metadata newest-first, without payloads
func (r *Repository) ListBackups(ctx context.Context, limit int) ([]models.BackupInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, description FROM backups ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []models.BackupInfo
	for rows.Next() {
		var b models.BackupInfo
		var description sql.NullString
		if err := rows.Scan(&b.ID, &b.Timestamp, &description); err != nil {
			return nil, err
		}
		b.Description = description.String
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// GetBackup retrieves a backup by id, including its dataset payload
func (r *Repository) GetBackup(ctx context.Context, id int) (*models.Backup, error) {
	var b models.Backup
	var description sql.NullString
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, timestamp, description, data FROM backups WHERE id = ?`, id,
	).Scan(&b.ID, &b.Timestamp, &description, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Description = description.String
	if err := json.Unmarshal([]byte(payload), &b.Data); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBackup removes a backup; reports whether a row was actually deleted
func (r *Repository) DeleteBackup(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountBackups returns the number of retained backups
func (r *Repository) CountBackups(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM backups`).Scan(&count)
	return count, err
}

// DeleteOldestBackups removes the n oldest backups by timestamp
func (r *Repository) DeleteOldestBackups(ctx context.Context, n int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM backups WHERE id IN (
			SELECT id FROM backups ORDER BY timestamp ASC, id ASC LIMIT ?
		)
	`, n)
	return err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Scan Helpers ====================

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	var displayName, description, tagline, color, icon, logo sql.NullString
	if err := row.Scan(&g.ID, &g.BrandID, &g.Name, &displayName, &description,
		&g.IsPerformance, &g.Order, &tagline, &color, &icon, &logo); err != nil {
		return nil, err
	}
	g.DisplayName = displayName.String
	g.Description = description.String
	g.Tagline = tagline.String
	g.Color = color.String
	g.Icon = icon.String
	g.Logo = logo.String
	return &g, nil
}

func scanEngine(row rowScanner) (*models.Engine, error) {
	var e models.Engine
	var description, fuel sql.NullString
	var power sql.NullInt64
	if err := row.Scan(&e.ID, &e.TypeID, &e.Name, &description, &fuel, &power); err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Fuel = fuel.String
	if power.Valid {
		p := int(power.Int64)
		e.Power = &p
	}
	return &e, nil
}

func scanStage(row rowScanner) (*models.Stage, error) {
	var s models.Stage
	var notes, featuresJSON, ecuJSON sql.NullString
	if err := row.Scan(&s.ID, &s.EngineID, &s.StageName, &s.StockHp, &s.TunedHp,
		&s.StockNm, &s.TunedNm, &s.Price, &notes, &featuresJSON, &ecuJSON); err != nil {
		return nil, err
	}
	s.Notes = notes.String
	if featuresJSON.Valid && featuresJSON.String != "" {
		if err := json.Unmarshal([]byte(featuresJSON.String), &s.Features); err != nil {
			return nil, err
		}
	}
	if ecuJSON.Valid && ecuJSON.String != "" {
		var unlock models.ECUUnlock
		if err := json.Unmarshal([]byte(ecuJSON.String), &unlock); err != nil {
			return nil, err
		}
		s.ECUUnlock = &unlock
	}
	return &s, nil
}

func marshalStageExtras(s models.Stage) (features, ecu sql.NullString, err error) {
	if len(s.Features) > 0 {
		data, _ := json.Marshal(s.Features) // Marshal on []string never fails
		features = sql.NullString{String: string(data), Valid: true}
	}
	if s.ECUUnlock != nil {
		data, merr := json.Marshal(s.ECUUnlock)
		if merr != nil {
			return features, ecu, merr
		}
		ecu = sql.NullString{String: string(data), Valid: true}
	}
	return features, ecu, nil
}
