// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/profile"
)

type SQLiteStorage struct {
	db *sql.DB
}

var _ profile.Store = (*SQLiteStorage)(nil)

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS entries (
        id TEXT PRIMARY KEY,
        meal_text TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        mood TEXT NOT NULL DEFAULT '',
        whole_foods_percent INTEGER NOT NULL,
        llm_reason TEXT NOT NULL DEFAULT '',
        notes TEXT,
        size_label TEXT,
        size_weight REAL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS user_profile (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        age INTEGER NOT NULL,
        height_ft INTEGER NOT NULL,
        height_in INTEGER NOT NULL,
        weight_lbs REAL NOT NULL,
        sex TEXT NOT NULL,
        avg_steps INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS settings (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        goal_percent INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS target_overrides (
        nutrient_key TEXT PRIMARY KEY,
        value REAL NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveEntry inserts or updates an entry. Timestamps are normalized to UTC on
// write so the stored RFC3339 strings compare lexicographically and DATE()
// is deterministic regardless of the offset the caller supplied.
func (s *SQLiteStorage) SaveEntry(entry *models.MealEntry) error {
	query := `
        INSERT INTO entries (id, meal_text, timestamp, mood, whole_foods_percent,
            llm_reason, notes, size_label, size_weight, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            meal_text = excluded.meal_text,
            timestamp = excluded.timestamp,
            mood = excluded.mood,
            whole_foods_percent = excluded.whole_foods_percent,
            llm_reason = excluded.llm_reason,
            notes = excluded.notes,
            size_label = excluded.size_label,
            size_weight = excluded.size_weight,
            updated_at = excluded.updated_at
    `
	_, err := s.db.Exec(query,
		entry.ID, entry.MealText, entry.Timestamp.UTC().Format(time.RFC3339), entry.Mood,
		entry.WholeFoodsPercent, entry.LLMReason, entry.Notes, entry.SizeLabel,
		entry.SizeWeight, entry.CreatedAt.UTC().Format(time.RFC3339), entry.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteEntry(id string) error {
	result, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s not found", id)
	}
	return nil
}

// GetEntries returns entries newest-first, optionally filtered by inclusive
// day bounds (YYYY-MM-DD strings). The bounds are matched against the stored
// UTC dates; callers partitioning by local day must widen the window and
// re-filter on the day key themselves.
func (s *SQLiteStorage) GetEntries(startDate, endDate string, limit int) ([]models.MealEntry, error) {
	query := `
        SELECT id, meal_text, timestamp, mood, whole_foods_percent,
               llm_reason, notes, size_label, size_weight, created_at, updated_at
        FROM entries
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND DATE(timestamp) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND DATE(timestamp) <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetEntriesSince returns all entries at or after t, newest-first. The
// aggregation handlers use this to pull a summary or streak window in one
// query.
func (s *SQLiteStorage) GetEntriesSince(t time.Time) ([]models.MealEntry, error) {
	query := `
        SELECT id, meal_text, timestamp, mood, whole_foods_percent,
               llm_reason, notes, size_label, size_weight, created_at, updated_at
        FROM entries
        WHERE timestamp >= ?
        ORDER BY timestamp DESC
    `
	rows, err := s.db.Query(query, t.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]models.MealEntry, error) {
	var entries []models.MealEntry
	for rows.Next() {
		var entry models.MealEntry
		var timestampStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&entry.ID, &entry.MealText, &timestampStr, &entry.Mood,
			&entry.WholeFoodsPercent, &entry.LLMReason, &entry.Notes,
			&entry.SizeLabel, &entry.SizeWeight, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		if entry.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LoadProfile returns the stored profile, or the default profile when none
// has been saved or the stored row cannot be read. The result is always
// clamped, so a row written by an older build stays usable.
func (s *SQLiteStorage) LoadProfile() (profile.Profile, error) {
	var p profile.Profile
	var sex string
	err := s.db.QueryRow(`
        SELECT age, height_ft, height_in, weight_lbs, sex, avg_steps
        FROM user_profile WHERE id = 1
    `).Scan(&p.Age, &p.HeightFt, &p.HeightIn, &p.WeightLbs, &sex, &p.AvgSteps)
	if err != nil {
		return profile.Default(), nil
	}
	p.Sex = profile.Sex(sex)
	return p.Clamped(), nil
}

func (s *SQLiteStorage) SaveProfile(p profile.Profile) error {
	p = p.Clamped()
	_, err := s.db.Exec(`
        INSERT INTO user_profile (id, age, height_ft, height_in, weight_lbs, sex, avg_steps)
        VALUES (1, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            age = excluded.age,
            height_ft = excluded.height_ft,
            height_in = excluded.height_in,
            weight_lbs = excluded.weight_lbs,
            sex = excluded.sex,
            avg_steps = excluded.avg_steps
    `, p.Age, p.HeightFt, p.HeightIn, p.WeightLbs, string(p.Sex), p.AvgSteps)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// LoadSettings falls back to defaults when nothing usable is stored.
func (s *SQLiteStorage) LoadSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.db.QueryRow(`SELECT goal_percent FROM settings WHERE id = 1`).
		Scan(&settings.GoalPercent)
	if err != nil {
		return models.DefaultSettings(), nil
	}
	return settings.Clamped(), nil
}

func (s *SQLiteStorage) SaveSettings(settings models.Settings) error {
	settings = settings.Clamped()
	_, err := s.db.Exec(`
        INSERT INTO settings (id, goal_percent) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET goal_percent = excluded.goal_percent
    `, settings.GoalPercent)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// LoadTargetOverrides returns the user's per-nutrient target overrides as a
// raw key/value map; merging onto computed defaults happens in the caller,
// so unknown or stale keys are simply ignored there.
func (s *SQLiteStorage) LoadTargetOverrides() (map[string]interface{}, error) {
	rows, err := s.db.Query(`SELECT nutrient_key, value FROM target_overrides`)
	if err != nil {
		return nil, fmt.Errorf("failed to query target overrides: %w", err)
	}
	defer rows.Close()

	overrides := map[string]interface{}{}
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan target override: %w", err)
		}
		overrides[key] = value
	}
	return overrides, rows.Err()
}

func (s *SQLiteStorage) SaveTargetOverrides(overrides map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range overrides {
		_, err := tx.Exec(`
            INSERT INTO target_overrides (nutrient_key, value) VALUES (?, ?)
            ON CONFLICT(nutrient_key) DO UPDATE SET value = excluded.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save target override %s: %w", key, err)
		}
	}
	return tx.Commit()
}
