package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys remembered by the menu.
const (
	SettingCamera      = "camera"
	SettingSensitivity = "sensitivity"
	SettingSmoothing   = "smoothing"
)

// SettingsRepository stores key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetInt returns the integer stored under key, or def when it is missing or malformed.
func (r *SettingsRepository) GetInt(key string, def int) int {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns the float stored under key, or def when it is missing or malformed.
func (r *SettingsRepository) GetFloat(key string, def float64) float64 {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// SetInt stores an integer.
func (r *SettingsRepository) SetInt(key string, v int) error {
	return r.Set(key, strconv.Itoa(v))
}

// SetFloat stores a float.
func (r *SettingsRepository) SetFloat(key string, v float64) error {
	return r.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// All returns every stored setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
