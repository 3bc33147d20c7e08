// Package settings stores the small set of named configuration records
// (default duration, default device, frame-display default, auto-library
// flag, retention days) in a generic key/value table.
package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollcast/backend/internal/models"
)

// Defaults applied when a key has never been written.
const (
	DefaultDuration      = 5
	DefaultDevice        = "mobile_iphone_xr"
	DefaultShowFrame     = true
	DefaultAutoLibrary   = true
	DefaultRetentionDays = 0 // disabled
)

// Repository handles settings persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the raw value for a key, or "" when unset.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&v)
	if err != nil {
		// Missing keys fall back to defaults; only real failures surface.
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

// Set upserts one setting.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

// All returns every stored setting.
func (r *Repository) All(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DefaultDurationSeconds returns the configured default recording duration.
func (r *Repository) DefaultDurationSeconds(ctx context.Context) int {
	return r.intOr(ctx, models.SettingDefaultDuration, DefaultDuration)
}

// DefaultDeviceKey returns the configured default device key.
func (r *Repository) DefaultDeviceKey(ctx context.Context) string {
	if v, err := r.Get(ctx, models.SettingDefaultDevice); err == nil && v != "" {
		return v
	}
	return DefaultDevice
}

// ShowDeviceFrameDefault returns whether new recordings default to framed
// rendering.
func (r *Repository) ShowDeviceFrameDefault(ctx context.Context) bool {
	return r.boolOr(ctx, models.SettingShowDeviceFrame, DefaultShowFrame)
}

// AutoAddToLibrary returns whether ingested videos are registered
// automatically.
func (r *Repository) AutoAddToLibrary(ctx context.Context) bool {
	return r.boolOr(ctx, models.SettingAutoAddToLibrary, DefaultAutoLibrary)
}

// RetentionDays returns the configured retention window; 0 disables cleanup.
func (r *Repository) RetentionDays(ctx context.Context) int {
	return r.intOr(ctx, models.SettingRetentionDays, DefaultRetentionDays)
}

func (r *Repository) intOr(ctx context.Context, key string, fallback int) int {
	if v, err := r.Get(ctx, key); err == nil && v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			return n
		}
	}
	return fallback
}

func (r *Repository) boolOr(ctx context.Context, key string, fallback bool) bool {
	if v, err := r.Get(ctx, key); err == nil && v != "" {
		if b, convErr := strconv.ParseBool(v); convErr == nil {
			return b
		}
	}
	return fallback
}
