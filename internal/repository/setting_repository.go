package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/siakad-go/siakad-api/internal/models"
)

// SettingRepository reads and writes application settings stored as
// key/value rows.
type SettingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value for a key, or empty string when the key is absent.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting models.AppSetting
	err := r.db.GetContext(ctx, &setting, `SELECT key, value, updated_at FROM app_settings WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// Upsert stores a setting value, replacing any previous one.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	const query = `INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}
