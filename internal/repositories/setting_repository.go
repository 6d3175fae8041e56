package repositories

import (
	"database/sql"

	"billiard_pos_backend/internal/models"
)

// SettingRepository stores runtime business settings.
type SettingRepository interface {
	GetSettings() ([]models.AppSetting, error)
	GetSetting(executor SQLExecutor, key string) (*models.AppSetting, error)
	UpsertSetting(executor SQLExecutor, setting *models.AppSetting) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetSettings() ([]models.AppSetting, error) {
	rows, err := r.db.Query(`SELECT key, value, description, updated_at FROM app_settings ORDER BY key`)
	if err != nil {
		return nil, wrapDBError(err, "listing settings")
	}
	defer rows.Close()

	settings := []models.AppSetting{}
	for rows.Next() {
		var s models.AppSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, wrapDBError(err, "scanning setting")
		}
		settings = append(settings, s)
	}
	return settings, wrapDBError(rows.Err(), "iterating settings")
}

func (r *settingRepository) GetSetting(executor SQLExecutor, key string) (*models.AppSetting, error) {
	if executor == nil {
		executor = r.db
	}
	var s models.AppSetting
	err := executor.QueryRow(`SELECT key, value, description, updated_at FROM app_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, wrapDBError(err, "getting setting")
	}
	return &s, nil
}

func (r *settingRepository) UpsertSetting(executor SQLExecutor, setting *models.AppSetting) error {
	query := `INSERT INTO app_settings (key, value, description, updated_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (key) DO UPDATE
	            SET value = EXCLUDED.value,
	                description = COALESCE(EXCLUDED.description, app_settings.description),
	                updated_at = NOW()
	          RETURNING description, updated_at`
	err := executor.QueryRow(query, setting.Key, setting.Value, setting.Description).
		Scan(&setting.Description, &setting.UpdatedAt)
	return wrapDBError(err, "saving setting")
}
