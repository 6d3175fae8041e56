package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/pkg/utils"
)

const defaultPointsEarnUnit int64 = 10000

type UpdateSettingRequest struct {
	Value       string  `json:"value" binding:"required"`
	Description *string `json:"description"`
}

// --- SettingService Interface ---
type SettingService interface {
	GetSettings() ([]models.AppSetting, error)
	UpdateSetting(key string, req UpdateSettingRequest) (*models.AppSetting, error)
}

type settingService struct {
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewSettingService creates a new instance of SettingService.
func NewSettingService(sr repositories.SettingRepository, db *sql.DB) SettingService {
	return &settingService{settingRepo: sr, db: db}
}

func (s *settingService) GetSettings() ([]models.AppSetting, error) {
	settings, err := s.settingRepo.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *settingService) UpdateSetting(key string, req UpdateSettingRequest) (*models.AppSetting, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, NewValidationError("key", "is required")
	}
	value := strings.TrimSpace(req.Value)
	if key == models.SettingPointsEarnUnit {
		n, err := utils.StrToInt64(value)
		if err != nil || n <= 0 {
			return nil, NewValidationError("value", "must be a positive integer")
		}
	}
	setting := &models.AppSetting{Key: key, Value: value, Description: trimmedOrNil(req.Description)}
	if err := s.settingRepo.UpsertSetting(s.db, setting); err != nil {
		return nil, fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return setting, nil
}

// pointsEarnUnit reads how much spend earns one point, falling back to the default.
func pointsEarnUnit(repo repositories.SettingRepository, exec repositories.SQLExecutor) (int64, error) {
	setting, err := repo.GetSetting(exec, models.SettingPointsEarnUnit)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return defaultPointsEarnUnit, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", models.SettingPointsEarnUnit, err)
	}
	n, err := utils.StrToInt64(strings.TrimSpace(setting.Value))
	if err != nil || n <= 0 {
		return defaultPointsEarnUnit, nil
	}
	return n, nil
}
