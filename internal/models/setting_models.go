package models

import "time"

// AppSetting is a runtime business setting.
type AppSetting struct {
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	Description *string   `json:"description,omitempty" db:"description"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Known setting keys.
const (
	SettingPointsEarnUnit = "points_earn_unit"
	SettingBusinessName   = "business_name"
)
