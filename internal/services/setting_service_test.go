package services

import (
	"testing"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsEarnUnit(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   int64
	}{
		{"missing falls back", map[string]string{}, defaultPointsEarnUnit},
		{"configured", map[string]string{models.SettingPointsEarnUnit: " 5000 "}, 5000},
		{"garbage falls back", map[string]string{models.SettingPointsEarnUnit: "abc"}, defaultPointsEarnUnit},
		{"zero falls back", map[string]string{models.SettingPointsEarnUnit: "0"}, defaultPointsEarnUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pointsEarnUnit(&fakeSettingRepo{values: tt.values}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
