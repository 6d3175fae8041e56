package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPromo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday, tomorrow := now.Add(-24*time.Hour), now.Add(24*time.Hour)
	maxDiscount := int64(20000)

	tests := []struct {
		name     string
		promo    models.Promo
		subtotal int64
		want     int64
		wantErr  bool
	}{
		{
			name:     "percent floors",
			promo:    models.Promo{DiscountType: models.DiscountPercent, DiscountValue: 15, IsActive: true},
			subtotal: 33333,
			want:     4999,
		},
		{
			name:     "percent capped",
			promo:    models.Promo{DiscountType: models.DiscountPercent, DiscountValue: 50, MaxDiscount: &maxDiscount, IsActive: true},
			subtotal: 100000,
			want:     20000,
		},
		{
			name:     "fixed clamps to subtotal",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 50000, IsActive: true},
			subtotal: 30000,
			want:     30000,
		},
		{
			name:     "inside window",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 5000, ValidFrom: &yesterday, ValidUntil: &tomorrow, IsActive: true},
			subtotal: 30000,
			want:     5000,
		},
		{
			name:     "below min spend",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 5000, MinSpend: 50000, IsActive: true},
			subtotal: 49999,
			wantErr:  true,
		},
		{
			name:     "expired",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 5000, ValidUntil: &yesterday, IsActive: true},
			subtotal: 30000,
			wantErr:  true,
		},
		{
			name:     "not started",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 5000, ValidFrom: &tomorrow, IsActive: true},
			subtotal: 30000,
			wantErr:  true,
		},
		{
			name:     "inactive",
			promo:    models.Promo{DiscountType: models.DiscountFixed, DiscountValue: 5000},
			subtotal: 30000,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyPromo(&tt.promo, tt.subtotal, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPromoNotApplicable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
