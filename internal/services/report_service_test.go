package services

import (
	"testing"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFillHours(t *testing.T) {
	buckets := fillHours([]models.HourlyRevenue{
		{Hour: 9, Revenue: 120000, Orders: 3},
		{Hour: 21, Revenue: 500000, Orders: 7},
		{Hour: 24, Revenue: 1, Orders: 1},
	})

	assert.Len(t, buckets, 24)
	for h, b := range buckets {
		assert.Equal(t, h, b.Hour)
	}
	assert.Equal(t, int64(120000), buckets[9].Revenue)
	assert.Equal(t, 7, buckets[21].Orders)
	assert.Equal(t, int64(0), buckets[0].Revenue)
}

func TestSummarizeVariance(t *testing.T) {
	short, over, even := int64(-5000), int64(2000), int64(0)
	report := summarizeVariance([]models.ShiftReport{
		{ID: 1, Variance: &short, ClosedAt: &tableNow},
		{ID: 2, Variance: &over, ClosedAt: &tableNow},
		{ID: 3, Variance: &even, ClosedAt: &tableNow},
		{ID: 4},
	})

	assert.Len(t, report.Shifts, 3)
	assert.Equal(t, int64(-3000), report.TotalVariance)
	assert.Equal(t, 1, report.ShortCount)
	assert.Equal(t, 1, report.OverCount)
}
