package services

import (
	"testing"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStockWasteIsAlwaysNegative(t *testing.T) {
	db, mock := newMockDB(t)
	products := newFakeProductRepo(models.Product{ID: 1, Name: "Es Teh", StockQty: 10, IsActive: true})
	svc := NewProductService(products, db)
	mock.ExpectBegin()
	mock.ExpectCommit()

	adj, err := svc.AdjustStock(StockAdjustmentRequest{ProductID: 1, Type: "waste", QuantityChange: 3}, 4)
	require.NoError(t, err)
	assert.Equal(t, models.StockWaste, adj.Type)
	assert.Equal(t, -3, adj.QuantityChange)
	assert.Equal(t, 10, adj.PreviousQty)
	assert.Equal(t, 7, adj.NewQty)
	assert.Equal(t, 7, products.products[1].StockQty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewProductService(newFakeProductRepo(), db)

	tests := []struct {
		name  string
		req   StockAdjustmentRequest
		field string
	}{
		{"sale is not manual", StockAdjustmentRequest{ProductID: 1, Type: models.StockSale, QuantityChange: -1}, "type"},
		{"zero change", StockAdjustmentRequest{ProductID: 1, Type: models.StockCorrection}, "quantity_change"},
		{"negative restock", StockAdjustmentRequest{ProductID: 1, Type: models.StockRestock, QuantityChange: -5}, "quantity_change"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustStock(tt.req, 4)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAdjustStockCannotGoBelowZero(t *testing.T) {
	db, mock := newMockDB(t)
	products := newFakeProductRepo(models.Product{ID: 1, Name: "Es Teh", StockQty: 2, IsActive: true})
	svc := NewProductService(products, db)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.AdjustStock(StockAdjustmentRequest{ProductID: 1, Type: models.StockCorrection, QuantityChange: -5}, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, products.products[1].StockQty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProductService(newFakeProductRepo(), db)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.AdjustStock(StockAdjustmentRequest{ProductID: 9, Type: models.StockRestock, QuantityChange: 5}, 4)
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
