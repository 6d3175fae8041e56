package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNow = time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)

type orderFixture struct {
	svc      OrderService
	mock     sqlmock.Sqlmock
	orders   *fakeOrderRepo
	products *fakeProductRepo
	members  *fakeMemberRepo
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &orderFixture{
		mock:   mock,
		orders: &fakeOrderRepo{},
		products: newFakeProductRepo(
			models.Product{ID: 1, Name: "Es Teh", Price: 8000, StockQty: 10, IsActive: true},
			models.Product{ID: 2, Name: "Nasi Goreng", Price: 25000, StockQty: 1, IsActive: true},
			models.Product{ID: 3, Name: "Old Menu", Price: 5000, StockQty: 5},
		),
		members: newFakeMemberRepo(models.Member{ID: 7, Status: models.MemberStatusActive, WalletBalance: 100000}),
	}
	promos := &fakePromoRepo{promos: map[string]*models.Promo{
		"HEMAT10": {ID: 1, Code: "HEMAT10", DiscountType: models.DiscountPercent, DiscountValue: 10, IsActive: true},
	}}
	settings := &fakeSettingRepo{values: map[string]string{models.SettingPointsEarnUnit: "1000"}}
	f.svc = NewOrderService(f.orders, f.products, newFakeSessionRepo(), f.members, promos, settings, db, time.UTC, fixedClock(orderNow))
	return f
}

func TestCreateOrderWithPromo(t *testing.T) {
	f := newOrderFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	code := "HEMAT10"
	order, err := f.svc.CreateOrder(CreateOrderRequest{
		PromoCode: &code,
		Items: []OrderItemRequest{
			{ProductID: 2, Quantity: 1},
			{ProductID: 1, Quantity: 2},
			{ProductID: 1, Quantity: 1},
		},
	}, 4)
	require.NoError(t, err)

	assert.Equal(t, int64(49000), order.Subtotal)
	assert.Equal(t, int64(4900), order.Discount)
	assert.Equal(t, int64(44100), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 3)

	assert.Equal(t, 7, f.products.products[1].StockQty)
	assert.Equal(t, 0, f.products.products[2].StockQty)
	require.Len(t, f.products.adjustments, 2)
	assert.Equal(t, int64(1), f.products.adjustments[0].ProductID)
	assert.Equal(t, -3, f.products.adjustments[0].QuantityChange)
	assert.Equal(t, 10, f.products.adjustments[0].PreviousQty)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateOrderRejectsShortStockAndInactiveProducts(t *testing.T) {
	f := newOrderFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.CreateOrder(CreateOrderRequest{Items: []OrderItemRequest{{ProductID: 2, Quantity: 2}}}, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.svc.CreateOrder(CreateOrderRequest{Items: []OrderItemRequest{{ProductID: 3, Quantity: 1}}}, 4)
	assert.ErrorIs(t, err, ErrProductInactive)

	assert.Equal(t, 1, f.products.products[2].StockQty)
	assert.Empty(t, f.orders.orders)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayOrderByWalletEarnsPoints(t *testing.T) {
	f := newOrderFixture(t)
	memberID := int64(7)
	f.orders.orders = []*models.Order{{ID: 1, MemberID: &memberID, Subtotal: 45500, Total: 45500, Status: models.OrderStatusPending}}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	order, err := f.svc.PayOrder(1, PayOrderRequest{PaymentMethod: "wallet"}, 4)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, orderNow, *order.PaidAt)
	assert.Equal(t, models.OrderStatusPaid, f.orders.orders[0].Status)

	member := f.members.members[7]
	assert.Equal(t, int64(54500), member.WalletBalance)
	assert.Equal(t, int64(45), member.PointsBalance)
	require.Len(t, f.members.walletTxs, 1)
	assert.Equal(t, int64(-45500), f.members.walletTxs[0].Amount)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayOrderWalletInsufficient(t *testing.T) {
	f := newOrderFixture(t)
	memberID := int64(7)
	f.orders.orders = []*models.Order{{ID: 1, MemberID: &memberID, Total: 150000, Status: models.OrderStatusPending}}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayOrder(1, PayOrderRequest{PaymentMethod: "WALLET"}, 4)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, models.OrderStatusPending, f.orders.orders[0].Status)
	assert.Equal(t, int64(100000), f.members.members[7].WalletBalance)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPayOrderTwice(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.orders = []*models.Order{{ID: 1, Total: 1000, Status: models.OrderStatusPaid}}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PayOrder(1, PayOrderRequest{PaymentMethod: "CASH"}, 4)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancelOrderReturnsStock(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.orders = []*models.Order{{ID: 1, Total: 16000, Status: models.OrderStatusPending}}
	f.orders.items = []models.OrderItem{
		{ID: 1, OrderID: 1, ProductID: int64Ptr(1), ProductName: "Es Teh", Quantity: 2},
		{ID: 2, OrderID: 1, ProductName: "Table T1 (30 min)", Quantity: 1},
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	order, err := f.svc.CancelOrder(1, 4)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 12, f.products.products[1].StockQty)
	require.Len(t, f.products.adjustments, 1)
	assert.Equal(t, models.StockReturn, f.products.adjustments[0].Type)
	require.NoError(t, f.mock.ExpectationsWereMet())
}
