package services

import (
	"database/sql"
	"testing"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// fixedClock pins "now" for a test.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// newMockDB returns a sqlmock-backed *sql.DB used only for transaction boundaries.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// The fakes embed the repository interface so only the methods a test touches
// need implementing. Calling anything else panics, which fails the test loudly.

type fakeTableRepo struct {
	repositories.TableRepository
	tables map[int64]*models.PoolTable
}

func newFakeTableRepo(tables ...models.PoolTable) *fakeTableRepo {
	r := &fakeTableRepo{tables: map[int64]*models.PoolTable{}}
	for i := range tables {
		t := tables[i]
		r.tables[t.ID] = &t
	}
	return r
}

func (r *fakeTableRepo) GetTableByID(_ repositories.SQLExecutor, id int64) (*models.PoolTable, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTableRepo) GetTableForUpdate(exec repositories.SQLExecutor, id int64) (*models.PoolTable, error) {
	return r.GetTableByID(exec, id)
}

func (r *fakeTableRepo) UpdateTableStatus(_ repositories.SQLExecutor, id int64, from, to models.TableStatus) (bool, error) {
	t, ok := r.tables[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

type fakeSessionRepo struct {
	repositories.SessionRepository
	sessions map[int64]*models.Session
	nextID   int64
}

func newFakeSessionRepo(sessions ...models.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[int64]*models.Session{}, nextID: 100}
	for i := range sessions {
		s := sessions[i]
		r.sessions[s.ID] = &s
	}
	return r
}

func (r *fakeSessionRepo) CreateSession(_ repositories.SQLExecutor, s *models.Session) error {
	for _, existing := range r.sessions {
		if existing.TableID == s.TableID && existing.Status != models.SessionStatusClosed {
			return repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetRunningSession(_ repositories.SQLExecutor, tableID int64, statuses ...models.SessionStatus) (*models.Session, error) {
	if len(statuses) == 0 {
		statuses = []models.SessionStatus{models.SessionStatusOpen, models.SessionStatusPaused}
	}
	for _, s := range r.sessions {
		if s.TableID != tableID {
			continue
		}
		for _, st := range statuses {
			if s.Status == st {
				cp := *s
				return &cp, nil
			}
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSessionRepo) UpdateSessionStatus(_ repositories.SQLExecutor, id int64, status models.SessionStatus) error {
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSessionRepo) CloseSession(_ repositories.SQLExecutor, session *models.Session) error {
	s, ok := r.sessions[session.ID]
	if !ok || s.Status == models.SessionStatusClosed {
		return repositories.ErrNotFound
	}
	*s = *session
	return nil
}

func (r *fakeSessionRepo) MoveSession(_ repositories.SQLExecutor, id, toTableID int64) error {
	s, ok := r.sessions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.TableID = toTableID
	return nil
}

type fakeOrderRepo struct {
	repositories.OrderRepository
	orders    []*models.Order
	items     []models.OrderItem
	cashSales int64
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, o *models.Order) error {
	o.ID = int64(len(r.orders) + 1)
	r.orders = append(r.orders, o)
	return nil
}

func (r *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) error {
	item.ID = int64(len(r.items) + 1)
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeOrderRepo) SumPaidCashSince(_ repositories.SQLExecutor, _ time.Time) (int64, error) {
	return r.cashSales, nil
}

type fakeMemberRepo struct {
	repositories.MemberRepository
	members   map[int64]*models.Member
	walletTxs []models.WalletTransaction
	pointTxs  []models.PointTransaction
}

func newFakeMemberRepo(members ...models.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: map[int64]*models.Member{}}
	for i := range members {
		m := members[i]
		r.members[m.ID] = &m
	}
	return r
}

func (r *fakeMemberRepo) GetMemberByID(_ repositories.SQLExecutor, id int64) (*models.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) GetMemberForUpdate(exec repositories.SQLExecutor, id int64) (*models.Member, error) {
	return r.GetMemberByID(exec, id)
}

func (r *fakeMemberRepo) AddWalletBalance(_ repositories.SQLExecutor, id int64, delta int64) (int64, error) {
	m, ok := r.members[id]
	if !ok || m.WalletBalance+delta < 0 {
		return 0, repositories.ErrNotFound
	}
	m.WalletBalance += delta
	return m.WalletBalance, nil
}

func (r *fakeMemberRepo) AddPointsBalance(_ repositories.SQLExecutor, id int64, delta int64) (int64, error) {
	m, ok := r.members[id]
	if !ok || m.PointsBalance+delta < 0 {
		return 0, repositories.ErrNotFound
	}
	m.PointsBalance += delta
	return m.PointsBalance, nil
}

func (r *fakeMemberRepo) CreateWalletTransaction(_ repositories.SQLExecutor, tx *models.WalletTransaction) error {
	tx.ID = int64(len(r.walletTxs) + 1)
	r.walletTxs = append(r.walletTxs, *tx)
	return nil
}

func (r *fakeMemberRepo) CreatePointTransaction(_ repositories.SQLExecutor, tx *models.PointTransaction) error {
	tx.ID = int64(len(r.pointTxs) + 1)
	r.pointTxs = append(r.pointTxs, *tx)
	return nil
}

type fakeReservationRepo struct {
	repositories.ReservationRepository
	byDate    []models.Reservation
	cancelled []int64
}

func (r *fakeReservationRepo) GetReservationForUpdate(_ repositories.SQLExecutor, id int64) (*models.Reservation, error) {
	for _, res := range r.byDate {
		if res.ID == id {
			cp := res
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeReservationRepo) UpdateReservationStatus(_ repositories.SQLExecutor, id int64, status models.ReservationStatus) error {
	for i := range r.byDate {
		if r.byDate[i].ID == id {
			r.byDate[i].Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeReservationRepo) GetReservationsByDateAndStatus(date string, status models.ReservationStatus) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, res := range r.byDate {
		if res.BookingDate == date && res.Status == status {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) CancelReservations(_ repositories.SQLExecutor, ids []int64) (int64, error) {
	r.cancelled = append(r.cancelled, ids...)
	return int64(len(ids)), nil
}

type fakeShiftRepo struct {
	repositories.ShiftRepository
	shifts    map[int64]*models.ShiftReport
	createErr error
}

func (r *fakeShiftRepo) GetOpenShiftByStaff(_ repositories.SQLExecutor, staffID int64) (*models.ShiftReport, error) {
	for _, s := range r.shifts {
		if s.StaffID == staffID && s.ClosedAt == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeShiftRepo) CreateShift(_ repositories.SQLExecutor, shift *models.ShiftReport) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.shifts == nil {
		r.shifts = map[int64]*models.ShiftReport{}
	}
	shift.ID = int64(len(r.shifts) + 1)
	cp := *shift
	r.shifts[shift.ID] = &cp
	return nil
}

func (r *fakeShiftRepo) GetShiftForUpdate(_ repositories.SQLExecutor, id int64) (*models.ShiftReport, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeShiftRepo) CloseShift(_ repositories.SQLExecutor, shift *models.ShiftReport) error {
	s, ok := r.shifts[shift.ID]
	if !ok || s.ClosedAt != nil {
		return repositories.ErrNotFound
	}
	*s = *shift
	return nil
}

func (r *fakeOrderRepo) GetOrderForUpdate(_ repositories.SQLExecutor, id int64) (*models.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(_ repositories.SQLExecutor, id int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	for _, it := range r.items {
		if it.OrderID == id {
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *fakeOrderRepo) MarkOrderPaid(_ repositories.SQLExecutor, id int64, method models.PaymentMethod, paidAt time.Time) error {
	return r.UpdateOrderStatus(nil, id, models.OrderStatusPending, models.OrderStatusPaid)
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, id int64, from, to models.OrderStatus) error {
	for _, o := range r.orders {
		if o.ID == id && o.Status == from {
			o.Status = to
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeProductRepo struct {
	repositories.ProductRepository
	products    map[int64]*models.Product
	adjustments []models.StockAdjustment
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[int64]*models.Product{}}
	for i := range products {
		p := products[i]
		r.products[p.ID] = &p
	}
	return r
}

func (r *fakeProductRepo) GetProductForUpdate(_ repositories.SQLExecutor, id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) AddStock(_ repositories.SQLExecutor, id int64, delta int) (int, error) {
	p, ok := r.products[id]
	if !ok || p.StockQty+delta < 0 {
		return 0, repositories.ErrNotFound
	}
	p.StockQty += delta
	return p.StockQty, nil
}

func (r *fakeProductRepo) CreateStockAdjustment(_ repositories.SQLExecutor, adj *models.StockAdjustment) error {
	adj.ID = int64(len(r.adjustments) + 1)
	r.adjustments = append(r.adjustments, *adj)
	return nil
}

type fakePromoRepo struct {
	repositories.PromoRepository
	promos map[string]*models.Promo
}

func (r *fakePromoRepo) GetPromoByCode(_ repositories.SQLExecutor, code string) (*models.Promo, error) {
	p, ok := r.promos[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeSettingRepo struct {
	repositories.SettingRepository
	values map[string]string
}

func (r *fakeSettingRepo) GetSetting(_ repositories.SQLExecutor, key string) (*models.AppSetting, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.AppSetting{Key: key, Value: v}, nil
}
