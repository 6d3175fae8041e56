package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableNow = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

func newTestTableService(t *testing.T, tables *fakeTableRepo, sessions *fakeSessionRepo, orders *fakeOrderRepo, members *fakeMemberRepo) (TableService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewTableService(tables, sessions, orders, members, db, time.UTC, fixedClock(tableNow)), mock
}

func TestStartTable(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusAvailable})
	svc, mock := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())

	mock.ExpectBegin()
	mock.ExpectCommit()

	name := "  Budi  "
	session, err := svc.StartTable(1, StartTableRequest{CustomerName: &name}, 7)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusOpen, session.Status)
	assert.Equal(t, tableNow, session.StartTime)
	assert.Equal(t, "Budi", *session.CustomerName)
	assert.Equal(t, int64(7), *session.StartedBy)
	assert.Nil(t, session.EndTime)
	assert.Equal(t, models.TableStatusActive, tables.tables[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTableWithPackage(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusAvailable})
	svc, mock := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectCommit()

	hours := 2
	session, err := svc.StartTable(1, StartTableRequest{PackageHours: &hours}, 7)
	require.NoError(t, err)
	require.NotNil(t, session.EndTime)
	assert.Equal(t, tableNow.Add(2*time.Hour), *session.EndTime)
	assert.True(t, session.IsFixedPackage())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTableRejectsBusyTable(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusActive})
	svc, mock := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.StartTable(1, StartTableRequest{}, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTableNotAvailable)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, models.TableStatusActive, tables.tables[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTableRejectsInactiveMember(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusAvailable})
	members := newFakeMemberRepo(models.Member{ID: 3, Status: models.MemberStatusBanned})
	svc, mock := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, members)
	mock.ExpectBegin()
	mock.ExpectRollback()

	memberID := int64(3)
	_, err := svc.StartTable(1, StartTableRequest{MemberID: &memberID}, 7)
	assert.ErrorIs(t, err, ErrMemberInactive)
	assert.Equal(t, models.TableStatusAvailable, tables.tables[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTableValidatesPackageHours(t *testing.T) {
	svc, mock := newTestTableService(t, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())

	hours := 25
	_, err := svc.StartTable(1, StartTableRequest{PackageHours: &hours}, 7)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "package_hours", verr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopTableWithoutOpenSession(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusAvailable})
	svc, mock := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.StopTable(1, 7)
	assert.ErrorIs(t, err, ErrNoOpenSession)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopTablePausedSessionIsNotStoppable(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusBooked})
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusPaused, StartTime: tableNow.Add(-time.Hour)})
	svc, mock := newTestTableService(t, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.StopTable(1, 7)
	assert.ErrorIs(t, err, ErrNoOpenSession)
	assert.Equal(t, models.SessionStatusPaused, sessions.sessions[5].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopTableFreezesBillAndFreesTable(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusActive})
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusOpen, StartTime: tableNow.Add(-90 * time.Minute)})
	orders := &fakeOrderRepo{}
	svc, mock := newTestTableService(t, tables, sessions, orders, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.StopTable(1, 7)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusClosed, result.Session.Status)
	assert.Equal(t, int64(90), result.Session.DurationMinutes)
	assert.Equal(t, int64(75000), result.Session.TotalCost)
	assert.Equal(t, tableNow, *result.Session.EndTime)
	assert.Equal(t, models.TableStatusAvailable, tables.tables[1].Status)
	assert.Equal(t, models.SessionStatusClosed, sessions.sessions[5].Status)

	require.Len(t, orders.orders, 1)
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, int64(75000), result.Order.Total)
	assert.Equal(t, int64(5), *result.Order.SessionID)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, "Table T1 (90 min)", result.Order.Items[0].ProductName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTogglePauseRoundTrip(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusActive})
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusOpen, StartTime: tableNow.Add(-time.Hour)})
	svc, mock := newTestTableService(t, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	paused, err := svc.TogglePause(1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPaused, paused.Status)
	assert.Equal(t, models.TableStatusBooked, tables.tables[1].Status)

	resumed, err := svc.TogglePause(1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusOpen, resumed.Status)
	assert.Equal(t, models.TableStatusActive, tables.tables[1].Status)
	assert.Equal(t, tableNow.Add(-time.Hour), resumed.StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTable(t *testing.T) {
	tables := newFakeTableRepo(
		models.PoolTable{ID: 1, Name: "T1", HourlyRate: 50000, Status: models.TableStatusActive},
		models.PoolTable{ID: 2, Name: "VIP", HourlyRate: 80000, Status: models.TableStatusAvailable},
	)
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusOpen, StartTime: tableNow.Add(-time.Hour)})
	svc, mock := newTestTableService(t, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectCommit()

	session, err := svc.TransferTable(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), session.TableID)
	assert.Equal(t, int64(2), sessions.sessions[5].TableID)
	assert.Equal(t, models.TableStatusCleaning, tables.tables[1].Status)
	assert.Equal(t, models.TableStatusActive, tables.tables[2].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTableToBusyTable(t *testing.T) {
	tables := newFakeTableRepo(
		models.PoolTable{ID: 1, Name: "T1", Status: models.TableStatusActive},
		models.PoolTable{ID: 2, Name: "T2", Status: models.TableStatusActive},
	)
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusOpen, StartTime: tableNow})
	svc, mock := newTestTableService(t, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo())
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.TransferTable(1, 2)
	assert.ErrorIs(t, err, ErrTableNotAvailable)
	assert.Equal(t, int64(1), sessions.sessions[5].TableID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferTableSameTable(t *testing.T) {
	svc, mock := newTestTableService(t, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())
	_, err := svc.TransferTable(3, 3)
	assert.ErrorIs(t, err, ErrSameTableTransfer)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLiveBill(t *testing.T) {
	tables := newFakeTableRepo(models.PoolTable{ID: 1, Name: "T1", HourlyRate: 60000, Status: models.TableStatusBooked})
	sessions := newFakeSessionRepo(models.Session{ID: 5, TableID: 1, Status: models.SessionStatusPaused, StartTime: tableNow.Add(-45 * time.Minute)})
	svc, mock := newTestTableService(t, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo())

	bill, err := svc.GetLiveBill(1)
	require.NoError(t, err)
	assert.Equal(t, int64(45), bill.DurationMinutes)
	assert.Equal(t, int64(45000), bill.TotalCost)
	assert.Equal(t, tableNow, bill.AsOf)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTableReady(t *testing.T) {
	tables := newFakeTableRepo(
		models.PoolTable{ID: 1, Name: "T1", Status: models.TableStatusCleaning},
		models.PoolTable{ID: 2, Name: "T2", Status: models.TableStatusActive},
	)
	svc, _ := newTestTableService(t, tables, newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())

	table, err := svc.MarkTableReady(1)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, table.Status)

	_, err = svc.MarkTableReady(2)
	assert.ErrorIs(t, err, ErrTableNotCleaning)
	assert.Equal(t, models.TableStatusActive, tables.tables[2].Status)

	_, err = svc.MarkTableReady(9)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCreateTableRejectsUnboundedRate(t *testing.T) {
	svc, _ := newTestTableService(t, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo())

	for _, rate := range []int64{0, -5, maxHourlyRate + 1} {
		_, err := svc.CreateTable(CreateTableRequest{Name: "T9", Type: models.TableTypeVIP, HourlyRate: rate})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "hourly_rate", verr.Field)
	}
}
