package repositories

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUpdateTableStatusIsConditional(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTableRepository(db)

	mock.ExpectExec("UPDATE pool_tables SET status").
		WithArgs("ACTIVE", int64(1), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pool_tables SET status").
		WithArgs("ACTIVE", int64(1), "AVAILABLE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateTableStatus(db, 1, models.TableStatusAvailable, models.TableStatusActive)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateTableStatus(db, 1, models.TableStatusAvailable, models.TableStatusActive)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTableRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM pool_tables WHERE id").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTableByID(nil, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddWalletBalanceRefusesOverdraft(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectQuery("UPDATE members SET wallet_balance").
		WithArgs(int64(-5000), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}))

	_, err := repo.AddWalletBalance(db, 1, -5000)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReservationRepository(db)

	n, err := repo.CancelReservations(db, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("CANCELLED", sqlmock.AnyArg(), "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err = repo.CancelReservations(db, []int64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountTableConflictsComparesInstants(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReservationRepository(db)

	// A 23:30 request collides with a 23:00 two-hour booking that runs past midnight.
	mock.ExpectQuery("(?s)"+regexp.QuoteMeta("booking_date BETWEEN $2::date - 1 AND $2::date + 1")+
		".*"+regexp.QuoteMeta("(booking_date + booking_time::time) < ($2::date + $3::time + make_interval(hours => $4))")).
		WithArgs(int64(2), "2026-03-10", "23:30", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountTableConflicts(2, "2026-03-10", "23:30", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exclude := int64(9)
	mock.ExpectQuery(regexp.QuoteMeta("AND id <> $5")).
		WithArgs(int64(2), "2026-03-11", "00:30", int64(2), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	n, err = repo.CountTableConflicts(2, "2026-03-11", "00:30", 2, &exclude)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPaidCashSinceFiltersByCreation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOrderRepository(db)
	since := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND payment_method = $2 AND created_at >= $3")).
		WithArgs("PAID", "CASH", since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(250000)))

	total, err := repo.SumPaidCashSince(nil, since)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), total)
	require.NoError(t, mock.ExpectationsWereMet())
}
