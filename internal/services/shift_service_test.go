package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseShiftComputesVariance(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	shifts := &fakeShiftRepo{shifts: map[int64]*models.ShiftReport{
		1: {ID: 1, StaffID: 9, OpenedAt: now.Add(-8 * time.Hour), OpeningCash: 100000},
	}}
	orders := &fakeOrderRepo{cashSales: 250000}
	db, mock := newMockDB(t)
	svc := NewShiftService(shifts, orders, db, time.UTC, fixedClock(now))

	mock.ExpectBegin()
	mock.ExpectCommit()

	actual := int64(340000)
	reason := " short change "
	shift, err := svc.CloseShift(1, CloseShiftRequest{ActualCash: &actual, VarianceReason: &reason}, 9, models.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, int64(350000), *shift.SystemCash)
	assert.Equal(t, int64(-10000), *shift.Variance)
	assert.Equal(t, "short change", *shift.VarianceReason)
	assert.Equal(t, now, *shift.ClosedAt)
	assert.False(t, shifts.shifts[1].IsOpen())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseShiftOwnership(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	newSvc := func(t *testing.T) (ShiftService, *fakeShiftRepo) {
		shifts := &fakeShiftRepo{shifts: map[int64]*models.ShiftReport{
			1: {ID: 1, StaffID: 9, OpenedAt: now.Add(-time.Hour), OpeningCash: 50000},
		}}
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectCommit()
		return NewShiftService(shifts, &fakeOrderRepo{}, db, time.UTC, fixedClock(now)), shifts
	}
	actual := int64(50000)

	t.Run("other staff is forbidden", func(t *testing.T) {
		svc, shifts := newSvc(t)
		_, err := svc.CloseShift(1, CloseShiftRequest{ActualCash: &actual}, 10, models.RoleStaff)
		assert.ErrorIs(t, err, ErrShiftNotOwned)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.True(t, shifts.shifts[1].IsOpen())
	})

	t.Run("manager may close any shift once", func(t *testing.T) {
		svc, _ := newSvc(t)
		_, err := svc.CloseShift(1, CloseShiftRequest{ActualCash: &actual}, 10, models.RoleStaff)
		require.Error(t, err)
		shift, err := svc.CloseShift(1, CloseShiftRequest{ActualCash: &actual}, 2, models.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, int64(0), *shift.Variance)
	})
}

func TestCloseShiftAlreadyClosed(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	closed := now.Add(-time.Hour)
	shifts := &fakeShiftRepo{shifts: map[int64]*models.ShiftReport{
		1: {ID: 1, StaffID: 9, OpenedAt: now.Add(-8 * time.Hour), ClosedAt: &closed},
	}}
	db, mock := newMockDB(t)
	svc := NewShiftService(shifts, &fakeOrderRepo{}, db, time.UTC, fixedClock(now))
	mock.ExpectBegin()
	mock.ExpectRollback()

	actual := int64(0)
	_, err := svc.CloseShift(1, CloseShiftRequest{ActualCash: &actual}, 9, models.RoleStaff)
	assert.ErrorIs(t, err, ErrShiftAlreadyClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseShiftRequiresActualCash(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewShiftService(&fakeShiftRepo{}, &fakeOrderRepo{}, db, time.UTC, nil)

	_, err := svc.CloseShift(1, CloseShiftRequest{}, 9, models.RoleStaff)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "actual_cash", verr.Field)
}

func TestOpenShift(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	db, _ := newMockDB(t)

	t.Run("opens once per staff", func(t *testing.T) {
		shifts := &fakeShiftRepo{}
		svc := NewShiftService(shifts, &fakeOrderRepo{}, db, time.UTC, fixedClock(now))

		shift, err := svc.OpenShift(9, OpenShiftRequest{OpeningCash: 100000})
		require.NoError(t, err)
		assert.Equal(t, int64(9), shift.StaffID)
		assert.Equal(t, now, shift.OpenedAt)
		assert.Equal(t, int64(100000), shift.OpeningCash)
		assert.True(t, shift.IsOpen())

		_, err = svc.OpenShift(9, OpenShiftRequest{OpeningCash: 50000})
		assert.ErrorIs(t, err, ErrShiftAlreadyOpen)
		assert.Len(t, shifts.shifts, 1)

		_, err = svc.OpenShift(10, OpenShiftRequest{})
		require.NoError(t, err)
		assert.Len(t, shifts.shifts, 2)
	})

	t.Run("unique index race maps to already open", func(t *testing.T) {
		shifts := &fakeShiftRepo{createErr: repositories.ErrDuplicateKey}
		svc := NewShiftService(shifts, &fakeOrderRepo{}, db, time.UTC, fixedClock(now))

		_, err := svc.OpenShift(9, OpenShiftRequest{OpeningCash: 100000})
		assert.ErrorIs(t, err, ErrShiftAlreadyOpen)
	})

	t.Run("negative opening cash", func(t *testing.T) {
		svc := NewShiftService(&fakeShiftRepo{}, &fakeOrderRepo{}, db, time.UTC, fixedClock(now))
		_, err := svc.OpenShift(9, OpenShiftRequest{OpeningCash: -1})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "opening_cash", verr.Field)
	})
}
