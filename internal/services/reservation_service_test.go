package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyReservation(t *testing.T) {
	tests := []struct {
		diff time.Duration
		want watchdogBand
	}{
		{30 * time.Minute, bandNone},
		{5*time.Minute + time.Second, bandNone},
		{5 * time.Minute, bandUpcoming},
		{4 * time.Minute, bandUpcoming},
		{time.Second, bandUpcoming},
		{0, bandAwaiting},
		{-14 * time.Minute, bandAwaiting},
		{-15 * time.Minute, bandNoShow},
		{-16 * time.Minute, bandNoShow},
		{-3 * time.Hour, bandNoShow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyReservation(tt.diff), "diff %s", tt.diff)
	}
}

func TestCheckReservations(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, loc)
	confirmed := func(id int64, date, at string) models.Reservation {
		return models.Reservation{ID: id, CustomerName: "guest", BookingDate: date, BookingTime: at, DurationHours: 1, Status: models.ReservationStatusConfirmed}
	}
	repo := &fakeReservationRepo{byDate: []models.Reservation{
		confirmed(1, "2026-03-10", "19:04"),
		confirmed(2, "2026-03-10", "18:46"),
		confirmed(3, "2026-03-10", "18:44"),
		confirmed(4, "2026-03-10", "19:30"),
		confirmed(5, "2026-03-11", "08:00"),
		{ID: 6, BookingDate: "2026-03-10", BookingTime: "17:00", Status: models.ReservationStatusPending},
	}}
	db, mock := newMockDB(t)
	svc := NewReservationService(repo, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo(), db, loc, fixedClock(now))

	report, err := svc.CheckReservations()
	require.NoError(t, err)

	require.Len(t, report.Upcoming, 1)
	assert.Equal(t, int64(1), report.Upcoming[0].Reservation.ID)
	assert.Equal(t, int64(4), report.Upcoming[0].MinutesUntil)

	require.Len(t, report.AwaitingConfirmation, 1)
	assert.Equal(t, int64(2), report.AwaitingConfirmation[0].Reservation.ID)

	require.Len(t, report.AutoCancelled, 1)
	assert.Equal(t, int64(3), report.AutoCancelled[0].Reservation.ID)
	assert.Equal(t, models.ReservationStatusCancelled, report.AutoCancelled[0].Reservation.Status)
	assert.Equal(t, []int64{3}, repo.cancelled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckReservationsNothingDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &fakeReservationRepo{byDate: []models.Reservation{
		{ID: 1, BookingDate: "2026-03-10", BookingTime: "20:00", Status: models.ReservationStatusConfirmed},
	}}
	db, _ := newMockDB(t)
	svc := NewReservationService(repo, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo(), db, time.UTC, fixedClock(now))

	report, err := svc.CheckReservations()
	require.NoError(t, err)
	assert.Empty(t, report.Upcoming)
	assert.Empty(t, report.AwaitingConfirmation)
	assert.Empty(t, report.AutoCancelled)
	assert.Empty(t, repo.cancelled)
}

func TestCheckInStartsSessionOnReservedTable(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	db, mock := newMockDB(t)
	tableID := int64(3)
	repo := &fakeReservationRepo{byDate: []models.Reservation{
		{ID: 1, CustomerName: "Sari", TableID: &tableID, BookingDate: "2026-03-10", BookingTime: "19:00", DurationHours: 2, Status: models.ReservationStatusConfirmed},
		{ID: 2, CustomerName: "Andi", TableID: &tableID, BookingDate: "2026-03-10", BookingTime: "21:00", DurationHours: 1, Status: models.ReservationStatusPending},
	}}
	tables := newFakeTableRepo(models.PoolTable{ID: 3, Name: "T3", HourlyRate: 40000, Status: models.TableStatusAvailable})
	sessions := newFakeSessionRepo()
	svc := NewReservationService(repo, tables, sessions, &fakeOrderRepo{}, newFakeMemberRepo(), db, time.UTC, fixedClock(now))

	mock.ExpectBegin()
	mock.ExpectCommit()
	session, err := svc.CheckIn(1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), session.TableID)
	assert.Equal(t, "Sari", *session.CustomerName)
	assert.Equal(t, now, session.StartTime)
	assert.Equal(t, models.TableStatusActive, tables.tables[3].Status)
	assert.Equal(t, models.ReservationStatusCompleted, repo.byDate[0].Status)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.CheckIn(2, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.ReservationStatusPending, repo.byDate[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationRejectsPastSlot(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	db, _ := newMockDB(t)
	repo := &fakeReservationRepo{}
	svc := NewReservationService(repo, newFakeTableRepo(), newFakeSessionRepo(), &fakeOrderRepo{}, newFakeMemberRepo(), db, time.UTC, fixedClock(now))

	_, err := svc.CreateReservation(CreateReservationRequest{CustomerName: "Sari", BookingDate: "2026-03-10", BookingTime: "18:30"}, 5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "booking_time", verr.Field)
}

func TestBookingInstant(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	svc := &reservationService{loc: loc}

	got, err := svc.bookingInstant(&models.Reservation{BookingDate: "2026-03-10", BookingTime: "23:30"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC), got.UTC())

	_, err = svc.bookingInstant(&models.Reservation{BookingDate: "2026-03-10", BookingTime: "25:00"})
	assert.Error(t, err)
}
