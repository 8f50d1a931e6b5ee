package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkboard/internal/db"
	"parkboard/internal/repository"
	"parkboard/internal/rtdb"
)

type captureNotifier struct {
	mu       sync.Mutex
	bookings []db.Booking
}

func (n *captureNotifier) BookingConfirmed(booking db.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, booking)
}

func newReservationFixture(t *testing.T) (*ReservationService, *repository.ParkingRepository, *captureNotifier) {
	t.Helper()
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	ctx := context.Background()
	require.NoError(t, repo.SetStats(ctx, &db.ParkingStats{
		TotalSlots:     6,
		AvailableSlots: 6,
		FullSlots:      0,
		Status:         db.StatusAvailable,
	}))
	require.NoError(t, repo.SetSlots(ctx, DefaultSlots()))
	notifier := &captureNotifier{}
	return NewReservationService(repo, notifier), repo, notifier
}

func TestReservationService_LoginRequired(t *testing.T) {
	svc, repo, _ := newReservationFixture(t)

	_, err := svc.ReserveSlot(context.Background(), "A-101", "", "")

	require.ErrorIs(t, err, ErrLoginRequired)
	assertUntouched(t, repo)
}

func TestReservationService_SlotNotFound(t *testing.T) {
	svc, repo, _ := newReservationFixture(t)

	_, err := svc.ReserveSlot(context.Background(), "Z-999", "u1", "u1@example.com")

	require.ErrorIs(t, err, ErrSlotNotFound)
	assertUntouched(t, repo)
}

func TestReservationService_AlreadyOccupiedRejectedBeforeWrites(t *testing.T) {
	svc, repo, _ := newReservationFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.UpdateSlot(ctx, "A-101", map[string]any{"occupied": true, "userId": "someone"}))

	_, err := svc.ReserveSlot(ctx, "A-101", "u1", "u1@example.com")

	require.ErrorIs(t, err, ErrSlotOccupied)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.AvailableSlots, "counters untouched after rejection")
	assert.Equal(t, 0, stats.FullSlots)
	bookings, err := repo.GetBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings, "no booking record after rejection")

	slot, err := repo.GetSlot(ctx, "A-101")
	require.NoError(t, err)
	require.NotNil(t, slot.UserID)
	assert.Equal(t, "someone", *slot.UserID, "original occupant untouched")
}

func TestReservationService_BookedSlotIsNotRejected(t *testing.T) {
	// Only the occupied flag blocks the flow; booked passes the check.
	svc, repo, _ := newReservationFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.UpdateSlot(ctx, "A-102", map[string]any{"booked": true}))

	confirmation, err := svc.ReserveSlot(ctx, "A-102", "u1", "u1@example.com")

	require.NoError(t, err)
	assert.Equal(t, "A-102", confirmation.Slot)
}

func TestReservationService_SuccessfulReservation(t *testing.T) {
	svc, repo, notifier := newReservationFixture(t)
	ctx := context.Background()

	confirmation, err := svc.ReserveSlot(ctx, "A-101", "u1", "u1@example.com")

	require.NoError(t, err)
	assert.Equal(t, "A-101", confirmation.Slot)
	assert.NotEmpty(t, confirmation.BookingID)
	assert.Contains(t, confirmation.Message, "A-101")

	slot, err := repo.GetSlot(ctx, "A-101")
	require.NoError(t, err)
	assert.True(t, slot.Occupied)
	require.NotNil(t, slot.UserID)
	assert.Equal(t, "u1", *slot.UserID)
	assert.Equal(t, 1, slot.Floor, "static metadata survives the partial update")
	assert.True(t, slot.HasEVCharger)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.AvailableSlots)
	assert.Equal(t, 1, stats.FullSlots)
	assert.Equal(t, db.StatusAvailable, stats.Status)

	bookings, err := repo.GetBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	booking := bookings[confirmation.BookingID]
	assert.Equal(t, "u1", booking.UserID)
	assert.Equal(t, "u1@example.com", booking.Email)
	assert.Equal(t, "A-101", booking.Slot)
	assert.Equal(t, "A-101", booking.SlotKey)
	assert.Equal(t, db.BookingStatusActive, booking.Status)
	_, err = time.Parse(time.RFC3339, booking.Time)
	assert.NoError(t, err, "booking time is ISO-8601")

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.bookings, 1)
	assert.Equal(t, "A-101", notifier.bookings[0].Slot)
}

func TestReservationService_LastSlotFlipsStatusToFull(t *testing.T) {
	svc, repo, _ := newReservationFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.UpdateStats(ctx, map[string]any{"availableSlots": 1, "fullSlots": 5}))

	_, err := svc.ReserveSlot(ctx, "B-201", "u2", "u2@example.com")

	require.NoError(t, err)
	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.AvailableSlots)
	assert.Equal(t, 6, stats.FullSlots)
	assert.Equal(t, db.StatusFull, stats.Status)
}

func TestReservationService_EachReservationAppendsOneBooking(t *testing.T) {
	svc, repo, _ := newReservationFixture(t)
	ctx := context.Background()

	_, err := svc.ReserveSlot(ctx, "A-101", "u1", "u1@example.com")
	require.NoError(t, err)
	_, err = svc.ReserveSlot(ctx, "A-102", "u2", "u2@example.com")
	require.NoError(t, err)

	bookings, err := repo.GetBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.AvailableSlots)
	assert.Equal(t, 2, stats.FullSlots)
}

func TestReservationService_MissingStatsAbortsAfterSlotWrite(t *testing.T) {
	// The sequence has no rollback: when the counters read fails after
	// the slot write, the slot stays occupied.
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	ctx := context.Background()
	require.NoError(t, repo.SetSlots(ctx, DefaultSlots()))
	svc := NewReservationService(repo, nil)

	_, err := svc.ReserveSlot(ctx, "A-101", "u1", "u1@example.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotNotFound)

	slot, getErr := repo.GetSlot(ctx, "A-101")
	require.NoError(t, getErr)
	assert.True(t, slot.Occupied, "partial state is left in place")
	bookings, getErr := repo.GetBookings(ctx)
	require.NoError(t, getErr)
	assert.Empty(t, bookings)
}

func assertUntouched(t *testing.T, repo *repository.ParkingRepository) {
	t.Helper()
	ctx := context.Background()
	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.AvailableSlots)
	assert.Equal(t, 0, stats.FullSlots)
	bookings, err := repo.GetBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	slots, err := repo.GetSlots(ctx)
	require.NoError(t, err)
	for key, slot := range slots {
		assert.False(t, slot.Occupied, "slot %s must stay free", key)
	}
}
