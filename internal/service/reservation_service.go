package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parkboard/internal/db"
	"parkboard/internal/entities"
	"parkboard/internal/repository"
)

// Precondition failures surfaced directly to the caller. Anything else
// coming out of ReserveSlot is a remote failure to be answered with a
// generic retry-later message.
var (
	ErrLoginRequired = errors.New("login required")
	ErrSlotNotFound  = errors.New("slot not found")
	ErrSlotOccupied  = errors.New("slot already occupied")
)

// BookingNotifier delivers the confirmation for a created booking.
type BookingNotifier interface {
	BookingConfirmed(booking db.Booking)
}

// ReservationService transitions a slot from available to occupied and
// records the transaction. The sequence is a chain of individually atomic
// store operations with no lock held across them: concurrent callers can
// interleave between steps and partial failures leave partial state, with
// no compensation attempted.
type ReservationService struct {
	Repo     *repository.ParkingRepository
	Notifier BookingNotifier
}

func NewReservationService(repo *repository.ParkingRepository, notifier BookingNotifier) *ReservationService {
	return &ReservationService{Repo: repo, Notifier: notifier}
}

// ReserveSlot marks the slot occupied for uid, adjusts the aggregate
// counters and appends one ACTIVE booking record.
func (s *ReservationService) ReserveSlot(ctx context.Context, slotKey, uid, email string) (*entities.ReservationConfirmation, error) {
	if uid == "" {
		return nil, ErrLoginRequired
	}

	slot, err := s.Repo.GetSlot(ctx, slotKey)
	if err != nil {
		return nil, fmt.Errorf("fetching slot %q: %w", slotKey, err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	// Only occupied blocks the flow; a booked slot passes this check.
	if slot.Occupied {
		return nil, ErrSlotOccupied
	}

	if err := s.Repo.UpdateSlot(ctx, slotKey, map[string]any{
		"occupied": true,
		"userId":   uid,
	}); err != nil {
		return nil, fmt.Errorf("marking slot %q occupied: %w", slotKey, err)
	}

	stats, err := s.Repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching parking stats: %w", err)
	}
	if stats == nil {
		return nil, fmt.Errorf("parking stats not provisioned")
	}
	remaining := stats.AvailableSlots - 1
	status := db.StatusAvailable
	if remaining == 0 {
		status = db.StatusFull
	}
	if err := s.Repo.UpdateStats(ctx, map[string]any{
		"availableSlots": remaining,
		"fullSlots":      stats.FullSlots + 1,
		"status":         status,
	}); err != nil {
		return nil, fmt.Errorf("updating parking stats: %w", err)
	}

	booking := db.Booking{
		UserID:  uid,
		Email:   email,
		Slot:    slot.SlotID,
		SlotKey: slotKey,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Status:  db.BookingStatusActive,
	}
	key, err := s.Repo.AppendBooking(ctx, &booking)
	if err != nil {
		return nil, fmt.Errorf("creating booking record: %w", err)
	}

	log.Printf("Slot %s reserved by %s (booking %s)", slot.SlotID, uid, key)
	if s.Notifier != nil {
		s.Notifier.BookingConfirmed(booking)
	}

	return &entities.ReservationConfirmation{
		BookingID: key,
		Slot:      slot.SlotID,
		Message:   fmt.Sprintf("Slot %s reserved successfully!", slot.SlotID),
	}, nil
}
