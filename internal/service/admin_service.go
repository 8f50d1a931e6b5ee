package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"parkboard/internal/db"
	"parkboard/internal/entities"
	"parkboard/internal/repository"
)

// ErrAlreadyProvisioned is returned when provisioning would overwrite
// existing data and force was not set.
var ErrAlreadyProvisioned = errors.New("store already provisioned")

// AdminService owns provisioning and the booking audit listing.
type AdminService struct {
	Repo *repository.ParkingRepository
}

func NewAdminService(repo *repository.ParkingRepository) *AdminService {
	return &AdminService{Repo: repo}
}

// DefaultSlots is the demo lot: six slots across three floors, two with EV
// chargers.
func DefaultSlots() map[string]db.Slot {
	return map[string]db.Slot{
		"A-101": {SlotID: "A-101", Floor: 1, Price: 40, HasEVCharger: true},
		"A-102": {SlotID: "A-102", Floor: 1, Price: 30},
		"A-103": {SlotID: "A-103", Floor: 1, Price: 30},
		"A-104": {SlotID: "A-104", Floor: 1, Price: 40, HasEVCharger: true},
		"B-201": {SlotID: "B-201", Floor: 2, Price: 45},
		"C-302": {SlotID: "C-302", Floor: 3, Price: 30},
	}
}

// DefaultCards derives the dashboard card list from the default lot,
// ordered by slot identifier.
func DefaultCards() []entities.SlotCard {
	slots := DefaultSlots()
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cards := make([]entities.SlotCard, 0, len(keys))
	for _, k := range keys {
		s := slots[k]
		cards = append(cards, entities.SlotCard{
			Title:        s.SlotID,
			Floor:        s.Floor,
			Price:        s.Price,
			HasEVCharger: s.HasEVCharger,
		})
	}
	return cards
}

// Provision writes the seed counters and slot records. Existing data is
// only overwritten when force is set; bookings are never touched.
func (s *AdminService) Provision(ctx context.Context, force bool) error {
	if !force {
		stats, err := s.Repo.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("checking existing data: %w", err)
		}
		if stats != nil {
			return ErrAlreadyProvisioned
		}
	}
	slots := DefaultSlots()
	if err := s.Repo.SetStats(ctx, &db.ParkingStats{
		TotalSlots:     len(slots),
		AvailableSlots: len(slots),
		FullSlots:      0,
		Status:         db.StatusAvailable,
	}); err != nil {
		return fmt.Errorf("writing parking stats: %w", err)
	}
	if err := s.Repo.SetSlots(ctx, slots); err != nil {
		return fmt.Errorf("writing slots: %w", err)
	}
	return nil
}

// ListBookings returns the audit trail, newest first.
func (s *AdminService) ListBookings(ctx context.Context) ([]entities.BookingEntry, error) {
	bookings, err := s.Repo.GetBookings(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]entities.BookingEntry, 0, len(bookings))
	for key, b := range bookings {
		entries = append(entries, entities.BookingEntry{
			Key:     key,
			UserID:  b.UserID,
			Email:   b.Email,
			Slot:    b.Slot,
			SlotKey: b.SlotKey,
			Time:    b.Time,
			Status:  b.Status,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time > entries[j].Time
		}
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}
