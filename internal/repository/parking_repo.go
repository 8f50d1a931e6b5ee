package repository

import (
	"context"
	"fmt"
	"log"

	"parkboard/internal/db"
	"parkboard/internal/rtdb"
)

// Store paths. The aggregate counters live at a single record, slots are a
// collection keyed by slot identifier and bookings are append-only.
const (
	StatsPath    = "parking"
	SlotsPath    = "slots"
	BookingsPath = "bookings"
)

// ParkingRepository gives the services typed access over the backing
// store. It holds no cache; every read hits the store.
type ParkingRepository struct {
	Store rtdb.Store
}

func NewParkingRepository(store rtdb.Store) *ParkingRepository {
	return &ParkingRepository{Store: store}
}

// GetStats returns the aggregate counters, nil when not provisioned.
func (r *ParkingRepository) GetStats(ctx context.Context) (*db.ParkingStats, error) {
	snap, err := r.Store.Get(ctx, StatsPath)
	if err != nil {
		return nil, fmt.Errorf("reading parking stats: %w", err)
	}
	if !snap.Exists() {
		return nil, nil
	}
	var stats db.ParkingStats
	if err := snap.Decode(&stats); err != nil {
		return nil, fmt.Errorf("decoding parking stats: %w", err)
	}
	return &stats, nil
}

func (r *ParkingRepository) SetStats(ctx context.Context, stats *db.ParkingStats) error {
	return r.Store.Set(ctx, StatsPath, stats)
}

func (r *ParkingRepository) UpdateStats(ctx context.Context, fields map[string]any) error {
	return r.Store.Update(ctx, StatsPath, fields)
}

// GetSlot returns one slot record, nil when the key does not exist.
func (r *ParkingRepository) GetSlot(ctx context.Context, key string) (*db.Slot, error) {
	snap, err := r.Store.Get(ctx, SlotsPath+"/"+key)
	if err != nil {
		return nil, fmt.Errorf("reading slot %q: %w", key, err)
	}
	if !snap.Exists() {
		return nil, nil
	}
	var slot db.Slot
	if err := snap.Decode(&slot); err != nil {
		return nil, fmt.Errorf("decoding slot %q: %w", key, err)
	}
	return &slot, nil
}

func (r *ParkingRepository) UpdateSlot(ctx context.Context, key string, fields map[string]any) error {
	return r.Store.Update(ctx, SlotsPath+"/"+key, fields)
}

func (r *ParkingRepository) GetSlots(ctx context.Context) (map[string]db.Slot, error) {
	snap, err := r.Store.Get(ctx, SlotsPath)
	if err != nil {
		return nil, fmt.Errorf("reading slots: %w", err)
	}
	if !snap.Exists() {
		return nil, nil
	}
	var slots map[string]db.Slot
	if err := snap.Decode(&slots); err != nil {
		return nil, fmt.Errorf("decoding slots: %w", err)
	}
	return slots, nil
}

func (r *ParkingRepository) SetSlots(ctx context.Context, slots map[string]db.Slot) error {
	return r.Store.Set(ctx, SlotsPath, slots)
}

// AppendBooking stores an immutable booking record under a fresh key.
func (r *ParkingRepository) AppendBooking(ctx context.Context, booking *db.Booking) (string, error) {
	key, err := r.Store.Push(ctx, BookingsPath, booking)
	if err != nil {
		return "", fmt.Errorf("appending booking: %w", err)
	}
	return key, nil
}

func (r *ParkingRepository) GetBookings(ctx context.Context) (map[string]db.Booking, error) {
	snap, err := r.Store.Get(ctx, BookingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading bookings: %w", err)
	}
	if !snap.Exists() {
		return nil, nil
	}
	var bookings map[string]db.Booking
	if err := snap.Decode(&bookings); err != nil {
		return nil, fmt.Errorf("decoding bookings: %w", err)
	}
	return bookings, nil
}

// WatchStats streams the counters record. A nil element means the record
// is absent.
func (r *ParkingRepository) WatchStats(ctx context.Context) (<-chan *db.ParkingStats, func(), error) {
	snaps, stop, err := r.Store.Subscribe(ctx, StatsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to parking stats: %w", err)
	}
	out := make(chan *db.ParkingStats, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			if !snap.Exists() {
				out <- nil
				continue
			}
			var stats db.ParkingStats
			if err := snap.Decode(&stats); err != nil {
				log.Printf("Skipping malformed parking stats snapshot: %v", err)
				continue
			}
			out <- &stats
		}
	}()
	return out, stop, nil
}

// WatchSlots streams the slot collection. A nil map means the collection
// is absent.
func (r *ParkingRepository) WatchSlots(ctx context.Context) (<-chan map[string]db.Slot, func(), error) {
	snaps, stop, err := r.Store.Subscribe(ctx, SlotsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribing to slots: %w", err)
	}
	out := make(chan map[string]db.Slot, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			if !snap.Exists() {
				out <- nil
				continue
			}
			var slots map[string]db.Slot
			if err := snap.Decode(&slots); err != nil {
				log.Printf("Skipping malformed slots snapshot: %v", err)
				continue
			}
			out <- slots
		}
	}()
	return out, stop, nil
}
