package service

import (
	"context"
	"log"
	"math"
	"sync"

	"parkboard/internal/db"
	"parkboard/internal/entities"
	"parkboard/internal/repository"
)

// fallbackTotalSlots is used when the counters record is absent or carries
// no capacity during the supplementary read.
const fallbackTotalSlots = 6

// Broadcaster receives every recomputed dashboard view.
type Broadcaster interface {
	BroadcastView(view entities.DashboardView)
}

// SyncService keeps the dashboard view consistent with the latest pushed
// state. It subscribes to the counters record and the slot collection and
// recomputes the view on every notification. It never writes to the store.
//
// The available count is deliberately computed two ways: the counters
// subscription displays the backend field as-is, while each slot pass
// overwrites it with totalSlots minus the unavailable tally. The two can
// drift apart; JobService reports on that divergence.
type SyncService struct {
	repo *repository.ParkingRepository
	hub  Broadcaster

	mu   sync.Mutex
	view entities.DashboardView
}

// NewSyncService seeds the view with the given cards. Cards start out
// available; their badge state is rewritten on the first slots snapshot.
// hub may be nil when nothing consumes broadcasts.
func NewSyncService(repo *repository.ParkingRepository, hub Broadcaster, cards []entities.SlotCard) *SyncService {
	view := entities.DashboardView{Cards: make([]entities.SlotCard, len(cards))}
	copy(view.Cards, cards)
	for i := range view.Cards {
		if view.Cards[i].Badge == "" {
			view.Cards[i].Badge = entities.BadgeAvailable
			view.Cards[i].BadgeStyle = entities.BadgeStyleAvailable
			view.Cards[i].Button = entities.ButtonReserve
			view.Cards[i].CanReserve = true
		}
	}
	return &SyncService{repo: repo, hub: hub, view: view}
}

// Start opens both subscriptions and consumes them until ctx is done. The
// two streams run independently; their passes can interleave in any order.
func (s *SyncService) Start(ctx context.Context) error {
	stats, stopStats, err := s.repo.WatchStats(ctx)
	if err != nil {
		return err
	}
	slots, stopSlots, err := s.repo.WatchSlots(ctx)
	if err != nil {
		stopStats()
		return err
	}
	go func() {
		defer stopStats()
		for st := range stats {
			s.applyStats(st)
		}
	}()
	go func() {
		defer stopSlots()
		for sl := range slots {
			s.applySlots(ctx, sl)
		}
	}()
	return nil
}

// View returns a copy of the current dashboard state.
func (s *SyncService) View() entities.DashboardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SyncService) snapshotLocked() entities.DashboardView {
	view := s.view
	view.Cards = make([]entities.SlotCard, len(s.view.Cards))
	copy(view.Cards, s.view.Cards)
	return view
}

// applyStats handles a counters notification. The backend availableSlots
// value is displayed without recomputation; a null payload changes nothing.
func (s *SyncService) applyStats(stats *db.ParkingStats) {
	if stats == nil {
		return
	}
	s.mu.Lock()
	s.view.AvailableCount = stats.AvailableSlots
	view := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("Parking stats update: available=%d total=%d", stats.AvailableSlots, stats.TotalSlots)
	s.broadcast(view)
}

// applySlots handles a slot collection notification: rewrites card badges,
// tallies occupancy and re-derives the available count and occupancy bar
// from a supplementary counters read.
func (s *SyncService) applySlots(ctx context.Context, slots map[string]db.Slot) {
	s.mu.Lock()

	if slots == nil {
		s.view.OccupiedCount = 0
		s.view.OccupancyPercent = 0
		s.view.OccupancyBar = 0
		view := s.snapshotLocked()
		s.mu.Unlock()
		log.Printf("No slots data in store")
		s.broadcast(view)
		return
	}

	occupied := 0
	unavailable := 0
	for i := range s.view.Cards {
		card := &s.view.Cards[i]
		slot, ok := slots[card.Title]
		if !ok {
			// No record for this card; it keeps its last state.
			continue
		}
		if slot.Occupied {
			occupied++
		}
		if slot.Occupied || slot.Booked {
			unavailable++
		}
		switch {
		case slot.Occupied:
			card.Badge = entities.BadgeOccupied
			card.BadgeStyle = entities.BadgeStyleOccupied
			card.Button = entities.BadgeOccupied
			card.CanReserve = false
		case slot.Booked:
			card.Badge = entities.BadgeBooked
			card.BadgeStyle = entities.BadgeStyleOccupied
			card.Button = entities.BadgeBooked
			card.CanReserve = false
		default:
			card.Badge = entities.BadgeAvailable
			card.BadgeStyle = entities.BadgeStyleAvailable
			card.Button = entities.ButtonReserve
			card.CanReserve = true
		}
	}
	s.view.OccupiedCount = occupied
	s.mu.Unlock()

	// Supplementary read for capacity only. On failure the previously
	// displayed available count and bar stay in place.
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		log.Printf("Error getting parking data: %v", err)
	} else {
		total := fallbackTotalSlots
		if stats != nil && stats.TotalSlots != 0 {
			total = stats.TotalSlots
		}
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(unavailable) / float64(total) * 100))
		}
		s.mu.Lock()
		s.view.AvailableCount = total - unavailable
		s.view.OccupancyPercent = percent
		s.view.OccupancyBar = percent
		s.mu.Unlock()
		log.Printf("Slot counts - occupied: %d, unavailable: %d, available: %d, total: %d",
			occupied, unavailable, total-unavailable, total)
	}

	s.broadcast(s.View())
}

func (s *SyncService) broadcast(view entities.DashboardView) {
	if s.hub != nil {
		s.hub.BroadcastView(view)
	}
}
