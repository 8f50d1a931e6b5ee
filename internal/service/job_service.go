package service

import (
	"context"
	"fmt"
	"log"

	"parkboard/internal/entities"
	"parkboard/internal/repository"
)

// DriftNotifier receives alerts when the counters drift.
type DriftNotifier interface {
	CounterDrift(report entities.DriftReport)
}

// JobService runs the scheduled counter drift sweep. The aggregate
// counters and the per-slot records are updated by separate non-atomic
// writes, so they can disagree; this job makes the disagreement visible
// without repairing anything.
type JobService struct {
	Repo     *repository.ParkingRepository
	Notifier DriftNotifier
}

func NewJobService(repo *repository.ParkingRepository, notifier DriftNotifier) *JobService {
	return &JobService{Repo: repo, Notifier: notifier}
}

// CheckCounterDrift compares the reported counters against the state
// derived from the slot records. A nil report means there is nothing to
// compare yet.
func (s *JobService) CheckCounterDrift(ctx context.Context) (*entities.DriftReport, error) {
	stats, err := s.Repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("drift sweep: reading stats: %w", err)
	}
	if stats == nil {
		return nil, nil
	}
	slots, err := s.Repo.GetSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("drift sweep: reading slots: %w", err)
	}

	unavailable := 0
	for _, slot := range slots {
		if slot.Occupied || slot.Booked {
			unavailable++
		}
	}

	report := &entities.DriftReport{
		TotalSlots:        stats.TotalSlots,
		ReportedAvailable: stats.AvailableSlots,
		ReportedFull:      stats.FullSlots,
		DerivedAvailable:  stats.TotalSlots - unavailable,
		UnavailableSlots:  unavailable,
		CounterMismatch:   stats.AvailableSlots+stats.FullSlots != stats.TotalSlots,
		AvailableDiverged: stats.AvailableSlots != stats.TotalSlots-unavailable,
	}

	if report.CounterMismatch {
		log.Printf("Drift sweep: available+full=%d does not match total=%d",
			stats.AvailableSlots+stats.FullSlots, stats.TotalSlots)
	}
	if report.AvailableDiverged {
		log.Printf("Drift sweep: reported available=%d, derived available=%d",
			report.ReportedAvailable, report.DerivedAvailable)
	}
	if (report.CounterMismatch || report.AvailableDiverged) && s.Notifier != nil {
		s.Notifier.CounterDrift(*report)
	}
	return report, nil
}
