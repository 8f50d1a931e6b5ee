package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkboard/internal/db"
	"parkboard/internal/entities"
	"parkboard/internal/repository"
	"parkboard/internal/rtdb"
)

type captureAlerter struct {
	mu      sync.Mutex
	reports []entities.DriftReport
}

func (a *captureAlerter) CounterDrift(report entities.DriftReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, report)
}

func (a *captureAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.reports)
}

func TestJobService_NothingProvisioned(t *testing.T) {
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	svc := NewJobService(repo, nil)

	report, err := svc.CheckCounterDrift(context.Background())

	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestJobService_ConsistentCounters(t *testing.T) {
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	ctx := context.Background()
	require.NoError(t, repo.SetStats(ctx, &db.ParkingStats{TotalSlots: 6, AvailableSlots: 5, FullSlots: 1, Status: db.StatusAvailable}))
	slots := DefaultSlots()
	s := slots["A-101"]
	s.Occupied = true
	slots["A-101"] = s
	require.NoError(t, repo.SetSlots(ctx, slots))
	alerter := &captureAlerter{}
	svc := NewJobService(repo, alerter)

	report, err := svc.CheckCounterDrift(ctx)

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.False(t, report.CounterMismatch)
	assert.False(t, report.AvailableDiverged)
	assert.Equal(t, 1, report.UnavailableSlots)
	assert.Equal(t, 0, alerter.count(), "no alert without drift")
}

func TestJobService_DetectsCounterMismatch(t *testing.T) {
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	ctx := context.Background()
	// Lost update left available+full short of total.
	require.NoError(t, repo.SetStats(ctx, &db.ParkingStats{TotalSlots: 6, AvailableSlots: 3, FullSlots: 2, Status: db.StatusAvailable}))
	require.NoError(t, repo.SetSlots(ctx, DefaultSlots()))
	alerter := &captureAlerter{}
	svc := NewJobService(repo, alerter)

	report, err := svc.CheckCounterDrift(ctx)

	require.NoError(t, err)
	assert.True(t, report.CounterMismatch)
	assert.True(t, report.AvailableDiverged)
	assert.Equal(t, 6, report.DerivedAvailable)
	assert.Equal(t, 3, report.ReportedAvailable)
	assert.Equal(t, 1, alerter.count())
}

func TestJobService_DetectsDivergedAvailable(t *testing.T) {
	repo := repository.NewParkingRepository(rtdb.NewMemStore())
	ctx := context.Background()
	// Counters internally consistent, but a booked slot is invisible to
	// the backend counter.
	require.NoError(t, repo.SetStats(ctx, &db.ParkingStats{TotalSlots: 6, AvailableSlots: 6, FullSlots: 0, Status: db.StatusAvailable}))
	slots := DefaultSlots()
	s := slots["A-102"]
	s.Booked = true
	slots["A-102"] = s
	require.NoError(t, repo.SetSlots(ctx, slots))
	svc := NewJobService(repo, nil)

	report, err := svc.CheckCounterDrift(ctx)

	require.NoError(t, err)
	assert.False(t, report.CounterMismatch)
	assert.True(t, report.AvailableDiverged)
	assert.Equal(t, 5, report.DerivedAvailable)
}
