package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
	"medhold-data/internal/store"
)

// seedStats populates: two in holding (one 31 days in), one fit for duty, one
// departed, one on overdue leave, one hospitalized for 40 days.
func seedStats(t *testing.T, st *repository.MemoryStore, now time.Time) {
	t.Helper()
	ctx := context.Background()
	day := 24 * time.Hour

	mustCreate := func(p *domain.Personnel) *domain.Personnel {
		created, err := st.CreatePersonnel(ctx, p)
		require.NoError(t, err)
		return created
	}

	mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0001", FullName: "Иванов", Unit: "1 рота",
		CurrentStatus: domain.StatusInHolding, ArrivalDate: now.Add(-31 * day),
	})
	mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0002", FullName: "Петров", Unit: "1 рота",
		CurrentStatus: domain.StatusInHolding, ArrivalDate: now.Add(-5 * day),
	})
	mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0003", FullName: "Сидоров", Unit: "2 рота",
		CurrentStatus: domain.StatusFitForDuty, ArrivalDate: now.Add(-3 * day),
	})
	mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0004", FullName: "Кузнецов",
		CurrentStatus: domain.StatusDeparted, ArrivalDate: now.Add(-60 * day),
	})

	onLeave := mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0005", FullName: "Смирнов", Unit: "2 рота",
		CurrentStatus: domain.StatusInHolding, ArrivalDate: now.Add(-20 * day),
	})
	_, err := st.AddMovement(ctx, &domain.Movement{
		PersonnelID: onLeave.ID, MovementType: domain.MovementLeave,
		StartDate: now.Add(-15 * day),
	}, &domain.AbsenceSpec{LeaveType: "основной", DurationDays: 10})
	require.NoError(t, err)

	inHospital := mustCreate(&domain.Personnel{
		PersonalNumber: "ВС-0006", FullName: "Волков", Unit: "1 рота",
		CurrentStatus: domain.StatusInHolding, ArrivalDate: now.Add(-45 * day),
	})
	_, err = st.AddMovement(ctx, &domain.Movement{
		PersonnelID: inHospital.ID, MovementType: domain.MovementHospitalized,
		StartDate: now.Add(-40 * day),
	}, &domain.AbsenceSpec{Facility: "ВМО №1"})
	require.NoError(t, err)
}

func TestGetStats(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	st := repository.NewMemoryStore()
	seedStats(t, st, now)

	svc := NewStatsService(st, store.NewMemoryKV(), 30*time.Second, zap.NewNop()).(*statsService)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.InHolding)
	assert.Equal(t, 1, stats.FitForDuty)
	assert.Equal(t, 1, stats.Departed)
	assert.Equal(t, 1, stats.OnLeave)
	assert.Equal(t, 1, stats.Hospitalized)
	assert.Equal(t, 1, stats.LongHolding)
	assert.Equal(t, 1, stats.LongHospital)
	assert.Equal(t, 1, stats.OverdueLeaves)
}

func TestGetStats_CacheHit(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	st := repository.NewMemoryStore()
	seedStats(t, st, now)

	kv := store.NewMemoryKV()
	svc := NewStatsService(st, kv, time.Minute, zap.NewNop()).(*statsService)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := svc.GetStats(ctx)
	require.NoError(t, err)

	// A write after the first read is invisible until the TTL lapses.
	_, err = st.CreatePersonnel(ctx, &domain.Personnel{
		PersonalNumber: "ВС-0099", FullName: "Новиков",
		CurrentStatus: domain.StatusInHolding, ArrivalDate: now,
	})
	require.NoError(t, err)

	second, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, kv.Delete(ctx, statsCacheKey))
	third, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Total+1, third.Total)
}

func TestGetReports(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	st := repository.NewMemoryStore()
	seedStats(t, st, now)

	svc := NewStatsService(st, store.NewMemoryKV(), 30*time.Second, zap.NewNop()).(*statsService)
	svc.now = func() time.Time { return now }

	reports, err := svc.GetReports(context.Background())
	require.NoError(t, err)

	byStatus := map[string]int{}
	for _, nv := range reports.ByStatus {
		byStatus[nv.Name] = nv.Value
	}
	assert.Equal(t, 2, byStatus["В ПВД"])
	assert.Equal(t, 1, byStatus["В строю"])
	assert.Equal(t, 1, byStatus["Госпитализация"])
	assert.Equal(t, 1, byStatus["Отпуск"])
	assert.Equal(t, 1, byStatus["Убыл"])

	byUnit := map[string]int{}
	for _, nv := range reports.ByUnit {
		byUnit[nv.Name] = nv.Value
	}
	assert.Equal(t, 3, byUnit["1 рота"])
	assert.Equal(t, 2, byUnit["2 рота"])
	assert.Equal(t, 1, byUnit["Не указано"])
}
