package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
	"medhold-data/internal/store"
)

// statsCacheKey versions the cached payload shape.
const statsCacheKey = "stats:v1"

// Stats is the dashboard aggregate. Counts for absent people come from their
// collections, so total = active + leaves + hospitalizations.
type Stats struct {
	Total         int `json:"total"`
	InHolding     int `json:"v_pvd"`
	FitForDuty    int `json:"v_stroyu"`
	Hospitalized  int `json:"gospitalizaciya"`
	OnLeave       int `json:"otpusk"`
	Departed      int `json:"ubyl"`
	OpenProblems  int `json:"problems"`
	LongHolding   int `json:"long_holding"`
	LongHospital  int `json:"long_hospital"`
	OverdueLeaves int `json:"overdue_leaves"`
}

// NameValue is a single labeled counter in a report breakdown.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Reports is the grouped view for the reports page.
type Reports struct {
	ByStatus []NameValue `json:"by_status"`
	ByUnit   []NameValue `json:"by_unit"`
}

// StatsService aggregates the collections into dashboard counters. Reads go
// through a short-TTL cache sized to the dashboard poll interval.
type StatsService interface {
	GetStats(ctx context.Context) (*Stats, error)
	GetReports(ctx context.Context) (*Reports, error)
}

type statsService struct {
	store  repository.Store
	cache  store.KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService creates a StatsService caching into kv with the given TTL.
func NewStatsService(st repository.Store, kv store.KV, ttl time.Duration, logger *zap.Logger) StatsService {
	return &statsService{store: st, cache: kv, ttl: ttl, logger: logger, now: time.Now}
}

func (s *statsService) GetStats(ctx context.Context) (*Stats, error) {
	if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil {
		var st Stats
		if err := json.Unmarshal([]byte(cached), &st); err == nil {
			return &st, nil
		}
		// A corrupt payload is dropped and recomputed.
		_ = s.cache.Delete(ctx, statsCacheKey)
	} else if err != store.ErrMiss {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	}

	st, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(st); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, string(payload), s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return st, nil
}

func (s *statsService) compute(ctx context.Context) (*Stats, error) {
	personnel, err := s.store.ListPersonnel(ctx, repository.PersonnelFilters{})
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	leaves, err := s.store.ListLeaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	hosps, err := s.store.ListHospitalizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hospitalizations: %w", err)
	}
	problems, err := s.store.ListProblems(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	now := s.now()
	st := &Stats{
		Total:        len(personnel) + len(leaves) + len(hosps),
		OnLeave:      len(leaves),
		Hospitalized: len(hosps),
		OpenProblems: len(problems),
	}
	for _, p := range personnel {
		switch p.CurrentStatus {
		case domain.StatusInHolding:
			st.InHolding++
			if domain.DaysSince(p.ArrivalDate, now) > domain.AlertThresholdDays {
				st.LongHolding++
			}
		case domain.StatusFitForDuty:
			st.FitForDuty++
		case domain.StatusDeparted:
			st.Departed++
		}
	}
	for _, h := range hosps {
		if domain.DaysSince(h.AdmissionDate, now) > domain.AlertThresholdDays {
			st.LongHospital++
		}
	}
	for _, l := range leaves {
		if domain.Overdue(l.EndDate, now) {
			st.OverdueLeaves++
		}
	}
	return st, nil
}

func (s *statsService) GetReports(ctx context.Context) (*Reports, error) {
	personnel, err := s.store.ListPersonnel(ctx, repository.PersonnelFilters{})
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	leaves, err := s.store.ListLeaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	hosps, err := s.store.ListHospitalizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hospitalizations: %w", err)
	}

	byStatus := map[string]int{}
	byUnit := map[string]int{}
	for _, p := range personnel {
		byStatus[p.CurrentStatus]++
		byUnit[unitOrUnknown(p.Unit)]++
	}
	for _, l := range leaves {
		byStatus[domain.StatusOnLeave]++
		byUnit[unitOrUnknown(l.Unit)]++
	}
	for _, h := range hosps {
		byStatus[domain.StatusHospitalized]++
		byUnit[unitOrUnknown(h.Unit)]++
	}

	r := &Reports{}
	// Statuses in their canonical order, skipping empty buckets.
	for _, code := range []string{
		domain.StatusInHolding, domain.StatusFitForDuty,
		domain.StatusHospitalized, domain.StatusOnLeave, domain.StatusDeparted,
	} {
		if n := byStatus[code]; n > 0 {
			r.ByStatus = append(r.ByStatus, NameValue{Name: domain.StatusLabels[code], Value: n})
		}
	}
	units := make([]string, 0, len(byUnit))
	for u := range byUnit {
		units = append(units, u)
	}
	sort.Strings(units)
	for _, u := range units {
		r.ByUnit = append(r.ByUnit, NameValue{Name: u, Value: byUnit[u]})
	}
	return r, nil
}

func unitOrUnknown(u string) string {
	if u == "" {
		return "Не указано"
	}
	return u
}
