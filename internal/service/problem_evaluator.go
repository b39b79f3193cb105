package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

// ProblemEvaluator periodically scans the collections for anomaly conditions
// and opens Problem records. A record already flagged for an issue type is not
// flagged again until the problem is resolved, and a record whose
// problem_resolved flag is set is exempt from re-flagging entirely.
type ProblemEvaluator struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewProblemEvaluator creates an evaluator over the given store.
func NewProblemEvaluator(st repository.Store, logger *zap.Logger) *ProblemEvaluator {
	return &ProblemEvaluator{store: st, logger: logger, now: time.Now}
}

// Run evaluates on the given interval until ctx is canceled.
func (e *ProblemEvaluator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.RunOnce(ctx); err != nil {
				e.logger.Error("problem evaluation failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single evaluation pass and returns the number of problems
// opened.
func (e *ProblemEvaluator) RunOnce(ctx context.Context) (int, error) {
	now := e.now()
	created := 0

	personnel, err := e.store.ListPersonnel(ctx, repository.PersonnelFilters{Status: domain.StatusInHolding})
	if err != nil {
		return created, fmt.Errorf("list personnel: %w", err)
	}
	for _, p := range personnel {
		days := domain.DaysSince(p.ArrivalDate, now)
		if days <= domain.AlertThresholdDays || p.ProblemResolved {
			continue
		}
		ok, err := e.open(ctx, &domain.Problem{
			PersonnelID: p.ID,
			FullName:    p.FullName,
			Unit:        p.Unit,
			Rank:        p.Rank,
			IssueType:   domain.IssueLongHolding,
			Description: fmt.Sprintf("Военнослужащий находится в ПВД %d дней. Требуется разбор ситуации.", days),
			Severity:    domain.SeverityHigh,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	hosps, err := e.store.ListHospitalizations(ctx)
	if err != nil {
		return created, fmt.Errorf("list hospitalizations: %w", err)
	}
	for _, h := range hosps {
		days := domain.DaysSince(h.AdmissionDate, now)
		if days <= domain.AlertThresholdDays || h.ProblemResolved {
			continue
		}
		ok, err := e.open(ctx, &domain.Problem{
			PersonnelID: h.PersonnelID,
			FullName:    h.FullName,
			Unit:        h.Unit,
			Rank:        h.Rank,
			IssueType:   domain.IssueLongHospital,
			Description: fmt.Sprintf("Госпитализация длится %d дней (%s). Требуется уточнение состояния.", days, h.MedicalFacility),
			Severity:    domain.SeverityHigh,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	leaves, err := e.store.ListLeaves(ctx)
	if err != nil {
		return created, fmt.Errorf("list leaves: %w", err)
	}
	for _, l := range leaves {
		if !domain.Overdue(l.EndDate, now) || l.ProblemResolved {
			continue
		}
		ok, err := e.open(ctx, &domain.Problem{
			PersonnelID: l.PersonnelID,
			FullName:    l.FullName,
			Unit:        l.Unit,
			Rank:        l.Rank,
			IssueType:   domain.IssueOverdueLeave,
			Description: fmt.Sprintf("Отпуск закончился %s, военнослужащий не вернулся.", l.EndDate.Format("02.01.2006")),
			Severity:    domain.SeverityMedium,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		e.logger.Info("problems opened", zap.Int("count", created))
	}
	return created, nil
}

// open creates the problem unless an unresolved one of the same type already
// targets the same person. Returns true when a new problem was opened.
func (e *ProblemEvaluator) open(ctx context.Context, p *domain.Problem) (bool, error) {
	exists, err := e.store.HasOpenProblem(ctx, p.PersonnelID, p.IssueType)
	if err != nil {
		return false, fmt.Errorf("check open problem: %w", err)
	}
	if exists {
		return false, nil
	}
	if _, err := e.store.CreateProblem(ctx, p); err != nil {
		return false, fmt.Errorf("create problem: %w", err)
	}
	return true, nil
}
