package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medhold-data/internal/domain"
)

// MemoryStore keeps all collections in process memory behind a single lock.
// It backs local development when DB_ENABLED=false and every unit test.
// One mutex over the whole arena makes each reconciler command atomic, which
// is exactly the contract ReconcileRepository demands.
type MemoryStore struct {
	mu sync.RWMutex

	personnel        []domain.Personnel
	movements        []domain.Movement
	medicalVisits    []domain.MedicalVisit
	leaves           []domain.Leave
	hospitalizations []domain.Hospitalization
	problems         []domain.Problem

	// Per-collection id counters. Monotonic for the lifetime of the store:
	// a personnel id stays reserved while the row lives in the leave or
	// hospitalization collection, so max(existing)+1 over the active rows
	// alone could hand out a duplicate.
	nextPersonnelID int
	nextMovementID  int
	nextVisitID     int
	nextLeaveID     int
	nextHospID      int
	nextProblemID   int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextPersonnelID: 1,
		nextMovementID:  1,
		nextVisitID:     1,
		nextLeaveID:     1,
		nextHospID:      1,
		nextProblemID:   1,
	}
}

var _ Store = (*MemoryStore)(nil)

// ---------- PersonnelRepository ----------

func (s *MemoryStore) ListPersonnel(_ context.Context, filters PersonnelFilters) ([]domain.Personnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Personnel, 0, len(s.personnel))
	search := strings.ToLower(filters.Search)
	for _, p := range s.personnel {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FullName), search) &&
			!strings.Contains(strings.ToLower(p.PersonalNumber), search) &&
			!strings.Contains(strings.ToLower(p.Unit), search) {
			continue
		}
		if filters.Unit != "" && p.Unit != filters.Unit {
			continue
		}
		if filters.Status != "" && p.CurrentStatus != filters.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) DistinctUnits(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, p := range s.personnel {
		if p.Unit != "" {
			seen[p.Unit] = struct{}{}
		}
	}
	units := make([]string, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	sort.Strings(units)
	return units, nil
}

func (s *MemoryStore) GetPersonnel(_ context.Context, id int) (*domain.Personnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findPersonnel(id)
}

func (s *MemoryStore) GetPersonnelByNumber(_ context.Context, personalNumber string) (*domain.Personnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.personnel {
		if s.personnel[i].PersonalNumber == personalNumber {
			p := s.personnel[i]
			return &p, nil
		}
	}
	return nil, domain.NewNotFoundError("personnel", 0)
}

func (s *MemoryStore) CreatePersonnel(_ context.Context, p *domain.Personnel) (*domain.Personnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numberTaken(p.PersonalNumber, 0) {
		return nil, domain.NewConflictError("personal_number", p.PersonalNumber)
	}

	now := time.Now()
	created := *p
	created.ID = s.nextPersonnelID
	s.nextPersonnelID++
	created.CreatedAt = now
	created.UpdatedAt = now
	s.personnel = append(s.personnel, created)
	return &created, nil
}

func (s *MemoryStore) UpdatePersonnel(_ context.Context, id int, p *domain.Personnel) (*domain.Personnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.personnel {
		if s.personnel[i].ID != id {
			continue
		}
		updated := *p
		updated.ID = id
		updated.PersonalNumber = s.personnel[i].PersonalNumber
		updated.CreatedAt = s.personnel[i].CreatedAt
		updated.UpdatedAt = time.Now()
		s.personnel[i] = updated
		return &updated, nil
	}
	return nil, domain.NewNotFoundError("personnel", id)
}

func (s *MemoryStore) DeletePersonnel(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.personnel {
		if s.personnel[i].ID == id {
			s.personnel = append(s.personnel[:i], s.personnel[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("personnel", id)
}

// ---------- Movement / visit logs ----------

func (s *MemoryStore) ListMovements(_ context.Context, personnelID int) ([]domain.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Movement
	for _, m := range s.movements {
		if m.PersonnelID == personnelID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListMedicalVisits(_ context.Context, personnelID int) ([]domain.MedicalVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MedicalVisit
	for _, v := range s.medicalVisits {
		if v.PersonnelID == personnelID {
			out = append(out, v)
		}
	}
	return out, nil
}

// ---------- Leaves / hospitalizations ----------

func (s *MemoryStore) ListLeaves(_ context.Context) ([]domain.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Leave(nil), s.leaves...), nil
}

func (s *MemoryStore) GetLeave(_ context.Context, id int) (*domain.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.leaves {
		if s.leaves[i].ID == id {
			l := s.leaves[i]
			return &l, nil
		}
	}
	return nil, domain.NewNotFoundError("leave", id)
}

func (s *MemoryStore) ListHospitalizations(_ context.Context) ([]domain.Hospitalization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Hospitalization(nil), s.hospitalizations...), nil
}

func (s *MemoryStore) GetHospitalization(_ context.Context, id int) (*domain.Hospitalization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.hospitalizations {
		if s.hospitalizations[i].ID == id {
			h := s.hospitalizations[i]
			return &h, nil
		}
	}
	return nil, domain.NewNotFoundError("hospitalization", id)
}

// ---------- Problems ----------

func (s *MemoryStore) ListProblems(_ context.Context, includeResolved bool) ([]domain.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Problem
	for _, p := range s.problems {
		if !includeResolved && p.Resolved {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) CreateProblem(_ context.Context, p *domain.Problem) (*domain.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *p
	created.ID = s.nextProblemID
	s.nextProblemID++
	created.CreatedAt = time.Now()
	s.problems = append(s.problems, created)
	return &created, nil
}

func (s *MemoryStore) HasOpenProblem(_ context.Context, personnelID int, issueType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.problems {
		if p.PersonnelID == personnelID && p.IssueType == issueType && !p.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ResolveProblem(_ context.Context, id int) (*domain.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.problems {
		if s.problems[i].ID == id {
			s.problems[i].Resolved = true
			p := s.problems[i]
			return &p, nil
		}
	}
	return nil, domain.NewNotFoundError("problem", id)
}

// ---------- ReconcileRepository ----------

func (s *MemoryStore) AddMovement(_ context.Context, mv *domain.Movement, abs *domain.AbsenceSpec) (*domain.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.personnel {
		if s.personnel[i].ID == mv.PersonnelID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.NewNotFoundError("personnel", mv.PersonnelID)
	}
	p := s.personnel[idx]

	now := time.Now()
	created := *mv
	created.ID = s.nextMovementID
	s.nextMovementID++
	created.CreatedAt = now

	// Everything below mutates only after the existence check passed, so a
	// failed command leaves the collections untouched.
	s.movements = append(s.movements, created)

	switch mv.MovementType {
	case domain.MovementLeave:
		leave := domain.Leave{
			ID:              s.nextLeaveID,
			PersonnelID:     p.ID,
			FullName:        p.FullName,
			Unit:            p.Unit,
			Rank:            p.Rank,
			PersonalNumber:  p.PersonalNumber,
			LeaveType:       abs.LeaveType,
			DurationDays:    abs.DurationDays,
			StartDate:       mv.StartDate,
			EndDate:         domain.LeaveEnd(mv.StartDate, abs.DurationDays),
			Comment:         abs.Comment,
			ProblemResolved: false,
			CreatedAt:       now,
		}
		s.nextLeaveID++
		s.leaves = append(s.leaves, leave)
		s.personnel = append(s.personnel[:idx], s.personnel[idx+1:]...)

	case domain.MovementHospitalized:
		hosp := domain.Hospitalization{
			ID:              s.nextHospID,
			PersonnelID:     p.ID,
			FullName:        p.FullName,
			Unit:            p.Unit,
			Rank:            p.Rank,
			PersonalNumber:  p.PersonalNumber,
			MedicalFacility: abs.Facility,
			AdmissionDate:   mv.StartDate,
			Comment:         abs.Comment,
			ProblemResolved: false,
			CreatedAt:       now,
		}
		s.nextHospID++
		s.hospitalizations = append(s.hospitalizations, hosp)
		s.personnel = append(s.personnel[:idx], s.personnel[idx+1:]...)

	case domain.MovementDeparted:
		s.personnel[idx].CurrentStatus = domain.StatusDeparted
		s.personnel[idx].UpdatedAt = now
	}

	return &created, nil
}

func (s *MemoryStore) AddMedicalVisit(_ context.Context, v *domain.MedicalVisit) (*domain.MedicalVisit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.personnel {
		if s.personnel[i].ID == v.PersonnelID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.NewNotFoundError("personnel", v.PersonnelID)
	}

	now := time.Now()
	created := *v
	created.ID = s.nextVisitID
	s.nextVisitID++
	created.CreatedAt = now
	s.medicalVisits = append(s.medicalVisits, created)

	if v.FitnessCategory != "" {
		visitDate := v.VisitDate
		s.personnel[idx].FitnessCategory = v.FitnessCategory
		s.personnel[idx].FitnessCategoryDate = &visitDate
		s.personnel[idx].UpdatedAt = now
	}

	return &created, nil
}

func (s *MemoryStore) ReturnFromLeave(_ context.Context, leaveID int, ret domain.ReturnSpec) (*domain.Personnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leaves {
		if s.leaves[i].ID != leaveID {
			continue
		}
		l := s.leaves[i]
		s.leaves = append(s.leaves[:i], s.leaves[i+1:]...)
		p := s.reinsertPersonnel(l.PersonnelID, l.FullName, l.Unit, l.Rank, l.PersonalNumber, ret)
		return p, nil
	}
	return nil, domain.NewNotFoundError("leave", leaveID)
}

func (s *MemoryStore) ReturnFromHospital(_ context.Context, hospID int, ret domain.ReturnSpec) (*domain.Personnel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.hospitalizations {
		if s.hospitalizations[i].ID != hospID {
			continue
		}
		h := s.hospitalizations[i]
		s.hospitalizations = append(s.hospitalizations[:i], s.hospitalizations[i+1:]...)
		p := s.reinsertPersonnel(h.PersonnelID, h.FullName, h.Unit, h.Rank, h.PersonalNumber, ret)
		return p, nil
	}
	return nil, domain.NewNotFoundError("hospitalization", hospID)
}

// reinsertPersonnel rebuilds the active row after an absence is resolved.
// Identity fields come from the absence snapshot; counters start over from
// ret.Date. Caller holds the write lock.
func (s *MemoryStore) reinsertPersonnel(id int, fullName, unit, rank, personalNumber string, ret domain.ReturnSpec) *domain.Personnel {
	now := time.Now()
	p := domain.Personnel{
		ID:                  id,
		PersonalNumber:      personalNumber,
		FullName:            fullName,
		Rank:                rank,
		Unit:                unit,
		CurrentStatus:       domain.StatusFitForDuty,
		ArrivalDate:         ret.Date,
		EstimatedReturnDate: domain.EstimatedReturn(ret.Date),
		Diagnosis:           ret.Diagnosis,
		ProblemResolved:     true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.personnel = append(s.personnel, p)
	return &p
}

// ---------- helpers ----------

func (s *MemoryStore) findPersonnel(id int) (*domain.Personnel, error) {
	for i := range s.personnel {
		if s.personnel[i].ID == id {
			p := s.personnel[i]
			return &p, nil
		}
	}
	return nil, domain.NewNotFoundError("personnel", id)
}

// numberTaken checks the personal number across all three collections: a
// person on leave or in hospital still owns their number.
func (s *MemoryStore) numberTaken(personalNumber string, excludeID int) bool {
	for _, p := range s.personnel {
		if p.PersonalNumber == personalNumber && p.ID != excludeID {
			return true
		}
	}
	for _, l := range s.leaves {
		if l.PersonalNumber == personalNumber && l.PersonnelID != excludeID {
			return true
		}
	}
	for _, h := range s.hospitalizations {
		if h.PersonalNumber == personalNumber && h.PersonnelID != excludeID {
			return true
		}
	}
	return false
}
