package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

// dateLayout is the transport date format (storage and JSON bodies).
const dateLayout = "2006-01-02"

// CreatePersonnelRequest carries a validated-at-the-edge create command.
// Dates travel as ISO YYYY-MM-DD strings.
type CreatePersonnelRequest struct {
	PersonalNumber  string `json:"personal_number"`
	FullName        string `json:"full_name"`
	Rank            string `json:"rank"`
	Unit            string `json:"unit"`
	Phone           string `json:"phone"`
	CurrentStatus   string `json:"current_status"`
	FitnessCategory string `json:"fitness_category"`
	ArrivalDate     string `json:"arrival_date"`
	Diagnosis       string `json:"diagnosis"`
	Notes           string `json:"notes"`
}

// UpdatePersonnelRequest mirrors CreatePersonnelRequest minus the immutable
// identity key.
type UpdatePersonnelRequest struct {
	FullName        string `json:"full_name"`
	Rank            string `json:"rank"`
	Unit            string `json:"unit"`
	Phone           string `json:"phone"`
	CurrentStatus   string `json:"current_status"`
	FitnessCategory string `json:"fitness_category"`
	Diagnosis       string `json:"diagnosis"`
	Notes           string `json:"notes"`
}

// AddMovementRequest records a movement event. LeaveType/DurationDays apply to
// отпуск, Destination doubles as the medical facility for госпитализация.
type AddMovementRequest struct {
	PersonnelID  int    `json:"personnel_id"`
	MovementType string `json:"movement_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Destination  string `json:"destination"`
	Notes        string `json:"notes"`
	LeaveType    string `json:"leave_type"`
	DurationDays int    `json:"duration_days"`
}

// AddMedicalVisitRequest records a visit; a non-empty FitnessCategory also
// updates the personnel fitness fields.
type AddMedicalVisitRequest struct {
	PersonnelID     int    `json:"personnel_id"`
	VisitDate       string `json:"visit_date"`
	DoctorSpecialty string `json:"doctor_specialty"`
	Diagnosis       string `json:"diagnosis"`
	Recommendations string `json:"recommendations"`
	FitnessCategory string `json:"fitness_category"`
}

// ListPersonnelResponse is the filtered page plus the distinct units of the
// unfiltered population (for the filter dropdown).
type ListPersonnelResponse struct {
	Personnel []domain.PersonnelView `json:"personnel"`
	Units     []string               `json:"units"`
}

// PersonnelDetailResponse joins the personnel row with its full history.
type PersonnelDetailResponse struct {
	Personnel     domain.PersonnelView  `json:"personnel"`
	Movements     []domain.Movement     `json:"movements"`
	MedicalVisits []domain.MedicalVisit `json:"medical_visits"`
}

// RegistryService is the status reconciler plus the query façade: it owns the
// rules that keep current_status, the derived counters and the cross-collection
// side effects consistent as movements and visits are recorded.
type RegistryService interface {
	ListPersonnel(ctx context.Context, search, unit, status string) (*ListPersonnelResponse, error)
	GetPersonnelDetail(ctx context.Context, id int) (*PersonnelDetailResponse, error)
	CreatePersonnel(ctx context.Context, req CreatePersonnelRequest) (*domain.PersonnelView, error)
	UpdatePersonnel(ctx context.Context, id int, req UpdatePersonnelRequest) (*domain.PersonnelView, error)
	DeletePersonnel(ctx context.Context, id int) error

	AddMovement(ctx context.Context, req AddMovementRequest) (*domain.Movement, error)
	AddMedicalVisit(ctx context.Context, req AddMedicalVisitRequest) (*domain.MedicalVisit, error)

	ListLeaves(ctx context.Context) ([]domain.LeaveView, error)
	ResolveLeave(ctx context.Context, id int) (*domain.PersonnelView, error)
	ListHospitalizations(ctx context.Context) ([]domain.HospitalizationView, error)
	ResolveHospitalization(ctx context.Context, id int) (*domain.PersonnelView, error)

	ListProblems(ctx context.Context) ([]domain.Problem, error)
	ResolveProblem(ctx context.Context, id int) (*domain.Problem, error)
}

type registryService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistryService creates a RegistryService over the given store.
func NewRegistryService(store repository.Store, logger *zap.Logger) RegistryService {
	return &registryService{store: store, logger: logger, now: time.Now}
}

func (s *registryService) ListPersonnel(ctx context.Context, search, unit, status string) (*ListPersonnelResponse, error) {
	list, err := s.store.ListPersonnel(ctx, repository.PersonnelFilters{
		Search: search, Unit: unit, Status: status,
	})
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	units, err := s.store.DistinctUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct units: %w", err)
	}

	now := s.now()
	views := make([]domain.PersonnelView, 0, len(list))
	for _, p := range list {
		views = append(views, p.ViewAt(now))
	}
	return &ListPersonnelResponse{Personnel: views, Units: units}, nil
}

func (s *registryService) GetPersonnelDetail(ctx context.Context, id int) (*PersonnelDetailResponse, error) {
	p, err := s.store.GetPersonnel(ctx, id)
	if err != nil {
		return nil, err
	}
	movements, err := s.store.ListMovements(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	visits, err := s.store.ListMedicalVisits(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list medical visits: %w", err)
	}
	return &PersonnelDetailResponse{
		Personnel:     p.ViewAt(s.now()),
		Movements:     movements,
		MedicalVisits: visits,
	}, nil
}

func (s *registryService) CreatePersonnel(ctx context.Context, req CreatePersonnelRequest) (*domain.PersonnelView, error) {
	if req.PersonalNumber == "" {
		return nil, domain.NewValidationError("personal_number", "required")
	}
	if req.FullName == "" {
		return nil, domain.NewValidationError("full_name", "required")
	}
	status := req.CurrentStatus
	if status == "" {
		status = domain.StatusInHolding
	}
	if !domain.ValidStatus(status) {
		return nil, domain.NewValidationError("current_status", "unknown status "+status)
	}
	if req.FitnessCategory != "" && !domain.ValidFitnessCategory(req.FitnessCategory) {
		return nil, domain.NewValidationError("fitness_category", "unknown category "+req.FitnessCategory)
	}

	arrival := s.now().Truncate(24 * time.Hour)
	if req.ArrivalDate != "" {
		var err error
		arrival, err = parseDate(req.ArrivalDate, "arrival_date")
		if err != nil {
			return nil, err
		}
	}

	p := &domain.Personnel{
		PersonalNumber:      req.PersonalNumber,
		FullName:            req.FullName,
		Rank:                req.Rank,
		Unit:                req.Unit,
		Phone:               req.Phone,
		CurrentStatus:       status,
		FitnessCategory:     req.FitnessCategory,
		ArrivalDate:         arrival,
		EstimatedReturnDate: domain.EstimatedReturn(arrival),
		Diagnosis:           req.Diagnosis,
		Notes:               req.Notes,
	}
	created, err := s.store.CreatePersonnel(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("personnel created",
		zap.Int("id", created.ID),
		zap.String("personal_number", created.PersonalNumber),
		zap.String("status", created.CurrentStatus))

	v := created.ViewAt(s.now())
	return &v, nil
}

func (s *registryService) UpdatePersonnel(ctx context.Context, id int, req UpdatePersonnelRequest) (*domain.PersonnelView, error) {
	if req.FullName == "" {
		return nil, domain.NewValidationError("full_name", "required")
	}
	if req.CurrentStatus != "" && !domain.ValidStatus(req.CurrentStatus) {
		return nil, domain.NewValidationError("current_status", "unknown status "+req.CurrentStatus)
	}
	if req.FitnessCategory != "" && !domain.ValidFitnessCategory(req.FitnessCategory) {
		return nil, domain.NewValidationError("fitness_category", "unknown category "+req.FitnessCategory)
	}

	existing, err := s.store.GetPersonnel(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.FullName = req.FullName
	updated.Rank = req.Rank
	updated.Unit = req.Unit
	updated.Phone = req.Phone
	if req.CurrentStatus != "" {
		updated.CurrentStatus = req.CurrentStatus
	}
	updated.FitnessCategory = req.FitnessCategory
	updated.Diagnosis = req.Diagnosis
	updated.Notes = req.Notes

	saved, err := s.store.UpdatePersonnel(ctx, id, &updated)
	if err != nil {
		return nil, err
	}
	v := saved.ViewAt(s.now())
	return &v, nil
}

func (s *registryService) DeletePersonnel(ctx context.Context, id int) error {
	return s.store.DeletePersonnel(ctx, id)
}

func (s *registryService) AddMovement(ctx context.Context, req AddMovementRequest) (*domain.Movement, error) {
	if req.PersonnelID <= 0 {
		return nil, domain.NewValidationError("personnel_id", "required")
	}
	if !domain.ValidMovementType(req.MovementType) {
		return nil, domain.NewValidationError("movement_type", "unknown type "+req.MovementType)
	}
	if req.StartDate == "" {
		return nil, domain.NewValidationError("start_date", "required")
	}
	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}

	mv := &domain.Movement{
		PersonnelID:  req.PersonnelID,
		MovementType: req.MovementType,
		StartDate:    start,
		Destination:  req.Destination,
		Notes:        req.Notes,
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		mv.EndDate = &end
	}

	abs := &domain.AbsenceSpec{Comment: req.Notes}
	switch req.MovementType {
	case domain.MovementLeave:
		if req.DurationDays < 1 {
			return nil, domain.NewValidationError("duration_days", "must be at least 1")
		}
		abs.DurationDays = req.DurationDays
		abs.LeaveType = req.LeaveType
		if abs.LeaveType == "" {
			abs.LeaveType = "основной"
		}
	case domain.MovementHospitalized:
		abs.Facility = req.Destination
	}

	created, err := s.store.AddMovement(ctx, mv, abs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("movement recorded",
		zap.Int("personnel_id", req.PersonnelID),
		zap.String("movement_type", req.MovementType))
	return created, nil
}

func (s *registryService) AddMedicalVisit(ctx context.Context, req AddMedicalVisitRequest) (*domain.MedicalVisit, error) {
	if req.PersonnelID <= 0 {
		return nil, domain.NewValidationError("personnel_id", "required")
	}
	if req.DoctorSpecialty == "" {
		return nil, domain.NewValidationError("doctor_specialty", "required")
	}
	if req.VisitDate == "" {
		return nil, domain.NewValidationError("visit_date", "required")
	}
	if req.FitnessCategory != "" && !domain.ValidFitnessCategory(req.FitnessCategory) {
		return nil, domain.NewValidationError("fitness_category", "unknown category "+req.FitnessCategory)
	}
	visitDate, err := parseDate(req.VisitDate, "visit_date")
	if err != nil {
		return nil, err
	}

	v := &domain.MedicalVisit{
		PersonnelID:     req.PersonnelID,
		VisitDate:       visitDate,
		DoctorSpecialty: req.DoctorSpecialty,
		Diagnosis:       req.Diagnosis,
		Recommendations: req.Recommendations,
		FitnessCategory: req.FitnessCategory,
	}
	return s.store.AddMedicalVisit(ctx, v)
}

func (s *registryService) ListLeaves(ctx context.Context) ([]domain.LeaveView, error) {
	leaves, err := s.store.ListLeaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	now := s.now()
	views := make([]domain.LeaveView, 0, len(leaves))
	for _, l := range leaves {
		views = append(views, l.ViewAt(now))
	}
	return views, nil
}

func (s *registryService) ResolveLeave(ctx context.Context, id int) (*domain.PersonnelView, error) {
	p, err := s.store.ReturnFromLeave(ctx, id, domain.ReturnSpec{
		Date:      s.now().Truncate(24 * time.Hour),
		Diagnosis: domain.ReturnNoteFromLeave,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("leave resolved", zap.Int("leave_id", id), zap.Int("personnel_id", p.ID))
	v := p.ViewAt(s.now())
	return &v, nil
}

func (s *registryService) ListHospitalizations(ctx context.Context) ([]domain.HospitalizationView, error) {
	hosps, err := s.store.ListHospitalizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hospitalizations: %w", err)
	}
	now := s.now()
	views := make([]domain.HospitalizationView, 0, len(hosps))
	for _, h := range hosps {
		views = append(views, h.ViewAt(now))
	}
	return views, nil
}

func (s *registryService) ResolveHospitalization(ctx context.Context, id int) (*domain.PersonnelView, error) {
	p, err := s.store.ReturnFromHospital(ctx, id, domain.ReturnSpec{
		Date:      s.now().Truncate(24 * time.Hour),
		Diagnosis: domain.ReturnNoteFromHospital,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("hospitalization resolved", zap.Int("hospitalization_id", id), zap.Int("personnel_id", p.ID))
	v := p.ViewAt(s.now())
	return &v, nil
}

func (s *registryService) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	return s.store.ListProblems(ctx, false)
}

func (s *registryService) ResolveProblem(ctx context.Context, id int) (*domain.Problem, error) {
	return s.store.ResolveProblem(ctx, id)
}

// parseDate parses an ISO transport date, converting failures into the
// ValidationError taxonomy.
func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "expected date in YYYY-MM-DD format")
	}
	return t, nil
}
