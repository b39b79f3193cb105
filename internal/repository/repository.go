package repository

import (
	"context"

	"medhold-data/internal/domain"
)

// PersonnelFilters narrows ListPersonnel. Search is a case-insensitive
// substring match over full_name, personal_number and unit; Unit and Status
// are exact matches. Filters compose with AND.
type PersonnelFilters struct {
	Search string
	Unit   string
	Status string
}

// PersonnelRepository covers the active personnel collection.
type PersonnelRepository interface {
	ListPersonnel(ctx context.Context, filters PersonnelFilters) ([]domain.Personnel, error)
	// DistinctUnits returns the unit values of the unfiltered population,
	// sorted, for populating filter dropdowns.
	DistinctUnits(ctx context.Context) ([]string, error)
	GetPersonnel(ctx context.Context, id int) (*domain.Personnel, error)
	GetPersonnelByNumber(ctx context.Context, personalNumber string) (*domain.Personnel, error)
	CreatePersonnel(ctx context.Context, p *domain.Personnel) (*domain.Personnel, error)
	UpdatePersonnel(ctx context.Context, id int, p *domain.Personnel) (*domain.Personnel, error)
	DeletePersonnel(ctx context.Context, id int) error
}

// MovementsRepository reads the append-only movement log.
type MovementsRepository interface {
	ListMovements(ctx context.Context, personnelID int) ([]domain.Movement, error)
}

// MedicalVisitsRepository reads the append-only visit log.
type MedicalVisitsRepository interface {
	ListMedicalVisits(ctx context.Context, personnelID int) ([]domain.MedicalVisit, error)
}

// LeavesRepository covers the denormalized leave collection.
type LeavesRepository interface {
	ListLeaves(ctx context.Context) ([]domain.Leave, error)
	GetLeave(ctx context.Context, id int) (*domain.Leave, error)
}

// HospitalizationsRepository covers the denormalized hospitalization collection.
type HospitalizationsRepository interface {
	ListHospitalizations(ctx context.Context) ([]domain.Hospitalization, error)
	GetHospitalization(ctx context.Context, id int) (*domain.Hospitalization, error)
}

// ProblemsRepository covers the flagged-anomaly collection.
type ProblemsRepository interface {
	ListProblems(ctx context.Context, includeResolved bool) ([]domain.Problem, error)
	CreateProblem(ctx context.Context, p *domain.Problem) (*domain.Problem, error)
	// HasOpenProblem reports whether an unresolved problem of the given issue
	// type already exists for the person (the evaluator must not duplicate).
	HasOpenProblem(ctx context.Context, personnelID int, issueType string) (bool, error)
	ResolveProblem(ctx context.Context, id int) (*domain.Problem, error)
}

// ReconcileRepository applies the cross-collection commands. Each method is
// atomic: either every touched collection changes or none does. The in-memory
// implementation serializes commands behind one lock, the Postgres one wraps
// the statements in a transaction.
type ReconcileRepository interface {
	// AddMovement appends the movement. Relocating types additionally mutate
	// the personnel collection in the same command: отпуск and госпитализация
	// move the row into the corresponding collection (abs carries the
	// type-specific fields), убыл overwrites current_status in place.
	AddMovement(ctx context.Context, mv *domain.Movement, abs *domain.AbsenceSpec) (*domain.Movement, error)
	// AddMedicalVisit appends the visit; a visit carrying a fitness category
	// also updates the personnel fitness fields.
	AddMedicalVisit(ctx context.Context, v *domain.MedicalVisit) (*domain.MedicalVisit, error)
	// ReturnFromLeave deletes the leave row and re-inserts an active personnel
	// row with the snapshotted identity fields, status в_строю and the counters
	// reset per ret.
	ReturnFromLeave(ctx context.Context, leaveID int, ret domain.ReturnSpec) (*domain.Personnel, error)
	// ReturnFromHospital is the hospital-side counterpart of ReturnFromLeave.
	ReturnFromHospital(ctx context.Context, hospID int, ret domain.ReturnSpec) (*domain.Personnel, error)
}

// Store is the full record store the services run against. Both the in-memory
// arena and the Postgres implementation satisfy it.
type Store interface {
	PersonnelRepository
	MovementsRepository
	MedicalVisitsRepository
	LeavesRepository
	HospitalizationsRepository
	ProblemsRepository
	ReconcileRepository
}
