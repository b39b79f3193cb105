package domain

import "time"

// Movement types (closed set). Types in the relocating subset change where the
// personnel record lives: отпуск and госпитализация move the row into the
// corresponding collection, убыл overwrites current_status in place.
const (
	MovementArrival      = "прибытие"
	MovementReturn       = "возвращение_в_строй"
	MovementHospitalized = "госпитализация"
	MovementLeave        = "отпуск"
	MovementDeparted     = "убыл"
	MovementMedicalBoard = "ввк"
	MovementOutpatient   = "амбулаторное_лечение"
	MovementDismissal    = "увольнение"
)

var movementTypes = map[string]struct{}{
	MovementArrival:      {},
	MovementReturn:       {},
	MovementHospitalized: {},
	MovementLeave:        {},
	MovementDeparted:     {},
	MovementMedicalBoard: {},
	MovementOutpatient:   {},
	MovementDismissal:    {},
}

// ValidMovementType reports whether t is a member of the closed movement set.
func ValidMovementType(t string) bool {
	_, ok := movementTypes[t]
	return ok
}

// Movement is an append-only event attached to a personnel id. Movements are
// never edited or deleted; the referenced person existed when the movement was
// recorded but may since have moved to the leave/hospitalization collections.
type Movement struct {
	ID           int        `db:"id" json:"id"`
	PersonnelID  int        `db:"personnel_id" json:"personnel_id"`
	MovementType string     `db:"movement_type" json:"movement_type"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	Destination  string     `db:"destination" json:"destination,omitempty"`
	Notes        string     `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// AbsenceSpec carries the type-specific fields of a relocating movement.
type AbsenceSpec struct {
	LeaveType    string // отпуск only (основной, по болезни, ...)
	DurationDays int    // отпуск only, >= 1
	Facility     string // госпитализация only
	Comment      string
}
