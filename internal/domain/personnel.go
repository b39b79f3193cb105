package domain

import (
	"time"
)

// Personnel statuses (storage codes, matching the personnel.current_status column).
// The status is the single source of truth for where a record shows up in
// aggregate views.
const (
	StatusInHolding    = "в_пвд"
	StatusFitForDuty   = "в_строю"
	StatusHospitalized = "госпитализация"
	StatusOnLeave      = "отпуск"
	StatusDeparted     = "убыл"
)

// StatusLabels maps storage codes to human-readable labels for exports.
var StatusLabels = map[string]string{
	StatusInHolding:    "В ПВД",
	StatusFitForDuty:   "В строю",
	StatusHospitalized: "Госпитализация",
	StatusOnLeave:      "Отпуск",
	StatusDeparted:     "Убыл",
}

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s string) bool {
	_, ok := StatusLabels[s]
	return ok
}

// Fitness categories, А (fully fit) through Д (unfit).
var FitnessCategories = []string{"А", "Б", "В", "Г", "Д"}

// ValidFitnessCategory reports whether c is one of the five graded categories.
func ValidFitnessCategory(c string) bool {
	for _, v := range FitnessCategories {
		if v == c {
			return true
		}
	}
	return false
}

// HoldingPeriodDays is the fixed offset used to freeze estimated_return_date
// at creation time. It is not reconciled against later status changes.
const HoldingPeriodDays = 14

// Personnel is a service-member record in the active collection (personnel table).
// A person currently on leave or hospitalized has no Personnel row; the record
// lives in the corresponding collection instead.
type Personnel struct {
	ID             int    `db:"id" json:"id"`
	PersonalNumber string `db:"personal_number" json:"personal_number"` // unique business key
	FullName       string `db:"full_name" json:"full_name"`
	Rank           string `db:"rank" json:"rank,omitempty"`
	Unit           string `db:"unit" json:"unit,omitempty"`
	Phone          string `db:"phone" json:"phone,omitempty"`

	CurrentStatus string `db:"current_status" json:"current_status"`

	FitnessCategory     string     `db:"fitness_category" json:"fitness_category,omitempty"`
	FitnessCategoryDate *time.Time `db:"fitness_category_date" json:"fitness_category_date,omitempty"`

	ArrivalDate         time.Time `db:"arrival_date" json:"arrival_date"`
	EstimatedReturnDate time.Time `db:"estimated_return_date" json:"estimated_return_date"` // frozen at create

	Diagnosis       string `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes           string `db:"notes" json:"notes,omitempty"`
	ProblemResolved bool   `db:"problem_resolved" json:"problem_resolved"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PersonnelView is a Personnel row plus the fields derived on read.
type PersonnelView struct {
	Personnel
	DaysInHolding int `json:"days_in_pvd"`
}

// ViewAt attaches the derived counters for the given reference instant.
func (p Personnel) ViewAt(now time.Time) PersonnelView {
	return PersonnelView{
		Personnel:     p,
		DaysInHolding: DaysSince(p.ArrivalDate, now),
	}
}
