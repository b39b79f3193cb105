package domain

import "time"

// Leave is a denormalized copy of a personnel record while the person is on
// leave. The identity fields (full_name, unit, rank, personal_number) are
// snapshotted so the row stands alone; the active Personnel row is removed for
// the duration and restored on resolve.
type Leave struct {
	ID             int    `db:"id" json:"id"`
	PersonnelID    int    `db:"personnel_id" json:"personnel_id"`
	FullName       string `db:"full_name" json:"full_name"`
	Unit           string `db:"unit" json:"unit,omitempty"`
	Rank           string `db:"rank" json:"rank,omitempty"`
	PersonalNumber string `db:"personal_number" json:"personal_number"`

	LeaveType    string    `db:"leave_type" json:"leave_type"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"` // start_date + duration_days

	Comment         string    `db:"comment" json:"comment,omitempty"`
	ProblemResolved bool      `db:"problem_resolved" json:"problem_resolved"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// LeaveView is a Leave row plus the overdue flag derived on read.
type LeaveView struct {
	Leave
	IsOverdue bool `json:"is_overdue"`
}

// ViewAt attaches the derived overdue flag for the given reference instant.
func (l Leave) ViewAt(now time.Time) LeaveView {
	return LeaveView{Leave: l, IsOverdue: Overdue(l.EndDate, now)}
}

// Hospitalization is the hospital-side counterpart of Leave.
type Hospitalization struct {
	ID             int    `db:"id" json:"id"`
	PersonnelID    int    `db:"personnel_id" json:"personnel_id"`
	FullName       string `db:"full_name" json:"full_name"`
	Unit           string `db:"unit" json:"unit,omitempty"`
	Rank           string `db:"rank" json:"rank,omitempty"`
	PersonalNumber string `db:"personal_number" json:"personal_number"`

	MedicalFacility string    `db:"medical_facility" json:"medical_facility,omitempty"`
	AdmissionDate   time.Time `db:"admission_date" json:"admission_date"`

	Comment         string    `db:"comment" json:"comment,omitempty"`
	ProblemResolved bool      `db:"problem_resolved" json:"problem_resolved"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// HospitalizationView is a Hospitalization row plus the derived day counter.
type HospitalizationView struct {
	Hospitalization
	DaysInHospital int `json:"days_in_hospital"`
}

// ViewAt attaches the derived counters for the given reference instant.
func (h Hospitalization) ViewAt(now time.Time) HospitalizationView {
	return HospitalizationView{Hospitalization: h, DaysInHospital: DaysSince(h.AdmissionDate, now)}
}

// Return-to-duty diagnosis notes written by the resolve operations.
const (
	ReturnNoteFromLeave    = "Вернулся из отпуска"
	ReturnNoteFromHospital = "Выписан из ВМО"
)

// ReturnSpec describes how a resolved absence re-enters the active collection.
type ReturnSpec struct {
	Date      time.Time // becomes arrival_date (day counters reset to 0)
	Diagnosis string
}
