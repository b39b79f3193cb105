package domain

import "time"

// MedicalVisit is an append-only visit log entry. A visit that carries a
// fitness category also updates the parent personnel's fitness fields; that is
// the only path by which the category changes after creation.
type MedicalVisit struct {
	ID              int       `db:"id" json:"id"`
	PersonnelID     int       `db:"personnel_id" json:"personnel_id"`
	VisitDate       time.Time `db:"visit_date" json:"visit_date"`
	DoctorSpecialty string    `db:"doctor_specialty" json:"doctor_specialty"`
	Diagnosis       string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Recommendations string    `db:"recommendations" json:"recommendations,omitempty"`
	FitnessCategory string    `db:"fitness_category" json:"fitness_category,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
