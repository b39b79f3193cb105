package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medhold-data/internal/domain"
)

func (s *PostgresStore) ListMovements(ctx context.Context, personnelID int) ([]domain.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, personnel_id, movement_type, start_date, end_date,
				COALESCE(destination, ''), COALESCE(notes, ''), created_at
		 FROM movements
		 WHERE personnel_id = $1
		 ORDER BY id`, personnelID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []domain.Movement
	for rows.Next() {
		var m domain.Movement
		var endDate sql.NullTime
		if err := rows.Scan(&m.ID, &m.PersonnelID, &m.MovementType, &m.StartDate,
			&endDate, &m.Destination, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if endDate.Valid {
			d := endDate.Time
			m.EndDate = &d
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListMedicalVisits(ctx context.Context, personnelID int) ([]domain.MedicalVisit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, personnel_id, visit_date, doctor_specialty,
				COALESCE(diagnosis, ''), COALESCE(recommendations, ''),
				COALESCE(fitness_category, ''), created_at
		 FROM medical_visits
		 WHERE personnel_id = $1
		 ORDER BY id`, personnelID)
	if err != nil {
		return nil, fmt.Errorf("list medical visits: %w", err)
	}
	defer rows.Close()

	var out []domain.MedicalVisit
	for rows.Next() {
		var v domain.MedicalVisit
		if err := rows.Scan(&v.ID, &v.PersonnelID, &v.VisitDate, &v.DoctorSpecialty,
			&v.Diagnosis, &v.Recommendations, &v.FitnessCategory, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan medical visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
