package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medhold-data/internal/domain"
)

const leaveColumns = `
	id, personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''), personal_number,
	leave_type, duration_days, start_date, end_date,
	COALESCE(comment, ''), problem_resolved, created_at`

func scanLeave(row rowScanner) (*domain.Leave, error) {
	var l domain.Leave
	err := row.Scan(&l.ID, &l.PersonnelID, &l.FullName, &l.Unit, &l.Rank, &l.PersonalNumber,
		&l.LeaveType, &l.DurationDays, &l.StartDate, &l.EndDate,
		&l.Comment, &l.ProblemResolved, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const hospColumns = `
	id, personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''), personal_number,
	COALESCE(medical_facility, ''), admission_date,
	COALESCE(comment, ''), problem_resolved, created_at`

func scanHospitalization(row rowScanner) (*domain.Hospitalization, error) {
	var h domain.Hospitalization
	err := row.Scan(&h.ID, &h.PersonnelID, &h.FullName, &h.Unit, &h.Rank, &h.PersonalNumber,
		&h.MedicalFacility, &h.AdmissionDate,
		&h.Comment, &h.ProblemResolved, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *PostgresStore) ListLeaves(ctx context.Context) ([]domain.Leave, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+leaveColumns+` FROM leaves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	defer rows.Close()

	var out []domain.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLeave(ctx context.Context, id int) (*domain.Leave, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = $1`, id)
	l, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("leave", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get leave: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) ListHospitalizations(ctx context.Context) ([]domain.Hospitalization, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+hospColumns+` FROM hospitalizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list hospitalizations: %w", err)
	}
	defer rows.Close()

	var out []domain.Hospitalization
	for rows.Next() {
		h, err := scanHospitalization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hospitalization: %w", err)
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetHospitalization(ctx context.Context, id int) (*domain.Hospitalization, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+hospColumns+` FROM hospitalizations WHERE id = $1`, id)
	h, err := scanHospitalization(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("hospitalization", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get hospitalization: %w", err)
	}
	return h, nil
}
