package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medhold-data/internal/domain"
)

// personnelColumns is the fixed select list scanned by scanPersonnel.
const personnelColumns = `
	id, personal_number, full_name,
	COALESCE(rank, ''), COALESCE(unit, ''), COALESCE(phone, ''),
	current_status,
	COALESCE(fitness_category, ''), fitness_category_date,
	arrival_date, estimated_return_date,
	COALESCE(diagnosis, ''), COALESCE(notes, ''),
	problem_resolved, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersonnel(row rowScanner) (*domain.Personnel, error) {
	var p domain.Personnel
	var fitnessDate sql.NullTime
	err := row.Scan(
		&p.ID, &p.PersonalNumber, &p.FullName,
		&p.Rank, &p.Unit, &p.Phone,
		&p.CurrentStatus,
		&p.FitnessCategory, &fitnessDate,
		&p.ArrivalDate, &p.EstimatedReturnDate,
		&p.Diagnosis, &p.Notes,
		&p.ProblemResolved, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fitnessDate.Valid {
		d := fitnessDate.Time
		p.FitnessCategoryDate = &d
	}
	return &p, nil
}

func (s *PostgresStore) ListPersonnel(ctx context.Context, filters PersonnelFilters) ([]domain.Personnel, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filters.Search != "" {
		where = append(where, fmt.Sprintf(
			"(full_name ILIKE $%d OR personal_number ILIKE $%d OR unit ILIKE $%d)", argN, argN, argN))
		args = append(args, "%"+filters.Search+"%")
		argN++
	}
	if filters.Unit != "" {
		where = append(where, fmt.Sprintf("unit = $%d", argN))
		args = append(args, filters.Unit)
		argN++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("current_status = $%d", argN))
		args = append(args, filters.Status)
		argN++
	}

	q := `SELECT ` + personnelColumns + `
		FROM personnel
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	defer rows.Close()

	out := []domain.Personnel{}
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan personnel: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DistinctUnits(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT unit FROM personnel WHERE unit IS NOT NULL AND unit <> '' ORDER BY unit`)
	if err != nil {
		return nil, fmt.Errorf("distinct units: %w", err)
	}
	defer rows.Close()

	units := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *PostgresStore) GetPersonnel(ctx context.Context, id int) (*domain.Personnel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personnelColumns+` FROM personnel WHERE id = $1`, id)
	p, err := scanPersonnel(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("personnel", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get personnel: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetPersonnelByNumber(ctx context.Context, personalNumber string) (*domain.Personnel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personnelColumns+` FROM personnel WHERE personal_number = $1`, personalNumber)
	p, err := scanPersonnel(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("personnel", 0)
	}
	if err != nil {
		return nil, fmt.Errorf("get personnel by number: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) CreatePersonnel(ctx context.Context, p *domain.Personnel) (*domain.Personnel, error) {
	// The unique index only covers active rows; a person on leave or in
	// hospital has no personnel row but still owns their number.
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM leaves WHERE personal_number = $1)
			 OR EXISTS (SELECT 1 FROM hospitalizations WHERE personal_number = $1)`,
		p.PersonalNumber).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check personal number: %w", err)
	}
	if taken {
		return nil, domain.NewConflictError("personal_number", p.PersonalNumber)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO personnel
			(personal_number, full_name, rank, unit, phone, current_status,
			 fitness_category, fitness_category_date,
			 arrival_date, estimated_return_date, diagnosis, notes, problem_resolved,
			 created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6,
			 NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13,
			 NOW(), NOW())
		 RETURNING `+personnelColumns,
		p.PersonalNumber, p.FullName, p.Rank, p.Unit, p.Phone, p.CurrentStatus,
		p.FitnessCategory, p.FitnessCategoryDate,
		p.ArrivalDate, p.EstimatedReturnDate, p.Diagnosis, p.Notes, p.ProblemResolved,
	)
	created, err := scanPersonnel(row)
	if err != nil {
		return nil, mapInsertError(err, p.PersonalNumber)
	}
	return created, nil
}

func (s *PostgresStore) UpdatePersonnel(ctx context.Context, id int, p *domain.Personnel) (*domain.Personnel, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE personnel
		 SET full_name = $1, rank = NULLIF($2, ''), unit = NULLIF($3, ''),
			 phone = NULLIF($4, ''), current_status = $5,
			 fitness_category = NULLIF($6, ''), fitness_category_date = $7,
			 diagnosis = NULLIF($8, ''), notes = NULLIF($9, ''), updated_at = NOW()
		 WHERE id = $10
		 RETURNING `+personnelColumns,
		p.FullName, p.Rank, p.Unit, p.Phone, p.CurrentStatus,
		p.FitnessCategory, p.FitnessCategoryDate,
		p.Diagnosis, p.Notes, id,
	)
	updated, err := scanPersonnel(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("personnel", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update personnel: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeletePersonnel(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM personnel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete personnel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("personnel", id)
	}
	return nil
}
