package repository

import (
	"context"
	"database/sql"
	"fmt"

	"medhold-data/internal/domain"
)

func (s *PostgresStore) ListProblems(ctx context.Context, includeResolved bool) ([]domain.Problem, error) {
	q := `SELECT id, personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''),
				issue_type, description, severity, resolved, created_at
		  FROM problems`
	if !includeResolved {
		q += ` WHERE NOT resolved`
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var out []domain.Problem
	for rows.Next() {
		var p domain.Problem
		if err := rows.Scan(&p.ID, &p.PersonnelID, &p.FullName, &p.Unit, &p.Rank,
			&p.IssueType, &p.Description, &p.Severity, &p.Resolved, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateProblem(ctx context.Context, p *domain.Problem) (*domain.Problem, error) {
	created := *p
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO problems (personnel_id, full_name, unit, rank, issue_type, description, severity, resolved, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, FALSE, NOW())
		 RETURNING id, created_at`,
		p.PersonnelID, p.FullName, p.Unit, p.Rank, p.IssueType, p.Description, p.Severity,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	created.Resolved = false
	return &created, nil
}

func (s *PostgresStore) HasOpenProblem(ctx context.Context, personnelID int, issueType string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM problems
			WHERE personnel_id = $1 AND issue_type = $2 AND NOT resolved
		 )`, personnelID, issueType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open problem: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ResolveProblem(ctx context.Context, id int) (*domain.Problem, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE problems SET resolved = TRUE WHERE id = $1
		 RETURNING id, personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''),
				   issue_type, description, severity, resolved, created_at`, id)

	var p domain.Problem
	err := row.Scan(&p.ID, &p.PersonnelID, &p.FullName, &p.Unit, &p.Rank,
		&p.IssueType, &p.Description, &p.Severity, &p.Resolved, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("problem", id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve problem: %w", err)
	}
	return &p, nil
}
