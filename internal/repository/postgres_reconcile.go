package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"medhold-data/internal/domain"
)

// withTx runs fn inside a transaction, rolling back on error. Cross-collection
// commands must not leave a partial write behind (remove-from-A without
// insert-into-B), so every mutation below goes through here.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) AddMovement(ctx context.Context, mv *domain.Movement, abs *domain.AbsenceSpec) (*domain.Movement, error) {
	var created domain.Movement
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// Lock the personnel row for the duration of the command; a person
		// without an active row (on leave / hospitalized) cannot move.
		var p domain.Personnel
		err := tx.QueryRowContext(ctx,
			`SELECT id, personal_number, full_name, COALESCE(rank, ''), COALESCE(unit, '')
			 FROM personnel WHERE id = $1 FOR UPDATE`, mv.PersonnelID,
		).Scan(&p.ID, &p.PersonalNumber, &p.FullName, &p.Rank, &p.Unit)
		if err == sql.ErrNoRows {
			return domain.NewNotFoundError("personnel", mv.PersonnelID)
		}
		if err != nil {
			return fmt.Errorf("lock personnel: %w", err)
		}

		created = *mv
		err = tx.QueryRowContext(ctx,
			`INSERT INTO movements (personnel_id, movement_type, start_date, end_date, destination, notes, created_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NOW())
			 RETURNING id, created_at`,
			mv.PersonnelID, mv.MovementType, mv.StartDate, mv.EndDate, mv.Destination, mv.Notes,
		).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		switch mv.MovementType {
		case domain.MovementLeave:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO leaves
					(personnel_id, full_name, unit, rank, personal_number,
					 leave_type, duration_days, start_date, end_date, comment, problem_resolved, created_at)
				 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, NULLIF($10, ''), FALSE, NOW())`,
				p.ID, p.FullName, p.Unit, p.Rank, p.PersonalNumber,
				abs.LeaveType, abs.DurationDays, mv.StartDate,
				domain.LeaveEnd(mv.StartDate, abs.DurationDays), abs.Comment)
			if err != nil {
				return fmt.Errorf("insert leave: %w", err)
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM personnel WHERE id = $1`, p.ID); err != nil {
				return fmt.Errorf("remove personnel row: %w", err)
			}

		case domain.MovementHospitalized:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO hospitalizations
					(personnel_id, full_name, unit, rank, personal_number,
					 medical_facility, admission_date, comment, problem_resolved, created_at)
				 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), $7, NULLIF($8, ''), FALSE, NOW())`,
				p.ID, p.FullName, p.Unit, p.Rank, p.PersonalNumber,
				abs.Facility, mv.StartDate, abs.Comment)
			if err != nil {
				return fmt.Errorf("insert hospitalization: %w", err)
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM personnel WHERE id = $1`, p.ID); err != nil {
				return fmt.Errorf("remove personnel row: %w", err)
			}

		case domain.MovementDeparted:
			_, err = tx.ExecContext(ctx,
				`UPDATE personnel SET current_status = $1, updated_at = NOW() WHERE id = $2`,
				domain.StatusDeparted, p.ID)
			if err != nil {
				return fmt.Errorf("update status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PostgresStore) AddMedicalVisit(ctx context.Context, v *domain.MedicalVisit) (*domain.MedicalVisit, error) {
	var created domain.MedicalVisit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM personnel WHERE id = $1 FOR UPDATE`, v.PersonnelID).Scan(&exists)
		if err == sql.ErrNoRows {
			return domain.NewNotFoundError("personnel", v.PersonnelID)
		}
		if err != nil {
			return fmt.Errorf("lock personnel: %w", err)
		}

		created = *v
		err = tx.QueryRowContext(ctx,
			`INSERT INTO medical_visits
				(personnel_id, visit_date, doctor_specialty, diagnosis, recommendations, fitness_category, created_at)
			 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NOW())
			 RETURNING id, created_at`,
			v.PersonnelID, v.VisitDate, v.DoctorSpecialty, v.Diagnosis, v.Recommendations, v.FitnessCategory,
		).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert medical visit: %w", err)
		}

		if v.FitnessCategory != "" {
			_, err = tx.ExecContext(ctx,
				`UPDATE personnel
				 SET fitness_category = $1, fitness_category_date = $2, updated_at = NOW()
				 WHERE id = $3`,
				v.FitnessCategory, v.VisitDate, v.PersonnelID)
			if err != nil {
				return fmt.Errorf("update fitness category: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PostgresStore) ReturnFromLeave(ctx context.Context, leaveID int, ret domain.ReturnSpec) (*domain.Personnel, error) {
	var returned *domain.Personnel
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var l domain.Leave
		err := tx.QueryRowContext(ctx,
			`DELETE FROM leaves WHERE id = $1
			 RETURNING personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''), personal_number`,
			leaveID,
		).Scan(&l.PersonnelID, &l.FullName, &l.Unit, &l.Rank, &l.PersonalNumber)
		if err == sql.ErrNoRows {
			return domain.NewNotFoundError("leave", leaveID)
		}
		if err != nil {
			return fmt.Errorf("delete leave: %w", err)
		}

		returned, err = s.reinsertPersonnel(ctx, tx, l.PersonnelID, l.FullName, l.Unit, l.Rank, l.PersonalNumber, ret)
		return err
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

func (s *PostgresStore) ReturnFromHospital(ctx context.Context, hospID int, ret domain.ReturnSpec) (*domain.Personnel, error) {
	var returned *domain.Personnel
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var h domain.Hospitalization
		err := tx.QueryRowContext(ctx,
			`DELETE FROM hospitalizations WHERE id = $1
			 RETURNING personnel_id, full_name, COALESCE(unit, ''), COALESCE(rank, ''), personal_number`,
			hospID,
		).Scan(&h.PersonnelID, &h.FullName, &h.Unit, &h.Rank, &h.PersonalNumber)
		if err == sql.ErrNoRows {
			return domain.NewNotFoundError("hospitalization", hospID)
		}
		if err != nil {
			return fmt.Errorf("delete hospitalization: %w", err)
		}

		returned, err = s.reinsertPersonnel(ctx, tx, h.PersonnelID, h.FullName, h.Unit, h.Rank, h.PersonalNumber, ret)
		return err
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// reinsertPersonnel restores the active row after an absence is resolved.
// The original id is reused so the movement/visit history stays attached.
func (s *PostgresStore) reinsertPersonnel(ctx context.Context, tx *sql.Tx, id int, fullName, unit, rank, personalNumber string, ret domain.ReturnSpec) (*domain.Personnel, error) {
	row := tx.QueryRowContext(ctx,
		`INSERT INTO personnel
			(id, personal_number, full_name, rank, unit, current_status,
			 arrival_date, estimated_return_date, diagnosis, problem_resolved, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, TRUE, NOW(), NOW())
		 RETURNING `+personnelColumns,
		id, personalNumber, fullName, rank, unit, domain.StatusFitForDuty,
		ret.Date, domain.EstimatedReturn(ret.Date), ret.Diagnosis)
	p, err := scanPersonnel(row)
	if err != nil {
		return nil, fmt.Errorf("reinsert personnel: %w", err)
	}
	return p, nil
}
