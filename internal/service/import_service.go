package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

// ImportResult reports the outcome of a workbook import. Row failures do not
// abort the batch; each is reported with its sheet and row number.
type ImportResult struct {
	Imported        int      `json:"imported"`
	Updated         int      `json:"updated"`
	SheetsProcessed int      `json:"sheets_processed"`
	Errors          []string `json:"errors,omitempty"`
}

// ImportService loads personnel rows from uploaded Excel workbooks. Headers
// are matched fuzzily so exports from other units' spreadsheets load without
// manual renaming.
type ImportService interface {
	ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error)
}

type importService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewImportService creates an ImportService over the given store.
func NewImportService(st repository.Store, logger *zap.Logger) ImportService {
	return &importService{store: st, logger: logger, now: time.Now}
}

// importColumns maps a lowercased header substring to a logical field.
// First match in order wins.
var importColumns = []struct {
	contains string
	field    string
}{
	{"личн", "personal_number"},
	{"фио", "full_name"},
	{"фамилия", "full_name"},
	{"звание", "rank"},
	{"подраздел", "unit"},
	{"часть", "unit"},
	{"телефон", "phone"},
	{"прибыти", "arrival_date"},
	{"дата категории", "fitness_category_date"},
	{"категория", "fitness_category"},
	{"годност", "fitness_category"},
	{"статус", "status"},
	{"положение", "status"},
	{"диагноз", "diagnosis"},
	{"коммент", "notes"},
	{"примечан", "notes"},
	{"заметк", "notes"},
}

func (s *importService) ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("file", "not a readable xlsx workbook")
	}
	defer f.Close()

	batchID := uuid.NewString()
	result := &ImportResult{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: cannot read sheet: %v", sheet, err))
			continue
		}
		if len(rows) < 2 {
			continue
		}

		fields := mapHeader(rows[0])
		if _, ok := fields["personal_number"]; !ok {
			if _, ok := fields["full_name"]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: no recognizable header row", sheet))
				continue
			}
		}
		result.SheetsProcessed++

		for i, row := range rows[1:] {
			rowNum := i + 2 // 1-based, after the header
			created, updated, err := s.importRow(ctx, fields, row)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s, строка %d: %v", sheet, rowNum, err))
				continue
			}
			if created {
				result.Imported++
			}
			if updated {
				result.Updated++
			}
		}
	}

	s.logger.Info("workbook import finished",
		zap.String("batch_id", batchID),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("sheets", result.SheetsProcessed),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// mapHeader resolves column index -> logical field for one sheet.
func mapHeader(header []string) map[string]int {
	fields := map[string]int{}
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		for _, c := range importColumns {
			if strings.Contains(name, c.contains) {
				if _, taken := fields[c.field]; !taken {
					fields[c.field] = idx
				}
				break
			}
		}
	}
	return fields
}

func cellAt(row []string, fields map[string]int, field string) string {
	idx, ok := fields[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// importRow upserts one spreadsheet row keyed by personal number.
// Returns (created, updated).
func (s *importService) importRow(ctx context.Context, fields map[string]int, row []string) (bool, bool, error) {
	fullName := cellAt(row, fields, "full_name")
	personalNumber := cellAt(row, fields, "personal_number")
	if fullName == "" && personalNumber == "" {
		return false, false, nil // blank row
	}
	if personalNumber == "" {
		return false, false, fmt.Errorf("личный номер не указан")
	}
	if fullName == "" {
		return false, false, fmt.Errorf("ФИО не указано")
	}

	status := normalizeStatus(cellAt(row, fields, "status"))
	fitness := normalizeFitness(cellAt(row, fields, "fitness_category"))

	arrival := s.now().Truncate(24 * time.Hour)
	arrivalGiven := false
	if raw := cellAt(row, fields, "arrival_date"); raw != "" {
		d, ok := parseImportDate(raw)
		if !ok {
			return false, false, fmt.Errorf("дата прибытия %q не распознана", raw)
		}
		arrival = d
		arrivalGiven = true
	}

	var fitnessDate *time.Time
	if raw := cellAt(row, fields, "fitness_category_date"); raw != "" {
		if d, ok := parseImportDate(raw); ok {
			fitnessDate = &d
		}
	}

	existing, err := s.store.GetPersonnelByNumber(ctx, personalNumber)
	if err == nil {
		updated := *existing
		updated.FullName = fullName
		if v := cellAt(row, fields, "rank"); v != "" {
			updated.Rank = v
		}
		if v := cellAt(row, fields, "unit"); v != "" {
			updated.Unit = v
		}
		if v := cellAt(row, fields, "phone"); v != "" {
			updated.Phone = v
		}
		if status != "" {
			updated.CurrentStatus = status
		}
		if fitness != "" {
			updated.FitnessCategory = fitness
			// without a supplied date the prior effective date stands
			if fitnessDate != nil {
				updated.FitnessCategoryDate = fitnessDate
			}
		}
		if v := cellAt(row, fields, "diagnosis"); v != "" {
			updated.Diagnosis = v
		}
		if v := cellAt(row, fields, "notes"); v != "" {
			updated.Notes = v
		}
		if _, err := s.store.UpdatePersonnel(ctx, existing.ID, &updated); err != nil {
			return false, false, err
		}
		return false, true, nil
	}
	if !domain.IsNotFound(err) {
		return false, false, err
	}

	if status == "" {
		status = domain.StatusInHolding
	}
	p := &domain.Personnel{
		PersonalNumber:      personalNumber,
		FullName:            fullName,
		Rank:                cellAt(row, fields, "rank"),
		Unit:                cellAt(row, fields, "unit"),
		Phone:               cellAt(row, fields, "phone"),
		CurrentStatus:       status,
		FitnessCategory:     fitness,
		FitnessCategoryDate: fitnessDate,
		ArrivalDate:         arrival,
		EstimatedReturnDate: domain.EstimatedReturn(arrival),
		Diagnosis:           cellAt(row, fields, "diagnosis"),
		Notes:               cellAt(row, fields, "notes"),
	}
	created, err := s.store.CreatePersonnel(ctx, p)
	if err != nil {
		return false, false, err
	}

	if arrivalGiven {
		_, err = s.store.AddMovement(ctx, &domain.Movement{
			PersonnelID:  created.ID,
			MovementType: domain.MovementArrival,
			StartDate:    arrival,
			Notes:        "Импорт из Excel",
		}, &domain.AbsenceSpec{})
		if err != nil {
			s.logger.Warn("arrival movement not recorded",
				zap.Int("personnel_id", created.ID), zap.Error(err))
		}
	}
	return true, false, nil
}

// importDateLayouts are the date formats accepted in spreadsheet cells.
var importDateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006", "2.1.2006"}

func parseImportDate(s string) (time.Time, bool) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeStatus maps free-form spreadsheet wording onto the storage codes.
// Unrecognized values map to "" (caller decides the default).
func normalizeStatus(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return ""
	case strings.Contains(v, "пвд"):
		return domain.StatusInHolding
	case strings.Contains(v, "строю"), strings.Contains(v, "строј"), strings.Contains(v, "служб"):
		return domain.StatusFitForDuty
	case strings.Contains(v, "госпит"), strings.Contains(v, "вмо"), strings.Contains(v, "стацион"):
		return domain.StatusHospitalized
	case strings.Contains(v, "отпуск"):
		return domain.StatusOnLeave
	case strings.Contains(v, "убыл"), strings.Contains(v, "увол"):
		return domain.StatusDeparted
	default:
		return ""
	}
}

// normalizeFitness maps spreadsheet fitness markings (Cyrillic or Latin
// lookalikes, with or without trailing digits like "Б3") onto the closed
// category set.
func normalizeFitness(raw string) string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return ""
	}
	latin := map[rune]rune{'A': 'А', 'B': 'В', 'C': 'С', 'D': 'Д', 'E': 'Е', 'G': 'Г'}
	r := []rune(v)[0]
	if mapped, ok := latin[r]; ok {
		r = mapped
	}
	c := string(r)
	if domain.ValidFitnessCategory(c) {
		return c
	}
	return ""
}
