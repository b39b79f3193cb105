package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

// displayDate is the human-facing date format used in exported files.
const displayDate = "02.01.2006"

// exportHeader is the fixed column set of both CSV and XLSX exports.
var exportHeader = []string{
	"Личный номер",
	"ФИО",
	"Звание",
	"Подразделение",
	"Телефон",
	"Статус",
	"Категория годности",
	"Дата категории",
}

// exportSheetName is the single data sheet of the XLSX export.
const exportSheetName = "Личный состав"

// utf8BOM makes the semicolon-delimited CSV open correctly in Excel with
// Cyrillic content.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportService renders the active personnel collection into downloadable
// files. Both formats share one row shape so a record exports identically
// either way.
type ExportService interface {
	ExportCSV(ctx context.Context, filters repository.PersonnelFilters) ([]byte, error)
	ExportXLSX(ctx context.Context, filters repository.PersonnelFilters) ([]byte, error)
	Filename(format string) string
}

type exportService struct {
	store  repository.PersonnelRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService over the personnel collection.
func NewExportService(st repository.PersonnelRepository, logger *zap.Logger) ExportService {
	return &exportService{store: st, logger: logger, now: time.Now}
}

// Filename returns a timestamped download name for the given format.
func (s *exportService) Filename(format string) string {
	return fmt.Sprintf("personnel_%s.%s", s.now().Format("2006-01-02_15-04"), format)
}

// exportRow renders one personnel record into the shared column order. Empty
// optional fields stay empty cells rather than placeholder text.
func exportRow(p domain.Personnel) []string {
	fitnessDate := ""
	if p.FitnessCategoryDate != nil {
		fitnessDate = p.FitnessCategoryDate.Format(displayDate)
	}
	return []string{
		p.PersonalNumber,
		p.FullName,
		p.Rank,
		p.Unit,
		p.Phone,
		domain.StatusLabels[p.CurrentStatus],
		p.FitnessCategory,
		fitnessDate,
	}
}

func (s *exportService) ExportCSV(ctx context.Context, filters repository.PersonnelFilters) ([]byte, error) {
	personnel, err := s.store.ListPersonnel(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, p := range personnel {
		if err := w.Write(exportRow(p)); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("csv export generated", zap.Int("rows", len(personnel)))
	return buf.Bytes(), nil
}

func (s *exportService) ExportXLSX(ctx context.Context, filters repository.PersonnelFilters) ([]byte, error) {
	personnel, err := s.store.ListPersonnel(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}

	columnWidths := []float64{16, 30, 18, 20, 18, 16, 12, 16}
	for i := range exportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for rowIdx, p := range personnel {
		row := rowIdx + 2
		for colIdx, value := range exportRow(p) {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("convert coordinates: %w", err)
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}

	s.logger.Info("xlsx export generated", zap.Int("rows", len(personnel)))
	return buf.Bytes(), nil
}
