package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

func seedExport(t *testing.T) *repository.MemoryStore {
	t.Helper()
	st := repository.NewMemoryStore()
	ctx := context.Background()

	fitnessDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err := st.CreatePersonnel(ctx, &domain.Personnel{
		PersonalNumber:      "ВС-0001",
		FullName:            "Иванов Иван Иванович",
		Rank:                "рядовой",
		Unit:                "1 рота",
		Phone:               "+7 900 000-00-01",
		CurrentStatus:       domain.StatusInHolding,
		FitnessCategory:     "Б",
		FitnessCategoryDate: &fitnessDate,
		ArrivalDate:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// no phone, no fitness category
	_, err = st.CreatePersonnel(ctx, &domain.Personnel{
		PersonalNumber: "ВС-0002",
		FullName:       "Петров Пётр Петрович",
		Unit:           "2 рота",
		CurrentStatus:  domain.StatusFitForDuty,
		ArrivalDate:    time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return st
}

func TestExportRow(t *testing.T) {
	fitnessDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	personnel := []domain.Personnel{
		{
			PersonalNumber:      "ВС-0001",
			FullName:            "Иванов Иван Иванович",
			Rank:                "рядовой",
			Unit:                "1 рота",
			CurrentStatus:       domain.StatusInHolding,
			FitnessCategory:     "Б",
			FitnessCategoryDate: &fitnessDate,
		},
		{
			PersonalNumber: "ВС-0002",
			FullName:       "Петров Пётр Петрович",
			CurrentStatus:  domain.StatusFitForDuty,
		},
	}

	rows := make([][]string, 0, len(personnel))
	for _, p := range personnel {
		rows = append(rows, exportRow(p))
	}

	assert.Equal(t, []string{
		"ВС-0001", "Иванов Иван Иванович", "рядовой", "1 рота",
		"", "В ПВД", "Б", "15.02.2026",
	}, rows[0])
	assert.Equal(t, []string{
		"ВС-0002", "Петров Пётр Петрович", "", "", "", "В строю", "", "",
	}, rows[1])
}

func TestExportCSV(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())

	data, err := svc.ExportCSV(context.Background(), repository.PersonnelFilters{})
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, utf8BOM), "CSV must start with a UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{
		"ВС-0001", "Иванов Иван Иванович", "рядовой", "1 рота",
		"+7 900 000-00-01", "В ПВД", "Б", "15.02.2026",
	}, records[1])
	// empty optional fields stay empty cells, the row keeps its width
	assert.Equal(t, []string{
		"ВС-0002", "Петров Пётр Петрович", "", "2 рота", "", "В строю", "", "",
	}, records[2])
}

func TestExportCSV_Filtered(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())

	data, err := svc.ExportCSV(context.Background(), repository.PersonnelFilters{Unit: "2 рота"})
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ВС-0002", records[1][0])
}

func TestExportXLSX(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())

	data, err := svc.ExportXLSX(context.Background(), repository.PersonnelFilters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Иванов Иван Иванович", rows[1][1])
	assert.Equal(t, "В строю", rows[2][5])
}

func TestFilename(t *testing.T) {
	svc := NewExportService(repository.NewMemoryStore(), zap.NewNop()).(*exportService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC) }

	assert.Equal(t, "personnel_2026-03-10_14-30.csv", svc.Filename("csv"))
	assert.Equal(t, "personnel_2026-03-10_14-30.xlsx", svc.Filename("xlsx"))
}
