package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
	"medhold-data/internal/repository"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestImportWorkbook_CreatesAndLogsArrival(t *testing.T) {
	st := repository.NewMemoryStore()
	svc := NewImportService(st, zap.NewNop())
	ctx := context.Background()

	wb := buildWorkbook(t, "Список", [][]string{
		{"Личный номер", "ФИО", "Звание", "Подразделение", "Дата прибытия", "Категория годности", "Статус"},
		{"ВС-0001", "Иванов Иван Иванович", "рядовой", "1 рота", "01.03.2026", "Б", "находится в ПВД"},
		{"ВС-0002", "Петров Пётр Петрович", "", "2 рота", "2026-03-05", "A", "в строю"},
	})

	result, err := svc.ImportWorkbook(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.SheetsProcessed)
	assert.Empty(t, result.Errors)

	p, err := st.GetPersonnelByNumber(ctx, "ВС-0001")
	require.NoError(t, err)
	assert.Equal(t, "Иванов Иван Иванович", p.FullName)
	assert.Equal(t, domain.StatusInHolding, p.CurrentStatus)
	assert.Equal(t, "Б", p.FitnessCategory)
	assert.Equal(t, "2026-03-01", p.ArrivalDate.Format("2006-01-02"))
	assert.Equal(t, "2026-03-15", p.EstimatedReturnDate.Format("2006-01-02"))

	movements, err := st.ListMovements(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementArrival, movements[0].MovementType)

	// Latin lookalike "A" normalizes to the Cyrillic category.
	p2, err := st.GetPersonnelByNumber(ctx, "ВС-0002")
	require.NoError(t, err)
	assert.Equal(t, "А", p2.FitnessCategory)
	assert.Equal(t, domain.StatusFitForDuty, p2.CurrentStatus)
}

func TestImportWorkbook_UpdatesExisting(t *testing.T) {
	st := repository.NewMemoryStore()
	ctx := context.Background()
	_, err := st.CreatePersonnel(ctx, &domain.Personnel{
		PersonalNumber: "ВС-0001",
		FullName:       "Иванов И.И.",
		Unit:           "1 рота",
		CurrentStatus:  domain.StatusInHolding,
		ArrivalDate:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	svc := NewImportService(st, zap.NewNop())
	wb := buildWorkbook(t, "Sheet1", [][]string{
		{"личный номер", "фио", "телефон"},
		{"ВС-0001", "Иванов Иван Иванович", "+7 900 000-00-01"},
	})

	result, err := svc.ImportWorkbook(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Updated)

	p, err := st.GetPersonnelByNumber(ctx, "ВС-0001")
	require.NoError(t, err)
	assert.Equal(t, "Иванов Иван Иванович", p.FullName)
	assert.Equal(t, "+7 900 000-00-01", p.Phone)
	// fields absent from the sheet stay as they were
	assert.Equal(t, "1 рота", p.Unit)
}

func TestImportWorkbook_UpdateKeepsFitnessDate(t *testing.T) {
	st := repository.NewMemoryStore()
	ctx := context.Background()
	priorDate := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	_, err := st.CreatePersonnel(ctx, &domain.Personnel{
		PersonalNumber:      "ВС-0001",
		FullName:            "Иванов И.И.",
		CurrentStatus:       domain.StatusInHolding,
		FitnessCategory:     "Б",
		FitnessCategoryDate: &priorDate,
		ArrivalDate:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	svc := NewImportService(st, zap.NewNop())

	// category cell present, no date column at all
	wb := buildWorkbook(t, "Список", [][]string{
		{"Личный номер", "ФИО", "Категория годности"},
		{"ВС-0001", "Иванов Иван Иванович", "В"},
	})
	result, err := svc.ImportWorkbook(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	p, err := st.GetPersonnelByNumber(ctx, "ВС-0001")
	require.NoError(t, err)
	assert.Equal(t, "В", p.FitnessCategory)
	require.NotNil(t, p.FitnessCategoryDate)
	assert.Equal(t, priorDate, *p.FitnessCategoryDate)

	// a supplied date still wins
	wb = buildWorkbook(t, "Список", [][]string{
		{"Личный номер", "ФИО", "Категория годности", "Дата категории"},
		{"ВС-0001", "Иванов Иван Иванович", "Б", "01.03.2026"},
	})
	_, err = svc.ImportWorkbook(ctx, wb)
	require.NoError(t, err)

	p, err = st.GetPersonnelByNumber(ctx, "ВС-0001")
	require.NoError(t, err)
	require.NotNil(t, p.FitnessCategoryDate)
	assert.Equal(t, "2026-03-01", p.FitnessCategoryDate.Format("2006-01-02"))
}

func TestImportWorkbook_RowErrorsDoNotAbort(t *testing.T) {
	st := repository.NewMemoryStore()
	svc := NewImportService(st, zap.NewNop())
	ctx := context.Background()

	wb := buildWorkbook(t, "Список", [][]string{
		{"Личный номер", "ФИО", "Дата прибытия"},
		{"", "Безномерной", ""},
		{"ВС-0002", "Иванов", "вчера"},
		{"ВС-0003", "Петров", "10.03.2026"},
	})

	result, err := svc.ImportWorkbook(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 2)

	_, err = st.GetPersonnelByNumber(ctx, "ВС-0003")
	assert.NoError(t, err)
}

func TestImportWorkbook_NotAWorkbook(t *testing.T) {
	svc := NewImportService(repository.NewMemoryStore(), zap.NewNop())

	_, err := svc.ImportWorkbook(context.Background(), bytes.NewReader([]byte("not xlsx")))
	assert.True(t, domain.IsValidation(err))
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"В ПВД":            domain.StatusInHolding,
		"находится в пвд":  domain.StatusInHolding,
		"В строю":          domain.StatusFitForDuty,
		"госпитализирован": domain.StatusHospitalized,
		"в отпуске":        domain.StatusOnLeave,
		"убыл в часть":     domain.StatusDeparted,
		"уволен":           domain.StatusDeparted,
		"неизвестно":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeStatus(in), "input %q", in)
	}
}

func TestNormalizeFitness(t *testing.T) {
	cases := map[string]string{
		"":   "",
		"А":  "А",
		"Б3": "Б",
		"в":  "В",
		"A":  "А",
		"D":  "Д",
		"X":  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeFitness(in), "input %q", in)
	}
}
