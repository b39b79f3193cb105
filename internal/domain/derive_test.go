package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysSince(t *testing.T) {
	now := date(2024, 11, 1)

	assert.Equal(t, 0, DaysSince(date(2024, 11, 1), now))
	assert.Equal(t, 17, DaysSince(date(2024, 10, 15), now))
	// future arrival clamps to zero instead of going negative
	assert.Equal(t, 0, DaysSince(date(2024, 11, 5), now))
	// partial days truncate
	assert.Equal(t, 0, DaysSince(now.Add(-23*time.Hour), now))
}

func TestDaysSince_AlertBoundary(t *testing.T) {
	now := date(2024, 11, 1)

	exactly30 := now.AddDate(0, 0, -30)
	assert.False(t, DaysSince(exactly30, now) > AlertThresholdDays,
		"exactly 30 days in must not trip the long-stay alert")

	days31 := now.AddDate(0, 0, -31)
	assert.True(t, DaysSince(days31, now) > AlertThresholdDays)
}

func TestOverdue(t *testing.T) {
	end := date(2024, 11, 19)

	assert.False(t, Overdue(end, date(2024, 11, 19)))
	assert.True(t, Overdue(end, date(2024, 11, 20)))
	assert.False(t, Overdue(end, date(2024, 11, 1)))
}

func TestEstimatedReturn(t *testing.T) {
	arrival := date(2024, 10, 15)
	assert.Equal(t, date(2024, 10, 29), EstimatedReturn(arrival))
}

func TestLeaveEnd(t *testing.T) {
	assert.Equal(t, date(2024, 11, 19), LeaveEnd(date(2024, 10, 20), 30))
}

func TestViewAt(t *testing.T) {
	now := date(2024, 11, 2)

	p := Personnel{ArrivalDate: date(2024, 10, 15)}
	assert.Equal(t, 18, p.ViewAt(now).DaysInHolding)

	l := Leave{EndDate: date(2024, 11, 1)}
	assert.True(t, l.ViewAt(now).IsOverdue)

	h := Hospitalization{AdmissionDate: date(2024, 10, 1)}
	assert.Equal(t, 32, h.ViewAt(now).DaysInHospital)
}

func TestClosedSets(t *testing.T) {
	for _, s := range []string{StatusInHolding, StatusFitForDuty, StatusHospitalized, StatusOnLeave, StatusDeparted} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("неизвестно"))

	assert.True(t, ValidMovementType(MovementHospitalized))
	assert.False(t, ValidMovementType("телепортация"))

	assert.True(t, ValidFitnessCategory("Б"))
	assert.False(t, ValidFitnessCategory("Е"))
}
