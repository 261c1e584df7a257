package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/logist-zp/internal/model"
)

func builderTrip(driverID int64, price int64) model.TripInvoice {
	return model.TripInvoice{DriverID: driverID, TripPriceFixed: decimal.NewFromInt(price)}
}

func builderSession(operatorID int64, minutes int, rate int64) model.MachinerySession {
	start := marchAt(1, 8)
	end := start.Add(time.Duration(minutes) * time.Minute)
	session := model.MachinerySession{OperatorID: operatorID, StartAt: start, EndAt: &end}
	if rate > 0 {
		session.HourlyRate = decimal.NewNullDecimal(decimal.NewFromInt(rate))
	}
	return session
}

func TestBuildPayrollLines(t *testing.T) {
	trips := []model.TripInvoice{
		builderTrip(7, 15000),
		builderTrip(3, 12000),
		builderTrip(7, 15000),
	}
	sessions := []model.MachinerySession{
		builderSession(9, 45, 0),
		builderSession(9, 100, 6000),
		builderSession(7, 120, 0),
	}

	lines := buildPayrollLines(11, trips, sessions, decimal.NewFromInt(5000), nil)
	require.Len(t, lines, 4)

	keys := make([]model.LineKey, 0, len(lines))
	for _, line := range lines {
		assert.EqualValues(t, 11, line.PeriodID)
		keys = append(keys, line.Key())
	}
	assert.Equal(t, []model.LineKey{
		{EmployeeID: 3, EmployeeType: model.EmployeeTypeDriver},
		{EmployeeID: 7, EmployeeType: model.EmployeeTypeDriver},
		{EmployeeID: 7, EmployeeType: model.EmployeeTypeOperator},
		{EmployeeID: 9, EmployeeType: model.EmployeeTypeOperator},
	}, keys)

	assert.Equal(t, 2, lines[1].TripsCount)
	assertDecimal(t, "30000", lines[1].TotalAmount)
	assertDecimal(t, "0", lines[1].HoursTotal)

	assertDecimal(t, "2", lines[2].HoursTotal)
	assertDecimal(t, "10000", lines[2].TotalAmount)

	// 45 minutes bills as one hour at the fallback rate, 100 minutes as 1.67 at its own rate.
	assertDecimal(t, "2.67", lines[3].HoursTotal)
	assertDecimal(t, "15020", lines[3].HoursAmount)
	assert.Zero(t, lines[3].TripsCount)
	for _, line := range lines {
		assertDecimal(t, "0", line.ManualCorrection)
		assert.False(t, line.IsPaid)
	}
}

func TestBuildPayrollLinesCarriesOverByKey(t *testing.T) {
	previous := []model.PayrollLine{
		{EmployeeID: 7, EmployeeType: model.EmployeeTypeDriver, ManualCorrection: decimal.NewFromInt(-2000), IsPaid: true},
		{EmployeeID: 7, EmployeeType: model.EmployeeTypeOperator, ManualCorrection: decimal.NewFromInt(500)},
		{EmployeeID: 42, EmployeeType: model.EmployeeTypeDriver, ManualCorrection: decimal.NewFromInt(100)},
	}

	lines := buildPayrollLines(1,
		[]model.TripInvoice{builderTrip(7, 15000)},
		[]model.MachinerySession{builderSession(7, 60, 4000)},
		decimal.Zero,
		carryOverOf(previous),
	)
	require.Len(t, lines, 2)

	assert.Equal(t, model.EmployeeTypeDriver, lines[0].EmployeeType)
	assertDecimal(t, "-2000", lines[0].ManualCorrection)
	assert.True(t, lines[0].IsPaid)

	assert.Equal(t, model.EmployeeTypeOperator, lines[1].EmployeeType)
	assertDecimal(t, "500", lines[1].ManualCorrection)
	assert.False(t, lines[1].IsPaid)
	assertDecimal(t, "4000", lines[1].TotalAmount)
}

func TestBuildPayrollLinesEmpty(t *testing.T) {
	lines := buildPayrollLines(1, nil, nil, decimal.NewFromInt(5000), nil)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}
