package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/model"
)

// carryOver holds the user-entered fields that survive regeneration.
type carryOver struct {
	ManualCorrection decimal.Decimal
	IsPaid           bool
}

func carryOverOf(lines []model.PayrollLine) map[model.LineKey]carryOver {
	carried := make(map[model.LineKey]carryOver, len(lines))
	for _, line := range lines {
		carried[line.Key()] = carryOver{ManualCorrection: line.ManualCorrection, IsPaid: line.IsPaid}
	}
	return carried
}

// buildPayrollLines derives one line per driver from confirmed trips and one
// per operator from closed sessions. Output is ordered by type then employee.
func buildPayrollLines(
	periodID int64,
	trips []model.TripInvoice,
	sessions []model.MachinerySession,
	fallbackRate decimal.Decimal,
	carried map[model.LineKey]carryOver,
) []model.PayrollLine {
	byKey := make(map[model.LineKey]*model.PayrollLine)
	line := func(employeeID int64, employeeType model.EmployeeType) *model.PayrollLine {
		key := model.LineKey{EmployeeID: employeeID, EmployeeType: employeeType}
		if existing, ok := byKey[key]; ok {
			return existing
		}
		created := &model.PayrollLine{
			PeriodID:         periodID,
			EmployeeID:       employeeID,
			EmployeeType:     employeeType,
			TripsAmount:      decimal.Zero,
			HoursTotal:       decimal.Zero,
			HoursAmount:      decimal.Zero,
			ManualCorrection: decimal.Zero,
		}
		byKey[key] = created
		return created
	}

	for _, trip := range trips {
		l := line(trip.DriverID, model.EmployeeTypeDriver)
		l.TripsCount++
		l.TripsAmount = l.TripsAmount.Add(trip.TripPriceFixed)
	}

	for _, session := range sessions {
		hours := session.BillableHours()
		amount := hours.Mul(session.Rate(fallbackRate)).Round(2)
		l := line(session.OperatorID, model.EmployeeTypeOperator)
		l.HoursTotal = l.HoursTotal.Add(hours)
		l.HoursAmount = l.HoursAmount.Add(amount)
	}

	lines := make([]model.PayrollLine, 0, len(byKey))
	for key, l := range byKey {
		l.TotalAmount = l.TripsAmount.Add(l.HoursAmount)
		if previous, ok := carried[key]; ok {
			l.ManualCorrection = previous.ManualCorrection
			l.IsPaid = previous.IsPaid
		}
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].EmployeeType != lines[j].EmployeeType {
			return lines[i].EmployeeType < lines[j].EmployeeType
		}
		return lines[i].EmployeeID < lines[j].EmployeeID
	})
	return lines
}
