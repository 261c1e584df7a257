package excel

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/logist-zp/internal/model"
)

const (
	PayrollSheet    = "Ведомость"
	ActSummarySheet = "Сводка"
	ActTripsSheet   = "Рейсы"
)

var payrollHeaders = []string{
	"№",
	"Сотрудник",
	"Тип",
	"Рейсов",
	"Сумма рейсов",
	"Часов",
	"Сумма часов",
	"Итого",
	"Авансы",
	"К выплате",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GeneratePayroll writes the period's statement with a totals row.
func (g *Generator) GeneratePayroll(statement model.PayrollStatement) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := PayrollSheet
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", fmt.Sprintf("Ведомость за %s", statement.Period.Month))
	_ = file.SetCellStyle(sheet, "A1", "A1", bold)

	headerRow := 3
	for i, header := range payrollHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		set(cell, header)
	}
	lastColumn, _ := excelize.ColumnNumberToName(len(payrollHeaders))
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastColumn, headerRow), bold)

	var totals payrollTotals
	for i, line := range statement.Lines {
		row := headerRow + 1 + i
		set(fmt.Sprintf("A%d", row), i+1)
		set(fmt.Sprintf("B%d", row), line.EmployeeName)
		set(fmt.Sprintf("C%d", row), employeeTypeLabel(line.EmployeeType))
		set(fmt.Sprintf("D%d", row), line.TripsCount)
		set(fmt.Sprintf("E%d", row), money(line.TripsAmount))
		set(fmt.Sprintf("F%d", row), money(line.HoursTotal))
		set(fmt.Sprintf("G%d", row), money(line.HoursAmount))
		set(fmt.Sprintf("H%d", row), money(line.TotalAmount))
		set(fmt.Sprintf("I%d", row), money(line.AdvancesAmount))
		set(fmt.Sprintf("J%d", row), money(line.PayableAmount))
		totals.add(line)
	}

	totalRow := headerRow + 1 + len(statement.Lines)
	set(fmt.Sprintf("B%d", totalRow), "ИТОГО")
	set(fmt.Sprintf("D%d", totalRow), totals.trips)
	set(fmt.Sprintf("E%d", totalRow), money(totals.tripsAmount))
	set(fmt.Sprintf("F%d", totalRow), money(totals.hours))
	set(fmt.Sprintf("G%d", totalRow), money(totals.hoursAmount))
	set(fmt.Sprintf("H%d", totalRow), money(totals.total))
	set(fmt.Sprintf("I%d", totalRow), money(totals.advances))
	set(fmt.Sprintf("J%d", totalRow), money(totals.payable))
	_ = file.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastColumn, totalRow), bold)

	_ = file.SetColWidth(sheet, "A", "A", 6)
	_ = file.SetColWidth(sheet, "B", "B", 36)
	_ = file.SetColWidth(sheet, "C", "C", 12)
	_ = file.SetColWidth(sheet, "D", "J", 15)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateAct writes an act summary sheet and the register of its trips.
func (g *Generator) GenerateAct(doc model.ActDocument) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", ActSummarySheet); err != nil {
		return nil, err
	}
	if err := g.writeActSummary(file, ActSummarySheet, doc); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(ActTripsSheet); err != nil {
		return nil, err
	}
	if err := g.writeActTrips(file, ActTripsSheet, doc); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeActSummary(file *excelize.File, sheet string, doc model.ActDocument) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Акт №")
	set("B1", doc.Act.ID)
	set("A2", "Покупатель")
	set("B2", doc.Act.BuyerName)
	set("A3", "Начало периода")
	set("B3", formatDate(doc.Act.StartDate))
	set("A4", "Конец периода")
	set("B4", formatDate(doc.Act.EndDate))
	set("A5", "Количество рейсов")
	set("B5", doc.Act.TotalTrips)
	set("A6", "Объем, м3")
	set("B6", money(doc.Act.TotalVolume))
	set("A7", "Сумма рейсов")
	set("B7", money(doc.TotalAmount()))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func (g *Generator) writeActTrips(file *excelize.File, sheet string, doc model.ActDocument) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Дата",
		"Накладная",
		"Водитель",
		"Машина",
		"Материал",
		"Объект",
		"Объем, м3",
		"Сумма",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, trip := range doc.Trips {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), formatDate(trip.TripDate))
		set(fmt.Sprintf("B%d", row), formatString(trip.InvoiceNumber))
		set(fmt.Sprintf("C%d", row), trip.DriverName)
		set(fmt.Sprintf("D%d", row), trip.VehiclePlate)
		set(fmt.Sprintf("E%d", row), trip.MaterialName)
		set(fmt.Sprintf("F%d", row), formatString(trip.PlaceName))
		set(fmt.Sprintf("G%d", row), nullMoney(trip.VolumeM3))
		set(fmt.Sprintf("H%d", row), money(trip.TripPriceFixed))
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "F", 28)
	_ = file.SetColWidth(sheet, "G", "H", 14)
	return nil
}

type payrollTotals struct {
	trips       int
	tripsAmount decimal.Decimal
	hours       decimal.Decimal
	hoursAmount decimal.Decimal
	total       decimal.Decimal
	advances    decimal.Decimal
	payable     decimal.Decimal
}

func (t *payrollTotals) add(line model.PayrollLineView) {
	t.trips += line.TripsCount
	t.tripsAmount = t.tripsAmount.Add(line.TripsAmount)
	t.hours = t.hours.Add(line.HoursTotal)
	t.hoursAmount = t.hoursAmount.Add(line.HoursAmount)
	t.total = t.total.Add(line.TotalAmount)
	t.advances = t.advances.Add(line.AdvancesAmount)
	t.payable = t.payable.Add(line.PayableAmount)
}

func employeeTypeLabel(t model.EmployeeType) string {
	switch t {
	case model.EmployeeTypeDriver:
		return "Водитель"
	case model.EmployeeTypeOperator:
		return "Оператор"
	default:
		return string(t)
	}
}

func formatDate(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("2006-01-02")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// money renders amounts as numbers so spreadsheet formulas keep working.
func money(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}

func nullMoney(value decimal.NullDecimal) interface{} {
	if !value.Valid {
		return ""
	}
	return money(value.Decimal)
}
