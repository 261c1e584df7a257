package excel

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/logist-zp/internal/model"
)

func line(name string, kind model.EmployeeType, trips int, total, correction, advances int64) model.PayrollLineView {
	l := model.PayrollLine{
		EmployeeType:     kind,
		TripsCount:       trips,
		TripsAmount:      decimal.NewFromInt(total),
		TotalAmount:      decimal.NewFromInt(total),
		ManualCorrection: decimal.NewFromInt(correction),
	}
	adv := decimal.NewFromInt(advances)
	return model.PayrollLineView{
		PayrollLine:    l,
		EmployeeName:   name,
		AdvancesAmount: adv,
		PayableAmount:  l.Payable(adv),
	}
}

func TestGeneratePayroll(t *testing.T) {
	statement := model.PayrollStatement{
		Period: model.PayrollPeriod{ID: 1, Month: "2024-03"},
		Lines: []model.PayrollLineView{
			line("Ivanov Ivan", model.EmployeeTypeDriver, 2, 30000, 1000, 5000),
			line("Petrov Petr", model.EmployeeTypeOperator, 0, 12000, 0, 0),
		},
	}

	data, err := NewGenerator().GeneratePayroll(statement)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{PayrollSheet}, file.GetSheetList())

	cell := func(axis string) string {
		value, err := file.GetCellValue(PayrollSheet, axis)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Ведомость за 2024-03", cell("A1"))
	assert.Equal(t, "№", cell("A3"))
	assert.Equal(t, "К выплате", cell("J3"))

	assert.Equal(t, "Ivanov Ivan", cell("B4"))
	assert.Equal(t, "Водитель", cell("C4"))
	assert.Equal(t, "26000", cell("J4"))
	assert.Equal(t, "Оператор", cell("C5"))
	assert.Equal(t, "12000", cell("J5"))

	assert.Equal(t, "ИТОГО", cell("B6"))
	assert.Equal(t, "2", cell("D6"))
	assert.Equal(t, "42000", cell("H6"))
	assert.Equal(t, "5000", cell("I6"))
	assert.Equal(t, "38000", cell("J6"))
}

func TestGeneratePayrollEmpty(t *testing.T) {
	data, err := NewGenerator().GeneratePayroll(model.PayrollStatement{Period: model.PayrollPeriod{Month: "2024-04"}})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	total, err := file.GetCellValue(PayrollSheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "ИТОГО", total)
}

func TestGenerateAct(t *testing.T) {
	invoice := "INV-7"
	doc := model.ActDocument{
		Act: model.DeliveryActView{
			DeliveryAct: model.DeliveryAct{
				ID:          9,
				StartDate:   model.NewDate(2024, 3, 1),
				EndDate:     model.NewDate(2024, 3, 31),
				TotalTrips:  1,
				TotalVolume: decimal.NewFromInt(12),
			},
			BuyerName: "Stroy LLP",
		},
		Trips: []model.TripInvoiceView{{
			TripInvoice: model.TripInvoice{
				TripDate:       model.NewDate(2024, 3, 5),
				InvoiceNumber:  &invoice,
				TripPriceFixed: decimal.NewFromInt(15000),
				VolumeM3:       decimal.NewNullDecimal(decimal.NewFromInt(12)),
			},
			DriverName:   "Ivanov Ivan",
			VehiclePlate: "123ABC01",
			MaterialName: "Sand",
		}},
	}

	data, err := NewGenerator().GenerateAct(doc)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{ActSummarySheet, ActTripsSheet}, file.GetSheetList())

	buyer, err := file.GetCellValue(ActSummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Stroy LLP", buyer)

	amount, err := file.GetCellValue(ActSummarySheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "15000", amount)

	rows, err := file.GetRows(ActTripsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-03-05", "INV-7", "Ivanov Ivan", "123ABC01", "Sand", "", "12", "15000"}, rows[1])
}
