package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/logist-zp/internal/model"
)

const coreFont = "Helvetica"

type labels struct {
	title     string
	number    string
	buyer     string
	period    string
	periodFmt string
	headers   []string
	trips     string
	volume    string
	amount    string
	buyerSign string
	ownSign   string
}

var cyrillicLabels = labels{
	title:     "АКТ приема-передачи материала",
	number:    "Акт № %d от %s",
	buyer:     "Покупатель",
	period:    "Период поставки",
	periodFmt: "с %s по %s",
	headers:   []string{"№", "Дата", "Накладная", "Машина", "Материал", "Объект", "Объем, м3", "Сумма"},
	trips:     "Рейсов",
	volume:    "Объем, м3",
	amount:    "Сумма",
	buyerSign: "Покупатель",
	ownSign:   "Поставщик",
}

var latinLabels = labels{
	title:     "Material delivery act",
	number:    "Act No. %d of %s",
	buyer:     "Buyer",
	period:    "Delivery period",
	periodFmt: "from %s to %s",
	headers:   []string{"No.", "Date", "Invoice", "Vehicle", "Material", "Place", "Volume, m3", "Amount"},
	trips:     "Trips",
	volume:    "Volume, m3",
	amount:    "Amount",
	buyerSign: "Buyer",
	ownSign:   "Supplier",
}

var colWidths = []float64{12, 26, 34, 34, 50, 50, 34, 37}

// Generator renders delivery acts. Without a UTF-8 font it falls back to the
// core Helvetica font and Latin labels.
type Generator struct {
	fontName string
	fontData []byte
	labels   labels
}

func NewGenerator(fontPath string) (*Generator, error) {
	if strings.TrimSpace(fontPath) == "" {
		return &Generator{fontName: coreFont, labels: latinLabels}, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	return &Generator{fontName: "ActFont", fontData: data, labels: cyrillicLabels}, nil
}

func (g *Generator) Generate(doc model.ActDocument) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	if g.fontData != nil {
		pdf.AddUTF8FontFromBytes(g.fontName, "", g.fontData)
		pdf.AddUTF8FontFromBytes(g.fontName, "B", g.fontData)
	}
	pdf.AddPage()

	text := g.translator(pdf)
	l := g.labels

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, text(l.title), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, text(fmt.Sprintf(l.number, doc.Act.ID, formatDate(model.DateOf(doc.Act.CreatedAt)))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, text(l.buyer), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, text(safeValue(doc.Act.BuyerName)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, text(l.period), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, text(fmt.Sprintf(l.periodFmt, formatDate(doc.Act.StartDate), formatDate(doc.Act.EndDate))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	drawTableRow(pdf, g.fontName, text, l.headers, true)
	for i, trip := range doc.Trips {
		drawTableRow(pdf, g.fontName, text, []string{
			fmt.Sprintf("%d", i+1),
			formatDate(trip.TripDate),
			safePtr(trip.InvoiceNumber),
			safeValue(trip.VehiclePlate),
			safeValue(trip.MaterialName),
			safePtr(trip.PlaceName),
			formatNullAmount(trip.VolumeM3),
			formatAmount(trip.TripPriceFixed),
		}, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %d", l.trips, doc.Act.TotalTrips)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", l.volume, formatAmount(doc.Act.TotalVolume))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, text(fmt.Sprintf("%s: %s", l.amount, formatAmount(doc.TotalAmount()))), "", 1, "R", false, 0, "")

	pdf.Ln(8)
	signatureBlock(pdf, g.fontName, text, l.ownSign)
	signatureBlock(pdf, g.fontName, text, l.buyerSign)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// translator maps UTF-8 text to the core font code page when no UTF-8 font is loaded.
func (g *Generator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.fontData != nil {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, text func(string) string, cols []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i >= 6 {
			align = "R"
		}
		pdf.CellFormat(colWidths[i], 8, text(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName string, text func(string) string, label string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 8, text(fmt.Sprintf("%s: ______________________", label)), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func safePtr(value *string) string {
	if value == nil {
		return "-"
	}
	return safeValue(*value)
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatNullAmount(value decimal.NullDecimal) string {
	if !value.Valid {
		return "-"
	}
	return formatAmount(value.Decimal)
}

func formatDate(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Time().Format("02.01.2006")
}
