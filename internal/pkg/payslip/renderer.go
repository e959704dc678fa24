package payslip

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const ContentType = "application/pdf"

// Renderer draws payslip PDFs.
type Renderer struct {
	CompanyName string
	Currency    string
}

func NewRenderer(companyName, currency string) *Renderer {
	return &Renderer{CompanyName: companyName, Currency: currency}
}

type line struct {
	label  string
	amount decimal.Decimal
}

// Render writes a one-page payslip for rec to w.
func (r *Renderer) Render(w io.Writer, rec payroll.PayrollRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(rec.UpdatedAt.UTC())
	pdf.SetTitle(fmt.Sprintf("Payslip %s", rec.Period()), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.CompanyName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Payslip for %s", rec.Period().Start().Format("January 2006")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	for _, kv := range [][2]string{
		{"Employee", deref(rec.EmployeeName)},
		{"Employee code", deref(rec.EmployeeCode)},
		{"Department", deref(rec.Department)},
		{"Designation", deref(rec.Designation)},
		{"Status", string(rec.Status)},
	} {
		pdf.CellFormat(45, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	if rec.PaymentDate != nil && rec.PaymentMode != nil {
		pdf.CellFormat(45, 6, "Paid on", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", rec.PaymentDate.Format("2006-01-02"), *rec.PaymentMode), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	r.table(pdf, "Earnings", []line{
		{"Basic", rec.Earnings.Basic},
		{"Housing allowance", rec.Earnings.HousingAllowance},
		{"Special allowance", rec.Earnings.SpecialAllowance},
		{"Overtime", rec.Earnings.Overtime},
	}, "Gross earnings", rec.Summary.Gross)
	pdf.Ln(4)
	r.table(pdf, "Deductions", []line{
		{"Provident fund", rec.Deductions.ProvidentFund},
		{"Insurance", rec.Deductions.Insurance},
		{"Professional tax", rec.Deductions.ProfessionalTax},
		{"Other", rec.Deductions.Other},
	}, "Total deductions", rec.Summary.TotalDeductions)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Net salary", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, r.money(rec.Summary.Net), "1", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Record %s, version %d, generated %s", rec.ID, rec.Version, rec.CreatedAt.UTC().Format(time.RFC3339)))

	return pdf.Output(w)
}

func (r *Renderer) table(pdf *gofpdf.Fpdf, title string, lines []line, totalLabel string, total decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(180, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		pdf.CellFormat(120, 6, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, r.money(l.amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 7, totalLabel, "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, r.money(total), "T", 1, "R", false, 0, "")
}

func (r *Renderer) money(d decimal.Decimal) string {
	if r.Currency == "" {
		return d.StringFixed(2)
	}
	return r.Currency + " " + d.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
