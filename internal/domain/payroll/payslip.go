package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PayslipPDF renders a release as a one-page PDF.
func (s *Service) PayslipPDF(ctx context.Context, releaseID string, shopIDs []string) ([]byte, Release, error) {
	release, err := s.store.GetRelease(ctx, releaseID, shopIDs)
	if err != nil {
		return nil, Release{}, err
	}
	data, err := RenderPayslip(release)
	if err != nil {
		return nil, Release{}, err
	}
	return data, release, nil
}

func RenderPayslip(r Release) ([]byte, error) {
	var snapshot Snapshot
	if len(r.Snapshot) > 0 {
		if err := json.Unmarshal(r.Snapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("decode calculation snapshot: %w", err)
		}
	}
	b := snapshot.Breakdown

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", r.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Salary month: %s", r.SalaryMonth))
	pdf.Ln(7)
	if r.ReleasedAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Released: %s", r.ReleasedAt.Format("2006-01-02")))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.Cell(0, 8, fmt.Sprintf("Working days: %d  Present: %d  Half: %d  Absent: %d  Leave: %d  Holidays: %d",
		b.ExpectedWorkingDays, b.PresentDays, b.HalfDays, b.AbsentDays, b.LeaveDays, b.HolidayDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Late minutes: %d  Extra minutes: %d", b.TotalLateMinutes, b.TotalExtraMinutes))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Base salary", r.BaseSalary},
		{"Gross salary", r.GrossSalary},
		{"Bonus", r.Bonus},
		{"Overtime bonus", r.OvertimeBonus},
		{"Advance deduction", r.AdvanceDeduction},
		{"Loan deduction", r.LoanDeduction},
		{"Fine", r.FineAmount},
		{"Other deduction", r.OtherDeduction},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 8, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, line.amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 8, "Net payable", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, r.NetPayable.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
