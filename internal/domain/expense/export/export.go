// Package export writes expense listings and dashboard summaries as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Sheet names of the XLSX workbook
const (
	SheetExpenses = "Expenses"
	SheetSummary  = "Summary"
)

const dateLayout = "2006-01-02"

// ParseFormat accepts "csv" or "xlsx" in any case; blank means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns a download name such as "expenses.csv"
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Row is the flat CSV representation of an expense
type Row struct {
	ID          int64  `csv:"id"`
	Date        string `csv:"date"`
	Category    string `csv:"category"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// Rows flattens expenses in the order given
func Rows(expenses []repository.Expense) []*Row {
	rows := make([]*Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, &Row{
			ID:          e.ID,
			Date:        e.ExpenseDate.Format(dateLayout),
			Category:    e.Category,
			Description: e.Description,
			Amount:      e.Amount.String(),
		})
	}
	return rows
}

// Write dispatches to WriteCSV or WriteXLSX. The summary is only used by XLSX.
func Write(w io.Writer, format Format, expenses []repository.Expense, summary *repository.Dashboard) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, expenses)
	case FormatXLSX:
		return WriteXLSX(w, expenses, summary)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header line followed by one line per expense
func WriteCSV(w io.Writer, expenses []repository.Expense) error {
	if err := gocsv.Marshal(Rows(expenses), w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the expenses on the first sheet and, when
// summary is non-nil, totals by category and by month on a second sheet.
func WriteXLSX(w io.Writer, expenses []repository.Expense, summary *repository.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeExpenseSheet(f, st, expenses); err != nil {
		return err
	}
	if summary != nil {
		if err := writeSummarySheet(f, st, summary); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type styles struct {
	header int
	amount int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2D3436"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	// built-in format 4 is "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create amount style: %w", err)
	}
	return styles{header: header, amount: amount}, nil
}

func writeExpenseSheet(f *excelize.File, st styles, expenses []repository.Expense) error {
	headers := []string{"ID", "Date", "Category", "Description", "Amount"}
	if err := writeHeader(f, SheetExpenses, st, headers); err != nil {
		return err
	}

	for i, e := range expenses {
		row := i + 2
		values := []any{e.ID, e.ExpenseDate.Format(dateLayout), e.Category, e.Description, e.Amount.InexactFloat64()}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetExpenses, cell, &values); err != nil {
			return fmt.Errorf("failed to write expense row %d: %w", row, err)
		}
	}

	if len(expenses) > 0 {
		last := len(expenses) + 1
		if err := f.SetCellStyle(SheetExpenses, "E2", fmt.Sprintf("E%d", last), st.amount); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	return f.SetColWidth(SheetExpenses, "D", "D", 40)
}

func writeSummarySheet(f *excelize.File, st styles, d *repository.Dashboard) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeHeader(f, SheetSummary, st, []string{"Category", "Total", "", "Month", "Total"}); err != nil {
		return err
	}

	for i, c := range d.Categories {
		row := i + 2
		values := []any{c.Category, c.Total.InexactFloat64()}
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write category row: %w", err)
		}
	}
	for i, m := range d.Months {
		row := i + 2
		values := []any{m.Month, m.Total.InexactFloat64()}
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("D%d", row), &values); err != nil {
			return fmt.Errorf("failed to write month row: %w", err)
		}
	}

	totalRow := len(d.Categories) + 3
	if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", totalRow), &[]any{"Total", d.Total.InexactFloat64()}); err != nil {
		return fmt.Errorf("failed to write total row: %w", err)
	}

	rows := max(len(d.Categories)+3, len(d.Months)+1)
	if err := f.SetCellStyle(SheetSummary, "B2", fmt.Sprintf("B%d", rows), st.amount); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	if err := f.SetCellStyle(SheetSummary, "E2", fmt.Sprintf("E%d", rows), st.amount); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, st styles, headers []string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}
