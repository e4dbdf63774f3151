package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/ledgerport/internal/statements"
)

// Workbook sheet names.
const (
	SheetChart           = "Chart of Accounts"
	SheetBalanceSheet    = "Balance Sheet"
	SheetIncomeStatement = "Income Statement"
	SheetMovements       = "Movements"
	SheetTrialBalance    = "Trial Balance"
)

const (
	amountFormat = "#,##0.00"
	minColWidth  = 10
	maxColWidth  = 60
)

// Sheet is one named workbook tab.
type Sheet struct {
	Name  string
	Table *statements.Table
}

type styles struct {
	header, bold, amount, boldAmount int
}

// WriteWorkbook renders each table on its own sheet: a bold header row,
// text columns as strings (so account codes keep leading zeros) and value
// columns as numbers formatted #,##0.00.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("writing workbook: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("creating styles: %w", err)
	}

	for i, s := range sheets {
		idx, err := f.NewSheet(s.Name)
		if err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, s, st); err != nil {
			return fmt.Errorf("writing sheet %q: %w", s.Name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	numFmt := amountFormat
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	}); err != nil {
		return st, err
	}
	if st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return st, err
	}
	if st.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return st, err
	}
	st.boldAmount, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt})
	return st, err
}

func writeSheet(f *excelize.File, s Sheet, st styles) error {
	t := s.Table
	headers := append(append([]string{}, t.TextColumns...), t.ValueColumns...)
	widths := make([]int, len(headers))

	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(s.Name, cell, h); err != nil {
			return err
		}
		widths[c] = utf8.RuneCountInString(h)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A1", last, st.header); err != nil {
		return err
	}

	nText := len(t.TextColumns)
	for r, row := range t.Rows {
		rowNum := r + 2
		emphasis := row.Kind == statements.RowSection || row.Kind == statements.RowTotal ||
			row.Kind == statements.RowGrand || row.Kind == statements.RowGroup
		for c, text := range row.Text {
			if c >= nText || text == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			if err := f.SetCellStr(s.Name, cell, text); err != nil {
				return err
			}
			if emphasis {
				if err := f.SetCellStyle(s.Name, cell, cell, st.bold); err != nil {
					return err
				}
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(text))
		}
		for c, v := range row.Values {
			col := nText + c
			if col >= len(headers) {
				break
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellFloat(s.Name, cell, v.InexactFloat64(), 2, 64); err != nil {
				return err
			}
			style := st.amount
			if emphasis {
				style = st.boldAmount
			}
			if err := f.SetCellStyle(s.Name, cell, cell, style); err != nil {
				return err
			}
			widths[col] = max(widths[col], len(v.StringFixed(2))+4)
		}
	}

	for c, wdt := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(wdt+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(s.Name, name, name, width); err != nil {
			return err
		}
	}
	return f.SetPanes(s.Name, &excelize.Panes{Freeze: true, Split: false, XSplit: 0, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
