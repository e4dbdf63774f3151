package balances

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Header is the opening balances file header.
var Header = []string{"conta", "NOME_CTA", "BC_GROUP", "saldo", "CLAS_CTA", "BC_ACCOUNT", "empresa", "data_corte"}

const (
	numFields  = 8
	colCode    = 0
	colName    = 1
	colGroup   = 2
	colBalance = 3
	colClass   = 4
	colPath    = 5
	colCompany = 6
	colCutoff  = 7
)

// FormatAmount renders a balance with two decimals unless that would lose
// precision, so values survive a write/read cycle unchanged.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// WriteCSV writes a balance set in the opening balances file layout.
func WriteCSV(w io.Writer, res *Result) error {
	cw := csvio.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range res.Balances {
		if err := cw.Write(MarshalBalance(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalBalance converts an OpeningBalance to a CSV row.
func MarshalBalance(b model.OpeningBalance) []string {
	row := make([]string, numFields)
	row[colCode] = b.AccountCode
	row[colName] = b.AccountName
	row[colGroup] = b.Group
	row[colBalance] = FormatAmount(b.Balance)
	row[colClass] = b.ClassificationCode
	row[colPath] = b.Path
	row[colCompany] = strconv.Itoa(b.CompanyID)
	row[colCutoff] = b.CutoffDate.Format(csvio.DateLayout)
	return row
}

// UnmarshalBalance converts a CSV row to an OpeningBalance.
func UnmarshalBalance(record []string) (model.OpeningBalance, error) {
	if len(record) != numFields {
		return model.OpeningBalance{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	bal, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.OpeningBalance{}, fmt.Errorf("parsing saldo %q: %w", record[colBalance], err)
	}
	company, err := strconv.Atoi(record[colCompany])
	if err != nil {
		return model.OpeningBalance{}, fmt.Errorf("parsing empresa %q: %w", record[colCompany], err)
	}
	cutoff, err := time.Parse(csvio.DateLayout, record[colCutoff])
	if err != nil {
		return model.OpeningBalance{}, fmt.Errorf("parsing data_corte %q: %w", record[colCutoff], err)
	}

	return model.OpeningBalance{
		CompanyID:          company,
		AccountCode:        record[colCode],
		CutoffDate:         cutoff,
		Balance:            bal,
		AccountName:        record[colName],
		ClassificationCode: record[colClass],
		Group:              record[colGroup],
		Path:               record[colPath],
	}, nil
}

// ReadCSV reads an opening balances file as an Override. Company and cutoff
// come from the first row.
func ReadCSV(r io.Reader) (Override, error) {
	cr := csvio.NewReader(r)
	cr.FieldsPerRecord = numFields
	records, err := cr.ReadAll()
	if err != nil {
		return Override{}, fmt.Errorf("reading opening balances CSV: %w", err)
	}

	var o Override
	if len(records) <= 1 {
		return o, nil
	}
	for i, rec := range records[1:] {
		b, err := UnmarshalBalance(rec)
		if err != nil {
			return Override{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		if i == 0 {
			o.CompanyID = b.CompanyID
			o.Cutoff = b.CutoffDate
		}
		o.Balances = append(o.Balances, b)
	}
	return o, nil
}
