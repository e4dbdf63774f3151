package accounts

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Column names accepted in chart-of-accounts files. The first name of each
// pair is the source system's, the second the English alias. TIPO_CTA is the
// analytic/synthetic mark, not a category; a category flag is only read from
// an explicit type_flag column.
var (
	colCompany = []string{"CODI_EMP", "company_id"}
	colCode    = []string{"CODI_CTA", "account_code"}
	colName    = []string{"NOME_CTA", "account_name"}
	colClass   = []string{"CLAS_CTA", "classification_code"}
	colKind    = []string{"TIPO_CTA", "account_kind"}
	colType    = []string{"type_flag"}
	colStatus  = []string{"SITUACAO_CTA", "status"}
)

// ReadAccounts reads a semicolon-separated chart of accounts. When the file
// has no company column, every row gets defaultCompany.
func ReadAccounts(r io.Reader, defaultCompany int) ([]model.RawAccount, error) {
	records, err := csvio.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	h := csvio.ParseHeader(records[0])
	if !h.Has(colCode...) {
		return nil, fmt.Errorf("reading accounts CSV: missing column %s", colCode[0])
	}

	var accts []model.RawAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(h, rec, defaultCompany)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// UnmarshalAccount converts a CSV row to a RawAccount.
func UnmarshalAccount(h csvio.Header, record []string, defaultCompany int) (model.RawAccount, error) {
	company := defaultCompany
	if v := h.Get(record, colCompany...); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.RawAccount{}, fmt.Errorf("parsing company %q: %w", v, err)
		}
		company = n
	}

	return model.RawAccount{
		CompanyID:          company,
		Code:               h.Get(record, colCode...),
		Name:               h.Get(record, colName...),
		ClassificationCode: h.Get(record, colClass...),
		TypeFlag:           h.Get(record, colType...),
		Kind:               model.AccountKind(strings.ToUpper(h.Get(record, colKind...))),
		Status:             model.AccountStatus(h.Get(record, colStatus...)),
	}, nil
}

// MapHeader is the header of the account map file.
var MapHeader = []string{"CODI_CTA", "CLAS_CTA", "NOME_CTA", "BC_GROUP", "BC_ACCOUNT"}

// WriteMap writes the code → path map consumed alongside the ledger.
func WriteMap(w io.Writer, accts []model.ClassifiedAccount) error {
	cw := csvio.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(MapHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accts {
		row := []string{a.Code, a.ClassificationCode, a.Name, a.Group, a.Path}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
