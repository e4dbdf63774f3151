package journal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/ledgerport/internal/csvio"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Column names accepted in entry files: the source system's, then English.
var (
	colCompany     = []string{"codi_emp", "company_id"}
	colNumber      = []string{"nume_lan", "entry_number"}
	colDate        = []string{"data_lan", "entry_date"}
	colAmount      = []string{"vlor_lan", "amount"}
	colDebit       = []string{"cdeb_lan", "debit_account"}
	colCredit      = []string{"ccre_lan", "credit_account"}
	colHistoryCode = []string{"codi_his", "history_code"}
	colHistory     = []string{"chis_lan", "history"}
	colDocument    = []string{"ndoc_lan", "document"}
	colBatch       = []string{"codi_lote", "batch_id"}
	colUser        = []string{"codi_usu", "user_code"}
	colOrigin      = []string{"orig_lan", "origin"}
)

// Field positions in the headerless leg extract:
// codi_emp;nume_lan;data_lan;codi_lote;tipo_lote;codi_his;chis_lan;ndoc_lan;
// codi_usu;natureza;conta[;nome_cta;clas_cta];valor
const (
	legCompany = iota
	legNumber
	legDate
	legBatch
	legBatchType
	legHistoryCode
	legHistory
	legDocument
	legUser
	legSide
	legAccount
)

// ReadEntries reads semicolon-separated journal lines. Two layouts are
// accepted: a headed file with cdeb_lan/ccre_lan columns, one line per
// entry, and the source system's headerless extract of 12 or 14 columns,
// one row per leg.
func ReadEntries(r io.Reader, defaultCompany int) ([]model.Entry, error) {
	records, err := csvio.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading entries CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if isLegExtract(records[0]) {
		return readLegs(records, defaultCompany)
	}

	h := csvio.ParseHeader(records[0])
	for _, col := range [][]string{colDate, colAmount} {
		if !h.Has(col...) {
			return nil, fmt.Errorf("reading entries CSV: missing column %s", col[0])
		}
	}

	var entries []model.Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(h, rec, defaultCompany)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(h csvio.Header, record []string, defaultCompany int) (model.Entry, error) {
	e := model.Entry{
		CompanyID:     defaultCompany,
		DebitAccount:  h.Get(record, colDebit...),
		CreditAccount: h.Get(record, colCredit...),
		HistoryCode:   h.Get(record, colHistoryCode...),
		History:       h.Get(record, colHistory...),
		Document:      h.Get(record, colDocument...),
		BatchID:       h.Get(record, colBatch...),
		UserCode:      h.Get(record, colUser...),
	}

	var err error
	if v := h.Get(record, colCompany...); v != "" {
		if e.CompanyID, err = strconv.Atoi(v); err != nil {
			return model.Entry{}, fmt.Errorf("parsing company %q: %w", v, err)
		}
	}
	if v := h.Get(record, colNumber...); v != "" {
		if e.Number, err = strconv.ParseInt(v, 10, 64); err != nil {
			return model.Entry{}, fmt.Errorf("parsing entry number %q: %w", v, err)
		}
	}
	if v := h.Get(record, colOrigin...); v != "" {
		if e.Origin, err = strconv.Atoi(v); err != nil {
			return model.Entry{}, fmt.Errorf("parsing origin %q: %w", v, err)
		}
	}
	if e.Date, err = csvio.ParseDate(h.Get(record, colDate...)); err != nil {
		return model.Entry{}, err
	}
	if e.Amount, err = csvio.ParseDecimal(h.Get(record, colAmount...)); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

func isLegExtract(record []string) bool {
	if len(record) != 12 && len(record) != 14 {
		return false
	}
	_, err := strconv.ParseInt(strings.TrimSpace(record[legNumber]), 10, 64)
	return err == nil
}

func readLegs(records [][]string, defaultCompany int) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(records))
	for i, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		e, err := UnmarshalLeg(rec, defaultCompany)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UnmarshalLeg converts one row of the headerless leg extract to an Entry
// carrying a single side. natureza D puts the account on the debit side, C
// on the credit side. Amounts are stored as magnitudes.
func UnmarshalLeg(record []string, defaultCompany int) (model.Entry, error) {
	if len(record) != 12 && len(record) != 14 {
		return model.Entry{}, fmt.Errorf("expected 12 or 14 fields, got %d", len(record))
	}
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	e := model.Entry{
		CompanyID:   defaultCompany,
		BatchID:     field(legBatch),
		HistoryCode: field(legHistoryCode),
		History:     field(legHistory),
		Document:    field(legDocument),
		UserCode:    field(legUser),
	}

	var err error
	if v := field(legCompany); v != "" {
		if e.CompanyID, err = strconv.Atoi(v); err != nil {
			return model.Entry{}, fmt.Errorf("parsing company %q: %w", v, err)
		}
	}
	if e.Number, err = strconv.ParseInt(field(legNumber), 10, 64); err != nil {
		return model.Entry{}, fmt.Errorf("parsing entry number %q: %w", field(legNumber), err)
	}
	if e.Date, err = csvio.ParseDate(field(legDate)); err != nil {
		return model.Entry{}, err
	}
	if e.Amount, err = csvio.ParseDecimal(field(len(record) - 1)); err != nil {
		return model.Entry{}, err
	}
	e.Amount = e.Amount.Abs()

	switch side := model.Side(strings.ToUpper(field(legSide))); side {
	case model.SideDebit:
		e.DebitAccount = field(legAccount)
	case model.SideCredit:
		e.CreditAccount = field(legAccount)
	default:
		return model.Entry{}, fmt.Errorf("invalid natureza %q", field(legSide))
	}
	return e, nil
}
