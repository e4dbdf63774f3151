// Package csvio holds the semicolon-separated CSV dialect shared by the
// import files and the audit outputs.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Separator is the field separator for every file this tool reads or writes.
const Separator = ';'

const bom = "\ufeff"

// NewReader returns a CSV reader for the semicolon dialect. A leading UTF-8
// byte order mark is skipped.
func NewReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		_, _ = br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.Comma = Separator
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

// NewWriter returns a CSV writer for the semicolon dialect.
func NewWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return cw
}

// Header maps case-insensitive column names to indexes.
type Header map[string]int

// ParseHeader indexes a header record.
func ParseHeader(record []string) Header {
	h := make(Header, len(record))
	for i, name := range record {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

// Require fails unless every named column is present.
func (h Header) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := h[strings.ToLower(n)]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the trimmed value of the first present column among names.
func (h Header) Get(record []string, names ...string) string {
	for _, n := range names {
		if i, ok := h[strings.ToLower(n)]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
	}
	return ""
}

// Has reports whether any of the named columns is present.
func (h Header) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := h[strings.ToLower(n)]; ok {
			return true
		}
	}
	return false
}

// DateLayout is the canonical date format.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "02/01/2006", "20060102", "2006-01-02 15:04:05", time.RFC3339}

// ParseDate accepts ISO dates, dd/mm/yyyy, yyyymmdd and timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDecimal accepts "1234.56" and the Brazilian "1.234,56". Empty is zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
