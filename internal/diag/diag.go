// Package diag defines the fatal error types and the non-fatal diagnostics
// collected while classifying accounts and building balances.
package diag

import (
	"fmt"
	"strings"
)

// Kind identifies a non-fatal diagnostic.
type Kind string

const (
	ClassificationWarning  Kind = "classification"
	IntegrityWarning       Kind = "integrity"
	OrphanReferenceWarning Kind = "orphan-reference"
	// SkippedRow records a row rejected under skip-and-collect validation.
	SkippedRow Kind = "skipped-row"
)

// Diagnostic is a data-quality finding. It never aborts a run on its own.
type Diagnostic struct {
	Kind      Kind
	CompanyID int
	Account   string // account code, empty when not account-specific
	Message   string
}

func (d Diagnostic) String() string {
	if d.Account == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.Account, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(kind Kind, company int, account, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Kind:      kind,
		CompanyID: company,
		Account:   account,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Extend appends every diagnostic in other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// Count returns how many diagnostics have the given kind.
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics of the given kind.
func (l List) Filter(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// ConfigurationError reports an unusable configuration, such as an unknown
// classification model or a malformed customization table. Fatal.
type ConfigurationError struct {
	Setting     string
	Description string
	Err         error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration %s: %s", e.Setting, e.Description)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports a structurally invalid input row.
type ValidationError struct {
	Record      string // which row, e.g. "account row 3"
	Field       string
	Description string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Record, e.Description)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Record, e.Field, e.Description)
}

// StrictError is returned in strict mode when a run produced diagnostics.
type StrictError struct {
	Diagnostics List
}

func (e *StrictError) Error() string {
	kinds := make(map[Kind]int)
	var order []Kind
	for _, d := range e.Diagnostics {
		if _, ok := kinds[d.Kind]; !ok {
			order = append(order, d.Kind)
		}
		kinds[d.Kind]++
	}
	parts := make([]string, 0, len(order))
	for _, k := range order {
		parts = append(parts, fmt.Sprintf("%d %s", kinds[k], k))
	}
	return "strict mode: run produced diagnostics (" + strings.Join(parts, ", ") + ")"
}

// Enforce returns a *StrictError when strict is set and l is non-empty.
func Enforce(strict bool, l List) error {
	if strict && len(l) > 0 {
		return &StrictError{Diagnostics: l}
	}
	return nil
}
