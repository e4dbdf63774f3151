package accounts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerport/internal/classify"
	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// DefaultSubgroupDepth is the number of group levels kept under the category.
const DefaultSubgroupDepth = 2

// Options controls how a chart is mapped.
type Options struct {
	// SubgroupDepth caps the group segments kept between the category and
	// the account name. Zero gives flat "Category:Name" paths.
	SubgroupDepth int
	PreserveCase  bool
	// ActiveOnly drops inactive accounts before mapping.
	ActiveOnly bool
	// SkipInvalid records invalid rows as diagnostics instead of failing.
	SkipInvalid bool
}

// DefaultOptions returns the mapping defaults.
func DefaultOptions() Options {
	return Options{SubgroupDepth: DefaultSubgroupDepth}
}

// Mapper classifies raw chart rows and assigns hierarchical paths.
type Mapper struct {
	table *classify.Table
	opts  Options
}

// NewMapper creates a Mapper over a resolved rule table.
func NewMapper(table *classify.Table, opts Options) *Mapper {
	if opts.SubgroupDepth < 0 {
		opts.SubgroupDepth = 0
	}
	return &Mapper{table: table, opts: opts}
}

// ProcessChart classifies every account and assigns a unique path. Rows
// with an empty or duplicate account code fail with *diag.ValidationError
// unless SkipInvalid is set.
func (m *Mapper) ProcessChart(raw []model.RawAccount) ([]model.ClassifiedAccount, diag.List, error) {
	var diags diag.List
	seen := make(map[string]bool, len(raw))
	out := make([]model.ClassifiedAccount, 0, len(raw))

	for i, acct := range raw {
		acct.Code = strings.TrimSpace(acct.Code)
		if err := validateRow(i, acct, seen); err != nil {
			if !m.opts.SkipInvalid {
				return nil, nil, err
			}
			diags.Add(diag.SkippedRow, acct.CompanyID, acct.Code, "%s", err.Error())
			continue
		}
		seen[acct.Code] = true

		if m.opts.ActiveOnly && !acct.Active() {
			continue
		}
		out = append(out, m.classify(acct, &diags))
	}

	m.assignPaths(out, &diags)
	return out, diags, nil
}

func validateRow(i int, acct model.RawAccount, seen map[string]bool) error {
	record := fmt.Sprintf("account row %d", i+1)
	if acct.Code == "" {
		return &diag.ValidationError{Record: record, Field: "account_code", Description: "is empty"}
	}
	if seen[acct.Code] {
		return &diag.ValidationError{Record: record, Field: "account_code", Description: fmt.Sprintf("%q is duplicated", acct.Code)}
	}
	return nil
}

func (m *Mapper) classify(acct model.RawAccount, diags *diag.List) model.ClassifiedAccount {
	res := classify.Resolve(acct.ClassificationCode, acct.TypeFlag, m.table)

	switch {
	case res.Category == model.CategoryUnclassified:
		diags.Add(diag.ClassificationWarning, acct.CompanyID, acct.Code,
			"classification code %q matched no rule; filed under %s", acct.ClassificationCode, model.CategoryUnclassified)
	case res.Ambiguous():
		diags.Add(diag.ClassificationWarning, acct.CompanyID, acct.Code,
			"type flag %q resolves to %s but classification code %q resolves to %s",
			acct.TypeFlag, res.Category, acct.ClassificationCode, res.CodeCategory)
	}

	return model.ClassifiedAccount{
		RawAccount:     acct,
		Category:       res.Category,
		Group:          res.Group,
		NormalizedName: NormalizeName(acct.Name, m.opts.PreserveCase),
		Ambiguous:      res.Ambiguous(),
		CodeCategory:   res.CodeCategory,
	}
}

// groupPrefix returns "Category[:Sub...]" truncated to the subgroup depth.
func (m *Mapper) groupPrefix(a model.ClassifiedAccount) string {
	segs := []string{string(a.Category)}
	parts := strings.Split(a.Group, ":")
	for _, p := range parts[1:] {
		if len(segs)-1 >= m.opts.SubgroupDepth {
			break
		}
		if seg := sanitizeSegment(p); seg != "" {
			segs = append(segs, seg)
		}
	}
	return strings.Join(segs, ":")
}

func (m *Mapper) assignPaths(accts []model.ClassifiedAccount, diags *diag.List) {
	for i := range accts {
		accts[i].Path = m.groupPrefix(accts[i]) + ":" + accts[i].NormalizedName
	}

	// A suffixed path can still clash with another account's plain path, so
	// each pass suffixes only accounts that have not been suffixed yet.
	suffixed := make([]bool, len(accts))
	for {
		counts := pathCounts(accts)
		clashed := false
		for i := range accts {
			if counts[accts[i].Path] > 1 && !suffixed[i] {
				accts[i].Path += "-" + codeSuffix(accts[i].Code)
				suffixed[i] = true
				clashed = true
			}
		}
		if !clashed {
			break
		}
	}

	// Codes that differ only in punctuation ("1.1" and "1-1") still share a
	// path here. The first account keeps it; the rest get a counter.
	counts := pathCounts(accts)
	used := make(map[string]bool, len(accts))
	for _, a := range accts {
		used[a.Path] = true
	}
	kept := make(map[string]bool)
	for i := range accts {
		p := accts[i].Path
		if counts[p] == 1 {
			continue
		}
		if !kept[p] {
			kept[p] = true
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", p, n)
			if !used[candidate] {
				accts[i].Path = candidate
				used[candidate] = true
				break
			}
		}
		diags.Add(diag.ClassificationWarning, accts[i].CompanyID, accts[i].Code,
			"path %s is shared with another account; renamed to %s", p, accts[i].Path)
	}
}

func pathCounts(accts []model.ClassifiedAccount) map[string]int {
	counts := make(map[string]int, len(accts))
	for _, a := range accts {
		counts[a.Path]++
	}
	return counts
}

// codeSuffix keeps letters and digits and turns each run of separators into
// one hyphen, so "1.1" and "11" stay distinct.
func codeSuffix(code string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.TrimSpace(code) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// Lookup indexes classified accounts by code and by path.
type Lookup struct {
	CodeToPath  map[string]string
	PathToCodes map[string][]string
}

// BuildLookup builds both indexes. Every account appears in CodeToPath,
// Unclassified ones included.
func BuildLookup(accts []model.ClassifiedAccount) Lookup {
	l := Lookup{
		CodeToPath:  make(map[string]string, len(accts)),
		PathToCodes: make(map[string][]string, len(accts)),
	}
	for _, a := range accts {
		l.CodeToPath[a.Code] = a.Path
		l.PathToCodes[a.Path] = append(l.PathToCodes[a.Path], a.Code)
	}
	for _, codes := range l.PathToCodes {
		sort.Strings(codes)
	}
	return l
}
