package accounts

import (
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Chart provides in-memory lookup over a classified chart of accounts.
type Chart struct {
	accounts []model.ClassifiedAccount
	byCode   map[string]model.ClassifiedAccount
	lookup   Lookup
}

// NewChart indexes classified accounts.
func NewChart(accts []model.ClassifiedAccount) *Chart {
	byCode := make(map[string]model.ClassifiedAccount, len(accts))
	for _, a := range accts {
		byCode[a.Code] = a
	}
	return &Chart{accounts: accts, byCode: byCode, lookup: BuildLookup(accts)}
}

// All returns all accounts in mapping order.
func (c *Chart) All() []model.ClassifiedAccount {
	if c == nil {
		return nil
	}
	return c.accounts
}

// Get returns an account by code.
func (c *Chart) Get(code string) (model.ClassifiedAccount, bool) {
	if c == nil {
		return model.ClassifiedAccount{}, false
	}
	a, ok := c.byCode[code]
	return a, ok
}

// Exists reports whether an account code is in the chart.
func (c *Chart) Exists(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byCode[code]
	return ok
}

// Path returns the hierarchical path for a code, or "" when absent.
func (c *Chart) Path(code string) string {
	if c == nil {
		return ""
	}
	return c.lookup.CodeToPath[code]
}

// Lookup returns the code and path indexes.
func (c *Chart) Lookup() Lookup {
	return c.lookup
}

// ByCategory returns all accounts in the given category.
func (c *Chart) ByCategory(cat model.Category) []model.ClassifiedAccount {
	var result []model.ClassifiedAccount
	for _, a := range c.All() {
		if a.Category == cat {
			result = append(result, a)
		}
	}
	return result
}
