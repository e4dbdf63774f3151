package model

import "strings"

// Category is one of the five top-level reporting categories, or Unclassified.
type Category string

const (
	CategoryAssets       Category = "Assets"
	CategoryLiabilities  Category = "Liabilities"
	CategoryEquity       Category = "Equity"
	CategoryIncome       Category = "Income"
	CategoryExpenses     Category = "Expenses"
	CategoryUnclassified Category = "Unclassified"
)

// Categories lists the five reporting categories in statement order.
var Categories = []Category{
	CategoryAssets,
	CategoryLiabilities,
	CategoryEquity,
	CategoryIncome,
	CategoryExpenses,
}

// IsBalanceSheet reports whether c belongs on the balance sheet.
func (c Category) IsBalanceSheet() bool {
	return c == CategoryAssets || c == CategoryLiabilities || c == CategoryEquity
}

// IsIncomeStatement reports whether c belongs on the income statement.
func (c Category) IsIncomeStatement() bool {
	return c == CategoryIncome || c == CategoryExpenses
}

// ParseCategory returns the category named by the first segment of a group
// such as "Assets:Ativo-Circulante". Unknown roots are Unclassified.
func ParseCategory(group string) Category {
	root, _, _ := strings.Cut(strings.TrimSpace(group), ":")
	for _, c := range Categories {
		if strings.EqualFold(root, string(c)) {
			return c
		}
	}
	return CategoryUnclassified
}

// AccountStatus is the source system's active/inactive flag.
type AccountStatus string

const (
	StatusActive   AccountStatus = "A"
	StatusInactive AccountStatus = "I"
)

// AccountKind is the source system's analytic/synthetic mark. It plays no
// part in classification.
type AccountKind string

const (
	KindAnalytic  AccountKind = "A"
	KindSynthetic AccountKind = "S"
)

// RawAccount is one row of a company's chart of accounts as extracted.
type RawAccount struct {
	CompanyID          int
	Code               string
	Name               string
	ClassificationCode string // may be empty
	TypeFlag           string // optional single letter
	Kind               AccountKind
	Status             AccountStatus
}

// Active reports whether the account is active. Accounts without a status
// are treated as active.
func (a RawAccount) Active() bool {
	return a.Status == "" || strings.EqualFold(string(a.Status), string(StatusActive))
}

// ClassifiedAccount is a RawAccount enriched by the mapper.
type ClassifiedAccount struct {
	RawAccount

	Category       Category
	Group          string // rule value the account resolved to, e.g. "Assets:Ativo-Circulante"
	NormalizedName string
	Path           string // e.g. "Assets:Ativo-Circulante:Caixa"

	// Ambiguous is set when the type flag and the classification code
	// resolve to different categories.
	Ambiguous bool
	// CodeCategory is the category the classification code alone resolves to.
	CodeCategory Category
}
