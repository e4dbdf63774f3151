package classify

import (
	"strings"

	"github.com/cleared-dev/ledgerport/internal/model"
)

// Method records which step of the resolution order produced a result.
type Method int

const (
	ByTypeFlag Method = iota + 1
	ByPrefix
	ByLeadingDigit
	Unresolved
)

func (m Method) String() string {
	switch m {
	case ByTypeFlag:
		return "type-flag"
	case ByPrefix:
		return "prefix"
	case ByLeadingDigit:
		return "leading-digit"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of classifying one account.
type Resolution struct {
	Group    string
	Category model.Category
	Method   Method

	// CodeCategory is what the classification code alone resolves to,
	// regardless of any type flag.
	CodeCategory model.Category
}

// Ambiguous reports whether a type flag overrode a code that resolves to a
// different category.
func (r Resolution) Ambiguous() bool {
	return r.Method == ByTypeFlag &&
		r.CodeCategory != model.CategoryUnclassified &&
		r.CodeCategory != r.Category
}

var typeFlags = map[string]model.Category{
	"A": model.CategoryAssets,
	"L": model.CategoryLiabilities,
	"E": model.CategoryEquity,
	"I": model.CategoryIncome,
	"R": model.CategoryIncome,
	"X": model.CategoryExpenses,
	"D": model.CategoryExpenses,
}

var leadingDigits = map[byte]model.Category{
	'1': model.CategoryAssets,
	'2': model.CategoryLiabilities,
	'3': model.CategoryEquity,
	'4': model.CategoryIncome,
	'5': model.CategoryIncome,
	'6': model.CategoryExpenses,
	'7': model.CategoryExpenses,
}

// Classify returns the group for a classification code and optional type
// flag. It is total: codes nothing matches yield "Unclassified".
func Classify(code, typeFlag string, t *Table) string {
	return Resolve(code, typeFlag, t).Group
}

// Resolve classifies with full detail. Resolution order: type flag, longest
// rule prefix, leading digit, Unclassified.
func Resolve(code, typeFlag string, t *Table) Resolution {
	byCode := resolveCode(code, t)

	if cat, ok := typeFlags[strings.ToUpper(strings.TrimSpace(typeFlag))]; ok {
		return Resolution{
			Group:        string(cat),
			Category:     cat,
			Method:       ByTypeFlag,
			CodeCategory: byCode.Category,
		}
	}
	return byCode
}

func resolveCode(code string, t *Table) Resolution {
	if group, ok := t.Lookup(code); ok {
		cat := model.ParseCategory(group)
		return Resolution{Group: group, Category: cat, Method: ByPrefix, CodeCategory: cat}
	}

	norm := NormalizeCode(code)
	if norm != "" {
		if cat, ok := leadingDigits[norm[0]]; ok {
			return Resolution{Group: string(cat), Category: cat, Method: ByLeadingDigit, CodeCategory: cat}
		}
	}

	return Resolution{
		Group:        string(model.CategoryUnclassified),
		Category:     model.CategoryUnclassified,
		Method:       Unresolved,
		CodeCategory: model.CategoryUnclassified,
	}
}
