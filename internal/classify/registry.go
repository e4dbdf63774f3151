package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerport/internal/diag"
	"github.com/cleared-dev/ledgerport/internal/model"
)

// Models returns the built-in model names, sorted.
func Models() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a copy of a built-in model's rules.
func Builtin(name string) (map[string]string, bool) {
	rules, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(rules))
	for k, v := range rules {
		out[k] = v
	}
	return out, true
}

// ResolveModel returns the rule table for a base model with customizations
// merged on top. An empty name means no base model: the table then holds
// only the customizations.
func ResolveModel(name string, customizations map[string]string) (*Table, error) {
	if err := ValidateCustomizations(customizations); err != nil {
		return nil, err
	}

	rules := make(map[string]string)
	if strings.TrimSpace(name) != "" {
		base, ok := Builtin(name)
		if !ok {
			return nil, &diag.ConfigurationError{
				Setting:     "model",
				Description: fmt.Sprintf("unknown classification model %q (available: %s)", name, strings.Join(Models(), ", ")),
			}
		}
		rules = base
	}

	// Customization keys are normalized before merging so "1.1" overrides "11".
	for k, v := range customizations {
		rules[NormalizeCode(k)] = strings.TrimSpace(v)
	}
	return NewTable(rules), nil
}

// ValidateCustomizations rejects empty prefixes and groups that are not
// rooted in one of the five categories.
func ValidateCustomizations(customizations map[string]string) error {
	keys := make([]string, 0, len(customizations))
	for k := range customizations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if NormalizeCode(k) == "" {
			return &diag.ConfigurationError{Setting: "classification", Description: fmt.Sprintf("empty prefix %q", k)}
		}
		if err := validateGroup(customizations[k]); err != nil {
			return &diag.ConfigurationError{Setting: "classification", Description: fmt.Sprintf("prefix %q", k), Err: err}
		}
	}
	return nil
}

func validateGroup(group string) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return fmt.Errorf("empty group")
	}
	if model.ParseCategory(group) == model.CategoryUnclassified {
		return fmt.Errorf("group %q must start with one of Assets, Liabilities, Equity, Income, Expenses", group)
	}
	for _, seg := range strings.Split(group, ":") {
		if seg == "" || strings.ContainsAny(seg, " \t") {
			return fmt.Errorf("group %q has an empty or blank segment", group)
		}
	}
	return nil
}
