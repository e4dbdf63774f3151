package accounts

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyName replaces names that normalize to nothing.
const EmptyName = "Sem-Nome"

var (
	contraMarker = regexp.MustCompile(`^\(\s*-\s*\)`)
	digitDot     = regexp.MustCompile(`(\d)\.(\d)`)
	unsafeChars  = regexp.MustCompile(`[^A-Za-z0-9\- ]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// NormalizeName turns a free-text account name into a ledger path segment:
// "(-) Depreciação Acumulada" becomes "Depreciacao-Acumulada".
// With preserveCase the token casing is kept instead of capitalized.
func NormalizeName(name string, preserveCase bool) string {
	s := strings.TrimSpace(name)
	s = contraMarker.ReplaceAllString(s, "")
	s = stripAccents(s)

	s = strings.NewReplacer("(", " ", ")", " ", "_", "-", "/", "-").Replace(s)
	s = digitDot.ReplaceAllString(s, "$1$2")
	s = strings.ReplaceAll(s, ".", "-")
	s = unsafeChars.ReplaceAllString(s, " ")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = spaceRuns.ReplaceAllString(s, " ")

	var tokens []string
	for _, field := range strings.Fields(s) {
		for _, tok := range strings.Split(field, "-") {
			if tok == "" {
				continue
			}
			if !preserveCase {
				tok = capitalize(tok)
			}
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return EmptyName
	}
	return strings.Join(tokens, "-")
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func capitalize(tok string) string {
	lower := strings.ToLower(tok)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// sanitizeSegment keeps a rule group segment usable as a path component.
func sanitizeSegment(seg string) string {
	seg = unsafeChars.ReplaceAllString(stripAccents(strings.TrimSpace(seg)), "-")
	seg = strings.ReplaceAll(seg, " ", "-")
	seg = hyphenRuns.ReplaceAllString(seg, "-")
	return strings.Trim(seg, "-")
}
