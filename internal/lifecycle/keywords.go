package lifecycle

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Keywords splits texts into normalized search terms: NFKC-normalized,
// case-folded, split on anything that is not a letter or digit, and
// deduplicated in order of first appearance.
func Keywords(texts ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range texts {
		text = folder.String(norm.NFKC.String(text))
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, f := range fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
