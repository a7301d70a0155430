// Package textutil holds the pure string helpers used when preparing API
// text for display: markup stripping, ruby-tag removal, and parameter
// placeholder substitution.
package textutil

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	markupRe      = regexp.MustCompile(`<.*?>|\{SPRITE_PRESET#[^\}]+\}`)
	rubyRe        = regexp.MustCompile(`\{RUBY_.[^}]*\}`)
	placeholderRe = regexp.MustCompile(`#(\d+)\[i\](%?)`)
)

// CleanupText strips markup tags and sprite-preset tokens from s and
// unescapes literal "\n" sequences.
func CleanupText(s string) string {
	return strings.ReplaceAll(markupRe.ReplaceAllString(s, ""), `\n`, "\n")
}

// RemoveRubyTags strips ruby annotation markers ({RUBY_B#...} ... {RUBY_E#})
// from s, keeping the base text.
func RemoveRubyTags(s string) string {
	return rubyRe.ReplaceAllString(s, "")
}

// ReplacePlaceholders substitutes #<n>[i] and #<n>[i]% tokens in s with
// the nth parameter (1-based), rounded to the nearest integer. The %
// variant scales the parameter by 100 and keeps the percent sign.
// Placeholders referencing a parameter beyond the list are left alone.
func ReplacePlaceholders(s string, params []float64) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(token string) string {
		groups := placeholderRe.FindStringSubmatch(token)
		index := 0
		fmt.Sscanf(groups[1], "%d", &index)
		if index < 1 || index > len(params) {
			return token
		}
		value := params[index-1]
		if groups[2] == "%" {
			return fmt.Sprintf("%d%%", int64(math.Round(value*100)))
		}
		return fmt.Sprintf("%d", int64(math.Round(value)))
	})
}

// FormatNumber renders v with the given number of digits after the
// decimal point.
func FormatNumber(digits int, v float64) string {
	return fmt.Sprintf("%.*f", digits, v)
}
