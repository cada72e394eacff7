// SPDX-License-Identifier: MIT

package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Slugify derives a stable identifier from a skin display name. The same
// name must slug identically on every platform, so the input is Unicode
// normalised and case folded before reduction to [a-z0-9-].
func Slugify(name string) string {
	folded := foldCaser.String(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := true // suppress leading dashes
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// Non-ASCII letters survive; they are already folded.
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
