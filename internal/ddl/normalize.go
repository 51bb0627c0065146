package ddl

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent converts caller-supplied column text into the stored column
// name:
//  1. trim surrounding whitespace
//  2. NFC-compose so visually equal names compare equal
//  3. upper-case (Unicode aware)
//  4. fold every run of inner whitespace into a single underscore
//
// "Property name" and "property  NAME" both become "PROPERTY_NAME". Accents
// and punctuation are kept; quoting makes them safe in SQL.
func NormalizeIdent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Casers are stateful; build one per call.
	s = cases.Upper(language.Und).String(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
