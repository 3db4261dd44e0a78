package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ecardhq/contactd/pkg/models"
)

var (
	digitsRe = regexp.MustCompile(`\D`)
	parenRe  = regexp.MustCompile(`\([^)]*\)`)

	titleCaser = cases.Title(language.Und)
)

// lowercased verbatim: addresses, handles and URLs lose nothing by folding
// case, and it makes exact lookups predictable.
var lowercasedFields = map[models.Field]struct{}{
	models.FieldEmail:            {},
	models.FieldBusinessURL:      {},
	models.FieldPersonalURL:      {},
	models.FieldSocialInstagram:  {},
	models.FieldSocialTwitter:    {},
	models.FieldSocialFacebook:   {},
	models.FieldBusinessLinkedin: {},
	models.FieldBusinessTwitter:  {},
}

// FoldAccents strips combining diacritical marks, so "José" compares equal
// to "jose" after lowercasing. Used for header matching and name heuristics.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizePhone canonicalizes a phone value for storage and search.
// Eight bare digits are treated as a Costa Rican national number and kept in
// the local "XXXX-XXXX" form; anything else is parsed and rendered as E.164
// when valid, or stored verbatim when it is not a recognizable number.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	digits := digitsRe.ReplaceAllString(s, "")
	if len(digits) == 8 && !strings.HasPrefix(s, "+") {
		return digits[:4] + "-" + digits[4:]
	}

	num, err := phonenumbers.Parse(s, "US")
	if err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	if !strings.HasPrefix(s, "+") {
		if num, err = phonenumbers.Parse("+"+digits, "US"); err == nil && phonenumbers.IsValidNumber(num) {
			return phonenumbers.Format(num, phonenumbers.E164)
		}
	}
	return s
}

// titleCasePreservingParens title-cases the text outside parentheses while
// leaving any parenthesized segments exactly as typed, so entries like
// "acme corp (USA)" keep their annotations.
func titleCasePreservingParens(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range parenRe.FindAllStringIndex(s, -1) {
		b.WriteString(titleCaser.String(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(titleCaser.String(s[last:]))
	return b.String()
}

// FormatField applies per-field presentation rules to a raw imported value.
// Business names keep their original casing (brands are styled deliberately),
// emails and URL-like fields are lowercased, everything else is title-cased
// with parenthesized text preserved.
func FormatField(field models.Field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if field == models.FieldBusinessName {
		return v
	}
	if _, ok := lowercasedFields[field]; ok {
		return strings.ToLower(v)
	}
	if field == models.FieldWorkPhone || field == models.FieldMobilePhone {
		return NormalizePhone(v)
	}
	return titleCasePreservingParens(v)
}
