package ingest

import (
	"strings"

	"github.com/ecardhq/contactd/pkg/models"
)

func normalizeHeader(h string) string {
	return FoldAccents(strings.ToLower(strings.TrimSpace(h)))
}

// cleanValue trims a raw cell and drops placeholder values. Spreadsheet
// exports render integers in text columns as floats, so a trailing ".0" is
// stripped. "0" alone is a common stand-in for "no value" in the source
// files and is treated as empty.
func cleanValue(v string) string {
	s := strings.TrimSpace(v)
	s = strings.TrimSuffix(s, ".0")
	if s == "" || s == "0" {
		return ""
	}
	return s
}

// MapRow maps one data row onto canonical contact fields using the column
// aliases, applying per-field formatting. Columns matching no alias are
// returned in the extras map so imported data is never dropped.
//
// Name fields need their original casing for order detection, so they skip
// formatting until after the name heuristics run: a first name holding a
// multi-word string is split, and a missing full name is derived from its
// parts (and vice versa).
func MapRow(headers []string, row []string) (models.FieldUpdates, models.StringMap) {
	cells := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := cells[key]; !dup && key != "" {
			cells[key] = i
		}
	}

	mapped := make(models.FieldUpdates)
	consumed := make(map[int]struct{})
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			idx, ok := cells[normalizeHeader(alias)]
			if !ok {
				continue
			}
			consumed[idx] = struct{}{}
			var raw string
			if idx < len(row) {
				raw = row[idx]
			}
			val := cleanValue(raw)
			if val == "" {
				continue
			}
			switch field {
			case models.FieldFirstName, models.FieldLastName, models.FieldFullName:
				mapped[field] = val
			default:
				mapped[field] = FormatField(field, val)
			}
			break
		}
	}

	resolveNames(mapped)

	extra := make(models.StringMap)
	for i, h := range headers {
		if _, ok := consumed[i]; ok {
			continue
		}
		key := normalizeHeader(h)
		if key == "" || i >= len(row) {
			continue
		}
		if val := cleanValue(row[i]); val != "" {
			extra[key] = val
		}
	}
	return mapped, extra
}

func resolveNames(mapped models.FieldUpdates) {
	first := mapped[models.FieldFirstName]
	last := mapped[models.FieldLastName]
	full := mapped[models.FieldFullName]

	switch {
	case first != "" && last == "" && strings.Contains(first, " "):
		// The whole name landed in one column.
		parsed := ParseName(first)
		mapped[models.FieldFirstName] = parsed.FirstName
		mapped[models.FieldLastName] = parsed.LastName
		mapped[models.FieldFullName] = parsed.FullName
	case full != "" && first == "":
		parsed := ParseName(full)
		mapped[models.FieldFirstName] = parsed.FirstName
		if parsed.LastName != "" {
			mapped[models.FieldLastName] = parsed.LastName
		}
		mapped[models.FieldFullName] = parsed.FullName
	case full == "" && first != "":
		composed := strings.TrimSpace(first + " " + last)
		mapped[models.FieldFullName] = titleCaser.String(composed)
	}

	for _, f := range []models.Field{models.FieldWorkPhone, models.FieldMobilePhone} {
		if v, ok := mapped[f]; ok && v != "" {
			mapped[f] = NormalizePhone(v)
		}
	}
}
