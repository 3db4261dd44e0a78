package ingest

import "strings"

// ParsedName is the outcome of splitting a raw name entry.
type ParsedName struct {
	FirstName string
	LastName  string
	FullName  string
}

// spanishGivenNames anchors the surname-first detection below. The set only
// needs to cover names common in the imported data, not be exhaustive.
var spanishGivenNames = map[string]struct{}{
	"jose": {}, "maria": {}, "juan": {}, "carlos": {}, "luis": {}, "ana": {},
	"pedro": {}, "francisco": {}, "miguel": {}, "antonio": {}, "manuel": {},
	"jesus": {}, "raul": {}, "eduardo": {}, "alberto": {}, "jorge": {},
	"roberto": {}, "ricardo": {}, "fernando": {}, "rafael": {}, "andres": {},
	"diego": {}, "daniel": {}, "alejandro": {}, "javier": {}, "sergio": {},
	"pablo": {}, "enrique": {}, "ramon": {}, "sofia": {}, "isabel": {},
	"carmen": {}, "rosa": {}, "laura": {}, "patricia": {}, "monica": {},
	"andrea": {}, "cristina": {}, "elena": {}, "teresa": {}, "beatriz": {},
	"silvia": {}, "marta": {}, "valeria": {}, "gabriela": {}, "carolina": {},
	"paula": {}, "adriana": {}, "natalia": {}, "alexander": {}, "david": {},
	"victor": {}, "william": {}, "stephanie": {}, "melissa": {}, "jessica": {},
	"michael": {}, "kevin": {}, "steven": {}, "jonathan": {}, "christopher": {},
	"oscar": {}, "gustavo": {}, "esteban": {}, "tatiana": {}, "viviana": {},
}

var spanishSurnamePrefixes = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "los": {}, "las": {}, "y": {},
	"von": {}, "van": {}, "di": {}, "da": {}, "dos": {}, "angeles": {},
}

func normalizeWord(w string) string {
	return FoldAccents(strings.ToLower(w))
}

func isGivenName(w string) bool {
	_, ok := spanishGivenNames[normalizeWord(w)]
	return ok
}

// ParseName splits a raw name into first and last components.
//
// Spanish rosters frequently list surnames first ("RODRIGUEZ MORA MARIA"),
// so the parser first decides the word order: a leading known given name
// means normal order, trailing known given names (or an all-caps entry of
// three or more words) mean surname-first. In surname-first entries the
// first two words are the paternal and maternal surnames and the remainder
// is the given name. The returned components are title-cased.
func ParseName(raw string) ParsedName {
	raw = strings.TrimSpace(raw)
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return ParsedName{}
	}

	surnameFirst := false
	if len(parts) >= 2 && !isGivenName(parts[0]) {
		switch {
		case len(parts) == 4:
			surnameFirst = isGivenName(parts[2]) && isGivenName(parts[3])
		case len(parts) >= 3 && raw == strings.ToUpper(raw):
			surnameFirst = true
		}
	}

	var first, last string
	switch {
	case surnameFirst:
		if len(parts) == 2 {
			last, first = parts[0], parts[1]
		} else {
			last = strings.Join(parts[:2], " ")
			first = strings.Join(parts[2:], " ")
		}
	case len(parts) == 3:
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	case len(parts) >= 4:
		if isGivenName(parts[0]) && isGivenName(parts[1]) {
			first = strings.Join(parts[:2], " ")
			last = strings.Join(parts[2:], " ")
		} else {
			first = parts[0]
			last = strings.Join(parts[1:], " ")
		}
	case len(parts) == 2:
		first, last = parts[0], parts[1]
	default:
		first = parts[0]
	}

	first = titleCaser.String(first)
	last = titleCaser.String(last)
	full := strings.TrimSpace(first + " " + last)
	if full == "" {
		full = titleCaser.String(raw)
	}
	return ParsedName{FirstName: first, LastName: last, FullName: full}
}
