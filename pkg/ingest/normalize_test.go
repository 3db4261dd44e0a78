package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecardhq/contactd/pkg/models"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"costa rica landline digits", "22223333", "2222-3333"},
		{"costa rica with separators", "2222 3333", "2222-3333"},
		{"already formatted local", "2222-3333", "2222-3333"},
		{"us number to e164", "650-253-0000", "+16502530000"},
		{"international kept as e164", "+50622223333", "+50622223333"},
		{"not a number kept verbatim", "ask reception", "ask reception"},
		{"too short kept verbatim", "123", "123"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestFormatFieldBusinessNameUntouched(t *testing.T) {
	assert.Equal(t, "iSolutions CR", FormatField(models.FieldBusinessName, " iSolutions CR "))
}

func TestFormatFieldLowercasesEmailAndURLs(t *testing.T) {
	assert.Equal(t, "maria@example.com", FormatField(models.FieldEmail, "Maria@Example.COM"))
	assert.Equal(t, "https://example.com/about", FormatField(models.FieldBusinessURL, "HTTPS://Example.com/About"))
	assert.Equal(t, "@mariacr", FormatField(models.FieldSocialInstagram, "@MariaCR"))
}

func TestFormatFieldTitleCasesEverythingElse(t *testing.T) {
	assert.Equal(t, "Gerente De Ventas", FormatField(models.FieldBusinessTitle, "gerente de ventas"))
	assert.Equal(t, "San José", FormatField(models.FieldAddressCity, "san josé"))
}

func TestFormatFieldPreservesParentheses(t *testing.T) {
	got := FormatField(models.FieldBusinessTitle, "director regional (LATAM y USA)")
	assert.Equal(t, "Director Regional (LATAM y USA)", got)
}

func TestFormatFieldNormalizesPhones(t *testing.T) {
	assert.Equal(t, "2222-3333", FormatField(models.FieldWorkPhone, "22223333"))
	assert.Equal(t, "+16502530000", FormatField(models.FieldMobilePhone, "6502530000"))
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Jose", FoldAccents("José"))
	assert.Equal(t, "nino", FoldAccents("niño"))
	assert.Equal(t, "plain", FoldAccents("plain"))
}

func TestParseNameSurnameFirstAllCaps(t *testing.T) {
	got := ParseName("RODRIGUEZ MORA MARIA")
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "Rodriguez Mora", got.LastName)
	assert.Equal(t, "Maria Rodriguez Mora", got.FullName)
}

func TestParseNameSurnameFirstFourParts(t *testing.T) {
	got := ParseName("Vargas Solis Jose Pablo")
	assert.Equal(t, "Jose Pablo", got.FirstName)
	assert.Equal(t, "Vargas Solis", got.LastName)
}

func TestParseNameNormalOrder(t *testing.T) {
	got := ParseName("Maria Rodriguez")
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "Rodriguez", got.LastName)

	got = ParseName("John Smith")
	assert.Equal(t, "John", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
}

func TestParseNameLeadingGivenNameBlocksSurnameFirst(t *testing.T) {
	// The first word being a known given name settles the order even for
	// an all-caps entry.
	got := ParseName("MARIA RODRIGUEZ MORA")
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "Rodriguez Mora", got.LastName)
}

func TestParseNameDoubleGivenName(t *testing.T) {
	got := ParseName("Ana Maria Perez Castro")
	assert.Equal(t, "Ana Maria", got.FirstName)
	assert.Equal(t, "Perez Castro", got.LastName)
}

func TestParseNameAccentInsensitiveLookup(t *testing.T) {
	got := ParseName("CASTRO VEGA JOSÉ")
	assert.Equal(t, "José", got.FirstName)
	assert.Equal(t, "Castro Vega", got.LastName)
}

func TestParseNameSingleWord(t *testing.T) {
	got := ParseName("Madonna")
	assert.Equal(t, "Madonna", got.FirstName)
	assert.Equal(t, "", got.LastName)
	assert.Equal(t, "Madonna", got.FullName)
}

func TestParseNameEmpty(t *testing.T) {
	assert.Equal(t, ParsedName{}, ParseName("   "))
}
