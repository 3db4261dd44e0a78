package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecardhq/contactd/pkg/models"
)

func TestMapRowSpanishAliases(t *testing.T) {
	headers := []string{"Nombre completo", "Correo Electrónico", "Celular", "Empresa"}
	row := []string{"RODRIGUEZ MORA MARIA", "Maria@Example.COM", "88887777", "iSolutions CR"}

	mapped, extra := MapRow(headers, row)

	assert.Equal(t, "maria@example.com", mapped[models.FieldEmail])
	assert.Equal(t, "8888-7777", mapped[models.FieldMobilePhone])
	assert.Equal(t, "iSolutions CR", mapped[models.FieldBusinessName])

	// The surname-first entry is reordered and title-cased.
	assert.Equal(t, "Maria", mapped[models.FieldFirstName])
	assert.Equal(t, "Rodriguez Mora", mapped[models.FieldLastName])
	assert.Equal(t, "Maria Rodriguez Mora", mapped[models.FieldFullName])

	assert.Empty(t, extra)
}

func TestMapRowSplitsNameFromSingleColumn(t *testing.T) {
	headers := []string{"First Name", "Email"}
	row := []string{"Maria Rodriguez", "maria@example.com"}

	mapped, _ := MapRow(headers, row)

	assert.Equal(t, "Maria", mapped[models.FieldFirstName])
	assert.Equal(t, "Rodriguez", mapped[models.FieldLastName])
	assert.Equal(t, "Maria Rodriguez", mapped[models.FieldFullName])
}

func TestMapRowComposesFullName(t *testing.T) {
	headers := []string{"first_name", "last_name"}
	row := []string{"Jose", "Vargas"}

	mapped, _ := MapRow(headers, row)
	assert.Equal(t, "Jose Vargas", mapped[models.FieldFullName])
}

func TestMapRowUnmatchedColumnsGoToExtra(t *testing.T) {
	headers := []string{"Email", "Favorite Color", "Shoe Size"}
	row := []string{"maria@example.com", "green", "37"}

	mapped, extra := MapRow(headers, row)

	assert.Equal(t, "maria@example.com", mapped[models.FieldEmail])
	assert.Equal(t, models.StringMap{"favorite color": "green", "shoe size": "37"}, extra)
}

func TestMapRowDropsPlaceholderValues(t *testing.T) {
	headers := []string{"Email", "Celular", "Ext"}
	row := []string{"maria@example.com", "0", ""}

	mapped, _ := MapRow(headers, row)
	assert.NotContains(t, mapped, models.FieldMobilePhone)
	assert.NotContains(t, mapped, models.FieldWorkPhoneExt)
}

func TestMapRowStripsSpreadsheetFloatSuffix(t *testing.T) {
	headers := []string{"Email", "Ext"}
	row := []string{"maria@example.com", "1402.0"}

	mapped, _ := MapRow(headers, row)
	assert.Equal(t, "1402", mapped[models.FieldWorkPhoneExt])
}

func TestMapRowShortRow(t *testing.T) {
	headers := []string{"Email", "Celular", "Empresa"}
	row := []string{"maria@example.com"}

	mapped, extra := MapRow(headers, row)
	require.Contains(t, mapped, models.FieldEmail)
	assert.NotContains(t, mapped, models.FieldMobilePhone)
	assert.Empty(t, extra)
}
