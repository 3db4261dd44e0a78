package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCSV(t *testing.T) {
	path := writeTempFile(t, "contacts.csv",
		"Nombre completo,Correo,Celular\n"+
			"Maria Rodriguez,maria@example.com,88887777\n"+
			"Jose Vargas,jose@example.com,87776666\n")

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nombre completo", "Correo", "Celular"}, table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "maria@example.com", table.Cell(0, 1))
}

func TestParseCSVSkipsBannerRows(t *testing.T) {
	path := writeTempFile(t, "contacts.csv",
		"Exported contacts,,\n"+
			",,\n"+
			"Nombre,Correo,Celular\n"+
			"Maria,maria@example.com,88887777\n")

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nombre", "Correo", "Celular"}, table.Headers)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Maria", table.Cell(0, 0))
}

func TestParseTSV(t *testing.T) {
	path := writeTempFile(t, "contacts.tsv",
		"email\tfull name\nmaria@example.com\tMaria Rodriguez\n")

	table, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Maria Rodriguez", table.Cell(0, 1))
}

func TestParseJSON(t *testing.T) {
	path := writeTempFile(t, "contacts.json",
		`[{"email":"maria@example.com","full_name":"Maria Rodriguez","ext":1402},
		  {"email":"jose@example.com","full_name":"Jose Vargas"}]`)

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "ext", "full_name"}, table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "1402", table.Cell(0, 1))
	assert.Equal(t, "", table.Cell(1, 1))
}

func TestParseXLSXWithBanner(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetCellValue(sheet, "A1", "Listado de contactos 2024"))
	require.NoError(t, wb.SetCellValue(sheet, "A3", "Nombre"))
	require.NoError(t, wb.SetCellValue(sheet, "B3", "Correo Electrónico"))
	require.NoError(t, wb.SetCellValue(sheet, "C3", "Teléfono"))
	require.NoError(t, wb.SetCellValue(sheet, "A4", "Maria Rodriguez"))
	require.NoError(t, wb.SetCellValue(sheet, "B4", "maria@example.com"))
	require.NoError(t, wb.SetCellValue(sheet, "C4", "22223333"))

	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, wb.SaveAs(path))

	table, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Nombre", table.Headers[0])
	assert.Equal(t, "maria@example.com", table.Cell(0, 1))
}

func TestParseVerticalTXT(t *testing.T) {
	path := writeTempFile(t, "roster.txt", `
Nombre
Maria Rodriguez Mora
Gerente General
maria@example.com
2222-3333
8888-7777
1402

Jose Vargas
Contador
jose@example.com
2222-4444
`)

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, verticalTXTHeaders, table.Headers)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, "Maria Rodriguez Mora", table.Cell(0, 0))
	assert.Equal(t, "Gerente General", table.Cell(0, 1))
	assert.Equal(t, "maria@example.com", table.Cell(0, 2))
	assert.Equal(t, "2222-3333", table.Cell(0, 3))
	assert.Equal(t, "8888-7777", table.Cell(0, 4))
	assert.Equal(t, "1402", table.Cell(0, 5))

	assert.Equal(t, "Jose Vargas", table.Cell(1, 0))
	assert.Equal(t, "", table.Cell(1, 4))
}

func TestParseVerticalTXTStopsAtDeveloperNote(t *testing.T) {
	path := writeTempFile(t, "roster.txt",
		"Maria Rodriguez\nGerente\nmaria@example.com\nDEVELOPER NOTE: scratch data below\nJose Vargas\nContador\njose@example.com\n")

	table, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "maria@example.com", table.Cell(0, 2))
}

func TestParseUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "contacts.pdf", "%PDF-1.4")
	_, err := ParseFile(path)
	assert.Error(t, err)
}

func TestFindHeaderRowNoMatchDefaultsToFirst(t *testing.T) {
	rows := [][]string{
		{"a", "b"},
		{"c", "d"},
	}
	assert.Equal(t, 0, FindHeaderRow(rows))
}
