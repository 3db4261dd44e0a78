package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the extension-independent shape every supported file format is
// reduced to before mapping: one header row plus data rows. Rows may be
// ragged; missing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cell returns the value of the named column in the given row, or "".
func (t *Table) Cell(row int, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ParseFile reads an uploaded batch file into a Table. The format is chosen
// by extension: CSV, TSV, JSON arrays, XLSX workbooks and the vertical
// plain-text roster format are supported.
func ParseFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseDelimited(path, ',')
	case ".tsv":
		return parseDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		return parseWorkbook(path)
	case ".json":
		return parseJSON(path)
	case ".txt":
		t, err := parseVerticalTXT(path)
		if err != nil {
			return nil, err
		}
		if t.Len() > 0 {
			return t, nil
		}
		// Not the vertical roster layout, treat as tab separated.
		return parseDelimited(path, '\t')
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func parseDelimited(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	header := FindHeaderRow(records)
	return &Table{Headers: records[header], Rows: records[header+1:]}, nil
}

func parseWorkbook(path string) (*Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	header := FindHeaderRow(rows)
	return &Table{Headers: rows[header], Rows: rows[header+1:]}, nil
}

func parseJSON(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var objects []map[string]any
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	seen := make(map[string]struct{})
	var headers []string
	for _, obj := range objects {
		for k := range obj {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	t := &Table{Headers: headers}
	for _, obj := range objects {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = stringifyJSON(obj[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func stringifyJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FindHeaderRow scans the first rows of a raw grid for the one whose cells
// best match the known column aliases. Exported spreadsheets often carry a
// title banner or blank padding above the real header, so row 0 cannot be
// assumed. Returns 0 when nothing matches.
func FindHeaderRow(rows [][]string) int {
	var keywords []string
	for _, aliases := range fieldAliases {
		for _, a := range aliases {
			keywords = append(keywords, FoldAccents(strings.ToLower(a)))
		}
	}

	best, bestIdx := 0, 0
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		matches := 0
		for _, cell := range rows[i] {
			cell = FoldAccents(strings.ToLower(strings.TrimSpace(cell)))
			if cell == "" {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(cell, kw) || strings.Contains(kw, cell) {
					matches++
					break
				}
			}
		}
		if matches > best {
			best, bestIdx = matches, i
		}
	}
	return bestIdx
}

// txtLabelLines are the recurring section labels in vertical rosters; they
// carry no data and are dropped before anchoring.
var txtLabelLines = map[string]struct{}{
	"Nombre": {}, "Puesto": {}, "Correo": {}, "Ext": {},
}

var verticalTXTHeaders = []string{
	"first_name", "business_title", "email", "work_phone", "mobile_phone", "work_phone_ext",
}

// parseVerticalTXT handles plain-text rosters where each contact spans
// several lines in the order name, title, email, phones. The email line is
// the only reliably recognizable one, so parsing anchors on it: the two
// preceding lines are taken as name and title, and following lines are
// consumed as phone numbers while they look like one.
func parseVerticalTXT(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, "DEVELOPER NOTE") {
			break
		}
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if _, label := txtLabelLines[s]; label {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	t := &Table{Headers: verticalTXTHeaders}
	i := 0
	for i < len(lines) {
		emailIdx := -1
		for j := i; j < len(lines) && j < i+10; j++ {
			if strings.Contains(lines[j], "@") && !strings.Contains(lines[j], " ") {
				emailIdx = j
				break
			}
		}
		if emailIdx == -1 {
			break
		}

		var name, title string
		switch {
		case emailIdx >= 2:
			title = lines[emailIdx-1]
			name = lines[emailIdx-2]
		case emailIdx == 1:
			name = lines[emailIdx-1]
		}

		var workPhone, mobilePhone, ext string
		p := emailIdx + 1
		for p < len(lines) {
			val := lines[p]
			digits := digitsRe.ReplaceAllString(val, "")
			if len(digits) < 4 {
				break
			}
			switch {
			case len(digits) < 8:
				ext = val
			// Mobile numbers start with 6, 7 or 8 in Costa Rica.
			case digits[0] == '6' || digits[0] == '7' || digits[0] == '8':
				mobilePhone = val
			default:
				workPhone = val
			}
			p++
		}

		t.Rows = append(t.Rows, []string{name, title, lines[emailIdx], workPhone, mobilePhone, ext})
		i = p
	}
	return t, nil
}
