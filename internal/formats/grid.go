// internal/formats/grid.go
package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxXLSRows = 100000

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ReadGrid turns a raw feed buffer into a two-dimensional string grid. All
// spreadsheet cells are read as raw strings so style numbers that look like
// scientific notation ("1921E0136") survive untouched.
func ReadGrid(filename string, data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file", filename)
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return readXLSX(filename, data)
	case bytes.HasPrefix(data, oleMagic):
		return readXLS(filename, data)
	}

	if !looksLikeDelimitedText(data) {
		// Extension says spreadsheet but the magic bytes are missing;
		// try xlsx before giving up on a mislabeled download.
		lower := strings.ToLower(filename)
		if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
			return readXLSX(filename, data)
		}
		return nil, fmt.Errorf("%s: not a spreadsheet and not delimited text", filename)
	}

	return readDelimited(filename, data)
}

func readXLSX(filename string, data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", filename)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read xlsx %s: %w", filename, err)
	}
	return rows, nil
}

func readXLS(filename string, data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls %s: %w", filename, err)
	}
	rows := wb.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("xls %s has no rows", filename)
	}
	return rows, nil
}

// looksLikeDelimitedText applies the CSV predicate: mostly printable text in
// the first 1000 bytes with at least one delimiter present.
func looksLikeDelimitedText(data []byte) bool {
	sample := data
	if len(sample) > 1000 {
		sample = sample[:1000]
	}
	text := decodeText(sample)

	printable := 0
	hasDelimiter := false
	for _, r := range text {
		if r == ',' || r == '\t' || r == ';' {
			hasDelimiter = true
		}
		if r == '\n' || r == '\r' || r == '\t' || unicode.IsPrint(r) {
			printable++
			continue
		}
		if r == unicode.ReplacementChar {
			return false
		}
	}
	total := len([]rune(text))
	if total == 0 {
		return false
	}
	return hasDelimiter && printable*100/total >= 95
}

func readDelimited(filename string, data []byte) ([][]string, error) {
	text := decodeText(data)

	delimiter := sniffDelimiter(text, filename)
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", filename, err)
	}
	return rows, nil
}

// sniffDelimiter picks between comma and tab by majority on the first line;
// a .tsv extension breaks a tie toward tab.
func sniffDelimiter(text, filename string) rune {
	firstLine := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		firstLine = text[:idx]
	}
	commas := strings.Count(firstLine, ",")
	tabs := strings.Count(firstLine, "\t")
	if tabs > commas {
		return '\t'
	}
	if tabs == commas && strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	return ','
}

// decodeText strips any BOM and decodes UTF-16 buffers to UTF-8.
func decodeText(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16With(data[2:], binary.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16With(data[2:], binary.BigEndian)
	}
	return string(data)
}

func decodeUTF16With(data []byte, order binary.ByteOrder) string {
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, order.Uint16(data[i:i+2]))
	}
	return string(utf16.Decode(units))
}
