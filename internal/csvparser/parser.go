// =============================================================================
// POS Sales Report - CSV Parser Module
// =============================================================================
//
// This module parses a single terminal export file into raw rows. Terminal
// exports are legacy-encoded (Shift_JIS by default), comma separated, with a
// header line and a fixed column layout.
//
// FEATURES:
//   - Encoding conversion via golang.org/x/text (any WHATWG encoding name,
//     plus the "cp932" alias used by Windows tooling)
//   - Strict decoding: an undecodable byte fails the file
//   - Configurable delimiter and header row count
//   - Variable field counts are accepted here; width is checked by the loader
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// ErrUndecodable is returned when a file contains bytes that are not valid in
// the configured encoding.
var ErrUndecodable = errors.New("file is not valid in the configured encoding")

// encodingAliases maps names used by Japanese Windows tooling to their WHATWG
// equivalents.
var encodingAliases = map[string]string{
	"cp932":     "shift_jis",
	"ms932":     "shift_jis",
	"sjis":      "shift_jis",
	"shift-jis": "shift_jis",
	"eucjp":     "euc-jp",
	"utf8":      "utf-8",
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a terminal export file and returns its data rows.
//
// PARAMETERS:
//   - filePath: The path to the export file.
//   - settings: The source settings from the main configuration.
//
// RETURNS:
//   - The data rows, header rows and blank rows skipped, each field trimmed.
//   - An error if the file cannot be read, decoded or parsed.
//
// PARSING PROCESS:
//   1. Open the file and wrap it in a decoding reader
//   2. Decode the whole file, rejecting undecodable bytes
//   3. Configure the CSV reader with the delimiter
//   4. Skip header_rows leading records, then collect the rest
func Parse(filePath string, settings config.SourceSettings) ([]types.Row, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	text, err := decode(bufio.NewReader(file), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(strings.NewReader(text))
	configureReader(csvReader, settings)

	var rows []types.Row
	for record := 0; ; record++ {
		fields, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if record < settings.HeaderRows || isRowEmpty(fields) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, types.Row{Fields: fields, Source: filePath, Line: line})
	}

	return rows, nil
}

// decode converts r from the named encoding to UTF-8 text.
func decode(r io.Reader, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to decode file: %w", err)
	}

	// The decoders substitute U+FFFD for invalid input, and no legacy
	// encoding can produce U+FFFD legitimately.
	if !utf8.Valid(data) || strings.ContainsRune(string(data), utf8.RuneError) {
		return "", ErrUndecodable
	}

	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

// lookupEncoding resolves an encoding name. Empty means Shift_JIS.
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "shift_jis"
	}
	if alias, ok := encodingAliases[key]; ok {
		key = alias
	}

	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.SourceSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if r, _ := utf8.DecodeRuneInString(settings.Delimiter); r != utf8.RuneError {
			reader.Comma = r
		} else {
			reader.Comma = ','
		}
	}

	// Terminal firmware versions differ in trailing columns.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
