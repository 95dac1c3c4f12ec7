package filmcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ListHeader is the header line of a Letterboxd list export. Lists carry a
// free-text preamble (list name, description) before it.
const ListHeader = "Position,Name,Year,URL,Description"

// compatReplacements relabel headers for IMDb list import. Applied in order,
// first occurrence only.
var compatReplacements = [][2]string{
	{"ImdbId", "Const"},
	{"Rating", "Your Rating"},
	{"Name", "Title"},
	{"TmdbIdType", "Title Type"},
}

// EncodeOptions controls Encode output.
type EncodeOptions struct {
	// Compatible relabels the header line for IMDb list import.
	Compatible bool
}

// StripPreamble discards everything before the first list header. Text
// without a list header is returned unchanged.
func StripPreamble(text string) string {
	if i := strings.Index(text, ListHeader); i >= 0 {
		return text[i:]
	}
	return text
}

// Decode parses CSV text into rows. The first record is the header; each
// following record becomes a row with exactly the header's fields. Short
// records are padded with nulls and extra fields are dropped.
func Decode(text string) ([]Row, error) {
	text = StripPreamble(text)
	text = strings.TrimLeft(text, "\ufeff \t\r\n")
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return []Row{}, nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []Row{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows)+1, err)
		}

		row := Row{
			fields: make([]string, 0, len(header)),
			values: make(map[string]Value, len(header)),
		}
		for i, name := range header {
			v := NullValue()
			if i < len(record) {
				v = parseValue(record[i])
			}
			row.Set(name, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode renders rows as CSV text. The header comes from the first row's
// field order. Null and missing values render empty. An empty slice encodes
// to the empty string.
func Encode(rows []Row, opts EncodeOptions) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	headers := rows[0].Fields()

	headerLine, err := encodeRecord(headers)
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	if opts.Compatible {
		headerLine = RelabelHeader(headerLine)
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, headerLine)

	record := make([]string, len(headers))
	for i, row := range rows {
		for j, name := range headers {
			record[j] = row.Text(name)
		}
		line, err := encodeRecord(record)
		if err != nil {
			return "", fmt.Errorf("encode row %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// RelabelHeader applies the IMDb compatibility renames to a header line.
// "Date" becomes "Date Rated" only when the rating column was renamed.
func RelabelHeader(line string) string {
	for _, r := range compatReplacements {
		line = strings.Replace(line, r[0], r[1], 1)
	}
	if strings.Contains(line, "Your Rating") {
		line = strings.Replace(line, "Date", "Date Rated", 1)
	}
	return line
}

// encodeRecord writes one record with standard quoting: fields containing
// the delimiter, a quote, a line break or leading space are quoted and
// embedded quotes are doubled.
func encodeRecord(fields []string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
