// Package roster loads participant tables from delimited text files.
// Source files have no header row, so columns get synthetic
// spreadsheet-style labels (A, B, ... AA, AB, ...) and the caller
// designates which label holds the participant ID.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnparseable is returned when no delimiter/encoding combination
// yields a table with more than one column.
var ErrUnparseable = errors.New("could not parse roster file")

// Participant is one roster record, keyed by its ID. The JSON tags
// match the persisted session format.
type Participant struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Team      string `json:"team"`
	BirthYear string `json:"birth_year"`
	Gender    string `json:"gender"`
}

// Table is a parsed roster file: rectangular rows under synthetic
// column labels.
type Table struct {
	Columns []string
	Rows    [][]string
}

var delimiters = []rune{';', ',', '\t'}

// decoders tried in order after plain UTF-8. Latin-1 accepts any byte
// sequence, so it doubles as the last-resort fallback.
var decoders = []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}

// Load reads and parses a roster file and builds the participant map
// keyed by the designated identity column.
func Load(path, idColumn string) (map[string]Participant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	return Parse(data, idColumn)
}

// Parse sniffs the delimiter and encoding, parses the table, and
// builds the participant map. The first combination producing more
// than one column wins.
func Parse(data []byte, idColumn string) (map[string]Participant, error) {
	table, err := ParseTable(data)
	if err != nil {
		return nil, err
	}
	return table.Participants(idColumn)
}

// ParseTable tries each delimiter against each candidate encoding and
// returns the first table with more than one column.
func ParseTable(data []byte) (*Table, error) {
	for _, delim := range delimiters {
		for _, text := range decodedCandidates(data) {
			table, err := parseWith(text, delim)
			if err != nil {
				continue
			}
			if len(table.Columns) > 1 {
				return table, nil
			}
		}
	}
	return nil, ErrUnparseable
}

func decodedCandidates(data []byte) []string {
	var out []string
	if utf8.Valid(data) {
		out = append(out, string(data))
	}
	for _, cm := range decoders {
		dec := cm.NewDecoder()
		text, err := decodeAll(dec, data)
		if err == nil {
			out = append(out, text)
		}
	}
	return out
}

func decodeAll(dec *encoding.Decoder, data []byte) (string, error) {
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseWith(text string, delim rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if width == 0 {
		return nil, ErrUnparseable
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, width)
		for i := range row {
			if i < len(rec) {
				row[i] = cleanCell(rec[i])
			}
		}
		rows = append(rows, row)
	}

	columns := make([]string, width)
	for i := range columns {
		columns[i] = ColumnLabel(i)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// cleanCell trims whitespace and stray surrounding quotes.
func cleanCell(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// ColumnLabel returns the synthetic label for a zero-based column
// index: A..Z, then AA, AB, ...
func ColumnLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return string(rune('A'+i/26-1)) + string(rune('A'+i%26))
}

// ColumnIndex returns the zero-based index of a label within the
// table, or -1 when the label is not present.
func (t *Table) ColumnIndex(label string) int {
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// Participants builds the ID-keyed participant map. Identity fields
// come from fixed positional columns (B through F); rows with an empty
// identity value are skipped.
func (t *Table) Participants(idColumn string) (map[string]Participant, error) {
	idx := t.ColumnIndex(idColumn)
	if idx < 0 {
		return nil, fmt.Errorf("ID column %q not found in roster", idColumn)
	}

	participants := make(map[string]Participant)
	for _, row := range t.Rows {
		id := strings.TrimSpace(row[idx])
		if id == "" {
			continue
		}
		participants[id] = Participant{
			ID:        id,
			FirstName: cell(row, 1),
			LastName:  cell(row, 2),
			Team:      cell(row, 3),
			BirthYear: cell(row, 4),
			Gender:    cell(row, 5),
		}
	}
	return participants, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
