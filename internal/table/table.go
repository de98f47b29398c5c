package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Cell is one value. Valid is false for absent values, which are distinct
// from the empty string only in that they carry no value at all.
type Cell struct {
	Raw   string
	Num   float64
	Valid bool
}

// Text returns a present text cell.
func Text(s string) Cell { return Cell{Raw: s, Valid: true} }

// Number returns a present numeric cell; raw is formatted without exponent.
func Number(x float64) Cell {
	return Cell{Raw: strconv.FormatFloat(x, 'f', -1, 64), Num: x, Valid: true}
}

// Int returns a present integer cell.
func Int(n int) Cell { return Cell{Raw: strconv.Itoa(n), Num: float64(n), Valid: true} }

// Absent returns the absent marker.
func Absent() Cell { return Cell{} }

// Column describes a named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered collection of rows sharing the same columns.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]Cell
}

// Options controls delimited-text loading.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Numeric parsing locale. Zero values mean '.' decimal and no thousands separator.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns options suitable for comma-separated metadata exports.
func DefaultOptions() Options {
	return Options{}
}

// naValues are the cell spellings treated as absent on load.
var naValues = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "#N/A N/A": {},
	"1.#IND": {}, "-1.#IND": {}, "1.#QNAN": {}, "-1.#QNAN": {},
}

// IsNA reports whether a raw field is an absent marker.
func IsNA(s string) bool {
	_, ok := naValues[strings.TrimSpace(s)]
	return ok
}

// Load reads a delimited text file into a Table with per-column inferred kinds.
func Load(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	t, err := Read(f, delim, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Read parses delimited text from r. The first record is the header.
func Read(r io.Reader, delim rune, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	t := &Table{Columns: make([]Column, ncol)}
	for i, h := range header {
		t.Columns[i] = Column{Name: strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), Kind: KindText}
	}

	maxRows := opt.MaxRows
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		if maxRows > 0 && len(t.Rows) >= maxRows {
			break
		}
		row := make([]Cell, ncol)
		for j := 0; j < ncol && j < len(rec); j++ {
			if IsNA(rec[j]) {
				continue
			}
			row[j] = Text(rec[j])
		}
		t.Rows = append(t.Rows, row)
	}
	t.inferKinds(opt)
	return t, nil
}

// inferKinds marks a column numeric when every present cell parses as a number.
func (t *Table) inferKinds(opt Options) {
	for j := range t.Columns {
		present := 0
		numeric := true
		for _, row := range t.Rows {
			c := row[j]
			if !c.Valid {
				continue
			}
			present++
			if _, ok := parseNumeric(c.Raw, opt); !ok {
				numeric = false
				break
			}
		}
		if present == 0 || !numeric {
			t.Columns[j].Kind = KindText
			continue
		}
		t.Columns[j].Kind = KindNumeric
		for _, row := range t.Rows {
			if row[j].Valid {
				row[j].Num, _ = parseNumeric(row[j].Raw, opt)
			}
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the named cell of row i; missing columns read as absent.
func (t *Table) Cell(i int, name string) Cell {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return Cell{}
	}
	return t.Rows[i][j]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: append([]Column(nil), t.Columns...), Rows: make([][]Cell, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// SetColumn replaces the named column, or appends it when missing.
// cells must have one entry per row.
func (t *Table) SetColumn(name string, kind Kind, cells []Cell) {
	j := t.Index(name)
	if j < 0 {
		t.Columns = append(t.Columns, Column{Name: name, Kind: kind})
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], cells[i])
		}
		return
	}
	t.Columns[j].Kind = kind
	for i := range t.Rows {
		t.Rows[i][j] = cells[i]
	}
}

// Filter returns a table holding the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := &Table{Name: t.Name, Columns: append([]Column(nil), t.Columns...)}
	for i, row := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// RequireColumns returns a *SchemaError naming every absent column.
func RequireColumns(t *Table, names ...string) error {
	var missing []string
	for _, n := range names {
		if t.Index(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Path: t.Name, Missing: missing}
	}
	return nil
}

// WriteCSV writes the header and raw cell values; absent cells become empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j := range rec {
			rec[j] = ""
			if j < len(row) && row[j].Valid {
				rec[j] = row[j].Raw
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table as CSV to path atomically.
func (t *Table) Save(path string) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
