package table

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var metadataRows = []string{
	"cord_uid,title,abstract,authors,journal,source,publish_time,citations",
	"a1,COVID-19 Disease Spread,Spread in cities,\"Doe, J\",Lancet,PMC,2020-03-15,12",
	"a2,Disease spread patterns,,Roe R,,Medline,2021,NA",
	"a3,\"Masks, and more\",Short abstract here,,BMJ,PMC,not a date,3",
}

func writeCSV(t *testing.T, name string, rows []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestLoadInfersKindsAndAbsentCells(t *testing.T) {
	p := writeCSV(t, "metadata.csv", metadataRows)
	tb, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tb.Name != "metadata.csv" {
		t.Fatalf("name = %q", tb.Name)
	}
	if tb.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tb.Len())
	}
	if len(tb.Columns) != 8 {
		t.Fatalf("cols = %d, want 8", len(tb.Columns))
	}
	if k := tb.Columns[tb.Index("citations")].Kind; k != KindNumeric {
		t.Fatalf("citations kind = %q", k)
	}
	if k := tb.Columns[tb.Index("title")].Kind; k != KindText {
		t.Fatalf("title kind = %q", k)
	}
	if c := tb.Cell(0, "citations"); !c.Valid || c.Num != 12 {
		t.Fatalf("citations[0] = %#v", c)
	}
	if c := tb.Cell(1, "citations"); c.Valid {
		t.Fatalf("NA should be absent, got %#v", c)
	}
	if c := tb.Cell(1, "abstract"); c.Valid {
		t.Fatalf("empty abstract should be absent, got %#v", c)
	}
	if c := tb.Cell(2, "title"); c.Raw != "Masks, and more" {
		t.Fatalf("quoted title = %q", c.Raw)
	}
	if c := tb.Cell(0, "no_such_column"); c.Valid {
		t.Fatalf("missing column should read absent")
	}
}

func TestLoadMissingFileIsLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T %v", err, err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist in chain: %v", err)
	}
}

func TestLoadMalformedIsLoadError(t *testing.T) {
	p := writeCSV(t, "bad.csv", []string{"title,abstract", "\"unterminated,x"})
	_, err := Load(p, DefaultOptions())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T %v", err, err)
	}
}

func TestLoadEmptyFileIsLoadError(t *testing.T) {
	p := writeCSV(t, "empty.csv", nil)
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p, DefaultOptions())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T %v", err, err)
	}
}

func TestLoadTSVAndShortRows(t *testing.T) {
	p := writeCSV(t, "data.tsv", []string{"title\tjournal\tyear", "A\tJ1", "B\tJ2\t2020"})
	tb, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c := tb.Cell(0, "year"); c.Valid {
		t.Fatalf("padded cell should be absent")
	}
	if tb.Columns[2].Kind != KindNumeric {
		t.Fatalf("year kind = %q", tb.Columns[2].Kind)
	}
}

func TestRequireColumns(t *testing.T) {
	p := writeCSV(t, "metadata.csv", []string{"title,abstract", "a,b"})
	tb, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = RequireColumns(tb, "title", "journal", "publish_time")
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if strings.Join(se.Missing, ",") != "journal,publish_time" {
		t.Fatalf("missing = %v", se.Missing)
	}
	if err := RequireColumns(tb, "title"); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	p := writeCSV(t, "metadata.csv", metadataRows)
	tb, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out", "copy.csv")
	if err := tb.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(out, DefaultOptions())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	var a, b bytes.Buffer
	if err := tb.WriteCSV(&a); err != nil {
		t.Fatal(err)
	}
	if err := back.WriteCSV(&b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", a.String(), b.String())
	}
}

func TestSetColumnAndFilter(t *testing.T) {
	tb := &Table{Columns: []Column{{Name: "a", Kind: KindText}}, Rows: [][]Cell{{Text("x")}, {Text("y")}}}
	tb.SetColumn("n", KindNumeric, []Cell{Int(1), Int(2)})
	tb.SetColumn("a", KindText, []Cell{Text("p"), Absent()})
	if tb.Index("n") != 1 || tb.Cell(1, "n").Num != 2 {
		t.Fatalf("appended column wrong: %#v", tb)
	}
	if tb.Cell(1, "a").Valid {
		t.Fatalf("replaced cell should be absent")
	}
	f := tb.Filter(func(i int) bool { return i == 0 })
	if f.Len() != 1 || f.Cell(0, "a").Raw != "p" {
		t.Fatalf("filter = %#v", f)
	}
}

func TestParseNumericLocale(t *testing.T) {
	opt := Options{DecimalSeparator: ',', ThousandsSeparator: '.'}
	if x, ok := parseNumeric("1.000,5", opt); !ok || x != 1000.5 {
		t.Fatalf("got %v %v", x, ok)
	}
	if _, ok := parseNumeric("abc", DefaultOptions()); ok {
		t.Fatalf("abc should not parse")
	}
}
