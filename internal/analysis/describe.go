// Package analysis produces an informational diagnostic report for a loaded table.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

// Column kinds reported by Describe.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindEmpty       = "empty"
)

// Options controls the diagnostic pass.
type Options struct {
	// SampleRows is the number of head rows included in the report.
	SampleRows int
	// TopValues caps the categorical value list per column.
	TopValues int
	// MaxCategories is the largest distinct-value count still treated as categorical.
	MaxCategories int
	// OutlierThreshold is the robust |z| above which a numeric value counts as an outlier.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for the metadata file.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        8,
		MaxCategories:    50,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly description of a table.
type Report struct {
	Name    string
	Rows    int
	Cols    []ColumnSummary
	Samples [][]string
	Notes   []string
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min, Max  float64
	Mean, Std float64
	Q1, Q2    float64
	Q3        float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Datetime range, formatted
	Earliest, Latest string
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

// MissingPct is the share of absent cells in percent.
func (c ColumnSummary) MissingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100.0 / float64(total)
}

type CategoryCount struct {
	Value string
	Count int
}

// Describe summarizes every column of t. It never fails; an empty table yields
// a report with zero rows.
func Describe(t *table.Table, opt Options) *Report {
	def := DefaultOptions()
	if opt.SampleRows <= 0 {
		opt.SampleRows = def.SampleRows
	}
	if opt.TopValues <= 0 {
		opt.TopValues = def.TopValues
	}
	if opt.MaxCategories <= 0 {
		opt.MaxCategories = def.MaxCategories
	}
	if opt.OutlierThreshold <= 0 {
		opt.OutlierThreshold = def.OutlierThreshold
	}

	rep := &Report{Name: t.Name, Rows: t.Len()}
	for j, col := range t.Columns {
		rep.Cols = append(rep.Cols, describeColumn(t, j, col, opt))
	}
	for i := 0; i < t.Len() && i < opt.SampleRows; i++ {
		row := make([]string, len(t.Columns))
		for j := range t.Columns {
			row[j] = t.Rows[i][j].Raw
		}
		rep.Samples = append(rep.Samples, row)
	}
	if t.Len() == 0 {
		rep.Notes = append(rep.Notes, "table has no data rows")
	}
	return rep
}

func describeColumn(t *table.Table, j int, col table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: col.Name}
	var (
		nums  []float64
		texts []string
		cats  = map[string]int{}
	)
	for _, row := range t.Rows {
		c := row[j]
		if !c.Valid {
			s.Missing++
			continue
		}
		s.NonNull++
		if col.Kind == table.KindNumeric {
			nums = append(nums, c.Num)
			continue
		}
		texts = append(texts, c.Raw)
		cats[c.Raw]++
	}
	s.Unique = len(cats)

	switch {
	case s.NonNull == 0:
		s.Kind = KindEmpty
	case col.Kind == table.KindNumeric:
		s.Kind = KindNumeric
		numericStats(&s, nums, opt.OutlierThreshold)
		s.Unique = countDistinct(nums)
	case datetimeRange(&s, texts):
		s.Kind = KindDatetime
	case isCategorical(cats, s.NonNull, opt.MaxCategories):
		s.Kind = KindCategorical
		s.TopValues = topValues(cats, opt.TopValues)
	default:
		s.Kind = KindText
		for _, v := range texts {
			if len(s.ExampleTexts) == 3 {
				break
			}
			s.ExampleTexts = append(s.ExampleTexts, utils.Truncate(v, 80))
		}
	}
	return s
}

// numericStats fills min/max/mean/std via Welford, quartiles and MAD outliers.
func numericStats(s *ColumnSummary, vals []float64, threshold float64) {
	var n int
	var mean, m2 float64
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for _, x := range vals {
		n++
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Q2 = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)

	if len(vals) < 8 {
		return
	}
	s.OutlierThreshold = threshold
	median, mad := medianMAD(vals)
	if mad == 0 {
		return
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > threshold {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
}

// datetimeRange reports whether every value parses as a date and records the range.
func datetimeRange(s *ColumnSummary, vals []string) bool {
	if len(vals) == 0 {
		return false
	}
	first := true
	var lo, hi string
	for _, v := range vals {
		d, ok := cleaning.ParseDate(v)
		if !ok {
			return false
		}
		f := cleaning.FormatDate(d)
		if first || f < lo {
			lo = f
		}
		if first || f > hi {
			hi = f
		}
		first = false
	}
	s.Earliest, s.Latest = lo, hi
	return true
}

func isCategorical(cats map[string]int, nonNull, maxCats int) bool {
	if len(cats) > maxCats {
		return false
	}
	for v := range cats {
		if len(v) > 64 {
			return false
		}
	}
	// a column of all-distinct values is an identifier or free text
	return len(cats) < nonNull || nonNull == 1
}

func topValues(cats map[string]int, k int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for v, n := range cats {
		tops = append(tops, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > k {
		tops = tops[:k]
	}
	return tops
}

func countDistinct(vals []float64) int {
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Markdown renders a compact report for the console.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %d, %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, c.Missing, c.MissingPct()))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf(": min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g, mean %.4g, std %.4g",
				c.Min, c.Q1, c.Q2, c.Q3, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case KindDatetime:
			b.WriteString(fmt.Sprintf(": %s .. %s", c.Earliest, c.Latest))
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case KindText:
			if len(c.ExampleTexts) > 0 {
				b.WriteString(": e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				b.WriteString(safeVal(utils.Truncate(val, 40)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
