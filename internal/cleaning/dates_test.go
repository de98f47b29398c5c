package cleaning

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		in     string
		ok     bool
		year   int
		format string
	}{
		{"2020-03-15", true, 2020, "2020-03-15"},
		{"2021", true, 2021, "2021-01-01"},
		{"2020-05", true, 2020, "2020-05-01"},
		{"2020-03-15T08:30:00Z", true, 2020, "2020-03-15 08:30:00"},
		{"March 3, 2019", true, 2019, "2019-03-03"},
		{"03/04/2020", true, 2020, "2020-03-04"},
		{"2020 Mar 23", true, 2020, "2020-03-23"},
		{"2020 Mar", true, 2020, "2020-03-01"},
		{"March 2020", true, 2020, "2020-03-01"},
		{"Mar 2020", true, 2020, "2020-03-01"},
		{"12-31-2020", true, 2020, "2020-12-31"},
		{"20200315", true, 2020, "2020-03-15"},
		{"20201345", false, 0, ""},
		{"not a date", false, 0, ""},
		{"", false, 0, ""},
		{"1584230400", false, 0, ""},
		{"1500-01-01", false, 0, ""},
	}
	for _, c := range cases {
		ts, ok := ParseDate(c.in)
		if ok != c.ok {
			t.Errorf("%q: ok=%v want %v", c.in, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if ts.Year() != c.year {
			t.Errorf("%q: year=%d want %d", c.in, ts.Year(), c.year)
		}
		if got := FormatDate(ts); got != c.format {
			t.Errorf("%q: format=%q want %q", c.in, got, c.format)
		}
	}
}
