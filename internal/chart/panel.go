package chart

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/cord19-explorer/internal/aggregate"
)

// Titles of the four summary panels.
const (
	TitleYears    = "Publications by Year"
	TitleJournals = "Top Publishing Journals"
	TitleSources  = "Top Sources"
	TitleWords    = "Most Frequent Words in Titles"
)

// Panels returns the four summary charts in reading order.
func Panels(s aggregate.Summary, sz Size) []string {
	return []string{
		LineChart(TitleYears, YearPoints(s.ByYear), ColorYears, sz),
		HBarChart(TitleJournals, CountBars(s.TopJournals), ColorJournals, sz),
		VBarChart(TitleSources, CountBars(s.TopSources), ColorSources, sz),
		HBarChart(TitleWords, CountBars(s.TopWords), ColorWords, sz),
	}
}

// RenderPanel lays the four summary charts out on a 2x2 grid.
func RenderPanel(s aggregate.Summary) string {
	sz := DefaultSize
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		2*sz.W, 2*sz.H, 2*sz.W, 2*sz.H)
	for i, p := range Panels(s, sz) {
		x, y := (i%2)*sz.W, (i/2)*sz.H
		b.WriteString(strings.Replace(p, "<svg ", fmt.Sprintf(`<svg x="%d" y="%d" `, x, y), 1))
	}
	b.WriteString("</svg>\n")
	return b.String()
}
