// Package dashboard serves the interactive explorer over the cleaned metadata
// file: filter by year range and journal, browse charts, sample and search
// papers, and download the sample as CSV.
package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/KaramelBytes/cord19-explorer/internal/aggregate"
	"github.com/KaramelBytes/cord19-explorer/internal/chart"
	"github.com/KaramelBytes/cord19-explorer/internal/config"
	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
)

// maxSearchRows caps the rendered search table; the count shows every match.
const maxSearchRows = 100

// ExportFilename is suggested to browsers for /export.csv.
const ExportFilename = "cord19_sample.csv"

// Server is the dashboard HTTP handler.
type Server struct {
	cfg    *config.Global
	cache  *Cache
	log    *slog.Logger
	export *rate.Limiter
	mux    *http.ServeMux
}

// New builds a dashboard over cfg.CleanedPath.
func New(cfg *config.Global, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	opt := table.DefaultOptions()
	opt.Delimiter = cfg.DelimiterRune()
	burst := max(cfg.ExportBurst, 1)
	s := &Server{
		cfg:    cfg,
		cache:  NewCache(cfg.CleanedPath, opt),
		log:    logger,
		export: rate.NewLimiter(rate.Limit(cfg.ExportRatePerSec), burst),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /analysis", s.handleAnalysis)
	s.mux.HandleFunc("GET /sample", s.handleSample)
	s.mux.HandleFunc("GET /export.csv", s.handleExport)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	return s
}

// Cache exposes the underlying file cache.
func (s *Server) Cache() *Cache { return s.cache }

// ServeHTTP logs every request after it is served.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// view is the state shared by every page for one request.
type view struct {
	snap     *Snapshot
	sel      Selection
	filtered []papers.Record
}

// load resolves the snapshot and selection, writing an error page on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*view, bool) {
	snap, err := s.cache.Get()
	if err != nil {
		if errors.Is(err, ErrNoData) {
			s.log.Warn("cleaned data missing", "path", s.cfg.CleanedPath)
			var buf bytes.Buffer
			_ = pages.ExecuteTemplate(&buf, "nodata", s.cfg.CleanedPath)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write(buf.Bytes())
			return nil, false
		}
		s.log.Error("load cleaned data", "path", s.cfg.CleanedPath, "err", err)
		http.Error(w, "failed to load cleaned data: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	sel := ParseSelection(r.URL.Query(), snap, s.cfg.DashboardDefaultJournals)
	return &view{snap: snap, sel: sel, filtered: sel.Filter().Apply(snap.Records)}, true
}

func (s *Server) limits() aggregate.Limits {
	lim := aggregate.InteractiveLimits()
	if s.cfg.DashboardTopSources > 0 {
		lim.Sources = s.cfg.DashboardTopSources
	}
	if s.cfg.DashboardTopWords > 0 {
		lim.Words = s.cfg.DashboardTopWords
	}
	return lim
}

type journalOption struct {
	Name     string
	Selected bool
}

type pageData struct {
	Title    string
	Action   string
	Query    template.URL
	Snap     *Snapshot
	Sel      Selection
	Journals []journalOption
	Total    int
	Stats    papers.Stats
	Charts   []template.HTML
}

func (s *Server) page(title, action string, v *view) pageData {
	chosen := make(map[string]bool, len(v.sel.Journals))
	for _, j := range v.sel.Journals {
		chosen[j] = true
	}
	opts := make([]journalOption, len(v.snap.Journals))
	for i, j := range v.snap.Journals {
		opts[i] = journalOption{Name: j, Selected: chosen[j]}
	}
	return pageData{
		Title:    title,
		Action:   action,
		Query:    template.URL(v.sel.Query().Encode()),
		Snap:     v.snap,
		Sel:      v.sel,
		Journals: opts,
		Total:    len(v.snap.Records),
		Stats:    papers.Summarize(v.filtered),
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render", "template", name, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, ok := s.load(w, r)
	if !ok {
		return
	}
	sum := aggregate.Summarize(v.filtered, s.limits())
	hist := aggregate.AbstractHistogram(v.filtered, aggregate.DefaultHistogramBins)
	sz := chart.DefaultSize
	data := s.page("", "/", v)
	data.Charts = []template.HTML{
		template.HTML(chart.LineChart(chart.TitleYears, chart.YearPoints(sum.ByYear), chart.ColorYears, sz)),
		template.HTML(chart.HBarChart(chart.TitleJournals, chart.CountBars(sum.TopJournals), chart.ColorJournals, sz)),
		template.HTML(chart.VBarChart(chart.TitleSources, chart.CountBars(sum.TopSources), chart.ColorSources, sz)),
		template.HTML(chart.Histogram("Distribution of Abstract Word Counts", chart.HistogramBars(hist), chart.ColorWords, sz)),
	}
	s.render(w, "index", data)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	v, ok := s.load(w, r)
	if !ok {
		return
	}
	lim := s.limits()
	words := aggregate.TopTitleWords(v.filtered, lim.Words, lim.Stop)
	years := aggregate.YearCounts(v.filtered)
	yearBars := make([]chart.Bar, len(years))
	for i, yc := range years {
		yearBars[i] = chart.Bar{Label: strconv.Itoa(yc.Year), Value: float64(yc.Count)}
	}
	sz := chart.Size{W: 760, H: 480}
	data := s.page("Analysis", "/analysis", v)
	data.Charts = []template.HTML{
		template.HTML(chart.HBarChart(chart.TitleWords, chart.CountBars(words), chart.ColorWords, sz)),
		template.HTML(chart.VBarChart("Papers per Year", yearBars, chart.ColorYears, chart.DefaultSize)),
	}
	s.render(w, "analysis", data)
}

type samplePage struct {
	pageData
	Hidden      url.Values
	Rows        int
	Sort        string
	SortKeys    []string
	Term        string
	Sample      []papers.Record
	Matches     []papers.Record
	Shown       []papers.Record
	ExportQuery template.URL
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	v, ok := s.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	p := samplePage{
		pageData: s.page("Sample Data", "/sample", v),
		Hidden:   v.sel.Query(),
		Rows:     SampleRows(q),
		Sort:     SortKey(q),
		SortKeys: papers.SortKeys,
		Term:     q.Get("q"),
	}
	p.Sample = papers.Sample(v.filtered, p.Rows, p.Sort)
	if p.Term != "" {
		p.Matches = papers.Search(v.filtered, p.Term)
		p.Shown = p.Matches[:min(len(p.Matches), maxSearchRows)]
	}
	eq := v.sel.Query()
	eq.Set("rows", strconv.Itoa(p.Rows))
	eq.Set("sort", p.Sort)
	p.ExportQuery = template.URL(eq.Encode())
	s.render(w, "sample", p)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, ok := s.load(w, r)
	if !ok {
		return
	}
	if !s.export.Allow() {
		s.log.Warn("export rate limited", "remote", r.RemoteAddr)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many export requests, try again shortly", http.StatusTooManyRequests)
		return
	}
	q := r.URL.Query()
	sample := papers.Sample(v.filtered, SampleRows(q), SortKey(q))
	var buf bytes.Buffer
	if err := papers.WriteCSV(&buf, sample, papers.SampleColumns); err != nil {
		s.log.Error("export", "err", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	_, _ = w.Write(buf.Bytes())
}

// SummaryResponse is the JSON body of /api/summary.
type SummaryResponse struct {
	MinYear   int               `json:"min_year"`
	MaxYear   int               `json:"max_year"`
	Journals  []string          `json:"journals"`
	Total     int               `json:"total"`
	Filtered  int               `json:"filtered"`
	Stats     papers.Stats      `json:"stats"`
	Summary   aggregate.Summary `json:"summary"`
	Histogram []aggregate.Bin   `json:"histogram"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v, ok := s.load(w, r)
	if !ok {
		return
	}
	resp := SummaryResponse{
		MinYear:   v.sel.MinYear,
		MaxYear:   v.sel.MaxYear,
		Journals:  v.sel.Journals,
		Total:     len(v.snap.Records),
		Filtered:  len(v.filtered),
		Stats:     papers.Summarize(v.filtered),
		Summary:   aggregate.Summarize(v.filtered, s.limits()),
		Histogram: aggregate.AbstractHistogram(v.filtered, aggregate.DefaultHistogramBins),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode summary", "err", err)
	}
}
