package dashboard

import "html/template"

// pages is parsed at init time to fail fast on template errors.
var pages = template.Must(template.New("pages").Parse(layoutTemplate + indexTemplate + analysisTemplate + sampleTemplate + noDataTemplate))

const layoutTemplate = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CORD-19 Data Explorer{{if .Title}}: {{.Title}}{{end}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 260px; padding: 16px; background: #f4f4f4; min-height: 100vh; }
main { flex: 1; padding: 16px 24px; }
nav a { margin-right: 12px; }
.metrics { display: flex; gap: 24px; margin: 16px 0; }
.metric { background: #fafafa; border: 1px solid #ddd; padding: 8px 16px; }
.metric b { display: block; font-size: 1.6em; }
.grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }
select[multiple] { width: 100%; height: 240px; }
</style>
</head>
<body>
{{template "sidebar" .}}
<main>
<h1>CORD-19 Data Explorer</h1>
<nav>
<a href="/?{{.Query}}">Dashboard</a>
<a href="/analysis?{{.Query}}">Analysis</a>
<a href="/sample?{{.Query}}">Sample Data</a>
</nav>
{{end}}

{{define "footer"}}
</main>
</body>
</html>
{{end}}

{{define "sidebar"}}
<aside>
<h3>Filters</h3>
<form method="get" action="{{.Action}}">
<input type="hidden" name="filtered" value="1">
<label>From year <input type="number" name="ymin" value="{{.Sel.MinYear}}" min="{{.Snap.MinYear}}" max="{{.Snap.MaxYear}}"></label><br>
<label>To year <input type="number" name="ymax" value="{{.Sel.MaxYear}}" min="{{.Snap.MinYear}}" max="{{.Snap.MaxYear}}"></label>
<p>Journals</p>
<select name="journal" multiple>
{{range .Journals}}<option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
{{end}}</select>
<p><button type="submit">Apply</button></p>
</form>
</aside>
{{end}}

{{define "metrics"}}
<div class="metrics">
<div class="metric">Total Papers<b>{{.Stats.Total}}</b><small>of {{.Total}}</small></div>
<div class="metric">Unique Journals<b>{{.Stats.UniqueJournals}}</b></div>
<div class="metric">Years Covered<b>{{if .Stats.Total}}{{.Stats.MinYear}}-{{.Stats.MaxYear}}{{else}}n/a{{end}}</b></div>
<div class="metric">Avg Abstract Length<b>{{printf "%.0f" .Stats.AvgAbstractWords}}</b><small>words</small></div>
</div>
{{end}}
`

const indexTemplate = `
{{define "index"}}{{template "header" .}}
{{template "metrics" .}}
<div class="grid">
{{range .Charts}}<div>{{.}}</div>
{{end}}</div>
{{template "footer" .}}{{end}}
`

const analysisTemplate = `
{{define "analysis"}}{{template "header" .}}
<h2>Title Word Frequency</h2>
{{index .Charts 0}}
<h2>Statistics</h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Total Papers</td><td>{{.Stats.Total}}</td></tr>
<tr><td>Papers with Authors</td><td>{{.Stats.WithAuthors}}</td></tr>
<tr><td>Unique Journals</td><td>{{.Stats.UniqueJournals}}</td></tr>
<tr><td>Average Abstract Words</td><td>{{printf "%.1f" .Stats.AvgAbstractWords}}</td></tr>
<tr><td>Min Abstract Words</td><td>{{.Stats.MinAbstractWords}}</td></tr>
<tr><td>Max Abstract Words</td><td>{{.Stats.MaxAbstractWords}}</td></tr>
</table>
<h2>Papers per Year</h2>
{{index .Charts 1}}
{{template "footer" .}}{{end}}
`

const sampleTemplate = `
{{define "sample"}}{{template "header" .}}
<h2>Sample Data</h2>
<form method="get" action="/sample">
{{range $k, $vs := .Hidden}}{{range $vs}}<input type="hidden" name="{{$k}}" value="{{.}}">{{end}}{{end}}
<label>Rows <input type="number" name="rows" value="{{.Rows}}" min="5" max="50"></label>
<label>Sort by <select name="sort">
{{range .SortKeys}}<option value="{{.}}"{{if eq . $.Sort}} selected{{end}}>{{.}}</option>
{{end}}</select></label>
<label>Search titles and abstracts <input type="text" name="q" value="{{.Term}}"></label>
<button type="submit">Show</button>
</form>
<p><a href="/export.csv?{{.ExportQuery}}">Download sample as CSV</a></p>
<table>
<tr><th>Title</th><th>Authors</th><th>Journal</th><th>Year</th><th>Abstract words</th></tr>
{{range .Sample}}<tr><td>{{.Title.String}}</td><td>{{.Authors.String}}</td><td>{{.Journal}}</td><td>{{.Year}}</td><td>{{.AbstractWordCount}}</td></tr>
{{end}}</table>
{{if .Term}}
<h2>Search Results</h2>
<p>Found {{len .Matches}} papers matching "{{.Term}}"</p>
<table>
<tr><th>Title</th><th>Authors</th><th>Journal</th><th>Year</th></tr>
{{range .Shown}}<tr><td>{{.Title.String}}</td><td>{{.Authors.String}}</td><td>{{.Journal}}</td><td>{{.Year}}</td></tr>
{{end}}</table>
{{end}}
{{template "footer" .}}{{end}}
`

const noDataTemplate = `
{{define "nodata"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>CORD-19 Data Explorer</title></head>
<body>
<h1>CORD-19 Data Explorer</h1>
<p>Cleaned data file {{.}} not found. Please run <code>cord19 analyze</code> first.</p>
</body>
</html>
{{end}}
`
