package cmd

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/cord19-explorer/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/cord19-explorer/internal/config"
	"github.com/KaramelBytes/cord19-explorer/internal/store"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const metadataCSV = `title,abstract,authors,journal,source,publish_time
Masks and COVID-19 transmission,Face masks reduce spread.,"Smith, J.",Lancet,PMC,2020-03-01
Vaccine trial results,A randomized trial of vaccines.,"Doe, A.",BMJ,Medline,2021-01-15
Coronavirus in bats,Bats host coronaviruses.,"Lee, K.",,PMC,2019-05-01
Mask fitting study,,"Chan, M.",Lancet,WHO,2020-07-10
Undated report,No date here.,"Roe, P.",JAMA,PMC,
Hospital outcomes,Outcomes of patients.,,Nature,Elsevier,2020-12-31
`

// workspace isolates HOME and the working directory and writes the fixture.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.csv"), []byte(metadataCSV), 0o644))
	return dir
}

// resetFlags restores every flag to its default; bound variables and Changed
// state otherwise persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()
	runErr := rootCmd.Execute()
	w.Close()
	os.Stdout = old
	return <-done, runErr
}

func TestCLI_AnalyzeWritesArtifacts(t *testing.T) {
	dir := workspace(t)

	out, err := runCmd(t, "analyze", "--summary", "summary.yaml", "--sqlite", "db/cord19.db")
	require.NoError(t, err)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "kept 5, dropped 1 without a publication year, filled 1 missing journals")
	assert.Contains(t, out, "[PUBLICATIONS BY YEAR]\n2019: 1\n2020: 3\n2021: 1\n")
	assert.Contains(t, out, " 1. Lancet: 2")

	cleaned, err := table.Load(filepath.Join(dir, "cord19_cleaned.csv"), table.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, cleaned.Len())
	assert.GreaterOrEqual(t, cleaned.Index("year"), 0)
	assert.GreaterOrEqual(t, cleaned.Index("abstract_word_count"), 0)

	svg, err := os.ReadFile(filepath.Join(dir, "cord19_analysis.svg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg"))

	b, err := os.ReadFile(filepath.Join(dir, "summary.yaml"))
	require.NoError(t, err)
	var sum aggregate.Summary
	require.NoError(t, yaml.Unmarshal(b, &sum))
	assert.Equal(t, 5, sum.Records)
	assert.Equal(t, []aggregate.YearCount{{Year: 2019, Count: 1}, {Year: 2020, Count: 3}, {Year: 2021, Count: 1}}, sum.ByYear)

	db, err := store.Open(filepath.Join(dir, "db", "cord19.db"))
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "metadata.csv", runs[0].Source)
	assert.Equal(t, 6, runs[0].RowsIn)
	assert.Equal(t, 5, runs[0].RowsOut)
	n, err := db.CountPapers(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCLI_AnalyzeMissingColumnFailsBeforeOutput(t *testing.T) {
	dir := workspace(t)
	bad := "title,abstract,authors,journal,publish_time\nA,B,C,D,2020-01-01\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte(bad), 0o644))

	out, err := runCmd(t, "analyze", "bad.csv")
	require.Error(t, err)
	var se *table.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"source"}, se.Missing)
	assert.Empty(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "cord19_cleaned.csv"))
}

func TestCLI_AnalyzeMissingInput(t *testing.T) {
	workspace(t)
	_, err := runCmd(t, "analyze", "nope.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCLI_ExportAndSearch(t *testing.T) {
	dir := workspace(t)
	_, err := runCmd(t, "analyze", "--no-describe")
	require.NoError(t, err)

	out, err := runCmd(t, "export", "--rows", "5", "-o", "sample.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 5 of 5 papers to sample.csv")
	b, err := os.ReadFile(filepath.Join(dir, "sample.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "title,authors,journal,year,abstract_word_count", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Vaccine trial results,"), lines[1])

	_, err = runCmd(t, "export", "--rows", "3")
	assert.Error(t, err)
	_, err = runCmd(t, "export", "--sort", "citations")
	assert.Error(t, err)

	out, err = runCmd(t, "search", "MASK")
	require.NoError(t, err)
	assert.Contains(t, out, `Found 2 papers matching "MASK"`)
	assert.Contains(t, out, "Mask fitting study")

	out, err = runCmd(t, "search", "mask", "--journal", "BMJ")
	require.NoError(t, err)
	assert.Contains(t, out, `Found 0 papers`)

	out, err = runCmd(t, "search", "mask", "--csv", "--ymax", "2020")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "title,authors,journal,year\n"), out)
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestCLI_SearchWithoutCleanedData(t *testing.T) {
	workspace(t)
	_, err := runCmd(t, "search", "mask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 'cord19 analyze' first")
}

func TestCLI_DescribeWritesReport(t *testing.T) {
	dir := workspace(t)
	out, err := runCmd(t, "describe", "metadata.csv", "-o", "report.md")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote report to report.md")
	b, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "[SCHEMA]")
	assert.Contains(t, string(b), "publish_time")
}

func TestCLI_ConfigSetPersists(t *testing.T) {
	workspace(t)
	out, err := runCmd(t, "config", "set", "top_words", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved top_words")

	c, err := cfgpkg.Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, c.TopWords)

	out, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "top_words: 25")

	_, err = runCmd(t, "config", "set", "no_such_key", "1")
	assert.Error(t, err)
}

func TestCLI_ServeFailsOnBusyPort(t *testing.T) {
	workspace(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	out, err := runCmd(t, "serve", "--addr", ln.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
	assert.NotContains(t, out, "listening")
}
