package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/cord19-explorer/internal/aggregate"
	"github.com/KaramelBytes/cord19-explorer/internal/analysis"
	"github.com/KaramelBytes/cord19-explorer/internal/chart"
	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/store"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	anaCleanedPath string
	anaChartPath   string
	anaSummaryPath string
	anaSQLitePath  string
	anaDelimiter   string
	anaMaxRows     int
	anaSampleRows  int
	anaTopJournals int
	anaTopSources  int
	anaTopWords    int
	anaNoDescribe  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [metadata.csv]",
	Short: "Clean the metadata file, print summaries and write the cleaned data and chart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.InputPath
		if len(args) == 1 {
			path = args[0]
		}
		opt, err := tableOptions(anaDelimiter, anaMaxRows)
		if err != nil {
			return err
		}

		// Load and validate before printing anything.
		t, err := table.Load(path, opt)
		if err != nil {
			return err
		}
		if err := table.RequireColumns(t, cleaning.RequiredColumns...); err != nil {
			return err
		}
		logger.Debug("loaded metadata", "path", path, "rows", t.Len(), "columns", len(t.Columns))

		if !anaNoDescribe {
			dopt := analysis.DefaultOptions()
			dopt.SampleRows = firstPositive(anaSampleRows, cfg.SampleRows)
			fmt.Println(analysis.Describe(t, dopt).Markdown())
		}

		cleaned, stats := cleaning.Clean(t)
		fmt.Printf("✓ Cleaned %d rows: kept %d, dropped %d without a publication year, filled %d missing journals\n",
			stats.RowsIn, stats.RowsOut, stats.DroppedNoYear, stats.JournalsFilled)
		if stats.RowsOut == 0 {
			fmt.Println("⚠ No rows have a parseable publish_time; summaries are empty")
		}

		records := papers.FromTable(cleaned)
		lim := aggregate.BatchLimits()
		lim.Journals = firstPositive(anaTopJournals, cfg.TopJournals, lim.Journals)
		lim.Sources = firstPositive(anaTopSources, cfg.TopSources, lim.Sources)
		lim.Words = firstPositive(anaTopWords, cfg.TopWords, lim.Words)
		sum := aggregate.Summarize(records, lim)
		fmt.Print(summaryText(sum))

		cleanedPath := firstString(anaCleanedPath, cfg.CleanedPath)
		if err := cleaned.Save(cleanedPath); err != nil {
			return fmt.Errorf("save cleaned data: %w", err)
		}
		fmt.Printf("✓ Wrote cleaned data to %s\n", cleanedPath)

		chartPath := firstString(anaChartPath, cfg.ChartPath)
		if err := utils.SafeWriteFile(chartPath, []byte(chart.RenderPanel(sum))); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("✓ Wrote chart to %s\n", chartPath)

		if p := firstString(anaSummaryPath, cfg.SummaryPath); p != "" {
			b, err := yaml.Marshal(sum)
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			if err := utils.SafeWriteFile(p, b); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", p)
		}

		if p := firstString(anaSQLitePath, cfg.SQLitePath); p != "" {
			db, err := store.Open(p)
			if err != nil {
				return err
			}
			defer db.Close()
			run := store.NewRun(filepath.Base(path), stats.RowsIn, stats.RowsOut)
			if err := db.SaveRun(cmd.Context(), run, records); err != nil {
				return fmt.Errorf("store run: %w", err)
			}
			fmt.Printf("✓ Stored %d records in %s (run %s)\n", len(records), p, run.ID)
		}
		return nil
	},
}

// summaryText renders the aggregation tables for the console.
func summaryText(s aggregate.Summary) string {
	var b strings.Builder
	b.WriteString("\n[PUBLICATIONS BY YEAR]\n")
	for _, yc := range s.ByYear {
		b.WriteString(fmt.Sprintf("%d: %d\n", yc.Year, yc.Count))
	}
	writeCounts(&b, "[TOP JOURNALS]", s.TopJournals)
	writeCounts(&b, "[TOP SOURCES]", s.TopSources)
	writeCounts(&b, "[TOP TITLE WORDS]", s.TopWords)
	b.WriteString("\n")
	return b.String()
}

func writeCounts(b *strings.Builder, title string, cs []aggregate.Count) {
	b.WriteString("\n" + title + "\n")
	if len(cs) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for i, c := range cs {
		b.WriteString(fmt.Sprintf("%2d. %s: %d\n", i+1, c.Key, c.Count))
	}
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaCleanedPath, "output", "o", "", "path for the cleaned CSV (default from config: cord19_cleaned.csv)")
	analyzeCmd.Flags().StringVar(&anaChartPath, "chart", "", "path for the SVG chart panel (default from config: cord19_analysis.svg)")
	analyzeCmd.Flags().StringVar(&anaSummaryPath, "summary", "", "optional path to write the summaries as YAML")
	analyzeCmd.Flags().StringVar(&anaSQLitePath, "sqlite", "", "optional SQLite database to store the cleaned records")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'auto'")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "head rows in the diagnostic report")
	analyzeCmd.Flags().IntVar(&anaTopJournals, "top-journals", 0, "number of journals to list")
	analyzeCmd.Flags().IntVar(&anaTopSources, "top-sources", 0, "number of sources to list")
	analyzeCmd.Flags().IntVar(&anaTopWords, "top-words", 0, "number of title words to list")
	analyzeCmd.Flags().BoolVar(&anaNoDescribe, "no-describe", false, "skip the diagnostic report")
}
