package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	srchData     string
	srchLimit    int
	srchMinYear  int
	srchMaxYear  int
	srchJournals []string
	srchCSV      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find papers whose title or abstract contains a term (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadCleaned(srchData)
		if err != nil {
			return err
		}
		selected := recordFilter(snap, srchMinYear, srchMaxYear, srchJournals).Apply(snap.Records)
		matches := papers.Search(selected, args[0])
		if srchCSV {
			return papers.WriteCSV(os.Stdout, matches, papers.SearchColumns)
		}
		fmt.Printf("Found %d papers matching %q\n", len(matches), args[0])
		shown := matches
		if srchLimit > 0 && len(shown) > srchLimit {
			shown = shown[:srchLimit]
		}
		for _, r := range shown {
			fmt.Printf("- [%d] %s (%s)\n", r.Year, utils.Truncate(r.Title.String, 100), r.Journal)
			if r.Authors.Valid {
				fmt.Printf("  %s\n", utils.Truncate(r.Authors.String, 100))
			}
		}
		if len(shown) < len(matches) {
			fmt.Printf("… %d more (use --limit 0 to list all)\n", len(matches)-len(shown))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&srchData, "data", "", "cleaned CSV to search (default from config)")
	searchCmd.Flags().IntVar(&srchLimit, "limit", 20, "maximum results to print (0 = all)")
	searchCmd.Flags().IntVar(&srchMinYear, "ymin", 0, "earliest publication year")
	searchCmd.Flags().IntVar(&srchMaxYear, "ymax", 0, "latest publication year")
	searchCmd.Flags().StringArrayVar(&srchJournals, "journal", nil, "restrict to a journal (repeatable)")
	searchCmd.Flags().BoolVar(&srchCSV, "csv", false, "write matches as CSV to stdout")
}
