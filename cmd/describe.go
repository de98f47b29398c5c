package cmd

import (
	"fmt"

	"github.com/KaramelBytes/cord19-explorer/internal/analysis"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutputPath string
	descDelimiter  string
	descMaxRows    int
	descSampleRows int
	descTopValues  int
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print a diagnostic report (shape, column kinds, missing values) for a CSV/TSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.InputPath
		if len(args) == 1 {
			path = args[0]
		}
		opt, err := tableOptions(descDelimiter, descMaxRows)
		if err != nil {
			return err
		}
		t, err := table.Load(path, opt)
		if err != nil {
			return err
		}
		dopt := analysis.DefaultOptions()
		dopt.SampleRows = firstPositive(descSampleRows, cfg.SampleRows)
		if descTopValues > 0 {
			dopt.TopValues = descTopValues
		}
		md := analysis.Describe(t, dopt).Markdown()
		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", descOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	describeCmd.Flags().StringVar(&descDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'auto'")
	describeCmd.Flags().IntVar(&descMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 0, "number of head rows to include")
	describeCmd.Flags().IntVar(&descTopValues, "top-values", 0, "categorical values listed per column")
}
