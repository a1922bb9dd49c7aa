package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/build"
	"github.com/dtobolski/sitecv/internal/cv"
	"github.com/dtobolski/sitecv/internal/storage"
)

var summaryWrite bool

func init() {
	summaryCmd.Flags().BoolVar(&summaryWrite, "write", false, "Also write data/summary.json")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the computed publication summary",
	Long: `Compute totals and per-year counts from data/publications.csv and the
citation metrics in data/metrics.json.

Nothing is written unless --write is given; use build to regenerate every
output.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	_, paths := mustPaths()

	data, err := build.LoadData(paths)
	if err != nil {
		exitWithError(dataExitCode(err), "loading data: %v", err)
	}
	s := build.Summarize(paths, data, time.Now())

	if summaryWrite {
		if err := storage.WriteJSON(paths.SummaryJSON, s); err != nil {
			exitWithError(ExitError, "writing summary: %v", err)
		}
	}

	if !humanOutput {
		return outputJSON(s)
	}

	fmt.Printf("Summary of %s (%s):\n", s.ComputedFrom, s.GeneratedOn)
	rows := make([][2]string, 0, 9)
	for _, r := range cv.SummaryRows(s) {
		rows = append(rows, [2]string{r.Label, orDash(r.Value)})
	}
	printRows(rows)

	if len(s.YearCounts) > 0 {
		fmt.Println("\nRecords per year:")
		for _, yc := range s.YearCounts {
			fmt.Printf("  %d %d\n", yc.Year, yc.Count)
		}
	}
	if summaryWrite {
		fmt.Printf("\nWrote %s\n", paths.Rel(paths.SummaryJSON))
	}
	return nil
}
