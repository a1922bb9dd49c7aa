package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/publication"
	"github.com/dtobolski/sitecv/internal/storage"
)

var (
	listCategory string
	listType     string
	listYear     int
	listSearch   string
	listLimit    int
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category (A, B, ...)")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by record type (article, book_chapter, conference_contribution, ...)")
	listCmd.Flags().IntVarP(&listYear, "year", "y", 0, "Filter by year")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Full-text search over citations")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", DefaultListLimit, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List publication records",
	Long: `List records from data/publications.csv, newest first.

The CSV is indexed in a SQLite cache under .sitecv/ which is refreshed
automatically when the CSV changes.

Examples:
  sitecv list
  sitecv list --category A --year 2023
  sitecv list --type conference_contribution
  sitecv list --search membranes --limit 0`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	_, paths := mustPaths()
	db := mustOpenIndex(paths, false)
	defer db.Close()

	records, err := db.List(storage.Filter{
		Category:   listCategory,
		RecordType: listType,
		Year:       listYear,
		Search:     listSearch,
		Limit:      listLimit,
	})
	if err != nil {
		exitWithError(ExitError, "listing publications: %v", err)
	}

	if !humanOutput {
		fields := make([]publication.Fields, len(records))
		for i, r := range records {
			fields[i] = r.Fields
		}
		return outputJSON(fields)
	}

	if len(records) == 0 {
		fmt.Println("No matching records")
		return nil
	}

	total, _ := db.Count()
	fmt.Printf("%d of %d records:\n\n", len(records), total)
	for _, r := range records {
		fmt.Printf("  %-4s %-2s %-24s %s\n",
			orDash(r.Year), orDash(r.Category), truncateString(r.RecordType, 24),
			truncateString(r.Citation, ListCitationMaxLen))
	}
	return nil
}
