package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dtobolski/sitecv/internal/scholar"
	"github.com/dtobolski/sitecv/internal/storage"
)

var publicationsLimit int

func init() {
	publicationsCmd.Flags().StringVar(&scholarAuthorID, "author-id", "", "Scholar author id (default from metrics.json, then SCHOLAR_AUTHOR_ID or sitecv.yml)")
	publicationsCmd.Flags().StringVar(&scholarHL, "hl", "", "Scholar interface language (default from SCHOLAR_HL or sitecv.yml)")
	publicationsCmd.Flags().IntVarP(&publicationsLimit, "limit", "n", 10, "Number of items to show in human output")
	rootCmd.AddCommand(publicationsCmd)
}

var publicationsCmd = &cobra.Command{
	Use:   "publications",
	Short: "Fetch the author's Scholar publication list",
	Long: `Fetch every article on the author's Google Scholar profile with its
citation count and write data/scholar_publications.json.

The author id recorded in data/metrics.json is preferred, so run the metrics
command first or set SCHOLAR_AUTHOR_ID.`,
	Args: cobra.NoArgs,
	RunE: runPublications,
}

func runPublications(cmd *cobra.Command, args []string) error {
	cfg, paths := mustPaths()
	client := mustScholarClient(cfg)

	authorID := scholarAuthorID
	if authorID == "" {
		id, err := scholar.ResolveAuthorID(paths.MetricsJSON, cfg.Scholar.AuthorID)
		if err != nil {
			exitWithScholarError(err, "")
		}
		authorID = id
	}

	logger.Info("Fetching Scholar publications", zap.String("author_id", authorID))
	file, err := client.FetchArticles(cmd.Context(), authorID, scholarHLFor(cfg))
	if err != nil {
		exitWithScholarError(err, authorID)
	}

	if err := storage.WriteJSON(paths.ScholarPublicationsJSON, file); err != nil {
		exitWithError(ExitError, "writing scholar publications: %v", err)
	}
	logger.Info("Wrote Scholar publications",
		zap.Int("items", len(file.Items)),
		zap.String("path", paths.ScholarPublicationsJSON))

	if !humanOutput {
		return outputJSON(file)
	}

	outputHuman("Wrote %d items to %s\n", len(file.Items), paths.Rel(paths.ScholarPublicationsJSON))
	for i, item := range file.Items {
		if i >= publicationsLimit {
			outputHuman("  ... and %d more\n", len(file.Items)-i)
			break
		}
		cited := "-"
		if item.CitedBy != nil {
			cited = strconv.Itoa(*item.CitedBy)
		}
		outputHuman("  %5s  %4s  %s\n", cited, orDash(item.Year), truncateString(item.Title, ListCitationMaxLen))
	}
	return nil
}
