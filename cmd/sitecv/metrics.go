package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dtobolski/sitecv/internal/storage"
)

func init() {
	metricsCmd.Flags().StringVar(&scholarAuthorID, "author-id", "", "Scholar author id (default from SCHOLAR_AUTHOR_ID, sitecv.yml, then the built-in id)")
	metricsCmd.Flags().StringVar(&scholarHL, "hl", "", "Scholar interface language (default from SCHOLAR_HL or sitecv.yml)")
	rootCmd.AddCommand(metricsCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Fetch citation metrics from Google Scholar",
	Long: `Fetch the author's citation metrics from Google Scholar via SerpApi and
write them to data/metrics.json.

Requires SERPAPI_API_KEY in the environment, a .env file or
~/.config/sitecv/config.yml.`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, paths := mustPaths()
	client := mustScholarClient(cfg)

	authorID := scholarAuthorID
	if authorID == "" {
		authorID = cfg.MetricsAuthorID()
	}

	logger.Info("Fetching citation metrics", zap.String("author_id", authorID))
	m, err := client.FetchMetrics(cmd.Context(), authorID, scholarHLFor(cfg))
	if err != nil {
		exitWithScholarError(err, authorID)
	}

	if err := storage.WriteJSON(paths.MetricsJSON, m); err != nil {
		exitWithError(ExitError, "writing metrics: %v", err)
	}
	logger.Info("Wrote metrics", zap.String("path", paths.MetricsJSON))

	if humanOutput {
		outputHuman("Wrote %s\n", paths.Rel(paths.MetricsJSON))
		printRows([][2]string{
			{"Citations (all)", orDash(m.CitationsAll.String())},
			{"Citations (since 2016)", orDash(m.CitationsSince2016.String())},
			{"h-index (all)", orDash(m.HIndexAll.String())},
			{"h-index (since 2016)", orDash(m.HIndexSince2016.String())},
			{"i10-index (all)", orDash(m.I10IndexAll.String())},
			{"i10-index (since 2016)", orDash(m.I10IndexSince2016.String())},
			{"Last updated", m.LastUpdated},
		})
		return nil
	}

	m.Raw = nil
	return outputJSON(m)
}
