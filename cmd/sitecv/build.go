package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/build"
)

var (
	buildForce    bool
	buildWatch    bool
	buildDebounce time.Duration
)

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "Rebuild even when inputs are unchanged")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "Rebuild whenever an input file changes")
	buildCmd.Flags().DurationVar(&buildDebounce, "debounce", build.DefaultDebounce, "Quiet period before a watched rebuild")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate publications.json, summary.json and the CV",
	Long: `Generate the site data files and the CV from the data directory.

Reads:
  data/publications.csv   Publication records (UTF-8, cp1250 or latin-1)
  data/profile.json       Name, role, affiliation and links
  data/metrics.json       Citation metrics (optional)

Writes:
  data/publications.json
  data/summary.json
  assets/Scientific-CV.pdf
  assets/Scientific-CV.docx

The build is skipped when no input changed since the last build on the same
day. Use --force to rebuild anyway, or --watch to keep rebuilding on change.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	_, paths := mustPaths()

	opts := build.Options{
		Paths:  paths,
		Force:  buildForce,
		Logger: logger,
	}

	if buildWatch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := build.Watch(ctx, build.WatchOptions{
			Options:  opts,
			Debounce: buildDebounce,
			OnBuild: func(res *build.Result, err error) {
				if err == nil {
					printBuildResult(res)
				}
			},
		})
		if err != nil {
			exitWithError(ExitError, "watching inputs: %v", err)
		}
		return nil
	}

	res, err := build.Run(cmd.Context(), opts)
	if err != nil {
		exitWithError(dataExitCode(err), "build failed: %v", err)
	}
	printBuildResult(res)
	return nil
}

func printBuildResult(res *build.Result) {
	if !humanOutput {
		outputJSON(res)
		return
	}

	if res.Skipped {
		outputHuman("Up to date, nothing to build (use --force to rebuild)\n")
		return
	}

	outputHuman("Built %d records (%s, delimiter %q)\n", res.Records, res.Encoding, res.Delimiter)
	for _, out := range res.Outputs {
		outputHuman("  %s\n", out)
	}
	outputHuman("CV: %d page(s)", res.PDFPages)
	if !res.EmbeddedFonts {
		outputHuman(", core fonts (DejaVuSans not found)")
	}
	outputHuman("\n")
	if len(res.InvalidDOIs) > 0 {
		outputHuman("Invalid DOIs: %s\n", strings.Join(res.InvalidDOIs, ", "))
	}
}
