package main

import (
	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/cv"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open [pdf|docx]",
	Short: "Open the generated CV",
	Long: `Open the generated CV in a desktop viewer (PDF by default).

The PDF viewer can be set with: sitecv config viewer <name>
Valid viewers: system, skim, preview (macOS); zathura, evince, okular (Linux).`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"pdf", "docx"},
	RunE:      runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, paths := mustPaths()

	path := paths.CVPDF
	if len(args) == 1 && args[0] == "docx" {
		path = paths.CVDOCX
	}

	if err := cv.NewOpener(cfg.Viewer).Open(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Opened %s\n", paths.Rel(path))
	} else {
		outputJSON(StatusResponse{Status: "opened", Path: paths.Rel(path)})
	}
	return nil
}
