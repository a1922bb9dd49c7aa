package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in sitecv.yml at the site root.

Usage:
  sitecv config                           # Show all config
  sitecv config viewer                    # Get specific value
  sitecv config viewer zathura            # Set value
  sitecv config scholar-author-id XXXXXX  # Set Scholar author id

Keys:
  data-dir           Data directory (default data)
  assets-dir         Assets directory (default assets)
  fonts-dir          Directory holding DejaVuSans.ttf (default assets/fonts)
  cv-basename        CV file name without extension (default Scientific-CV)
  viewer             PDF viewer (system, skim, preview, zathura, evince, okular)
  scholar-author-id  Google Scholar author id
  scholar-hl         Google Scholar interface language
  path               Location of sitecv.yml (read-only)

SCHOLAR_AUTHOR_ID and SCHOLAR_HL override the file at run time but are never
written back.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configKey binds a CLI key to a field of the config.
type configKey struct {
	get func(*config.Config) string
	set func(*config.Config, string)
}

var configKeys = map[string]configKey{
	"data-dir": {
		get: func(c *config.Config) string { return c.DataDir },
		set: func(c *config.Config, v string) { c.DataDir = v },
	},
	"assets-dir": {
		get: func(c *config.Config) string { return c.AssetsDir },
		set: func(c *config.Config, v string) { c.AssetsDir = v },
	},
	"fonts-dir": {
		get: func(c *config.Config) string { return c.FontsDir },
		set: func(c *config.Config, v string) { c.FontsDir = v },
	},
	"cv-basename": {
		get: func(c *config.Config) string { return c.CVBaseName },
		set: func(c *config.Config, v string) { c.CVBaseName = v },
	},
	"viewer": {
		get: func(c *config.Config) string { return c.Viewer },
		set: func(c *config.Config, v string) { c.Viewer = v },
	},
	"scholar-author-id": {
		get: func(c *config.Config) string { return c.Scholar.AuthorID },
		set: func(c *config.Config, v string) { c.Scholar.AuthorID = v },
	},
	"scholar-hl": {
		get: func(c *config.Config) string { return c.Scholar.HL },
		set: func(c *config.Config, v string) { c.Scholar.HL = v },
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindRoot()

	cfg, err := config.LoadFile(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// No args: show all config
	if len(args) == 0 {
		values := make(map[string]string, len(configKeys))
		for name, k := range configKeys {
			values[jsonKey(name)] = k.get(cfg)
		}
		if humanOutput {
			for _, name := range sortedConfigKeys() {
				fmt.Printf("%-18s %s\n", name+":", configKeys[name].get(cfg))
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	if normalizedKey == "path" {
		if len(args) == 2 {
			exitWithError(ExitError, "path is read-only")
		}
		if humanOutput {
			fmt.Println(config.ConfigPath(root))
		} else {
			outputJSON(map[string]string{"path": config.ConfigPath(root)})
		}
		return nil
	}

	k, ok := configKeys[normalizedKey]
	if !ok {
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	// One arg: get specific value
	if len(args) == 1 {
		if humanOutput {
			fmt.Println(k.get(cfg))
		} else {
			outputJSON(map[string]string{jsonKey(normalizedKey): k.get(cfg)})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	k.set(cfg, value)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
		})
	}

	return nil
}

// normalizeKey converts key formats (cv-basename, cv_basename, CV-Basename) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

// jsonKey converts a CLI key to its JSON field name.
func jsonKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

func sortedConfigKeys() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
