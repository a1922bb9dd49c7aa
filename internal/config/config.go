// Package config handles project configuration and the site file layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents project configuration stored in sitecv.yml at the site root.
type Config struct {
	DataDir    string        `yaml:"data_dir"`         // Relative to the site root
	AssetsDir  string        `yaml:"assets_dir"`       // Relative to the site root
	FontsDir   string        `yaml:"fonts_dir"`        // Relative to the site root
	CVBaseName string        `yaml:"cv_basename"`      // CV file name without extension
	Viewer     string        `yaml:"viewer,omitempty"` // PDF viewer for sitecv open
	Scholar    ScholarConfig `yaml:"scholar"`
}

// ScholarConfig holds the citation-metrics source settings.
type ScholarConfig struct {
	AuthorID  string  `yaml:"author_id"`
	HL        string  `yaml:"hl"`
	Endpoint  string  `yaml:"endpoint,omitempty"`
	RateLimit float64 `yaml:"rate_limit,omitempty"` // Requests per second
	MaxPages  int     `yaml:"max_pages,omitempty"`
}

const (
	ConfigFile   = "sitecv.yml"
	StateDir     = ".sitecv"
	CacheDir     = "cache"
	DBFile       = "publications.db"
	ManifestFile = "manifest.json"

	PublicationsCSVFile         = "publications.csv"
	PublicationsJSONFile        = "publications.json"
	SummaryJSONFile             = "summary.json"
	ProfileJSONFile             = "profile.json"
	MetricsJSONFile             = "metrics.json"
	ScholarPublicationsJSONFile = "scholar_publications.json"

	DefaultDataDir    = "data"
	DefaultAssetsDir  = "assets"
	DefaultFontsDir   = "assets/fonts"
	DefaultCVBaseName = "Scientific-CV"
	DefaultAuthorID   = "Rj58qXIAAAAJ" // Used by the metrics job only
	DefaultHL         = "en"
)

// Environment variables that override file configuration.
const (
	EnvRoot     = "SITECV_ROOT"
	EnvAuthorID = "SCHOLAR_AUTHOR_ID"
	EnvHL       = "SCHOLAR_HL"
	EnvAPIKey   = "SERPAPI_API_KEY"
)

// ErrNotSiteRoot is returned when no site root is found walking up from a path.
var ErrNotSiteRoot = errors.New("not in a site directory (no sitecv.yml or data/publications.csv found)")

// Default returns the configuration used when sitecv.yml is absent.
func Default() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		AssetsDir:  DefaultAssetsDir,
		FontsDir:   DefaultFontsDir,
		CVBaseName: DefaultCVBaseName,
		Scholar: ScholarConfig{
			HL: DefaultHL,
		},
	}
}

// ConfigPath returns the path to sitecv.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, StateDir, CacheDir)
}

// DBPath returns the path to the query database from a root path.
func DBPath(root string) string {
	return filepath.Join(CachePath(root), DBFile)
}

// ManifestPath returns the path to the build manifest from a root path.
func ManifestPath(root string) string {
	return filepath.Join(CachePath(root), ManifestFile)
}

// IsSiteRoot checks if the given path looks like a site root.
func IsSiteRoot(root string) bool {
	if info, err := os.Stat(ConfigPath(root)); err == nil && !info.IsDir() {
		return true
	}
	info, err := os.Stat(filepath.Join(root, DefaultDataDir, PublicationsCSVFile))
	return err == nil && !info.IsDir()
}

// FindRoot walks up from the given path to find a site root.
func FindRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsSiteRoot(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotSiteRoot
		}
		abs = parent
	}
}

// Load reads sitecv.yml from the given root, falling back to defaults when
// the file does not exist, and applies environment overrides.
func Load(root string) (*Config, error) {
	cfg, err := LoadFile(root)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads sitecv.yml without environment overrides, so that a
// config edited and saved back does not capture the environment.
func LoadFile(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to sitecv.yml at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks that the configured paths are usable.
func (c *Config) Validate() error {
	for name, dir := range map[string]string{
		"data_dir":   c.DataDir,
		"assets_dir": c.AssetsDir,
		"fonts_dir":  c.FontsDir,
	} {
		if filepath.IsAbs(dir) {
			continue
		}
		if strings.HasPrefix(filepath.Clean(dir), "..") {
			return fmt.Errorf("%s must stay inside the site root: %s", name, dir)
		}
	}
	if err := ValidateViewer(c.Viewer); err != nil {
		return err
	}
	if strings.ContainsAny(c.CVBaseName, `/\`) {
		return fmt.Errorf("cv_basename must be a file name, not a path: %s", c.CVBaseName)
	}
	return nil
}

// MetricsAuthorID returns the configured Scholar author id, falling back to
// DefaultAuthorID. The publications job must not use this fallback.
func (c *Config) MetricsAuthorID() string {
	if c.Scholar.AuthorID != "" {
		return c.Scholar.AuthorID
	}
	return DefaultAuthorID
}

// ValidViewers lists the accepted values for the viewer setting.
var ValidViewers = []string{"system", "skim", "preview", "zathura", "evince", "okular"}

// ValidateViewer checks that viewer is empty or a known viewer name.
func ValidateViewer(viewer string) error {
	if viewer == "" {
		return nil
	}
	for _, v := range ValidViewers {
		if viewer == v {
			return nil
		}
	}
	return fmt.Errorf("invalid viewer %q (valid: %s)", viewer, strings.Join(ValidViewers, ", "))
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.AssetsDir == "" {
		c.AssetsDir = def.AssetsDir
	}
	if c.FontsDir == "" {
		c.FontsDir = def.FontsDir
	}
	if c.CVBaseName == "" {
		c.CVBaseName = def.CVBaseName
	}
	if c.Scholar.HL == "" {
		c.Scholar.HL = def.Scholar.HL
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAuthorID); v != "" {
		c.Scholar.AuthorID = v
	}
	if v := os.Getenv(EnvHL); v != "" {
		c.Scholar.HL = v
	}
}

// Paths is the resolved file layout of a site.
type Paths struct {
	Root                    string
	DataDir                 string
	AssetsDir               string
	FontsDir                string
	PublicationsCSV         string
	PublicationsJSON        string
	SummaryJSON             string
	ProfileJSON             string
	MetricsJSON             string
	ScholarPublicationsJSON string
	CVPDF                   string
	CVDOCX                  string
}

// Paths resolves the configured layout against a site root.
func (c *Config) Paths(root string) Paths {
	data := resolve(root, c.DataDir)
	assets := resolve(root, c.AssetsDir)
	return Paths{
		Root:                    root,
		DataDir:                 data,
		AssetsDir:               assets,
		FontsDir:                resolve(root, c.FontsDir),
		PublicationsCSV:         filepath.Join(data, PublicationsCSVFile),
		PublicationsJSON:        filepath.Join(data, PublicationsJSONFile),
		SummaryJSON:             filepath.Join(data, SummaryJSONFile),
		ProfileJSON:             filepath.Join(data, ProfileJSONFile),
		MetricsJSON:             filepath.Join(data, MetricsJSONFile),
		ScholarPublicationsJSON: filepath.Join(data, ScholarPublicationsJSONFile),
		CVPDF:                   filepath.Join(assets, c.CVBaseName+".pdf"),
		CVDOCX:                  filepath.Join(assets, c.CVBaseName+".docx"),
	}
}

// Rel returns path relative to the root with forward slashes, or the path
// unchanged when it lies outside the root.
func (p Paths) Rel(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func resolve(root, dir string) string {
	dir = ExpandPath(dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
