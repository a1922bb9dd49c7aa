// Package manifest records the inputs of the last successful build so that
// unchanged builds can be skipped.
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Version changes whenever the output format changes, forcing a rebuild.
const Version = 1

// Missing is the digest recorded for an input file that does not exist.
const Missing = "missing"

// Manifest is stored as JSON under the state directory.
type Manifest struct {
	Version     int               `json:"version"`
	GeneratedOn string            `json:"generated_on"`
	Inputs      map[string]string `json:"inputs"`
	Outputs     []string          `json:"outputs"`
}

// HashFile returns the hex BLAKE2b-256 digest of the file at path, or
// Missing if it does not exist.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Missing, nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFiles digests each path. Keys are the paths as given.
func HashFiles(paths ...string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		d, err := HashFile(p)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", p, err)
		}
		out[p] = d
	}
	return out, nil
}

// Load reads a manifest. A missing file yields (nil, nil).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest, creating its directory.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Fresh reports whether a build described by inputs, outputs and generatedOn
// would reproduce m: same version, same date, same input digests, the same
// output paths, and every output still on disk.
func (m *Manifest) Fresh(inputs map[string]string, outputs []string, generatedOn string) bool {
	if m == nil || m.Version != Version || m.GeneratedOn != generatedOn {
		return false
	}
	if len(m.Inputs) != len(inputs) {
		return false
	}
	for k, v := range inputs {
		if m.Inputs[k] != v {
			return false
		}
	}
	if len(m.Outputs) == 0 || !slices.Equal(m.Outputs, outputs) {
		return false
	}
	for _, out := range m.Outputs {
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}
	return true
}
