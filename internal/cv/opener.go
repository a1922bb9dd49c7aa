package cv

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener opens generated CV files in a desktop viewer.
type Opener struct {
	viewer string
}

// NewOpener creates an opener for the named viewer ("system" when empty).
func NewOpener(viewer string) *Opener {
	if viewer == "" {
		viewer = "system"
	}
	return &Opener{viewer: viewer}
}

// Open starts the viewer on path without waiting for it to exit.
func (o *Opener) Open(path string) error {
	// Fail fast if file doesn't exist
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s (run sitecv build first)", path)
		}
		return fmt.Errorf("checking file: %w", err)
	}

	cmd, err := o.Command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the command that opens path on the given platform.
func (o *Opener) Command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return o.darwinCommand(path), nil
	case "linux":
		return o.linuxCommand(path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// darwinCommand returns the command to open a file on macOS.
func (o *Opener) darwinCommand(path string) *exec.Cmd {
	if isPDF(path) {
		switch o.viewer {
		case "skim":
			return exec.Command("open", "-a", "Skim", path)
		case "preview":
			return exec.Command("open", "-a", "Preview", path)
		}
	}
	return exec.Command("open", path)
}

// linuxCommand returns the command to open a file on Linux. Named PDF
// viewers are only used for PDFs; other files go to xdg-open.
func (o *Opener) linuxCommand(path string) *exec.Cmd {
	switch o.viewer {
	case "zathura", "evince", "okular":
		if isPDF(path) {
			return exec.Command(o.viewer, path)
		}
	}
	return exec.Command("xdg-open", path)
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
