package printing

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Spooler renders a fetched document printable: it lands the bytes
// somewhere stable and drives the platform print flow.
type Spooler interface {
	// Spool writes the document and returns its path.
	Spool(job string, document []byte, contentType string) (string, error)
	// Dispatch hands the spooled file to the printer.
	Dispatch(ctx context.Context, path string) error
}

// FileSpooler writes documents into a spool directory and dispatches
// them through a print command (lp by default). The file is kept after
// dispatch so a job can be re-printed without re-fetching.
type FileSpooler struct {
	Dir     string
	Command []string
}

func NewFileSpooler(dir string, command []string) *FileSpooler {
	if len(command) == 0 {
		command = []string{"lp", "-s"}
	}
	return &FileSpooler{Dir: dir, Command: command}
}

func (f *FileSpooler) Spool(job string, document []byte, contentType string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}

	path := filepath.Join(f.Dir, job+extensionFor(contentType))
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	return path, nil
}

func (f *FileSpooler) Dispatch(ctx context.Context, path string) error {
	args := append(append([]string{}, f.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, f.Command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("print command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "pdf"):
		return ".pdf"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "jpeg"):
		return ".jpg"
	default:
		return ".bin"
	}
}
