// Package report renders payment, workload, and completed-project
// reports as Markdown, CSV, and HTML files under a reports directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Generator writes report artifacts into OutDir.
type Generator struct {
	OutDir string
	Now    func() time.Time
	Log    *log.Logger
}

// NewGenerator creates a generator writing to outDir.
func NewGenerator(outDir string, logger *log.Logger) *Generator {
	return &Generator{OutDir: outDir, Now: time.Now, Log: logger}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// write saves content under OutDir and returns the full path.
func (g *Generator) write(name string, content []byte) (string, error) {
	if err := os.MkdirAll(g.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(g.OutDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if g.Log != nil {
		g.Log.Info("report written", "path", path)
	}
	return path, nil
}

// Manifest records one generation run.
type Manifest struct {
	RunID       string   `json:"run_id"`
	GeneratedAt string   `json:"generated_at"`
	Files       []string `json:"files"`
}

// WriteManifest saves manifest.json describing the files of this run.
func (g *Generator) WriteManifest(files []string) (string, error) {
	m := Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: g.now().Format(time.RFC3339),
		Files:       files,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return g.write("manifest.json", append(data, '\n'))
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
