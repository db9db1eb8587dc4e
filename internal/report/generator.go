package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/types"
)

// Milestone annotates a date on price charts ("Election Day").
type Milestone struct {
	Date  string
	Label string
}

// Generator writes chart files under a report directory.
type Generator struct {
	dir    string
	theme  string
	logger *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a generator rooted at dir, creating it if needed.
// Theme is "dark" or "light".
func NewGenerator(dir, theme string, opts ...GeneratorOption) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	g := &Generator{
		dir:    dir,
		theme:  theme,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Dir returns the report directory.
func (g *Generator) Dir() string { return g.dir }

// echartsTheme maps the configured theme to an echarts built-in.
func (g *Generator) echartsTheme() string {
	if g.theme == "light" {
		return types.ThemeWesteros
	}
	return types.ThemeChalk
}

// writeFile renders a chart into <dir>/<name> via the given render func.
func (g *Generator) writeFile(name string, render func(w io.Writer) error) (string, error) {
	path := filepath.Join(g.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	g.logger.Info("report written", "path", path)
	return path, nil
}
