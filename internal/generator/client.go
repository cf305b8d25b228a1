package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/tylerclair/canopy/internal/analyzer"
)

const clientFile = "client.go"

type clientAPI struct {
	Name string
	File string
}

type clientView struct {
	Package string
	APIs    []clientAPI
}

// BuildClient writes client.go into outputDir, aggregating every generated
// API type found there.
func (g *Generator) BuildClient(outputDir string) (string, error) {
	exclude := append([]string{clientFile}, g.cfg.ExcludeFiles...)
	files, err := analyzer.New(outputDir, exclude...).Analyze()
	if err != nil {
		return "", err
	}

	view := clientView{Package: g.cfg.Package}
	seen := make(map[string]bool)
	for _, f := range files {
		name := lo.PascalCase(strings.TrimSuffix(f.Name, ".go"))
		switch {
		case name == "Client" || name == "Session":
			continue
		case !f.Declares(name):
			g.log.Debug().Str("file", f.Name).Str("type", name).Msg("no api type, skipping")
			continue
		case seen[name]:
			continue
		}
		seen[name] = true
		view.APIs = append(view.APIs, clientAPI{Name: name, File: f.Name})
	}
	slices.SortFunc(view.APIs, func(a, b clientAPI) int { return strings.Compare(a.File, b.File) })

	src, err := g.renderer.Render(clientTemplate, clientFile, view)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, clientFile)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", err
	}
	g.log.Info().Str("file", path).Int("apis", len(view.APIs)).Msg("generated client")
	return path, nil
}
