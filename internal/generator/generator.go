// Package generator renders Go API wrappers from Canvas swagger files.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tylerclair/canopy/internal/assembler"
	"github.com/tylerclair/canopy/internal/config"
	"github.com/tylerclair/canopy/internal/model"
)

// Generator turns spec files into generated Go source.
type Generator struct {
	cfg      config.GeneratorConfig
	log      zerolog.Logger
	renderer *Renderer
	namer    *assembler.Namer
	models   map[string]struct{}
}

// BuildOptions tune a single BuildAPI call.
type BuildOptions struct {
	// APIName overrides the type name derived from the spec file name.
	APIName string
	// Async renders the channel-returning variant.
	Async bool
	// Models also emits structs for the spec's models.
	Models bool
}

func New(cfg config.GeneratorConfig, log zerolog.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		log:      log,
		renderer: NewRenderer(cfg.TemplateDir),
		namer:    assembler.NewNamer(cfg.ReservedWords...),
		models:   make(map[string]struct{}),
	}
}

// BuildAPI renders the spec at specPath into outputDir and returns the
// written file paths.
func (g *Generator) BuildAPI(specPath, outputDir string, opts BuildOptions) ([]string, error) {
	spec, err := model.Load(specPath)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(specPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	view := assembler.BuildAPI(spec, assembler.Options{
		Package:  g.cfg.Package,
		BaseName: base,
		APIName:  opts.APIName,
		Async:    opts.Async,
		Namer:    g.namer,
	})

	tmpl, name := apiTemplate, stem+".go"
	if opts.Async {
		tmpl, name = asyncAPITemplate, stem+"_async.go"
	}
	src, err := g.renderer.Render(tmpl, name, view)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return nil, err
	}
	written = append(written, path)
	g.log.Info().Str("spec", base).Str("file", path).Int("operations", len(view.Operations)).Msg("generated api")

	if opts.Models && len(spec.Models) > 0 {
		src, n, err := renderModels(g.cfg.Package, base, spec, g.models)
		if err != nil {
			return written, fmt.Errorf("render models of %s: %w", base, err)
		}
		if n > 0 {
			path := filepath.Join(outputDir, stem+"_models.go")
			if err := os.WriteFile(path, src, 0o644); err != nil {
				return written, err
			}
			written = append(written, path)
			g.log.Debug().Str("file", path).Int("models", n).Msg("generated models")
		}
	}
	return written, nil
}

// BuildAll renders every .json spec in specDir that is not blacklisted.
// Failures are collected and do not stop the remaining files.
func (g *Generator) BuildAll(specDir, outputDir string, opts BuildOptions) ([]string, error) {
	entries, err := os.ReadDir(specDir)
	if err != nil {
		return nil, fmt.Errorf("read spec dir: %w", err)
	}
	g.models = make(map[string]struct{})

	var (
		written []string
		errs    []error
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if slices.Contains(g.cfg.Blacklist, name) {
			g.log.Debug().Str("spec", name).Msg("blacklisted, skipping")
			continue
		}
		files, err := g.BuildAPI(filepath.Join(specDir, name), outputDir, BuildOptions{Async: opts.Async, Models: opts.Models})
		written = append(written, files...)
		if err != nil {
			g.log.Error().Err(err).Str("spec", name).Msg("generation failed")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return written, errors.Join(errs...)
}
