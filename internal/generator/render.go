package generator

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/tools/imports"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Template names.
const (
	apiTemplate      = "api.go.tmpl"
	asyncAPITemplate = "api_async.go.tmpl"
	clientTemplate   = "client.go.tmpl"
)

// Renderer executes the generator templates. Files found in overrideDir
// replace the embedded template of the same name.
type Renderer struct {
	overrideDir string
}

func NewRenderer(overrideDir string) *Renderer {
	return &Renderer{overrideDir: overrideDir}
}

func (r *Renderer) read(name string) ([]byte, error) {
	if r.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(r.overrideDir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return embedded.ReadFile("templates/" + name)
}

// baseTemplates lists the shared _*.tmpl definitions.
func (r *Renderer) baseTemplates() ([]string, error) {
	names := make(map[string]struct{})
	entries, err := fs.Glob(embedded, "templates/_*.tmpl")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		names[filepath.Base(e)] = struct{}{}
	}
	if r.overrideDir != "" {
		extra, _ := filepath.Glob(filepath.Join(r.overrideDir, "_*.tmpl"))
		for _, e := range extra {
			names[filepath.Base(e)] = struct{}{}
		}
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out, nil
}

// Render executes the named template with data and gofmt-formats the
// result. filename is only used in error messages.
func (r *Renderer) Render(name, filename string, data any) ([]byte, error) {
	tmpl := template.New(name).Funcs(sprig.TxtFuncMap()).Funcs(template.FuncMap{
		"comment": comment,
	})

	bases, err := r.baseTemplates()
	if err != nil {
		return nil, err
	}
	for _, n := range append(bases, name) {
		src, err := r.read(n)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", n, err)
		}
		if _, err := tmpl.New(n).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", n, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}

	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w\n%s", filename, err, buf.String())
	}
	return out, nil
}

// comment turns text into // prefixed lines.
func comment(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("// "+strings.TrimSpace(l), " ")
	}
	return strings.Join(lines, "\n")
}
