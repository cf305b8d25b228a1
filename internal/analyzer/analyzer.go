// Package analyzer inspects generated API files so the client aggregator
// only wires types that actually exist.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo is what the aggregator needs to know about one Go file.
type FileInfo struct {
	Name    string
	Package string
	// Types are the exported struct types declared in the file.
	Types []string
	// Constructors maps a type name to true when New<Type>(...) *<Type>
	// is declared in the file.
	Constructors map[string]bool
}

// Declares reports whether the file declares typeName together with its
// constructor.
func (f *FileInfo) Declares(typeName string) bool {
	return slices.Contains(f.Types, typeName) && f.Constructors[typeName]
}

// Analyzer scans a directory of Go files.
type Analyzer struct {
	dir     string
	exclude map[string]struct{}
	fset    *token.FileSet
}

// New returns an Analyzer for dir. Files named in exclude are skipped, as
// are tests and generated model files.
func New(dir string, exclude ...string) *Analyzer {
	ex := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		ex[e] = struct{}{}
	}
	return &Analyzer{dir: dir, exclude: ex, fset: token.NewFileSet()}
}

func (a *Analyzer) skip(name string) bool {
	if _, ok := a.exclude[name]; ok {
		return true
	}
	return filepath.Ext(name) != ".go" ||
		strings.HasSuffix(name, "_test.go") ||
		strings.HasSuffix(name, "_models.go")
}

// Analyze parses every candidate file in name order.
func (a *Analyzer) Analyze() ([]*FileInfo, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.dir, err)
	}
	var out []*FileInfo
	for _, e := range entries {
		if e.IsDir() || a.skip(e.Name()) {
			continue
		}
		info, err := a.parseFile(filepath.Join(a.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (a *Analyzer) parseFile(path string) (*FileInfo, error) {
	file, err := parser.ParseFile(a.fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	info := &FileInfo{
		Name:         filepath.Base(path),
		Package:      file.Name.Name,
		Constructors: make(map[string]bool),
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				if _, ok := ts.Type.(*ast.StructType); ok && ts.Name.IsExported() {
					info.Types = append(info.Types, ts.Name.Name)
				}
			}
		case *ast.FuncDecl:
			if d.Recv != nil || !strings.HasPrefix(d.Name.Name, "New") {
				continue
			}
			if typeName := returnedPointer(d); typeName != "" && d.Name.Name == "New"+typeName {
				info.Constructors[typeName] = true
			}
		}
	}
	return info, nil
}

// returnedPointer names T when fn returns exactly *T.
func returnedPointer(fn *ast.FuncDecl) string {
	res := fn.Type.Results
	if res == nil || len(res.List) != 1 || len(res.List[0].Names) > 1 {
		return ""
	}
	star, ok := res.List[0].Type.(*ast.StarExpr)
	if !ok {
		return ""
	}
	if id, ok := star.X.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
