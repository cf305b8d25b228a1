package assembler

import (
	"go/token"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/tylerclair/canopy/internal/model"
)

// goPredeclared are the universe-scope identifiers of Go.
var goPredeclared = []string{
	"any", "append", "bool", "byte", "cap", "clear", "close", "comparable", "complex",
	"complex128", "complex64", "copy", "delete", "error", "false", "float32", "float64",
	"imag", "int", "int16", "int32", "int64", "int8", "iota", "len", "make", "max", "min",
	"new", "nil", "panic", "print", "println", "real", "recover", "rune", "string", "true",
	"uint", "uint16", "uint32", "uint64", "uint8", "uintptr",
}

// pythonKeywords keeps escaped names identical to the ones produced for the
// Python client generated from the same specs.
var pythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
	"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
	"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
	"return", "try", "while", "with", "yield",
}

// generatedScope are identifiers the API templates declare or import in
// every method body.
var generatedScope = []string{"a", "canvas", "context", "ctx", "err", "opts", "path", "req", "url", "values"}

// Namer turns spec parameter names into identifiers that are safe in
// generated code.
type Namer struct {
	keywords map[string]struct{}
	scope    map[string]struct{}
}

// NewNamer returns a Namer that escapes Go keywords, Python keywords and
// extra in parameter names. Argument identifiers are additionally kept clear
// of Go predeclared identifiers and names used by the templates.
func NewNamer(extra ...string) *Namer {
	n := &Namer{keywords: make(map[string]struct{}), scope: make(map[string]struct{})}
	for _, group := range [][]string{pythonKeywords, extra} {
		for _, w := range group {
			n.keywords[w] = struct{}{}
		}
	}
	for _, group := range [][]string{goPredeclared, generatedScope} {
		for _, w := range group {
			n.scope[w] = struct{}{}
		}
	}
	return n
}

var defaultNamer = NewNamer()

// IsReserved reports whether name must be escaped.
func (n *Namer) IsReserved(name string) bool {
	if token.IsKeyword(name) {
		return true
	}
	_, ok := n.keywords[name]
	return ok
}

// FixParamName flattens bracketed parameter names: enrollment[type] becomes
// enrollment_type and include[] becomes include_.
func FixParamName(name string) string {
	if !strings.HasSuffix(name, "]") {
		return name
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "[", "_"), "]", "")
}

// Sanitize flattens brackets and escapes reserved names and names that
// cannot start an identifier with a leading underscore.
func (n *Namer) Sanitize(name string) string {
	name = FixParamName(name)
	if name == "" {
		return "_"
	}
	if n.IsReserved(name) || (name[0] >= '0' && name[0] <= '9') {
		return "_" + name
	}
	return name
}

// Ident sanitizes name for use as a local identifier in generated method
// bodies.
func (n *Namer) Ident(name string) string {
	name = n.Sanitize(name)
	if _, ok := n.scope[name]; ok {
		return "_" + name
	}
	return name
}

// ServiceParamString renders the parameter list of an operation: required
// names first, then optional name=default pairs, each group sorted.
func (n *Namer) ServiceParamString(params []model.Parameter) string {
	var required, optional []string
	for _, p := range params {
		name := n.Sanitize(p.Name)
		switch {
		case p.Required:
			required = append(required, name)
		case p.HasDefault():
			optional = append(optional, name+"="+DefaultLiteral(p.Default))
		default:
			optional = append(optional, name+"=nil")
		}
	}
	slices.Sort(required)
	slices.Sort(optional)
	return strings.Join(append(required, optional...), ", ")
}

// ServiceParamString uses the default Namer.
func ServiceParamString(params []model.Parameter) string {
	return defaultNamer.ServiceParamString(params)
}

// DefaultLiteral renders a spec default as a Go literal.
func DefaultLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(t)
	default:
		return "nil"
	}
}

// initialisms are upper-cased whole by ExportedName.
var initialisms = map[string]struct{}{
	"API": {}, "CSV": {}, "HTML": {}, "HTTP": {}, "ID": {}, "IDS": {}, "IP": {}, "JSON": {},
	"LTI": {}, "SIS": {}, "SQL": {}, "URI": {}, "URL": {}, "UUID": {}, "XML": {},
}

// ExportedName converts a snake_case name into an exported Go identifier
// that keeps initialisms upper-case: html_url becomes HTMLURL.
func ExportedName(name string) string {
	words := lo.Words(name)
	for i, w := range words {
		up := strings.ToUpper(w)
		if _, ok := initialisms[up]; ok {
			if up == "IDS" {
				up = "IDs"
			}
			words[i] = up
			continue
		}
		words[i] = lo.Capitalize(w)
	}
	return strings.Join(words, "")
}

// TypeName converts a snake_case base name into an exported Go identifier:
// course_sections becomes CourseSections.
func TypeName(base string) string {
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return lo.PascalCase(base)
}
