package assembler

import (
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tylerclair/canopy/internal/model"
)

// APIView is the data rendered into one generated API file.
type APIView struct {
	Package  string
	BaseName string
	APIName  string
	// TypeName is APIName, suffixed with Async for the async variant.
	TypeName     string
	ResourcePath string
	Async        bool
	Operations   []OperationView
}

// OperationView describes one generated method.
type OperationView struct {
	Name        string
	Method      string
	Path        string
	Summary     string
	Notes       string
	Deprecated  bool
	List        bool
	ParamString string
	// Body is true when values travel as a form body rather than a query.
	Body     bool
	Required []ParamView
	Optional []ParamView
}

// ParamsType names the struct holding the optional parameters.
func (o OperationView) ParamsType(typeName string) string {
	return typeName + o.Name + "Params"
}

// Shape names the canvas.Shape constant the method requests.
func (o OperationView) Shape() string {
	if o.List {
		return "canvas.ShapeAllPages"
	}
	return "canvas.ShapeSingleItem"
}

// PathParams returns the required parameters substituted into the path.
func (o OperationView) PathParams() []ParamView {
	return lo.Filter(o.Required, func(p ParamView, _ int) bool { return p.InPath })
}

// ParamView describes one parameter of a generated method.
type ParamView struct {
	Wire           string
	Name           string
	Arg            string
	Field          string
	Description    string
	InPath         bool
	DefaultLiteral string
	Enum           []string
	DateTime       bool
}

// Options tune the assembly of a spec.
type Options struct {
	Package  string
	BaseName string
	APIName  string
	Async    bool
	Namer    *Namer
}

var placeholder = regexp.MustCompile(`\{([^}/]+)\}`)

// BuildAPI assembles the view of one spec file.
func BuildAPI(spec *model.Spec, opts Options) *APIView {
	namer := opts.Namer
	if namer == nil {
		namer = defaultNamer
	}
	apiName := opts.APIName
	if apiName == "" {
		apiName = TypeName(opts.BaseName)
	}
	view := &APIView{
		Package:      opts.Package,
		BaseName:     opts.BaseName,
		APIName:      apiName,
		TypeName:     apiName,
		ResourcePath: spec.ResourcePath,
		Async:        opts.Async,
	}
	if opts.Async {
		view.TypeName = apiName + "Async"
	}

	prefix := ""
	if u, err := url.Parse(spec.BasePath); err == nil {
		prefix = strings.TrimSuffix(u.Path, "/")
	}

	seen := make(map[string]int)
	for _, api := range spec.APIs {
		for _, op := range api.Operations {
			ov := buildOperation(namer, prefix, api, op)
			seen[ov.Name]++
			if n := seen[ov.Name]; n > 1 {
				ov.Name += strconv.Itoa(n)
			}
			view.Operations = append(view.Operations, ov)
		}
	}
	return view
}

func buildOperation(namer *Namer, prefix string, api model.API, op model.Operation) OperationView {
	name := op.Nickname
	if name == "" {
		name = op.Summary
	}
	method := strings.ToUpper(op.Method)
	ov := OperationView{
		Name:       lo.PascalCase(name),
		Method:     method,
		Path:       prefix + api.Path,
		Summary:    singleLine(op.Summary),
		Notes:      op.Notes,
		Deprecated: op.Deprecated,
		List:       op.IsList(),
		Body:       method == http.MethodPost || method == http.MethodPut,
	}

	params := normalizeParams(api.Path, op.Parameters)
	ov.ParamString = namer.ServiceParamString(params)

	views := lo.UniqBy(lo.Map(params, func(p model.Parameter, _ int) ParamView {
		return buildParam(namer, p)
	}), func(p ParamView) string { return p.Wire })

	// Distinct wire names may still collapse to one identifier, e.g.
	// include and include[].
	args := make(map[string]int)
	for i := range views {
		args[views[i].Arg]++
		if n := args[views[i].Arg]; n > 1 {
			views[i].Arg += strconv.Itoa(n)
			views[i].Field += strconv.Itoa(n)
		}
	}

	for _, pv := range views {
		if pv.DefaultLiteral == "" {
			ov.Required = append(ov.Required, pv)
		} else {
			ov.Optional = append(ov.Optional, pv)
		}
	}
	slices.SortStableFunc(ov.Required, func(a, b ParamView) int { return strings.Compare(a.Name, b.Name) })
	slices.SortStableFunc(ov.Optional, func(a, b ParamView) int { return strings.Compare(a.Name, b.Name) })
	return ov
}

// normalizeParams forces path parameters to be required and adds any path
// placeholder the spec forgot to declare.
func normalizeParams(path string, params []model.Parameter) []model.Parameter {
	out := make([]model.Parameter, 0, len(params))
	declared := make(map[string]bool)
	for _, p := range params {
		if p.ParamType == "path" {
			p.Required = true
			declared[p.Name] = true
		}
		out = append(out, p)
	}
	for _, m := range placeholder.FindAllStringSubmatch(path, -1) {
		if !declared[m[1]] {
			declared[m[1]] = true
			out = append(out, model.Parameter{ParamType: "path", Name: m[1], Type: "string", Required: true})
		}
	}
	return out
}

func buildParam(namer *Namer, p model.Parameter) ParamView {
	fixed := FixParamName(p.Name)
	pv := ParamView{
		Wire:        p.Name,
		Name:        namer.Sanitize(p.Name),
		Arg:         namer.Ident(lo.CamelCase(fixed)),
		Field:       ExportedName(fixed),
		Description: singleLine(p.Description),
		InPath:      p.ParamType == "path",
		Enum:        p.Enum,
		DateTime:    p.Format == "date-time" || p.Type == "DateTime",
	}
	if pv.Field == "" || pv.Field[0] < 'A' || pv.Field[0] > 'Z' {
		pv.Field = "P" + pv.Field
	}
	if !p.Required {
		pv.DefaultLiteral = DefaultLiteral(p.Default)
	}
	return pv
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
