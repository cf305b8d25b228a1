package generator

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/samber/lo"
	"github.com/tylerclair/canopy/internal/assembler"
	"github.com/tylerclair/canopy/internal/model"
)

// renderModels emits one struct per spec model. Models named in skip are
// left out; every emitted model name is added to skip.
func renderModels(pkg, baseName string, spec *model.Spec, skip map[string]struct{}) ([]byte, int, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(fmt.Sprintf("Code generated by canopy from %s. DO NOT EDIT.", baseName))

	known := make(map[string]string, len(spec.Models))
	for name := range spec.Models {
		known[name] = modelTypeName(name)
	}

	emitted := 0
	names := lo.Keys(spec.Models)
	slices.Sort(names)
	for _, name := range names {
		typeName := known[name]
		if _, dup := skip[typeName]; dup {
			continue
		}
		skip[typeName] = struct{}{}
		emitted++

		m := spec.Models[name]
		props := lo.Keys(m.Properties)
		slices.Sort(props)

		fields := make([]jen.Code, 0, len(props))
		usedFields := make(map[string]int)
		for _, prop := range props {
			p := m.Properties[prop]
			field := fieldName(prop)
			usedFields[field]++
			if n := usedFields[field]; n > 1 {
				field = fmt.Sprintf("%s%d", field, n)
			}
			stmt := jen.Id(field).Add(propertyType(p.Type, p.Format, p.Ref, p.Items, known)).
				Tag(map[string]string{"json": prop + ",omitempty"})
			if p.Description != "" {
				fields = append(fields, jen.Comment(oneLine(p.Description)))
			}
			fields = append(fields, stmt)
		}

		if m.Description != "" {
			f.Comment(fmt.Sprintf("%s %s", typeName, oneLine(m.Description)))
		} else {
			f.Comment(fmt.Sprintf("%s is the %s object.", typeName, name))
		}
		f.Type().Id(typeName).Struct(fields...)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), emitted, nil
}

func propertyType(typ, format, ref string, items *model.Items, known map[string]string) *jen.Statement {
	if ref != "" {
		if t, ok := known[ref]; ok {
			return jen.Op("*").Id(t)
		}
		return jen.Id("any")
	}
	switch typ {
	case "integer":
		if format == "int32" {
			return jen.Int()
		}
		return jen.Int64()
	case "number":
		return jen.Float64()
	case "boolean":
		return jen.Bool()
	case "string", "datetime", "DateTime", "date":
		return jen.String()
	case "array":
		if items == nil {
			return jen.Index().Id("any")
		}
		return jen.Index().Add(propertyType(items.Type, "", items.Ref, nil, known))
	default:
		if t, ok := known[typ]; ok {
			return jen.Op("*").Id(t)
		}
		return jen.Id("any")
	}
}

func modelTypeName(name string) string {
	return fieldName(name)
}

// fieldName turns a property name into an exported identifier.
func fieldName(name string) string {
	id := assembler.ExportedName(name)
	if id == "" || id[0] < 'A' || id[0] > 'Z' {
		id = "X" + id
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
