package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
)

// Spec is one API declaration file as published in the Canvas API docs
// (Swagger 1.2). It describes a single resource and its endpoints.
type Spec struct {
	APIVersion     string           `json:"apiVersion"`
	SwaggerVersion string           `json:"swaggerVersion"`
	BasePath       string           `json:"basePath"`
	ResourcePath   string           `json:"resourcePath"`
	Produces       []string         `json:"produces"`
	APIs           []API            `json:"apis"`
	Models         map[string]Model `json:"models"`
}

// API groups the operations sharing one path.
type API struct {
	Path        string      `json:"path"`
	Description string      `json:"description"`
	Operations  []Operation `json:"operations"`
}

// Operation is one endpoint.
type Operation struct {
	Method     string      `json:"method"`
	Summary    string      `json:"summary"`
	Notes      string      `json:"notes"`
	Nickname   string      `json:"nickname"`
	Type       string      `json:"type"`
	Items      *Items      `json:"items,omitempty"`
	Deprecated bool        `json:"deprecated"`
	Parameters []Parameter `json:"parameters"`
}

// IsList reports whether the operation returns a JSON array.
func (o *Operation) IsList() bool { return o.Type == "array" }

// Parameter describes one endpoint parameter.
type Parameter struct {
	ParamType   string   `json:"paramType"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Format      string   `json:"format"`
	Required    bool     `json:"required"`
	Deprecated  bool     `json:"deprecated"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Items       *Items   `json:"items,omitempty"`
}

// HasDefault reports whether the spec declares a default for p.
func (p *Parameter) HasDefault() bool { return p.Default != nil }

type Items struct {
	Type string `json:"type,omitempty"`
	Ref  string `json:"$ref,omitempty"`
}

// Model is a response object description.
type Model struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Required    []string            `json:"required"`
	Properties  map[string]Property `json:"properties"`
}

type Property struct {
	Type        string   `json:"type"`
	Format      string   `json:"format"`
	Description string   `json:"description"`
	Example     any      `json:"example,omitempty"`
	Ref         string   `json:"$ref,omitempty"`
	Items       *Items   `json:"items,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Index is the resource listing (api-docs.json) that references every spec.
type Index struct {
	APIVersion     string     `json:"apiVersion"`
	SwaggerVersion string     `json:"swaggerVersion"`
	APIs           []IndexAPI `json:"apis"`
}

type IndexAPI struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// FileName returns the spec file name an index entry refers to.
func (a IndexAPI) FileName() string {
	return strings.TrimPrefix(a.Path, "/")
}

// Parse decodes a spec document.
func Parse(data []byte) (*Spec, error) {
	spec := &Spec{}
	if err := sonic.Unmarshal(data, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// Load reads and decodes the spec file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse spec %s: %w", filepath.Base(path), err)
	}
	return spec, nil
}

// ParseIndex decodes a resource listing.
func ParseIndex(data []byte) (*Index, error) {
	idx := &Index{}
	if err := sonic.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	return idx, nil
}
