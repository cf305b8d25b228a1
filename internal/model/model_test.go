package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseSpec = `{
  "apiVersion": "1.0",
  "swaggerVersion": "1.2",
  "basePath": "https://canvas.instructure.com/api",
  "resourcePath": "/courses",
  "apis": [{
    "path": "/v1/courses",
    "operations": [{
      "method": "GET",
      "nickname": "list_your_courses",
      "type": "array",
      "items": {"$ref": "Course"},
      "parameters": [
        {"paramType": "query", "name": "per_page", "type": "integer", "default": 10},
        {"paramType": "query", "name": "enrollment_type", "type": "string", "enum": ["teacher", "student"]}
      ]
    }]
  }],
  "models": {"Course": {"id": "Course", "properties": {"id": {"type": "integer", "format": "int64"}}}}
}`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(courseSpec))
	require.NoError(t, err)

	assert.Equal(t, "/courses", spec.ResourcePath)
	require.Len(t, spec.APIs, 1)
	op := spec.APIs[0].Operations[0]
	assert.True(t, op.IsList())
	assert.Equal(t, "Course", op.Items.Ref)

	require.Len(t, op.Parameters, 2)
	assert.True(t, op.Parameters[0].HasDefault())
	assert.Equal(t, float64(10), op.Parameters[0].Default)
	assert.False(t, op.Parameters[1].HasDefault())
	assert.Equal(t, []string{"teacher", "student"}, op.Parameters[1].Enum)

	assert.Equal(t, "int64", spec.Models["Course"].Properties["id"].Format)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "courses.json")
	require.NoError(t, os.WriteFile(good, []byte(courseSpec), 0o644))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	spec, err := Load(good)
	require.NoError(t, err)
	assert.Len(t, spec.APIs, 1)

	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseIndex(t *testing.T) {
	idx, err := ParseIndex([]byte(`{"apis": [{"path": "/courses.json", "description": "Courses"}, {"path": "users.json"}]}`))
	require.NoError(t, err)
	require.Len(t, idx.APIs, 2)
	assert.Equal(t, "courses.json", idx.APIs[0].FileName())
	assert.Equal(t, "users.json", idx.APIs[1].FileName())
}
