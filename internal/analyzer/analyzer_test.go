package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "courses.go", `package canvasapi

type Courses struct{ s any }

type CoursesListParams struct{ Page any }

type helper struct{}

func NewCourses(s any) *Courses { return &Courses{s: s} }

func (c *Courses) List() {}
`)
	writeFile(t, dir, "broken_ctor.go", `package canvasapi

type Users struct{}

func NewUsers() Users { return Users{} }
`)
	writeFile(t, dir, "client.go", "package canvasapi\n\ntype Client struct{}\n")
	writeFile(t, dir, "courses_models.go", "package canvasapi\n\ntype Course struct{}\n")
	writeFile(t, dir, "courses_test.go", "package canvasapi\n")
	writeFile(t, dir, "README.md", "# not go")

	files, err := New(dir, "client.go").Analyze()
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "broken_ctor.go", files[0].Name)
	assert.Equal(t, []string{"Users"}, files[0].Types)
	assert.False(t, files[0].Declares("Users"))

	courses := files[1]
	assert.Equal(t, "canvasapi", courses.Package)
	assert.Equal(t, []string{"Courses", "CoursesListParams"}, courses.Types)
	assert.True(t, courses.Declares("Courses"))
	assert.False(t, courses.Declares("CoursesListParams"))
	assert.False(t, courses.Declares("helper"))
}

func TestAnalyzeParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package x\nfunc {")

	_, err := New(dir).Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.go")
}

func TestAnalyzeMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope")).Analyze()
	assert.Error(t, err)
}
