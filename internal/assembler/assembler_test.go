package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tylerclair/canopy/internal/model"
)

func TestServiceParamString(t *testing.T) {
	params := []model.Parameter{
		{Name: "b", Required: true},
		{Name: "z", Default: float64(1)},
		{Name: "a", Required: true},
		{Name: "y", Default: float64(2)},
	}
	assert.Equal(t, "a, b, y=2, z=1", ServiceParamString(params))
}

func TestServiceParamStringOptionalWithoutDefault(t *testing.T) {
	params := []model.Parameter{
		{Name: "search_term"},
		{Name: "course_id", Required: true},
		{Name: "include[]"},
		{Name: "state", Default: "available"},
		{Name: "published", Default: true},
	}
	assert.Equal(t, `course_id, include_=nil, published=true, search_term=nil, state="available"`, ServiceParamString(params))
}

func TestServiceParamStringEmpty(t *testing.T) {
	assert.Equal(t, "", ServiceParamString(nil))
}

func TestSanitize(t *testing.T) {
	n := NewNamer("custom")
	tests := map[string]string{
		"class":                        "_class",
		"enrollment[type]":             "enrollment_type",
		"type":                         "_type",
		"func":                         "_func",
		"string":                       "string",
		"url":                          "url",
		"path":                         "path",
		"None":                         "_None",
		"custom":                       "_custom",
		"course_id":                    "course_id",
		"include[]":                    "include_",
		"module[prerequisite_ids][]":   "module_prerequisite_ids_",
		"2fa":                          "_2fa",
		"user[name":                    "user[name",
		"calendar_event[context_code]": "calendar_event_context_code",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, n.Sanitize(in))
		})
	}
}

func TestServiceParamStringKeepsTemplateNames(t *testing.T) {
	params := []model.Parameter{{Name: "url"}, {Name: "path"}, {Name: "context"}, {Name: "string"}, {Name: "class"}}
	assert.Equal(t, "_class=nil, context=nil, path=nil, string=nil, url=nil", ServiceParamString(params))
}

func TestIdent(t *testing.T) {
	n := NewNamer()
	tests := map[string]string{
		"url":       "_url",
		"a":         "_a",
		"ctx":       "_ctx",
		"string":    "_string",
		"class":     "_class",
		"courseId":  "courseId",
		"include[]": "include_",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, n.Ident(in))
		})
	}
}

func TestExportedName(t *testing.T) {
	tests := map[string]string{
		"course_id":       "CourseID",
		"html_url":        "HTMLURL",
		"sis_course_id":   "SISCourseID",
		"user_ids":        "UserIDs",
		"enrollment_type": "EnrollmentType",
		"url":             "URL",
		"Course":          "Course",
		"include_":        "Include",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ExportedName(in))
		})
	}
}

func TestBuildAPIArgumentCollision(t *testing.T) {
	spec := &model.Spec{APIs: []model.API{{
		Path: "/v1/courses",
		Operations: []model.Operation{{
			Method:   "GET",
			Nickname: "list_courses",
			Parameters: []model.Parameter{
				{ParamType: "query", Name: "include"},
				{ParamType: "query", Name: "include[]"},
				{ParamType: "query", Name: "include[]"},
				{ParamType: "query", Name: "url"},
				{ParamType: "query", Name: "html_url", Required: true},
			},
		}},
	}}}
	op := BuildAPI(spec, Options{BaseName: "courses.json"}).Operations[0]

	require.Len(t, op.Required, 1)
	assert.Equal(t, "htmlUrl", op.Required[0].Arg)
	assert.Equal(t, "HTMLURL", op.Required[0].Field)

	require.Len(t, op.Optional, 3)
	assert.Equal(t, "include", op.Optional[0].Wire)
	assert.Equal(t, "include", op.Optional[0].Arg)
	assert.Equal(t, "Include", op.Optional[0].Field)
	assert.Equal(t, "include[]", op.Optional[1].Wire)
	assert.Equal(t, "include2", op.Optional[1].Arg)
	assert.Equal(t, "Include2", op.Optional[1].Field)
	assert.Equal(t, "url", op.Optional[2].Name)
	assert.Equal(t, "_url", op.Optional[2].Arg)
	assert.Equal(t, "URL", op.Optional[2].Field)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "CourseSections", TypeName("course_sections.go"))
	assert.Equal(t, "CourseSections", TypeName("course_sections.json"))
	assert.Equal(t, "Courses", TypeName("courses"))
	assert.Equal(t, "CoursesAsync", TypeName("courses_async.go"))
}

func TestDefaultLiteral(t *testing.T) {
	assert.Equal(t, "nil", DefaultLiteral(nil))
	assert.Equal(t, `"x"`, DefaultLiteral("x"))
	assert.Equal(t, "10", DefaultLiteral(float64(10)))
	assert.Equal(t, "1.5", DefaultLiteral(1.5))
	assert.Equal(t, "false", DefaultLiteral(false))
	assert.Equal(t, "3", DefaultLiteral(3))
	assert.Equal(t, "nil", DefaultLiteral([]any{"a"}))
}

func testSpec() *model.Spec {
	return &model.Spec{
		BasePath:     "https://canvas.instructure.com/api",
		ResourcePath: "/courses",
		APIs: []model.API{
			{
				Path: "/v1/courses/{course_id}/users",
				Operations: []model.Operation{{
					Method:   "get",
					Summary:  "List users\n in course",
					Nickname: "list_users_in_course_users",
					Type:     "array",
					Parameters: []model.Parameter{
						{ParamType: "path", Name: "course_id", Type: "string"},
						{ParamType: "query", Name: "enrollment_type[]", Type: "string", Enum: []string{"teacher", "student"}},
						{ParamType: "query", Name: "type", Type: "string"},
						{ParamType: "query", Name: "search_term", Type: "string", Required: true},
						{ParamType: "query", Name: "per_page", Type: "integer", Default: float64(10)},
					},
				}},
			},
			{
				Path: "/v1/accounts/{account_id}/courses",
				Operations: []model.Operation{{
					Method:   "POST",
					Summary:  "Create a new course",
					Nickname: "create_new_course",
					Type:     "Course",
					Parameters: []model.Parameter{
						{ParamType: "form", Name: "course[start_at]", Type: "DateTime"},
					},
				}},
			},
			{
				Path: "/v1/courses/{id}",
				Operations: []model.Operation{
					{Method: "GET", Nickname: "get_single_course", Type: "Course"},
					{Method: "GET", Nickname: "get_single_course", Type: "Course"},
				},
			},
		},
	}
}

func TestBuildAPI(t *testing.T) {
	view := BuildAPI(testSpec(), Options{Package: "canvasapi", BaseName: "courses.json"})
	assert.Equal(t, "Courses", view.APIName)
	assert.Equal(t, "Courses", view.TypeName)
	require.Len(t, view.Operations, 4)

	list := view.Operations[0]
	assert.Equal(t, "ListUsersInCourseUsers", list.Name)
	assert.Equal(t, "GET", list.Method)
	assert.Equal(t, "/api/v1/courses/{course_id}/users", list.Path)
	assert.Equal(t, "List users in course", list.Summary)
	assert.Equal(t, "canvas.ShapeAllPages", list.Shape())
	assert.False(t, list.Body)
	assert.Equal(t, "course_id, search_term, _type=nil, enrollment_type_=nil, per_page=10", list.ParamString)

	require.Len(t, list.Required, 2)
	assert.Equal(t, "courseId", list.Required[0].Arg)
	assert.True(t, list.Required[0].InPath)
	assert.Equal(t, "searchTerm", list.Required[1].Arg)
	assert.Len(t, list.PathParams(), 1)

	require.Len(t, list.Optional, 3)
	assert.Equal(t, "_type", list.Optional[0].Name)
	assert.Equal(t, "Type", list.Optional[0].Field)
	assert.Equal(t, "EnrollmentType", list.Optional[1].Field)
	assert.Equal(t, "enrollment_type[]", list.Optional[1].Wire)
	assert.Equal(t, []string{"teacher", "student"}, list.Optional[1].Enum)
	assert.Equal(t, "10", list.Optional[2].DefaultLiteral)
	assert.Equal(t, "CoursesListUsersInCourseUsersParams", list.ParamsType(view.TypeName))

	create := view.Operations[1]
	assert.True(t, create.Body)
	assert.Equal(t, "canvas.ShapeSingleItem", create.Shape())
	require.Len(t, create.Required, 1)
	assert.Equal(t, "account_id", create.Required[0].Name, "undeclared placeholder becomes a path parameter")
	require.Len(t, create.Optional, 1)
	assert.True(t, create.Optional[0].DateTime)

	assert.Equal(t, "GetSingleCourse", view.Operations[2].Name)
	assert.Equal(t, "GetSingleCourse2", view.Operations[3].Name)
}

func TestBuildAPIAsync(t *testing.T) {
	view := BuildAPI(testSpec(), Options{BaseName: "courses.json", Async: true})
	assert.Equal(t, "Courses", view.APIName)
	assert.Equal(t, "CoursesAsync", view.TypeName)
	assert.True(t, view.Async)
}

func TestBuildAPIExplicitName(t *testing.T) {
	view := BuildAPI(testSpec(), Options{BaseName: "courses.json", APIName: "CourseAPI"})
	assert.Equal(t, "CourseAPI", view.TypeName)
}
