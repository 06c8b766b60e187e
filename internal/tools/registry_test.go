package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/sinh-x/google-classroom-mcp/internal/aggregator"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces/mock"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/remote"
)

func newTestRegistry(t *testing.T) (*Registry, *mock.MockEntitySource) {
	t.Helper()
	ctrl := gomock.NewController(t)
	source := mock.NewMockEntitySource(ctrl)
	logger := zaptest.NewLogger(t)
	return NewRegistry(source, aggregator.New(source, logger), logger), source
}

func TestRegistry_ListsToolsInOrder(t *testing.T) {
	registry, _ := newTestRegistry(t)

	var names []string
	for _, tool := range registry.List() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
	assert.Equal(t, []string{"courses", "course_details", "assignments", "materials", "topics", "read_material"}, names)
}

func TestRegistry_Courses(t *testing.T) {
	registry, source := newTestRegistry(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindCourses).Return([]byte(`[{"id":"c1","name":"Algebra"}]`), nil)

	out := registry.Call(context.Background(), "courses", nil)

	assert.Equal(t, "[\n  {\n    \"id\": \"c1\",\n    \"name\": \"Algebra\"\n  }\n]", out)
}

func TestRegistry_CourseScopedLists(t *testing.T) {
	tests := []struct {
		tool string
		kind models.Kind
	}{
		{"materials", models.KindMaterials},
		{"topics", models.KindTopics},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			registry, source := newTestRegistry(t)
			source.EXPECT().Fetch(gomock.Any(), tt.kind, "c1").Return([]byte(`[{"id":"x1"}]`), nil)

			out := registry.Call(context.Background(), tt.tool, json.RawMessage(`{"course_id":"c1"}`))

			assert.JSONEq(t, `[{"id":"x1"}]`, out)
		})
	}
}

func TestRegistry_CourseDetails_SoftAnnouncements(t *testing.T) {
	registry, source := newTestRegistry(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindCourse, "c1").Return([]byte(`{"id":"c1"}`), nil)
	source.EXPECT().Fetch(gomock.Any(), models.KindAnnouncements, "c1").
		Return(nil, remote.NewError(remote.CategoryTransient, errors.New("503")))

	out := registry.Call(context.Background(), "course_details", json.RawMessage(`{"course_id":"c1"}`))

	assert.JSONEq(t, `{"course":{"id":"c1"},"announcements":{"status":"unavailable","error":"transient: 503"}}`, out)
}

func TestRegistry_Assignments(t *testing.T) {
	registry, source := newTestRegistry(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindCourse, "c1").Return([]byte(`{"id":"c1"}`), nil)
	source.EXPECT().Fetch(gomock.Any(), models.KindAssignments, "c1").Return([]byte(`[{"id":"w1"}]`), nil)
	source.EXPECT().Fetch(gomock.Any(), models.KindSubmissions, "c1", "w1").Return([]byte(`[]`), nil)

	out := registry.Call(context.Background(), "assignments", json.RawMessage(`{"course_id":"c1"}`))

	assert.JSONEq(t, `{"course":{"id":"c1"},"assignments":[{"courseWork":{"id":"w1"},"submissions":{"status":"ok","data":[]}}]}`, out)
}

func TestRegistry_ReadMaterial_AcceptsURL(t *testing.T) {
	registry, source := newTestRegistry(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindFileContent, "1aBcD").
		Return([]byte(`{"metadata":{"id":"1aBcD"},"content":"hello","exportedAs":"text/plain","truncated":false,"note":""}`), nil)

	out := registry.Call(context.Background(), "read_material",
		json.RawMessage(`{"file_id":"https://docs.google.com/document/d/1aBcD/edit"}`))

	assert.Contains(t, out, `"content": "hello"`)
}

func TestRegistry_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     string
		contains string
	}{
		{"unknown tool", "grades", `{}`, "unknown tool: grades"},
		{"missing course id", "materials", `{}`, "course_id (required)"},
		{"malformed arguments", "topics", `{"course_id":`, "failed to parse tool arguments"},
		{"invalid file reference", "read_material", `{"file_id":"https://example.com/nothing"}`, "could not extract file ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, _ := newTestRegistry(t)

			out := registry.Call(context.Background(), tt.tool, json.RawMessage(tt.args))

			assert.True(t, strings.HasPrefix(out, "Error: "), out)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRegistry_HardFailureRendersError(t *testing.T) {
	registry, source := newTestRegistry(t)
	key := models.Key{Kind: models.KindCourses}
	source.EXPECT().Fetch(gomock.Any(), models.KindCourses).
		Return(nil, fmt.Errorf("failed to fetch %s: %w", key, remote.NewError(remote.CategoryUnauthorized, errors.New("token revoked"))))

	out := registry.Call(context.Background(), "courses", nil)

	assert.Equal(t, "Error: failed to fetch courses: unauthorized: token revoked", out)
}

func TestRegistry_InvokeReturnsStructuredErrors(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Invoke(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = registry.Invoke(context.Background(), "course_details", json.RawMessage(`{"course_id":""}`))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
