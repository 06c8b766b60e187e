package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/sinh-x/google-classroom-mcp/internal/aggregator"
	"github.com/sinh-x/google-classroom-mcp/internal/auth"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces/mock"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/remote"
	"github.com/sinh-x/google-classroom-mcp/internal/tools"
)

func newTestServer(t *testing.T) (*Server, *mock.MockEntitySource) {
	t.Helper()
	ctrl := gomock.NewController(t)
	source := mock.NewMockEntitySource(ctrl)
	logger := zaptest.NewLogger(t)
	registry := tools.NewRegistry(source, aggregator.New(source, logger), logger)
	return NewServer(registry, logger), source
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("handleHealth() status = %v, want %v", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("handleHealth() status = %v, want healthy", response["status"])
	}
}

func TestHandleListTools(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/tools", nil)
	w := httptest.NewRecorder()

	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("handleListTools() status = %v, want %v", w.Code, http.StatusOK)
	}

	var infos []ToolInfo
	if err := json.Unmarshal(w.Body.Bytes(), &infos); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(infos) != 6 {
		t.Errorf("handleListTools() returned %d tools, want 6", len(infos))
	}
	if infos[0].Name != "courses" {
		t.Errorf("handleListTools() first tool = %v, want courses", infos[0].Name)
	}
}

func TestHandleCallTool_Success(t *testing.T) {
	server, source := newTestServer(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindTopics, "c1").Return([]byte(`[{"topicId":"t1"}]`), nil)

	req := httptest.NewRequest("POST", "/tools/topics", bytes.NewBufferString(`{"course_id":"c1"}`))
	w := httptest.NewRecorder()

	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("handleCallTool() status = %v, want %v", w.Code, http.StatusOK)
	}

	var response ToolResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Success {
		t.Errorf("handleCallTool() success = false, error = %v", response.Error)
	}
	if response.Tool != "topics" {
		t.Errorf("handleCallTool() tool = %v, want topics", response.Tool)
	}
	if string(response.Result) != `[{"topicId":"t1"}]` {
		t.Errorf("handleCallTool() result = %s", response.Result)
	}
}

func TestHandleCallTool_CourseDetailsSoftFailure(t *testing.T) {
	server, source := newTestServer(t)
	source.EXPECT().Fetch(gomock.Any(), models.KindCourse, "c1").Return([]byte(`{"id":"c1"}`), nil)
	source.EXPECT().Fetch(gomock.Any(), models.KindAnnouncements, "c1").
		Return(nil, remote.NewError(remote.CategoryTransient, errors.New("backend unavailable")))

	req := httptest.NewRequest("POST", "/tools/course_details", bytes.NewBufferString(`{"course_id":"c1"}`))
	w := httptest.NewRecorder()

	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("handleCallTool() status = %v, want %v", w.Code, http.StatusOK)
	}

	var response struct {
		Success bool `json:"success"`
		Result  struct {
			Announcements aggregator.SubResult `json:"announcements"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Result.Announcements.Status != aggregator.StatusUnavailable {
		t.Errorf("announcements status = %v, want %v", response.Result.Announcements.Status, aggregator.StatusUnavailable)
	}
}

func TestHandleCallTool_Errors(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		body       string
		fetchErr   error
		wantStatus int
	}{
		{
			name:       "unknown tool",
			tool:       "grades",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing course id",
			tool:       "materials",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			tool:       "materials",
			body:       `{"course_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found upstream",
			tool:       "materials",
			body:       `{"course_id":"c1"}`,
			fetchErr:   remote.NewError(remote.CategoryNotFound, errors.New("404")),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthorized upstream",
			tool:       "materials",
			body:       `{"course_id":"c1"}`,
			fetchErr:   remote.NewError(remote.CategoryUnauthorized, errors.New("403")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not authenticated",
			tool:       "materials",
			body:       `{"course_id":"c1"}`,
			fetchErr:   fmt.Errorf("token: %w", auth.ErrNotAuthenticated),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "transient upstream",
			tool:       "materials",
			body:       `{"course_id":"c1"}`,
			fetchErr:   remote.NewError(remote.CategoryTransient, errors.New("503")),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "permanent upstream",
			tool:       "materials",
			body:       `{"course_id":"c1"}`,
			fetchErr:   remote.NewError(remote.CategoryPermanent, errors.New("400")),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, source := newTestServer(t)
			if tt.fetchErr != nil {
				source.EXPECT().Fetch(gomock.Any(), models.KindMaterials, "c1").Return(nil, tt.fetchErr)
			}

			req := httptest.NewRequest("POST", "/tools/"+tt.tool, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			server.createRouter().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("handleCallTool() status = %v, want %v", w.Code, tt.wantStatus)
			}

			var response ToolResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response.Success {
				t.Error("handleCallTool() success = true, want false")
			}
			if response.Error == "" {
				t.Error("handleCallTool() error is empty")
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	server.createRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("/metrics status = %v, want %v", w.Code, http.StatusOK)
	}
}
