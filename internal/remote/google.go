package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/drive/v3"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure GoogleFetcher implements interfaces.Fetcher
var _ interfaces.Fetcher = (*GoogleFetcher)(nil)

// Page sizes requested from Classroom list endpoints
const (
	coursesPageSize       = 100
	announcementsPageSize = 20
	courseWorkPageSize    = 50
)

// GoogleFetcher performs single Classroom and Drive calls and returns the
// JSON encoding of the result. It holds no state between calls.
type GoogleFetcher struct {
	classroom *classroom.Service
	drive     *drive.Service
	logger    *zap.Logger
}

// NewGoogleFetcher creates a fetcher over authenticated API services
func NewGoogleFetcher(classroomSvc *classroom.Service, driveSvc *drive.Service, logger *zap.Logger) *GoogleFetcher {
	return &GoogleFetcher{
		classroom: classroomSvc,
		drive:     driveSvc,
		logger:    logger,
	}
}

// Fetch dispatches on the key kind. Failures are returned as *Error.
func (g *GoogleFetcher) Fetch(ctx context.Context, key models.Key) ([]byte, error) {
	g.logger.Debug("Remote fetch", zap.String("key", key.String()))

	var (
		result any
		err    error
	)

	courses := g.classroom.Courses
	courseID := key.ScopeAt(0)

	switch key.Kind {
	case models.KindCourses:
		var resp *classroom.ListCoursesResponse
		if resp, err = courses.List().PageSize(coursesPageSize).Context(ctx).Do(); err == nil {
			result = nonNil(resp.Courses)
		}
	case models.KindCourse:
		result, err = courses.Get(courseID).Context(ctx).Do()
	case models.KindAnnouncements:
		var resp *classroom.ListAnnouncementsResponse
		if resp, err = courses.Announcements.List(courseID).PageSize(announcementsPageSize).Context(ctx).Do(); err == nil {
			result = nonNil(resp.Announcements)
		}
	case models.KindAssignments:
		var resp *classroom.ListCourseWorkResponse
		if resp, err = courses.CourseWork.List(courseID).PageSize(courseWorkPageSize).Context(ctx).Do(); err == nil {
			result = nonNil(resp.CourseWork)
		}
	case models.KindSubmissions:
		var resp *classroom.ListStudentSubmissionsResponse
		if resp, err = courses.CourseWork.StudentSubmissions.List(courseID, key.ScopeAt(1)).Context(ctx).Do(); err == nil {
			result = nonNil(resp.StudentSubmissions)
		}
	case models.KindMaterials:
		var resp *classroom.ListCourseWorkMaterialResponse
		if resp, err = courses.CourseWorkMaterials.List(courseID).Context(ctx).Do(); err == nil {
			result = nonNil(resp.CourseWorkMaterial)
		}
	case models.KindTopics:
		var resp *classroom.ListTopicResponse
		if resp, err = courses.Topics.List(courseID).Context(ctx).Do(); err == nil {
			result = nonNil(resp.Topic)
		}
	case models.KindFileContent:
		return g.readFile(ctx, courseID)
	default:
		return nil, NewError(CategoryPermanent, fmt.Errorf("unsupported entity kind %q", key.Kind))
	}

	if err != nil {
		return nil, Classify(fmt.Errorf("%s: %w", key.Kind, err))
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, NewError(CategoryPermanent, fmt.Errorf("encode %s: %w", key.Kind, err))
	}
	return data, nil
}

// nonNil makes empty lists encode as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
