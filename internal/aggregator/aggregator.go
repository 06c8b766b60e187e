package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// SubmissionFanOut is how many assignments get their submissions fetched
const SubmissionFanOut = 5

// Aggregator composes a primary entity with secondary sub-fetches. A primary
// failure fails the whole call; a secondary failure degrades to Unavailable.
type Aggregator struct {
	source interfaces.EntitySource
	logger *zap.Logger
}

// New creates an aggregator reading through source
func New(source interfaces.EntitySource, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		logger: logger,
	}
}

// CourseDetails returns the course and its announcements
func (a *Aggregator) CourseDetails(ctx context.Context, courseID string) (*CourseDetails, error) {
	course, err := a.source.Fetch(ctx, models.KindCourse, courseID)
	if err != nil {
		return nil, err
	}

	result := &CourseDetails{Course: course}

	announcements, err := a.source.Fetch(ctx, models.KindAnnouncements, courseID)
	if err != nil {
		result.Announcements = a.softFailure("course_details", models.KindAnnouncements, courseID, err)
	} else {
		result.Announcements = OK(announcements)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Assignments returns the course and its coursework. Submissions are fetched
// concurrently for the first SubmissionFanOut items only.
func (a *Aggregator) Assignments(ctx context.Context, courseID string) (*AssignmentSet, error) {
	var course, courseWork []byte

	primary, pctx := errgroup.WithContext(ctx)
	primary.Go(func() error {
		var err error
		course, err = a.source.Fetch(pctx, models.KindCourse, courseID)
		return err
	})
	primary.Go(func() error {
		var err error
		courseWork, err = a.source.Fetch(pctx, models.KindAssignments, courseID)
		return err
	})
	if err := primary.Wait(); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(courseWork, &items); err != nil {
		return nil, fmt.Errorf("decode coursework for %s: %w", courseID, err)
	}

	assignments := make([]Assignment, len(items))

	// Secondary failures are recorded in place and never fail the group
	var secondary errgroup.Group
	for i, item := range items {
		assignments[i].CourseWork = item

		if i >= SubmissionFanOut {
			assignments[i].Submissions = NotAttempted()
			continue
		}

		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil || ref.ID == "" {
			assignments[i].Submissions = Unavailable("coursework has no id")
			continue
		}

		secondary.Go(func() error {
			data, err := a.source.Fetch(ctx, models.KindSubmissions, courseID, ref.ID)
			if err != nil {
				assignments[i].Submissions = a.softFailure("assignments", models.KindSubmissions, courseID+"/"+ref.ID, err)
				return nil
			}
			assignments[i].Submissions = OK(data)
			return nil
		})
	}
	_ = secondary.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &AssignmentSet{Course: course, Assignments: assignments}, nil
}

func (a *Aggregator) softFailure(composite string, kind models.Kind, scope string, err error) SubResult {
	a.logger.Warn("Sub-fetch unavailable",
		zap.String("composite", composite),
		zap.String("kind", string(kind)),
		zap.String("scope", scope),
		zap.Error(err))
	metrics.RecordSoftFailure(composite, string(kind))
	return Unavailable(err.Error())
}
