package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/aggregator"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/remote"
	"github.com/sinh-x/google-classroom-mcp/internal/utils"
)

// ErrUnknownTool is returned for a tool name that is not registered
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool with its raw JSON arguments
type Handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Tool is a named operation exposed to clients. Args is the zero value of
// the tool's argument struct and determines its advertised input schema.
type Tool struct {
	Name        string
	Description string
	Args        interface{}
	Handler     Handler
}

type noArgs struct{}

type courseArgs struct {
	CourseID string `json:"course_id" validate:"required" jsonschema:"required,description=The Google Classroom course ID"`
}

type fileArgs struct {
	FileID string `json:"file_id" validate:"required" jsonschema:"required,description=Google Drive file ID or a Docs/Drive URL containing it"`
}

// Registry holds the tools in registration order
type Registry struct {
	tools  []Tool
	byName map[string]Tool
	source interfaces.EntitySource
	agg    *aggregator.Aggregator
	logger *zap.Logger
}

// NewRegistry registers every Classroom tool
func NewRegistry(source interfaces.EntitySource, agg *aggregator.Aggregator, logger *zap.Logger) *Registry {
	r := &Registry{
		byName: make(map[string]Tool),
		source: source,
		agg:    agg,
		logger: logger,
	}

	r.register("courses",
		"List all Google Classroom courses for the authenticated user",
		noArgs{}, r.courses)
	r.register("course_details",
		"Get details for a specific course including recent announcements (up to 20)",
		courseArgs{}, r.courseDetails)
	r.register("assignments",
		"Get assignments (coursework) for a course with student submissions for the first 5 assignments",
		courseArgs{}, r.assignments)
	r.register("materials",
		"List course materials (coursework materials) posted to a course",
		courseArgs{}, r.materials)
	r.register("topics",
		"List the topics a course's classwork is organized under",
		courseArgs{}, r.topics)
	r.register("read_material",
		"Read the content of a Google Drive file by file ID or URL. Docs, Sheets and Slides are exported as text; binary files return metadata only",
		fileArgs{}, r.readMaterial)

	return r
}

func (r *Registry) register(name, description string, args interface{}, handler Handler) {
	t := Tool{Name: name, Description: description, Args: args, Handler: handler}
	r.tools = append(r.tools, t)
	r.byName[name] = t
}

// List returns the registered tools
func (r *Registry) List() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Invoke runs a tool and returns its structured result
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	result, err := t.Handler(ctx, args)
	if err != nil {
		r.logger.Warn("Tool call failed", zap.String("tool", name), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Call runs a tool and renders its output as pretty JSON or an "Error: " line
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) string {
	result, err := r.Invoke(ctx, name, args)
	if err != nil {
		return utils.FormatError(err)
	}
	return utils.FormatResult(result)
}

func (r *Registry) courses(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return r.fetch(ctx, models.KindCourses)
}

func (r *Registry) courseDetails(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args courseArgs
	if err := utils.ParseToolArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.agg.CourseDetails(ctx, args.CourseID)
}

func (r *Registry) assignments(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args courseArgs
	if err := utils.ParseToolArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.agg.Assignments(ctx, args.CourseID)
}

func (r *Registry) materials(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args courseArgs
	if err := utils.ParseToolArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.fetch(ctx, models.KindMaterials, args.CourseID)
}

func (r *Registry) topics(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args courseArgs
	if err := utils.ParseToolArgs(raw, &args); err != nil {
		return nil, err
	}
	return r.fetch(ctx, models.KindTopics, args.CourseID)
}

func (r *Registry) readMaterial(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args fileArgs
	if err := utils.ParseToolArgs(raw, &args); err != nil {
		return nil, err
	}
	fileID, err := remote.ParseFileID(args.FileID)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, models.KindFileContent, fileID)
}

func (r *Registry) fetch(ctx context.Context, kind models.Kind, scope ...string) (interface{}, error) {
	data, err := r.source.Fetch(ctx, kind, scope...)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
