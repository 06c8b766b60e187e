package tools

import (
	"bytes"
	"context"
	"encoding/json"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/protocol"
)

// ServerName identifies this server to MCP clients
const ServerName = "classroom-mcp"

// Instructions is sent to MCP clients at initialization
const Instructions = "Google Classroom MCP server. Provides read-only access to courses, " +
	"announcements, assignments, student submissions, course materials, topics and " +
	"the text content of attached Google Drive files."

// NewMCPServer exposes every registry tool over MCP. Each tool advertises
// the schema of its argument struct. Tool failures are returned as
// "Error: " text so the client always receives a result.
func NewMCPServer(registry *Registry, version string) *mcpgo.Server {
	info := mcpgo.ServerInfo{
		Name:        ServerName,
		Version:     version,
		Description: "Cached read-only access to Google Classroom and Drive",
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	srv := mcpgo.NewServer(info, mcpgo.WithInstructions(Instructions))

	for _, t := range registry.List() {
		srv.Tool(t.Name).
			Description(t.Description).
			Handler(mcpHandler(registry, t))
	}

	return srv
}

// mcpHandler returns a handler typed on the tool's argument struct
func mcpHandler(registry *Registry, t Tool) interface{} {
	switch t.Args.(type) {
	case courseArgs:
		return callAs[courseArgs](registry, t.Name)
	case fileArgs:
		return callAs[fileArgs](registry, t.Name)
	default:
		return callAs[noArgs](registry, t.Name)
	}
}

func callAs[T any](registry *Registry, name string) func(context.Context, T) (string, error) {
	return func(ctx context.Context, args T) (string, error) {
		raw, err := json.Marshal(args)
		if err != nil {
			return "", err
		}
		return registry.Call(ctx, name, raw), nil
	}
}

// DefaultArguments rewrites a tools/call request whose arguments are
// missing or null to carry an empty object.
func DefaultArguments(next mcpgo.MiddlewareHandlerFunc) mcpgo.MiddlewareHandlerFunc {
	return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		if req.Method == protocol.MethodToolsCall {
			if params, ok := withDefaultArguments(req.Params); ok {
				normalized := *req
				normalized.Params = params
				req = &normalized
			}
		}
		return next(ctx, req)
	}
}

func withDefaultArguments(raw json.RawMessage) (json.RawMessage, bool) {
	var params map[string]json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil || params == nil {
		return nil, false
	}

	if args, ok := params["arguments"]; ok {
		trimmed := bytes.TrimSpace(args)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			return nil, false
		}
	}

	params["arguments"] = json.RawMessage(`{}`)
	out, err := json.Marshal(params)
	if err != nil {
		return nil, false
	}
	return out, true
}

// ServeStdio runs the MCP server over stdin/stdout until ctx ends
func ServeStdio(ctx context.Context, srv *mcpgo.Server) error {
	return mcpgo.ServeStdio(ctx, srv, mcpgo.WithMiddleware(DefaultArguments))
}
