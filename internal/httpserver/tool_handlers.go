package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sinh-x/google-classroom-mcp/internal/auth"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
	"github.com/sinh-x/google-classroom-mcp/internal/remote"
	"github.com/sinh-x/google-classroom-mcp/internal/tools"
)

// handleListTools lists the registered tools
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	registered := s.registry.List()
	infos := make([]ToolInfo, 0, len(registered))
	for _, t := range registered {
		infos = append(infos, ToolInfo{Name: t.Name, Description: t.Description})
	}
	s.writeResponse(w, infos)
}

// handleCallTool runs a tool with the request body as its JSON arguments
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	body, err := s.readBody(r)
	if err != nil {
		s.writeErrorResponse(w, name, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := s.registry.Invoke(r.Context(), name, json.RawMessage(body))
	if err != nil {
		s.writeErrorResponse(w, name, err.Error(), statusForError(err))
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		s.writeErrorResponse(w, name, fmt.Sprintf("Failed to encode result: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeResponse(w, &ToolResponse{
		Success: true,
		Tool:    name,
		Result:  encoded,
	})
}

// statusForError maps a tool failure onto an HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, remote.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, remote.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
