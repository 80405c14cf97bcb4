package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

const maxRequestBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"stats":   s.reporter.Stats(),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	list := s.tools.List()
	out := make([]map[string]any, 0, len(list))
	for _, t := range list {
		out = append(out, map[string]any{
			"name":        t.Name,
			"category":    t.Category,
			"tier":        t.Tier,
			"description": t.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// handleSubmit runs a tool by name. The response always carries an
// outcome: tool failures come back as success=false with the error
// string, not as an HTTP error. HTTP errors are reserved for requests
// the server never admitted.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrInvalidInput, "read body"))
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrInvalidInput, "request is not valid JSON"))
		return
	}

	name := gjson.GetBytes(body, "tool").String()
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrInvalidInput, "missing tool name"))
		return
	}

	tool, err := s.tools.Resolve(name)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, errors.ErrToolDisabled) {
			status = http.StatusForbidden
		}
		writeError(w, status, err)
		return
	}

	args := map[string]any{}
	if v := gjson.GetBytes(body, "args"); v.IsObject() {
		if m, ok := v.Value().(map[string]any); ok {
			args = m
		}
	}

	s.log.Info("tool request", "tool", name, "remote", r.RemoteAddr)

	outcome := s.exec.Submit(r.Context(), tool.Name, tool.Category, func(ctx context.Context) (string, error) {
		return tool.Handler(ctx, args)
	})
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("state") == "active" {
		if err := s.requireControl(w, "GetRunningTasks"); err != nil {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": s.reporter.GetRunningTasks()})
		return
	}
	if err := s.requireControl(w, "GetTaskStatus"); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.reporter.TaskHistory()})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if err := s.requireControl(w, "GetTaskStatus"); err != nil {
		return
	}
	rec, err := s.reporter.GetTaskStatus(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	if err := s.requireControl(w, "CancelTask"); err != nil {
		return
	}
	id := r.PathValue("id")
	if err := s.exec.Cancel(id); err != nil {
		switch {
		case errors.Is(err, errors.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, errors.ErrAlreadyTerminal):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	s.log.Info("cancel requested", "task_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"task_id": id, "cancel_requested": true})
}

// requireControl enforces tier filtering on the task control operations,
// which are not registry tools but still honor enable and exclude lists.
func (s *Server) requireControl(w http.ResponseWriter, name string) error {
	if s.tools.Enabled(name) {
		return nil
	}
	err := errors.Wrap(errors.ErrToolDisabled, name)
	writeError(w, http.StatusForbidden, err)
	return err
}
