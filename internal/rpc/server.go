// Package rpc exposes the tracker's operations as remote-callable tools:
// one POST endpoint per tool under /tools/, JSON in, JSON envelope out.
// Every internal fault is caught here and converted into a failure result;
// nothing propagates past the boundary.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/middleware/trace"
	"spendtrack/internal/services"
)

// maxBodyBytes bounds tool request bodies.
const maxBodyBytes = 1 << 20

type Server struct {
	http.Server
	tracker *services.Tracker
	logger  *log.Logger
}

// toolFunc handles one tool call with already-read raw parameters.
type toolFunc func(ctx context.Context, params json.RawMessage) (any, error)

// envelope is the wire shape of every tool response.
type envelope struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewServer configures the tool routes and returns a ready-to-run server.
func NewServer(addr string, tracker *services.Tracker, logger *log.Logger) *Server {
	s := &Server{
		Server:  http.Server{Addr: addr},
		tracker: tracker,
		logger:  logger.WithComponent(log.ComponentRPC),
	}

	mux := http.NewServeMux()
	for name, fn := range s.tools() {
		mux.Handle("/tools/"+name, s.toolHandler(name, fn))
	}
	mux.HandleFunc("/healthz", s.handleHealth)

	s.Handler = trace.NewMiddleware().Middleware(mux)
	return s
}

func (s *Server) tools() map[string]toolFunc {
	return map[string]toolFunc{
		"add_expense":          s.addExpense,
		"set_category_limit":   s.setCategoryLimit,
		"list_category_limits": s.listCategoryLimits,
		"total_expenses":       s.totalExpenses,
		"average_transaction":  s.averageTransaction,
		"top_categories":       s.topCategories,
		"list_expenses":        s.listExpenses,
		"add_table_column":     s.addTableColumn,
	}
}

func (s *Server) toolHandler(name string, fn toolFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeJSON(w, http.StatusMethodNotAllowed, envelope{OK: false, Error: "tool calls must use POST"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{OK: false, Error: "failed to read request body"})
			return
		}
		if len(body) == 0 {
			body = []byte("{}")
		}

		result, err := fn(r.Context(), body)
		if err != nil {
			s.writeFailure(w, r, name, err)
			return
		}

		writeJSON(w, http.StatusOK, envelope{OK: true, Result: result})
	})
}

// writeFailure classifies an error against the taxonomy and reports it as a
// descriptive failure result. Store faults are logged with full detail but
// leave the process running.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, tool string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}

	s.logger.ErrorContext(r.Context(), "Tool call failed",
		log.FieldTool, tool,
		log.FieldError, err.Error(),
		log.FieldStatusCode, status)

	writeJSON(w, status, envelope{OK: false, Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeParams unmarshals tool parameters, reporting malformed input as a
// validation failure.
func decodeParams(params json.RawMessage, v any) error {
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: malformed parameters: %v", core.ErrValidation, err)
	}
	return nil
}
