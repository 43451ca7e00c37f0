package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chegemaina/askdata/nlquery"
)

// QueryEngine is the slice of nlquery.NLQueryEngine the handlers need.
type QueryEngine interface {
	Answer(ctx context.Context, question string) (*nlquery.Answer, error)
}

// Server exposes the question-answering pipeline over HTTP.
type Server struct {
	engine QueryEngine
	apiKey string
	logger *zap.Logger
}

// New creates a Server. An empty apiKey disables authentication.
func New(engine QueryEngine, apiKey string, logger *zap.Logger) *Server {
	return &Server{engine: engine, apiKey: apiKey, logger: logger}
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)

	var handler http.Handler = mux
	handler = APIKeyAuth(s.apiKey)(handler)
	handler = CORS(handler)
	handler = RequestLogger(s.logger)(handler)
	return handler
}

// ListenAndServe runs the API on the given port until the server fails.
func (s *Server) ListenAndServe(port string) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	answer, err := s.engine.Answer(r.Context(), req.Question)
	if err != nil {
		// No SQL could be derived at all: informational, not a failure.
		if errors.Is(err, nlquery.ErrNoGenerator) {
			writeJSON(w, http.StatusOK, map[string]string{"message": err.Error()})
			return
		}
		if s.logger != nil {
			s.logger.Error("answering question", zap.String("question", req.Question), zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	rows := answer.Rows
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": rows})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
