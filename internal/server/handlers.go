package server

import (
	"encoding/json"
	"net/http"

	"newsjack/internal/newsjack"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if s.db == nil {
		checks["database"] = "not configured"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Warn("Health check failed", "error", err)
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}

	checks["database"] = "ok"
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

// handleAction handles GET /api/newsjack/action?token=...
// The response is always 200 with an HTML page; the page says what happened.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	outcome := s.actions.Handle(r.Context(), r.URL.Query().Get("token"))
	s.respondPage(w, outcome)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("Rate limit exceeded", "client", clientIP(r))
	s.respondPage(w, newsjack.Outcome{
		Kind:    newsjack.KindNotice,
		Title:   "Too many requests",
		Message: "This link was opened too many times in a short period. Wait a moment and try again.",
	})
}

// respondPage writes an outcome page with status 200.
func (s *Server) respondPage(w http.ResponseWriter, outcome newsjack.Outcome) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if err := s.pages.RenderOutcome(w, outcome); err != nil {
		s.log.Error("Failed to render page", "error", err)
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}
