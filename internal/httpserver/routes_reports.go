// go-server/internal/httpserver/routes_reports.go
//
// Instructor-facing archive of finished activity reports.
// Exposes two gated endpoints:
//   - GET /reports             → newest archived reports (?group= filter, ?limit=)
//   - GET /reports/leaderboard → highest-XP runs across all groups
//
// Rows come from the SQLite archive written by the finish hook. Both
// endpoints require an instructor login.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/archive"
)

// mountReports registers the gated /reports routes.
func (s *Server) mountReports(r chi.Router) {
	r.With(s.requireAuth()).Route("/reports", func(r chi.Router) {
		r.Get("/", s.handleReportsList)
		r.Get("/leaderboard", s.handleReportsLeaderboard)
	})
}

// handleReportsList returns the newest archived reports, optionally
// filtered by group.
func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.archive.Recent(r.Context(), r.URL.Query().Get("group"), queryLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("list reports")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []archive.Entry{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"reports": rows})
}

// handleReportsLeaderboard returns the highest-XP archived runs.
func (s *Server) handleReportsLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.archive.Leaderboard(r.Context(), queryLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("reports leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []archive.LBRow{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"top": rows})
}

// queryLimit parses ?limit= with a default, capped at 100.
func queryLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
