// go-server/internal/httpserver/routes_session.go
//
// HTTP routes for the activity lifecycle.
// Exposes, under /session:
//   - POST /session                      → create a session (stage start)
//   - GET  /session/{id}                 → full state view
//   - POST /session/{id}/start           → leave the start screen with a team config
//   - POST /session/{id}/key             → feed one key event to the guard (REST fallback)
//   - POST /session/{id}/effect          → run a combo through the simulated environment
//   - POST /session/{id}/buffers         → overwrite the editable text boxes
//   - POST /session/{id}/validate        → one validation attempt for the current player
//   - POST /session/{id}/restart         → back to the start screen after a finished run
//   - GET  /session/{id}/report          → report JSON (end stage only)
//   - GET  /session/{id}/report.pdf      → PDF download
//   - POST /session/{id}/report/upload   → push the PDF to GitHub on demand
//
// Sessions live in memory only. Finished runs are archived to SQLite by
// the finish hook, which also fires the one-time automatic GitHub upload.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/archive"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/game"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/report"
)

// Status texts shown on the end screen. Kept in pt-BR to match the client.
const (
	msgAutoSent      = "Relatorio enviado automaticamente para o GitHub."
	msgNotConfigured = "GitHub nao configurado no servidor. Defina GITHUB_TOKEN (e opcionalmente owner/repo/branch)."
)

// mountSession registers all /session routes.
func (s *Server) mountSession(r chi.Router) {
	r.Post("/session", s.handleNewSession)
	r.Route("/session/{id}", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Post("/start", s.handleStart)
		r.Post("/key", s.handleKey)
		r.Post("/effect", s.handleEffect)
		r.Post("/buffers", s.handleBuffers)
		r.Post("/validate", s.handleValidate)
		r.Post("/restart", s.handleRestart)
		r.Get("/report", s.handleReport)
		r.Get("/report.pdf", s.handleReportPDF)
		r.Post("/report/upload", s.handleReportUpload)
	})
}

// sessionFromPath loads the session addressed by the {id} route param.
// Writes a 404 and returns ok=false when it does not exist.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// writeGameError maps engine sentinels onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrWrongStage):
		http.Error(w, `{"error":"wrong_stage"}`, http.StatusConflict)
	case errors.Is(err, game.ErrPlayerCount):
		http.Error(w, `{"error":"invalid_player_count"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrEmptyCombo):
		http.Error(w, `{"error":"empty_combo"}`, http.StatusBadRequest)
	default:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// handleNewSession creates an in-memory session on the start stage.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	sess := game.New()
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": sess.ID()})
}

// handleState returns the full session view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.State())
}

// handleStart applies the start-screen config and enters the game stage.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var cfg game.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := sess.StartGame(cfg); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.State())
}

// handleKey feeds one keydown to the guard. REST fallback for clients that
// cannot hold the WebSocket open; the verdict mirrors the socket frames.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var ev combo.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.ObserveKey(ev))
}

// handleEffect runs a combo through the simulated environment.
func (s *Server) handleEffect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		Combo string `json:"combo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	line, err := sess.ApplyEffect(req.Combo)
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"actionLog": line})
}

// handleBuffers overwrites the editable text boxes. Absent fields leave the
// corresponding box untouched.
func (s *Server) handleBuffers(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		SourceText *string `json:"sourceText"`
		EditorBox  *string `json:"editorBox"`
		FinalBox   *string `json:"finalBox"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := sess.SetBuffers(req.SourceText, req.EditorBox, req.FinalBox); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.State())
}

// handleValidate runs one validation attempt and, when the run finishes,
// kicks off the archive + auto-upload hook.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	res, err := sess.Validate()
	if err != nil {
		writeGameError(w, err)
		return
	}
	if res.Finished {
		go s.archiveAndUpload(sess)
	}
	out := struct {
		game.ValidationResult
		State game.State `json:"state"`
	}{ValidationResult: res, State: sess.State()}
	_ = json.NewEncoder(w).Encode(out)
}

// handleRestart returns a finished session to the start screen.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	if err := sess.Restart(); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.State())
}

// handleReport returns the report JSON. Only available on the end stage.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	in, err := sess.ReportInput()
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(report.Build(in))
}

// handleReportPDF renders the report as a downloadable PDF.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	in, err := sess.ReportInput()
	if err != nil {
		writeGameError(w, err)
		return
	}
	rep := report.Build(in)
	pdfBytes, err := report.PDF(rep)
	if err != nil {
		log.Error().Err(err).Msg("render report pdf")
		http.Error(w, `{"error":"pdf_failed"}`, http.StatusInternalServerError)
		return
	}
	name := report.Filename(in.Config.Group, in.GeneratedAt)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(pdfBytes)
}

// handleReportUpload pushes the PDF to GitHub on demand. Unlike the finish
// hook this never flips the auto-sent flag, so it can be retried freely.
func (s *Server) handleReportUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	in, err := sess.ReportInput()
	if err != nil {
		writeGameError(w, err)
		return
	}
	cfg := s.ghConfig()
	if cfg == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "github_not_configured", "message": msgNotConfigured})
		return
	}
	rep := report.Build(in)
	pdfBytes, err := report.PDF(rep)
	if err != nil {
		log.Error().Err(err).Msg("render report pdf")
		http.Error(w, `{"error":"pdf_failed"}`, http.StatusInternalServerError)
		return
	}
	up := report.NewUploader(*cfg)
	if s.ghBase != "" {
		up.BaseURL = s.ghBase
	}
	url, err := up.Upload(r.Context(), pdfBytes, report.Filename(in.Config.Group, in.GeneratedAt))
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "upload_failed",
			"message": "Falha ao enviar para GitHub: " + err.Error(),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Relatorio enviado com sucesso. " + url,
		"url":     url,
	})
}

// archiveAndUpload is the finish hook: persist the report row and fire the
// one-time automatic GitHub upload. Both are best effort; failures are
// logged and the auto-sent flag stays clear so a later run can retry.
func (s *Server) archiveAndUpload(sess *game.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	in, err := sess.ReportInput()
	if err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID()).Msg("report input")
		return
	}
	rep := report.Build(in)

	payload, _ := json.Marshal(rep)
	entryID := genID()
	if err := s.archive.Insert(ctx, archive.Entry{
		ID:                entryID,
		SessionID:         sess.ID(),
		Group:             rep.Group,
		SafeMode:          rep.SafeMode,
		MissionsCompleted: rep.MissionsCompleted,
		MissionsTotal:     rep.MissionsTotal,
		TotalXP:           rep.TotalXP,
		DurationSec:       rep.DurationSec,
		GeneratedAt:       rep.GeneratedAt,
		Payload:           payload,
	}); err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID()).Msg("archive report")
		entryID = ""
	}

	if sess.ReportSent() {
		return
	}
	cfg := s.ghConfig()
	if cfg == nil {
		return
	}
	pdfBytes, err := report.PDF(rep)
	if err != nil {
		log.Warn().Err(err).Msg("render report pdf")
		return
	}
	up := report.NewUploader(*cfg)
	if s.ghBase != "" {
		up.BaseURL = s.ghBase
	}
	url, err := up.Upload(ctx, pdfBytes, report.Filename(in.Config.Group, in.GeneratedAt))
	if err != nil {
		sess.SetReportStatus("Envio automatico falhou: " + err.Error())
		log.Warn().Err(err).Str("sessionId", sess.ID()).Msg("auto upload report")
		return
	}
	status := msgAutoSent
	if url != "" {
		status += " " + url
	}
	sess.MarkReportSent(status)
	if entryID != "" {
		if err := s.archive.SetUploadedURL(ctx, entryID, url); err != nil {
			log.Warn().Err(err).Msg("record upload url")
		}
	}
}
