// go-server/internal/httpserver/routes_guard.go
//
// WebSocket channel for the Shortcut Guard.
// The browser-side guard streams every keydown:
//   {"type":"keydown","key":"c","ctrl":true,"alt":false,"shift":false,"meta":false}
// and receives one verdict frame back per event:
//   {"type":"key","combo":"Ctrl+C","satisfied":true,"suppress":false,
//    "dangerous":false,"expectedCombo":"Ctrl+C"}
// The suppress flag tells the client to preventDefault before the browser
// acts on a dangerous combo. OS-level shortcuts (Win+L, Alt+Tab) cannot be
// stopped from a page; the client surfaces a warning instead.
//
// Malformed frames are logged and skipped, unknown types logged. The loop
// ends when the client goes away.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
)

var guardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The activity page may be served from any school machine; this channel
	// carries no credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// guardClientMsg is one frame from the browser guard.
type guardClientMsg struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

// guardServerMsg is the verdict sent back per key event.
type guardServerMsg struct {
	Type          string `json:"type"`
	Combo         string `json:"combo"`
	Satisfied     bool   `json:"satisfied"`
	Suppress      bool   `json:"suppress"`
	Dangerous     bool   `json:"dangerous"`
	ExpectedCombo string `json:"expectedCombo"`
}

// handleGuardWS upgrades the connection and pumps key events into the
// session guard until the client disconnects.
func (s *Server) handleGuardWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	conn, err := guardUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("guard ws upgrade")
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg guardClientMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug().Err(err).Msg("discarding malformed guard frame")
			continue
		}
		if msg.Type != "keydown" {
			log.Debug().Str("type", msg.Type).Msg("unknown guard frame type")
			continue
		}

		obs := sess.ObserveKey(combo.KeyEvent{
			Key: msg.Key, Ctrl: msg.Ctrl, Alt: msg.Alt, Shift: msg.Shift, Meta: msg.Meta,
		})
		expected := ""
		if m, ok := sess.CurrentMission(); ok {
			expected = m.ExpectedCombo()
		}

		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(guardServerMsg{
			Type:          "key",
			Combo:         obs.Combo,
			Satisfied:     obs.Satisfied,
			Suppress:      obs.Suppress,
			Dangerous:     combo.Dangerous(obs.Combo),
			ExpectedCombo: expected,
		}); err != nil {
			return
		}
	}
}
