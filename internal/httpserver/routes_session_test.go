package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/catalog"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/game"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/guard"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/report"
)

// eventFor turns a canonical combo into the keydown payload that produces it.
func eventFor(c string) map[string]any {
	ev := map[string]any{"type": "keydown", "key": ""}
	for _, p := range strings.Split(c, "+") {
		switch p {
		case "Ctrl":
			ev["ctrl"] = true
		case "Alt":
			ev["alt"] = true
		case "Shift":
			ev["shift"] = true
		case "Win":
			ev["meta"] = true
		default:
			ev["key"] = p
		}
	}
	return ev
}

// validateBody is the shape POST /session/{id}/validate responds with.
type validateBody struct {
	game.ValidationResult
	State game.State `json:"state"`
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res := postJSON(t, ts, "/session", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var created map[string]string
	decode(t, res, &created)
	require.NotEmpty(t, created["sessionId"])
	return created["sessionId"]
}

func createStarted(t *testing.T, ts *httptest.Server, players int) string {
	t.Helper()
	id := createSession(t, ts)
	res := postJSON(t, ts, "/session/"+id+"/start", game.Config{
		Players:  players,
		Group:    "Turma A",
		Students: "Alice\nBruno",
		SafeMode: true,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st game.State
	decode(t, res, &st)
	require.Equal(t, game.StageGame, st.Stage)
	return id
}

func getState(t *testing.T, ts *httptest.Server, id string) game.State {
	t.Helper()
	res, err := http.Get(ts.URL + "/session/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st game.State
	decode(t, res, &st)
	return st
}

// stateStatus fetches the report status without failing the test; used
// inside Eventually conditions.
func stateStatus(ts *httptest.Server, id string) string {
	res, err := http.Get(ts.URL + "/session/" + id)
	if err != nil {
		return ""
	}
	defer res.Body.Close()
	var st game.State
	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		return ""
	}
	return st.ReportStatus
}

func pressCombo(t *testing.T, ts *httptest.Server, id, c string) {
	t.Helper()
	res := postJSON(t, ts, "/session/"+id+"/key", eventFor(c))
	require.Equal(t, http.StatusOK, res.StatusCode)
	var obs guard.Observation
	decode(t, res, &obs)
	require.True(t, obs.Satisfied, "combo %s should satisfy the guard", c)
}

func setBuffers(t *testing.T, ts *httptest.Server, id string, body map[string]string) {
	t.Helper()
	res := postJSON(t, ts, "/session/"+id+"/buffers", body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func doValidate(t *testing.T, ts *httptest.Server, id string) validateBody {
	t.Helper()
	res := postJSON(t, ts, "/session/"+id+"/validate", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out validateBody
	decode(t, res, &out)
	return out
}

// completeRun plays every remaining mission through the public API until
// the session leaves the game stage.
func completeRun(t *testing.T, ts *httptest.Server, id string) game.State {
	t.Helper()
	for i := 0; i < 64; i++ {
		st := getState(t, ts, id)
		if st.Stage != game.StageGame {
			return st
		}
		require.NotNil(t, st.Mission)
		switch st.Mission.TaskType {
		case catalog.TaskPaste:
			setBuffers(t, ts, id, map[string]string{"editorBox": st.Env.SourceInitial})
		case catalog.TaskCut:
			setBuffers(t, ts, id, map[string]string{"editorBox": ""})
		case catalog.TaskPastePlain:
			setBuffers(t, ts, id, map[string]string{"finalBox": st.Env.SourceInitial})
		}
		pressCombo(t, ts, id, st.Mission.Combo)
		out := doValidate(t, ts, id)
		require.True(t, out.OK, "mission %q should validate", st.Mission.Label)
	}
	t.Fatal("run did not finish within the mission budget")
	return game.State{}
}

func TestValidateFlow(t *testing.T) {
	_, ts := newTestServer(t)
	id := createStarted(t, ts, 2)

	// Clicking validate before pressing anything is blocked.
	out := doValidate(t, ts, id)
	assert.True(t, out.Blocked)
	assert.Equal(t, "Comando nao foi executado. Pressione o atalho da missao antes de validar.", out.Warning)
	assert.Equal(t, 0, out.State.Players[0].Attempts)

	// A wrong combo does not open the gate either.
	res := postJSON(t, ts, "/session/"+id+"/key", eventFor("Ctrl+P"))
	var obs guard.Observation
	decode(t, res, &obs)
	assert.False(t, obs.Satisfied)
	out = doValidate(t, ts, id)
	assert.True(t, out.Blocked)

	// Right combo, but the source was tampered with: counted failure.
	pressCombo(t, ts, id, "Ctrl+C")
	setBuffers(t, ts, id, map[string]string{"sourceText": "algo bem diferente"})
	out = doValidate(t, ts, id)
	assert.False(t, out.Blocked)
	assert.False(t, out.OK)
	assert.NotEmpty(t, out.Hint)
	assert.Equal(t, 1, out.State.Players[0].Attempts)
	assert.Equal(t, 1, out.State.Players[0].Errors)

	// The failed attempt consumed the capture, so the gate closed again.
	st := getState(t, ts, id)
	setBuffers(t, ts, id, map[string]string{"sourceText": st.Env.SourceInitial})
	out = doValidate(t, ts, id)
	assert.True(t, out.Blocked)

	// Press once more and succeed.
	pressCombo(t, ts, id, "Ctrl+C")
	out = doValidate(t, ts, id)
	assert.True(t, out.OK)
	assert.Equal(t, 10, out.XPAwarded)
	assert.Equal(t, 1, out.State.MissionIndex)
}

func TestEffectEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	id := createStarted(t, ts, 1)

	res := postJSON(t, ts, "/session/"+id+"/effect", map[string]string{"combo": "alt+tab"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	decode(t, res, &body)
	assert.Equal(t, "Alt+Tab executado: foco trocado para Navegador.", body["actionLog"])

	res = postJSON(t, ts, "/session/"+id+"/effect", map[string]string{"combo": "   "})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSessionErrors(t *testing.T) {
	_, ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/session/missing")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	id := createSession(t, ts)

	// Validate before starting.
	res = postJSON(t, ts, "/session/"+id+"/validate", nil)
	require.Equal(t, http.StatusConflict, res.StatusCode)
	var e map[string]string
	decode(t, res, &e)
	assert.Equal(t, "wrong_stage", e["error"])

	// Bad team size.
	res = postJSON(t, ts, "/session/"+id+"/start", map[string]any{"players": 7})
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Report only exists on the end stage.
	res, err = http.Get(ts.URL + "/session/" + id + "/report")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestFullRunTwoPlayers(t *testing.T) {
	s, ts := newTestServer(t)
	id := createStarted(t, ts, 2)

	st := completeRun(t, ts, id)
	require.Equal(t, game.StageEnd, st.Stage)
	assert.Equal(t, "Todos os alunos da equipe concluíram a lista de comandos.", st.FinishReason)
	assert.Equal(t, 12, st.MissionsDone)
	assert.Equal(t, 140, st.TotalXP)

	// Report JSON.
	res, err := http.Get(ts.URL + "/session/" + id + "/report")
	require.NoError(t, err)
	var rep report.Report
	decode(t, res, &rep)
	assert.Equal(t, 12, rep.MissionsCompleted)
	assert.Equal(t, 12, rep.MissionsTotal)
	assert.Equal(t, "Turma A", rep.Group)
	require.Len(t, rep.Players, 2)
	assert.InDelta(t, 100.0, rep.Players[0].Accuracy, 0.01)

	// PDF download.
	res, err = http.Get(ts.URL + "/session/" + id + "/report.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "relatorio-Turma-A-")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	// The finish hook archived the run.
	require.Eventually(t, func() bool {
		rows, err := s.archive.Recent(context.Background(), "", 10)
		return err == nil && len(rows) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Manual upload without GitHub config.
	res = postJSON(t, ts, "/session/"+id+"/report/upload", nil)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	var upErr map[string]string
	decode(t, res, &upErr)
	assert.Equal(t, "github_not_configured", upErr["error"])
	assert.Equal(t, msgNotConfigured, upErr["message"])

	// Restart goes back to the start screen.
	res = postJSON(t, ts, "/session/"+id+"/restart", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var back game.State
	decode(t, res, &back)
	assert.Equal(t, game.StageStart, back.Stage)
}

func TestAutoUploadOnFinish(t *testing.T) {
	s, ts := newTestServer(t)

	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"html_url":"https://github.com/x/y/blob/master/r.pdf"}}`))
	}))
	defer gh.Close()
	s.ghConfig = func() *report.GitHubConfig {
		return &report.GitHubConfig{Owner: "x", Repo: "y", Branch: "master", Token: "tok"}
	}
	s.ghBase = gh.URL

	id := createStarted(t, ts, 1)
	st := completeRun(t, ts, id)
	require.Equal(t, game.StageEnd, st.Stage)

	require.Eventually(t, func() bool {
		return strings.Contains(stateStatus(ts, id), "Relatorio enviado automaticamente")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, stateStatus(ts, id), "https://github.com/x/y/blob/master/r.pdf")

	// The archived row carries the upload URL.
	require.Eventually(t, func() bool {
		rows, err := s.archive.Recent(context.Background(), "", 10)
		return err == nil && len(rows) == 1 && rows[0].UploadedURL != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAutoUploadFailureLeavesRetry(t *testing.T) {
	s, ts := newTestServer(t)

	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Invalid request"}`))
	}))
	defer gh.Close()
	s.ghConfig = func() *report.GitHubConfig {
		return &report.GitHubConfig{Owner: "x", Repo: "y", Token: "tok"}
	}
	s.ghBase = gh.URL

	id := createStarted(t, ts, 1)
	completeRun(t, ts, id)

	require.Eventually(t, func() bool {
		return strings.Contains(stateStatus(ts, id), "Envio automatico falhou")
	}, 2*time.Second, 10*time.Millisecond)

	// A manual retry hits the same failing API and reports it.
	res := postJSON(t, ts, "/session/"+id+"/report/upload", nil)
	require.Equal(t, http.StatusBadGateway, res.StatusCode)
	var body map[string]string
	decode(t, res, &body)
	assert.Contains(t, body["message"], "Falha ao enviar para GitHub")
}
