package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/archive"
)

func seedArchive(t *testing.T, s *Server, id, group string, xp int) {
	t.Helper()
	require.NoError(t, s.archive.Insert(context.Background(), archive.Entry{
		ID:                id,
		SessionID:         "sess-" + id,
		Group:             group,
		SafeMode:          true,
		MissionsCompleted: 6,
		MissionsTotal:     6,
		TotalXP:           xp,
		DurationSec:       75,
		GeneratedAt:       "25/08/2026 10:00:00",
		Payload:           json.RawMessage(`{}`),
	}))
}

func TestReportsRequireAuth(t *testing.T) {
	_, ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/reports")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, err = http.Get(ts.URL + "/reports/leaderboard")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestReportsListAndFilter(t *testing.T) {
	s, ts := newTestServer(t)
	seedArchive(t, s, "a1", "Turma A", 70)
	seedArchive(t, s, "b1", "Turma B", 140)
	c := authedClient(t, ts, "prof_ana")

	res, err := c.Get(ts.URL + "/reports")
	require.NoError(t, err)
	var body struct {
		Reports []archive.Entry `json:"reports"`
	}
	decode(t, res, &body)
	assert.Len(t, body.Reports, 2)

	res, err = c.Get(ts.URL + "/reports?group=Turma+B")
	require.NoError(t, err)
	decode(t, res, &body)
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "Turma B", body.Reports[0].Group)
	assert.Equal(t, 140, body.Reports[0].TotalXP)

	res, err = c.Get(ts.URL + "/reports?group=Turma+Z")
	require.NoError(t, err)
	decode(t, res, &body)
	assert.Empty(t, body.Reports)
}

func TestReportsLeaderboard(t *testing.T) {
	s, ts := newTestServer(t)
	seedArchive(t, s, "low", "Turma C", 50)
	seedArchive(t, s, "high", "Turma A", 200)
	seedArchive(t, s, "mid", "Turma B", 120)
	c := authedClient(t, ts, "prof_bia")

	res, err := c.Get(ts.URL + "/reports/leaderboard?limit=2")
	require.NoError(t, err)
	var body struct {
		Top []archive.LBRow `json:"top"`
	}
	decode(t, res, &body)
	require.Len(t, body.Top, 2)
	assert.Equal(t, "Turma A", body.Top[0].Group)
	assert.Equal(t, 200, body.Top[0].TotalXP)
	assert.Equal(t, "Turma B", body.Top[1].Group)
}
