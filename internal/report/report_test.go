package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/game"
)

func sampleInput() game.ReportInput {
	return game.ReportInput{
		Config: game.Config{
			Players:  2,
			Group:    "Turma 7B",
			Students: "  Alice Souza \n\nBruno Lima\n",
			SafeMode: true,
		},
		Players: []game.Player{
			{
				ID: 1, XP: 70, Hits: 6, Attempts: 8, Errors: 2,
				PhaseHits:    map[string]int{"1": 6, "2": 0, "3": 0, "4": 0, "5": 0},
				MissionTimes: []float64{4, 6, 5, 5, 4, 6},
			},
			{
				ID: 2, XP: 70, Hits: 6, Attempts: 6, Errors: 0,
				PhaseHits:    map[string]int{"1": 6, "2": 0, "3": 0, "4": 0, "5": 0},
				MissionTimes: []float64{3, 3, 3, 3, 3, 3},
			},
		},
		TotalXP:        140,
		MissionsTarget: 12,
		DurationSec:    120,
		GeneratedAt:    time.Date(2025, 3, 10, 9, 41, 30, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleInput())

	assert.Equal(t, "10/03/2025 09:41:30", r.GeneratedAt)
	assert.Equal(t, "Turma 7B", r.Group)
	assert.Equal(t, []string{"Alice Souza", "Bruno Lima"}, r.Students)
	assert.True(t, r.SafeMode)
	assert.Equal(t, 12, r.MissionsCompleted)
	assert.Equal(t, 12, r.MissionsTotal)
	assert.Equal(t, 140, r.TotalXP)
	assert.Equal(t, 120, r.DurationSec)
	require.Len(t, r.Players, 2)

	p1 := r.Players[0]
	assert.Equal(t, 1, p1.ID)
	assert.InDelta(t, 75.0, p1.Accuracy, 0.001) // 6/8
	assert.InDelta(t, 5.0, p1.AvgTime, 0.001)   // mean of times
	assert.InDelta(t, 3.0, p1.Velocity, 0.001)  // 6 hits in 2 minutes
	assert.Equal(t, 6, p1.F1)
	assert.Equal(t, 0, p1.F5)

	p2 := r.Players[1]
	assert.InDelta(t, 100.0, p2.Accuracy, 0.001)
	assert.InDelta(t, 3.0, p2.AvgTime, 0.001)
}

func TestBuildRounding(t *testing.T) {
	in := sampleInput()
	in.Players = []game.Player{{
		ID: 1, XP: 34, Hits: 2, Attempts: 3, Errors: 1,
		PhaseHits:    map[string]int{"1": 2},
		MissionTimes: []float64{4.5, 5.25},
	}}
	in.DurationSec = 47

	r := Build(in)
	p := r.Players[0]
	assert.InDelta(t, 66.7, p.Accuracy, 0.001) // 66.666... → one decimal
	assert.InDelta(t, 4.88, p.AvgTime, 0.001)  // 4.875 → two decimals
	assert.InDelta(t, 2.55, p.Velocity, 0.001) // 2/(47/60)=2.5531...
}

func TestBuildZeroActivityPlayer(t *testing.T) {
	in := sampleInput()
	in.Players = []game.Player{{ID: 1, PhaseHits: map[string]int{}}}

	r := Build(in)
	p := r.Players[0]
	assert.Zero(t, p.Accuracy)
	assert.Zero(t, p.AvgTime)
	assert.Zero(t, p.Velocity)
	assert.Zero(t, p.F1)
	assert.Equal(t, 0, r.MissionsCompleted)
}

func TestBuildPlaceholders(t *testing.T) {
	in := sampleInput()
	in.Config.Group = "   "
	in.Config.Students = "\n  \n"

	r := Build(in)
	assert.Equal(t, "Nao informado", r.Group)
	assert.Equal(t, []string{"Nao informado"}, r.Students)
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 41, 30, 0, time.UTC)

	assert.Equal(t, "relatorio-Turma-7B-20250310-094130.pdf", Filename("Turma 7B", ts))
	assert.Equal(t, "relatorio-turma-20250310-094130.pdf", Filename("", ts))
	assert.Equal(t, "relatorio-7-ano---manh--20250310-094130.pdf", Filename("7 ano / manhã", ts))
	assert.Equal(t, "relatorio-ok_grupo-01-20250310-094130.pdf", Filename("ok_grupo-01", ts))
}
