// go-server/internal/report/report.go
//
// End-of-activity report building.
// Responsibilities:
//   - Derive the per-player metrics (accuracy, average mission time,
//     velocity, per-phase hits) from a finished session snapshot.
//   - Produce the aggregate header data (group, students, totals, duration).
//   - Generate the report filename used by downloads and uploads.
//
// The report is a pure derived view: building it never touches live
// session state.

package report

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/game"
)

const notInformed = "Nao informado"

// unsafeFileRunes matches every character not allowed in report filenames.
var unsafeFileRunes = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// PlayerReport is one player's row in the final report.
type PlayerReport struct {
	ID       int     `json:"id"`
	XP       int     `json:"xp"`
	Hits     int     `json:"hits"`
	Attempts int     `json:"attempts"`
	Errors   int     `json:"errors"`
	Accuracy float64 `json:"accuracy"` // percent, one decimal
	AvgTime  float64 `json:"avgTime"`  // seconds per completed mission, two decimals
	Velocity float64 `json:"velocity"` // missions per minute, two decimals
	F1       int     `json:"f1"`
	F2       int     `json:"f2"`
	F3       int     `json:"f3"`
	F4       int     `json:"f4"`
	F5       int     `json:"f5"`
}

// Report is the complete end-of-activity summary.
type Report struct {
	GeneratedAt       string         `json:"generatedAt"` // dd/mm/yyyy HH:MM:SS
	Group             string         `json:"group"`
	Students          []string       `json:"students"`
	SafeMode          bool           `json:"safeMode"`
	MissionsCompleted int            `json:"missionsCompleted"`
	MissionsTotal     int            `json:"missionsTotal"`
	TotalXP           int            `json:"totalXp"`
	DurationSec       int            `json:"durationSec"`
	Players           []PlayerReport `json:"players"`
}

// Build derives the report from a finished session snapshot.
func Build(in game.ReportInput) Report {
	students := splitStudents(in.Config.Students)

	group := strings.TrimSpace(in.Config.Group)
	if group == "" {
		group = notInformed
	}

	r := Report{
		GeneratedAt:   in.GeneratedAt.Format("02/01/2006 15:04:05"),
		Group:         group,
		Students:      students,
		SafeMode:      in.Config.SafeMode,
		MissionsTotal: in.MissionsTarget,
		TotalXP:       in.TotalXP,
		DurationSec:   in.DurationSec,
	}

	for _, p := range in.Players {
		var avg float64
		if len(p.MissionTimes) > 0 {
			for _, tSec := range p.MissionTimes {
				avg += tSec
			}
			avg /= float64(len(p.MissionTimes))
		}
		var accuracy float64
		if p.Attempts > 0 {
			accuracy = round1(float64(p.Hits) / float64(p.Attempts) * 100)
		}
		velocity := round2(float64(p.Hits) / (float64(in.DurationSec) / 60))

		r.MissionsCompleted += p.Hits
		r.Players = append(r.Players, PlayerReport{
			ID:       p.ID,
			XP:       p.XP,
			Hits:     p.Hits,
			Attempts: p.Attempts,
			Errors:   p.Errors,
			Accuracy: accuracy,
			AvgTime:  round2(avg),
			Velocity: velocity,
			F1:       p.PhaseHits["1"],
			F2:       p.PhaseHits["2"],
			F3:       p.PhaseHits["3"],
			F4:       p.PhaseHits["4"],
			F5:       p.PhaseHits["5"],
		})
	}
	return r
}

// Filename builds the download/upload name: group slug plus timestamp.
func Filename(group string, t time.Time) string {
	g := strings.TrimSpace(group)
	if g == "" {
		g = "turma"
	}
	safe := unsafeFileRunes.ReplaceAllString(g, "-")
	return fmt.Sprintf("relatorio-%s-%s.pdf", safe, t.Format("20060102-150405"))
}

// splitStudents takes the one-name-per-line form field and returns the
// cleaned list, or the placeholder when nothing was filled in.
func splitStudents(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return []string{notInformed}
	}
	return out
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
