// go-server/internal/game/types.go
//
// Core type definitions for the activity state machine.
// Defines:
//   - Stage: coarse lifecycle of a session (start/game/end).
//   - Config: the settings chosen on the start screen.
//   - Player: per-player progress and scoring counters.
//   - ValidationResult: outcome of one validation attempt.
//   - View types (State, MissionView, ...) handed to the HTTP layer.

package game

import (
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/catalog"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/sim"
)

// Stage is the lifecycle position of a session.
// Possible values:
//   - "start": configuration screen, no game running.
//   - "game":  a game is in progress.
//   - "end":   the team finished the list; report available.
type Stage string

const (
	StageStart Stage = "start"
	StageGame  Stage = "game"
	StageEnd   Stage = "end"
)

// maxPlayers is the largest team the start screen offers.
const maxPlayers = 3

// Config holds the start-screen settings for one game.
type Config struct {
	Players  int    `json:"players"`  // team size, 1..3
	Group    string `json:"group"`    // class/group label for the report
	Students string `json:"students"` // one student name per line
	SafeMode bool   `json:"safeMode"` // safe combos only (no real browser side effects)
}

// Player accumulates one player's progress across their pass of the list.
type Player struct {
	ID           int            `json:"id"` // 1-based, also the rotation order
	XP           int            `json:"xp"`
	Hits         int            `json:"hits"`
	Attempts     int            `json:"attempts"`
	Errors       int            `json:"errors"`
	PhaseHits    map[string]int `json:"phaseHits"`    // hits keyed by phase digit "1".."5"
	MissionTimes []float64      `json:"missionTimes"` // seconds spent per completed mission
}

// newPlayers builds the rotation roster with seeded phase counters.
func newPlayers(n int) []*Player {
	ps := make([]*Player, 0, n)
	for i := 1; i <= n; i++ {
		ps = append(ps, &Player{
			ID:           i,
			PhaseHits:    map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
			MissionTimes: []float64{},
		})
	}
	return ps
}

// clone deep-copies the player so report builders and views cannot alias
// live state.
func (p *Player) clone() Player {
	cp := *p
	cp.PhaseHits = make(map[string]int, len(p.PhaseHits))
	for k, v := range p.PhaseHits {
		cp.PhaseHits[k] = v
	}
	cp.MissionTimes = append([]float64(nil), p.MissionTimes...)
	return cp
}

// ValidationResult is the outcome of one validation attempt.
type ValidationResult struct {
	Blocked     bool   `json:"blocked"`           // guard gate refused the attempt; no counters moved
	Warning     string `json:"warning,omitempty"` // set when Blocked
	OK          bool   `json:"ok"`
	Feedback    string `json:"feedback,omitempty"`
	Hint        string `json:"hint,omitempty"` // set on failed attempts
	XPAwarded   int    `json:"xpAwarded,omitempty"`
	TurnChanged bool   `json:"turnChanged,omitempty"`
	Finished    bool   `json:"finished,omitempty"`
}

// MissionView is the current mission as shown to the player.
type MissionView struct {
	Index       int              `json:"index"`
	Phase       string           `json:"phase"`
	Label       string           `json:"label"`
	Combo       string           `json:"combo"`
	ComboPretty string           `json:"comboPretty"`
	Keys        []string         `json:"keys"`
	XP          int              `json:"xp"`
	TaskType    catalog.TaskType `json:"taskType"`
	Instruction string           `json:"instruction"`
}

// PlayerView is one scoreboard row.
type PlayerView struct {
	ID       int     `json:"id"`
	XP       int     `json:"xp"`
	Hits     int     `json:"hits"`
	Attempts int     `json:"attempts"`
	Errors   int     `json:"errors"`
	Accuracy float64 `json:"accuracy"` // percent, one decimal
}

// GuardView mirrors the guard state for the client.
type GuardView struct {
	ExpectedCombo string `json:"expectedCombo"`
	RequireCombo  bool   `json:"requireCombo"`
	Satisfied     bool   `json:"satisfied"`
	LastCombo     string `json:"lastCombo"`
}

// State is the full session view returned by the API.
type State struct {
	SessionID      string       `json:"sessionId"`
	Stage          Stage        `json:"stage"`
	Config         Config       `json:"config"`
	CurrentPlayer  int          `json:"currentPlayer"` // zero-based index into Players
	MissionIndex   int          `json:"missionIndex"`
	MissionsDone   int          `json:"missionsDone"`
	MissionsTarget int          `json:"missionsTarget"`
	Mission        *MissionView `json:"mission,omitempty"` // nil outside the game stage
	Players        []PlayerView `json:"players"`
	TotalXP        int          `json:"totalXp"`
	Feedback       string       `json:"feedback,omitempty"`
	FinishReason   string       `json:"finishReason,omitempty"`
	Env            sim.Snapshot `json:"env"`
	Guard          GuardView    `json:"guard"`
	ReportStatus   string       `json:"reportStatus,omitempty"`
}
