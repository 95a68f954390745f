// go-server/internal/game/engine.go
//
// Session engine for one activity run.
// Responsibilities:
//   - Own the full mutable state of a session: stage, roster, mission
//     cursor, simulated environment, shortcut guard, report flags.
//   - Serialize every transition behind one mutex: key events, effects,
//     buffer edits and validations never overlap.
//   - Enforce the progression rules: guard gate before counters, mission
//     advance on success, round-robin turn rotation, finish with reason.
//
// Notes:
//   - Mission definitions and sample sentences come from the catalog package.
//   - The guard is re-armed on every mission transition, which resets its
//     satisfied flag even when the next combo is identical.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/catalog"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/guard"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/sim"
)

var (
	// ErrWrongStage signals an operation invoked outside its stage.
	ErrWrongStage = errors.New("wrong stage")
	// ErrPlayerCount signals a team size outside 1..3.
	ErrPlayerCount = errors.New("invalid player count")
	// ErrEmptyCombo signals an effect request without a usable combo.
	ErrEmptyCombo = errors.New("empty combo")
)

// Player-facing messages, verbatim from the activity material.
const (
	guardWarning    = "Comando nao foi executado. Pressione o atalho da missao antes de validar."
	feedbackHit     = "Acerto critico! Missao concluida."
	feedbackAllDone = "Parabens! Atividade concluida por toda a equipe."
	finishReasonAll = "Todos os alunos da equipe concluíram a lista de comandos."
	failPrefix      = "Ainda nao validou. "
)

// Session is the aggregate for one activity run. All exported methods are
// safe for concurrent use.
type Session struct {
	id string

	mu  sync.Mutex
	now func() time.Time // clock, replaceable in tests

	stage         Stage
	cfg           Config
	players       []*Player
	currentPlayer int
	missionIndex  int
	totalXP       int

	gameStartedAt    time.Time
	missionStartedAt time.Time
	feedback         string
	finishReason     string

	env   *sim.Environment
	guard *guard.Guard

	reportSent   bool
	reportStatus string
}

// New constructs a session on the start stage.
func New() *Session {
	return &Session{
		id:    randomID(),
		now:   time.Now,
		stage: StageStart,
		env:   sim.New(),
		guard: guard.New(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartGame moves the session from start to game, building the roster and
// arming the guard for the first mission.
//
// Rules:
//   - Only valid on the start stage (finish a run and Restart first).
//   - cfg.Players must be between 1 and 3.
func (s *Session) StartGame(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageStart {
		return ErrWrongStage
	}
	if cfg.Players < 1 || cfg.Players > maxPlayers {
		return ErrPlayerCount
	}

	s.cfg = cfg
	s.players = newPlayers(cfg.Players)
	s.currentPlayer = 0
	s.missionIndex = 0
	s.totalXP = 0
	s.feedback = ""
	s.finishReason = ""
	s.reportSent = false
	s.reportStatus = ""

	start := s.now()
	s.gameStartedAt = start
	s.missionStartedAt = start

	s.env.Reset()
	s.env.PrepareContext(0, catalog.Samples())
	if m, ok := catalog.At(0); ok {
		s.guard.Arm(m.ExpectedCombo(), true)
	}
	s.stage = StageGame
	return nil
}

// CurrentMission returns the mission at the cursor, or false outside the
// game stage.
func (s *Session) CurrentMission() (catalog.Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageGame {
		return catalog.Mission{}, false
	}
	return catalog.At(s.missionIndex)
}

// ObserveKey feeds one keydown event to the guard and returns its verdict.
// Works on every stage: dangerous-combo suppression stays live even on the
// start and end screens.
func (s *Session) ObserveKey(ev combo.KeyEvent) guard.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.Observe(ev)
}

// ApplyEffect normalizes a combo and runs its simulated effect, returning
// the resulting action log line.
func (s *Session) ApplyEffect(raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageGame {
		return "", ErrWrongStage
	}
	c := combo.Normalize(raw)
	if c == "" {
		return "", ErrEmptyCombo
	}
	sim.Apply(s.env, c)
	return s.env.ActionLog, nil
}

// SetBuffers overwrites the editable text boxes. Nil pointers leave the
// corresponding box untouched.
func (s *Session) SetBuffers(source, editor, final *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageGame {
		return ErrWrongStage
	}
	if source != nil {
		s.env.SourceText = *source
	}
	if editor != nil {
		s.env.EditorBox = *editor
	}
	if final != nil {
		s.env.FinalBox = *final
	}
	return nil
}

// Validate runs one validation attempt for the current player.
//
// Order of operations:
//  1. The guard gate runs first. A blocked attempt moves no counters and
//     only carries the warning.
//  2. The attempt counter increments.
//  3. confirm missions apply their combo's simulated effect.
//  4. CheckTask decides success; failures increment the error counter and
//     surface the task hint.
//  5. Success awards XP and advances mission, rotates the turn, or
//     finishes the run (see registerSuccess).
func (s *Session) Validate() (ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageGame {
		return ValidationResult{}, ErrWrongStage
	}
	m, ok := catalog.At(s.missionIndex)
	if !ok {
		return ValidationResult{}, errors.New("mission cursor out of range")
	}

	if !s.guard.ConsumeForValidate() {
		return ValidationResult{Blocked: true, Warning: guardWarning}, nil
	}

	p := s.players[s.currentPlayer]
	p.Attempts++

	if m.TaskType == catalog.TaskConfirm {
		sim.Apply(s.env, m.ExpectedCombo())
	}

	success, hint := CheckTask(m.TaskType, s.env.Snapshot(), true)
	if !success {
		p.Errors++
		s.feedback = failPrefix + hint
		return ValidationResult{Feedback: s.feedback, Hint: hint}, nil
	}
	return s.registerSuccess(p, m), nil
}

// registerSuccess applies the scoring and progression rules after a
// successful validation. Caller holds the lock.
func (s *Session) registerSuccess(p *Player, m catalog.Mission) ValidationResult {
	p.Hits++
	p.XP += m.XP
	s.totalXP += m.XP
	p.MissionTimes = append(p.MissionTimes, s.now().Sub(s.missionStartedAt).Seconds())
	p.PhaseHits[catalog.PhaseNumber(m.Phase)]++

	res := ValidationResult{OK: true, XPAwarded: m.XP}

	if s.missionIndex >= catalog.Len()-1 {
		if s.currentPlayer < len(s.players)-1 {
			// Round-robin: next player restarts the list with a fresh context.
			s.currentPlayer++
			s.missionIndex = 0
			s.env.PrepareContext(s.currentPlayer, catalog.Samples())
			s.feedback = fmt.Sprintf("Lista concluida pelo Jogador %d! TROCA DE PILOTO! Vez do Jogador %d.", p.ID, s.currentPlayer+1)
			res.TurnChanged = true
		} else {
			s.stage = StageEnd
			s.finishReason = finishReasonAll
			s.feedback = feedbackAllDone
			res.Finished = true
		}
	} else {
		s.missionIndex++
		s.feedback = feedbackHit
	}
	s.missionStartedAt = s.now()

	if s.stage == StageGame {
		if next, ok := catalog.At(s.missionIndex); ok {
			s.guard.Arm(next.ExpectedCombo(), true)
		}
	}
	res.Feedback = s.feedback
	return res
}

// Restart returns a finished session to the start screen. The previous
// configuration is kept as the form default.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageEnd {
		return ErrWrongStage
	}
	s.stage = StageStart
	s.feedback = ""
	s.finishReason = ""
	return nil
}

// ReportInput snapshots everything the report builder needs. Only valid on
// the end stage.
type ReportInput struct {
	Config         Config
	Players        []Player
	TotalXP        int
	MissionsTarget int
	DurationSec    int // whole seconds since game start, at least 1
	GeneratedAt    time.Time
}

// ReportInput returns a detached snapshot for report building.
func (s *Session) ReportInput() (ReportInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageEnd {
		return ReportInput{}, ErrWrongStage
	}
	players := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p.clone())
	}
	dur := int(s.now().Sub(s.gameStartedAt).Seconds())
	if dur < 1 {
		dur = 1
	}
	return ReportInput{
		Config:         s.cfg,
		Players:        players,
		TotalXP:        s.totalXP,
		MissionsTarget: s.missionsTarget(),
		DurationSec:    dur,
		GeneratedAt:    s.now(),
	}, nil
}

// ReportSent reports whether the automatic upload already succeeded for
// this run.
func (s *Session) ReportSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportSent
}

// MarkReportSent records a successful automatic upload. Failed attempts
// only set the status (SetReportStatus), leaving the send flag clear so a
// retry stays possible.
func (s *Session) MarkReportSent(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportSent = true
	s.reportStatus = status
}

// SetReportStatus records the outcome of a report upload for the state view.
func (s *Session) SetReportStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportStatus = status
}

// missionsTarget is the team-wide mission count: the full list once per
// player. Caller holds the lock.
func (s *Session) missionsTarget() int {
	return catalog.Len() * max(1, len(s.players))
}

// State assembles the full session view for the API. Caller gets detached
// data only.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		SessionID:      s.id,
		Stage:          s.stage,
		Config:         s.cfg,
		CurrentPlayer:  s.currentPlayer,
		MissionIndex:   s.missionIndex,
		MissionsTarget: s.missionsTarget(),
		TotalXP:        s.totalXP,
		Feedback:       s.feedback,
		FinishReason:   s.finishReason,
		Env:            s.env.Snapshot(),
		Guard: GuardView{
			ExpectedCombo: s.guard.ExpectedCombo,
			RequireCombo:  s.guard.RequireCombo,
			Satisfied:     s.guard.Satisfied,
			LastCombo:     s.guard.LastCombo,
		},
		ReportStatus: s.reportStatus,
	}

	for _, p := range s.players {
		st.MissionsDone += p.Hits
		st.Players = append(st.Players, PlayerView{
			ID:       p.ID,
			XP:       p.XP,
			Hits:     p.Hits,
			Attempts: p.Attempts,
			Errors:   p.Errors,
			Accuracy: accuracyPct(p.Hits, p.Attempts),
		})
	}

	if s.stage == StageGame {
		if m, ok := catalog.At(s.missionIndex); ok {
			st.Mission = &MissionView{
				Index:       s.missionIndex,
				Phase:       m.Phase,
				Label:       m.Label,
				Combo:       m.ExpectedCombo(),
				ComboPretty: combo.Pretty(m.ExpectedCombo()),
				Keys:        append([]string(nil), m.Keys...),
				XP:          m.XP,
				TaskType:    m.TaskType,
				Instruction: m.Instruction(),
			}
		}
	}
	return st
}

// accuracyPct is hits over attempts as a percentage with one decimal.
func accuracyPct(hits, attempts int) float64 {
	if attempts == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(attempts)*1000) / 10
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
