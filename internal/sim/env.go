// go-server/internal/sim/env.go
//
// Simulated desktop environment for the activity. All shortcut effects act
// on this struct instead of the real machine: virtual clipboard, virtual
// browser tabs, virtual active window, and the text boxes the text-editing
// missions are validated against.
//
// Responsibilities:
//   - Hold the mutable environment state for one session.
//   - Reset to a known baseline when a game starts.
//   - Prepare a per-player context (training sentence + cleared boxes)
//     exactly once per player turn.
//   - Produce immutable snapshots for validation and API responses.
//
// Notes:
//   - The struct is not concurrency-safe on its own; the owning session
//     serializes access.

package sim

import "fmt"

// Virtual window names cycled by the window-management combos.
const (
	WindowEditor      = "Editor"
	WindowBrowser     = "Navegador"
	WindowExplorer    = "Explorador"
	WindowSettings    = "Configuracoes"
	WindowTaskManager = "Gerenciador de Tarefas"
)

const (
	defaultActionLog     = "Simulador iniciado."
	defaultSourceText    = "Texto de treino: copie este paragrafo com Ctrl+C e cole no bloco de destino usando Ctrl+V."
	defaultSourceInitial = "Texto base: pratique os comandos de edicao nesta atividade."
)

// Environment is the virtual desktop a session plays against.
type Environment struct {
	ClipboardVirtual string // virtual clipboard contents
	SourceText       string // editable source box
	SourceInitial    string // snapshot of the source at context load
	DestinationText  string // legacy destination box kept for the UI
	EditorBox        string // work box used by paste/cut/undo missions
	FinalBox         string // final box used by the paste_plain mission

	UndoStack  []string // client-managed history for the work box
	UndoTarget string   // text Ctrl+Z should restore in the work box

	SimTabs          int    // virtual browser tab count, never below 1
	ActiveWindow     string // one of the Window* constants
	ShowDesktop      bool   // set by Win+D
	LockedScreen     bool   // set by Win+L
	SecurityMenuOpen bool   // set by Ctrl+Alt+Del
	ActionLog        string // last simulator message

	// ContextPlayer is the zero-based player index the current context was
	// prepared for, or -1 when no context is loaded.
	ContextPlayer int
}

// New returns an environment already reset to the baseline state.
func New() *Environment {
	e := &Environment{}
	e.Reset()
	return e
}

// Reset restores every field to the baseline used at game start.
func (e *Environment) Reset() {
	e.ClipboardVirtual = ""
	e.SourceText = defaultSourceText
	e.SourceInitial = defaultSourceInitial
	e.DestinationText = ""
	e.EditorBox = ""
	e.FinalBox = ""
	e.UndoStack = nil
	e.UndoTarget = ""
	e.SimTabs = 1
	e.ActiveWindow = WindowEditor
	e.ShowDesktop = false
	e.LockedScreen = false
	e.SecurityMenuOpen = false
	e.ActionLog = defaultActionLog
	e.ContextPlayer = -1
}

// PrepareContext loads the training sentence for a player and clears the
// text boxes. Idempotent per player: calling it again for the player the
// context already belongs to changes nothing.
func (e *Environment) PrepareContext(playerIdx int, samples []string) {
	if e.ContextPlayer == playerIdx {
		return
	}
	sample := defaultSourceInitial
	if len(samples) > 0 {
		sample = samples[playerIdx%len(samples)]
	}
	e.SourceText = sample
	e.SourceInitial = sample
	e.DestinationText = ""
	e.EditorBox = ""
	e.FinalBox = ""
	e.UndoTarget = ""
	e.ActionLog = fmt.Sprintf("Contexto carregado para o Jogador %d.", playerIdx+1)
	e.ContextPlayer = playerIdx
}

// Snapshot is an immutable view of the environment.
type Snapshot struct {
	ClipboardVirtual string   `json:"clipboardVirtual"`
	SourceText       string   `json:"sourceText"`
	SourceInitial    string   `json:"sourceInitial"`
	DestinationText  string   `json:"destinationText"`
	EditorBox        string   `json:"editorBox"`
	FinalBox         string   `json:"finalBox"`
	UndoStack        []string `json:"undoStack"`
	UndoTarget       string   `json:"undoTarget"`
	SimTabs          int      `json:"simTabs"`
	ActiveWindow     string   `json:"activeWindow"`
	ShowDesktop      bool     `json:"showDesktop"`
	LockedScreen     bool     `json:"lockedScreen"`
	SecurityMenuOpen bool     `json:"securityMenuOpen"`
	ActionLog        string   `json:"actionLog"`
}

// Snapshot copies the current state into a value type safe to hand out.
func (e *Environment) Snapshot() Snapshot {
	return Snapshot{
		ClipboardVirtual: e.ClipboardVirtual,
		SourceText:       e.SourceText,
		SourceInitial:    e.SourceInitial,
		DestinationText:  e.DestinationText,
		EditorBox:        e.EditorBox,
		FinalBox:         e.FinalBox,
		UndoStack:        append([]string(nil), e.UndoStack...),
		UndoTarget:       e.UndoTarget,
		SimTabs:          e.SimTabs,
		ActiveWindow:     e.ActiveWindow,
		ShowDesktop:      e.ShowDesktop,
		LockedScreen:     e.LockedScreen,
		SecurityMenuOpen: e.SecurityMenuOpen,
		ActionLog:        e.ActionLog,
	}
}
