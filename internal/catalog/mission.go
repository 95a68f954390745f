// go-server/internal/catalog/mission.go
//
// Core type definitions for the mission catalog.
// Defines:
//   - TaskType: closed enum selecting the validation strategy for a mission.
//   - Mission: one step of the activity (label, combo, XP, task type).

package catalog

import (
	"fmt"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
)

// TaskType selects how a mission is validated.
// Possible values:
//   - "copy":        source box must still hold its snapshot text.
//   - "paste":       work box must hold the source snapshot text.
//   - "select_all":  guard-gated confirmation only.
//   - "cut":         work box must be empty.
//   - "undo":        guard-gated confirmation only.
//   - "paste_plain": final box must hold the source snapshot text.
//   - "confirm":     combo observed by the guard is the whole proof.
type TaskType string

const (
	TaskCopy       TaskType = "copy"
	TaskPaste      TaskType = "paste"
	TaskSelectAll  TaskType = "select_all"
	TaskCut        TaskType = "cut"
	TaskUndo       TaskType = "undo"
	TaskPastePlain TaskType = "paste_plain"
	TaskConfirm    TaskType = "confirm"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskCopy, TaskPaste, TaskSelectAll, TaskCut, TaskUndo, TaskPastePlain, TaskConfirm:
		return true
	}
	return false
}

// Mission is one step of the activity list.
type Mission struct {
	Phase     string   `yaml:"phase" json:"phase"`         // display phase, e.g. "Fase 1 - Texto"
	Label     string   `yaml:"label" json:"label"`         // objective shown to the player
	RealCombo string   `yaml:"realCombo" json:"realCombo"` // combo in real mode
	SafeCombo string   `yaml:"safeCombo" json:"safeCombo"` // combo in safe mode
	Keys      []string `yaml:"keys" json:"keys"`           // individual keys, for the on-screen keycap hints
	XP        int      `yaml:"xp" json:"xp"`
	TaskType  TaskType `yaml:"taskType" json:"taskType"`
}

// ExpectedCombo is the combo the guard arms for this mission. Safe and real
// combos are identical in the current catalog; real mode matters only for
// the guard's dangerous-combo suppression.
func (m Mission) ExpectedCombo() string {
	return m.RealCombo
}

// Instruction returns the on-screen guidance line for the mission's task
// type. The switch is exhaustive over TaskType.
func (m Mission) Instruction() string {
	switch m.TaskType {
	case TaskCopy:
		return "Instrucao: selecione TODO o texto da caixa de origem e pressione Ctrl+C."
	case TaskPaste:
		return "Instrucao: clique na caixa de trabalho e pressione Ctrl+V para colar."
	case TaskSelectAll:
		return "Instrucao: clique na caixa de trabalho, pressione Ctrl+A e depois valide."
	case TaskCut:
		return "Instrucao: com o texto selecionado na caixa de trabalho, pressione Ctrl+X."
	case TaskUndo:
		return "Instrucao: pressione Ctrl+Z na caixa de trabalho e depois valide."
	case TaskPastePlain:
		return "Instrucao: copie da origem e cole na caixa final com Ctrl+Shift+V."
	case TaskConfirm:
		return fmt.Sprintf("Instrucao: execute %s e clique no botao de validacao.", combo.Pretty(m.ExpectedCombo()))
	}
	return "Sem atividade de texto para esta missao."
}
