// go-server/internal/game/validate.go
//
// Mission validation. Two deliberately different strategies:
//   - Result-based tasks (copy/paste/cut/paste_plain) inspect the simulated
//     environment buffers against the sourceInitial snapshot.
//   - The literal task (confirm) trusts only the guard's combo capture; the
//     environment is not inspected at all.
// select_all and undo confirm the gesture without a state check; the guard
// gate is the only thing they enforce.

package game

import (
	"strings"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/catalog"
	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/sim"
)

// CheckTask dispatches on the task type and reports success plus the hint
// shown when the attempt fails. comboOK is the guard's verdict for literal
// tasks.
func CheckTask(t catalog.TaskType, snap sim.Snapshot, comboOK bool) (bool, string) {
	srcNow := strings.TrimSpace(snap.SourceText)
	editorNow := strings.TrimSpace(snap.EditorBox)
	finalNow := strings.TrimSpace(snap.FinalBox)
	srcInitial := strings.TrimSpace(snap.SourceInitial)

	switch t {
	case catalog.TaskCopy:
		// The source must still read exactly as handed out; editing it
		// before copying fails the mission.
		return srcNow == srcInitial, "Para validar, selecione na ORIGEM e pressione Ctrl+C."
	case catalog.TaskPaste:
		return editorNow == srcInitial, "Para validar, cole o texto da origem na CAIXA DE TRABALHO com Ctrl+V."
	case catalog.TaskSelectAll:
		return true, "Use Ctrl+A na caixa de trabalho e clique em validar."
	case catalog.TaskCut:
		return editorNow == "", "Para validar, use Ctrl+A e Ctrl+X na caixa de trabalho para esvaziar o texto."
	case catalog.TaskUndo:
		return true, "Use Ctrl+Z na caixa de trabalho e clique em validar."
	case catalog.TaskPastePlain:
		return finalNow == srcInitial, "Para validar, copie da origem e cole sem formatacao na CAIXA FINAL com Ctrl+Shift+V."
	case catalog.TaskConfirm:
		return comboOK, "Pressione o atalho da missao antes de validar."
	}
	return false, "Missao desconhecida."
}
