// go-server/internal/sim/effects.go
//
// Combo effect table. Apply mutates the environment for combos with a
// specific simulated effect and writes a message to the action log; combos
// in the echo sets only log. Unknown combos leave the environment untouched.

package sim

import "fmt"

// simulatorEcho combos have no state effect beyond the log line.
var simulatorEcho = map[string]struct{}{
	"Ctrl+L":       {},
	"Ctrl+R":       {},
	"F5":           {},
	"Ctrl+S":       {},
	"Ctrl+F":       {},
	"Ctrl+A":       {},
	"Ctrl+Y":       {},
	"Ctrl+Shift+V": {},
}

// windowEcho combos log as window-management/menu updates.
var windowEcho = map[string]struct{}{
	"Win+Right": {},
	"Win+Left":  {},
	"Win+Up":    {},
	"Win+M":     {},
	"Ctrl+Esc":  {},
}

// textNavEcho combos log as virtual text navigation.
var textNavEcho = map[string]struct{}{
	"Ctrl+Right":       {},
	"Ctrl+Left":        {},
	"Ctrl+Shift+Right": {},
	"Ctrl+Shift+Left":  {},
	"Home":             {},
	"End":              {},
}

// Apply executes the simulated effect of a canonical combo on e.
func Apply(e *Environment, c string) {
	switch c {
	case "Alt+Tab":
		if e.ActiveWindow == WindowEditor {
			e.ActiveWindow = WindowBrowser
		} else {
			e.ActiveWindow = WindowEditor
		}
		e.ShowDesktop = false
		e.ActionLog = fmt.Sprintf("Alt+Tab executado: foco trocado para %s.", e.ActiveWindow)
	case "Ctrl+T":
		e.SimTabs++
		e.ActionLog = fmt.Sprintf("Ctrl+T executado: nova aba virtual aberta (%d).", e.SimTabs)
	case "Ctrl+W":
		e.SimTabs = max(1, e.SimTabs-1)
		e.ActionLog = fmt.Sprintf("Ctrl+W executado: aba virtual fechada (%d).", e.SimTabs)
	case "Ctrl+Shift+T":
		e.SimTabs++
		e.ActionLog = fmt.Sprintf("Ctrl+Shift+T executado: aba virtual reaberta (%d).", e.SimTabs)
	case "Win+D":
		e.ShowDesktop = true
		e.ActionLog = "Win+D executado: desktop virtual mostrado."
	case "Win+L":
		e.LockedScreen = true
		e.ActionLog = "Win+L executado: tela virtual bloqueada."
	case "Ctrl+Alt+Del":
		e.SecurityMenuOpen = true
		e.ActionLog = "Ctrl+Alt+Del executado: menu de seguranca virtual aberto."
	case "Win+E":
		e.ActiveWindow = WindowExplorer
		e.ActionLog = "Win+E executado: explorador de arquivos virtual aberto."
	case "Win+I":
		e.ActiveWindow = WindowSettings
		e.ActionLog = "Win+I executado: configuracoes virtuais abertas."
	case "Ctrl+Shift+Esc":
		e.ActiveWindow = WindowTaskManager
		e.ActionLog = "Ctrl+Shift+Esc executado: gerenciador de tarefas virtual aberto."
	case "Alt+F4":
		e.ActiveWindow = WindowEditor
		e.ActionLog = "Alt+F4 executado: janela ativa virtual fechada."
	case "Win+Shift+S":
		e.ActionLog = "Win+Shift+S executado: captura de area virtual registrada."
	default:
		switch {
		case member(simulatorEcho, c):
			e.ActionLog = fmt.Sprintf("%s executado no simulador.", c)
		case member(windowEcho, c):
			e.ActionLog = fmt.Sprintf("%s executado: gerenciamento de janela/menu virtual atualizado.", c)
		case member(textNavEcho, c):
			e.ActionLog = fmt.Sprintf("%s executado: navegacao de texto virtual aplicada.", c)
		}
	}
}

func member(set map[string]struct{}, c string) bool {
	_, ok := set[c]
	return ok
}
