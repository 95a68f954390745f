// go-server/internal/guard/guard.go
//
// Shortcut-guard state machine. The browser forwards every keydown over the
// guard WebSocket; this package decides whether the event completes the
// armed mission combo and whether the browser must suppress the native
// shortcut. Validation then consumes the satisfied flag, so a mission can
// only be validated after its combo was genuinely pressed.
//
// Lifecycle per mission:
//   Arm(expected)  → Satisfied=false, even when expected repeats.
//   Observe(event) → Satisfied=true on the first exact match.
//   ConsumeForValidate() → one-shot read-and-clear at validation time.
//
// Not concurrency-safe on its own; the owning session serializes access.

package guard

import "github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"

// Guard tracks whether the armed combo has been pressed since arming.
type Guard struct {
	ExpectedCombo string `json:"expectedCombo"`
	RequireCombo  bool   `json:"requireCombo"`
	Satisfied     bool   `json:"satisfied"`
	LastCombo     string `json:"lastCombo"` // last combo observed, for debugging displays
}

// Observation is the verdict for one key event.
type Observation struct {
	Combo     string `json:"combo"`
	Satisfied bool   `json:"satisfied"` // guard state after this event
	Matched   bool   `json:"matched"`   // this event completed the armed combo
	Suppress  bool   `json:"suppress"`  // browser must preventDefault this combo
}

// New returns a disarmed guard.
func New() *Guard {
	return &Guard{}
}

// Arm points the guard at the next expected combo and clears the satisfied
// flag. The flag resets even when expected equals the previous combo: each
// mission requires a fresh key press.
func (g *Guard) Arm(expected string, require bool) {
	g.ExpectedCombo = combo.Normalize(expected)
	g.RequireCombo = require
	g.Satisfied = false
	g.LastCombo = ""
}

// Observe records one key event. Matching is an exact string comparison
// against the armed combo; dangerous combos are flagged for suppression
// regardless of what is armed.
func (g *Guard) Observe(ev combo.KeyEvent) Observation {
	c := combo.FromEvent(ev)
	g.LastCombo = c

	matched := c != "" && g.ExpectedCombo != "" && c == g.ExpectedCombo
	if matched {
		g.Satisfied = true
	}
	return Observation{
		Combo:     c,
		Satisfied: g.Satisfied,
		Matched:   matched,
		Suppress:  combo.Dangerous(c),
	}
}

// ConsumeForValidate reports whether validation may proceed. An allowed
// validation always clears the satisfied flag, so the next one needs a
// fresh press. With RequireCombo disabled the gate always opens.
func (g *Guard) ConsumeForValidate() bool {
	if g.RequireCombo && !g.Satisfied {
		return false
	}
	g.Satisfied = false
	return true
}
