// go-server/internal/combo/combo.go
//
// Canonical keyboard-combo handling shared by the catalog, the simulator
// and the shortcut guard.
//
// Responsibilities:
//   - Normalize free-form combo text ("ctrl + shift v") into the canonical
//     "Ctrl+Shift+V" form used everywhere else in the server.
//   - Convert raw browser key events into the same canonical form.
//   - Render combos for display (arrow keys become arrow glyphs).
//   - Answer whether a combo belongs to the dangerous set that the guard
//     must suppress in real mode.
//
// Canonical form:
//   • Modifiers first, always in Ctrl, Alt, Shift, Win order, each at most once.
//   • Remaining keys keep their input order.
//   • Single characters are uppercased ("c" → "C"); longer tokens are
//     capitalized ("home" → "Home", "f5" → "F5").
//   • Aliases from Portuguese and from browser key names map to one spelling
//     (control→Ctrl, setadireita→Right, ArrowRight→Right, Escape→Esc...).

package combo

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Modifier spellings in canonical order.
var modifierOrder = []string{"Ctrl", "Alt", "Shift", "Win"}

var modifierSet = toSet(modifierOrder)

// splitRE breaks combo text on '+' and whitespace runs.
var splitRE = regexp.MustCompile(`[+\s]+`)

// aliases maps lowercase free-form tokens (including the Portuguese names
// used in the mission material) to canonical key spellings.
var aliases = map[string]string{
	"control": "Ctrl",
	"ctrl":    "Ctrl",
	"alt":     "Alt",
	"shift":   "Shift",
	"win":     "Win",
	"meta":    "Win",
	"windows": "Win",
	"del":     "Del",
	"delete":  "Del",
	"tab":     "Tab",
	"esc":     "Esc",
	"escape":  "Esc",

	"setadireita":  "Right",
	"direita":      "Right",
	"right":        "Right",
	"setaesquerda": "Left",
	"esquerda":     "Left",
	"left":         "Left",
	"setacima":     "Up",
	"cima":         "Up",
	"up":           "Up",
	"setabaixo":    "Down",
	"baixo":        "Down",
	"down":         "Down",

	"inicio": "Home",
	"home":   "Home",
	"fim":    "End",
	"end":    "End",
}

// eventAliases maps browser KeyboardEvent.key values to canonical spellings.
var eventAliases = map[string]string{
	"Control":    "Ctrl",
	"Alt":        "Alt",
	"Shift":      "Shift",
	"Meta":       "Win",
	"OS":         "Win",
	"Escape":     "Esc",
	"Esc":        "Esc",
	"Delete":     "Del",
	"Del":        "Del",
	"Tab":        "Tab",
	"ArrowRight": "Right",
	"ArrowLeft":  "Left",
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	" ":          "Space",
}

// dangerous combos are never executed for real in the browser; the guard
// reports them as suppressed so the page can preventDefault them.
var dangerous = toSet([]string{
	"Ctrl+W",
	"Ctrl+T",
	"Ctrl+Shift+T",
	"Ctrl+R",
	"F5",
	"Ctrl+N",
	"Ctrl+L",
	"Alt+F4",
	"Alt+Tab",
	"Win+L",
})

// prettyKeys substitutes glyphs for display only; canonical combos keep
// the word form.
var prettyKeys = map[string]string{
	"Right": "→",
	"Left":  "←",
	"Up":    "↑",
	"Down":  "↓",
}

func toSet(keys []string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// capitalize upcases the first rune and downcases the rest, so "hOME"
// becomes "Home" and "f5" becomes "F5".
func capitalize(tok string) string {
	if tok == "" {
		return tok
	}
	_, size := utf8.DecodeRuneInString(tok)
	return strings.ToUpper(tok[:size]) + strings.ToLower(tok[size:])
}

func canonicalToken(tok string) string {
	if k, ok := aliases[strings.ToLower(tok)]; ok {
		return k
	}
	if utf8.RuneCountInString(tok) == 1 {
		return strings.ToUpper(tok)
	}
	return capitalize(tok)
}

// Normalize rewrites free-form combo text into canonical form.
// Unknown tokens are kept (capitalized) rather than rejected, so catalog
// typos surface visibly instead of silently failing to match.
func Normalize(text string) string {
	var keys []string
	for _, tok := range splitRE.Split(strings.TrimSpace(text), -1) {
		if tok == "" {
			continue
		}
		keys = append(keys, canonicalToken(tok))
	}
	if len(keys) == 0 {
		return ""
	}

	present := toSet(keys)
	var parts []string
	for _, m := range modifierOrder {
		if _, ok := present[m]; ok {
			parts = append(parts, m)
		}
	}
	for _, k := range keys {
		if _, ok := modifierSet[k]; !ok {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, "+")
}

// KeyEvent mirrors the fields of a browser keydown event that matter for
// combo detection.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrlKey"`
	Alt   bool   `json:"altKey"`
	Shift bool   `json:"shiftKey"`
	Meta  bool   `json:"metaKey"`
}

// FromEvent builds the canonical combo for a keydown event. Modifier flags
// come first; the main key is appended unless it is itself a modifier.
// A bare modifier press yields just that modifier ("Ctrl").
func FromEvent(ev KeyEvent) string {
	var parts []string
	if ev.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if ev.Alt {
		parts = append(parts, "Alt")
	}
	if ev.Shift {
		parts = append(parts, "Shift")
	}
	if ev.Meta {
		parts = append(parts, "Win")
	}

	key := ev.Key
	if mapped, ok := eventAliases[key]; ok {
		key = mapped
	}
	if key != "" {
		if _, isMod := modifierSet[key]; !isMod {
			if utf8.RuneCountInString(key) == 1 {
				key = strings.ToUpper(key)
			}
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, "+")
}

// Pretty renders a canonical combo for display, swapping arrow-key words
// for glyphs ("Ctrl+Right" → "Ctrl+→").
func Pretty(c string) string {
	if c == "" {
		return c
	}
	parts := strings.Split(c, "+")
	for i, p := range parts {
		if g, ok := prettyKeys[p]; ok {
			parts[i] = g
		}
	}
	return strings.Join(parts, "+")
}

// Dangerous reports whether a canonical combo belongs to the suppression
// set (browser/system shortcuts that must never fire for real during the
// activity).
func Dangerous(c string) bool {
	_, ok := dangerous[c]
	return ok
}
