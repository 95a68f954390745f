package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/irgomallis/cybercommand-missao-teclado/go-server/internal/combo"
)

func ctrlKey(k string) combo.KeyEvent {
	return combo.KeyEvent{Key: k, Ctrl: true}
}

func TestArmNormalizesAndResets(t *testing.T) {
	g := New()
	g.Arm("ctrl + c", true)

	assert.Equal(t, "Ctrl+C", g.ExpectedCombo)
	assert.True(t, g.RequireCombo)
	assert.False(t, g.Satisfied)
	assert.Empty(t, g.LastCombo)
}

func TestObserveMatchSetsSatisfied(t *testing.T) {
	g := New()
	g.Arm("Ctrl+C", true)

	obs := g.Observe(ctrlKey("c"))
	assert.Equal(t, "Ctrl+C", obs.Combo)
	assert.True(t, obs.Matched)
	assert.True(t, obs.Satisfied)
	assert.True(t, g.Satisfied)
}

func TestObserveNonMatchKeepsSatisfiedSticky(t *testing.T) {
	g := New()
	g.Arm("Ctrl+C", true)

	obs := g.Observe(ctrlKey("x"))
	assert.False(t, obs.Matched)
	assert.False(t, obs.Satisfied)

	g.Observe(ctrlKey("c"))

	// A later unrelated press does not unset the flag.
	obs = g.Observe(ctrlKey("x"))
	assert.False(t, obs.Matched)
	assert.True(t, obs.Satisfied)
	assert.Equal(t, "Ctrl+X", g.LastCombo)
}

func TestObserveBareModifier(t *testing.T) {
	g := New()
	g.Arm("Ctrl", true) // pathological catalog entry
	obs := g.Observe(combo.KeyEvent{Key: "Control", Ctrl: true})
	assert.Equal(t, "Ctrl", obs.Combo)
	assert.True(t, obs.Matched) // exact string match is all the guard asks

	g.Arm("Ctrl+C", true)
	obs = g.Observe(combo.KeyEvent{Key: "Control", Ctrl: true})
	assert.False(t, obs.Matched)
	assert.False(t, obs.Satisfied)
}

func TestObserveDangerousSuppressedRegardlessOfArm(t *testing.T) {
	g := New()

	// Disarmed guard still flags dangerous combos.
	obs := g.Observe(combo.KeyEvent{Key: "F5"})
	assert.True(t, obs.Suppress)
	assert.False(t, obs.Satisfied)

	// Dangerous combo that happens to be the armed combo: both flags set.
	g.Arm("Alt+Tab", true)
	obs = g.Observe(combo.KeyEvent{Key: "Tab", Alt: true})
	assert.True(t, obs.Suppress)
	assert.True(t, obs.Matched)
}

func TestRearmResetsEvenForSameCombo(t *testing.T) {
	g := New()
	g.Arm("Ctrl+C", true)
	g.Observe(ctrlKey("c"))
	assert.True(t, g.Satisfied)

	g.Arm("Ctrl+C", true)
	assert.False(t, g.Satisfied)
}

func TestConsumeForValidate(t *testing.T) {
	g := New()
	g.Arm("Ctrl+C", true)

	// No press yet: blocked, and stays blocked.
	assert.False(t, g.ConsumeForValidate())
	assert.False(t, g.ConsumeForValidate())

	// Press, then validate: allowed exactly once.
	g.Observe(ctrlKey("c"))
	assert.True(t, g.ConsumeForValidate())
	assert.False(t, g.ConsumeForValidate())
}

func TestConsumeForValidateOptional(t *testing.T) {
	g := New()
	g.Arm("Ctrl+C", false)

	assert.True(t, g.ConsumeForValidate())
	assert.True(t, g.ConsumeForValidate())

	// Even when optional, an allowed validation spends the capture.
	g.Observe(ctrlKey("c"))
	assert.True(t, g.ConsumeForValidate())
	assert.False(t, g.Satisfied)
}
