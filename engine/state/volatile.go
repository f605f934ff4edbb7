package state

import (
	"sort"

	"github.com/showdown-ai/psbot/engine/dex"
)

// VolatileStatus holds every effect on the active Pokemon that resets when it
// switches out.
type VolatileStatus struct {
	Boosts [7]int // indexed by dex.StatIndex

	Confusion    int // turns confused so far
	Taunt        int // turns remaining
	Encore       int // turns remaining
	Disabled     string
	DisableTurns int
	SlowStart    int
	Perish       int // 0 when no count is running

	TwoTurn      string // move being charged
	LockedMove   string
	MustRecharge bool
	Substitute   bool
	LeechSeed    bool
	FlashFire    bool
	Focus        bool
	Transformed  bool

	// Single-turn flags, cleared at the start of each turn.
	Protect bool
	Flinch  bool

	StallCount      int // consecutive successful protect moves
	LastMove        string
	OverrideTypes   []dex.Type
	SuppressAbility bool

	// Effects holds named volatile effects the model has no dedicated field
	// for, with their start turn.
	Effects map[string]int
}

// NewVolatile returns a cleared volatile status.
func NewVolatile() *VolatileStatus {
	return &VolatileStatus{Effects: make(map[string]int)}
}

// Boost returns the current stage of s.
func (v *VolatileStatus) Boost(s dex.Stat) int {
	if i := dex.StatIndex(s); i >= 0 {
		return v.Boosts[i]
	}
	return 0
}

// ApplyBoost changes the stage of s by amount clamped to [-max, max] and
// returns the change actually applied.
func (v *VolatileStatus) ApplyBoost(s dex.Stat, amount, max int) int {
	i := dex.StatIndex(s)
	if i < 0 {
		return 0
	}
	next := v.Boosts[i] + amount
	if next > max {
		next = max
	}
	if next < -max {
		next = -max
	}
	applied := next - v.Boosts[i]
	v.Boosts[i] = next
	return applied
}

// CanBoost reports whether changing s by amount would have any effect.
func (v *VolatileStatus) CanBoost(s dex.Stat, amount, max int) bool {
	cur := v.Boost(s)
	if amount > 0 {
		return cur < max
	}
	if amount < 0 {
		return cur > -max
	}
	return false
}

// SetBoost sets the stage of s outright.
func (v *VolatileStatus) SetBoost(s dex.Stat, stage int) {
	if i := dex.StatIndex(s); i >= 0 {
		v.Boosts[i] = stage
	}
}

// ClearBoosts resets every stage.
func (v *VolatileStatus) ClearBoosts() { v.Boosts = [7]int{} }

// ClearNegativeBoosts resets every negative stage.
func (v *VolatileStatus) ClearNegativeBoosts() {
	for i, b := range v.Boosts {
		if b < 0 {
			v.Boosts[i] = 0
		}
	}
}

// Start records a named effect with no dedicated field.
func (v *VolatileStatus) Start(name string, turn int) { v.Effects[dex.ID(name)] = turn }

// End removes a named effect.
func (v *VolatileStatus) End(name string) { delete(v.Effects, dex.ID(name)) }

// Has reports whether a named effect is active.
func (v *VolatileStatus) Has(name string) bool {
	_, ok := v.Effects[dex.ID(name)]
	return ok
}

// EffectNames returns the named effects in sorted order.
func (v *VolatileStatus) EffectNames() []string {
	out := make([]string, 0, len(v.Effects))
	for k := range v.Effects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BatonPass returns the volatile status a replacement inherits through a
// copy-volatile switch: boosts, substitute, confusion, leech seed, focus and
// perish count.
func (v *VolatileStatus) BatonPass() *VolatileStatus {
	next := NewVolatile()
	next.Boosts = v.Boosts
	next.Substitute = v.Substitute
	next.Confusion = v.Confusion
	next.LeechSeed = v.LeechSeed
	next.Focus = v.Focus
	next.Perish = v.Perish
	return next
}

// StartTurn clears single-turn flags.
func (v *VolatileStatus) StartTurn() {
	v.Protect = false
	v.Flinch = false
}

// EndTurn advances turn counters.
func (v *VolatileStatus) EndTurn() {
	v.Taunt = dec(v.Taunt)
	v.Encore = dec(v.Encore)
	v.SlowStart = dec(v.SlowStart)
	if v.DisableTurns = dec(v.DisableTurns); v.DisableTurns == 0 {
		v.Disabled = ""
	}
	if v.Confusion > 0 {
		v.Confusion++
	}
}

func dec(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
