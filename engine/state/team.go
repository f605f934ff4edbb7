package state

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
)

// Side conditions in ID form.
const (
	StealthRock = "stealthrock"
	Spikes      = "spikes"
	ToxicSpikes = "toxicspikes"
	StickyWeb   = "stickyweb"
	Reflect     = "reflect"
	LightScreen = "lightscreen"
	AuroraVeil  = "auroraveil"
	Tailwind    = "tailwind"
	Safeguard   = "safeguard"
	Mist        = "mist"
)

// Turn counts for timed side conditions.
var conditionTurns = map[string]int{
	Reflect:     5,
	LightScreen: 5,
	AuroraVeil:  5,
	Tailwind:    4,
	Safeguard:   5,
	Mist:        5,
}

// TeamStatus holds team-wide effects that persist across switches.
type TeamStatus struct {
	Spikes      int
	ToxicSpikes int
	StealthRock bool
	StickyWeb   bool

	// Timed conditions, turns remaining.
	Screens map[string]int

	// SelfSwitch is the pending switch request: "", "switch" or "copyvolatile".
	SelfSwitch string
	Wish       int
	// FutureMoves maps a future move ID to turns until it lands.
	FutureMoves map[string]int
}

func newTeamStatus() TeamStatus {
	return TeamStatus{Screens: make(map[string]int), FutureMoves: make(map[string]int)}
}

// Start applies a side condition. Stacking past the layer limit is a fault.
func (s *TeamStatus) Start(rules Rules, condition string) error {
	switch id := dex.ID(condition); id {
	case StealthRock:
		s.StealthRock = true
	case StickyWeb:
		s.StickyWeb = true
	case Spikes:
		if s.Spikes >= rules.Spikes {
			return fault.New(fault.CodeInvalidState, "spikes already at %d layers", s.Spikes)
		}
		s.Spikes++
	case ToxicSpikes:
		if s.ToxicSpikes >= rules.ToxicSpikes {
			return fault.New(fault.CodeInvalidState, "toxic spikes already at %d layers", s.ToxicSpikes)
		}
		s.ToxicSpikes++
	default:
		turns, ok := conditionTurns[id]
		if !ok {
			turns = 5
		}
		s.Screens[id] = turns
	}
	return nil
}

// End removes a side condition.
func (s *TeamStatus) End(condition string) {
	switch id := dex.ID(condition); id {
	case StealthRock:
		s.StealthRock = false
	case StickyWeb:
		s.StickyWeb = false
	case Spikes:
		s.Spikes = 0
	case ToxicSpikes:
		s.ToxicSpikes = 0
	default:
		delete(s.Screens, id)
	}
}

// Has reports whether a timed condition is active.
func (s *TeamStatus) Has(condition string) bool {
	_, ok := s.Screens[dex.ID(condition)]
	return ok
}

// HasHazards reports whether any entry hazard is set.
func (s *TeamStatus) HasHazards() bool {
	return s.StealthRock || s.StickyWeb || s.Spikes > 0 || s.ToxicSpikes > 0
}

func (s *TeamStatus) endTurn() {
	for id, n := range s.Screens {
		if n <= 1 {
			delete(s.Screens, id)
			continue
		}
		s.Screens[id] = n - 1
	}
	for id, n := range s.FutureMoves {
		if n > 0 {
			s.FutureMoves[id] = n - 1
		}
	}
	s.Wish = dec(s.Wish)
}

func (s TeamStatus) clone() TeamStatus {
	c := s
	c.Screens = make(map[string]int, len(s.Screens))
	for k, v := range s.Screens {
		c.Screens[k] = v
	}
	c.FutureMoves = make(map[string]int, len(s.FutureMoves))
	for k, v := range s.FutureMoves {
		c.FutureMoves[k] = v
	}
	return c
}

// ---------------------------------------------------------------------------
// Team
// ---------------------------------------------------------------------------

// Team owns one side's Pokemon. Slot 0 is the active Pokemon once anything
// has switched in; slots past len(Pokemon) are unrevealed.
type Team struct {
	Side    event.Side
	Size    int
	Pokemon []*Pokemon
	Status  TeamStatus
}

func newTeam(side event.Side, size int) *Team {
	return &Team{Side: side, Size: size, Status: newTeamStatus()}
}

// SetSize fixes the team size. Changing it once set is a fault.
func (t *Team) SetSize(n int, rules Rules) error {
	if n <= 0 || n > rules.MaxTeamSize {
		return fault.New(fault.CodeInvalidState, "team size %d outside 1..%d", n, rules.MaxTeamSize)
	}
	if len(t.Pokemon) > n {
		return fault.New(fault.CodeInvalidState, "team size %d below %d revealed", n, len(t.Pokemon))
	}
	t.Size = n
	return nil
}

// Active returns the active Pokemon, or nil before the first switch-in.
func (t *Team) Active() *Pokemon {
	if len(t.Pokemon) == 0 || !t.Pokemon[0].Active() {
		return nil
	}
	return t.Pokemon[0]
}

// Unrevealed returns the number of placeholder slots.
func (t *Team) Unrevealed() int { return t.Size - len(t.Pokemon) }

// Find returns the revealed, non-fainted member of the given species.
func (t *Team) Find(species string) (*Pokemon, int) {
	id := dex.ID(species)
	for i, p := range t.Pokemon {
		if p.Name() == id && !p.Fainted {
			return p, i
		}
	}
	return nil, -1
}

// SwitchIn makes the member of the given species active, revealing it if it
// has not been seen. When copyVolatile is set the replacement inherits the
// outgoing Pokemon's passable volatile status.
func (t *Team) SwitchIn(d *dex.Dex, rules Rules, species string, level int, copyVolatile bool) (*Pokemon, error) {
	var inherited *VolatileStatus
	if out := t.Active(); out != nil {
		v := out.switchOut()
		if copyVolatile {
			inherited = v.BatonPass()
		}
	}
	p, idx, err := t.reveal(d, rules, species, level)
	if err != nil {
		return nil, err
	}
	t.Pokemon[0], t.Pokemon[idx] = t.Pokemon[idx], t.Pokemon[0]
	if inherited == nil {
		inherited = NewVolatile()
	}
	p.Volatile = inherited
	t.Status.SelfSwitch = ""
	return p, nil
}

// Reveal adds a member without switching it in, as when a team is known in
// advance. Revealing a species already present returns the existing member.
func (t *Team) Reveal(d *dex.Dex, rules Rules, species string, level int) (*Pokemon, error) {
	p, _, err := t.reveal(d, rules, species, level)
	return p, err
}

func (t *Team) reveal(d *dex.Dex, rules Rules, species string, level int) (*Pokemon, int, error) {
	if p, idx := t.Find(species); p != nil {
		return p, idx, nil
	}
	if t.Unrevealed() <= 0 {
		return nil, -1, fault.New(fault.CodeInvalidState, "%s: reveal of unseen %s with all %d slots revealed", t.Side, species, t.Size)
	}
	p, err := NewPokemon(d, rules, species, level)
	if err != nil {
		return nil, -1, err
	}
	t.Pokemon = append(t.Pokemon, p)
	return p, len(t.Pokemon) - 1, nil
}

// Bench returns the revealed non-active members.
func (t *Team) Bench() []*Pokemon {
	if t.Active() == nil {
		return t.Pokemon
	}
	return t.Pokemon[1:]
}
