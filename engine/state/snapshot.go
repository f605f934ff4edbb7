package state

import "github.com/showdown-ai/psbot/engine/dex"

// Snapshot is a deep-copied, plain-data read view of a Battle. Candidate lists
// are sorted so two snapshots of equal beliefs compare equal.
type Snapshot struct {
	Turn        int             `json:"turn"`
	Perspective string          `json:"perspective,omitempty"`
	Over        bool            `json:"over,omitempty"`
	Winner      string          `json:"winner,omitempty"`
	Field       FieldStatus     `json:"field"`
	Teams       [2]TeamSnapshot `json:"teams"`
}

// TeamSnapshot is the read view of one team.
type TeamSnapshot struct {
	Side        string            `json:"side"`
	Size        int               `json:"size"`
	Unrevealed  int               `json:"unrevealed"`
	Spikes      int               `json:"spikes,omitempty"`
	ToxicSpikes int               `json:"toxicSpikes,omitempty"`
	StealthRock bool              `json:"stealthRock,omitempty"`
	StickyWeb   bool              `json:"stickyWeb,omitempty"`
	Screens     map[string]int    `json:"screens,omitempty"`
	SelfSwitch  string            `json:"selfSwitch,omitempty"`
	Wish        int               `json:"wish,omitempty"`
	FutureMoves map[string]int    `json:"futureMoves,omitempty"`
	Pokemon     []PokemonSnapshot `json:"pokemon"`
}

// MoveSnapshot is one revealed move.
type MoveSnapshot struct {
	Name  string `json:"name"`
	PP    int    `json:"pp"`
	MaxPP int    `json:"maxpp"`
}

// PokemonSnapshot is the read view of one Pokemon.
type PokemonSnapshot struct {
	Species     string            `json:"species"`
	Types       []string          `json:"types"`
	Abilities   []string          `json:"abilities"`
	Items       []string          `json:"items"`
	HPTypes     []string          `json:"hpTypes"`
	LastItem    string            `json:"lastItem,omitempty"`
	Moves       []MoveSnapshot    `json:"moves"`
	MovePool    []string          `json:"movePool"`
	MoveHints   [][]string        `json:"moveHints,omitempty"`
	Level       int               `json:"level"`
	HP          int               `json:"hp"`
	MaxHP       int               `json:"maxhp"`
	Status      string            `json:"status,omitempty"`
	StatusTurns int               `json:"statusTurns,omitempty"`
	Fainted     bool              `json:"fainted,omitempty"`
	Volatile    *VolatileSnapshot `json:"volatile,omitempty"`
}

// VolatileSnapshot is the read view of an active Pokemon's volatile status.
type VolatileSnapshot struct {
	Boosts          map[string]int `json:"boosts,omitempty"`
	Confusion       int            `json:"confusion,omitempty"`
	Taunt           int            `json:"taunt,omitempty"`
	Encore          int            `json:"encore,omitempty"`
	Disabled        string         `json:"disabled,omitempty"`
	SlowStart       int            `json:"slowStart,omitempty"`
	Perish          int            `json:"perish,omitempty"`
	TwoTurn         string         `json:"twoTurn,omitempty"`
	LockedMove      string         `json:"lockedMove,omitempty"`
	MustRecharge    bool           `json:"mustRecharge,omitempty"`
	Substitute      bool           `json:"substitute,omitempty"`
	LeechSeed       bool           `json:"leechSeed,omitempty"`
	FlashFire       bool           `json:"flashFire,omitempty"`
	Focus           bool           `json:"focus,omitempty"`
	Transformed     bool           `json:"transformed,omitempty"`
	Protect         bool           `json:"protect,omitempty"`
	StallCount      int            `json:"stallCount,omitempty"`
	LastMove        string         `json:"lastMove,omitempty"`
	SuppressAbility bool           `json:"suppressAbility,omitempty"`
	Effects         []string       `json:"effects,omitempty"`
}

// Snapshot returns a deep copy of the current beliefs.
func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{
		Turn:        b.Turn,
		Perspective: string(b.Perspective),
		Over:        b.Over,
		Winner:      string(b.Winner),
		Field:       b.Field,
	}
	for i, t := range b.Teams {
		s.Teams[i] = t.snapshot()
	}
	return s
}

func (t *Team) snapshot() TeamSnapshot {
	st := t.Status.clone()
	ts := TeamSnapshot{
		Side:        string(t.Side),
		Size:        t.Size,
		Unrevealed:  t.Unrevealed(),
		Spikes:      st.Spikes,
		ToxicSpikes: st.ToxicSpikes,
		StealthRock: st.StealthRock,
		StickyWeb:   st.StickyWeb,
		SelfSwitch:  st.SelfSwitch,
		Wish:        st.Wish,
		Pokemon:     make([]PokemonSnapshot, 0, len(t.Pokemon)),
	}
	if len(st.Screens) > 0 {
		ts.Screens = st.Screens
	}
	if len(st.FutureMoves) > 0 {
		ts.FutureMoves = st.FutureMoves
	}
	for _, p := range t.Pokemon {
		ts.Pokemon = append(ts.Pokemon, p.snapshot())
	}
	return ts
}

func (p *Pokemon) snapshot() PokemonSnapshot {
	ps := PokemonSnapshot{
		Species:     p.Name(),
		Abilities:   p.Ability.Possible(),
		Items:       p.Item.Possible(),
		HPTypes:     p.HPType.Possible(),
		LastItem:    p.LastItem,
		MovePool:    p.Moveset.Pool(),
		Level:       p.Level,
		HP:          p.HP,
		MaxHP:       p.MaxHP,
		Status:      string(p.Status),
		StatusTurns: p.StatusTurns,
		Fainted:     p.Fainted,
		Moves:       make([]MoveSnapshot, 0, len(p.Moveset.Moves)),
	}
	for _, t := range p.Types() {
		ps.Types = append(ps.Types, string(t))
	}
	for _, m := range p.Moveset.Moves {
		ps.Moves = append(ps.Moves, MoveSnapshot{Name: m.Move.ID, PP: m.PP, MaxPP: m.MaxPP})
	}
	if h := p.Moveset.Hints(); len(h) > 0 {
		ps.MoveHints = h
	}
	if v := p.Volatile; v != nil {
		ps.Volatile = v.snapshot()
	}
	return ps
}

func (v *VolatileStatus) snapshot() *VolatileSnapshot {
	vs := &VolatileSnapshot{
		Confusion:       v.Confusion,
		Taunt:           v.Taunt,
		Encore:          v.Encore,
		Disabled:        v.Disabled,
		SlowStart:       v.SlowStart,
		Perish:          v.Perish,
		TwoTurn:         v.TwoTurn,
		LockedMove:      v.LockedMove,
		MustRecharge:    v.MustRecharge,
		Substitute:      v.Substitute,
		LeechSeed:       v.LeechSeed,
		FlashFire:       v.FlashFire,
		Focus:           v.Focus,
		Transformed:     v.Transformed,
		Protect:         v.Protect,
		StallCount:      v.StallCount,
		LastMove:        v.LastMove,
		SuppressAbility: v.SuppressAbility,
	}
	for i, b := range v.Boosts {
		if b == 0 {
			continue
		}
		if vs.Boosts == nil {
			vs.Boosts = make(map[string]int)
		}
		vs.Boosts[string(dex.BoostStats[i])] = b
	}
	if names := v.EffectNames(); len(names) > 0 {
		vs.Effects = names
	}
	return vs
}
