// Package state implements the belief model of one battle: both teams, their
// Pokemon with hidden attributes held in possibility trackers, and the shared
// field.
//
// The model is owned by a single processing goroutine. Cross-entity
// references are always lookups by side, never stored pointers.
package state

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
)

// FieldStatus holds effects shared by both teams.
type FieldStatus struct {
	Weather      string
	WeatherTurns int // turns elapsed
	Terrain      string
	TerrainTurns int
	Gravity      int // turns remaining
	TrickRoom    int // turns remaining
}

// SetWeather starts a new weather, or clears it for "none".
func (f *FieldStatus) SetWeather(kind string) {
	if kind == "" || kind == dex.WeatherNone {
		f.Weather = ""
		f.WeatherTurns = 0
		return
	}
	if f.Weather != kind {
		f.WeatherTurns = 0
	}
	f.Weather = kind
}

// Start begins a field effect such as trickroom or a terrain.
func (f *FieldStatus) Start(effect string) {
	switch id := dex.ID(effect); id {
	case "trickroom":
		f.TrickRoom = 5
	case "gravity":
		f.Gravity = 5
	default:
		f.Terrain = id
		f.TerrainTurns = 0
	}
}

// End stops a field effect.
func (f *FieldStatus) End(effect string) {
	switch id := dex.ID(effect); id {
	case "trickroom":
		f.TrickRoom = 0
	case "gravity":
		f.Gravity = 0
	default:
		if f.Terrain == id {
			f.Terrain = ""
			f.TerrainTurns = 0
		}
	}
}

func (f *FieldStatus) endTurn() {
	if f.Weather != "" {
		f.WeatherTurns++
	}
	if f.Terrain != "" {
		f.TerrainTurns++
	}
	f.Gravity = dec(f.Gravity)
	f.TrickRoom = dec(f.TrickRoom)
}

// ---------------------------------------------------------------------------
// Battle
// ---------------------------------------------------------------------------

// Battle is the root of the belief model.
type Battle struct {
	Rules       Rules
	Dex         *dex.Dex
	Teams       [2]*Team
	Field       FieldStatus
	Turn        int
	Perspective event.Side
	Over        bool
	Winner      event.Side
}

// New creates an empty battle.
func New(d *dex.Dex, rules Rules) *Battle {
	rules = rules.withDefaults()
	return &Battle{
		Rules: rules,
		Dex:   d,
		Teams: [2]*Team{
			newTeam(event.P1, rules.MaxTeamSize),
			newTeam(event.P2, rules.MaxTeamSize),
		},
	}
}

// Team returns the team of side.
func (b *Battle) Team(side event.Side) *Team { return b.Teams[side.Index()] }

// Active returns the active Pokemon of side. Referencing a side with nothing
// active is a fault.
func (b *Battle) Active(side event.Side) (*Pokemon, error) {
	if !side.Valid() {
		return nil, fault.New(fault.CodeInvalidState, "invalid side %q", side)
	}
	p := b.Team(side).Active()
	if p == nil {
		return nil, fault.New(fault.CodeInvalidState, "%s has no active pokemon", side)
	}
	return p, nil
}

// Switch handles a switch-in on side.
func (b *Battle) Switch(side event.Side, species string, level, hp, maxHP int) (*Pokemon, error) {
	if !side.Valid() {
		return nil, fault.New(fault.CodeInvalidState, "invalid side %q", side)
	}
	team := b.Team(side)
	copyVolatile := team.Status.SelfSwitch == "copyvolatile"
	p, err := team.SwitchIn(b.Dex, b.Rules, species, level, copyVolatile)
	if err != nil {
		return nil, err
	}
	p.SetHP(hp, maxHP)
	return p, nil
}

// StartTurn records a new turn number and clears single-turn flags and
// unused switch requests.
func (b *Battle) StartTurn(n int) {
	b.Turn = n
	for _, t := range b.Teams {
		t.Status.SelfSwitch = ""
		if p := t.Active(); p != nil {
			p.Volatile.StartTurn()
		}
	}
}

// Upkeep advances every turn counter at the end of a turn.
func (b *Battle) Upkeep() {
	b.Field.endTurn()
	for _, t := range b.Teams {
		t.Status.endTurn()
		if p := t.Active(); p != nil {
			p.Volatile.EndTurn()
			if p.Status == dex.Sleep || p.Status == dex.Toxic {
				p.StatusTurns++
			}
		}
	}
}

// End marks the battle finished. winner is empty for a tie.
func (b *Battle) End(winner event.Side) {
	b.Over = true
	b.Winner = winner
}
