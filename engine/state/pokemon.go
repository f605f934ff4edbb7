package state

import (
	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/possibility"
)

// Pokemon is one team member. Hidden attributes are trackers; Volatile is
// non-nil only while the Pokemon is active.
type Pokemon struct {
	Species *possibility.Tracker[*dex.Species]
	Ability *possibility.Tracker[*dex.Ability]
	Item    *possibility.Tracker[*dex.Item]
	HPType  *possibility.Tracker[dex.Type]
	Moveset *Moveset

	LastItem    string // item held before the current one was removed
	Level       int
	HP          int
	MaxHP       int
	Status      dex.MajorStatus
	StatusTurns int // sleep or toxic turns elapsed
	Fainted     bool

	Volatile *VolatileStatus
}

// NewPokemon creates a revealed Pokemon with trackers seeded from species
// data.
func NewPokemon(d *dex.Dex, rules Rules, species string, level int) (*Pokemon, error) {
	s, err := d.Species(species)
	if err != nil {
		return nil, err
	}
	abilities, err := d.Abilities(s.Abilities...)
	if err != nil {
		return nil, err
	}
	if len(abilities) == 0 {
		return nil, fault.New(fault.CodeUnknownData, "species %s has no abilities", s.Name)
	}
	moves, err := d.Moves(s.Learnset...)
	if err != nil {
		return nil, err
	}
	if level <= 0 {
		level = 100
	}
	return &Pokemon{
		Species: possibility.Definite(s.ID, s),
		Ability: possibility.New(abilities),
		Item:    possibility.New(d.Items()),
		HPType:  possibility.New(d.HiddenPowerTypes()),
		Moveset: NewMoveset(rules.MaxMoves, moves),
		Level:   level,
		HP:      100,
		MaxHP:   100,
	}, nil
}

// SpeciesData returns the definite species.
func (p *Pokemon) SpeciesData() *dex.Species {
	s, _ := p.Species.DefiniteValue()
	return s
}

// Name returns the species ID.
func (p *Pokemon) Name() string {
	id, _ := p.Species.Definite()
	return id
}

// Types returns the current types, honouring a volatile type override.
func (p *Pokemon) Types() []dex.Type {
	if p.Volatile != nil && len(p.Volatile.OverrideTypes) > 0 {
		return p.Volatile.OverrideTypes
	}
	if s := p.SpeciesData(); s != nil {
		return s.Types
	}
	return nil
}

// HasType reports whether t is one of the current types.
func (p *Pokemon) HasType(t dex.Type) bool {
	for _, own := range p.Types() {
		if own == t {
			return true
		}
	}
	return false
}

// ChangeSpecies permanently replaces the species, as for a mega evolution.
// The ability tracker is reseeded from the new species.
func (p *Pokemon) ChangeSpecies(d *dex.Dex, species string) error {
	s, err := d.Species(species)
	if err != nil {
		return err
	}
	abilities, err := d.Abilities(s.Abilities...)
	if err != nil {
		return err
	}
	p.Species = possibility.Definite(s.ID, s)
	p.Ability = possibility.New(abilities)
	return nil
}

// Active reports whether the Pokemon is on the field.
func (p *Pokemon) Active() bool { return p.Volatile != nil }

// AbilityIs reports whether the ability is definitely id.
func (p *Pokemon) AbilityIs(id string) bool {
	name, ok := p.Ability.Definite()
	return ok && name == dex.ID(id)
}

// SetAbility narrows the ability tracker to a revealed ability.
func (p *Pokemon) SetAbility(id string) error {
	return p.Ability.NarrowTo(dex.ID(id))
}

// OverrideAbility replaces the ability outright, as when it is copied or
// changed by a move.
func (p *Pokemon) OverrideAbility(a *dex.Ability) {
	p.Ability = possibility.Definite(a.ID, a)
}

// SetItem narrows the item tracker to a revealed item.
func (p *Pokemon) SetItem(id string) error {
	if id = dex.ID(id); id == "" {
		id = dex.NoItem
	}
	return p.Item.NarrowTo(id)
}

// GainItem replaces the item outright, as when it is received by a move.
func (p *Pokemon) GainItem(it *dex.Item) {
	p.Item = possibility.Definite(it.ID, it)
}

// RemoveItem records that the held item id was lost or consumed.
func (p *Pokemon) RemoveItem(d *dex.Dex, id string) error {
	if err := p.SetItem(id); err != nil {
		return err
	}
	p.LastItem = dex.ID(id)
	none, err := d.Item(dex.NoItem)
	if err != nil {
		return err
	}
	p.GainItem(none)
	return nil
}

// SetHP records a new HP value.
func (p *Pokemon) SetHP(hp, maxHP int) {
	if maxHP > 0 {
		p.MaxHP = maxHP
	}
	if hp < 0 {
		hp = 0
	}
	p.HP = hp
}

// SetStatus inflicts a major status.
func (p *Pokemon) SetStatus(s dex.MajorStatus) {
	p.Status = s
	p.StatusTurns = 0
}

// StatusImmuneByType reports whether the current types prevent status s.
func (p *Pokemon) StatusImmuneByType(s dex.MajorStatus) bool {
	switch s {
	case dex.Burn:
		return p.HasType(dex.Fire)
	case dex.Freeze:
		return p.HasType(dex.Ice)
	case dex.Paralysis:
		return p.HasType(dex.Electric)
	case dex.Poisoned, dex.Toxic:
		return p.HasType(dex.Poison) || p.HasType(dex.Steel)
	}
	return false
}

// Faint marks the Pokemon fainted.
func (p *Pokemon) Faint() {
	p.HP = 0
	p.Fainted = true
	p.Status = dex.NoStatus
}

// switchOut drops the volatile status.
func (p *Pokemon) switchOut() *VolatileStatus {
	v := p.Volatile
	p.Volatile = nil
	if p.Status == dex.Toxic {
		p.StatusTurns = 0
	}
	return v
}
