// Package dex holds the immutable static rule data consulted by the belief
// engine: species, moves, abilities, items and the type chart.
//
// A Dex is loaded once from YAML and passed explicitly to every component
// that needs it. It is never mutated after Load returns, so it is safe to
// share between battles running on different goroutines.
package dex

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/showdown-ai/psbot/engine/fault"
)

// NoItem is the item candidate meaning "holds nothing".
const NoItem = "none"

//go:embed data/dex.yaml
var defaultData []byte

// Species is one creature species.
type Species struct {
	ID        string         `yaml:"-"`
	Name      string         `yaml:"name"`
	Types     []Type         `yaml:"types"`
	BaseStats map[string]int `yaml:"baseStats"`
	Abilities []string       `yaml:"abilities"`
	Learnset  []string       `yaml:"moves"`
}

// Secondary is a move's chance-based extra effect on the target or user.
type Secondary struct {
	Chance   int          `yaml:"chance"`
	Status   MajorStatus  `yaml:"status"`
	Volatile string       `yaml:"volatile"`
	Boosts   map[Stat]int `yaml:"boosts"`
	Self     map[Stat]int `yaml:"self"`
}

// Move is one move definition.
type Move struct {
	ID            string          `yaml:"-"`
	Name          string          `yaml:"name"`
	Type          Type            `yaml:"type"`
	Category      Category        `yaml:"category"`
	Power         int             `yaml:"power"`
	Accuracy      int             `yaml:"accuracy"` // 0 never misses
	PP            int             `yaml:"pp"`
	Priority      int             `yaml:"priority"`
	Target        Target          `yaml:"target"`
	Flags         map[string]bool `yaml:"flags"`
	MultiHit      [2]int          `yaml:"multihit"`
	Status        MajorStatus     `yaml:"status"`
	Boosts        map[Stat]int    `yaml:"boosts"`
	SelfBoosts    map[Stat]int    `yaml:"selfBoosts"`
	Secondary     *Secondary      `yaml:"secondary"`
	SelfSwitch    string          `yaml:"selfSwitch"`
	Drain         Fraction        `yaml:"drain"`
	Recoil        Fraction        `yaml:"recoil"`
	Heal          Fraction        `yaml:"heal"`
	SelfDestruct  bool            `yaml:"selfDestruct"`
	Weather       string          `yaml:"weather"`
	SideCondition string          `yaml:"sideCondition"`
	Volatile      string          `yaml:"volatile"`
	Field         string          `yaml:"field"`
	Calls         string          `yaml:"calls"`
	Charge        bool            `yaml:"charge"`
	Recharge      bool            `yaml:"recharge"`
	Future        bool            `yaml:"future"`
	OHKO          bool            `yaml:"ohko"`
	Stall         bool            `yaml:"stall"`
	ClearBoosts   bool            `yaml:"clearBoosts"`
	TypeFrom      string          `yaml:"typeFrom"`
}

// HasFlag reports whether the move carries a protocol flag such as "contact".
func (m *Move) HasFlag(flag string) bool { return m.Flags[flag] }

// Hits returns the minimum and maximum hit count.
func (m *Move) Hits() (lo, hi int) {
	if m.MultiHit[1] == 0 {
		return 1, 1
	}
	return m.MultiHit[0], m.MultiHit[1]
}

// OnStart is an ability's switch-in effect.
type OnStart struct {
	Weather   string       `yaml:"weather"`
	FoeBoosts map[Stat]int `yaml:"foeBoosts"`
	Announce  bool         `yaml:"announce"`
}

// TypeImmunity is an ability's immunity to a move type and its side effect.
type TypeImmunity struct {
	Type     Type         `yaml:"type"`
	Heal     Fraction     `yaml:"heal"`
	Boosts   map[Stat]int `yaml:"boosts"`
	Volatile string       `yaml:"volatile"`
}

// ContactStatus is a chance to inflict a status on a contact attacker.
type ContactStatus struct {
	Status MajorStatus `yaml:"status"`
	Chance int         `yaml:"chance"`
}

// Ability is one ability definition.
type Ability struct {
	ID                string         `yaml:"-"`
	Name              string         `yaml:"name"`
	OnStart           *OnStart       `yaml:"onStart"`
	TypeImmunity      *TypeImmunity  `yaml:"typeImmunity"`
	StatusImmunity    []MajorStatus  `yaml:"statusImmunity"`
	VolatileImmunity  []string       `yaml:"volatileImmunity"`
	BlockBoostDrop    []Stat         `yaml:"blockBoostDrop"`
	BlockFlag         string         `yaml:"blockFlag"`
	BlockSelfDestruct bool           `yaml:"blockSelfDestruct"`
	ContactDamage     Fraction       `yaml:"contactDamage"`
	ContactStatus     *ContactStatus `yaml:"contactStatus"`
	ContactKODamage   Fraction       `yaml:"contactKODamage"`
	MoldBreaker       bool           `yaml:"moldBreaker"`
	MagicGuard        bool           `yaml:"magicGuard"`
	Pressure          bool           `yaml:"pressure"`
}

// BlocksStatus reports whether the ability prevents status s.
func (a *Ability) BlocksStatus(s MajorStatus) bool {
	for _, b := range a.StatusImmunity {
		if b == s || (b == Poisoned && s == Toxic) {
			return true
		}
	}
	return false
}

// BlocksVolatile reports whether the ability prevents volatile v.
func (a *Ability) BlocksVolatile(v string) bool {
	for _, b := range a.VolatileImmunity {
		if ID(b) == ID(v) {
			return true
		}
	}
	return false
}

// BlocksDrop reports whether the ability prevents lowering stat s.
func (a *Ability) BlocksDrop(s Stat) bool {
	for _, b := range a.BlockBoostDrop {
		if b == s || b == "all" {
			return true
		}
	}
	return false
}

// Item is one held item definition.
type Item struct {
	ID            string        `yaml:"-"`
	Name          string        `yaml:"name"`
	Plate         Type          `yaml:"plate"`
	ResidualHeal  Fraction      `yaml:"residualHeal"`
	ContactDamage Fraction      `yaml:"contactDamage"`
	AttackRecoil  Fraction      `yaml:"attackRecoil"`
	HazardImmune  bool          `yaml:"hazardImmune"`
	Levitate      bool          `yaml:"levitate"`
	ChargeSkip    bool          `yaml:"chargeSkip"`
	StatusCure    []MajorStatus `yaml:"statusCure"`
	Choice        bool          `yaml:"choice"`
	Consumable    bool          `yaml:"consumable"`
}

// Dex is the read-only rule dictionary.
type Dex struct {
	chart     TypeChart
	species   map[string]*Species
	moves     map[string]*Move
	abilities map[string]*Ability
	items     map[string]*Item
}

type document struct {
	Types     map[Type]map[Type]float64 `yaml:"types"`
	Species   []*Species                `yaml:"species"`
	Moves     []*Move                   `yaml:"moves"`
	Abilities []*Ability                `yaml:"abilities"`
	Items     []*Item                   `yaml:"items"`
}

// Load parses a YAML rule document.
func Load(r io.Reader) (*Dex, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dex: %w", err)
	}
	d := &Dex{
		chart:     TypeChart(doc.Types),
		species:   make(map[string]*Species, len(doc.Species)),
		moves:     make(map[string]*Move, len(doc.Moves)),
		abilities: make(map[string]*Ability, len(doc.Abilities)),
		items:     make(map[string]*Item, len(doc.Items)+1),
	}
	for _, m := range doc.Moves {
		m.ID = ID(m.Name)
		if m.Target == "" {
			m.Target = TargetNormal
		}
		d.moves[m.ID] = m
	}
	for _, a := range doc.Abilities {
		a.ID = ID(a.Name)
		d.abilities[a.ID] = a
	}
	d.items[NoItem] = &Item{ID: NoItem, Name: "(none)"}
	for _, it := range doc.Items {
		it.ID = ID(it.Name)
		d.items[it.ID] = it
	}
	for _, s := range doc.Species {
		s.ID = ID(s.Name)
		for i, a := range s.Abilities {
			s.Abilities[i] = ID(a)
			if _, ok := d.abilities[s.Abilities[i]]; !ok {
				return nil, fault.New(fault.CodeUnknownData, "species %s: unknown ability %q", s.Name, a)
			}
		}
		for i, mv := range s.Learnset {
			s.Learnset[i] = ID(mv)
			if _, ok := d.moves[s.Learnset[i]]; !ok {
				return nil, fault.New(fault.CodeUnknownData, "species %s: unknown move %q", s.Name, mv)
			}
		}
		d.species[s.ID] = s
	}
	if err := d.chart.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile parses a YAML rule document from disk.
func LoadFile(path string) (*Dex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce sync.Once
	defaultDex  *Dex
	defaultErr  error
)

// Default returns the embedded rule data, parsed once.
func Default() (*Dex, error) {
	defaultOnce.Do(func() {
		defaultDex, defaultErr = Load(bytes.NewReader(defaultData))
	})
	return defaultDex, defaultErr
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// Chart returns the type chart.
func (d *Dex) Chart() TypeChart { return d.chart }

// Counts reports how many entries of each kind the dex holds.
type Counts struct {
	Types, Species, Moves, Abilities, Items int
}

// Counts returns the table sizes. The placeholder "no item" entry is not
// counted.
func (d *Dex) Counts() Counts {
	return Counts{
		Types:     len(d.chart),
		Species:   len(d.species),
		Moves:     len(d.moves),
		Abilities: len(d.abilities),
		Items:     len(d.items) - 1,
	}
}

// Species looks up a species by display name or ID.
func (d *Dex) Species(name string) (*Species, error) {
	if s, ok := d.species[ID(name)]; ok {
		return s, nil
	}
	return nil, fault.New(fault.CodeUnknownData, "unknown species %q", name)
}

// Move looks up a move by display name or ID.
func (d *Dex) Move(name string) (*Move, error) {
	if m, ok := d.moves[ID(name)]; ok {
		return m, nil
	}
	return nil, fault.New(fault.CodeUnknownData, "unknown move %q", name)
}

// Ability looks up an ability by display name or ID.
func (d *Dex) Ability(name string) (*Ability, error) {
	if a, ok := d.abilities[ID(name)]; ok {
		return a, nil
	}
	return nil, fault.New(fault.CodeUnknownData, "unknown ability %q", name)
}

// Item looks up an item by display name or ID.
func (d *Dex) Item(name string) (*Item, error) {
	id := ID(name)
	if id == "" {
		id = NoItem
	}
	if it, ok := d.items[id]; ok {
		return it, nil
	}
	return nil, fault.New(fault.CodeUnknownData, "unknown item %q", name)
}

// Abilities returns the ability table restricted to ids.
func (d *Dex) Abilities(ids ...string) (map[string]*Ability, error) {
	out := make(map[string]*Ability, len(ids))
	for _, id := range ids {
		a, err := d.Ability(id)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, nil
}

// Moves returns the move table restricted to ids.
func (d *Dex) Moves(ids ...string) (map[string]*Move, error) {
	out := make(map[string]*Move, len(ids))
	for _, id := range ids {
		m, err := d.Move(id)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, nil
}

// Items returns a copy of the whole item table, including NoItem.
func (d *Dex) Items() map[string]*Item {
	out := make(map[string]*Item, len(d.items))
	for id, it := range d.items {
		out[id] = it
	}
	return out
}

// HiddenPowerTypes returns the possible hidden-power types keyed by ID.
func (d *Dex) HiddenPowerTypes() map[string]Type {
	out := make(map[string]Type, len(AllTypes))
	for _, t := range AllTypes {
		if t == Normal || t == Fairy {
			continue
		}
		out[string(t)] = t
	}
	return out
}

// SpeciesIDs returns every species ID in sorted order.
func (d *Dex) SpeciesIDs() []string {
	out := make([]string, 0, len(d.species))
	for id := range d.species {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
