// Package event defines the decoded protocol events consumed by the belief
// engine.
//
// Event is a closed sum type: every variant lives in this package and
// implements the unexported marker method, so consumers switch over a fixed
// set of concrete types. The transport layer decodes one protocol message into
// exactly one Event.
package event

import "strings"

// Side identifies a player, and in singles that player's active Pokemon.
type Side string

const (
	P1 Side = "p1"
	P2 Side = "p2"
)

// Foe returns the opposing side.
func (s Side) Foe() Side {
	if s == P1 {
		return P2
	}
	return P1
}

// Index returns 0 for p1 and 1 for p2.
func (s Side) Index() int {
	if s == P2 {
		return 1
	}
	return 0
}

// Valid reports whether s names a player.
func (s Side) Valid() bool { return s == P1 || s == P2 }

// Effect is a "[from]" attribution such as "ability: Drizzle" or "item: Leftovers".
// Type is empty for bare names like "Stealth Rock" or "psn".
type Effect struct {
	Type string
	Name string
}

// Effect types.
const (
	FromAbility   = "ability"
	FromItem      = "item"
	FromMove      = "move"
	FromCondition = "condition"
)

// ParseEffect splits "type: Name" into an Effect.
func ParseEffect(s string) Effect {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ":"); i > 0 {
		return Effect{Type: strings.ToLower(strings.TrimSpace(s[:i])), Name: strings.TrimSpace(s[i+1:])}
	}
	return Effect{Name: s}
}

// IsZero reports whether no attribution is present.
func (e Effect) IsZero() bool { return e.Name == "" }

// Is reports whether the effect is of type typ.
func (e Effect) Is(typ string) bool { return e.Type == typ }

func (e Effect) String() string {
	if e.Type == "" {
		return e.Name
	}
	return e.Type + ": " + e.Name
}

// MarshalText encodes the effect in protocol spelling.
func (e Effect) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText decodes the protocol spelling.
func (e *Effect) UnmarshalText(b []byte) error {
	*e = ParseEffect(string(b))
	return nil
}

// Kind is the wire tag of an event variant.
type Kind string

// Event is one decoded protocol message.
type Event interface {
	Kind() Kind
	event()
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Init starts a battle. Perspective is the side whose team is fully known,
// empty for a spectator.
type Init struct {
	Perspective Side   `json:"perspective,omitempty"`
	TeamSize    [2]int `json:"teamSize"`
	Gen         int    `json:"gen,omitempty"`
}

// Turn begins a new turn.
type Turn struct {
	Number int `json:"number"`
}

// Upkeep marks end-of-turn residual processing.
type Upkeep struct{}

// Win ends the battle.
type Win struct {
	Side Side `json:"side"`
}

// Tie ends the battle without a winner.
type Tie struct{}

// ---------------------------------------------------------------------------
// Switching
// ---------------------------------------------------------------------------

// Switch brings a Pokemon in. Drag is set for forced switches.
type Switch struct {
	Side    Side   `json:"side"`
	Species string `json:"species"`
	Level   int    `json:"level,omitempty"`
	HP      int    `json:"hp"`
	MaxHP   int    `json:"maxhp"`
	Drag    bool   `json:"drag,omitempty"`
}

// DetailsChange permanently changes a Pokemon's species.
type DetailsChange struct {
	Side    Side   `json:"side"`
	Species string `json:"species"`
}

// FormeChange temporarily changes a Pokemon's forme.
type FormeChange struct {
	Side    Side   `json:"side"`
	Species string `json:"species"`
	From    Effect `json:"from,omitzero"`
}

// Transform copies Target's species, types, boosts and moves onto Side.
type Transform struct {
	Side   Side `json:"side"`
	Target Side `json:"target"`
}

// Faint reports that a Pokemon fainted.
type Faint struct {
	Side Side `json:"side"`
}

// ---------------------------------------------------------------------------
// Moves
// ---------------------------------------------------------------------------

// Move reports a move being used. From is set when another effect called it.
type Move struct {
	Side   Side   `json:"side"`
	Move   string `json:"move"`
	Target Side   `json:"target,omitempty"`
	From   Effect `json:"from,omitzero"`
	Still  bool   `json:"still,omitempty"`
	Miss   bool   `json:"miss,omitempty"`
}

// Cant reports that a Pokemon could not act.
type Cant struct {
	Side   Side   `json:"side"`
	Reason Effect `json:"reason"`
	Move   string `json:"move,omitempty"`
}

// Prepare reports the charge turn of a two-turn move.
type Prepare struct {
	Side Side   `json:"side"`
	Move string `json:"move"`
}

// MustRecharge reports that a Pokemon must recharge this turn.
type MustRecharge struct {
	Side Side `json:"side"`
}

// Fail reports that a move or effect failed.
type Fail struct {
	Side Side   `json:"side"`
	What string `json:"what,omitempty"`
	From Effect `json:"from,omitzero"`
	Of   Side   `json:"of,omitempty"`
}

// NoTarget reports that a move had no target.
type NoTarget struct {
	Side Side `json:"side"`
}

// Miss reports that Side's move missed Target.
type Miss struct {
	Side   Side `json:"side"`
	Target Side `json:"target,omitempty"`
}

// Immune reports that Side was unaffected.
type Immune struct {
	Side Side   `json:"side"`
	From Effect `json:"from,omitzero"`
	Of   Side   `json:"of,omitempty"`
}

// Crit reports a critical hit on Side.
type Crit struct {
	Side Side `json:"side"`
}

// SuperEffective reports a super-effective hit on Side.
type SuperEffective struct {
	Side Side `json:"side"`
}

// Resisted reports a resisted hit on Side.
type Resisted struct {
	Side Side `json:"side"`
}

// HitCount ends a multi-hit move.
type HitCount struct {
	Side  Side `json:"side"`
	Count int  `json:"count"`
}

// Activate reports that an effect activated on Side.
type Activate struct {
	Side   Side   `json:"side"`
	Effect Effect `json:"effect"`
	Of     Side   `json:"of,omitempty"`
}

// SingleTurn reports a single-turn effect such as Protect.
type SingleTurn struct {
	Side   Side   `json:"side"`
	Effect Effect `json:"effect"`
}

// ---------------------------------------------------------------------------
// HP
// ---------------------------------------------------------------------------

// Damage reports HP lost. HP is the new value.
type Damage struct {
	Side  Side   `json:"side"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxhp"`
	From  Effect `json:"from,omitzero"`
	Of    Side   `json:"of,omitempty"`
}

// Heal reports HP gained. HP is the new value.
type Heal struct {
	Side  Side   `json:"side"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxhp"`
	From  Effect `json:"from,omitzero"`
	Of    Side   `json:"of,omitempty"`
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status reports a major status being inflicted.
type Status struct {
	Side   Side   `json:"side"`
	Status string `json:"status"`
	From   Effect `json:"from,omitzero"`
	Of     Side   `json:"of,omitempty"`
}

// CureStatus reports a major status being cured.
type CureStatus struct {
	Side   Side   `json:"side"`
	Status string `json:"status"`
	From   Effect `json:"from,omitzero"`
}

// CureTeam cures the whole team of Side.
type CureTeam struct {
	Side Side `json:"side"`
}

// ---------------------------------------------------------------------------
// Boosts
// ---------------------------------------------------------------------------

// Boost changes a stat stage. Negative amounts are drops.
type Boost struct {
	Side   Side   `json:"side"`
	Stat   string `json:"stat"`
	Amount int    `json:"amount"`
	From   Effect `json:"from,omitzero"`
	Of     Side   `json:"of,omitempty"`
}

// SetBoost sets a stat stage outright.
type SetBoost struct {
	Side   Side   `json:"side"`
	Stat   string `json:"stat"`
	Amount int    `json:"amount"`
}

// ClearAllBoost resets every stat stage on the field.
type ClearAllBoost struct{}

// ClearNegativeBoost resets Side's negative stages.
type ClearNegativeBoost struct {
	Side Side `json:"side"`
}

// ---------------------------------------------------------------------------
// Volatile status
// ---------------------------------------------------------------------------

// Start begins a volatile effect on Side.
type Start struct {
	Side   Side   `json:"side"`
	Effect Effect `json:"effect"`
	From   Effect `json:"from,omitzero"`
	Of     Side   `json:"of,omitempty"`
}

// End ends a volatile effect on Side.
type End struct {
	Side   Side   `json:"side"`
	Effect Effect `json:"effect"`
	From   Effect `json:"from,omitzero"`
}

// ---------------------------------------------------------------------------
// Reveals
// ---------------------------------------------------------------------------

// Ability reveals Side's ability.
type Ability struct {
	Side    Side   `json:"side"`
	Ability string `json:"ability"`
	From    Effect `json:"from,omitzero"`
	Of      Side   `json:"of,omitempty"`
}

// Item reveals Side's item, or reports it being obtained.
type Item struct {
	Side Side   `json:"side"`
	Item string `json:"item"`
	From Effect `json:"from,omitzero"`
	Of   Side   `json:"of,omitempty"`
}

// EndItem reports Side losing its item.
type EndItem struct {
	Side Side   `json:"side"`
	Item string `json:"item"`
	Eat  bool   `json:"eat,omitempty"`
	From Effect `json:"from,omitzero"`
}

// ---------------------------------------------------------------------------
// Field
// ---------------------------------------------------------------------------

// Weather sets or continues the weather. Upkeep marks a continuing weather.
type Weather struct {
	Weather string `json:"weather"`
	Upkeep  bool   `json:"upkeep,omitempty"`
	From    Effect `json:"from,omitzero"`
	Of      Side   `json:"of,omitempty"`
}

// FieldStart begins a field-wide effect.
type FieldStart struct {
	Effect Effect `json:"effect"`
	From   Effect `json:"from,omitzero"`
	Of     Side   `json:"of,omitempty"`
}

// FieldEnd ends a field-wide effect.
type FieldEnd struct {
	Effect Effect `json:"effect"`
}

// SideStart begins a side condition.
type SideStart struct {
	Side      Side   `json:"side"`
	Condition Effect `json:"condition"`
}

// SideEnd ends a side condition.
type SideEnd struct {
	Side      Side   `json:"side"`
	Condition Effect `json:"condition"`
	Of        Side   `json:"of,omitempty"`
}
