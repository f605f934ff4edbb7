package dex

import "strings"

// Type is an elemental type name in ID form (e.g. "fire").
type Type string

// The eighteen types.
const (
	Normal   Type = "normal"
	Fire     Type = "fire"
	Water    Type = "water"
	Electric Type = "electric"
	Grass    Type = "grass"
	Ice      Type = "ice"
	Fighting Type = "fighting"
	Poison   Type = "poison"
	Ground   Type = "ground"
	Flying   Type = "flying"
	Psychic  Type = "psychic"
	Bug      Type = "bug"
	Rock     Type = "rock"
	Ghost    Type = "ghost"
	Dragon   Type = "dragon"
	Dark     Type = "dark"
	Steel    Type = "steel"
	Fairy    Type = "fairy"
	// Typeless is used for moves like Struggle and for cleared types.
	Typeless Type = "???"
)

// AllTypes lists every real type in chart order.
var AllTypes = []Type{
	Normal, Fire, Water, Electric, Grass, Ice, Fighting, Poison, Ground,
	Flying, Psychic, Bug, Rock, Ghost, Dragon, Dark, Steel, Fairy,
}

// Category is a move's damage category.
type Category string

const (
	Physical Category = "physical"
	Special  Category = "special"
	Status   Category = "status"
)

// Stat is a boostable stat.
type Stat string

const (
	Atk      Stat = "atk"
	Def      Stat = "def"
	SpA      Stat = "spa"
	SpD      Stat = "spd"
	Spe      Stat = "spe"
	Accuracy Stat = "accuracy"
	Evasion  Stat = "evasion"
)

// BoostStats lists the boostable stats in protocol order.
var BoostStats = []Stat{Atk, Def, SpA, SpD, Spe, Accuracy, Evasion}

// StatIndex returns the position of s in BoostStats, or -1.
func StatIndex(s Stat) int {
	for i, b := range BoostStats {
		if b == s {
			return i
		}
	}
	return -1
}

// MajorStatus is a non-volatile status condition.
type MajorStatus string

const (
	NoStatus  MajorStatus = ""
	Burn      MajorStatus = "brn"
	Freeze    MajorStatus = "frz"
	Paralysis MajorStatus = "par"
	Poisoned  MajorStatus = "psn"
	Toxic     MajorStatus = "tox"
	Sleep     MajorStatus = "slp"
)

// Weather kinds in protocol spelling.
const (
	WeatherNone = "none"
	RainDance   = "RainDance"
	SunnyDay    = "SunnyDay"
	Sandstorm   = "Sandstorm"
	Snow        = "Snow"
)

// Target describes who a move affects.
type Target string

const (
	TargetNormal Target = "normal"
	TargetSelf   Target = "self"
	TargetAll    Target = "all"     // whole field
	TargetFoe    Target = "foeside" // opposing side
	TargetAlly   Target = "allyside"
)

// Fraction is a numerator/denominator pair such as [1,4].
type Fraction [2]int

// Zero reports whether the fraction is unset.
func (f Fraction) Zero() bool { return f[1] == 0 }

// Of applies the fraction to n, rounding down with a minimum of 1.
func (f Fraction) Of(n int) int {
	if f.Zero() || n <= 0 {
		return 0
	}
	v := n * f[0] / f[1]
	if v < 1 {
		v = 1
	}
	return v
}

// ID normalises a display name to its lookup key: lowercase alphanumerics only.
func ID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
