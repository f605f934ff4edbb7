package dex

import "github.com/showdown-ai/psbot/engine/fault"

// TypeChart maps attacking type to defending type to a damage multiplier.
// Pairs missing from the chart are neutral.
type TypeChart map[Type]map[Type]float64

// Multiplier returns the multiplier of one attacking type against one
// defending type.
func (c TypeChart) Multiplier(atk, def Type) float64 {
	if atk == Typeless || def == Typeless {
		return 1
	}
	if m, ok := c[atk][def]; ok {
		return m
	}
	return 1
}

// Effectiveness returns the product multiplier of atk against every
// defending type.
func (c TypeChart) Effectiveness(atk Type, defs ...Type) float64 {
	m := 1.0
	for _, d := range defs {
		m *= c.Multiplier(atk, d)
	}
	return m
}

// Immune reports whether def types are immune to atk.
func (c TypeChart) Immune(atk Type, defs ...Type) bool {
	return c.Effectiveness(atk, defs...) == 0
}

func (c TypeChart) validate() error {
	for atk, row := range c {
		if !known(atk) {
			return fault.New(fault.CodeUnknownData, "type chart: unknown attacking type %q", atk)
		}
		for def, m := range row {
			if !known(def) {
				return fault.New(fault.CodeUnknownData, "type chart: unknown defending type %q", def)
			}
			switch m {
			case 0, 0.5, 1, 2:
			default:
				return fault.New(fault.CodeUnknownData, "type chart: %s vs %s has multiplier %v", atk, def, m)
			}
		}
	}
	return nil
}

func known(t Type) bool {
	for _, a := range AllTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Effect buckets a multiplier the way the protocol reports it.
type Effect int8

const (
	EffectImmune Effect = iota
	EffectResisted
	EffectNeutral
	EffectSuper
)

func (e Effect) String() string {
	switch e {
	case EffectImmune:
		return "immune"
	case EffectResisted:
		return "resisted"
	case EffectSuper:
		return "super"
	default:
		return "neutral"
	}
}

// Bucket classifies a multiplier.
func Bucket(mult float64) Effect {
	switch {
	case mult == 0:
		return EffectImmune
	case mult < 1:
		return EffectResisted
	case mult > 1:
		return EffectSuper
	default:
		return EffectNeutral
	}
}
