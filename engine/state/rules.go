package state

// Rules holds the fixed per-battle format settings.
type Rules struct {
	MaxTeamSize int // slots per team
	MaxMoves    int // move slots per Pokemon
	Gen         int
	MaxBoost    int // stat stage clamp
	ToxicSpikes int // max toxic spikes layers
	Spikes      int // max spikes layers
}

// DefaultRules returns the standard singles format.
func DefaultRules() Rules {
	return Rules{
		MaxTeamSize: 6,
		MaxMoves:    4,
		Gen:         9,
		MaxBoost:    6,
		ToxicSpikes: 2,
		Spikes:      3,
	}
}

// withDefaults fills unset fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.MaxTeamSize <= 0 {
		r.MaxTeamSize = d.MaxTeamSize
	}
	if r.MaxMoves <= 0 {
		r.MaxMoves = d.MaxMoves
	}
	if r.Gen <= 0 {
		r.Gen = d.Gen
	}
	if r.MaxBoost <= 0 {
		r.MaxBoost = d.MaxBoost
	}
	if r.ToxicSpikes <= 0 {
		r.ToxicSpikes = d.ToxicSpikes
	}
	if r.Spikes <= 0 {
		r.Spikes = d.Spikes
	}
	return r
}
