package inference

import (
	"strings"

	"github.com/showdown-ai/psbot/engine/fault"
)

// ---------------------------------------------------------------------------
// And
// ---------------------------------------------------------------------------

type andReason struct{ members []Reason }

// And returns a reason that holds iff every member holds.
//
// Assert asserts every member. Reject only commits once the culprit is
// identifiable: if exactly one member is still uncertain it is rejected
// immediately, otherwise the rejection is deferred until all but one member
// are known to hold, and that last one is rejected then. Reject never asserts
// a member.
func And(rs ...Reason) Reason {
	var flat []Reason
	for _, r := range rs {
		if a, ok := r.(*andReason); ok {
			flat = append(flat, a.members...)
			continue
		}
		flat = append(flat, r)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &andReason{members: flat}
}

func (a *andReason) CanHold() Truth {
	all := true
	for _, m := range a.members {
		switch m.CanHold() {
		case False:
			return False
		case Unknown:
			all = false
		}
	}
	if all {
		return True
	}
	return Unknown
}

func (a *andReason) Assert() error {
	for _, m := range a.members {
		if err := m.Assert(); err != nil {
			return err
		}
	}
	return nil
}

func (a *andReason) uncertain() []Reason {
	var out []Reason
	for _, m := range a.members {
		if m.CanHold() == Unknown {
			out = append(out, m)
		}
	}
	return out
}

func (a *andReason) Reject() error {
	switch a.CanHold() {
	case False:
		return nil
	case True:
		return fault.New(fault.CodeEmptyCandidates, "rejected %s but every member holds", a)
	}
	pending := a.uncertain()
	if len(pending) == 1 {
		return pending[0].Reject()
	}
	return a.deferReject(pending)
}

// deferReject waits for members to resolve until the one that must be false
// is identified.
func (a *andReason) deferReject(pending []Reason) error {
	done := false
	var cancels []func()
	stop := func() {
		done = true
		for _, c := range cancels {
			c()
		}
	}
	check := func(bool) error {
		if done {
			return nil
		}
		switch a.CanHold() {
		case False:
			stop()
			return nil
		case True:
			stop()
			return fault.New(fault.CodeEmptyCandidates, "deferred rejection of %s but every member holds", a)
		}
		if left := a.uncertain(); len(left) == 1 {
			stop()
			return left[0].Reject()
		}
		return nil
	}
	for _, m := range pending {
		if done {
			break
		}
		cancel, err := m.Delay(check)
		cancels = append(cancels, cancel)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *andReason) Delay(cb DelayFunc) (func(), error) {
	fired := false
	remaining := len(a.members)
	var cancels []func()
	cancelAll := func() {
		for _, c := range cancels {
			c()
		}
	}
	finish := func(held bool) error {
		if fired {
			return nil
		}
		fired = true
		cancelAll()
		return cb(held)
	}
	for _, m := range a.members {
		if fired {
			break
		}
		cancel, err := m.Delay(func(held bool) error {
			if !held {
				return finish(false)
			}
			remaining--
			if remaining == 0 {
				return finish(true)
			}
			return nil
		})
		cancels = append(cancels, cancel)
		if err != nil {
			return cancelAll, err
		}
	}
	return cancelAll, nil
}

func (a *andReason) String() string { return "and(" + join(a.members) + ")" }

// ---------------------------------------------------------------------------
// Or
// ---------------------------------------------------------------------------

type orReason struct {
	members []Reason
	dual    Reason // not(and(not(m)...))
}

// Or returns a reason that holds iff at least one member holds.
//
// Reject rejects every member. Assert mirrors And.Reject: a single remaining
// candidate is asserted immediately, several candidates defer the assertion
// until all but one have been refuted.
func Or(rs ...Reason) Reason {
	if len(rs) == 1 {
		return rs[0]
	}
	negated := make([]Reason, len(rs))
	for i, r := range rs {
		negated[i] = Not(r)
	}
	return &orReason{members: rs, dual: Not(And(negated...))}
}

func (o *orReason) CanHold() Truth                     { return o.dual.CanHold() }
func (o *orReason) Assert() error                      { return o.dual.Assert() }
func (o *orReason) Reject() error                      { return o.dual.Reject() }
func (o *orReason) Delay(cb DelayFunc) (func(), error) { return o.dual.Delay(cb) }
func (o *orReason) String() string                     { return "or(" + join(o.members) + ")" }

func join(rs []Reason) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
