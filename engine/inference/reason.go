// Package inference implements deferred logical facts ("reasons") used to
// justify narrowing hidden attributes before the narrowing is committed.
//
// A Reason can be asserted (commit the "true" narrowing), rejected (commit
// the "false" narrowing) or delayed (be told once, later, whether it held).
// Reasons compose with And, Or and Not so that a hypothesis depending on
// several hidden attributes can be committed or refuted atomically.
package inference

import (
	"fmt"
	"strings"

	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/possibility"
)

// Truth is the three-valued answer to "does this reason hold right now".
type Truth int8

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// DelayFunc receives the eventual truth of a delayed reason.
type DelayFunc func(held bool) error

// Reason is one still-undetermined logical fact.
type Reason interface {
	// CanHold reports what is already known about the reason.
	CanHold() Truth
	// Assert commits the narrowing implied by the reason being true.
	Assert() error
	// Reject commits the narrowing implied by the reason being false.
	Reject() error
	// Delay registers cb to be called once when the truth becomes known.
	// If it is already known cb runs before Delay returns.
	Delay(cb DelayFunc) (cancel func(), err error)
	String() string
}

func noop() {}

// ---------------------------------------------------------------------------
// Tracker-backed reasons
// ---------------------------------------------------------------------------

type hasReason[T any] struct {
	label   string
	tracker *possibility.Tracker[T]
	names   []string
}

// Has returns a reason that holds iff the tracker's value is one of names.
// Assert narrows the tracker to names, Reject removes them.
func Has[T any](label string, tr *possibility.Tracker[T], names ...string) Reason {
	return &hasReason[T]{label: label, tracker: tr, names: append([]string(nil), names...)}
}

func (r *hasReason[T]) CanHold() Truth {
	switch {
	case r.tracker.SubsetOf(r.names...):
		return True
	case !r.tracker.Intersects(r.names...):
		return False
	}
	return Unknown
}

func (r *hasReason[T]) Assert() error {
	if err := r.tracker.NarrowTo(r.names...); err != nil {
		return fmt.Errorf("assert %s: %w", r, err)
	}
	return nil
}

func (r *hasReason[T]) Reject() error {
	if err := r.tracker.Remove(r.names...); err != nil {
		return fmt.Errorf("reject %s: %w", r, err)
	}
	return nil
}

func (r *hasReason[T]) Delay(cb DelayFunc) (func(), error) {
	return r.tracker.OnNarrow(r.names, possibility.Callback(cb))
}

func (r *hasReason[T]) String() string {
	return fmt.Sprintf("%s in {%s}", r.label, strings.Join(r.names, ","))
}

// ---------------------------------------------------------------------------
// Constant and chance reasons
// ---------------------------------------------------------------------------

type constReason bool

// Const returns a reason whose truth is already known.
// Asserting a false constant or rejecting a true one is a fault.
func Const(held bool) Reason { return constReason(held) }

func (c constReason) CanHold() Truth {
	if c {
		return True
	}
	return False
}

func (c constReason) Assert() error {
	if !c {
		return fault.New(fault.CodeEmptyCandidates, "asserted a reason known to be false")
	}
	return nil
}

func (c constReason) Reject() error {
	if c {
		return fault.New(fault.CodeEmptyCandidates, "rejected a reason known to be true")
	}
	return nil
}

func (c constReason) Delay(cb DelayFunc) (func(), error) { return noop, cb(bool(c)) }

func (c constReason) String() string { return fmt.Sprintf("%t", bool(c)) }

type chanceReason string

// Chance returns a reason for an outcome decided by randomness. It carries no
// information: asserting or rejecting it narrows nothing and it never resolves.
func Chance(desc string) Reason { return chanceReason(desc) }

func (chanceReason) CanHold() Truth                  { return Unknown }
func (chanceReason) Assert() error                   { return nil }
func (chanceReason) Reject() error                   { return nil }
func (chanceReason) Delay(DelayFunc) (func(), error) { return noop, nil }
func (c chanceReason) String() string                { return "chance(" + string(c) + ")" }

// ---------------------------------------------------------------------------
// Not
// ---------------------------------------------------------------------------

type notReason struct{ inner Reason }

// Not returns the negation of r.
func Not(r Reason) Reason {
	if n, ok := r.(notReason); ok {
		return n.inner
	}
	return notReason{inner: r}
}

func (n notReason) CanHold() Truth {
	switch n.inner.CanHold() {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

func (n notReason) Assert() error { return n.inner.Reject() }
func (n notReason) Reject() error { return n.inner.Assert() }

func (n notReason) Delay(cb DelayFunc) (func(), error) {
	return n.inner.Delay(func(held bool) error { return cb(!held) })
}

func (n notReason) String() string { return "not(" + n.inner.String() + ")" }
