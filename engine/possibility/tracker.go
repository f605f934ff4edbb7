// Package possibility implements the candidate-set primitive used for every
// hidden attribute in the belief model.
//
// A Tracker holds one unknown value drawn from a fixed universe of named
// candidates. Narrowing is monotonic: once a candidate is removed it never
// comes back, and the live set can never become empty.
package possibility

import (
	"sort"
	"strings"

	"github.com/showdown-ai/psbot/engine/fault"
)

// Callback is invoked once when a watched condition becomes decidable.
// kept is true when the live set became a subset of the watched names and
// false when every watched name was removed.
type Callback func(kept bool) error

type listener struct {
	watched map[string]struct{}
	cb      Callback
	done    bool
}

// Tracker is a set of still-possible named candidates with associated data.
type Tracker[T any] struct {
	data      map[string]T
	possible  map[string]struct{}
	listeners []*listener
}

// New creates a tracker whose universe is every key of data.
func New[T any](data map[string]T) *Tracker[T] {
	t := &Tracker[T]{
		data:     make(map[string]T, len(data)),
		possible: make(map[string]struct{}, len(data)),
	}
	for name, v := range data {
		t.data[name] = v
		t.possible[name] = struct{}{}
	}
	return t
}

// Of creates a tracker over a subset of data's keys. Names missing from data
// are a fault, as is an empty name list.
func Of[T any](data map[string]T, names ...string) (*Tracker[T], error) {
	if len(names) == 0 {
		return nil, fault.New(fault.CodeEmptyCandidates, "tracker needs at least one candidate")
	}
	t := &Tracker[T]{
		data:     make(map[string]T, len(names)),
		possible: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		v, ok := data[name]
		if !ok {
			return nil, fault.New(fault.CodeUnknownData, "unknown candidate %q", name)
		}
		t.data[name] = v
		t.possible[name] = struct{}{}
	}
	return t, nil
}

// Definite creates a tracker that is already narrowed to a single value.
func Definite[T any](name string, v T) *Tracker[T] {
	return New(map[string]T{name: v})
}

// NarrowTo keeps only the named candidates.
// It fails without mutating anything if none of them are still possible.
func (t *Tracker[T]) NarrowTo(names ...string) error {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := t.possible[n]; ok {
			keep[n] = struct{}{}
		}
	}
	if len(keep) == 0 {
		return fault.New(fault.CodeEmptyCandidates, "narrow %v of %v", sortedCopy(names), t.Possible())
	}
	if len(keep) == len(t.possible) {
		return nil
	}
	t.possible = keep
	return t.notify()
}

// Remove excludes the named candidates.
// It fails without mutating anything if every live candidate would be removed.
func (t *Tracker[T]) Remove(names ...string) error {
	drop := 0
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := t.possible[n]; ok {
			drop++
		}
	}
	if drop == 0 {
		return nil
	}
	if drop == len(t.possible) {
		return fault.New(fault.CodeEmptyCandidates, "remove %v of %v", sortedCopy(names), t.Possible())
	}
	for n := range seen {
		delete(t.possible, n)
	}
	return t.notify()
}

// IsDefinite reports whether exactly one candidate remains.
func (t *Tracker[T]) IsDefinite() bool { return len(t.possible) == 1 }

// Definite returns the remaining candidate name once the tracker is definite.
func (t *Tracker[T]) Definite() (string, bool) {
	if len(t.possible) != 1 {
		return "", false
	}
	for n := range t.possible {
		return n, true
	}
	return "", false
}

// DefiniteValue returns the data of the remaining candidate once definite.
func (t *Tracker[T]) DefiniteValue() (T, bool) {
	name, ok := t.Definite()
	if !ok {
		var zero T
		return zero, false
	}
	return t.data[name], true
}

// Has reports whether name is still possible.
func (t *Tracker[T]) Has(name string) bool {
	_, ok := t.possible[name]
	return ok
}

// Size returns the number of live candidates.
func (t *Tracker[T]) Size() int { return len(t.possible) }

// Possible returns the live candidates in sorted order.
func (t *Tracker[T]) Possible() []string {
	out := make([]string, 0, len(t.possible))
	for n := range t.possible {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Data returns the static data for a candidate, live or not.
func (t *Tracker[T]) Data(name string) (T, bool) {
	v, ok := t.data[name]
	return v, ok
}

// Filter returns the sorted live candidates whose data satisfies pred.
func (t *Tracker[T]) Filter(pred func(name string, v T) bool) []string {
	var out []string
	for _, n := range t.Possible() {
		if pred(n, t.data[n]) {
			out = append(out, n)
		}
	}
	return out
}

// SubsetOf reports whether every live candidate is among names.
func (t *Tracker[T]) SubsetOf(names ...string) bool {
	set := toSet(names)
	for n := range t.possible {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

// Intersects reports whether any of names is still possible.
func (t *Tracker[T]) Intersects(names ...string) bool {
	for _, n := range names {
		if _, ok := t.possible[n]; ok {
			return true
		}
	}
	return false
}

// OnNarrow registers a one-shot callback for the watched names. If the
// condition is already decidable the callback runs immediately. The returned
// function deregisters the callback; calling it after it fired is a no-op.
func (t *Tracker[T]) OnNarrow(watched []string, cb Callback) (cancel func(), err error) {
	l := &listener{watched: toSet(watched), cb: cb}
	if kept, ok := t.decide(l); ok {
		l.done = true
		return func() {}, cb(kept)
	}
	t.listeners = append(t.listeners, l)
	return func() { l.done = true }, nil
}

// String renders the live set, e.g. "[drizzle drought]".
func (t *Tracker[T]) String() string {
	return "[" + strings.Join(t.Possible(), " ") + "]"
}

// decide evaluates a listener's condition against the live set.
func (t *Tracker[T]) decide(l *listener) (kept bool, ok bool) {
	subset, disjoint := true, true
	for n := range t.possible {
		if _, w := l.watched[n]; w {
			disjoint = false
		} else {
			subset = false
		}
	}
	switch {
	case subset:
		return true, true
	case disjoint:
		return false, true
	}
	return false, false
}

// notify fires every listener whose condition just became decidable and
// returns the first callback error. Every detached listener runs even after
// one fails. Listeners are detached before running so callbacks may mutate t
// again.
func (t *Tracker[T]) notify() error {
	var fire []*listener
	var kept []bool
	live := t.listeners[:0]
	for _, l := range t.listeners {
		if l.done {
			continue
		}
		if k, ok := t.decide(l); ok {
			l.done = true
			fire = append(fire, l)
			kept = append(kept, k)
			continue
		}
		live = append(live, l)
	}
	t.listeners = live
	var first error
	for i, l := range fire {
		if err := l.cb(kept[i]); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func sortedCopy(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
