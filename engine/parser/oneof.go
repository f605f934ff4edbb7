package parser

import (
	"strings"

	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/inference"
	"github.com/showdown-ai/psbot/engine/possibility"
)

// Candidate is one hypothesis raced by OneOf or All.
type Candidate struct {
	Name   string
	Parser Parser
	// Reasons are all asserted if the candidate wins. If it loses their
	// conjunction is rejected.
	Reasons []inference.Reason
	// Certain marks a candidate whose first event must appear if its reasons
	// hold. When nothing accepts, only certain candidates are refuted.
	Certain bool
}

// Chosen is the result of a OneOf: the winning candidate and its own result.
type Chosen struct {
	Name   string
	Result any
}

func assertAll(rs []inference.Reason) error {
	for _, r := range rs {
		if err := r.Assert(); err != nil {
			return err
		}
	}
	return nil
}

// rejectAll refutes the conjunction of rs: at least one member is false.
func rejectAll(rs []inference.Reason) error {
	if len(rs) == 0 {
		return nil
	}
	return inference.And(rs...).Reject()
}

// ---------------------------------------------------------------------------
// OneOf
// ---------------------------------------------------------------------------

type oneOf struct {
	candidates []Candidate
	winner     *Candidate
}

// OneOf races candidates against the next event. Exactly zero or one may
// accept it; two acceptances are an AMBIGUOUS_ACCEPT fault. The winner's
// reasons are asserted, every loser's reasons rejected, and the winner then
// receives the following events until it finishes. With no acceptance the
// event is declined and the reasons of certain candidates are rejected.
func OneOf(candidates ...Candidate) Parser {
	return &oneOf{candidates: candidates}
}

func (o *oneOf) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	if o.winner != nil {
		out, err := o.winner.Parser.Advance(ctx, ev)
		if err != nil || out.Status != Done {
			return out, err
		}
		return Finish(Chosen{Name: o.winner.Name, Result: out.Result}), nil
	}

	var (
		win    = -1
		winOut Outcome
	)
	for i := range o.candidates {
		out, err := o.candidates[i].Parser.Advance(ctx, ev)
		if err != nil {
			return Decline, err
		}
		if !out.Accepted() {
			continue
		}
		if win >= 0 {
			return Decline, fault.New(fault.CodeAmbiguousAccept, "%s and %s both accepted %s",
				o.candidates[win].Name, o.candidates[i].Name, describe(ev))
		}
		win, winOut = i, out
	}

	if win < 0 {
		for _, c := range o.candidates {
			if !c.Certain {
				continue
			}
			if err := rejectAll(c.Reasons); err != nil {
				return Decline, err
			}
		}
		return Decline, nil
	}

	o.winner = &o.candidates[win]
	ctx.Log.WithField("candidate", o.winner.Name).Debug("hypothesis accepted")
	if err := assertAll(o.winner.Reasons); err != nil {
		return Decline, err
	}
	for i, c := range o.candidates {
		if i == win {
			continue
		}
		if err := rejectAll(c.Reasons); err != nil {
			return Decline, err
		}
	}
	if winOut.Status == Done {
		return Finish(Chosen{Name: o.winner.Name, Result: winOut.Result}), nil
	}
	return More, nil
}

func (o *oneOf) String() string {
	names := make([]string, len(o.candidates))
	for i, c := range o.candidates {
		names[i] = c.Name
	}
	return "oneOf(" + strings.Join(names, ", ") + ")"
}

// ---------------------------------------------------------------------------
// Infer
// ---------------------------------------------------------------------------

// Candidates builds one candidate per still-possible name of tr for which
// filter holds. Each candidate comes from build and is additionally tagged
// with the reason that tr's value is that name.
func Candidates[T any](label string, tr *possibility.Tracker[T], filter func(name string, v T) bool, build func(name string, v T) Candidate) []Candidate {
	names := tr.Filter(filter)
	cands := make([]Candidate, 0, len(names))
	for _, name := range names {
		v, _ := tr.Data(name)
		c := build(name, v)
		if c.Name == "" {
			c.Name = label + ":" + name
		}
		c.Reasons = append(c.Reasons, inference.Has(label, tr, name))
		cands = append(cands, c)
	}
	return cands
}

// Infer races the Candidates of tr in a OneOf.
func Infer[T any](label string, tr *possibility.Tracker[T], filter func(name string, v T) bool, build func(name string, v T) Candidate) Parser {
	return OneOf(Candidates(label, tr, filter, build)...)
}
