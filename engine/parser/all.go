package parser

import (
	"strings"

	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
)

type all struct {
	strict  bool
	pending []Candidate
	running *Candidate
	results map[string]any
}

// All expects every candidate to appear, in any order. Each event goes to the
// running candidate first, then to the pending ones with exclusive acceptance;
// an accepted candidate's reasons are asserted and it runs to completion. The
// set is Done once every candidate has finished. An event no pending
// candidate accepts ends the set early: a strict set faults with
// MISSING_EVENT, a non-strict one rejects the reasons of its pending certain
// candidates and declines the event.
func All(strict bool, candidates ...Candidate) Parser {
	return &all{strict: strict, pending: candidates, results: make(map[string]any)}
}

func (a *all) Advance(ctx *Context, ev event.Event) (Outcome, error) {
	if a.running != nil {
		out, err := a.running.Parser.Advance(ctx, ev)
		if err != nil {
			return Decline, err
		}
		switch out.Status {
		case Continue:
			return More, nil
		case Done:
			a.results[a.running.Name] = out.Result
			a.running = nil
			return a.progress(), nil
		}
		a.running = nil
	}
	if len(a.pending) == 0 {
		return Decline, nil
	}

	win := -1
	var winOut Outcome
	for i := range a.pending {
		out, err := a.pending[i].Parser.Advance(ctx, ev)
		if err != nil {
			return Decline, err
		}
		if !out.Accepted() {
			continue
		}
		if win >= 0 {
			return Decline, fault.New(fault.CodeAmbiguousAccept, "%s and %s both accepted %s",
				a.pending[win].Name, a.pending[i].Name, describe(ev))
		}
		win, winOut = i, out
	}
	if win < 0 {
		return Decline, a.abandon(ev)
	}

	c := a.pending[win]
	a.pending = append(a.pending[:win:win], a.pending[win+1:]...)
	if err := assertAll(c.Reasons); err != nil {
		return Decline, err
	}
	if winOut.Status == Continue {
		a.running = &c
		return More, nil
	}
	a.results[c.Name] = winOut.Result
	return a.progress(), nil
}

func (a *all) progress() Outcome {
	if len(a.pending) == 0 && a.running == nil {
		return Finish(a.results)
	}
	return More
}

func (a *all) abandon(ev event.Event) error {
	if a.strict {
		names := make([]string, len(a.pending))
		for i, c := range a.pending {
			names[i] = c.Name
		}
		return fault.New(fault.CodeMissingEvent, "still expecting %s, got %s", strings.Join(names, ", "), describe(ev))
	}
	for _, c := range a.pending {
		if !c.Certain {
			continue
		}
		if err := rejectAll(c.Reasons); err != nil {
			return err
		}
	}
	a.pending = nil
	return nil
}
