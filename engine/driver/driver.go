// Package driver feeds a battle's event stream through the dispatchers one
// event at a time.
package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/showdown-ai/psbot/engine/dispatch"
	"github.com/showdown-ai/psbot/engine/event"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/engine/parser"
	"github.com/showdown-ai/psbot/engine/state"
)

// Driver routes each event to the active dispatcher, a new dispatcher, or the
// default handler. It is not safe for concurrent use.
type Driver struct {
	ctx    *parser.Context
	active parser.Parser
	err    error
	events int
}

// New creates a driver over battle. A nil log discards output.
func New(b *state.Battle, log logrus.FieldLogger) *Driver {
	return &Driver{ctx: parser.NewContext(b, log)}
}

// Battle returns the belief model being updated.
func (d *Driver) Battle() *state.Battle { return d.ctx.Battle }

// Events returns the number of events handled successfully.
func (d *Driver) Events() int { return d.events }

// Err returns the fault that aborted the battle, if any.
func (d *Driver) Err() error { return d.err }

// Handle processes one event. After the first error the driver is poisoned
// and returns that error for every later event.
func (d *Driver) Handle(ev event.Event) error {
	if d.err != nil {
		return d.err
	}
	if err := d.handle(ev); err != nil {
		d.err = err
		d.active = nil
		d.ctx.Log.WithError(err).WithField("code", fault.CodeOf(err)).Error("battle aborted")
		return err
	}
	d.events++
	return nil
}

// Flush ends the stream: the active dispatcher sees end-of-input, so any
// guaranteed effect it still waits for is refuted or faults.
func (d *Driver) Flush() error {
	if d.err != nil {
		return d.err
	}
	if d.active == nil {
		return nil
	}
	p := d.active
	d.active = nil
	if _, err := p.Advance(d.ctx, nil); err != nil {
		d.err = err
		d.ctx.Log.WithError(err).WithField("code", fault.CodeOf(err)).Error("battle aborted")
		return err
	}
	return nil
}

// Snapshot returns a deep copy of the current beliefs.
func (d *Driver) Snapshot() state.Snapshot { return d.ctx.Battle.Snapshot() }

func (d *Driver) handle(ev event.Event) error {
	if ev == nil {
		return fault.New(fault.CodeUnexpectedEvent, "nil event")
	}

	// Step 1: the dispatcher already running gets the first look.
	if d.active != nil {
		out, err := d.active.Advance(d.ctx, ev)
		if err != nil {
			return err
		}
		switch out.Status {
		case parser.Continue:
			return nil
		case parser.Done:
			d.active = nil
			return nil
		}
		d.active = nil
	}

	// Step 2: an initiating event starts a new dispatcher.
	p, err := dispatch.Start(d.ctx, ev)
	if err != nil {
		return err
	}
	if p != nil {
		out, err := p.Advance(d.ctx, ev)
		if err != nil {
			return err
		}
		if !out.Accepted() {
			return fault.New(fault.CodeInvalidState, "dispatcher for %s declined its own event", ev.Kind())
		}
		if out.Status == parser.Continue {
			d.active = p
		}
		return nil
	}

	// Step 3: everything else is applied directly.
	if err := dispatch.Handle(d.ctx, ev); err != nil {
		return fmt.Errorf("handle %s: %w", ev.Kind(), err)
	}
	return nil
}
