package state

import (
	"maps"
	"sort"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/fault"
)

// MoveSlot is one revealed move.
type MoveSlot struct {
	Move  *dex.Move
	PP    int
	MaxPP int
}

// Moveset tracks revealed moves and the candidates for the rest.
//
// Slots fill in reveal order. Unrevealed slots are constrained to Pool, and
// each hint says "at least one of these is in the moveset".
type Moveset struct {
	Size  int
	Moves []*MoveSlot
	pool  map[string]*dex.Move
	hints [][]string
}

// NewMoveset creates a moveset of size slots whose unrevealed slots may hold
// any move in pool.
func NewMoveset(size int, pool map[string]*dex.Move) *Moveset {
	m := &Moveset{Size: size, pool: make(map[string]*dex.Move, len(pool))}
	for id, mv := range pool {
		m.pool[id] = mv
	}
	return m
}

// Slot returns the revealed slot holding move id.
func (m *Moveset) Slot(id string) (*MoveSlot, bool) {
	id = dex.ID(id)
	for _, s := range m.Moves {
		if s.Move.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Pool returns the unrevealed candidates in sorted order.
func (m *Moveset) Pool() []string {
	out := make([]string, 0, len(m.pool))
	for id := range m.pool {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Hints returns a copy of the outstanding "at least one of" hints.
func (m *Moveset) Hints() [][]string {
	out := make([][]string, len(m.hints))
	for i, h := range m.hints {
		out[i] = append([]string(nil), h...)
	}
	return out
}

// CanHave reports whether move id is revealed or still possible.
func (m *Moveset) CanHave(id string) bool {
	id = dex.ID(id)
	if _, ok := m.Slot(id); ok {
		return true
	}
	_, ok := m.pool[id]
	return ok && m.free() > 0
}

func (m *Moveset) free() int { return m.Size - len(m.Moves) }

// Reveal records that the moveset contains mv and returns its slot.
func (m *Moveset) Reveal(mv *dex.Move) (*MoveSlot, error) {
	if s, ok := m.Slot(mv.ID); ok {
		return s, nil
	}
	if m.free() == 0 {
		return nil, fault.New(fault.CodeEmptyCandidates, "reveal %s: all %d move slots are known", mv.ID, m.Size)
	}
	if _, ok := m.pool[mv.ID]; !ok {
		return nil, fault.New(fault.CodeEmptyCandidates, "reveal %s: not among move candidates", mv.ID)
	}
	var s *MoveSlot
	if err := m.update(func() { s = m.fill(mv) }); err != nil {
		return nil, err
	}
	return s, nil
}

// update applies f and settles the result. If settling fails the moveset is
// restored to its state before f.
func (m *Moveset) update(f func()) error {
	moves := len(m.Moves)
	pool := maps.Clone(m.pool)
	hints := m.Hints()
	f()
	if err := m.settle(); err != nil {
		m.Moves = m.Moves[:moves]
		m.pool, m.hints = pool, hints
		return err
	}
	return nil
}

func (m *Moveset) fill(mv *dex.Move) *MoveSlot {
	s := &MoveSlot{Move: mv, PP: mv.PP, MaxPP: mv.PP}
	m.Moves = append(m.Moves, s)
	delete(m.pool, mv.ID)
	kept := m.hints[:0]
	for _, h := range m.hints {
		if !contains(h, mv.ID) {
			kept = append(kept, h)
		}
	}
	m.hints = kept
	return s
}

// RuleOut removes moves from the candidates. Ruling out a revealed move is
// a fault.
func (m *Moveset) RuleOut(ids ...string) error {
	for _, id := range ids {
		if _, ok := m.Slot(id); ok {
			return fault.New(fault.CodeEmptyCandidates, "rule out %s: move already revealed", dex.ID(id))
		}
	}
	return m.update(func() {
		for _, id := range ids {
			delete(m.pool, dex.ID(id))
		}
	})
}

// AddHint records that at least one of ids is in the moveset.
func (m *Moveset) AddHint(ids ...string) error {
	var live []string
	for _, id := range ids {
		id = dex.ID(id)
		if _, ok := m.Slot(id); ok {
			return nil
		}
		if _, ok := m.pool[id]; ok && !contains(live, id) {
			live = append(live, id)
		}
	}
	if len(live) == 0 || m.free() == 0 {
		return fault.New(fault.CodeEmptyCandidates, "hint %v: no candidate left", ids)
	}
	sort.Strings(live)
	return m.update(func() { m.hints = append(m.hints, live) })
}

// settle propagates constraints until nothing changes: hints lose ruled-out
// members, single-member hints are revealed, and a pool that exactly fits the
// free slots is revealed.
func (m *Moveset) settle() error {
	for {
		changed := false
		for i, h := range m.hints {
			live := h[:0:0]
			for _, id := range h {
				if _, ok := m.pool[id]; ok {
					live = append(live, id)
				}
			}
			if len(live) == 0 {
				return fault.New(fault.CodeEmptyCandidates, "hint %v has no candidate left", h)
			}
			m.hints[i] = live
		}
		for _, h := range m.hints {
			if len(h) == 1 {
				if m.free() == 0 {
					return fault.New(fault.CodeEmptyCandidates, "hint %v needs a free slot", h)
				}
				m.fill(m.pool[h[0]])
				changed = true
				break
			}
		}
		if !changed && len(m.pool) > 0 && len(m.pool) <= m.free() {
			for _, id := range m.Pool() {
				m.fill(m.pool[id])
			}
			changed = true
		}
		if !changed {
			return nil
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
