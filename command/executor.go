// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import "code.hybscloud.com/substrate/kont"

// Pending is one branch of a Command still awaiting a Shell-supplied
// Output. Op is the capability Operation the façade must translate to
// wire bytes and hand to the Shell.
//
// Exactly one of Susp and Replay is set. Susp is a one-shot kont
// continuation: Resume must advance it via Susp, and the façade must
// discard it (Take) once resolved. Replay is set instead for a streaming
// capability's continuation (see streamEffect): calling it re-invokes the
// builder's own callback directly and returns a fresh Outcome, so the
// façade can call it again for every later Output under the very same
// request id without asking kont to resume anything twice.
type Pending[E any] struct {
	Op     kont.Operation
	Susp   *kont.Suspension[Maybe[E]]
	Replay func(kont.Resumed) Outcome[E]
}

// Outcome is everything a Command produced without the Shell's help: zero
// or more events to feed straight back into Update (in order), and zero
// or more effects still awaiting resolution (in emission order).
type Outcome[E any] struct {
	Events  []E
	Pending []Pending[E]
}

func (o *Outcome[E]) absorb(other Outcome[E]) {
	o.Events = append(o.Events, other.Events...)
	o.Pending = append(o.Pending, other.Pending...)
}

// streamSuspension is implemented by streamEffect[O,A,E] (command.go):
// Run/Resume recognize a suspension's Op through this interface, the same
// way they recognize concurrentMarker, to unwrap it into a Replay-bearing
// Pending instead of a one-shot Susp-bearing one.
type streamSuspension[E any] interface {
	realOp() kont.Operation
	replay(kont.Resumed) Outcome[E]
}

// Run drives c as far as it can go without Shell input: every leaf is
// stepped to its first suspension (or completion), Concurrent batches are
// expanded in place, and a streaming Effect's Perform is immediately
// unwrapped into a Replay-bearing Pending (see streamEffect) — so the
// result is always a flat, ordered Outcome.
func Run[E any](c Command[E]) Outcome[E] {
	var out Outcome[E]
	value, susp := kont.Step(c.node.compile())
	if susp == nil {
		if value.Valid {
			out.Events = append(out.Events, value.Value)
		}
		return out
	}
	if marker, ok := susp.Op().(concurrentMarker[E]); ok {
		susp.Discard()
		for _, child := range marker.children {
			out.absorb(Run(child))
		}
		return out
	}
	if se, ok := susp.Op().(streamSuspension[E]); ok {
		susp.Discard()
		out.Pending = append(out.Pending, Pending[E]{Op: se.realOp(), Replay: se.replay})
		return out
	}
	out.Pending = append(out.Pending, Pending[E]{Op: susp.Op(), Susp: susp})
	return out
}

// Resume continues a single pending branch after the Shell (or a resolved
// sibling capability) supplies v for it. If p is a streaming continuation
// (p.Replay != nil), v is handed straight to the builder's own callback
// instead of resuming a kont.Suspension — the same continuation this way
// really is invoked many times, as spec.md §3 describes, rather than a
// freshly performed Operation standing in for it each round.
func Resume[E any](p Pending[E], v kont.Resumed) Outcome[E] {
	if p.Replay != nil {
		return p.Replay(v)
	}
	var out Outcome[E]
	value, next := p.Susp.Resume(v)
	if next == nil {
		if value.Valid {
			out.Events = append(out.Events, value.Value)
		}
		return out
	}
	if marker, ok := next.Op().(concurrentMarker[E]); ok {
		next.Discard()
		for _, child := range marker.children {
			out.absorb(Run(child))
		}
		return out
	}
	if se, ok := next.Op().(streamSuspension[E]); ok {
		next.Discard()
		out.Pending = append(out.Pending, Pending[E]{Op: se.realOp(), Replay: se.replay})
		return out
	}
	out.Pending = append(out.Pending, Pending[E]{Op: next.Op(), Susp: next})
	return out
}
