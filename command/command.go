// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package command implements the Command algebra an Update function
// returns to describe side effects without performing them.
//
// A Command[E] is a small expression tree over four primitives (Done,
// Event, Effect, Then) plus one fan-out primitive (Concurrent) and one
// structural transform (Map). Each node knows how to compile itself into
// a kont.Cont[kont.Resumed, Maybe[E]] — the same continuation-passing
// shape kont already drives with Step/Suspension — so the executor in
// executor.go never has to special-case Done/Event/Effect/Then/Map at
// all; it only has to recognize the two things kont cannot express on its
// own: a batch of concurrently pending operations, and a streaming
// operation whose callback is replayed for every Output.
package command

import "code.hybscloud.com/substrate/kont"

// Maybe is the terminal value of every Command[E]: either no event
// (Nothing) or exactly one event to feed back into Update (Just).
//
// A plain E cannot serve this role: when E is an interface (the common
// shape for a tagged Event sum) a nil E is ambiguous with "produced no
// event", precisely the trap kont's own doc comments warn callers about
// for Resumed values. Maybe makes "no event" an explicit, non-nil value.
type Maybe[E any] struct {
	Valid bool
	Value E
}

// Just wraps e as a produced event.
func Just[E any](e E) Maybe[E] { return Maybe[E]{Valid: true, Value: e} }

// Nothing represents the absence of a produced event.
func Nothing[E any]() Maybe[E] { return Maybe[E]{} }

// node is the compiled representation every Command variant implements.
// Parameterizing the method by E (rather than switching on concrete
// node types in a free function) lets effectNode close over an arbitrary
// Operation/Output pair without command needing to know about it.
type node[E any] interface {
	compile() kont.Cont[kont.Resumed, Maybe[E]]
}

// Command describes, without performing, what an Update should do next.
type Command[E any] struct {
	node node[E]
}

type doneNode[E any] struct{}

func (doneNode[E]) compile() kont.Cont[kont.Resumed, Maybe[E]] {
	return kont.Pure(Nothing[E]())
}

// Done produces a Command that performs no effect and feeds no event back.
func Done[E any]() Command[E] {
	return Command[E]{node: doneNode[E]{}}
}

type eventNode[E any] struct{ event E }

func (n eventNode[E]) compile() kont.Cont[kont.Resumed, Maybe[E]] {
	return kont.Pure(Just(n.event))
}

// Event produces a Command that performs no effect and immediately feeds
// e back into Update, as if the Shell had resolved an instantaneous request.
func Event[E any](e E) Command[E] {
	return Command[E]{node: eventNode[E]{event: e}}
}

type effectNode[O kont.Op[O, A], A, E any] struct {
	op O
	k  func(A) Command[E]
}

// streamingOperation is implemented by capability Operations whose
// continuation the façade keeps registered across many Outputs instead of
// consuming it on the first one (capability.Sse, KV.ListPrefix,
// Time.Subscribe). command has no dependency on capability; the interface
// is satisfied structurally, the same way io.Writer is. Its method is
// exported because an unexported method name can only be implemented
// inside package command itself.
type streamingOperation interface{ IsStreamingOperation() }

// streamEffect wraps a streaming Operation together with its own
// callback so the executor can re-invoke that callback directly on every
// later Output (see streamSuspension/Resume in executor.go) instead of
// asking kont to resume the same Suspension twice, which it forbids.
// Like concurrentMarker, it rides kont.Perform purely to obtain a
// Suspension the executor recognizes by type and immediately Discards;
// kont itself never resumes it.
type streamEffect[O kont.Op[O, A], A, E any] struct {
	kont.Phantom[Maybe[E]]
	op O
	k  func(A) Command[E]
}

func (s streamEffect[O, A, E]) realOp() kont.Operation { return s.op }

func (s streamEffect[O, A, E]) replay(v kont.Resumed) Outcome[E] {
	a, _ := v.(A)
	return Run(s.k(a))
}

func (n effectNode[O, A, E]) compile() kont.Cont[kont.Resumed, Maybe[E]] {
	if _, ok := any(n.op).(streamingOperation); ok {
		return kont.Perform[streamEffect[O, A, E], Maybe[E]](streamEffect[O, A, E]{op: n.op, k: n.k})
	}
	return kont.Bind(kont.Perform[O, A](n.op), func(a A) kont.Cont[kont.Resumed, Maybe[E]] {
		return n.k(a).node.compile()
	})
}

// Effect performs a single capability Operation and continues with k once
// the Shell (or, for Event-only chains, another Command) supplies its
// Output. The Operation/Output pairing is checked at compile time through
// kont.Op's F-bounded constraint, so a mismatched Output type is a
// compile error, never a runtime one.
func Effect[O kont.Op[O, A], A, E any](op O, k func(A) Command[E]) Command[E] {
	return Command[E]{node: effectNode[O, A, E]{op: op, k: k}}
}

type thenNode[E any] struct{ first, second Command[E] }

func (n thenNode[E]) compile() kont.Cont[kont.Resumed, Maybe[E]] {
	return kont.Then(n.first.node.compile(), n.second.node.compile())
}

// Then runs c1 to completion, discards its terminal value, then runs c2.
// Any effects c1 performs are delivered to the Shell before any of c2's.
//
// Then's first argument must not itself be, or contain, a Concurrent
// Command: Concurrent has no single terminal value to discard, so a
// Concurrent appearing as c1 is treated as terminal — c2 never runs. See
// Concurrent's doc comment.
func Then[E any](c1, c2 Command[E]) Command[E] {
	return Command[E]{node: thenNode[E]{first: c1, second: c2}}
}

// concurrentMarker is a synthetic, never-delivered-to-the-Shell Operation
// that carries a Concurrent Command's children across the kont.Step
// boundary. The executor recognizes it by type before ever treating a
// suspension as a real capability Effect; see executor.go.
type concurrentMarker[E any] struct {
	kont.Phantom[Maybe[E]]
	children []Command[E]
}

type concurrentNode[E any] struct{ children []Command[E] }

func (n concurrentNode[E]) compile() kont.Cont[kont.Resumed, Maybe[E]] {
	return kont.Perform[concurrentMarker[E], Maybe[E]](concurrentMarker[E]{children: n.children})
}

// Concurrent runs every child independently; their effects are all
// emitted in one batch (in the order the children are listed, and
// within each child in that child's own emission order) and each child's
// resolution later resumes only that child's own branch.
//
// Concurrent is terminal: because its children progress independently and
// at different rates, there is no single point at which "the Concurrent
// command is done" that a following Command could meaningfully continue
// from. Use Concurrent as the last Command an Update returns for a given
// event, not as an intermediate step in a Then chain.
func Concurrent[E any](children []Command[E]) Command[E] {
	cs := make([]Command[E], len(children))
	copy(cs, children)
	return Command[E]{node: concurrentNode[E]{children: cs}}
}

type mappedNode[E, F any] struct {
	src Command[E]
	f   func(E) F
}

func (n mappedNode[E, F]) compile() kont.Cont[kont.Resumed, Maybe[F]] {
	return kont.Map(n.src.node.compile(), func(m Maybe[E]) Maybe[F] {
		if !m.Valid {
			return Nothing[F]()
		}
		return Just(n.f(m.Value))
	})
}

// Map transforms the terminal event of c with f, if any. It is generic
// over any pair of event types, not just a single Command[E]'s own E, so
// it can be used to adapt a sub-component's Command into a parent's
// Event sum (the standard "lift a child's commands into my own event
// type" pattern).
func Map[E, F any](c Command[E], f func(E) F) Command[F] {
	return Command[F]{node: mappedNode[E, F]{src: c, f: f}}
}
