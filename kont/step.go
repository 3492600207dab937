// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "sync/atomic"

// Suspension is what Step and Resume return in place of a final A: a
// paused Cont waiting on the Output of the Operation it reports through
// Op. command.executor holds onto one per in-flight capability call and
// feeds it the Operation's Output once core.Core's caller resolves the
// request the Operation was compiled into.
//
// A Suspension is affine: Resume, TryResume, and Discard each consume it
// exactly once. used enforces that with a single atomic bump rather than
// a mutex, since the affine contract means there is never contention to
// wait on — only a double-use bug to catch.
type Suspension[A any] struct {
	used atomic.Uintptr
	op   Operation
	cont effectSuspension
}

// Op returns the capability Operation this Suspension is waiting on.
func (s *Suspension[A]) Op() Operation { return s.op }

// Resume feeds v — the Operation's Output — back into the paused
// computation and drives it until it either completes with an A or
// suspends again on the next Perform. It panics if called more than
// once, since the continuation s.cont wraps has already been consumed.
func (s *Suspension[A]) Resume(v Resumed) (A, *Suspension[A]) {
	if s.used.Add(1) != 1 {
		panic("kont: suspension resumed twice")
	}
	return classifyResumed[A](s.cont.Resume(v))
}

// TryResume is Resume without the panic: it reports ok=false instead of
// panicking when the Suspension has already been consumed, for a caller
// that does not itself own the Suspension and must not crash on a
// double-resume it didn't cause.
func (s *Suspension[A]) TryResume(v Resumed) (a A, next *Suspension[A], ok bool) {
	if s.used.Add(1) != 1 {
		var zero A
		return zero, nil, false
	}
	a, next = classifyResumed[A](s.cont.Resume(v))
	return a, next, true
}

// Discard abandons a Suspension without resuming it, releasing the
// pooled marker backing it so it does not leak. command's Run/Resume call
// this on the synthetic Suspensions that carry a Concurrent batch or a
// streaming Operation, which are never resumed.
func (s *Suspension[A]) Discard() {
	if s.used.Add(1) != 1 {
		return
	}
	s.cont.release()
}

// Step drives m until it either produces a final A or suspends on a
// Perform. command.executor calls this once per Command to obtain the
// first Suspension (or terminal value) in a chain, and Suspension.Resume
// calls classifyResumed again internally after feeding an Operation's
// Output back in.
func Step[A any](m Cont[Resumed, A]) (A, *Suspension[A]) {
	return classifyResumed[A](m(toResumed[A]))
}

// classifyResumed tells a terminal Resumed value apart from one that is
// actually an effectSuspension in disguise: Perform returns a marker
// that satisfies effectSuspension, and everything else Step or Resume
// can observe is either nil (returned as the zero A) or a concrete A,
// such as command's Maybe[E], whose "no event" case is a non-nil value.
func classifyResumed[A any](result Resumed) (A, *Suspension[A]) {
	if s, ok := result.(effectSuspension); ok {
		var zero A
		return zero, &Suspension[A]{op: s.Op(), cont: s}
	}
	if result == nil {
		var zero A
		return zero, nil
	}
	return result.(A), nil
}
