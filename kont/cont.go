// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Cont[R, A] is a continuation-passing computation: it accepts a
// continuation k of type func(A) R — "the rest of the computation" — and
// produces the final result R by applying k to the value it computes.
//
// command.Command[E] compiles into Cont[Resumed, Maybe[E]]: R is fixed to
// Resumed, the type every Perform suspension and every completed value
// shares, so a driving loop (Step) can tell the two apart without ever
// knowing E.
type Cont[R, A any] func(k func(A) R) R

// Return lifts a pure value into the continuation monad: the resulting
// computation immediately passes a to its continuation without suspending.
func Return[R, A any](a A) Cont[R, A] {
	return func(k func(A) R) R {
		return k(a)
	}
}

// Pure lifts a value into an effectful computation that performs no
// effect. It is what command.Done and command.Event compile down to.
func Pure[A any](a A) Cont[Resumed, A] {
	return Return[Resumed](a)
}
