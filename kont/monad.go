// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Bind, Map, and Then are the three ways command.Command[E] composes a
// Cont: command.effectNode.compile uses Bind to feed an Operation's
// Output into the builder's own continuation, command.mappedNode uses
// Map to transform a terminal Maybe[E] without touching any suspension,
// and command.thenNode uses Then to sequence two Commands while
// discarding the first's terminal value.

// Bind sequences two continuations: it runs m, then passes its result to
// f to obtain the continuation that produces the final value.
func Bind[R, A, B any](m Cont[R, A], f func(A) Cont[R, B]) Cont[R, B] {
	return func(k func(B) R) R {
		return m(func(a A) R {
			return f(a)(k)
		})
	}
}

// Map applies a pure function to a continuation's result without
// introducing a Return closure, the cheaper choice whenever the
// transformation performs no effect of its own.
func Map[R, A, B any](m Cont[R, A], f func(A) B) Cont[R, B] {
	return func(k func(B) R) R {
		return m(func(a A) R {
			return k(f(a))
		})
	}
}

// Then sequences two continuations, discarding the first's result. It is
// Bind with the transformation function fixed to "ignore a, return n",
// written directly to skip that closure.
func Then[R, A, B any](m Cont[R, A], n Cont[R, B]) Cont[R, B] {
	return func(k func(B) R) R {
		return m(func(_ A) R {
			return n(k)
		})
	}
}
