// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

// Operation is the runtime type every capability Operation in package
// capability is passed and stored as, once it has been lifted out of its
// concrete Op[O, A] type by Perform.
type Operation any

// Resumed is the runtime type flowing through suspension and resumption:
// command.Command[E] drives Cont[Resumed, Maybe[E]], and Suspension.Resume
// both accepts and returns it.
type Resumed any

// Op is the F-bounded interface every capability Operation in package
// capability implements: the self-referencing constraint O Op[O, A] lets
// Perform's caller (command.Effect) fix A — the Operation's Output type —
// at the call site, so a mismatched Output is a compile error rather than
// a runtime one.
//
// Example:
//
//	type Http struct{ kont.Phantom[HttpOutput]; Method, URL string }
type Op[O Op[O, A], A any] interface {
	OpResult() A // phantom type marker for result
}

// Phantom is an embeddable zero-size type that provides the [Op] result
// marker. Every capability Operation in package capability embeds
// Phantom[A] for its Output type A instead of writing OpResult by hand.
type Phantom[A any] struct{}

// OpResult implements the phantom type marker for [Op]. It is never
// actually called: Op's type parameter A is recovered at the type level,
// not by invoking this method.
func (Phantom[A]) OpResult() A { panic("phantom") }

// effectSuspension is the interface Suspension.Resume recognizes a
// pending Perform through; operationMarker (marker_pool.go) is the only
// implementation in this package.
type effectSuspension interface {
	Op() Operation
	Resume(Resumed) Resumed
	release()
}

// effectMarkerResume resumes a suspended Perform with a typed
// continuation, avoiding the closure allocation a direct func(A) Resumed
// literal would otherwise cost on every Perform call.
func effectMarkerResume[A any](m *operationMarker, v Resumed) Resumed {
	k := m.k.(func(A) Resumed)
	releaseMarker(m)
	return k(v.(A))
}

// Perform emits op and suspends the computation until the driving loop
// (kont.Step, see step.go) resumes it with op's Output. command's
// effectNode.compile calls this for every non-streaming capability
// Operation, and streamEffect calls it once to obtain the Suspension it
// immediately discards in favor of replaying its own stored callback.
func Perform[O Op[O, A], A any](op O) Cont[Resumed, A] {
	return func(k func(A) Resumed) Resumed {
		m := acquireMarker()
		m.op = op
		m.k = k
		m.resume = effectMarkerResume[A]
		return m
	}
}

// toResumed is the identity continuation Step and Suspension.Resume feed
// a Cont to reach its Resumed-typed result. A named generic function
// produces one static function value per instantiation, avoiding the
// heap allocation an anonymous closure would cost on every Step call.
func toResumed[A any](a A) Resumed { return a }
