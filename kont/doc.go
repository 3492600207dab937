// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package kont provides the continuation-passing core that package command
// compiles every Command into and package core drives to completion.
//
// # Core Operations
//
// [Cont] is a computation that accepts a continuation and produces a final
// result. [Return] lifts a pure value; [Pure] is Return specialized to the
// [Resumed] answer type every Command shares. [Bind], [Map], and [Then]
// sequence continuations — the three ways command's compiler composes two
// Commands into one.
//
// # F-Bounded Operations
//
// Every capability Operation in package capability implements [Op], an
// F-bounded interface (the self-referencing constraint O Op[O, A]) that lets
// [Perform]'s caller fix the Operation's Output type A at the call site, so a
// mismatched Output is a compile error. [Phantom] is the zero-size type an
// Operation embeds to satisfy Op without writing OpResult by hand.
//
//	type Http struct{ kont.Phantom[HttpOutput]; Method, URL string }
//
// [Perform] emits an Operation and suspends the computation until the
// driving loop resumes it with the Operation's Output.
//
// # Stepping
//
// [Step] drives a Cont until it either completes or suspends on a Perform.
// A suspension is reported as a [*Suspension], not a callback: this is what
// lets core.Core step a computation forward one capability call at a time,
// handing control back to its own caller (the host event loop) between
// each one rather than running to completion synchronously.
//
//   - [Suspension.Op]: the capability Operation the computation is waiting on
//   - [Suspension.Resume]: feed the Operation's Output back in; panics on reuse
//   - [Suspension.TryResume]: non-panicking variant, for code that does not own the Suspension outright
//   - [Suspension.Discard]: abandon without resuming, releasing the pooled marker
//
// A [Suspension] is affine: Resume, TryResume, and Discard each consume it
// exactly once. Nil completion convention: a nil [Resumed] value means
// "completed with the zero value". command does not rely on this for "no
// event": its Maybe[E] zero case is a non-nil struct value carried as an
// ordinary completed A.
//
// # Example
//
//	type Ask[A any] struct{ kont.Phantom[A] }
//
//	comp := kont.Bind(
//		kont.Perform(Ask[int]{}),
//		func(x int) kont.Cont[kont.Resumed, int] {
//			return kont.Return[kont.Resumed](x * 2)
//		},
//	)
//
//	result, susp := kont.Step(comp)
//	for susp != nil {
//		result, susp = susp.Resume(21) // resumes Ask[int] with 21
//	}
//	// result == 42
package kont
