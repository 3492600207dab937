// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package core implements the Shell-facing façade: a single-threaded,
// stateless-across-restarts runtime that owns one application's Model and
// drives its Update/Command/View cycle.
//
// Core exposes the serialized byte-in/byte-out FFI surface plus typed,
// non-serializing entry points for same-address-space hosts; the
// serialized path is the canonical contract, the typed path is a
// convenience for Go callers that skip the wire round trip.
package core

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"code.hybscloud.com/substrate/app"
	"code.hybscloud.com/substrate/capability"
	"code.hybscloud.com/substrate/command"
	"code.hybscloud.com/substrate/kont"
	"code.hybscloud.com/substrate/registry"
	"code.hybscloud.com/substrate/wire"
)

// ProtocolError reports a violation of the Shell/Core contract: a
// malformed event, an unknown request id, an undecodable Output, or
// reentrant use of a Core from inside one of its own calls. The Model is
// left exactly as it was before the call that produced the error.
type ProtocolError struct {
	Reason string
	Cause  error
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("core: protocol error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("core: protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// PanicError reports a panic recovered from user application code
// (Update, View, or an Effect continuation). The Model is left exactly as
// it was before the call that panicked: the façade always runs user code
// against a staged copy of the Model and only commits that copy back on
// successful, non-panicking return.
type PanicError struct {
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("core: recovered panic in application code: %v", e.Recovered)
}

// ErrReentrant is returned when ProcessEvent, Resolve, or View is called
// while another call into the same Core is already in progress.
var ErrReentrant = &ProtocolError{Reason: "reentrant call into Core"}

// ErrClosed is returned by any call made after Close.
var ErrClosed = &ProtocolError{Reason: "call on a closed Core"}

type pendingEntry[E any] struct {
	susp    *kont.Suspension[command.Maybe[E]]
	replay  func(kont.Resumed) command.Outcome[E]
	variant uint32
}

func (e pendingEntry[E]) pending() command.Pending[E] {
	return command.Pending[E]{Susp: e.susp, Replay: e.replay}
}

// Core owns one running application instance: its Model, its table of
// requests awaiting a Shell-supplied Output, and the codecs needed to
// cross the FFI boundary. Core takes no internal lock of its own; every
// entry point is guarded instead by a single re-entrancy flag, because a
// Core's only concurrency contract is "at most one call in flight at a
// time", not "safe for concurrent calls".
type Core[M, E, V any] struct {
	app    app.App[M, E, V]
	ecodec wire.Codec[E]
	vcodec wire.Codec[V]
	ocodec capability.OutputCodec

	model *M
	reg   *registry.Registry[pendingEntry[E]]

	reentrant atomic.Bool
	closed    atomic.Bool
}

// New constructs a Core for a, using ecodec/vcodec to cross the wire
// boundary for Events and ViewModels, and ocodec to translate the
// capability catalogue's Operations and Outputs. Pass
// capability.DefaultOutputCodec() for the built-in catalogue.
func New[M, E, V any](a app.App[M, E, V], ecodec wire.Codec[E], vcodec wire.Codec[V], ocodec capability.OutputCodec) *Core[M, E, V] {
	m := a.New()
	return &Core[M, E, V]{
		app:    a,
		ecodec: ecodec,
		vcodec: vcodec,
		ocodec: ocodec,
		model:  &m,
		reg:    registry.New[pendingEntry[E]](),
	}
}

func (c *Core[M, E, V]) enter() error {
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.reentrant.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	return nil
}

func (c *Core[M, E, V]) leave() { c.reentrant.Store(false) }

// Close marks the Core unusable. Every call after Close returns
// ErrClosed. Core holds no external resources of its own, so Close never
// fails; it exists so a Shell's lifecycle has a single, explicit place to
// release its reference to the Core.
func (c *Core[M, E, V]) Close() { c.closed.Store(true) }

// runUpdate runs Update against a staged copy of the Model, recovering
// any panic, and commits the copy back onto the real Model only if Update
// returns normally.
func (c *Core[M, E, V]) runUpdate(e E) (cmd command.Command[E], err error) {
	shadow := *c.model
	defer func() {
		if r := recover(); r != nil {
			cmd = command.Command[E]{}
			err = &PanicError{Recovered: r, Stack: debug.Stack()}
		}
	}()
	cmd = c.app.Update(e, &shadow)
	*c.model = shadow
	return cmd, nil
}

// drain runs outcome (and, transitively, everything it causes) to
// completion without the Shell's help: Render effects are delivered and
// immediately self-resumed, events are fed straight back into Update, and
// every remaining capability Operation is registered and collected into
// the batch the Shell must act on next.
//
// A streaming capability's continuation never reaches drain at all when
// it is merely continuing an already-open request: Resolve keeps that
// Pending's registry entry in place under its existing id instead of
// routing it back through here (see Resolve). Every Pending drain does
// see is therefore a genuinely new request the Shell must act on,
// including one a streaming continuation's own Outcome introduces
// alongside continuing its stream (e.g. a KV write triggered by a chunk).
func (c *Core[M, E, V]) drain(initial command.Outcome[E]) ([]wireEffect, error) {
	var effects []wireEffect
	queue := []command.Outcome[E]{initial}
	for len(queue) > 0 {
		outcome := queue[0]
		queue = queue[1:]

		for _, p := range outcome.Pending {
			eff, err := capability.ToEffect(p.Op)
			if err != nil {
				return nil, &ProtocolError{Reason: "classify effect", Cause: err}
			}
			if _, isRender := p.Op.(capability.Render); isRender {
				payload, err := c.ocodec.EncodeEffect(eff)
				if err != nil {
					return nil, &ProtocolError{Reason: "encode effect", Cause: err}
				}
				effects = append(effects, wireEffect{id: registry.ReservedID, payload: payload})
				queue = append(queue, command.Resume(p, struct{}{}))
				continue
			}
			entry := pendingEntry[E]{susp: p.Susp, replay: p.Replay, variant: eff.Variant}
			id := c.reg.Insert(entry)
			payload, err := c.ocodec.EncodeEffect(eff)
			if err != nil {
				return nil, &ProtocolError{Reason: "encode effect", Cause: err}
			}
			effects = append(effects, wireEffect{id: id, payload: payload})
		}

		for _, ev := range outcome.Events {
			cmd, perr := c.runUpdate(ev)
			if perr != nil {
				return nil, perr
			}
			queue = append(queue, command.Run(cmd))
		}
	}
	return effects, nil
}

// ProcessEvent decodes eventBytes, folds it into the Model via Update, and
// returns the encoded batch of requests the Shell must now act on.
func (c *Core[M, E, V]) ProcessEvent(eventBytes []byte) ([]byte, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	e, err := wire.Unmarshal(c.ecodec, eventBytes)
	if err != nil {
		return nil, &ProtocolError{Reason: "decode event", Cause: err}
	}
	cmd, perr := c.runUpdate(e)
	if perr != nil {
		return nil, perr
	}
	effects, err := c.drain(command.Run(cmd))
	if err != nil {
		return nil, err
	}
	return encodeEffects(effects)
}

// Resolve delivers the Shell's Output for request id, decoded from
// outputBytes, and returns the encoded batch of requests the Shell must
// now act on. Resolving an unknown or already-consumed id is a
// ProtocolError; the Model is left untouched.
//
// For a streaming capability's non-terminal Output, id's registry entry
// is left exactly as it was: the same continuation answers the next
// Output too, so there is nothing to re-register and nothing new to tell
// the Shell about beyond whatever Pending the continuation's own Outcome
// genuinely introduces (drained normally, as new requests). A terminal
// Output (or any Output for a non-streaming capability) consumes id.
func (c *Core[M, E, V]) Resolve(id uint32, outputBytes []byte) ([]byte, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	entry, err := c.reg.Peek(id)
	if err != nil {
		return nil, &ProtocolError{Reason: "resolve", Cause: err}
	}
	output, err := c.ocodec.DecodeOutput(entry.variant, outputBytes)
	if err != nil {
		return nil, &ProtocolError{Reason: "decode output", Cause: err}
	}

	_, terminal := output.(capability.Terminal)
	if !capability.IsStreaming(entry.variant) || terminal {
		if _, err := c.reg.Take(id); err != nil {
			return nil, &ProtocolError{Reason: "resolve", Cause: err}
		}
	}

	outcome := command.Resume(entry.pending(), output)
	effects, err := c.drain(outcome)
	if err != nil {
		return nil, err
	}
	return encodeEffects(effects)
}

// Cancel drops the outstanding request registered under id, per spec.md
// §4.3/§5's cancellation contract: a dropped Command's still-outstanding
// ids are removed from the registry, and any later Resolve against them
// yields a ProtocolError. Cancel does not run any of the continuation's
// own logic and performs no Model mutation; it is purely registry
// bookkeeping, matching how the registry's own Drop is documented.
//
// Cancelling id 0 (the reserved fire-and-forget id) or an id that does
// not reference a live continuation is a ProtocolError.
func (c *Core[M, E, V]) Cancel(id uint32) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	if err := c.reg.Drop(id); err != nil {
		return &ProtocolError{Reason: "cancel", Cause: err}
	}
	return nil
}

// View projects the current Model and returns its encoded ViewModel.
func (c *Core[M, E, V]) View() (out []byte, err error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &PanicError{Recovered: r, Stack: debug.Stack()}
		}
	}()

	vm := c.app.View(c.model)
	b, err := wire.Marshal(c.vcodec, vm)
	if err != nil {
		return nil, &ProtocolError{Reason: "encode view", Cause: err}
	}
	return b, nil
}

// ProcessEventTyped is ProcessEvent for same-address-space hosts that
// already hold a typed E, skipping the wire round trip. It discards the
// resulting Operation batch's wire encoding, not the batch itself: use
// ResolveTyped to drive those effects' continuations too.
func (c *Core[M, E, V]) ProcessEventTyped(e E) ([]command.Pending[E], error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	cmd, perr := c.runUpdate(e)
	if perr != nil {
		return nil, perr
	}
	return c.drainTyped(command.Run(cmd))
}

// ResolveTyped is Resolve for same-address-space hosts that already hold
// a typed capability Output value.
func (c *Core[M, E, V]) ResolveTyped(id uint32, output kont.Resumed) ([]command.Pending[E], error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	entry, err := c.reg.Peek(id)
	if err != nil {
		return nil, &ProtocolError{Reason: "resolve", Cause: err}
	}
	_, terminal := output.(capability.Terminal)
	if !capability.IsStreaming(entry.variant) || terminal {
		if _, err := c.reg.Take(id); err != nil {
			return nil, &ProtocolError{Reason: "resolve", Cause: err}
		}
	}
	return c.drainTyped(command.Resume(entry.pending(), output))
}

// ViewTyped is View for same-address-space hosts that want the ViewModel
// value directly instead of its wire encoding.
func (c *Core[M, E, V]) ViewTyped() (v V, err error) {
	if err := c.enter(); err != nil {
		return v, err
	}
	defer c.leave()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Recovered: r, Stack: debug.Stack()}
		}
	}()
	return c.app.View(c.model), nil
}

// drainTyped mirrors drain but returns the still-pending branches directly
// instead of encoding them, registering each in the registry exactly as
// drain does so a later ResolveTyped/Resolve call can find it by id. As in
// drain, a streaming continuation that is merely continuing an
// already-open request never reaches drainTyped: ResolveTyped leaves its
// registry entry untouched under its existing id instead of routing it
// back through here.
func (c *Core[M, E, V]) drainTyped(initial command.Outcome[E]) ([]command.Pending[E], error) {
	var out []command.Pending[E]
	queue := []command.Outcome[E]{initial}
	for len(queue) > 0 {
		outcome := queue[0]
		queue = queue[1:]

		for _, p := range outcome.Pending {
			eff, err := capability.ToEffect(p.Op)
			if err != nil {
				return nil, &ProtocolError{Reason: "classify effect", Cause: err}
			}
			if _, isRender := p.Op.(capability.Render); isRender {
				out = append(out, p)
				queue = append(queue, command.Resume(p, struct{}{}))
				continue
			}
			entry := pendingEntry[E]{susp: p.Susp, replay: p.Replay, variant: eff.Variant}
			c.reg.Insert(entry)
			out = append(out, p)
		}

		for _, ev := range outcome.Events {
			cmd, perr := c.runUpdate(ev)
			if perr != nil {
				return nil, perr
			}
			queue = append(queue, command.Run(cmd))
		}
	}
	return out, nil
}

type wireEffect struct {
	id      uint32
	payload []byte
}

// encodeEffects serializes a batch of requests as: a u64 count, then for
// each request a u32 id followed by a length-prefixed payload (whose
// first four bytes are themselves the capability.Effect variant tag, per
// OutputCodec.EncodeEffect).
func encodeEffects(effects []wireEffect) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	if err := e.Len(len(effects)); err != nil {
		return nil, err
	}
	for _, eff := range effects {
		if err := e.U32(eff.id); err != nil {
			return nil, err
		}
		if err := e.WriteBytes(eff.payload); err != nil {
			return nil, err
		}
	}
	return e.Take(), nil
}
