// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry implements the slab-backed mapping from a 32-bit
// request id to a pending continuation.
//
// The allocation discipline mirrors kont's marker_pool.go: a slot
// is acquired from a free list (or the slab grows by one), zeroed on
// release, and pushed back onto the free list head. Unlike kont's pools,
// slots here are addressed by a stable numeric id rather than handed back
// as a pointer, because that id is the only thing that crosses the wire
// to the Shell and back.
//
// The registry takes no internal lock. Per the core façade's contract
// (every entry point runs to completion before the next begins, and the
// core performs no I/O and spawns no goroutines of its own) every call
// into a Registry is already serialized by the caller; adding a mutex
// here would only hide a façade-level re-entrancy bug behind a false
// sense of safety.
package registry

import "fmt"

// ReservedID is never allocated by Insert and never valid as an argument
// to Take, Peek, or Drop. The façade uses it to mark fire-and-forget
// effects (e.g. Render) that carry no continuation.
const ReservedID uint32 = 0

// ErrReservedID is returned when a caller asks to resolve the reserved id.
var ErrReservedID = fmt.Errorf("registry: id %d is reserved for fire-and-forget effects", ReservedID)

// UnknownIDError reports that id does not reference a live continuation.
// Per spec, this is a fatal protocol violation from the Shell's point of
// view: the registry and Model are left untouched.
type UnknownIDError struct{ ID uint32 }

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("registry: unknown request id %d", e.ID)
}

type slot[C any] struct {
	cont     C
	occupied bool
	nextFree int
}

// Registry maps request ids to continuations of type C. C is left
// abstract on purpose: the façade instantiates it with a type-erased
// continuation handle (see package core) so that capabilities with
// different Output shapes can share one registry per running Core.
type Registry[C any] struct {
	slots    []slot[C]
	freeHead int
	inFlight int
}

// New constructs an empty Registry.
func New[C any]() *Registry[C] {
	return &Registry[C]{freeHead: -1}
}

// Insert stores c under a freshly allocated id and returns that id. Ids
// are drawn from the free list before the slab grows, so steady-state
// allocation is O(1) amortized and memory is proportional to peak
// in-flight requests, never to total requests ever issued.
func (r *Registry[C]) Insert(c C) uint32 {
	r.inFlight++
	if r.freeHead >= 0 {
		idx := r.freeHead
		r.freeHead = r.slots[idx].nextFree
		r.slots[idx] = slot[C]{cont: c, occupied: true}
		return uint32(idx) + 1
	}
	r.slots = append(r.slots, slot[C]{cont: c, occupied: true})
	return uint32(len(r.slots))
}

func (r *Registry[C]) index(id uint32) (int, error) {
	if id == ReservedID {
		return 0, ErrReservedID
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(r.slots) || !r.slots[idx].occupied {
		return 0, &UnknownIDError{ID: id}
	}
	return idx, nil
}

// Take removes and returns the continuation registered under id
// (one-shot consumption).
func (r *Registry[C]) Take(id uint32) (C, error) {
	idx, err := r.index(id)
	if err != nil {
		var zero C
		return zero, err
	}
	c := r.slots[idx].cont
	r.release(idx)
	return c, nil
}

// Peek returns the continuation registered under id without removing it,
// for streaming operations that expect further Outputs under the same id.
func (r *Registry[C]) Peek(id uint32) (C, error) {
	idx, err := r.index(id)
	if err != nil {
		var zero C
		return zero, err
	}
	return r.slots[idx].cont, nil
}

// Drop explicitly discards the continuation registered under id, used on
// a streaming terminal Output or on Command cancellation. A subsequent
// Take/Peek/Drop on the same id fails with UnknownIDError.
func (r *Registry[C]) Drop(id uint32) error {
	idx, err := r.index(id)
	if err != nil {
		return err
	}
	r.release(idx)
	return nil
}

func (r *Registry[C]) release(idx int) {
	r.slots[idx] = slot[C]{nextFree: r.freeHead}
	r.freeHead = idx
	r.inFlight--
}

// InFlight reports the number of ids currently outstanding.
func (r *Registry[C]) InFlight() int { return r.inFlight }
