// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kont

import "sync"

// operationMarker is the suspension value Perform returns: it carries the
// Operation a Command wants to emit and the caller's own resume
// continuation. command's executor never allocates one directly — it
// only ever sees it through the effectSuspension interface, recognizing
// it structurally (see Suspension.Resume) so package command stays
// unaware of this pooling detail.
var operationMarkerPool = sync.Pool{
	New: func() any { return new(operationMarker) },
}

type operationMarker struct {
	op     Operation
	resume func(*operationMarker, Resumed) Resumed
	k      any // func(A) Resumed, type-erased until resumed
}

func (m *operationMarker) Op() Operation            { return m.op }
func (m *operationMarker) Resume(v Resumed) Resumed { return m.resume(m, v) }
func (m *operationMarker) release()                 { releaseMarker(m) }

func acquireMarker() *operationMarker {
	return operationMarkerPool.Get().(*operationMarker)
}

func releaseMarker(m *operationMarker) {
	m.op = nil
	m.resume = nil
	m.k = nil
	operationMarkerPool.Put(m)
}
