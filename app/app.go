// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package app declares the three functions a user application supplies to
// a Core: how to construct its initial Model, how to fold an Event into
// that Model (producing a Command describing any side effects), and how
// to project the Model into a ViewModel.
package app

import "code.hybscloud.com/substrate/command"

// Update folds an incoming Event into the Model m, mutating it in place,
// and returns a Command describing any effects that should run as a
// result. Update must be a pure function of its arguments: it may mutate
// *m, but it must never perform I/O itself — that is exactly what the
// returned Command is for.
type Update[M, E any] func(e E, m *M) command.Command[E]

// View projects the current Model into a ViewModel. Like Update, View
// must be pure: no I/O, no hidden state.
type View[M, V any] func(m *M) V

// App bundles the three functions a Core needs to run a user application.
type App[M, E, V any] struct {
	// New constructs the initial Model.
	New func() M
	// Update is the application's event fold.
	Update Update[M, E]
	// View projects the current Model for rendering.
	View View[M, V]
}
