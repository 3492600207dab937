// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capability_test

import (
	"testing"

	"code.hybscloud.com/substrate/wire"
)

// testEncoder is a thin helper so capability_test can hand-build the raw
// Output bytes a Shell would send back, without re-implementing the
// capability package's internal wire tags.
type testEncoder struct {
	t *testing.T
	e *wire.Encoder
}

func newTestEncoder(t *testing.T) *testEncoder {
	t.Helper()
	return &testEncoder{t: t, e: wire.NewEncoder()}
}

func (e *testEncoder) string(s string) {
	e.t.Helper()
	if err := e.e.String(s); err != nil {
		e.t.Fatalf("encode string: %v", err)
	}
}

func (e *testEncoder) variant(v uint32) {
	e.t.Helper()
	if err := e.e.Variant(v); err != nil {
		e.t.Fatalf("encode variant: %v", err)
	}
}

func (e *testEncoder) bytes() []byte { return append([]byte(nil), e.e.Bytes()...) }

func (e *testEncoder) release() { e.e.Release() }
