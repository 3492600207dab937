// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"
)

// Emit serializes d as YAML, the interchange format the out-of-scope
// foreign-language generator consumes. yaml.Marshal walks d's struct
// fields in declaration order and its slices in slice order, so Emit adds
// no nondeterminism of its own on top of Builder.Build's already-ordered
// output.
func Emit(w io.Writer, d Descriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(d)
}

// Marshal is Emit into a fresh byte slice, for callers (e.g.
// cmd/substratectl) that want the bytes directly rather than an io.Writer.
func Marshal(d Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	if err := Emit(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
