// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the deterministic binary codec used for every
// value crossing the Shell/Core FFI boundary.
//
// Encoding is little-endian, length-prefixed, and variant-index-tagged:
// integers are fixed width, lengths and variant indices are unsigned,
// strings are length-prefixed UTF-8, and tagged sums are a u32 variant
// index followed by the variant's payload. The format is deliberately
// self-describing only via the separately emitted codegen descriptor
// (package codegen); two encoders/decoders built from mismatched type
// definitions will desync silently, which is a caller error, not a codec
// bug.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
)

// DefaultMaxDepth bounds nested container encode/decode depth. Exceeding it
// is an encode or decode error rather than a stack overflow.
const DefaultMaxDepth = 64

// EncodeError is returned by Encoder methods. The defined causes are
// exceeding the configured container depth and a string that is not valid
// UTF-8; it exists as a distinct type so callers can distinguish it from
// I/O-shaped errors without one.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string { return "wire: encode: " + e.Reason }

// DecodeError is returned by Decoder methods: truncated input, trailing
// bytes, an unknown variant index, invalid UTF-8, or depth overrun.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "wire: decode: " + e.Reason }

var errTrailingBytes = &DecodeError{Reason: "trailing bytes after decode"}

// Encoder accumulates a deterministic byte encoding into a pooled buffer.
// The zero value is not usable; construct with NewEncoder.
type Encoder struct {
	buf      *bytebufferpool.ByteBuffer
	depth    int
	maxDepth int
}

// NewEncoder acquires a pooled buffer and returns an Encoder ready to use.
// Callers must call Release when done to return the buffer to the pool.
func NewEncoder() *Encoder {
	return &Encoder{buf: bytebufferpool.Get(), maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the container depth limit. Must be called before
// any Push.
func (e *Encoder) WithMaxDepth(d int) *Encoder {
	e.maxDepth = d
	return e
}

// Release returns the underlying buffer to the pool. The Encoder must not
// be used afterward.
func (e *Encoder) Release() {
	bytebufferpool.Put(e.buf)
	e.buf = nil
}

// Bytes returns the bytes encoded so far. The slice is only valid until
// Release.
func (e *Encoder) Bytes() []byte { return e.buf.B }

// Take copies out and returns the encoded bytes, then releases the buffer.
func (e *Encoder) Take() []byte {
	out := make([]byte, len(e.buf.B))
	copy(out, e.buf.B)
	e.Release()
	return out
}

// Push enters a nested container (sequence element, optional payload,
// variant payload, struct field). Returns an EncodeError if the configured
// max depth would be exceeded.
func (e *Encoder) Push() error {
	if e.depth >= e.maxDepth {
		return &EncodeError{Reason: fmt.Sprintf("container depth exceeds max %d", e.maxDepth)}
	}
	e.depth++
	return nil
}

// Pop leaves a nested container entered via Push.
func (e *Encoder) Pop() { e.depth-- }

func (e *Encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// Bool writes a single 0/1 byte.
func (e *Encoder) Bool(v bool) error {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
	return nil
}

// U8 writes an unsigned 8-bit integer.
func (e *Encoder) U8(v uint8) error {
	e.buf.WriteByte(v)
	return nil
}

// U16 writes a little-endian unsigned 16-bit integer.
func (e *Encoder) U16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
	return nil
}

// U32 writes a little-endian unsigned 32-bit integer.
func (e *Encoder) U32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
	return nil
}

// U64 writes a little-endian unsigned 64-bit integer.
func (e *Encoder) U64(v uint64) error {
	e.u64(v)
	return nil
}

// I8/I16/I32/I64 write little-endian two's-complement signed integers of
// the given width.
func (e *Encoder) I8(v int8) error   { return e.U8(uint8(v)) }
func (e *Encoder) I16(v int16) error { return e.U16(uint16(v)) }
func (e *Encoder) I32(v int32) error { return e.U32(uint32(v)) }
func (e *Encoder) I64(v int64) error { return e.U64(uint64(v)) }

// F32/F64 write IEEE-754 floats bit-for-bit, little-endian.
func (e *Encoder) F32(v float32) error {
	return e.U32(math.Float32bits(v))
}
func (e *Encoder) F64(v float64) error {
	return e.U64(math.Float64bits(v))
}

// Len writes a length prefix as an unsigned 64-bit integer, per §4.1.
func (e *Encoder) Len(n int) error {
	e.u64(uint64(n))
	return nil
}

// WriteBytes writes a length-prefixed raw byte buffer.
func (e *Encoder) WriteBytes(b []byte) error {
	if err := e.Len(len(b)); err != nil {
		return err
	}
	e.buf.Write(b)
	return nil
}

// String writes a length-prefixed UTF-8 string. Invalid UTF-8 input is
// rejected at encode time too, even though spec.md only requires decode
// to reject it: a wire-level invariant should not depend on which side
// produced the bad value.
func (e *Encoder) String(s string) error {
	if !utf8.ValidString(s) {
		return &EncodeError{Reason: "string is not valid UTF-8"}
	}
	return e.WriteBytes([]byte(s))
}

// Variant writes a tagged-sum discriminant as an unsigned 32-bit integer.
func (e *Encoder) Variant(index uint32) error { return e.U32(index) }

// OptionPresence writes the one-byte presence tag for Optional values.
func (e *Encoder) OptionPresence(present bool) error { return e.Bool(present) }

// Decoder reads a deterministic byte encoding produced by Encoder.
type Decoder struct {
	b        []byte
	off      int
	depth    int
	maxDepth int
}

// NewDecoder wraps b for decoding. b is not copied; callers must not
// mutate it while decoding is in progress.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the container depth limit. Must be called before
// any Push.
func (d *Decoder) WithMaxDepth(n int) *Decoder {
	d.maxDepth = n
	return d
}

// Remaining reports how many undecoded bytes remain.
func (d *Decoder) Remaining() int { return len(d.b) - d.off }

// Finish fails if any bytes remain undecoded. Call after decoding the
// top-level value.
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return errTrailingBytes
	}
	return nil
}

// Push enters a nested container; mirrors Encoder.Push's depth accounting
// so a decoder fed an adversarial or corrupted stream cannot be driven
// into unbounded recursion.
func (d *Decoder) Push() error {
	if d.depth >= d.maxDepth {
		return &DecodeError{Reason: fmt.Sprintf("container depth exceeds max %d", d.maxDepth)}
	}
	d.depth++
	return nil
}

// Pop leaves a nested container entered via Push.
func (d *Decoder) Pop() { d.depth-- }

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.off+n > len(d.b) {
		return nil, &DecodeError{Reason: "unexpected end of input"}
	}
	out := d.b[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *Decoder) u64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Bool reads a single byte and rejects any value other than 0 or 1.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.take(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &DecodeError{Reason: fmt.Sprintf("invalid bool byte %d", b[0])}
	}
}

// U8 reads an unsigned 8-bit integer.
func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian unsigned 16-bit integer.
func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian unsigned 32-bit integer.
func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian unsigned 64-bit integer.
func (d *Decoder) U64() (uint64, error) { return d.u64() }

func (d *Decoder) I8() (int8, error) {
	v, err := d.U8()
	return int8(v), err
}
func (d *Decoder) I16() (int16, error) {
	v, err := d.U16()
	return int16(v), err
}
func (d *Decoder) I32() (int32, error) {
	v, err := d.U32()
	return int32(v), err
}
func (d *Decoder) I64() (int64, error) {
	v, err := d.U64()
	return int64(v), err
}

func (d *Decoder) F32() (float32, error) {
	v, err := d.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}
func (d *Decoder) F64() (float64, error) {
	v, err := d.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Len reads a length prefix. Rejects lengths that cannot possibly fit in
// the remaining input, so a corrupted huge length fails fast instead of
// driving an allocation-based decoder to exhaust memory.
func (d *Decoder) Len() (int, error) {
	n, err := d.u64()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, &DecodeError{Reason: "length prefix exceeds remaining input"}
	}
	return int(n), nil
}

// ReadBytes reads a length-prefixed raw byte buffer.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// String reads a length-prefixed UTF-8 string, rejecting invalid UTF-8.
func (d *Decoder) String() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &DecodeError{Reason: "invalid UTF-8"}
	}
	return string(b), nil
}

// Variant reads a tagged-sum discriminant.
func (d *Decoder) Variant() (uint32, error) { return d.U32() }

// OptionPresence reads the one-byte presence tag for Optional values.
func (d *Decoder) OptionPresence() (bool, error) { return d.Bool() }

// Codec encodes and decodes values of type T. Generated bindings implement
// this per user-defined type; wire ships implementations for primitives
// and common composites below.
type Codec[T any] interface {
	Encode(e *Encoder, v T) error
	Decode(d *Decoder) (T, error)
}

// Marshal encodes v with c and returns the owned bytes.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	e := NewEncoder()
	if err := c.Encode(e, v); err != nil {
		e.Release()
		return nil, err
	}
	return e.Take(), nil
}

// Unmarshal decodes b with c, requiring the entire input to be consumed.
func Unmarshal[T any](c Codec[T], b []byte) (T, error) {
	d := NewDecoder(b)
	v, err := c.Decode(d)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := d.Finish(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// SliceCodec builds a Codec for []T from a Codec[T], per §4.1's ordered
// sequence rule: length-prefixed element stream.
func SliceCodec[T any](elem Codec[T]) Codec[[]T] { return sliceCodec[T]{elem} }

type sliceCodec[T any] struct{ elem Codec[T] }

func (c sliceCodec[T]) Encode(e *Encoder, v []T) error {
	if err := e.Len(len(v)); err != nil {
		return err
	}
	if err := e.Push(); err != nil {
		return err
	}
	defer e.Pop()
	for _, item := range v {
		if err := c.elem.Encode(e, item); err != nil {
			return err
		}
	}
	return nil
}

func (c sliceCodec[T]) Decode(d *Decoder) ([]T, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	if err := d.Push(); err != nil {
		return nil, err
	}
	defer d.Pop()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := c.elem.Decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// OptionCodec builds a Codec for an optional T per §4.1's one-byte
// presence tag rule. present=false decodes to the zero value of T.
func OptionCodec[T any](inner Codec[T]) Codec[Option[T]] { return optionCodec[T]{inner} }

// Option represents spec.md's Optional: one-byte presence tag, payload
// iff present.
type Option[T any] struct {
	Valid bool
	Value T
}

// Some constructs a present Option.
func Some[T any](v T) Option[T] { return Option[T]{Valid: true, Value: v} }

// None constructs an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

type optionCodec[T any] struct{ inner Codec[T] }

func (c optionCodec[T]) Encode(e *Encoder, v Option[T]) error {
	if err := e.OptionPresence(v.Valid); err != nil {
		return err
	}
	if !v.Valid {
		return nil
	}
	if err := e.Push(); err != nil {
		return err
	}
	defer e.Pop()
	return c.inner.Encode(e, v.Value)
}

func (c optionCodec[T]) Decode(d *Decoder) (Option[T], error) {
	present, err := d.OptionPresence()
	if err != nil {
		return Option[T]{}, err
	}
	if !present {
		return Option[T]{}, nil
	}
	if err := d.Push(); err != nil {
		return Option[T]{}, err
	}
	defer d.Pop()
	v, err := c.inner.Decode(d)
	if err != nil {
		return Option[T]{}, err
	}
	return Some(v), nil
}

// BytesCodec is the Codec for raw length-prefixed byte buffers.
var BytesCodec Codec[[]byte] = bytesCodec{}

type bytesCodec struct{}

func (bytesCodec) Encode(e *Encoder, v []byte) error { return e.WriteBytes(v) }
func (bytesCodec) Decode(d *Decoder) ([]byte, error) { return d.ReadBytes() }

// StringCodec is the Codec for length-prefixed UTF-8 strings.
var StringCodec Codec[string] = stringCodec{}

type stringCodec struct{}

func (stringCodec) Encode(e *Encoder, v string) error { return e.String(v) }
func (stringCodec) Decode(d *Decoder) (string, error) { return d.String() }

// Uint32Codec, Uint64Codec, BoolCodec are the Codecs for the matching
// fixed-width primitives.
var (
	Uint32Codec Codec[uint32] = uint32Codec{}
	Uint64Codec Codec[uint64] = uint64Codec{}
	BoolCodec   Codec[bool]   = boolCodec{}
)

type uint32Codec struct{}

func (uint32Codec) Encode(e *Encoder, v uint32) error { return e.U32(v) }
func (uint32Codec) Decode(d *Decoder) (uint32, error) { return d.U32() }

type uint64Codec struct{}

func (uint64Codec) Encode(e *Encoder, v uint64) error { return e.U64(v) }
func (uint64Codec) Decode(d *Decoder) (uint64, error) { return d.U64() }

type boolCodec struct{}

func (boolCodec) Encode(e *Encoder, v bool) error { return e.Bool(v) }
func (boolCodec) Decode(d *Decoder) (bool, error) { return d.Bool() }

// ErrUnknownVariant is a sentinel for a variant index with no matching
// case. UnknownVariantError reports the same condition as a *DecodeError
// that does not wrap ErrUnknownVariant, so errors.Is does not match it.
var ErrUnknownVariant = errors.New("unknown variant index")

// UnknownVariantError builds the DecodeError for an unrecognised tagged
// sum discriminant.
func UnknownVariantError(index uint32) error {
	return &DecodeError{Reason: fmt.Sprintf("unknown variant index %d", index)}
}
