// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"testing"
	"testing/quick"

	"code.hybscloud.com/substrate/wire"
)

func roundTrip[T comparable](t *testing.T, c wire.Codec[T], v T) {
	t.Helper()
	b, err := wire.Marshal(c, v)
	if err != nil {
		t.Fatalf("Marshal(%v): %v", v, err)
	}
	got, err := wire.Unmarshal(c, b)
	if err != nil {
		t.Fatalf("Unmarshal(%v): %v", v, err)
	}
	if got != v {
		t.Fatalf("round trip: got %v, want %v", got, v)
	}
}

func TestRoundTripPrimitives(t *testing.T) {
	roundTrip(t, wire.Uint32Codec, uint32(0))
	roundTrip(t, wire.Uint32Codec, uint32(1<<32-1))
	roundTrip(t, wire.Uint64Codec, uint64(1<<63+7))
	roundTrip(t, wire.BoolCodec, true)
	roundTrip(t, wire.BoolCodec, false)
	roundTrip(t, wire.StringCodec, "")
	roundTrip(t, wire.StringCodec, "héllo, 世界")
}

func TestRoundTripQuickString(t *testing.T) {
	f := func(s string) bool {
		b, err := wire.Marshal(wire.StringCodec, s)
		if err != nil {
			return false
		}
		got, err := wire.Unmarshal(wire.StringCodec, b)
		return err == nil && got == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTripQuickUint64(t *testing.T) {
	f := func(v uint64) bool {
		b, err := wire.Marshal(wire.Uint64Codec, v)
		if err != nil {
			return false
		}
		got, err := wire.Unmarshal(wire.Uint64Codec, b)
		return err == nil && got == v
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTripBytes(t *testing.T) {
	in := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	b, err := wire.Marshal(wire.BytesCodec, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.Unmarshal(wire.BytesCodec, b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(in) {
		t.Fatalf("got %x, want %x", got, in)
	}
}

func TestRoundTripSlice(t *testing.T) {
	c := wire.SliceCodec(wire.Uint32Codec)
	in := []uint32{1, 2, 3, 4, 5}
	b, err := wire.Marshal(c, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.Unmarshal(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(in) {
		t.Fatalf("got len %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestRoundTripSliceEmpty(t *testing.T) {
	c := wire.SliceCodec(wire.StringCodec)
	b, err := wire.Marshal(c, []string{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.Unmarshal(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestRoundTripOption(t *testing.T) {
	c := wire.OptionCodec(wire.StringCodec)

	b, err := wire.Marshal(c, wire.Some("present"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := wire.Unmarshal(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Valid || got.Value != "present" {
		t.Fatalf("got %+v, want Some(present)", got)
	}

	b, err = wire.Marshal(c, wire.None[string]())
	if err != nil {
		t.Fatal(err)
	}
	got, err = wire.Unmarshal(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Valid {
		t.Fatalf("got %+v, want None", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	b, err := wire.Marshal(wire.StringCodec, "hello")
	if err != nil {
		t.Fatal(err)
	}
	_, err = wire.Unmarshal(wire.StringCodec, b[:len(b)-1])
	if err == nil {
		t.Fatal("expected decode error on truncated input")
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	b, err := wire.Marshal(wire.Uint32Codec, uint32(7))
	if err != nil {
		t.Fatal(err)
	}
	b = append(b, 0xFF)
	_, err = wire.Unmarshal(wire.Uint32Codec, b)
	if err == nil {
		t.Fatal("expected decode error on trailing bytes")
	}
}

func TestDecodeInvalidBool(t *testing.T) {
	_, err := wire.Unmarshal(wire.BoolCodec, []byte{2})
	if err == nil {
		t.Fatal("expected decode error on invalid bool byte")
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	d := wire.NewDecoder(nil)
	e := wire.NewEncoder()
	if err := e.WriteBytes([]byte{0xFF, 0xFE}); err != nil {
		t.Fatal(err)
	}
	raw := e.Take()
	d = wire.NewDecoder(raw)
	_, err := d.String()
	if err == nil {
		t.Fatal("expected decode error on invalid UTF-8")
	}
}

func TestEncodeInvalidUTF8Rejected(t *testing.T) {
	e := wire.NewEncoder()
	defer e.Release()
	err := e.String(string([]byte{0xFF, 0xFE}))
	if err == nil {
		t.Fatal("expected encode error on invalid UTF-8")
	}
}

func TestDepthLimitEncode(t *testing.T) {
	e := wire.NewEncoder().WithMaxDepth(1)
	defer e.Release()
	if err := e.Push(); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := e.Push(); err == nil {
		t.Fatal("expected depth-limit encode error")
	}
}

func TestDepthLimitDecode(t *testing.T) {
	d := wire.NewDecoder(nil).WithMaxDepth(1)
	if err := d.Push(); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := d.Push(); err == nil {
		t.Fatal("expected depth-limit decode error")
	}
}

func TestUnknownVariantError(t *testing.T) {
	err := wire.UnknownVariantError(7)
	if err == nil {
		t.Fatal("expected non-nil error")
	}
}
