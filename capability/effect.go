// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capability

import (
	"fmt"
	"sort"

	"code.hybscloud.com/substrate/kont"
	"code.hybscloud.com/substrate/wire"
)

// Variant tags identify which capability Operation an Effect carries on
// the wire. Values are part of the wire contract: once shipped, a tag is
// never reassigned to a different Operation.
const (
	VariantRender uint32 = iota
	VariantHttp
	VariantKVGet
	VariantKVSet
	VariantKVDelete
	VariantKVExists
	VariantKVListPrefix
	VariantSse
	VariantPlatform
	VariantTimeNow
	VariantTimeSubscribe
	VariantDelay
)

// Effect is a capability Operation lifted into the tagged-union envelope
// the wire protocol ships to the Shell.
type Effect struct {
	Variant uint32
	Op      kont.Operation
}

// UnknownOperationError reports an Operation value ToEffect does not
// recognize, which can only happen if a caller constructs a
// command.Effect directly with a type outside this package's catalogue.
type UnknownOperationError struct{ Op kont.Operation }

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("capability: unknown operation type %T", e.Op)
}

// ToEffect classifies op into its wire Effect envelope.
func ToEffect(op kont.Operation) (Effect, error) {
	switch op.(type) {
	case Render:
		return Effect{Variant: VariantRender, Op: op}, nil
	case Http:
		return Effect{Variant: VariantHttp, Op: op}, nil
	case kvGet:
		return Effect{Variant: VariantKVGet, Op: op}, nil
	case kvSet:
		return Effect{Variant: VariantKVSet, Op: op}, nil
	case kvDelete:
		return Effect{Variant: VariantKVDelete, Op: op}, nil
	case kvExists:
		return Effect{Variant: VariantKVExists, Op: op}, nil
	case kvListPrefix:
		return Effect{Variant: VariantKVListPrefix, Op: op}, nil
	case Sse:
		return Effect{Variant: VariantSse, Op: op}, nil
	case Platform:
		return Effect{Variant: VariantPlatform, Op: op}, nil
	case TimeNow:
		return Effect{Variant: VariantTimeNow, Op: op}, nil
	case TimeSubscribe:
		return Effect{Variant: VariantTimeSubscribe, Op: op}, nil
	case Delay:
		return Effect{Variant: VariantDelay, Op: op}, nil
	default:
		return Effect{}, &UnknownOperationError{Op: op}
	}
}

// IsStreaming reports whether variant's Operation is a streaming
// capability: its continuation stays registered across multiple Outputs
// instead of being consumed by the first one. KVListPrefix and Sse carry
// an explicit Terminal Output variant (KVListDone, SseDone) that ends the
// stream; TimeSubscribe has none and streams until its Command is
// cancelled, per SPEC_FULL.md's OQ-3.
func IsStreaming(variant uint32) bool {
	switch variant {
	case VariantKVListPrefix, VariantSse, VariantTimeSubscribe:
		return true
	default:
		return false
	}
}

// OutputCodec translates between the capability catalogue's Go values and
// the bytes that cross the FFI boundary: EncodeEffect serializes an
// Operation for the Shell, DecodeOutput deserializes the Output the Shell
// later sends back for a given variant.
type OutputCodec interface {
	EncodeEffect(e Effect) ([]byte, error)
	DecodeOutput(variant uint32, data []byte) (kont.Resumed, error)
}

type defaultOutputCodec struct{}

// DefaultOutputCodec returns the OutputCodec implementing this package's
// built-in catalogue. A Shell that adds its own capabilities alongside
// these wraps or replaces it; see core.New.
func DefaultOutputCodec() OutputCodec { return defaultOutputCodec{} }

func encodeHeaders(e *wire.Encoder, h map[string][]string) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := e.Len(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.String(k); err != nil {
			return err
		}
		vs := h[k]
		if err := e.Len(len(vs)); err != nil {
			return err
		}
		for _, v := range vs {
			if err := e.String(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeHeaders(d *wire.Decoder) (map[string][]string, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	h := make(map[string][]string, n)
	for i := 0; i < n; i++ {
		k, err := d.String()
		if err != nil {
			return nil, err
		}
		m, err := d.Len()
		if err != nil {
			return nil, err
		}
		vs := make([]string, m)
		for j := 0; j < m; j++ {
			if vs[j], err = d.String(); err != nil {
				return nil, err
			}
		}
		h[k] = vs
	}
	return h, nil
}

func (defaultOutputCodec) EncodeEffect(eff Effect) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	if err := e.Variant(eff.Variant); err != nil {
		return nil, err
	}
	switch op := eff.Op.(type) {
	case Render:
		// unit payload
	case Http:
		if err := e.String(op.Method); err != nil {
			return nil, err
		}
		if err := e.String(op.URL); err != nil {
			return nil, err
		}
		if err := encodeHeaders(e, op.Headers); err != nil {
			return nil, err
		}
		if err := e.WriteBytes(op.Body); err != nil {
			return nil, err
		}
	case kvGet:
		if err := e.String(op.Key); err != nil {
			return nil, err
		}
	case kvSet:
		if err := e.String(op.Key); err != nil {
			return nil, err
		}
		if err := e.WriteBytes(op.Value); err != nil {
			return nil, err
		}
	case kvDelete:
		if err := e.String(op.Key); err != nil {
			return nil, err
		}
	case kvExists:
		if err := e.String(op.Key); err != nil {
			return nil, err
		}
	case kvListPrefix:
		if err := e.String(op.Prefix); err != nil {
			return nil, err
		}
	case Sse:
		if err := e.String(op.URL); err != nil {
			return nil, err
		}
	case Platform:
		// unit payload
	case TimeNow:
		// unit payload
	case TimeSubscribe:
		if err := e.U64(uint64(op.Every)); err != nil {
			return nil, err
		}
	case Delay:
		if err := e.U64(op.Millis); err != nil {
			return nil, err
		}
	default:
		return nil, &UnknownOperationError{Op: eff.Op}
	}
	return append([]byte(nil), e.Bytes()...), nil
}

func (defaultOutputCodec) DecodeOutput(variant uint32, data []byte) (kont.Resumed, error) {
	d := wire.NewDecoder(data)
	switch variant {
	case VariantRender:
		return struct{}{}, finish(d)
	case VariantHttp:
		return decodeHttpOutput(d)
	case VariantKVGet, VariantKVSet, VariantKVDelete, VariantKVExists, VariantKVListPrefix:
		return decodeKVOutput(d)
	case VariantSse:
		return decodeSseOutput(d)
	case VariantPlatform:
		s, err := d.String()
		if err != nil {
			return nil, err
		}
		return s, finish(d)
	case VariantTimeNow:
		return decodeInstant(d)
	case VariantTimeSubscribe:
		at, err := decodeInstant(d)
		if err != nil {
			return nil, err
		}
		return Tick{At: at}, finish(d)
	case VariantDelay:
		return struct{}{}, finish(d)
	default:
		return nil, wire.UnknownVariantError(variant)
	}
}

func finish(d *wire.Decoder) error { return d.Finish() }

func decodeInstant(d *wire.Decoder) (Instant, error) {
	n, err := d.I64()
	if err != nil {
		return Instant{}, err
	}
	return Instant{UnixNano: n}, nil
}

const (
	httpTagResult uint32 = iota
	httpTagError
)

func decodeHttpOutput(d *wire.Decoder) (HttpOutput, error) {
	tag, err := d.Variant()
	if err != nil {
		return nil, err
	}
	switch tag {
	case httpTagResult:
		status, err := d.U16()
		if err != nil {
			return nil, err
		}
		headers, err := decodeHeaders(d)
		if err != nil {
			return nil, err
		}
		body, err := d.ReadBytes()
		if err != nil {
			return nil, err
		}
		return HttpResult{Status: status, Headers: headers, Body: body}, finish(d)
	case httpTagError:
		kind, err := d.U8()
		if err != nil {
			return nil, err
		}
		msg, err := d.String()
		if err != nil {
			return nil, err
		}
		return HttpError{Kind: HttpErrorKind(kind), Message: msg}, finish(d)
	default:
		return nil, wire.UnknownVariantError(tag)
	}
}

const (
	kvTagValue uint32 = iota
	kvTagAck
	kvTagExists
	kvTagKeysChunk
	kvTagListDone
	kvTagError
)

func decodeKVOutput(d *wire.Decoder) (KVOutput, error) {
	tag, err := d.Variant()
	if err != nil {
		return nil, err
	}
	switch tag {
	case kvTagValue:
		found, err := d.Bool()
		if err != nil {
			return nil, err
		}
		val, err := d.ReadBytes()
		if err != nil {
			return nil, err
		}
		return KVValue{Value: val, Found: found}, finish(d)
	case kvTagAck:
		return KVAck{}, finish(d)
	case kvTagExists:
		exists, err := d.Bool()
		if err != nil {
			return nil, err
		}
		return KVExistsResult{Exists: exists}, finish(d)
	case kvTagKeysChunk:
		n, err := d.Len()
		if err != nil {
			return nil, err
		}
		keys := make([]string, n)
		for i := 0; i < n; i++ {
			if keys[i], err = d.String(); err != nil {
				return nil, err
			}
		}
		return KVKeysChunk{Keys: keys}, finish(d)
	case kvTagListDone:
		return KVListDone{}, finish(d)
	case kvTagError:
		msg, err := d.String()
		if err != nil {
			return nil, err
		}
		return KVError{Message: msg}, finish(d)
	default:
		return nil, wire.UnknownVariantError(tag)
	}
}

const (
	sseTagChunk uint32 = iota
	sseTagDone
)

func decodeSseOutput(d *wire.Decoder) (SseOutput, error) {
	tag, err := d.Variant()
	if err != nil {
		return nil, err
	}
	switch tag {
	case sseTagChunk:
		data, err := d.ReadBytes()
		if err != nil {
			return nil, err
		}
		return SseChunk{Data: data}, finish(d)
	case sseTagDone:
		return SseDone{}, finish(d)
	default:
		return nil, wire.UnknownVariantError(tag)
	}
}
