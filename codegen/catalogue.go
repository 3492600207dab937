// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codegen

import "code.hybscloud.com/substrate/capability"

// BuiltinCatalogue returns a Builder pre-loaded with the framework's own
// capability catalogue (package capability): Render, Http, KV, Sse,
// Platform, Time, and Delay. An application adds its own Event and
// ViewModel types on top with AddStruct/AddEnum before calling Build, so
// the resulting Descriptor always covers the whole reachable graph spec.md
// §4.8 asks for, not just the user-defined half of it.
//
// Variant tags mirror capability's own Variant* constants exactly: this
// function is the single place the codegen descriptor's enum numbering is
// kept in sync with the wire protocol's variant-index encoding.
//
// The five KV variants of Effect are recorded with unit payloads: their
// key, value and prefix fields, which OutputCodec.EncodeEffect does write
// to the wire, are not described in the descriptor.
func BuiltinCatalogue() *Builder {
	b := NewBuilder()

	b.AddEnum("Effect",
		EnumVariant{Name: "Render", Tag: capability.VariantRender, Payload: nil},
		EnumVariant{Name: "Http", Tag: capability.VariantHttp, Payload: capability.Http{}},
		EnumVariant{Name: "KVGet", Tag: capability.VariantKVGet, Payload: nil},
		EnumVariant{Name: "KVSet", Tag: capability.VariantKVSet, Payload: nil},
		EnumVariant{Name: "KVDelete", Tag: capability.VariantKVDelete, Payload: nil},
		EnumVariant{Name: "KVExists", Tag: capability.VariantKVExists, Payload: nil},
		EnumVariant{Name: "KVListPrefix", Tag: capability.VariantKVListPrefix, Payload: nil},
		EnumVariant{Name: "Sse", Tag: capability.VariantSse, Payload: capability.Sse{}},
		EnumVariant{Name: "Platform", Tag: capability.VariantPlatform, Payload: nil},
		EnumVariant{Name: "TimeNow", Tag: capability.VariantTimeNow, Payload: nil},
		EnumVariant{Name: "TimeSubscribe", Tag: capability.VariantTimeSubscribe, Payload: capability.TimeSubscribe{}},
		EnumVariant{Name: "Delay", Tag: capability.VariantDelay, Payload: capability.Delay{}},
	)

	b.AddEnum("HttpOutput",
		EnumVariant{Name: "Result", Tag: 0, Payload: capability.HttpResult{}},
		EnumVariant{Name: "Error", Tag: 1, Payload: capability.HttpError{}},
	)
	b.AddEnum("KVOutput",
		EnumVariant{Name: "Value", Tag: 0, Payload: capability.KVValue{}},
		EnumVariant{Name: "Ack", Tag: 1, Payload: capability.KVAck{}},
		EnumVariant{Name: "Exists", Tag: 2, Payload: capability.KVExistsResult{}},
		EnumVariant{Name: "KeysChunk", Tag: 3, Payload: capability.KVKeysChunk{}},
		EnumVariant{Name: "ListDone", Tag: 4, Payload: capability.KVListDone{}},
		EnumVariant{Name: "Error", Tag: 5, Payload: capability.KVError{}},
	)
	b.AddEnum("SseOutput",
		EnumVariant{Name: "Chunk", Tag: 0, Payload: capability.SseChunk{}},
		EnumVariant{Name: "Done", Tag: 1, Payload: capability.SseDone{}},
	)

	b.AddStruct(capability.Instant{})
	b.AddStruct(capability.Tick{})

	return b
}
