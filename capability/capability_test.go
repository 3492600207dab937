// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capability_test

import (
	"testing"

	"code.hybscloud.com/substrate/capability"
)

func TestToEffectClassifiesKnownOperations(t *testing.T) {
	cases := []struct {
		name string
		op   any
		want uint32
	}{
		{"render", capability.Render{}, capability.VariantRender},
		{"http", capability.Http{Method: "GET", URL: "http://x"}, capability.VariantHttp},
		{"platform", capability.Platform{}, capability.VariantPlatform},
		{"time-now", capability.TimeNow{}, capability.VariantTimeNow},
		{"delay", capability.Delay{Millis: 10}, capability.VariantDelay},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eff, err := capability.ToEffect(c.op)
			if err != nil {
				t.Fatalf("ToEffect: %v", err)
			}
			if eff.Variant != c.want {
				t.Fatalf("variant = %d, want %d", eff.Variant, c.want)
			}
		})
	}
}

func TestToEffectRejectsUnknownOperation(t *testing.T) {
	type notACapability struct{}
	if _, err := capability.ToEffect(notACapability{}); err == nil {
		t.Fatal("expected error for unrecognised operation")
	}
}

func TestDefaultOutputCodecRoundTripsHttp(t *testing.T) {
	codec := capability.DefaultOutputCodec()
	eff, err := capability.ToEffect(capability.Http{
		Method:  "GET",
		URL:     "https://example.invalid/",
		Headers: map[string][]string{"Accept": {"application/json"}},
		Body:    nil,
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := codec.EncodeEffect(eff)
	if err != nil {
		t.Fatalf("EncodeEffect: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("EncodeEffect produced no bytes")
	}
}

func TestDefaultOutputCodecDecodesPlatformOutput(t *testing.T) {
	codec := capability.DefaultOutputCodec()
	e := newTestEncoder(t)
	defer e.release()
	e.string("linux")
	out, err := codec.DecodeOutput(capability.VariantPlatform, e.bytes())
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	s, ok := out.(string)
	if !ok || s != "linux" {
		t.Fatalf("got %#v, want string \"linux\"", out)
	}
}

func TestDefaultOutputCodecDecodesKVAck(t *testing.T) {
	codec := capability.DefaultOutputCodec()
	e := newTestEncoder(t)
	defer e.release()
	e.variant(1) // kvTagAck
	out, err := codec.DecodeOutput(capability.VariantKVSet, e.bytes())
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	if _, ok := out.(capability.KVAck); !ok {
		t.Fatalf("got %#v, want KVAck", out)
	}
}

func TestKVListDoneIsTerminal(t *testing.T) {
	var out capability.KVOutput = capability.KVListDone{}
	if _, ok := out.(capability.Terminal); !ok {
		t.Fatal("KVListDone should implement Terminal")
	}
}

func TestSseDoneIsTerminal(t *testing.T) {
	var out capability.SseOutput = capability.SseDone{}
	if _, ok := out.(capability.Terminal); !ok {
		t.Fatal("SseDone should implement Terminal")
	}
}

func TestSseChunkIsNotTerminal(t *testing.T) {
	var out capability.SseOutput = capability.SseChunk{Data: []byte("x")}
	if _, ok := out.(capability.Terminal); ok {
		t.Fatal("SseChunk should not implement Terminal")
	}
}
