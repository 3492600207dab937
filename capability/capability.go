// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package capability defines the catalogue of side effects a Core can ask
// its Shell to perform: Render, Http, KV, Sse, Platform, Time, and Delay.
//
// Every Operation embeds kont.Phantom[A] for its Output type A, so
// command.Effect's F-bounded kont.Op constraint checks the
// Operation/Output pairing at compile time; there is no runtime variant
// mismatch to guard against, by construction.
//
// Output shapes that are themselves tagged sums (HttpOutput, KVOutput,
// SseOutput) are each a small interface with an unexported marker method,
// implemented by every variant struct.
package capability

import (
	"time"

	"code.hybscloud.com/substrate/command"
	"code.hybscloud.com/substrate/kont"
)

// Terminal marks an Output variant that ends a streaming capability's
// request. The façade drops the request's registry entry on a Terminal
// Output; on any other Output of a streaming capability it leaves the
// entry in place for the next one.
type Terminal interface{ isTerminal() }

// --- Render -----------------------------------------------------------

// Render asks the Shell to draw the current ViewModel. It carries no
// Output (the Shell never replies) and is always delivered under the
// reserved id 0: the façade never inserts it into the request registry.
type Render struct{ kont.Phantom[struct{}] }

// RenderThen performs a Render effect, then continues with next. Since
// Render is fire-and-forget, the façade resumes this branch itself the
// instant it has handed the effect to the Shell; next runs without
// waiting on any external input.
func RenderThen[E any](next command.Command[E]) command.Command[E] {
	return command.Effect[Render, struct{}, E](Render{}, func(struct{}) command.Command[E] {
		return next
	})
}

// --- Http ---------------------------------------------------------------

// HttpOutput is the tagged result of an Http Operation: exactly one of
// HttpResult or HttpError.
type HttpOutput interface{ isHttpOutput() }

// HttpResult is a successful HTTP response.
type HttpResult struct {
	Status  uint16
	Headers map[string][]string
	Body    []byte
}

func (HttpResult) isHttpOutput() {}

// HttpErrorKind classifies why an Http Operation failed.
type HttpErrorKind uint8

const (
	HttpErrorURL HttpErrorKind = iota
	HttpErrorIO
	HttpErrorTimeout
)

// HttpError is a failed HTTP response.
type HttpError struct {
	Kind    HttpErrorKind
	Message string
}

func (HttpError) isHttpOutput() {}

// Http requests that the Shell perform a single HTTP round trip.
type Http struct {
	kont.Phantom[HttpOutput]
	Method  string
	URL     string
	Headers map[string][]string
	Body    []byte
}

// Request performs an Http operation and continues with k once the Shell
// delivers its HttpOutput.
func Request[E any](method, url string, headers map[string][]string, body []byte, k func(HttpOutput) command.Command[E]) command.Command[E] {
	return command.Effect[Http, HttpOutput, E](Http{Method: method, URL: url, Headers: headers, Body: body}, k)
}

// Get is a convenience wrapper around Request for a bodyless GET.
func Get[E any](url string, k func(HttpOutput) command.Command[E]) command.Command[E] {
	return Request(http_MethodGet, url, nil, nil, k)
}

const http_MethodGet = "GET"

// --- KV -------------------------------------------------------------------

// KVOutput is the tagged result of any KV Operation.
type KVOutput interface{ isKVOutput() }

// KVValue is Get's result: Found is false when the key was absent.
type KVValue struct {
	Value []byte
	Found bool
}

func (KVValue) isKVOutput() {}

// KVAck acknowledges a Set or Delete.
type KVAck struct{}

func (KVAck) isKVOutput() {}

// KVExistsResult is Exists's result.
type KVExistsResult struct{ Exists bool }

func (KVExistsResult) isKVOutput() {}

// KVKeysChunk is one streaming chunk of a ListPrefix result.
type KVKeysChunk struct{ Keys []string }

func (KVKeysChunk) isKVOutput() {}

// KVListDone terminates a ListPrefix stream.
type KVListDone struct{}

func (KVListDone) isKVOutput() {}
func (KVListDone) isTerminal() {}

// KVError reports a KV backend failure for any KV Operation.
type KVError struct{ Message string }

func (KVError) isKVOutput() {}

type kvGet struct {
	kont.Phantom[KVOutput]
	Key string
}
type kvSet struct {
	kont.Phantom[KVOutput]
	Key   string
	Value []byte
}
type kvDelete struct {
	kont.Phantom[KVOutput]
	Key string
}
type kvExists struct {
	kont.Phantom[KVOutput]
	Key string
}
type kvListPrefix struct {
	kont.Phantom[KVOutput]
	Prefix string
}

// IsStreamingOperation marks kvListPrefix as a command.streamingOperation:
// its builder's callback is kept registered and re-invoked directly for
// every chunk rather than re-performed as a fresh Operation.
func (kvListPrefix) IsStreamingOperation() {}

// KVGet reads a single key.
func KVGet[E any](key string, k func(KVOutput) command.Command[E]) command.Command[E] {
	return command.Effect[kvGet, KVOutput, E](kvGet{Key: key}, k)
}

// KVSet writes a single key.
func KVSet[E any](key string, value []byte, k func(KVOutput) command.Command[E]) command.Command[E] {
	return command.Effect[kvSet, KVOutput, E](kvSet{Key: key, Value: value}, k)
}

// KVDelete removes a single key.
func KVDelete[E any](key string, k func(KVOutput) command.Command[E]) command.Command[E] {
	return command.Effect[kvDelete, KVOutput, E](kvDelete{Key: key}, k)
}

// KVExists checks whether a key is present without reading its value.
func KVExists[E any](key string, k func(KVOutput) command.Command[E]) command.Command[E] {
	return command.Effect[kvExists, KVOutput, E](kvExists{Key: key}, k)
}

// KVListPrefix streams keys sharing prefix; k is invoked with each
// KVKeysChunk and finally with a KVListDone (a Terminal Output).
func KVListPrefix[E any](prefix string, k func(KVOutput) command.Command[E]) command.Command[E] {
	return command.Effect[kvListPrefix, KVOutput, E](kvListPrefix{Prefix: prefix}, k)
}

// --- Sse --------------------------------------------------------------

// SseOutput is the tagged result of an Sse Operation.
type SseOutput interface{ isSseOutput() }

// SseChunk is one chunk of a server-sent-event stream.
type SseChunk struct{ Data []byte }

func (SseChunk) isSseOutput() {}

// SseDone terminates an Sse stream.
type SseDone struct{}

func (SseDone) isSseOutput() {}
func (SseDone) isTerminal()  {}

// Sse requests that the Shell open a server-sent-events connection.
type Sse struct {
	kont.Phantom[SseOutput]
	URL string
}

// IsStreamingOperation marks Sse as a command.streamingOperation: the
// Shell's one open connection keeps driving the same callback for every
// chunk instead of the Core asking it to open another one per chunk.
func (Sse) IsStreamingOperation() {}

// Subscribe opens an SSE connection at url; k is invoked with each
// SseChunk and finally with an SseDone.
func Subscribe[E any](url string, k func(SseOutput) command.Command[E]) command.Command[E] {
	return command.Effect[Sse, SseOutput, E](Sse{URL: url}, k)
}

// --- Platform -----------------------------------------------------------

// Platform asks the Shell to identify its host platform.
type Platform struct{ kont.Phantom[string] }

// PlatformName performs a Platform operation.
func PlatformName[E any](k func(string) command.Command[E]) command.Command[E] {
	return command.Effect[Platform, string, E](Platform{}, k)
}

// --- Time -----------------------------------------------------------------

// Instant is an opaque point in time, expressed as a Unix nanosecond
// timestamp so it can cross the wire without a timezone or monotonic
// reading attached.
type Instant struct{ UnixNano int64 }

// TimeNow asks the Shell for the current Instant (one-shot).
type TimeNow struct{ kont.Phantom[Instant] }

// Now performs a one-shot TimeNow operation.
func Now[E any](k func(Instant) command.Command[E]) command.Command[E] {
	return command.Effect[TimeNow, Instant, E](TimeNow{}, k)
}

// Tick is one delivery of a Time.Subscribe stream.
type Tick struct{ At Instant }

// TimeSubscribe asks the Shell for a repeating Tick every Every. Unlike
// Sse and KV.ListPrefix, this capability has no terminal Output variant:
// per the framework's terminal-marker-is-capability-specific rule, a
// subscription streams until its Command is cancelled (the façade drops
// the registry entry), not until the Shell sends a "done" marker.
type TimeSubscribe struct {
	kont.Phantom[Tick]
	Every time.Duration
}

// IsStreamingOperation marks TimeSubscribe as a command.streamingOperation:
// its callback is invoked again for every Tick until the subscribing
// Command is cancelled, never by re-performing TimeSubscribe itself.
func (TimeSubscribe) IsStreamingOperation() {}

// SubscribeTicks performs a repeating TimeSubscribe operation.
func SubscribeTicks[E any](every time.Duration, k func(Tick) command.Command[E]) command.Command[E] {
	return command.Effect[TimeSubscribe, Tick, E](TimeSubscribe{Every: every}, k)
}

// --- Delay ------------------------------------------------------------

// Delay asks the Shell to wait Millis milliseconds before resuming.
type Delay struct {
	kont.Phantom[struct{}]
	Millis uint64
}

// After performs a one-shot Delay operation.
func After[E any](millis uint64, k func() command.Command[E]) command.Command[E] {
	return command.Effect[Delay, struct{}, E](Delay{Millis: millis}, func(struct{}) command.Command[E] {
		return k()
	})
}
