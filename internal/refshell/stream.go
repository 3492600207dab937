// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package refshell

import (
	"bufio"
	"time"

	"code.hybscloud.com/substrate/wire"
)

// WatchSSE opens a GET request against url and calls onOutput once per
// received line with the wire-encoded SseChunk Output, then once more with
// the wire-encoded SseDone terminal Output when the response body closes
// (or the request itself fails, treated as an immediate Done). Each
// delivery is a call the driving loop feeds straight into
// core.Core.Resolve for the request id Sse was registered under; per
// spec.md's streaming contract the id stays registered for every call
// except the last.
func (s *Shell) WatchSSE(url string, onOutput func([]byte)) {
	resp, err := s.httpClient.Get(url)
	if err != nil {
		onOutput(mustEncodeSseDone())
		return
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		onOutput(mustEncodeSseChunk(append([]byte(nil), line...)))
	}
	onOutput(mustEncodeSseDone())
}

func mustEncodeSseChunk(data []byte) []byte {
	e := wire.NewEncoder()
	defer e.Release()
	mustKV(e.Variant(0)) // sseTagChunk
	mustKV(e.WriteBytes(data))
	return append([]byte(nil), e.Bytes()...)
}

func mustEncodeSseDone() []byte {
	e := wire.NewEncoder()
	defer e.Release()
	mustKV(e.Variant(1)) // sseTagDone
	return append([]byte(nil), e.Bytes()...)
}

// WatchTicks delivers a wire-encoded Tick Output to onTick every every,
// until stop is closed. Time.Subscribe has no terminal Output marker (see
// SPEC_FULL.md's OQ-3): the driving loop keeps calling core.Core.Resolve
// with each delivery and only stops when it cancels the underlying
// Command, which is exactly what closing stop models here.
func WatchTicks(every time.Duration, stop <-chan struct{}, onTick func([]byte)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			b, err := encodeInstant(t)
			if err != nil {
				return
			}
			onTick(b)
		}
	}
}
