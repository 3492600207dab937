// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package refshell_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/substrate/capability"
	"code.hybscloud.com/substrate/internal/refshell"
	"code.hybscloud.com/substrate/wire"
)

func openShell(t *testing.T) *refshell.Shell {
	t.Helper()
	s, err := refshell.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func encodeHttpEffect(t *testing.T, method, url string) []byte {
	t.Helper()
	e := wire.NewEncoder()
	defer e.Release()
	require.NoError(t, e.Variant(capability.VariantHttp))
	require.NoError(t, e.String(method))
	require.NoError(t, e.String(url))
	require.NoError(t, e.Len(0)) // no headers
	require.NoError(t, e.WriteBytes(nil))
	return append([]byte(nil), e.Bytes()...)
}

func TestPerformHttpRoundTripsAgainstTestServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	s := openShell(t)
	out, err := s.Perform(encodeHttpEffect(t, "GET", srv.URL))
	require.NoError(t, err)

	d := wire.NewDecoder(out)
	tag, err := d.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 0, tag) // httpTagResult

	status, err := d.U16()
	require.NoError(t, err)
	require.EqualValues(t, 200, status)

	n, err := d.Len()
	require.NoError(t, err)
	headers := make(map[string][]string, n)
	for i := 0; i < n; i++ {
		k, err := d.String()
		require.NoError(t, err)
		m, err := d.Len()
		require.NoError(t, err)
		for j := 0; j < m; j++ {
			v, err := d.String()
			require.NoError(t, err)
			headers[k] = append(headers[k], v)
		}
	}
	require.Contains(t, headers, "Date") // net/http sets Date on every response

	body, err := d.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, "pong", string(body))
}

func TestPerformHttpErrorOnUnreachableHost(t *testing.T) {
	s := openShell(t)
	out, err := s.Perform(encodeHttpEffect(t, "GET", "http://127.0.0.1:1"))
	require.NoError(t, err)

	d := wire.NewDecoder(out)
	tag, err := d.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 1, tag) // httpTagError
}

func encodeKVSet(t *testing.T, key string, value []byte) []byte {
	t.Helper()
	e := wire.NewEncoder()
	defer e.Release()
	require.NoError(t, e.Variant(capability.VariantKVSet))
	require.NoError(t, e.String(key))
	require.NoError(t, e.WriteBytes(value))
	return append([]byte(nil), e.Bytes()...)
}

func encodeKVGet(t *testing.T, key string) []byte {
	t.Helper()
	e := wire.NewEncoder()
	defer e.Release()
	require.NoError(t, e.Variant(capability.VariantKVGet))
	require.NoError(t, e.String(key))
	return append([]byte(nil), e.Bytes()...)
}

func TestPerformKVSetThenGetRoundTrips(t *testing.T) {
	s := openShell(t)

	_, err := s.Perform(encodeKVSet(t, "greeting", []byte("hello")))
	require.NoError(t, err)

	out, err := s.Perform(encodeKVGet(t, "greeting"))
	require.NoError(t, err)

	d := wire.NewDecoder(out)
	tag, err := d.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 0, tag) // kvTagValue

	found, err := d.Bool()
	require.NoError(t, err)
	require.True(t, found)

	value, err := d.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, "hello", string(value))
}

func TestPerformKVGetMissingKeyReportsNotFound(t *testing.T) {
	s := openShell(t)
	out, err := s.Perform(encodeKVGet(t, "never-set"))
	require.NoError(t, err)

	d := wire.NewDecoder(out)
	tag, err := d.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 0, tag)

	found, err := d.Bool()
	require.NoError(t, err)
	require.False(t, found)
}

func TestPerformKVListPrefixReturnsSortedKeys(t *testing.T) {
	s := openShell(t)
	for _, k := range []string{"user:2", "user:1", "order:1"} {
		_, err := s.Perform(encodeKVSet(t, k, []byte("x")))
		require.NoError(t, err)
	}

	e := wire.NewEncoder()
	require.NoError(t, e.Variant(capability.VariantKVListPrefix))
	require.NoError(t, e.String("user:"))
	listReq := append([]byte(nil), e.Bytes()...)
	e.Release()

	out, err := s.Perform(listReq)
	require.NoError(t, err)

	d := wire.NewDecoder(out)
	tag, err := d.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 3, tag) // kvTagKeysChunk

	n, err := d.Len()
	require.NoError(t, err)
	keys := make([]string, n)
	for i := range keys {
		keys[i], err = d.String()
		require.NoError(t, err)
	}
	require.Equal(t, []string{"user:1", "user:2"}, keys)

	done := refshell.EncodeKVListDone()
	dd := wire.NewDecoder(done)
	doneTag, err := dd.Variant()
	require.NoError(t, err)
	require.EqualValues(t, 4, doneTag) // kvTagListDone
}

func TestPerformPlatformAndTimeNow(t *testing.T) {
	s := openShell(t)

	e := wire.NewEncoder()
	require.NoError(t, e.Variant(capability.VariantPlatform))
	platformReq := append([]byte(nil), e.Bytes()...)
	e.Release()

	out, err := s.Perform(platformReq)
	require.NoError(t, err)
	d := wire.NewDecoder(out)
	name, err := d.String()
	require.NoError(t, err)
	require.Equal(t, "refshell", name)

	e = wire.NewEncoder()
	require.NoError(t, e.Variant(capability.VariantTimeNow))
	nowReq := append([]byte(nil), e.Bytes()...)
	e.Release()

	out, err = s.Perform(nowReq)
	require.NoError(t, err)
	d = wire.NewDecoder(out)
	nanos, err := d.I64()
	require.NoError(t, err)
	require.Greater(t, nanos, int64(0))
}

func TestPerformDelaySleepsApproximatelyRequestedDuration(t *testing.T) {
	s := openShell(t)

	e := wire.NewEncoder()
	require.NoError(t, e.Variant(capability.VariantDelay))
	require.NoError(t, e.U64(20))
	delayReq := append([]byte(nil), e.Bytes()...)
	e.Release()

	start := time.Now()
	out, err := s.Perform(delayReq)
	require.NoError(t, err)
	require.Nil(t, out)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWatchSSEDeliversChunksThenDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("event-1\n"))
		_, _ = w.Write([]byte("event-2\n"))
	}))
	defer srv.Close()

	s := openShell(t)
	var deliveries [][]byte
	s.WatchSSE(srv.URL, func(b []byte) {
		deliveries = append(deliveries, append([]byte(nil), b...))
	})

	require.Len(t, deliveries, 3) // two chunks, then Done
	for _, want := range []struct {
		idx uint32
		b   []byte
	}{
		{0, deliveries[0]},
		{0, deliveries[1]},
		{1, deliveries[2]},
	} {
		d := wire.NewDecoder(want.b)
		tag, err := d.Variant()
		require.NoError(t, err)
		require.EqualValues(t, want.idx, tag)
	}
}

func TestWatchTicksStopsWhenChannelCloses(t *testing.T) {
	stop := make(chan struct{})
	var ticks int
	done := make(chan struct{})
	go func() {
		refshell.WatchTicks(5*time.Millisecond, stop, func(b []byte) {
			ticks++
			d := wire.NewDecoder(b)
			_, err := d.I64()
			require.NoError(t, err)
		})
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	require.Greater(t, ticks, 0)
}
