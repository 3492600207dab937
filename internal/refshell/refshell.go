// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package refshell is a reference Shell: it performs the capability
// catalogue's side effects (package capability) against real backends —
// net/http for Http, a github.com/mattn/go-sqlite3-backed table for KV,
// and the local clock for Time/Delay — so the Core façade can be exercised
// end to end in integration tests without a real mobile/desktop/web host.
//
// It is not part of the Core: it is a fixture, per spec.md §1's "per-
// platform shells... they only consume the core's FFI contract" scoping.
// Accordingly it speaks to the Core only across the wire, exactly as a
// genuinely separate-process, separate-language Shell would: it decodes
// the raw capability.Effect payload core.Core.ProcessEvent/Resolve hand
// back, and produces the raw Output payload core.Core.Resolve expects,
// using only the encode/decode rules package wire documents — never by
// importing capability's unexported Operation types.
package refshell

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"code.hybscloud.com/substrate/capability"
	"code.hybscloud.com/substrate/wire"
)

// Shell holds the backends one running reference Shell instance needs.
// InstanceID exists purely for log/trace correlation across multiple
// concurrently running Shells in a test process; it plays no part in the
// Shell/Core protocol itself.
type Shell struct {
	db         *sql.DB
	httpClient *http.Client
	InstanceID uuid.UUID
}

// Open starts a Shell backed by the sqlite3 database at dbPath (use
// "file::memory:?cache=shared" for an ephemeral in-process store).
func Open(dbPath string) (*Shell, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("refshell: open sqlite3: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("refshell: ping sqlite3: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("refshell: init kv schema: %w", err)
	}
	return &Shell{
		db:         db,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		InstanceID: uuid.New(),
	}, nil
}

// Close releases the Shell's backends.
func (s *Shell) Close() error { return s.db.Close() }

// Perform decodes one wire-encoded capability.Effect payload — the exact
// bytes core.Core.ProcessEvent/Resolve hand back for one request, stripped
// of its leading request id — and executes it, returning the wire-encoded
// Output bytes core.Core.Resolve expects back for that request id. Render
// returns nil: it has no Output and the Shell must not call Resolve for it
// at all, per spec.md §6.3.
//
// Sse and Time.Subscribe are streaming capabilities with no single
// request/response shape Perform's signature can express; WatchSSE and
// WatchTicks handle those instead.
func (s *Shell) Perform(payload []byte) ([]byte, error) {
	d := wire.NewDecoder(payload)
	variant, err := d.Variant()
	if err != nil {
		return nil, err
	}
	switch variant {
	case capability.VariantRender:
		return nil, nil
	case capability.VariantHttp:
		return s.performHttp(d)
	case capability.VariantKVGet, capability.VariantKVSet, capability.VariantKVDelete,
		capability.VariantKVExists, capability.VariantKVListPrefix:
		return s.performKV(variant, d)
	case capability.VariantPlatform:
		return encodePlatform("refshell")
	case capability.VariantTimeNow:
		return encodeInstant(time.Now())
	case capability.VariantDelay:
		return s.performDelay(d)
	default:
		return nil, fmt.Errorf("refshell: capability variant %d needs a streaming loop (Watch/WatchTicks), not Perform", variant)
	}
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

func encodeHeaders(e *wire.Encoder, h http.Header) error {
	if err := e.Len(len(h)); err != nil {
		return err
	}
	for k, vs := range h {
		if err := e.String(k); err != nil {
			return err
		}
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

func (s *Shell) performHttp(d *wire.Decoder) ([]byte, error) {
	method, err := d.String()
	if err != nil {
		return nil, err
	}
	url, err := d.String()
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

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return encodeHttpError(capability.HttpErrorURL, err.Error())
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		kind := capability.HttpErrorIO
		if urlErr, ok := err.(interface{ Timeout() bool }); ok && urlErr.Timeout() {
			kind = capability.HttpErrorTimeout
		}
		return encodeHttpError(kind, err.Error())
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return encodeHttpError(capability.HttpErrorIO, err.Error())
	}

	e := wire.NewEncoder()
	defer e.Release()
	if err := e.Variant(0); err != nil { // HttpOutput result tag, capability/effect.go's httpTagResult
		return nil, err
	}
	if err := e.U16(uint16(resp.StatusCode)); err != nil {
		return nil, err
	}
	if err := encodeHeaders(e, resp.Header); err != nil {
		return nil, err
	}
	if err := e.WriteBytes(respBody); err != nil {
		return nil, err
	}
	return append([]byte(nil), e.Bytes()...), nil
}

func encodeHttpError(kind capability.HttpErrorKind, message string) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	if err := e.Variant(1); err != nil { // httpTagError
		return nil, err
	}
	if err := e.U8(uint8(kind)); err != nil {
		return nil, err
	}
	if err := e.String(message); err != nil {
		return nil, err
	}
	return append([]byte(nil), e.Bytes()...), nil
}

func (s *Shell) performKV(variant uint32, d *wire.Decoder) ([]byte, error) {
	switch variant {
	case capability.VariantKVGet:
		key, err := d.String()
		if err != nil {
			return nil, err
		}
		var value []byte
		err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
		found := true
		if err == sql.ErrNoRows {
			found, err = false, nil
		}
		if err != nil {
			return encodeKVError(err.Error())
		}
		e := wire.NewEncoder()
		defer e.Release()
		mustKV(e.Variant(0)) // kvTagValue
		mustKV(e.Bool(found))
		mustKV(e.WriteBytes(value))
		return append([]byte(nil), e.Bytes()...), nil

	case capability.VariantKVSet:
		key, err := d.String()
		if err != nil {
			return nil, err
		}
		value, err := d.ReadBytes()
		if err != nil {
			return nil, err
		}
		if _, err := s.db.Exec(`INSERT INTO kv(key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return encodeKVError(err.Error())
		}
		return encodeKVAck()

	case capability.VariantKVDelete:
		key, err := d.String()
		if err != nil {
			return nil, err
		}
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return encodeKVError(err.Error())
		}
		return encodeKVAck()

	case capability.VariantKVExists:
		key, err := d.String()
		if err != nil {
			return nil, err
		}
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(1) FROM kv WHERE key = ?`, key).Scan(&n); err != nil {
			return encodeKVError(err.Error())
		}
		e := wire.NewEncoder()
		defer e.Release()
		mustKV(e.Variant(2)) // kvTagExists
		mustKV(e.Bool(n > 0))
		return append([]byte(nil), e.Bytes()...), nil

	case capability.VariantKVListPrefix:
		prefix, err := d.String()
		if err != nil {
			return nil, err
		}
		rows, err := s.db.Query(`SELECT key FROM kv WHERE key LIKE ? ORDER BY key`, prefix+"%")
		if err != nil {
			return encodeKVError(err.Error())
		}
		defer rows.Close()
		var keys []string
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				return encodeKVError(err.Error())
			}
			keys = append(keys, k)
		}
		e := wire.NewEncoder()
		defer e.Release()
		mustKV(e.Variant(3)) // kvTagKeysChunk
		mustKV(e.Len(len(keys)))
		for _, k := range keys {
			mustKV(e.String(k))
		}
		return append([]byte(nil), e.Bytes()...), nil

	default:
		return nil, fmt.Errorf("refshell: not a KV variant: %d", variant)
	}
}

// EncodeKVListDone builds the terminal Output a Shell sends to close a
// ListPrefix stream, once it has delivered every chunk. Perform only ever
// produces a single KVKeysChunk; a caller driving ListPrefix to completion
// must Resolve once more with this terminal marker.
func EncodeKVListDone() []byte {
	e := wire.NewEncoder()
	defer e.Release()
	mustKV(e.Variant(4)) // kvTagListDone
	return append([]byte(nil), e.Bytes()...)
}

func mustKV(err error) {
	if err != nil {
		panic(fmt.Sprintf("refshell: unexpected encode error: %v", err))
	}
}

func encodeKVAck() ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	mustKV(e.Variant(1)) // kvTagAck
	return append([]byte(nil), e.Bytes()...), nil
}

func encodeKVError(message string) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	mustKV(e.Variant(5)) // kvTagError
	mustKV(e.String(message))
	return append([]byte(nil), e.Bytes()...), nil
}

func encodePlatform(name string) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	if err := e.String(name); err != nil {
		return nil, err
	}
	return append([]byte(nil), e.Bytes()...), nil
}

func encodeInstant(t time.Time) ([]byte, error) {
	e := wire.NewEncoder()
	defer e.Release()
	if err := e.I64(t.UnixNano()); err != nil {
		return nil, err
	}
	return append([]byte(nil), e.Bytes()...), nil
}

func (s *Shell) performDelay(d *wire.Decoder) ([]byte, error) {
	millis, err := d.U64()
	if err != nil {
		return nil, err
	}
	time.Sleep(time.Duration(millis) * time.Millisecond)
	return nil, nil
}
