package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Entry is a stored response. Entries are immutable once written; a re-fetch
// replaces the whole entry.
type Entry struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
}

// Snapshot reads resp.Body into an Entry and rewinds resp so the caller can
// still consume it. The returned entry and resp share no mutable state.
//
// When the body fails partway, resp.Body replays the bytes read so far and
// then the same error, ContentLength is left alone, and the error is
// returned. The caller sees the failure exactly as the network produced it.
func Snapshot(resp *http.Response) (Entry, error) {
	if resp == nil {
		return Entry{}, fmt.Errorf("cache: nil response")
	}
	var body []byte
	if resp.Body != nil {
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			resp.Body = &brokenBody{r: bytes.NewReader(b), err: err}
			return Entry{}, fmt.Errorf("cache: read body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(b))
		body = b
	} else {
		resp.Body = http.NoBody
	}
	resp.ContentLength = int64(len(body))

	return Entry{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       bytes.Clone(body),
	}, nil
}

// brokenBody yields buffered bytes, then err instead of io.EOF.
type brokenBody struct {
	r   *bytes.Reader
	err error
}

func (b *brokenBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, b.err
	}
	return n, err
}

func (b *brokenBody) Close() error { return nil }

// Response builds a fresh *http.Response for req from the entry.
func (e Entry) Response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("cache: decode entry: %w", err)
	}
	return e, nil
}
