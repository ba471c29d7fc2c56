package client

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// DedupingTransport collapses concurrent identical idempotent requests
// (GET/HEAD only) into a single round trip, fanning the shared response out
// to every waiter (spec §4.6).
type DedupingTransport struct {
	Next  http.RoundTripper
	group singleflight.Group
}

// NewDedupingTransport wraps next, defaulting to http.DefaultTransport
// when nil.
func NewDedupingTransport(next http.RoundTripper) *DedupingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &DedupingTransport{Next: next}
}

func (t *DedupingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.Next.RoundTrip(req)
	}

	key, err := dedupKey(req)
	if err != nil {
		return t.Next.RoundTrip(req)
	}

	v, err, _ := t.group.Do(key, func() (any, error) {
		resp, err := t.Next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return &bufferedResponse{resp: resp, body: body}, nil
	})
	if err != nil {
		return nil, err
	}

	buffered := v.(*bufferedResponse)
	clone := *buffered.resp
	clone.Body = io.NopCloser(bytes.NewReader(buffered.body))
	return &clone, nil
}

type bufferedResponse struct {
	resp *http.Response
	body []byte
}

func dedupKey(req *http.Request) (string, error) {
	var bodyHash [32]byte
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		bodyHash = sha256.Sum256(body)
	}
	return req.Method + "\x00" + req.URL.String() + "\x00" + hex.EncodeToString(bodyHash[:]), nil
}
