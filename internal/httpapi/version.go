package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
)

// Task version tokens travel over the wire as base64-encoded opaque
// strings rather than raw integers, so clients treat them as opaque
// rather than perform arithmetic on them (spec §6.1).

func encodeVersion(v int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(v, 10)))
}

func decodeVersion(token string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("malformed version token: %w", err)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed version token: %w", err)
	}
	return v, nil
}

// requireIfMatch extracts and decodes the If-Match header, writing a
// validation error and returning ok=false when it is missing or malformed.
func requireIfMatch(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("If-Match")
	if raw == "" {
		writeValidationError(w, r, "If-Match header is required")
		return 0, false
	}
	v, err := decodeVersion(raw)
	if err != nil {
		writeValidationError(w, r, err.Error())
		return 0, false
	}
	return v, true
}
