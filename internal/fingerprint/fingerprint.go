// Package fingerprint derives the content hash used to deduplicate job
// submissions. Two submissions agreeing on method, URL, headers, body
// and run time always map to the same fingerprint.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// New returns the 64-char lowercase hex SHA-256 over the canonical form
// METHOD|URL|BODY_JSON|HDRS|RUN_TS. Header keys are lowercased and
// sorted; values are rendered as their JSON text. runAt folds in as
// Unix seconds, 0 when absent.
func New(method, url string, headers map[string]any, body json.RawMessage, runAt *time.Time) string {
	var runTS int64
	if runAt != nil {
		runTS = runAt.Unix()
	}

	payload := fmt.Sprintf("%s|%s|%s|%s|%d",
		method, url, canonicalJSON(body), headerString(headers), runTS)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// headerString renders headers as "k1:v1, k2:v2" with lowercased keys
// in sorted order. Values keep their JSON representation, so string
// values stay quoted.
func headerString(headers map[string]any) string {
	if len(headers) == 0 {
		return ""
	}

	entries := make([]string, 0, len(headers))
	for k, v := range headers {
		text, err := json.Marshal(v)
		if err != nil {
			// Headers arrive through JSON decoding, so every value is
			// marshalable; fall back to the raw formatting if not.
			text = []byte(fmt.Sprint(v))
		}
		entries = append(entries, strings.ToLower(k)+":"+string(text))
	}
	sort.Strings(entries)

	return strings.Join(entries, ", ")
}

// canonicalJSON re-encodes the body compactly with sorted object keys.
// An absent body and an explicit null both render as the empty string.
func canonicalJSON(body json.RawMessage) string {
	if len(body) == 0 || string(body) == "null" {
		return ""
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	if v == nil {
		return ""
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(body)
	}
	return string(out)
}
