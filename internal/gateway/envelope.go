package gateway

import (
	"bytes"
	"encoding/json"
)

// The cart service is not consistent about response envelopes: the same
// endpoint may return a bare collection or wrap it under "data". Anything
// that matches neither shape reduces to "no usable data" so callers can fall
// back to a resync instead of failing.

type wrappedEntries struct {
	Data []Entry `json:"data"`
}

type wrappedEntry struct {
	Data *Entry `json:"data"`
}

// decodeEntries extracts a cart collection from a response body. The second
// return value reports whether a recognized collection was present.
func decodeEntries(body []byte) ([]Entry, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, false
		}
		return entries, true
	}

	if trimmed[0] == '{' {
		var wrapped wrappedEntries
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, false
		}
		if wrapped.Data == nil {
			return nil, false
		}
		return wrapped.Data, true
	}

	return nil, false
}

// decodeEntry extracts a single cart entry, bare or wrapped under "data".
// A body that decodes but carries no entry id is treated as absent.
func decodeEntry(body []byte) (*Entry, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var wrapped wrappedEntry
	if err := json.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.ID != "" {
		return wrapped.Data, true
	}

	var entry Entry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return nil, false
	}
	if entry.ID == "" {
		return nil, false
	}
	return &entry, true
}
