package translate

import (
	"encoding/json"
	"strings"
)

// parseBatchResponse extracts id→translation entries from a batch response.
//
// Strict parse first: the whole body as a JSON array. When that fails, scan
// line by line for recoverable {id, translation} fragments - models wrap
// otherwise-valid output in commentary or code fences often enough that
// throwing the response away would waste a full batch call.
//
// Entries with an id outside [0, size), duplicated ids, and empty
// translations are discarded.
func parseBatchResponse(raw string, size int) map[int]string {
	body := stripCodeFence(strings.TrimSpace(raw))

	var entries []rawEntry
	if err := json.Unmarshal([]byte(body), &entries); err == nil {
		return collectEntries(entries, size)
	}

	// Degraded path: recover well-formed fragments from a malformed whole.
	var recovered []rawEntry
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, `"id"`) || !strings.Contains(line, `"translation"`) {
			continue
		}
		line = strings.TrimSuffix(line, ",")
		var entry rawEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		recovered = append(recovered, entry)
	}
	return collectEntries(recovered, size)
}

// rawEntry uses a pointer id to distinguish "id": 0 from a missing field.
type rawEntry struct {
	ID          *int   `json:"id"`
	Translation string `json:"translation"`
}

func collectEntries(entries []rawEntry, size int) map[int]string {
	out := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.ID == nil || *e.ID < 0 || *e.ID >= size {
			continue
		}
		if _, dup := out[*e.ID]; dup {
			continue
		}
		if e.Translation == "" {
			continue
		}
		out[*e.ID] = e.Translation
	}
	return out
}

// stripCodeFence unwraps a ```-fenced block, tolerating a json language tag.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
