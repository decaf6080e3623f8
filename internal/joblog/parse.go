// Package joblog parses the heterogeneous log payloads attached to
// processing jobs and derives the analytics shown in the log viewers.
// Payloads arrive in four shapes: an array of structured objects, an array
// of JSON-encoded strings, a single newline-delimited JSON blob, or a
// single object. Parsing is best-effort per element: one malformed line
// never aborts the rest.
package joblog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one normalized log record. Fields are filled from the first
// matching key of the known aliases; absent fields stay empty. Time is the
// zero value when no timestamp could be parsed — such entries are excluded
// from time-based views but retained everywhere else.
type Entry struct {
	Time        time.Time
	Level       string
	EventSource string
	EventType   string
	Session     string
	Activity    string
	Input       string
	Output      string
	Model       string
	FileID      string

	// TimeToComplete is in seconds; HasTTC distinguishes a real zero from
	// an absent or non-numeric value.
	TimeToComplete float64
	HasTTC         bool

	// Raw keeps the original object for detail display.
	Raw map[string]any
}

// HasTime reports whether the entry carries a parseable timestamp.
func (e Entry) HasTime() bool {
	return !e.Time.IsZero()
}

// Result is the outcome of parsing one raw payload. BadLines preserves the
// original text of elements that could not be parsed, for display; blank
// lines are skipped silently and counted nowhere.
type Result struct {
	Entries  []Entry
	BadLines []string
}

// Parse normalizes a raw log payload. Any shape outside the four accepted
// ones yields an empty result rather than an error.
func Parse(raw any) Result {
	var res Result

	switch v := raw.(type) {
	case []any:
		for _, el := range v {
			parseElement(el, &res)
		}

	case string:
		for _, line := range strings.Split(v, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			parseJSONLine(line, &res)
		}

	case map[string]any:
		res.Entries = append(res.Entries, normalize(v))
	}

	return res
}

func parseElement(el any, res *Result) {
	switch v := el.(type) {
	case nil:
		// skip

	case map[string]any:
		res.Entries = append(res.Entries, normalize(v))

	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return
		}
		parseJSONLine(s, res)

	default:
		// Numbers, booleans and other scalars are not log records.
		res.BadLines = append(res.BadLines, fmt.Sprint(v))
	}
}

func parseJSONLine(line string, res *Result) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
		res.BadLines = append(res.BadLines, line)
		return
	}
	res.Entries = append(res.Entries, normalize(obj))
}

// Timestamp layouts seen in backend log output.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
}

func normalize(obj map[string]any) Entry {
	entry := Entry{
		Level:       stringField(obj, "level"),
		EventSource: stringField(obj, "event_source"),
		EventType:   stringField(obj, "event_type"),
		Session:     stringField(obj, "sessieID", "gebruikersID", "sessionID", "sessionId", "sessieId", "sid"),
		Activity:    stringField(obj, "activiteitID"),
		Input:       stringField(obj, "input", "prompt"),
		Output:      stringField(obj, "output", "response", "reply", "completion", "results"),
		Model:       stringField(obj, "model", "engine_name", "providerModel"),
		FileID:      stringField(obj, "fileId"),
		Raw:         obj,
	}

	// update-pv-information events carry the file identity inside the
	// updated record.
	if entry.FileID == "" {
		if updated, ok := obj["updated_data"].(map[string]any); ok {
			entry.FileID = stringField(updated, "ID")
		}
	}

	if ts := stringField(obj, "datetime_utc", "datetime", "timestamp"); ts != "" {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				entry.Time = t.UTC()
				break
			}
		}
	}

	if ttc, ok := obj["time_to_complete"].(float64); ok {
		entry.TimeToComplete = ttc
		entry.HasTTC = true
	}

	return entry
}

// stringField returns the first present, non-null value among keys,
// rendered as a string.
func stringField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		val, ok := obj[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			return v
		case float64, bool:
			return fmt.Sprint(v)
		}
	}
	return ""
}
