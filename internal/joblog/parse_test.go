package joblog

import (
	"testing"
	"time"
)

func TestParseMixedStringArray(t *testing.T) {
	raw := []any{`{"level":"info"}`, "not json", ""}

	res := Parse(raw)

	if len(res.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(res.Entries))
	}
	if res.Entries[0].Level != "info" {
		t.Errorf("level = %q, want info", res.Entries[0].Level)
	}
	if len(res.BadLines) != 1 {
		t.Fatalf("got %d bad lines, want 1", len(res.BadLines))
	}
	if res.BadLines[0] != "not json" {
		t.Errorf("bad line = %q, original text must be preserved", res.BadLines[0])
	}
}

func TestParseObjectArray(t *testing.T) {
	raw := []any{
		map[string]any{"level": "info", "event_source": "engine"},
		map[string]any{"level": "error"},
		nil,
	}

	res := Parse(raw)
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2 (nil skipped)", len(res.Entries))
	}
	if len(res.BadLines) != 0 {
		t.Errorf("got %d bad lines, want 0", len(res.BadLines))
	}
}

func TestParseScalarElements(t *testing.T) {
	res := Parse([]any{float64(42), true})
	if len(res.Entries) != 0 {
		t.Errorf("scalars should not parse, got %d entries", len(res.Entries))
	}
	if len(res.BadLines) != 2 {
		t.Errorf("got %d bad lines, want 2", len(res.BadLines))
	}
}

func TestParseJSONLBlob(t *testing.T) {
	blob := "{\"level\":\"info\"}\n\n  \n{\"level\":\"warn\"}\nbroken line\n"

	res := Parse(blob)
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(res.Entries))
	}
	if len(res.BadLines) != 1 || res.BadLines[0] != "broken line" {
		t.Errorf("bad lines = %v, want [broken line]", res.BadLines)
	}
}

func TestParseSingleObject(t *testing.T) {
	res := Parse(map[string]any{"level": "debug"})
	if len(res.Entries) != 1 || res.Entries[0].Level != "debug" {
		t.Errorf("single object should parse to one entry, got %+v", res)
	}
}

func TestParseUnsupportedShape(t *testing.T) {
	for _, raw := range []any{nil, 3.14, true} {
		res := Parse(raw)
		if len(res.Entries) != 0 || len(res.BadLines) != 0 {
			t.Errorf("Parse(%v) should be empty, got %+v", raw, res)
		}
	}
}

func TestNormalizeFieldAliases(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
		get  func(Entry) string
		want string
	}{
		{"prompt fallback for input", map[string]any{"prompt": "vraag"}, func(e Entry) string { return e.Input }, "vraag"},
		{"input wins over prompt", map[string]any{"input": "a", "prompt": "b"}, func(e Entry) string { return e.Input }, "a"},
		{"results fallback for output", map[string]any{"results": "uit"}, func(e Entry) string { return e.Output }, "uit"},
		{"reply fallback for output", map[string]any{"reply": "re"}, func(e Entry) string { return e.Output }, "re"},
		{"engine_name fallback for model", map[string]any{"engine_name": "gpt-4o"}, func(e Entry) string { return e.Model }, "gpt-4o"},
		{"gebruikersID fallback for session", map[string]any{"gebruikersID": "u-1"}, func(e Entry) string { return e.Session }, "u-1"},
		{"sid fallback for session", map[string]any{"sid": "s-9"}, func(e Entry) string { return e.Session }, "s-9"},
		{
			"fileId from updated_data",
			map[string]any{"updated_data": map[string]any{"ID": "f-7"}},
			func(e Entry) string { return e.FileID },
			"f-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse([]any{tt.obj})
			if len(res.Entries) != 1 {
				t.Fatalf("got %d entries, want 1", len(res.Entries))
			}
			if got := tt.get(res.Entries[0]); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantTime bool
	}{
		{"rfc3339", "2025-05-01T10:30:00Z", true},
		{"no zone", "2025-05-01T10:30:00", true},
		{"space separated", "2025-05-01 10:30:00", true},
		{"microseconds", "2025-05-01T10:30:00.123456", true},
		{"garbage", "gisteren", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(map[string]any{"datetime_utc": tt.value})
			entry := res.Entries[0]
			if entry.HasTime() != tt.wantTime {
				t.Errorf("HasTime() = %v, want %v", entry.HasTime(), tt.wantTime)
			}
			if tt.wantTime {
				want := time.Date(2025, 5, 1, 10, 30, 0, entry.Time.Nanosecond(), time.UTC)
				if !entry.Time.Equal(want) {
					t.Errorf("Time = %v, want %v", entry.Time, want)
				}
			}
		})
	}
}

func TestNormalizeTimeToComplete(t *testing.T) {
	res := Parse([]any{
		map[string]any{"time_to_complete": 1.5},
		map[string]any{"time_to_complete": "fast"},
		map[string]any{"level": "info"},
	})

	if !res.Entries[0].HasTTC || res.Entries[0].TimeToComplete != 1.5 {
		t.Errorf("numeric ttc not captured: %+v", res.Entries[0])
	}
	if res.Entries[1].HasTTC {
		t.Error("non-numeric ttc must not count as a sample")
	}
	if res.Entries[2].HasTTC {
		t.Error("absent ttc must not count as a sample")
	}
}
