package joblog

import "testing"

func testEntries() []Entry {
	return []Entry{
		{Level: "info", EventSource: "engine", Session: "s-1", Input: "Genereer rapport", Output: "klaar"},
		{Level: "error", EventSource: "engine", Session: "s-1", Input: "retry upload"},
		{Level: "info", EventSource: "ui", Session: "s-2", Model: "gpt-4o"},
	}
}

func TestFilterEmptyQueryReturnsAll(t *testing.T) {
	entries := testEntries()
	got := Filter(entries, Query{})
	if len(got) != len(entries) {
		t.Errorf("empty query returned %d entries, want %d", len(got), len(entries))
	}
}

func TestFilterExactMatches(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  int
	}{
		{"by level", Query{Level: "info"}, 2},
		{"by source", Query{Source: "ui"}, 1},
		{"by session", Query{Session: "s-1"}, 2},
		{"no match", Query{Level: "debug"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(testEntries(), tt.query); len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFilterSearchCaseInsensitive(t *testing.T) {
	got := Filter(testEntries(), Query{Search: "RAPPORT"})
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Input != "Genereer rapport" {
		t.Errorf("matched wrong entry: %+v", got[0])
	}
}

func TestFilterSearchCoversModelField(t *testing.T) {
	if got := Filter(testEntries(), Query{Search: "gpt-4o"}); len(got) != 1 {
		t.Errorf("search should cover the model field, got %d entries", len(got))
	}
}

func TestFiltersComposeWithAnd(t *testing.T) {
	got := Filter(testEntries(), Query{Level: "info", Session: "s-1"})
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}

	if got := Filter(testEntries(), Query{Level: "error", Search: "rapport"}); len(got) != 0 {
		t.Errorf("AND composition violated, got %d entries", len(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	entries := testEntries()
	_ = Filter(entries, Query{Level: "error"})

	if len(entries) != 3 {
		t.Errorf("input length changed to %d", len(entries))
	}
	if entries[0].Level != "info" {
		t.Error("input order changed")
	}
}
