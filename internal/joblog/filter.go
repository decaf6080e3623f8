package joblog

import "strings"

// Query filters displayed log entries. Search matches case-insensitively
// against a fixed set of fields; Level, Source and Session are exact
// matches. All set fields compose with logical AND. Filtering never
// mutates the underlying entry list, so clearing a query restores the
// full view.
type Query struct {
	Search  string
	Level   string
	Source  string
	Session string
}

// Empty reports whether the query matches everything.
func (q Query) Empty() bool {
	return q.Search == "" && q.Level == "" && q.Source == "" && q.Session == ""
}

// Filter returns the entries matching q, preserving order.
func Filter(entries []Entry, q Query) []Entry {
	if q.Empty() {
		return entries
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Entry, 0, len(entries))

	for _, e := range entries {
		if q.Level != "" && e.Level != q.Level {
			continue
		}
		if q.Source != "" && e.EventSource != q.Source {
			continue
		}
		if q.Session != "" && e.Session != q.Session {
			continue
		}
		if needle != "" && !matchesSearch(e, needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesSearch(e Entry, needle string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		e.Input,
		e.Output,
		e.EventType,
		e.EventSource,
		e.Level,
		e.Session,
		e.Activity,
		e.FileID,
		e.Model,
	}, " "))
	return strings.Contains(haystack, needle)
}
