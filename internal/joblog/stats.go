package joblog

import (
	"sort"
	"strings"
	"time"
)

// Default parameters for the two log views.
const (
	DefaultTableWindow     = 5
	DefaultStatsWindow     = 10
	DefaultPromptLimit     = 50
	DefaultPromptCharLimit = 120
)

// Event classification used for the edits-per-report metric.
const (
	eventTypeAdministrative = "administrative"
	sourceGenerateReport    = "generateReport"
	sourceUpdateInfo        = "update-pv-information"
)

// Bucket is one histogram bar.
type Bucket struct {
	Value string
	Count int
}

// Histogram groups entries by key and returns buckets sorted by descending
// count. Ties keep first-encountered order.
func Histogram(entries []Entry, key func(Entry) string) []Bucket {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, e := range entries {
		v := key(e)
		if v == "" {
			v = "—"
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	buckets := make([]Bucket, 0, len(order))
	for _, v := range order {
		buckets = append(buckets, Bucket{Value: v, Count: counts[v]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// LevelHistogram counts entries per log level.
func LevelHistogram(entries []Entry) []Bucket {
	return Histogram(entries, func(e Entry) string { return e.Level })
}

// SourceHistogram counts entries per event source.
func SourceHistogram(entries []Entry) []Bucket {
	return Histogram(entries, func(e Entry) string { return e.EventSource })
}

// TimeRange returns the min and max timestamps over entries with a
// parseable time. ok is false when no entry carries one.
func TimeRange(entries []Entry) (min, max time.Time, ok bool) {
	for _, e := range entries {
		if !e.HasTime() {
			continue
		}
		if !ok {
			min, max, ok = e.Time, e.Time, true
			continue
		}
		if e.Time.Before(min) {
			min = e.Time
		}
		if e.Time.After(max) {
			max = e.Time
		}
	}
	return min, max, ok
}

// Chronological returns the timed entries sorted oldest-first. Entries
// without a parseable timestamp are excluded; the input is not modified.
func Chronological(entries []Entry) []Entry {
	timed := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.HasTime() {
			timed = append(timed, e)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Time.Before(timed[j].Time)
	})
	return timed
}

// CompletionTimes extracts the numeric time_to_complete samples in entry
// order.
func CompletionTimes(entries []Entry) []float64 {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.HasTTC {
			values = append(values, e.TimeToComplete)
		}
	}
	return values
}

// RollingAverage computes the trailing-window mean for each sample. The
// window covers the last `window` qualifying samples; while fewer exist,
// the average runs over however many are available.
func RollingAverage(values []float64, window int) []float64 {
	if window <= 0 {
		window = 1
	}

	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ModelFrequency counts entries per trimmed model name. The empty string
// and the literal value "unknown" (any casing) are excluded; counting
// itself is case-sensitive.
func ModelFrequency(entries []Entry) []Bucket {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, e := range entries {
		model := strings.TrimSpace(e.Model)
		if model == "" || strings.EqualFold(model, "unknown") {
			continue
		}
		if _, seen := counts[model]; !seen {
			order = append(order, model)
		}
		counts[model]++
	}

	buckets := make([]Bucket, 0, len(order))
	for _, v := range order {
		buckets = append(buckets, Bucket{Value: v, Count: counts[v]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// Prompt is one row of the recent-prompts list.
type Prompt struct {
	Prompt  string
	Reply   string
	Session string
	Time    time.Time
}

// RecentPrompts walks entries newest-first and keeps the first occurrence
// of each distinct trimmed prompt, up to max rows.
func RecentPrompts(entries []Entry, max int) []Prompt {
	if max <= 0 {
		max = DefaultPromptLimit
	}

	seen := make(map[string]struct{})
	prompts := make([]Prompt, 0)

	for i := len(entries) - 1; i >= 0; i-- {
		p := strings.TrimSpace(entries[i].Input)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		prompts = append(prompts, Prompt{
			Prompt:  p,
			Reply:   strings.TrimSpace(entries[i].Output),
			Session: entries[i].Session,
			Time:    entries[i].Time,
		})
		if len(prompts) >= max {
			break
		}
	}
	return prompts
}

// Truncate shortens s to at most n characters, marking the cut with an
// ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// EditsPerReport pairs report-generation events with update events sharing
// the same file identifier and returns the mean update count per generated
// report, or 0 when no report was generated.
func EditsPerReport(entries []Entry) float64 {
	updates := make(map[string]int)
	var generated []string

	for _, e := range entries {
		if e.EventType != eventTypeAdministrative || e.FileID == "" {
			continue
		}
		switch e.EventSource {
		case sourceGenerateReport:
			generated = append(generated, e.FileID)
		case sourceUpdateInfo:
			updates[e.FileID]++
		}
	}

	if len(generated) == 0 {
		return 0
	}

	var total int
	for _, fileID := range generated {
		total += updates[fileID]
	}
	return float64(total) / float64(len(generated))
}
