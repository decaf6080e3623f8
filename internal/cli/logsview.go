package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/pvdash/internal/joblog"
)

// logsModel is the in-dashboard viewer for a job's log payload. It offers
// two modes: a chronological table and a statistics summary. Search and
// the exact-match filters compose; filtering never touches the parsed
// entries themselves.
type logsModel struct {
	filename string
	result   joblog.Result
	stats    bool
	theme    Theme

	search      textinput.Model
	levelFilter string
	offset      int
	width       int
	height      int
}

// Log levels cycled by the level filter key.
var levelCycle = []string{"", "info", "warning", "error"}

func newLogsModel(filename string, raw any, stats bool, theme Theme) logsModel {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.SetWidth(30)

	return logsModel{
		filename: filename,
		result:   joblog.Parse(raw),
		stats:    stats,
		theme:    theme,
		search:   ti,
		height:   24,
		width:    80,
	}
}

// reload replaces the payload when the server pushes fresh logs.
func (m *logsModel) reload(raw any) {
	m.result = joblog.Parse(raw)
	m.offset = 0
}

func (m *logsModel) resize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func (m *logsModel) searchFocused() bool {
	return m.search.Focused()
}

// update handles one key press. The caller intercepts esc when search is
// not focused.
func (m *logsModel) update(msg tea.KeyPressMsg) tea.Cmd {
	if m.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.offset = 0
		return cmd
	}

	switch msg.String() {
	case "/":
		return m.search.Focus()

	case "tab":
		m.stats = !m.stats

	case "f":
		m.levelFilter = nextLevel(m.levelFilter)
		m.offset = 0

	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}

	case "down", "j":
		if m.offset < len(m.filtered())-1 {
			m.offset++
		}

	case "g":
		m.offset = 0
	}

	return nil
}

func nextLevel(current string) string {
	for i, lvl := range levelCycle {
		if lvl == current {
			return levelCycle[(i+1)%len(levelCycle)]
		}
	}
	return ""
}

func (m *logsModel) filtered() []joblog.Entry {
	return joblog.Filter(m.result.Entries, joblog.Query{
		Search: m.search.Value(),
		Level:  m.levelFilter,
	})
}

func (m *logsModel) view() string {
	var b strings.Builder

	title := fmt.Sprintf("Logs: %s", m.filename)
	b.WriteString(m.theme.headerStyle().Render(title))
	b.WriteString("  ")
	b.WriteString(m.search.View())
	if m.levelFilter != "" {
		b.WriteString("  " + m.theme.pendingStyle().Render("level="+m.levelFilter))
	}
	b.WriteString("\n\n")

	entries := m.filtered()
	if m.stats {
		b.WriteString(m.renderStats(entries))
	} else {
		b.WriteString(m.renderTable(entries))
	}

	b.WriteString("\n" + m.theme.hintStyle().Render(
		logCount(entries, len(m.result.BadLines))+
			" · tab stats · / search · f level · esc back"))
	return b.String()
}

func (m *logsModel) renderTable(entries []joblog.Entry) string {
	if len(entries) == 0 {
		return m.theme.hintStyle().Render("No log entries match.") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%-20s %-7s %-18s %s", "TIME", "LEVEL", "SOURCE", "MESSAGE")
	b.WriteString(m.theme.hintStyle().Render(header) + "\n")

	visible := m.height - 8
	if visible < 3 {
		visible = 3
	}

	end := m.offset + visible
	if end > len(entries) {
		end = len(entries)
	}

	for _, e := range entries[m.offset:end] {
		ts := ""
		if e.HasTime() {
			ts = e.Time.Format("2006-01-02 15:04:05")
		}
		message := e.Input
		if message == "" {
			message = e.Output
		}

		line := fmt.Sprintf("%-20s %-7s %-18s %s",
			ts, e.Level, e.EventSource, joblog.Truncate(message, m.width-50))
		switch e.Level {
		case "error":
			line = m.theme.errorStyle().Render(line)
		case "warning", "warn":
			line = m.theme.workingStyle().Render(line)
		}
		b.WriteString(line + "\n")
	}

	if end < len(entries) {
		b.WriteString(m.theme.hintStyle().Render(fmt.Sprintf("… %d more", len(entries)-end)) + "\n")
	}
	return b.String()
}

func (m *logsModel) renderStats(entries []joblog.Entry) string {
	var b strings.Builder

	if min, max, ok := joblog.TimeRange(entries); ok {
		b.WriteString(fmt.Sprintf("Range: %s — %s\n\n",
			min.Format("2006-01-02 15:04"), max.Format("2006-01-02 15:04")))
	}

	b.WriteString(m.renderHistogram("Levels", joblog.LevelHistogram(entries)))
	b.WriteString(m.renderHistogram("Sources", joblog.SourceHistogram(entries)))
	b.WriteString(m.renderHistogram("Models", joblog.ModelFrequency(entries)))

	times := joblog.CompletionTimes(joblog.Chronological(entries))
	if len(times) > 0 {
		rolling := joblog.RollingAverage(times, joblog.DefaultStatsWindow)
		b.WriteString(fmt.Sprintf("Completion time: %.2fs rolling avg (%d samples)\n",
			rolling[len(rolling)-1], len(times)))
		b.WriteString(renderSparkline(rolling) + "\n")
	}

	b.WriteString(fmt.Sprintf("\nEdits per generated report: %.2f\n", joblog.EditsPerReport(entries)))

	prompts := joblog.RecentPrompts(entries, 5)
	if len(prompts) > 0 {
		b.WriteString("\nRecent prompts:\n")
		for _, p := range prompts {
			b.WriteString("  • " + joblog.Truncate(p.Prompt, m.width-6) + "\n")
		}
	}
	return b.String()
}

func (m *logsModel) renderHistogram(title string, buckets []joblog.Bucket) string {
	if len(buckets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.headerStyle().Render(title) + "\n")
	for _, bucket := range buckets {
		b.WriteString(fmt.Sprintf("  %-20s %4d %s\n",
			joblog.Truncate(bucket.Value, 20), bucket.Count,
			m.theme.doneStyle().Render(strings.Repeat("▇", barWidth(bucket.Count, buckets)))))
	}
	b.WriteString("\n")
	return b.String()
}

// Sparkline cells, lowest to highest.
var sparkCells = []rune("▁▂▃▄▅▆▇█")

func renderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if max > min {
			idx = int((v - min) / (max - min) * float64(len(sparkCells)-1))
		}
		b.WriteRune(sparkCells[idx])
	}
	return b.String()
}
