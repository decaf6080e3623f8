package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/pvdash/internal/joblog"
	"github.com/raphaelgruber/pvdash/internal/protocol"
	"github.com/raphaelgruber/pvdash/internal/reconcile"
	"github.com/raphaelgruber/pvdash/internal/socket"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Follow the job table live",
	Long: `Open the interactive dashboard. The job table refreshes
automatically; jobs can be retried, cancelled and deleted in place, and
log jobs open their own viewer.

Keys:
  ↑/↓, j/k   move
  r          retry the selected failed job
  c          cancel the selected working job
  d          delete the selected job
  l, enter   open the log viewer for a log job
  q          quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard needs a terminal; use 'pvdash jobs' for plain output")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := dialSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.RequestSnapshot(); err != nil {
		return fmt.Errorf("request initial snapshot: %w", err)
	}

	model := newDashboardModel(sess)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	if m, ok := finalModel.(dashboardModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

// socketMsg wraps one inbound protocol message for the update loop.
type socketMsg struct {
	msg protocol.Inbound
}

// socketClosedMsg signals that the event stream ended.
type socketClosedMsg struct{}

// dashboardModel is the bubbletea model for the live job table.
type dashboardModel struct {
	sess    *socket.Session
	rec     *reconcile.Reconciler
	rows    []reconcile.Row
	cursor  int
	spinner spinner.Model
	theme   Theme

	logs *logsModel

	status string
	width  int
	height int

	quitting bool
	err      error
}

// newDashboardModel creates the dashboard over an established session.
func newDashboardModel(sess *socket.Session) dashboardModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return dashboardModel{
		sess:    sess,
		rec:     reconcile.New(sess, logger),
		spinner: sp,
		theme:   defaultTheme,
		status:  "Connecting…",
	}
}

// Init starts the spinner and the event pump.
func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent delivers the next inbound message as a tea.Msg.
func (m dashboardModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.sess.Events()
		if !ok {
			return socketClosedMsg{}
		}
		return socketMsg{msg: msg}
	}
}

// Update handles messages and returns the updated model.
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.logs != nil {
			m.logs.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.logs != nil {
			return m.updateLogsView(msg)
		}
		return m.handleKey(msg)

	case socketMsg:
		return m.handleSocket(msg.msg)

	case socketClosedMsg:
		m.err = fmt.Errorf("connection to the server was lost")
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "r":
		row, ok := m.selectedRow()
		if ok && row.Kind == reconcile.RowError {
			if err := m.rec.RequestRetry(row.Job.Filename, protocol.RetryConfig{
				Advanced: cfg.Advanced,
				Model:    cfg.DefaultModel,
			}); err != nil {
				m.status = fmt.Sprintf("Retry failed: %v", err)
			} else {
				m.status = fmt.Sprintf("Retrying %s", row.Job.Filename)
				m.rows = m.rec.Rows()
			}
		}

	case "c":
		row, ok := m.selectedRow()
		if ok && row.Kind == reconcile.RowWorking {
			if err := m.rec.RequestCancel(row.Job.Filename); err != nil {
				m.status = fmt.Sprintf("Cancel failed: %v", err)
			} else {
				m.status = fmt.Sprintf("Cancelling %s", row.Job.Filename)
				m.rows = m.rec.Rows()
			}
		}

	case "d":
		row, ok := m.selectedRow()
		if ok && row.Kind != reconcile.RowInfo && row.Kind != reconcile.RowDeleting {
			unfinished := row.Kind == reconcile.RowError
			if err := m.rec.RequestDelete(row.Job.Filename, unfinished); err != nil {
				m.status = fmt.Sprintf("Delete failed: %v", err)
			} else {
				m.status = fmt.Sprintf("Deleting %s", row.Job.Filename)
				m.rows = m.rec.Rows()
			}
		}

	case "l", "enter":
		row, ok := m.selectedRow()
		if ok && (row.Kind == reconcile.RowAnalyticsLog || row.Kind == reconcile.RowTextLog) {
			lv := newLogsModel(row.Job.Filename, row.Job.Logs, row.Kind == reconcile.RowAnalyticsLog, m.theme)
			lv.resize(m.width, m.height)
			m.logs = &lv
		}
	}

	return m, nil
}

// updateLogsView forwards keys to the log viewer; esc returns to the table.
func (m dashboardModel) updateLogsView(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && !m.logs.searchFocused() {
		m.logs = nil
		return m, nil
	}

	cmd := m.logs.update(msg)
	return m, cmd
}

func (m dashboardModel) handleSocket(msg protocol.Inbound) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case protocol.Snapshot:
		m.rows = m.rec.ApplySnapshot(v)
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.status = ""

	case protocol.ServerError:
		m.status = fmt.Sprintf("Server error: %s", v.Message)

	case protocol.LogsUpdate:
		if m.logs != nil {
			m.logs.reload(v.Raw)
		}
	}

	return m, m.waitForEvent()
}

func (m dashboardModel) selectedRow() (reconcile.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return reconcile.Row{}, false
	}
	return m.rows[m.cursor], true
}

// View renders the dashboard.
func (m dashboardModel) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	return v
}

func (m dashboardModel) renderContent() string {
	if m.quitting {
		return ""
	}
	if m.logs != nil {
		return m.logs.view()
	}

	var b strings.Builder
	b.WriteString(m.theme.headerStyle().Render("Proces-verbaal jobs"))
	b.WriteString("\n\n")

	if m.rec.Generation() == 0 {
		b.WriteString(fmt.Sprintf("%s Waiting for the first snapshot…\n", m.spinner.View()))
		return b.String()
	}

	header := fmt.Sprintf("  %-40s %-14s %-20s %s", "FILENAME", "STATUS", "CREATED", "MODEL")
	b.WriteString(m.theme.hintStyle().Render(header))
	b.WriteString("\n")

	for i, row := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = m.theme.selectedStyle().Render("> ")
		}

		if row.Kind == reconcile.RowInfo {
			b.WriteString(cursor + m.theme.hintStyle().Render("No documents uploaded yet") + "\n")
			continue
		}

		line := fmt.Sprintf("%-40s %-14s %-20s %s",
			row.Job.Filename, m.renderStatus(row), row.Job.CreatedAt, row.Job.Model)
		b.WriteString(cursor + line + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.theme.pendingStyle().Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.theme.hintStyle().Render("r retry · c cancel · d delete · l logs · q quit"))
	return b.String()
}

func (m dashboardModel) renderStatus(row reconcile.Row) string {
	switch row.Kind {
	case reconcile.RowDone:
		return m.theme.doneStyle().Render("done")
	case reconcile.RowWorking:
		return m.theme.workingStyle().Render(m.spinner.View() + " working")
	case reconcile.RowError:
		return m.theme.errorStyle().Render("error")
	case reconcile.RowAnalyticsLog:
		return "logs (stats)"
	case reconcile.RowTextLog:
		return "logs (text)"
	case reconcile.RowDeleting:
		return m.theme.pendingStyle().Render("deleting…")
	case reconcile.RowCancelling:
		return m.theme.pendingStyle().Render("cancelling…")
	default:
		return string(row.Job.Status)
	}
}

// logCount is a small helper for the log viewer footer.
func logCount(entries []joblog.Entry, bad int) string {
	if bad == 0 {
		return fmt.Sprintf("%d entries", len(entries))
	}
	return fmt.Sprintf("%d entries, %d unparseable", len(entries), bad)
}
