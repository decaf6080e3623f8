// Package reconcile keeps the rendered job table consistent with server
// snapshots while tracking client actions the server has not yet
// acknowledged. It is pure state: no I/O, no locks. All mutation happens
// from a single event-processing context (the TUI update loop or a
// one-shot command).
package reconcile

import (
	"log/slog"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

// RowKind classifies how a job row is rendered.
type RowKind int

const (
	// RowInfo is the single informational row for the "no jobs" sentinel.
	RowInfo RowKind = iota
	// RowDone offers View and Delete.
	RowDone
	// RowWorking shows a progress indicator and offers Cancel.
	RowWorking
	// RowError offers Retry and Delete.
	RowError
	// RowAnalyticsLog offers the statistical log dashboard.
	RowAnalyticsLog
	// RowTextLog offers the tabular log viewer.
	RowTextLog
	// RowUnknown shows the raw status string with no actions.
	RowUnknown
	// RowDeleting is the optimistic state after a delete was sent.
	RowDeleting
	// RowCancelling is the optimistic state after a cancel was sent.
	RowCancelling
)

// Row is one logical row of the job table.
type Row struct {
	Job  protocol.Job
	Kind RowKind
}

// pendingAction is a single-shot optimistic override, overwritten by the
// next snapshot.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingDelete
	pendingCancel
)

// Sender emits outbound protocol messages. Implemented by the socket
// session; tests substitute a recorder.
type Sender interface {
	Send(msg protocol.Outbound) error
}

// Reconciler merges server snapshots with locally-initiated actions.
// Last snapshot wins: each ApplySnapshot fully replaces the prior render,
// with the in-flight retry set as the only client-side override that
// survives across snapshots.
type Reconciler struct {
	sender   Sender
	logger   *slog.Logger
	snapshot protocol.Snapshot
	hasSnap  bool

	inFlight map[string]struct{}
	pending  map[string]pendingAction

	// generation counts applied snapshots; the wire carries no sequence
	// number, so this only aids debugging and never discards a snapshot.
	generation uint64
}

// New creates a reconciler that emits actions through sender.
func New(sender Sender, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		sender:   sender,
		logger:   logger,
		inFlight: make(map[string]struct{}),
		pending:  make(map[string]pendingAction),
	}
}

// ApplySnapshot replaces the current table state with snap and returns the
// rendered rows. Filenames whose retry resolved (reported done or error in
// this snapshot) leave the in-flight set; single-shot optimistic overrides
// are cleared unconditionally.
func (r *Reconciler) ApplySnapshot(snap protocol.Snapshot) []Row {
	for _, job := range snap.Jobs {
		if _, ok := r.inFlight[job.Filename]; ok && job.Status.Terminal() {
			delete(r.inFlight, job.Filename)
			r.logger.Debug("retry resolved", "filename", job.Filename, "status", job.Status)
		}
	}

	if snap.Skipped > 0 {
		r.logger.Warn("snapshot entries without filename skipped", "count", snap.Skipped)
	}

	r.snapshot = snap
	r.hasSnap = true
	r.pending = make(map[string]pendingAction)
	r.generation++

	return r.Rows()
}

// Rows renders the current logical table. Row kind is a pure function of
// (status, in-flight membership, pending override).
func (r *Reconciler) Rows() []Row {
	if !r.hasSnap || r.snapshot.None {
		return []Row{{Kind: RowInfo}}
	}

	rows := make([]Row, 0, len(r.snapshot.Jobs))
	for _, job := range r.snapshot.Jobs {
		rows = append(rows, Row{Job: job, Kind: r.kindFor(job)})
	}
	return rows
}

func (r *Reconciler) kindFor(job protocol.Job) RowKind {
	switch r.pending[job.Filename] {
	case pendingDelete:
		return RowDeleting
	case pendingCancel:
		return RowCancelling
	}

	// A pending retry forces the working view even if a stale snapshot
	// briefly shows otherwise.
	if _, ok := r.inFlight[job.Filename]; ok {
		return RowWorking
	}

	switch job.Status {
	case protocol.StatusDone:
		return RowDone
	case protocol.StatusWorking:
		return RowWorking
	case protocol.StatusError:
		return RowError
	case protocol.StatusALog:
		return RowAnalyticsLog
	case protocol.StatusTLog:
		return RowTextLog
	default:
		return RowUnknown
	}
}

// InFlight reports whether a retry for filename is awaiting resolution.
func (r *Reconciler) InFlight(filename string) bool {
	_, ok := r.inFlight[filename]
	return ok
}

// Generation returns the number of snapshots applied so far.
func (r *Reconciler) Generation() uint64 {
	return r.generation
}

// RequestRetry submits a retry for filename. It is idempotent: a second
// call before the server reports a terminal status for the filename emits
// nothing. On success the row renders as working until resolution.
func (r *Reconciler) RequestRetry(filename string, cfg protocol.RetryConfig) error {
	if _, ok := r.inFlight[filename]; ok {
		r.logger.Debug("retry already in flight, ignoring", "filename", filename)
		return nil
	}

	if err := r.sender.Send(protocol.NewRetry(filename, cfg)); err != nil {
		return err
	}

	r.inFlight[filename] = struct{}{}
	return nil
}

// RequestCancel sends a cancellation and switches the row to an optimistic
// cancelling state. Fire-and-forget: confirmation only arrives via the
// next snapshot.
func (r *Reconciler) RequestCancel(filename string) error {
	if err := r.sender.Send(protocol.NewCancel(filename)); err != nil {
		return err
	}
	r.pending[filename] = pendingCancel
	return nil
}

// RequestDelete sends a deletion and switches the row to an optimistic
// deleting state. Error rows were never fully processed and use the
// delete-unfinished-pv action.
func (r *Reconciler) RequestDelete(filename string, unfinished bool) error {
	msg := protocol.NewDelete(filename)
	if unfinished {
		msg = protocol.NewDeleteUnfinished(filename)
	}
	if err := r.sender.Send(msg); err != nil {
		return err
	}
	r.pending[filename] = pendingDelete
	return nil
}
