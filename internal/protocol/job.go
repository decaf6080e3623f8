package protocol

// Status is the server-reported processing state of a job.
type Status string

const (
	StatusDone    Status = "done"
	StatusWorking Status = "working"
	StatusError   Status = "error"
	// Jobs carrying analytics logs (statistical dashboard view).
	StatusALog Status = "aLog"
	// Jobs carrying text logs (tabular view).
	StatusTLog Status = "tLog"
)

// Terminal reports whether a status resolves a pending retry. A retry is
// considered acknowledged once the server reports the job as done or error
// again.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is one row of the server's job snapshot. Filename is the identity;
// no two jobs share one. The metadata fields are only populated once
// extraction has run. Logs holds the raw, heterogeneous log payload for
// aLog/tLog jobs and is interpreted by the joblog package.
type Job struct {
	Filename  string `json:"filename"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	Model     string `json:"model,omitempty"`

	Datum         string `json:"datum,omitempty"`
	Tijd          string `json:"tijd,omitempty"`
	Verdachte     string `json:"verdachte,omitempty"`
	Geboortedag   string `json:"geboortedag,omitempty"`
	Geboortestad  string `json:"geboortestad,omitempty"`
	Woonadres     string `json:"woonadres,omitempty"`
	Woonstad      string `json:"woonstad,omitempty"`
	Locatie       string `json:"locatie,omitempty"`
	Verbalisanten string `json:"verbalisanten,omitempty"`
	ProcesVerbaal string `json:"proces_verbaal,omitempty"`

	OriginalFilename string `json:"original_filename,omitempty"`

	Logs any `json:"logs,omitempty"`
}

// Snapshot is a full point-in-time listing of all jobs. It replaces any
// prior listing; order is display order as provided by the server. None is
// set when the server sent the "none" sentinel instead of a list. Skipped
// counts entries dropped during decoding because they had no filename.
type Snapshot struct {
	None    bool
	Jobs    []Job
	Skipped int
}
