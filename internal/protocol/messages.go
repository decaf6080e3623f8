// Package protocol defines the JSON message types exchanged with the
// proces-verbaal processing backend over the websocket connection.
// Outbound messages are discriminated by the "action" field, inbound
// messages by the "response" field.
package protocol

import "encoding/json"

// Action identifies an outbound message type.
type Action string

const (
	ActionConnection        Action = "connection"
	ActionHeartbeat         Action = "heartbeat"
	ActionTableUpdate       Action = "table-update"
	ActionRetry             Action = "pv-individual-retry"
	ActionCancelTask        Action = "cancel-task"
	ActionDeletePV          Action = "delete-pv"
	ActionDeleteUnfinished  Action = "delete-unfinished-pv"
	ActionUpdateInfo        Action = "update-pv-information"
	ActionUpdateAndGenerate Action = "update-and-generate-pdf"
	ActionRequestThought    Action = "requested-thought"
	// The server expects the capitalized form for extraction block requests.
	ActionBlocks Action = "Blocks"
)

// RetryConfig carries the processing options for a retry submission.
type RetryConfig struct {
	Advanced bool   `json:"advanced"`
	Model    string `json:"model"`
}

// JobUpdate is the edited-metadata record sent with update-pv-information
// and update-and-generate-pdf. ID is the job filename.
type JobUpdate struct {
	ID            string `json:"ID"`
	ProcesVerbaal string `json:"proces_verbaal,omitempty"`
	Datum         string `json:"datum,omitempty"`
	Tijd          string `json:"tijd,omitempty"`
	Verdachte     string `json:"verdachte,omitempty"`
	Geboortedag   string `json:"geboortedag,omitempty"`
	Geboortestad  string `json:"geboortestad,omitempty"`
	Woonadres     string `json:"woonadres,omitempty"`
	Woonstad      string `json:"woonstad,omitempty"`
	Locatie       string `json:"locatie,omitempty"`
	Verbalisanten string `json:"verbalisanten,omitempty"`
}

// Outbound is a client-to-server message. Only the fields relevant for the
// given Action are populated; use the constructors below.
type Outbound struct {
	Action      Action       `json:"action"`
	File        string       `json:"file,omitempty"`
	Filename    string       `json:"filename,omitempty"`
	Config      *RetryConfig `json:"config,omitempty"`
	CurrentData *JobUpdate   `json:"currentData,omitempty"`
	Data        *JobUpdate   `json:"data,omitempty"`
	Context     string       `json:"context,omitempty"`
}

// NewConnection builds the initial handshake message.
func NewConnection() Outbound {
	return Outbound{Action: ActionConnection}
}

// NewHeartbeat builds a liveness ping.
func NewHeartbeat() Outbound {
	return Outbound{Action: ActionHeartbeat}
}

// NewTableUpdate requests a fresh job snapshot.
func NewTableUpdate() Outbound {
	return Outbound{Action: ActionTableUpdate}
}

// NewRetry builds a retry submission for a failed job.
func NewRetry(filename string, cfg RetryConfig) Outbound {
	return Outbound{Action: ActionRetry, File: filename, Config: &cfg}
}

// NewCancel builds a cancellation for a working job.
func NewCancel(filename string) Outbound {
	return Outbound{Action: ActionCancelTask, Filename: filename}
}

// NewDelete builds a deletion for a finished job.
func NewDelete(filename string) Outbound {
	return Outbound{Action: ActionDeletePV, Filename: filename}
}

// NewDeleteUnfinished builds a deletion for a job that errored before
// completing.
func NewDeleteUnfinished(filename string) Outbound {
	return Outbound{Action: ActionDeleteUnfinished, Filename: filename}
}

// NewUpdateInfo builds a metadata update for an existing report.
func NewUpdateInfo(update JobUpdate) Outbound {
	return Outbound{Action: ActionUpdateInfo, CurrentData: &update}
}

// NewUpdateAndGenerate builds a metadata update that also regenerates the
// PDF; the server answers with a report message.
func NewUpdateAndGenerate(update JobUpdate) Outbound {
	return Outbound{Action: ActionUpdateAndGenerate, Data: &update}
}

// NewRequestThought asks the server for text suggestions in the given
// report context.
func NewRequestThought(filename, context string) Outbound {
	return Outbound{Action: ActionRequestThought, Filename: filename, Context: context}
}

// NewBlocksRequest asks the server for the extracted information blocks of
// a report.
func NewBlocksRequest(filename string) Outbound {
	return Outbound{Action: ActionBlocks, Filename: filename}
}

// Encode marshals an outbound message to its wire form.
func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}
