package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Inbound is a server-to-client message, decoded from the "response"
// discriminator. Unknown response values decode to Unknown rather than an
// error so future server versions degrade gracefully.
type Inbound interface {
	inbound()
}

// Connected acknowledges the connection handshake.
type Connected struct{}

// Heartbeat acknowledges a liveness ping.
type Heartbeat struct{}

// WordInterfaceData carries the extracted information blocks for a report,
// keyed by block name.
type WordInterfaceData struct {
	Blocks map[string][]string
}

// LogsUpdate carries a raw log payload pushed by the server. Raw keeps the
// decoded JSON value as-is; shape normalization is the joblog package's job.
type LogsUpdate struct {
	Raw any
}

// Report announces a generated PDF available for download.
type Report struct {
	URL string
}

// ThoughtSuggestions carries text suggestions for the report editor.
type ThoughtSuggestions struct {
	Suggestions []string
}

// ServerError is a server-reported failure.
type ServerError struct {
	Message string
}

// Unknown preserves messages with an unrecognized response value.
type Unknown struct {
	Response string
	Data     json.RawMessage
}

func (Connected) inbound()          {}
func (Heartbeat) inbound()          {}
func (Snapshot) inbound()           {}
func (WordInterfaceData) inbound()  {}
func (LogsUpdate) inbound()         {}
func (Report) inbound()             {}
func (ThoughtSuggestions) inbound() {}
func (ServerError) inbound()        {}
func (Unknown) inbound()            {}

type envelope struct {
	Response string          `json:"response"`
	Data     json.RawMessage `json:"data"`
}

var noneSentinel = []byte(`"none"`)

// Decode parses a raw inbound frame into its typed message.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Response {
	case "connected":
		return Connected{}, nil

	case "heartbeat":
		return Heartbeat{}, nil

	case "table-update", "pv-update":
		return decodeSnapshot(env.Data)

	case "word-interface-data":
		var blocks map[string][]string
		if err := json.Unmarshal(env.Data, &blocks); err != nil {
			return nil, fmt.Errorf("decode word-interface-data: %w", err)
		}
		return WordInterfaceData{Blocks: blocks}, nil

	case "logs-update":
		var raw any
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &raw); err != nil {
				return nil, fmt.Errorf("decode logs-update: %w", err)
			}
		}
		return LogsUpdate{Raw: raw}, nil

	case "report":
		var url string
		if err := json.Unmarshal(env.Data, &url); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		return Report{URL: url}, nil

	case "thought-suggestions":
		var suggestions []string
		if err := json.Unmarshal(env.Data, &suggestions); err != nil {
			return nil, fmt.Errorf("decode thought-suggestions: %w", err)
		}
		return ThoughtSuggestions{Suggestions: suggestions}, nil

	case "error":
		var msg string
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			// Some error payloads are structured; keep the raw text.
			msg = string(env.Data)
		}
		return ServerError{Message: msg}, nil

	default:
		return Unknown{Response: env.Response, Data: env.Data}, nil
	}
}

// decodeSnapshot handles the two snapshot payload shapes: the "none"
// sentinel and an ordered job list. Entries without a filename cannot be
// addressed by any action and are dropped; Skipped reports how many.
func decodeSnapshot(data json.RawMessage) (Snapshot, error) {
	if bytes.Equal(bytes.TrimSpace(data), noneSentinel) {
		return Snapshot{None: true}, nil
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := Snapshot{Jobs: make([]Job, 0, len(jobs))}
	for _, job := range jobs {
		if job.Filename == "" {
			snap.Skipped++
			continue
		}
		snap.Jobs = append(snap.Jobs, job)
	}
	return snap, nil
}
