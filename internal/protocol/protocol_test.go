package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeSnapshotSentinel(t *testing.T) {
	msg, err := Decode([]byte(`{"response":"table-update","data":"none"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	snap, ok := msg.(Snapshot)
	if !ok {
		t.Fatalf("Decode() = %T, want Snapshot", msg)
	}
	if !snap.None {
		t.Error("sentinel snapshot should have None set")
	}
	if len(snap.Jobs) != 0 {
		t.Errorf("sentinel snapshot has %d jobs, want 0", len(snap.Jobs))
	}
}

func TestDecodeSnapshotJobs(t *testing.T) {
	raw := `{"response":"pv-update","data":[
		{"filename":"a.pdf","status":"done","created_at":"2025-05-01T10:00:00","model":"gpt-4o"},
		{"filename":"b.pdf","status":"working"},
		{"status":"error"},
		{"filename":"c.pdf","status":"somethingNew"}
	]}`

	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	snap := msg.(Snapshot)
	if snap.None {
		t.Error("job list snapshot should not be the sentinel")
	}
	if len(snap.Jobs) != 3 {
		t.Fatalf("got %d jobs, want 3 (entry without filename skipped)", len(snap.Jobs))
	}
	if snap.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", snap.Skipped)
	}

	// Order is display order, as provided by the server.
	wantOrder := []string{"a.pdf", "b.pdf", "c.pdf"}
	for i, want := range wantOrder {
		if snap.Jobs[i].Filename != want {
			t.Errorf("jobs[%d].Filename = %q, want %q", i, snap.Jobs[i].Filename, want)
		}
	}

	if snap.Jobs[2].Status == StatusDone || snap.Jobs[2].Status.Terminal() {
		t.Errorf("unknown status %q must not be terminal", snap.Jobs[2].Status)
	}
}

func TestDecodeMessageTypes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"connected", `{"response":"connected"}`, Connected{}},
		{"heartbeat", `{"response":"heartbeat"}`, Heartbeat{}},
		{"report", `{"response":"report","data":"/download/a.pdf"}`, Report{URL: "/download/a.pdf"}},
		{"error", `{"response":"error","data":"boom"}`, ServerError{Message: "boom"}},
		{
			"thought-suggestions",
			`{"response":"thought-suggestions","data":["one","two"]}`,
			ThoughtSuggestions{Suggestions: []string{"one", "two"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			switch want := tt.want.(type) {
			case Report:
				if got := msg.(Report); got != want {
					t.Errorf("got %+v, want %+v", got, want)
				}
			case ServerError:
				if got := msg.(ServerError); got != want {
					t.Errorf("got %+v, want %+v", got, want)
				}
			case ThoughtSuggestions:
				got := msg.(ThoughtSuggestions)
				if len(got.Suggestions) != len(want.Suggestions) {
					t.Errorf("got %d suggestions, want %d", len(got.Suggestions), len(want.Suggestions))
				}
			default:
				if _, ok := msg.(Connected); tt.name == "connected" && !ok {
					t.Errorf("got %T, want Connected", msg)
				}
				if _, ok := msg.(Heartbeat); tt.name == "heartbeat" && !ok {
					t.Errorf("got %T, want Heartbeat", msg)
				}
			}
		})
	}
}

func TestDecodeWordInterfaceData(t *testing.T) {
	raw := `{"response":"word-interface-data","data":{"Personen":["Jan Jansen"],"Locaties":["Utrecht","Amsterdam"]}}`

	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wid := msg.(WordInterfaceData)
	if len(wid.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(wid.Blocks))
	}
	if len(wid.Blocks["Locaties"]) != 2 {
		t.Errorf("Locaties block has %d entries, want 2", len(wid.Blocks["Locaties"]))
	}
}

func TestDecodeUnknownResponse(t *testing.T) {
	msg, err := Decode([]byte(`{"response":"future-feature","data":{"x":1}}`))
	if err != nil {
		t.Fatalf("unknown responses must not error, got %v", err)
	}

	unk, ok := msg.(Unknown)
	if !ok {
		t.Fatalf("got %T, want Unknown", msg)
	}
	if unk.Response != "future-feature" {
		t.Errorf("Response = %q, want future-feature", unk.Response)
	}
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("malformed frame should error")
	}
}

func TestOutboundWireShape(t *testing.T) {
	tests := []struct {
		name       string
		msg        Outbound
		wantAction string
		wantField  string
		wantValue  string
	}{
		{"retry", NewRetry("a.pdf", RetryConfig{Model: "gpt-4o"}), "pv-individual-retry", "file", "a.pdf"},
		{"cancel", NewCancel("b.pdf"), "cancel-task", "filename", "b.pdf"},
		{"delete", NewDelete("c.pdf"), "delete-pv", "filename", "c.pdf"},
		{"delete-unfinished", NewDeleteUnfinished("d.pdf"), "delete-unfinished-pv", "filename", "d.pdf"},
		{"thought", NewRequestThought("e.pdf", "ctx"), "requested-thought", "filename", "e.pdf"},
		{"blocks", NewBlocksRequest("f.pdf"), "Blocks", "filename", "f.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.msg.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err != nil {
				t.Fatalf("unmarshal encoded message: %v", err)
			}
			if fields["action"] != tt.wantAction {
				t.Errorf("action = %v, want %v", fields["action"], tt.wantAction)
			}
			if fields[tt.wantField] != tt.wantValue {
				t.Errorf("%s = %v, want %v", tt.wantField, fields[tt.wantField], tt.wantValue)
			}
		})
	}
}

func TestOutboundUpdateInfoShape(t *testing.T) {
	msg := NewUpdateInfo(JobUpdate{ID: "a.pdf", Datum: "2025-05-01", ProcesVerbaal: "tekst"})
	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var fields struct {
		Action      string     `json:"action"`
		CurrentData *JobUpdate `json:"currentData"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields.Action != "update-pv-information" {
		t.Errorf("action = %q", fields.Action)
	}
	if fields.CurrentData == nil || fields.CurrentData.ID != "a.pdf" {
		t.Errorf("currentData not carried: %+v", fields.CurrentData)
	}
}
