package sources

import (
	"encoding/json"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

// Message is a cross-client payload delivered over the message channel.
// Only the lhresults field is meaningful to intake; everything else is
// ignored.
type Message struct {
	Sender    string          `json:"-"`
	LHResults json.RawMessage `json:"lhresults"`
}

// MessageGate accepts report payloads only from the client that opened this
// viewer. Messages from any other sender, or without an lhresults field,
// are dropped without effect.
type MessageGate struct {
	opener string
}

// NewMessageGate builds a gate for the given opener identity. An empty
// opener means this viewer was not opened by another client and the gate
// accepts nothing.
func NewMessageGate(opener string) *MessageGate {
	return &MessageGate{opener: opener}
}

// Opened reports whether this viewer has a recognized opener to signal
// readiness to.
func (g *MessageGate) Opened() bool {
	return g.opener != ""
}

// Accept returns the report carried by msg when the sender is the
// recognized opener and the lhresults field is present. ok is false in
// every other case, including a malformed report body.
func (g *MessageGate) Accept(msg Message) (domain.ReportPayload, bool) {
	if g.opener == "" || msg.Sender != g.opener {
		return domain.ReportPayload{}, false
	}
	if len(msg.LHResults) == 0 {
		return domain.ReportPayload{}, false
	}
	payload, err := domain.ParseReport(msg.LHResults)
	if err != nil {
		return domain.ReportPayload{}, false
	}
	return payload, true
}
