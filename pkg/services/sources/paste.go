package sources

import "github.com/perf-tools/report-lens/pkg/models/domain"

// PasteCandidate is the result of interpreting clipboard text. Exactly one
// of GistID and Payload is set.
type PasteCandidate struct {
	GistID  string
	Payload *domain.ReportPayload
}

// InterpretPaste tries the two independent readings of pasted text in
// order: first as a gist URL, then as a raw JSON report. Each reading's
// failure is swallowed so the next one still runs; ok is false only when
// neither applies.
func InterpretPaste(text, trustedHost string) (PasteCandidate, bool) {
	if id, err := ParseGistURL(text, trustedHost); err == nil {
		return PasteCandidate{GistID: id}, true
	}
	if payload, err := domain.ParseReport([]byte(text)); err == nil {
		return PasteCandidate{Payload: &payload}, true
	}
	return PasteCandidate{}, false
}
