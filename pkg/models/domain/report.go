package domain

import (
	"encoding/json"
	"fmt"
)

// ReportPayload is a report document accepted from one of the intake
// channels. The document body stays opaque to the intake core; only the
// producer version is lifted out for the validation gate.
type ReportPayload struct {
	// Version is the semantic version of the tool that produced the report.
	Version string
	// Raw is the full JSON document as received.
	Raw json.RawMessage
}

// ParseReport decodes raw bytes into a ReportPayload. The body is kept
// verbatim; only the producer version marker is extracted. A missing marker
// is not an error here, the validator rejects it.
func ParseReport(data []byte) (ReportPayload, error) {
	var marker struct {
		LighthouseVersion string `json:"lighthouseVersion"`
	}
	if err := json.Unmarshal(data, &marker); err != nil {
		return ReportPayload{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return ReportPayload{
		Version: marker.LighthouseVersion,
		Raw:     json.RawMessage(data),
	}, nil
}

// IntakeOrigin records whether the currently displayed report came from the
// remote store or from local input.
type IntakeOrigin int

const (
	OriginLocal IntakeOrigin = iota
	OriginRemote
)

func (o IntakeOrigin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// IntakeChannel identifies which input path produced a candidate payload.
type IntakeChannel int

const (
	ChannelFile IntakeChannel = iota
	ChannelPaste
	ChannelURL
	ChannelMessage
	ChannelDeepLink
)

func (c IntakeChannel) String() string {
	switch c {
	case ChannelFile:
		return "file"
	case ChannelPaste:
		return "paste"
	case ChannelURL:
		return "url"
	case ChannelMessage:
		return "message"
	case ChannelDeepLink:
		return "deep-link"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Origin maps a channel to the origin flag it implies: identifier-driven
// channels are remote, everything handed over directly is local.
func (c IntakeChannel) Origin() IntakeOrigin {
	switch c {
	case ChannelURL, ChannelDeepLink:
		return OriginRemote
	default:
		return OriginLocal
	}
}

// VersionCompatibility is the result of comparing a payload's producer
// version against the running viewer, truncated to major.minor.
type VersionCompatibility struct {
	PayloadVersion string
	ViewerVersion  string
	// Outdated is true when the payload was produced by an older
	// major.minor than the viewer expects. Advisory only.
	Outdated bool
}
