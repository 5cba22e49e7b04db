// Package store defines the remote report store consumed by intake.
// Identity and storage semantics are opaque to the core; only
// success/failure and the returned identifier matter.
package store

import (
	"context"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

// ReportStore persists and retrieves report payloads by identifier.
type ReportStore interface {
	// FetchByID retrieves a previously stored payload. Failures wrap
	// domain.ErrFetch.
	FetchByID(ctx context.Context, id string) (domain.ReportPayload, error)
	// Create stores a payload and returns its new identifier. Failures wrap
	// domain.ErrFetch.
	Create(ctx context.Context, payload domain.ReportPayload) (string, error)
}
