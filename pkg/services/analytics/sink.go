package analytics

import (
	"context"

	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Sink receives fire-and-forget viewer events. Implementations must never
// fail the caller; delivery problems are their own concern.
type Sink interface {
	ReportViewed(ctx context.Context, channel domain.IntakeChannel)
	ShareRequested(ctx context.Context)
	ShareCompleted(ctx context.Context, id string)
	OpenedViaMessage(ctx context.Context)
}

// LogSink records events on the context logger.
type LogSink struct{}

func (LogSink) ReportViewed(ctx context.Context, channel domain.IntakeChannel) {
	zerolog.Ctx(ctx).Info().Str("channel", channel.String()).Msg("report viewed")
}

func (LogSink) ShareRequested(ctx context.Context) {
	zerolog.Ctx(ctx).Info().Msg("share requested")
}

func (LogSink) ShareCompleted(ctx context.Context, id string) {
	zerolog.Ctx(ctx).Info().Str("id", id).Msg("share completed")
}

func (LogSink) OpenedViaMessage(ctx context.Context) {
	zerolog.Ctx(ctx).Info().Msg("open in viewer")
}

// Noop drops every event.
type Noop struct{}

func (Noop) ReportViewed(context.Context, domain.IntakeChannel) {}
func (Noop) ShareRequested(context.Context)                     {}
func (Noop) ShareCompleted(context.Context, string)             {}
func (Noop) OpenedViaMessage(context.Context)                   {}
