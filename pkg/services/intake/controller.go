// Package intake owns the report-intake state machine: the four input
// channels funnel through the validation gate into a single render entry
// point, with the controller tracking where the displayed report came from
// and keeping the navigable location in step.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/perf-tools/report-lens/pkg/render"
	"github.com/perf-tools/report-lens/pkg/services/analytics"
	"github.com/perf-tools/report-lens/pkg/services/location"
	"github.com/perf-tools/report-lens/pkg/services/sources"
	"github.com/perf-tools/report-lens/pkg/services/validate"
	"github.com/perf-tools/report-lens/pkg/store"
)

// State of the intake machine. A failed attempt is not a state of its own:
// it returns to whatever held before (prior rendered content stays up),
// except that a render failure leaves the container empty and the machine
// idle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pipeline renders a validated payload into the document container. On a
// render error the controller resets both the container and the pipeline's
// cached templates before propagating.
type Pipeline interface {
	Render(ctx context.Context, payload domain.ReportPayload, target *render.Container) error
	Reset()
}

// DefaultGistHost is the trusted origin for pasted and navigated report
// URLs.
const DefaultGistHost = "gist.github.com"

type Config struct {
	// ViewerVersion is compared against each payload's producer version.
	ViewerVersion string
	// GistHost is the only host report URLs are accepted from.
	GistHost string
	// Opener is the identity of the client that opened this viewer, empty
	// when it was opened directly. Only the opener may push reports over
	// the message channel.
	Opener string
}

type Dependencies struct {
	Pipeline  Pipeline
	Container *render.Container
	Store     store.ReportStore
	Location  *location.Sync
	Analytics analytics.Sink
}

// Controller arbitrates between the intake channels. All shared mutable
// state (origin flag, document content, location) is mutated only under the
// controller's mutex; competing intake attempts serialize and the last one
// to finish wins, there is no cancellation of in-flight loads.
type Controller struct {
	mu        sync.Mutex
	state     State
	origin    domain.IntakeOrigin
	originSet bool
	shareable bool
	current   domain.ReportPayload
	warning   string

	host      string
	validator *validate.Validator
	pipeline  Pipeline
	container *render.Container
	store     store.ReportStore
	location  *location.Sync
	analytics analytics.Sink
	gate      *sources.MessageGate
}

func NewController(cfg Config, deps Dependencies) *Controller {
	host := cfg.GistHost
	if host == "" {
		host = DefaultGistHost
	}
	sink := deps.Analytics
	if sink == nil {
		sink = analytics.Noop{}
	}
	return &Controller{
		state:     StateIdle,
		host:      host,
		validator: validate.New(cfg.ViewerVersion),
		pipeline:  deps.Pipeline,
		container: deps.Container,
		store:     deps.Store,
		location:  deps.Location,
		analytics: sink,
		gate:      sources.NewMessageGate(cfg.Opener),
	}
}

// OnStartup runs the one-time deep-link check: a location already carrying
// an identifier is treated as a remote load. Fetch failures are logged and
// the machine stays idle showing the placeholder; only a render failure
// propagates.
func (c *Controller) OnStartup(ctx context.Context) error {
	id := c.location.CurrentID()
	if id == "" {
		return nil
	}
	if err := c.loadRemote(ctx, id, domain.ChannelDeepLink); err != nil {
		if errors.Is(err, domain.ErrRender) {
			return err
		}
		zerolog.Ctx(ctx).Err(err).Str("id", id).Msg("deep-link load failed")
	}
	return nil
}

// OnFileSelected ingests a selected file: read fully, parse, load. One
// attempt, no retry.
func (c *Controller) OnFileSelected(ctx context.Context, r io.Reader) error {
	payload, err := sources.ReadFile(r)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("file intake aborted")
		return err
	}
	return c.load(ctx, payload, domain.ChannelFile)
}

// OnPasteText ingests clipboard text. A pasted gist URL behaves like the
// URL channel (remote origin); pasted raw JSON behaves like a local report.
func (c *Controller) OnPasteText(ctx context.Context, text string) error {
	cand, ok := sources.InterpretPaste(text, c.host)
	if !ok {
		err := fmt.Errorf("%w: pasted text is neither a report URL nor a report", domain.ErrParse)
		zerolog.Ctx(ctx).Err(err).Msg("paste intake aborted")
		return err
	}
	if cand.GistID != "" {
		return c.loadRemote(ctx, cand.GistID, domain.ChannelURL)
	}
	return c.load(ctx, *cand.Payload, domain.ChannelPaste)
}

// OnURLChanged ingests a user-entered or navigated URL. Wrong origin, a
// malformed URL or a missing identifier abandon the attempt; nothing
// navigates.
func (c *Controller) OnURLChanged(ctx context.Context, rawURL string) error {
	id, err := sources.ParseGistURL(rawURL, c.host)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Str("url", rawURL).Msg("url intake aborted")
		return err
	}
	return c.loadRemote(ctx, id, domain.ChannelURL)
}

// OnDeepLink ingests an identifier arriving on the viewer's own location.
// An identifier already rendered is a no-op.
func (c *Controller) OnDeepLink(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if c.State() == StateRendered && c.location.CurrentID() == id {
		return nil
	}
	return c.loadRemote(ctx, id, domain.ChannelDeepLink)
}

// OnMessage ingests a cross-client message. Messages not accepted by the
// gate are ignored entirely: no state change, no error.
func (c *Controller) OnMessage(ctx context.Context, msg sources.Message) error {
	payload, ok := c.gate.Accept(msg)
	if !ok {
		return nil
	}
	if err := c.load(ctx, payload, domain.ChannelMessage); err != nil {
		return err
	}
	c.analytics.OpenedViaMessage(ctx)
	return nil
}

// Shareable reports whether the displayed report can be persisted: true
// only after a successful local-origin load.
func (c *Controller) Shareable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shareable
}

// Share uploads the current local report to the remote store. On success
// the origin flips to remote and a new location entry with the returned
// identifier is pushed.
func (c *Controller) Share(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shareable {
		return "", fmt.Errorf("no locally loaded report to share")
	}
	if c.store == nil {
		return "", fmt.Errorf("%w: no remote store configured", domain.ErrFetch)
	}

	c.analytics.ShareRequested(ctx)
	id, err := c.store.Create(ctx, c.current)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Msg("share failed")
		return "", err
	}

	c.origin = domain.OriginRemote
	c.shareable = false
	c.location.PushID(id)
	c.analytics.ShareCompleted(ctx, id)
	return id, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Origin returns the origin flag of the displayed report. ok is false
// before the first successful load.
func (c *Controller) Origin() (domain.IntakeOrigin, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin, c.originSet
}

// CurrentLocation returns the navigable location as a string.
func (c *Controller) CurrentLocation() string {
	u := c.location.Current()
	return u.String()
}

// Warning returns the advisory compatibility warning for the displayed
// report, empty when none applies.
func (c *Controller) Warning() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warning
}

// Document returns the rendered HTML, nil while the placeholder shows.
func (c *Controller) Document() []byte {
	return c.container.HTML()
}

func (c *Controller) loadRemote(ctx context.Context, id string, channel domain.IntakeChannel) error {
	if c.store == nil {
		err := fmt.Errorf("%w: no remote store configured", domain.ErrFetch)
		zerolog.Ctx(ctx).Err(err).Str("id", id).Msg("remote intake aborted")
		return err
	}
	payload, err := c.store.FetchByID(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Str("id", id).Msg("remote intake aborted")
		return err
	}
	return c.loadWithID(ctx, payload, channel, id)
}

func (c *Controller) load(ctx context.Context, payload domain.ReportPayload, channel domain.IntakeChannel) error {
	return c.loadWithID(ctx, payload, channel, "")
}

func (c *Controller) loadWithID(ctx context.Context, payload domain.ReportPayload, channel domain.IntakeChannel, id string) error {
	logger := zerolog.Ctx(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.state = StateLoading

	compat, err := c.validator.Validate(payload)
	if err != nil {
		// Prior rendered content, URL and origin stay untouched.
		c.state = prev
		logger.Err(err).Str("channel", channel.String()).Msg("intake aborted")
		return err
	}

	warning := ""
	if compat.Outdated {
		warning = fmt.Sprintf("report was produced by version %s, viewer expects %s; display problems are possible",
			compat.PayloadVersion, compat.ViewerVersion)
		logger.Warn().
			Str("payload_version", compat.PayloadVersion).
			Str("viewer_version", compat.ViewerVersion).
			Msg("report produced by an older tool version")
	}

	// The origin flag is set before rendering: the render step consults it
	// for the save affordance, and a failed render is still attributed to
	// its true origin.
	origin := channel.Origin()
	c.origin = origin
	c.originSet = true

	if err := c.pipeline.Render(ctx, payload, c.container); err != nil {
		c.container.Clear()
		c.pipeline.Reset()
		if !errors.Is(err, domain.ErrRender) {
			err = fmt.Errorf("%w: %v", domain.ErrRender, err)
		}
		c.state = StateIdle
		c.shareable = false
		logger.Err(err).Str("channel", channel.String()).Msg("render failed, container reset")
		return err
	}

	c.current = payload
	c.warning = warning
	switch origin {
	case domain.OriginLocal:
		c.location.ReplaceClear()
		c.shareable = true
	case domain.OriginRemote:
		c.shareable = false
		if id != "" && c.location.CurrentID() != id {
			c.location.PushID(id)
		}
	}
	c.state = StateRendered
	c.analytics.ReportViewed(ctx, channel)
	return nil
}
