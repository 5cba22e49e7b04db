package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/perf-tools/report-lens/pkg/render"
	"github.com/perf-tools/report-lens/pkg/services/location"
	"github.com/perf-tools/report-lens/pkg/services/sources"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) Render(ctx context.Context, payload domain.ReportPayload, target *render.Container) error {
	args := m.Called(ctx, payload, target)
	if args.Error(0) == nil {
		target.SetHTML([]byte("<html>rendered</html>"))
	}
	return args.Error(0)
}

func (m *mockPipeline) Reset() {
	m.Called()
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FetchByID(ctx context.Context, id string) (domain.ReportPayload, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ReportPayload), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, payload domain.ReportPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

type recordingSink struct {
	viewed           []domain.IntakeChannel
	shareRequested   int
	shareCompleted   int
	completedID      string
	openedViaMessage int
}

func (s *recordingSink) ReportViewed(_ context.Context, channel domain.IntakeChannel) {
	s.viewed = append(s.viewed, channel)
}

func (s *recordingSink) ShareRequested(context.Context) { s.shareRequested++ }

func (s *recordingSink) ShareCompleted(_ context.Context, id string) {
	s.shareCompleted++
	s.completedID = id
}

func (s *recordingSink) OpenedViaMessage(context.Context) { s.openedViaMessage++ }

type fixture struct {
	pipeline  *mockPipeline
	store     *mockStore
	sink      *recordingSink
	container *render.Container
	location  *location.Sync
	ctrl      *Controller
}

func setupController(t *testing.T, cfg Config, currentURL string) *fixture {
	t.Helper()

	container := render.NewContainer()
	loc, err := location.NewSync("https://viewer.local/", currentURL)
	require.NoError(t, err)

	pipeline := new(mockPipeline)
	reportStore := new(mockStore)
	sink := &recordingSink{}

	if cfg.ViewerVersion == "" {
		cfg.ViewerVersion = "5.6.0"
	}
	ctrl := NewController(cfg, Dependencies{
		Pipeline:  pipeline,
		Container: container,
		Store:     reportStore,
		Location:  loc,
		Analytics: sink,
	})

	return &fixture{
		pipeline:  pipeline,
		store:     reportStore,
		sink:      sink,
		container: container,
		location:  loc,
		ctrl:      ctrl,
	}
}

func payload(version string) domain.ReportPayload {
	raw := `{"lighthouseVersion":"` + version + `"}`
	return domain.ReportPayload{Version: version, Raw: json.RawMessage(raw)}
}

func TestLoad_MissingVersionMarker(t *testing.T) {
	f := setupController(t, Config{}, "")
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, `{"not":"a report"}`)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)
	assert.Equal(t, StateIdle, f.ctrl.State())
	_, ok := f.ctrl.Origin()
	assert.False(t, ok, "origin must not be set before the first successful load")
	assert.True(t, f.container.Empty())
	f.pipeline.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoad_OutdatedVersionWarnsButRenders(t *testing.T) {
	f := setupController(t, Config{ViewerVersion: "5.6.0"}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, `{"lighthouseVersion":"4.0.0"}`)

	require.NoError(t, err)
	assert.Equal(t, StateRendered, f.ctrl.State())
	assert.NotEmpty(t, f.ctrl.Warning())
	assert.False(t, f.container.Empty())
}

func TestLoad_LocalFile(t *testing.T) {
	// Start on a deep-linked location so the replace is observable.
	f := setupController(t, Config{}, "https://viewer.local/?gist=stale99")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	err := f.ctrl.OnFileSelected(ctx, strings.NewReader(`{"lighthouseVersion":"5.6.0"}`))

	require.NoError(t, err)
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginLocal, origin)
	assert.True(t, f.ctrl.Shareable())
	assert.Empty(t, f.location.CurrentID(), "local load must clear the identifier")
	assert.Equal(t, 1, f.location.Depth(), "local load must replace, not push")
	assert.Equal(t, []domain.IntakeChannel{domain.ChannelFile}, f.sink.viewed)
	assert.False(t, f.container.Empty())
}

func TestLoad_FileNotJSON(t *testing.T) {
	f := setupController(t, Config{}, "")
	ctx := context.Background()

	err := f.ctrl.OnFileSelected(ctx, strings.NewReader("not json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.True(t, f.container.Empty(), "placeholder must remain visible")
	f.pipeline.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartup_DeepLink(t *testing.T) {
	f := setupController(t, Config{}, "https://viewer.local/?gist=1a2b3c4d5e")
	f.store.On("FetchByID", mock.Anything, "1a2b3c4d5e").Return(payload("5.6.0"), nil)
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	err := f.ctrl.OnStartup(ctx)

	require.NoError(t, err)
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginRemote, origin)
	assert.False(t, f.ctrl.Shareable())
	assert.Equal(t, "1a2b3c4d5e", f.location.CurrentID())
	assert.Equal(t, 1, f.location.Depth(), "identifier was already current, no rewrite")
	assert.Equal(t, StateRendered, f.ctrl.State())
}

func TestStartup_FetchFailureStaysIdle(t *testing.T) {
	f := setupController(t, Config{}, "https://viewer.local/?gist=1a2b3c4d5e")
	f.store.On("FetchByID", mock.Anything, "1a2b3c4d5e").
		Return(domain.ReportPayload{}, errors.Join(domain.ErrFetch, errors.New("boom")))
	ctx := context.Background()

	err := f.ctrl.OnStartup(ctx)

	require.NoError(t, err, "startup fetch failures are logged, not propagated")
	assert.Equal(t, StateIdle, f.ctrl.State())
	_, ok := f.ctrl.Origin()
	assert.False(t, ok)
	assert.True(t, f.container.Empty())
}

func TestStartup_NoIdentifier(t *testing.T) {
	f := setupController(t, Config{}, "")
	ctx := context.Background()

	require.NoError(t, f.ctrl.OnStartup(ctx))
	assert.Equal(t, StateIdle, f.ctrl.State())
	f.store.AssertNotCalled(t, "FetchByID", mock.Anything, mock.Anything)
}

func TestPaste_GistURL(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.store.On("FetchByID", mock.Anything, "1a2b3c4d5e").Return(payload("5.6.0"), nil)
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, "https://gist.github.com/abc/1a2b3c4d5e")

	require.NoError(t, err)
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginRemote, origin)
	assert.False(t, f.ctrl.Shareable())
	assert.Equal(t, "https://viewer.local/?gist=1a2b3c4d5e", f.ctrl.CurrentLocation())
}

func TestPaste_RawJSON(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, `{"lighthouseVersion":"5.0.0"}`)

	require.NoError(t, err)
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginLocal, origin)
	assert.True(t, f.ctrl.Shareable())
	assert.Equal(t, "https://viewer.local/", f.ctrl.CurrentLocation())
}

func TestPaste_Garbage(t *testing.T) {
	f := setupController(t, Config{}, "")
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, "not json")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Equal(t, StateIdle, f.ctrl.State())
}

func TestURLChanged_UntrustedOrigin(t *testing.T) {
	f := setupController(t, Config{}, "")
	ctx := context.Background()

	err := f.ctrl.OnURLChanged(ctx, "https://evil.example.com/1a2b3c4d5e")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrigin)
	assert.Equal(t, StateIdle, f.ctrl.State())
	f.store.AssertNotCalled(t, "FetchByID", mock.Anything, mock.Anything)
}

func TestShare_FlipsOriginAndPushesLocation(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.store.On("Create", mock.Anything, mock.Anything).Return("00c0ffee", nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.OnPasteText(ctx, `{"lighthouseVersion":"5.6.0"}`))
	depthBefore := f.location.Depth()

	id, err := f.ctrl.Share(ctx)

	require.NoError(t, err)
	assert.Equal(t, "00c0ffee", id)
	origin, _ := f.ctrl.Origin()
	assert.Equal(t, domain.OriginRemote, origin)
	assert.False(t, f.ctrl.Shareable())
	assert.Equal(t, "00c0ffee", f.location.CurrentID())
	assert.Equal(t, depthBefore+1, f.location.Depth(), "share must push, not replace")
	assert.Equal(t, 1, f.sink.shareRequested)
	assert.Equal(t, 1, f.sink.shareCompleted)
	assert.Equal(t, "00c0ffee", f.sink.completedID)
}

func TestShare_RemoteReportNotShareable(t *testing.T) {
	f := setupController(t, Config{}, "https://viewer.local/?gist=1a2b3c4d5e")
	f.store.On("FetchByID", mock.Anything, "1a2b3c4d5e").Return(payload("5.6.0"), nil)
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.OnStartup(ctx))

	_, err := f.ctrl.Share(ctx)
	require.Error(t, err)
	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShare_StoreFailureKeepsLocalOrigin(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.store.On("Create", mock.Anything, mock.Anything).
		Return("", errors.Join(domain.ErrFetch, errors.New("boom")))
	ctx := context.Background()

	require.NoError(t, f.ctrl.OnPasteText(ctx, `{"lighthouseVersion":"5.6.0"}`))

	_, err := f.ctrl.Share(ctx)

	require.Error(t, err)
	origin, _ := f.ctrl.Origin()
	assert.Equal(t, domain.OriginLocal, origin)
	assert.True(t, f.ctrl.Shareable(), "a failed share leaves the affordance in place")
	assert.Empty(t, f.location.CurrentID())
	assert.Equal(t, 0, f.sink.shareCompleted)
}

func TestRenderFailure_ResetsAndPropagates(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("template blew up"))
	f.pipeline.On("Reset").Return()
	ctx := context.Background()

	err := f.ctrl.OnFileSelected(ctx, strings.NewReader(`{"lighthouseVersion":"5.6.0"}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRender)
	assert.True(t, f.container.Empty())
	f.pipeline.AssertCalled(t, "Reset")

	// The failed render is still attributed to its true origin.
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginLocal, origin)
	assert.False(t, f.ctrl.Shareable())
	assert.Empty(t, f.location.CurrentID())

	// Retrying the same bad payload yields the same observable failure.
	err = f.ctrl.OnFileSelected(ctx, strings.NewReader(`{"lighthouseVersion":"5.6.0"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRender)
	assert.True(t, f.container.Empty())
}

func TestRenderFailure_RemoteKeepsLocationUntouched(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.store.On("FetchByID", mock.Anything, "1a2b3c4d5e").Return(payload("5.6.0"), nil)
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("boom"))
	f.pipeline.On("Reset").Return()
	ctx := context.Background()

	err := f.ctrl.OnPasteText(ctx, "https://gist.github.com/abc/1a2b3c4d5e")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRender)
	origin, ok := f.ctrl.Origin()
	require.True(t, ok)
	assert.Equal(t, domain.OriginRemote, origin)
	assert.Empty(t, f.location.CurrentID(), "location is only written after a successful render")
}

func TestOnMessage(t *testing.T) {
	t.Run("accepted from opener", func(t *testing.T) {
		f := setupController(t, Config{Opener: "opener-1"}, "")
		f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		ctx := context.Background()

		err := f.ctrl.OnMessage(ctx, sources.Message{
			Sender:    "opener-1",
			LHResults: json.RawMessage(`{"lighthouseVersion":"5.6.0"}`),
		})

		require.NoError(t, err)
		origin, ok := f.ctrl.Origin()
		require.True(t, ok)
		assert.Equal(t, domain.OriginLocal, origin)
		assert.Equal(t, 1, f.sink.openedViaMessage)
		assert.Equal(t, StateRendered, f.ctrl.State())
	})

	t.Run("other sender ignored entirely", func(t *testing.T) {
		f := setupController(t, Config{Opener: "opener-1"}, "")
		ctx := context.Background()

		err := f.ctrl.OnMessage(ctx, sources.Message{
			Sender:    "stranger",
			LHResults: json.RawMessage(`{"lighthouseVersion":"5.6.0"}`),
		})

		require.NoError(t, err)
		assert.Equal(t, StateIdle, f.ctrl.State())
		_, ok := f.ctrl.Origin()
		assert.False(t, ok)
		assert.Equal(t, 0, f.sink.openedViaMessage)
		f.pipeline.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAbort_KeepsPriorRenderedReport(t *testing.T) {
	f := setupController(t, Config{}, "")
	f.pipeline.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.OnPasteText(ctx, `{"lighthouseVersion":"5.6.0"}`))
	require.Equal(t, StateRendered, f.ctrl.State())

	// A rejected candidate leaves the previous report up.
	err := f.ctrl.OnPasteText(ctx, `{"not":"a report"}`)
	require.Error(t, err)
	assert.Equal(t, StateRendered, f.ctrl.State())
	assert.False(t, f.container.Empty())
	origin, _ := f.ctrl.Origin()
	assert.Equal(t, domain.OriginLocal, origin)
	assert.True(t, f.ctrl.Shareable())
}
