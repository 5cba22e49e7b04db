package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/perf-tools/report-lens/pkg/models/api"
	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/perf-tools/report-lens/pkg/services/intake"
	"github.com/perf-tools/report-lens/pkg/services/location"
	"github.com/perf-tools/report-lens/pkg/services/sources"
)

// IntakeService is the slice of the intake controller the HTTP surface
// consumes.
type IntakeService interface {
	OnFileSelected(ctx context.Context, r io.Reader) error
	OnPasteText(ctx context.Context, text string) error
	OnURLChanged(ctx context.Context, rawURL string) error
	OnDeepLink(ctx context.Context, id string) error
	OnMessage(ctx context.Context, msg sources.Message) error
	Share(ctx context.Context) (string, error)
	Shareable() bool
	State() intake.State
	Origin() (domain.IntakeOrigin, bool)
	CurrentLocation() string
	Warning() string
	Document() []byte
}

const placeholderHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Report Lens</title></head>
<body>
  <div id="placeholder">Drop, paste or open a report to get started.</div>
</body>
</html>
`

type Handler struct {
	svc    IntakeService
	opener string
}

func NewHandler(svc IntakeService, opener string) *Handler {
	return &Handler{svc: svc, opener: opener}
}

// ViewReport serves the document. A gist identifier on the request query is
// a deep link and triggers a remote load before serving; while nothing is
// rendered the placeholder shell is served instead.
func (h *Handler) ViewReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if id := r.URL.Query().Get(location.ParamGist); id != "" {
		if err := h.svc.OnDeepLink(ctx, id); err != nil {
			logger.Err(err).Str("id", id).Msg("deep-link load failed")
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	doc := h.svc.Document()
	if len(doc) == 0 {
		_, _ = w.Write([]byte(placeholderHTML))
		return
	}
	_, _ = w.Write(doc)
}

// UploadFile ingests the request body as a report file.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.OnFileSelected(r.Context(), r.Body); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

// PasteReport ingests clipboard text.
func (h *Handler) PasteReport(w http.ResponseWriter, r *http.Request) {
	var req api.PasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Join(domain.ErrParse, err))
		return
	}
	if err := h.svc.OnPasteText(r.Context(), req.Text); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

// SubmitURL ingests a user-entered report URL.
func (h *Handler) SubmitURL(w http.ResponseWriter, r *http.Request) {
	var req api.URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Join(domain.ErrParse, err))
		return
	}
	if err := h.svc.OnURLChanged(r.Context(), req.URL); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, r)
}

// ShareReport persists the current local report to the remote store.
func (h *Handler) ShareReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	id, err := h.svc.Share(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(api.ShareResponse{ID: id, Location: h.svc.CurrentLocation()}); err != nil {
		logger.Err(err).Msg("failed to encode share response")
	}
}

// GetState reports the intake machine for the UI layer.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r)
}

func (h *Handler) writeState(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	state := api.ViewerState{
		State:     h.svc.State().String(),
		Location:  h.svc.CurrentLocation(),
		Shareable: h.svc.Shareable(),
		Warning:   h.svc.Warning(),
	}
	if origin, ok := h.svc.Origin(); ok {
		state.Origin = origin.String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		logger.Err(err).Msg("failed to encode viewer state")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrOrigin):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSchema):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetch):
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(api.Error{Error: err.Error()}); encErr != nil {
		logger.Err(encErr).Msg("failed to encode error response")
	}
}
