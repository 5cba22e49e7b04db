package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/perf-tools/report-lens/pkg/handlers/viewer"
	lensmiddleware "github.com/perf-tools/report-lens/pkg/server/middleware"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Viewer handlers.IntakeService
	// Opener is the recognized message-channel sender, empty when this
	// viewer was opened directly.
	Opener string
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	viewerHandler := handlers.NewHandler(config.Dependencies.Viewer, config.Dependencies.Opener)

	router := chi.NewRouter()

	router.Use(lensmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/", viewerHandler.ViewReport)
	router.Get("/ws", viewerHandler.Messages)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/reports/file", viewerHandler.UploadFile)
		r.Post("/reports/paste", viewerHandler.PasteReport)
		r.Post("/reports/url", viewerHandler.SubmitURL)
		r.Post("/share", viewerHandler.ShareReport)
		r.Get("/state", viewerHandler.GetState)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Router exposes the configured mux, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
