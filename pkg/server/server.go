package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/tenant-optimizer/pkg/handlers/optimizer"
	optimizermiddleware "github.com/de-tools/tenant-optimizer/pkg/server/middleware"
	"github.com/de-tools/tenant-optimizer/pkg/services/approval"
	"github.com/de-tools/tenant-optimizer/pkg/services/classify"
	"github.com/de-tools/tenant-optimizer/pkg/services/cost"
	"github.com/de-tools/tenant-optimizer/pkg/services/inventory"
	"github.com/de-tools/tenant-optimizer/pkg/services/remediation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Explorers   inventory.ExplorerFactory
	Engine      *classify.Engine
	Approvals   approval.Service
	Remediation remediation.Service
	Costs       cost.Factory
	Logger      zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	handler := handlers.NewHandler(deps.Explorers, deps.Engine, deps.Approvals, deps.Remediation, deps.Costs)

	router := chi.NewRouter()

	router.Use(optimizermiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.Health)

		// Everything below needs a bearer token from the caller; the token is
		// passed through to the management plane per request.
		r.Group(func(r chi.Router) {
			r.Use(optimizermiddleware.Authenticator)

			r.Get("/subscriptions", handler.ListSubscriptions)
			r.Get("/subscriptions/{subscription}/cost", handler.SubscriptionCost)

			r.Post("/scan/orphaned", handler.ScanOrphaned)
			r.Post("/scan/deprecated", handler.ScanDeprecated)

			r.Post("/resources/delete", handler.DeleteOrphaned)
			r.Post("/resources/upgrade", handler.UpgradeDeprecated)

			r.Get("/actions", handler.ListActions)
		})
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
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
