// Package admin hosts the operator and public-profile HTTP surface. It is a
// read-mostly control plane over the game store: dashboards, aggregates, and
// exports, kept away from the grid-facing signed API.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veilspire/gridlink/internal/platform/i18n"
	"github.com/veilspire/gridlink/internal/platform/timeouts"
	"github.com/veilspire/gridlink/internal/services/admin/routepath"
	"github.com/veilspire/gridlink/internal/services/game/app"
	gamefilter "github.com/veilspire/gridlink/internal/services/game/filter"
	"github.com/veilspire/gridlink/internal/services/shared/observability"
	"github.com/veilspire/gridlink/internal/token"
)

// Server hosts the admin dashboard API and the public profile endpoint.
type Server struct {
	service     *app.Service
	bundle      *i18n.Bundle
	tokenConfig token.Config
	logger      *log.Logger

	characterFilter *gamefilter.Definition
	paymentFilter   *gamefilter.Definition

	httpServer *http.Server
	addr       string
}

// New builds an admin server listening on addr.
func New(addr string, service *app.Service, bundle *i18n.Bundle, tokenConfig token.Config, logger *log.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("game service is required")
	}
	if bundle == nil {
		return nil, errors.New("locale bundle is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	// Localized errors render through x/text printers, so the catalog has to
	// be registered before the first request.
	if err := bundle.Register(); err != nil {
		return nil, fmt.Errorf("register locale messages: %w", err)
	}

	characterFilter, err := gamefilter.CharacterDefinition()
	if err != nil {
		return nil, fmt.Errorf("build character filter: %w", err)
	}
	paymentFilter, err := gamefilter.PaymentDefinition()
	if err != nil {
		return nil, fmt.Errorf("build payment filter: %w", err)
	}

	s := &Server{
		service:         service,
		bundle:          bundle,
		tokenConfig:     tokenConfig,
		logger:          logger,
		characterFilter: characterFilter,
		paymentFilter:   paymentFilter,
		addr:            addr,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return s, nil
}

// Handler assembles the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(observability.RequestLogger(s.logger))
	r.Use(middleware.Timeout(timeouts.Request))

	r.Get(routepath.ProfilePrefix+"{characterID}", s.handleProfile)

	r.Get(routepath.Characters, s.requireAuth(token.RoleViewer, s.handleListCharacters))
	r.Get(routepath.Payments, s.requireAuth(token.RoleViewer, s.handleListPayments))
	r.Get(routepath.PaymentsStatistics, s.requireAuth(token.RoleViewer, s.handlePaymentStatistics))
	r.Get(routepath.InventoryExport, s.requireAuth(token.RoleOperator, s.handleInventoryExport))

	return r
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("admin server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	s.logger.Printf("admin listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
