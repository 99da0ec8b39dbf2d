// Package api exposes the grid-facing HTTP surface of the game service.
// Every route is authenticated by the HMAC signing middleware; the region
// asserted by the signature scopes what the caller may touch.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veilspire/gridlink/internal/platform/timeouts"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/shared/observability"
	"github.com/veilspire/gridlink/internal/signing"
)

// Server hosts the game HTTP API.
type Server struct {
	service    *app.Service
	verifier   *signing.Verifier
	logger     *log.Logger
	httpServer *http.Server
	addr       string
}

// New builds a game API server listening on addr.
func New(addr string, service *app.Service, verifier *signing.Verifier, logger *log.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("game service is required")
	}
	if verifier == nil {
		return nil, errors.New("request verifier is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		service:  service,
		verifier: verifier,
		logger:   logger,
		addr:     addr,
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
	r.Use(s.verifier.Middleware)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/characters", func(r chi.Router) {
			r.Post("/", s.handleRegisterCharacter)
			r.Get("/", s.handleListCharacters)
			r.Route("/{characterID}", func(r chi.Router) {
				r.Get("/", s.handleGetCharacter)
				r.Put("/stats", s.handleUpdateStats)
				r.Post("/effects", s.handleApplyEffect)
				r.Delete("/effects/{effectID}", s.handleDispelEffect)
				r.Post("/turn/end", s.handleEndTurn)
				r.Post("/damage", s.handleDamage)
				r.Post("/heal", s.handleHeal)
				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", s.handleListInventory)
					r.Post("/grant", s.handleGrantItem)
					r.Post("/consume", s.handleConsumeItem)
				})
			})
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleOfferTask)
			r.Post("/{taskID}/accept", s.handleAcceptTask)
			r.Post("/{taskID}/complete", s.handleCompleteTask)
			r.Post("/{taskID}/expire", s.handleExpireTask)
		})
		r.Get("/npcs/{npcID}/tasks", s.handleListTasksByNPC)
		r.Post("/payments", s.handleRecordPayment)
		r.Get("/payments/{gridTxnID}", s.handleGetPayment)
	})
	return r
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("game server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	s.logger.Printf("game listening on %s", s.addr)
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
