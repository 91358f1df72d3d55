// Package api provides the HTTP server and handlers for RenoIntake.
//
// It exposes the intake engine operations (normalize, resolve, estimate,
// decide) as stateless endpoints and a stateful conversation surface that
// drives a full intake dialogue over HTTP or a messaging channel.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RenoMatch/RenoIntake/internal/genai"
	"github.com/RenoMatch/RenoIntake/internal/intake"
	"github.com/RenoMatch/RenoIntake/internal/messaging"
	"github.com/RenoMatch/RenoIntake/internal/store"
	"github.com/RenoMatch/RenoIntake/internal/whatsapp"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Server shutdown grace period.
const shutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the intake engine, the store, and the messaging channel
// behind the HTTP surface.
type Server struct {
	addr         string
	st           store.Store
	orchestrator *intake.Orchestrator
	normalizer   *intake.ResponseNormalizer
	resolver     *intake.SuggestionResolver
	estimator    *intake.PriceEstimator
	engine       *intake.DecisionEngine
	msgService   messaging.Service
	respHandler  *messaging.ResponseHandler
}

// NewServer creates a Server over the given store, GenAI client, and
// messaging service. msgService may be nil for API-only deployments.
func NewServer(st store.Store, genaiClient genai.ClientInterface, msgService messaging.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		addr:         cfg.Addr,
		st:           st,
		orchestrator: intake.NewOrchestrator(st, genaiClient),
		normalizer:   intake.NewResponseNormalizer(genaiClient),
		resolver:     intake.NewSuggestionResolver(genaiClient),
		estimator:    intake.NewPriceEstimator(genaiClient),
		engine:       intake.NewDecisionEngine(genaiClient),
		msgService:   msgService,
	}
	if msgService != nil {
		s.respHandler = messaging.NewResponseHandler(msgService, s.orchestrator, "whatsapp")
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /intake/normalize", s.normalizeHandler)
	mux.HandleFunc("POST /intake/resolve", s.resolveHandler)
	mux.HandleFunc("POST /intake/estimate", s.estimateHandler)
	mux.HandleFunc("POST /intake/decide", s.decideHandler)

	mux.HandleFunc("POST /conversations", s.startConversationHandler)
	mux.HandleFunc("GET /conversations/{id}", s.getConversationHandler)
	mux.HandleFunc("POST /conversations/{id}/messages", s.conversationMessageHandler)
	mux.HandleFunc("GET /conversations/{id}/estimate", s.conversationEstimateHandler)

	mux.HandleFunc("GET /health", s.healthHandler)

	if twilioSvc, ok := s.msgService.(*messaging.TwilioService); ok {
		mux.HandleFunc("POST /webhook/twilio", twilioSvc.WebhookHandler)
	}
	return mux
}

// Run starts the messaging service, the inbound response loop, and the HTTP
// server, then blocks until SIGINT/SIGTERM and shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if s.msgService != nil {
		if err := s.msgService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start messaging service: %w", err)
		}
		go s.respHandler.Run(ctx)
	}

	httpServer := &http.Server{Addr: s.addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: API listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Server.Run: shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server.Run: HTTP shutdown failed", "error", err)
	}
	if s.msgService != nil {
		if err := s.msgService.Stop(); err != nil {
			slog.Error("Server.Run: messaging service stop failed", "error", err)
		}
	}
	if err := s.st.Close(); err != nil {
		slog.Error("Server.Run: store close failed", "error", err)
	}
	return nil
}

// Run bootstraps the full service from module options: store backend, GenAI
// client, WhatsApp channel, and HTTP server. A failed WhatsApp connection
// degrades to an API-only deployment rather than aborting startup.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	var msgService messaging.Service
	if waClient, err := whatsapp.NewClient(waOpts...); err != nil {
		slog.Warn("Run: WhatsApp client unavailable, continuing API-only", "error", err)
	} else {
		msgService = messaging.NewWhatsAppService(waClient)
	}

	server := NewServer(st, genaiClient, msgService, apiOpts...)
	return server.Run(context.Background())
}
