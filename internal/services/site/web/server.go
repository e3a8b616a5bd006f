// Package web hosts the site's browser-facing HTTP surface.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/timeouts"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/modules/account"
	"github.com/louisbranch/agencysite/internal/services/site/web/modules/admin"
	"github.com/louisbranch/agencysite/internal/services/site/web/modules/auth"
	"github.com/louisbranch/agencysite/internal/services/site/web/modules/chat"
	"github.com/louisbranch/agencysite/internal/services/site/web/modules/public"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/observability"
	sitestatic "github.com/louisbranch/agencysite/internal/services/site/web/static"
)

// Config defines startup inputs for the web server.
type Config struct {
	HTTPAddr string
	// Dependencies carries the providers. Its resolvers are filled in by
	// NewHandler.
	Dependencies module.Dependencies
}

// Server hosts the HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	logger     *zap.Logger
}

// DefaultModules returns the feature modules in mount order.
func DefaultModules() []module.Module {
	return []module.Module{
		public.New(),
		auth.New(),
		account.New(),
		chat.New(),
		admin.New(),
	}
}

// NewHandler builds the root handler over deps.
func NewHandler(deps module.Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	principal := newPrincipalResolver(deps)
	deps.ResolveViewer = principal.resolveViewer
	deps.ResolveUser = principal.resolveUser

	h, err := compose(deps, DefaultModules())
	if err != nil {
		return nil, err
	}
	rootMux := http.NewServeMux()
	rootMux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(sitestatic.FS))))
	rootMux.Handle("/", h)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(deps.Logger),
		httpx.RequestID(),
		withRequestPrincipalState(),
		observability.RequestLogger(deps.Logger),
	), nil
}

// NewServer validates config and constructs a server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	logger := cfg.Dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		httpAddr: httpAddr,
		logger:   logger,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("web server listening", zap.String("addr", s.httpAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown web http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
