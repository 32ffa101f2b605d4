// Package server is a reference implementation of the notes API backed by
// a store.Store. It serves one tree per user; the user is named by the
// X-Freenote-User header and created on first use.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Request headers.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderToken     = "X-Freenote-Token"
	HeaderUser      = "X-Freenote-User"
)

// DefaultUser owns requests that carry no user header.
const DefaultUser = "local"

// Options configures the server.
type Options struct {
	Store store.Store

	// TokenHash is a bcrypt hash of the shared access token. Empty
	// disables the check.
	TokenHash string

	Logger zerolog.Logger
}

// Server wraps the fiber app.
type Server struct {
	app   *fiber.App
	store store.Store
	log   zerolog.Logger
}

// New builds the app and registers all routes.
func New(opts Options) *Server {
	s := &Server{
		store: opts.Store,
		log:   opts.Logger.With().Str("component", "server").Logger(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "freenote",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
		ReadTimeout:           30 * time.Second,
	})

	s.app.Use(s.requestLogger)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api", requireToken(opts.TokenHash), s.resolveUser)
	api.Get("/notes", s.getTree)
	api.Get("/notes/:id", s.getNote)
	api.Post("/modify-note", s.modifyNote)
	api.Post("/new-noteobject", s.newNoteObject)
	api.Post("/delete-noteobject", s.deleteNoteObject)
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listener(ln) }()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, store.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotNotebook),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrRootNotDeletable):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
