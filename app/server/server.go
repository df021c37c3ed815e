package server

import (
	"context"
	"log/slog"

	"pdfbot/app/api"
	"pdfbot/config"

	"github.com/gofiber/fiber/v2"
)

// NewApp registers the routes on a fresh fiber app.
func NewApp(builder api.Builder, sessions *api.Sessions, bodyLimitMB int) *fiber.App {
	var (
		app = fiber.New(fiber.Config{
			ErrorHandler: api.ErrorHandler,
			BodyLimit:    bodyLimitMB * 1024 * 1024,
		})
		checkHandler   = api.NewCheckHandler(sessions)
		sessionHandler = api.NewSessionHandler(builder, sessions)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/sessions", sessionHandler.HandleCreate)
	apiv1.Post("/sessions/:id/ask", sessionHandler.HandleAsk)
	apiv1.Delete("/sessions/:id", sessionHandler.HandleDelete)
	return app
}

type Server struct {
	cfg      *config.Config
	app      *fiber.App
	sessions *api.Sessions
	release  func() error
	logger   *slog.Logger
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:      cfg,
		sessions: api.NewSessions(),
		logger:   slog.Default(),
	}
}

func (s *Server) Run(ctx context.Context) error {
	p, release, err := s.cfg.NewPipeline(ctx)
	if err != nil {
		return err
	}
	s.release = release
	s.app = NewApp(p, s.sessions, s.cfg.Server.MaxUploadMB)

	s.logger.Info("server started", "addr", s.cfg.Server.Addr, "vector_store", s.cfg.VectorStore.Type)
	if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return err
	}
	return nil
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown", "error", err)
		}
	}
	s.sessions.CloseAll()
	if s.release != nil {
		_ = s.release()
	}
	s.logger.Info("server stopped")
}
