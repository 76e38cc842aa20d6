// Package server is the interactive surface: a single form that takes a
// skill list and a batch of resumes and shows per-file results.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/muhammadolammi/skillscan/internal/config"
	"github.com/muhammadolammi/skillscan/internal/notify"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/rs/zerolog"
)

// maxFilesPerRequest bounds the request body together with the per-file limit.
const maxFilesPerRequest = 20

type Server struct {
	app       *fiber.App
	cfg       config.ServerConfig
	scanner   *scan.Scanner
	publisher notify.Publisher
	logger    zerolog.Logger
}

func New(cfg config.ServerConfig, scanner *scan.Scanner, publisher notify.Publisher, logger zerolog.Logger) *Server {
	if publisher == nil {
		publisher = notify.Nop()
	}
	s := &Server{
		cfg:       cfg,
		scanner:   scanner,
		publisher: publisher,
		logger:    logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "skillscan",
		BodyLimit:             int(cfg.MaxUploadBytes()) * maxFilesPerRequest,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			s.logger.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("Request failed")
			return failure(c, code, err.Error(), nil)
		},
	})
	s.app.Use(recover.New())
	s.app.Use(healthcheck.New())
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) registerRoutes() {
	// one limiter for both scan routes so they draw on the same budget
	limit := s.rateLimiter()
	s.app.Get("/", s.Index)
	s.app.Post("/scan", limit, s.ScanPage)
	s.app.Post("/api/scan", limit, s.ScanAPI)
}

func (s *Server) rateLimiter() fiber.Handler {
	limit := s.cfg.RequestsPerMin
	if limit <= 0 {
		limit = 30
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return failure(c, fiber.StatusTooManyRequests, "Too many requests", nil)
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

func (s *Server) Listen() error {
	s.logger.Info().Str("address", s.cfg.Address).Msg("Server running")
	return s.app.Listen(s.cfg.Address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
