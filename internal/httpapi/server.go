// Package httpapi serves the chart of accounts to the admin frontend.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ledgerdesk/coa/internal/accounts"
)

// Options configures a Server.
type Options struct {
	// CORSOrigins is a comma-separated origin list; empty disables CORS.
	CORSOrigins string
	// ChangeLogRoot is the project root whose logs/chart-log.csv records
	// created accounts; empty disables the log.
	ChangeLogRoot string
}

// Server wires the account handlers onto a fiber app.
type Server struct {
	repo    accounts.Repository
	logRoot string
	app     *fiber.App
}

// New builds a Server over repo.
func New(repo accounts.Repository, opts Options) *Server {
	s := &Server{repo: repo, logRoot: opts.ChangeLogRoot}

	app := fiber.New(fiber.Config{
		AppName:               "coa",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	if opts.CORSOrigins != "" {
		origins := strings.Split(opts.CORSOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(origins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,OPTIONS",
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/accounts", s.listAccounts())
	api.Post("/accounts", s.createAccount())
	api.Get("/accounts/tree", s.accountTree())
	api.Get("/accounts/next-code", s.nextCode())
	api.Get("/accounts/check", s.checkChart())
	api.Get("/accounts/:id", s.getAccount())
	api.Get("/accounts/:id/children", s.accountChildren())

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	slog.Info("http api listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	slog.Error("request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("err", err.Error()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
