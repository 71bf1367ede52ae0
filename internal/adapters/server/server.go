package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/logging"
	"github.com/devbush/paralyze/internal/ports"
)

// Analyzer runs one pipeline invocation
type Analyzer interface {
	Run(ctx context.Context, req application.Request) (*application.Result, error)
}

// Options configures the HTTP server
type Options struct {
	BodyLimit int    // bytes, 0 keeps the fiber default
	TempDir   string // parent of per-request upload directories
	Models    ports.ModelManager
	Loaded    func() []string
}

// Server exposes the analyze pipeline over HTTP
type Server struct {
	app      *fiber.App
	analyzer Analyzer
	fs       afero.Fs
	opts     Options
	logger   *slog.Logger
}

// ModelStatus is one entry of GET /api/models
type ModelStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int64  `json:"size,omitempty"`
	Downloaded  bool   `json:"downloaded"`
	Loaded      bool   `json:"loaded"`
}

// New builds the fiber app and registers the routes. fs must be the
// filesystem the analyzer reads uploads from.
func New(analyzer Analyzer, fs afero.Fs, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		fs:       fs,
		opts:     opts,
		logger:   logging.Component(logger, "server"),
	}

	cfg := fiber.Config{
		AppName:               "paralyze",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	}
	if opts.BodyLimit > 0 {
		cfg.BodyLimit = opts.BodyLimit
	}

	app := fiber.New(cfg)
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.logRequests)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/api/models", s.handleModels)
	app.Post("/api/analyze", s.handleAnalyze)

	s.app = app
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App { return s.app }

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.logger.Info("request",
		slog.String(logging.FieldRequestID, c.GetRespHeader(fiber.HeaderXRequestID)),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("latency", time.Since(start)),
	)
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(strings.TrimSpace(err.Error()))
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	loaded := map[string]bool{}
	if s.opts.Loaded != nil {
		for _, key := range s.opts.Loaded() {
			loaded[key] = true
		}
	}

	var out []ModelStatus
	if s.opts.Models != nil {
		for _, m := range s.opts.Models.AvailableModels() {
			out = append(out, ModelStatus{
				Name:        m.Name,
				Description: m.Description,
				Size:        m.Size,
				Downloaded:  m.Downloaded,
				Loaded:      loaded[m.Name],
			})
		}
	} else {
		for _, t := range domain.ModelTiers {
			out = append(out, ModelStatus{Name: t.Key, Description: t.Description, Loaded: loaded[t.Key]})
		}
	}
	return c.JSON(out)
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	req := application.Request{
		URL:   c.FormValue("url"),
		Terms: c.FormValue("words"),
		Model: c.FormValue("model"),
	}

	// A missing file or a non-multipart body leaves the URL as the only source
	if fh, err := c.FormFile("video"); err == nil {
		ws, werr := application.NewWorkspace(s.fs, s.opts.TempDir, "upload-"+uuid.NewString()[:8])
		if werr != nil {
			return fmt.Errorf("create upload directory: %w", werr)
		}
		defer func() {
			if cerr := ws.Close(); cerr != nil {
				s.logger.Warn("upload cleanup failed", slog.String("dir", ws.Dir()), slog.Any("error", cerr))
			}
		}()

		dest := ws.Path(uploadName(fh.Filename))
		if err := s.saveUpload(fh, dest); err != nil {
			return fmt.Errorf("save upload: %w", err)
		}
		req.File = dest
	}

	result, err := s.analyzer.Run(c.UserContext(), req)
	if err != nil {
		status := fiber.StatusInternalServerError
		var stageErr *application.StageError
		if errors.As(err, &stageErr) && stageErr.IsRequestError() {
			status = fiber.StatusUnprocessableEntity
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(application.UserMessage(err))
	}

	if c.Query("format") == "json" {
		return c.JSON(result.Summary())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(result.Text())
}

func (s *Server) saveUpload(fh *multipart.FileHeader, dest string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := s.fs.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var unsafeUploadChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uploadName keeps the client's extension so the demuxer can sniff the
// container, and drops any directory part
func uploadName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeUploadChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		return "upload"
	}
	return base
}
