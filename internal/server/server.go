package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/harunnryd/listingai/internal/config"
	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/logger"
	"github.com/harunnryd/listingai/internal/model"
	"github.com/harunnryd/listingai/internal/model/contract"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	maxBodyBytes  = 1 << 20
	idleTimeout   = 120 * time.Second
	traceIDHeader = "X-Trace-Id"
)

type Server struct {
	cfg     config.ServerConfig
	router  model.ModelRouter
	app     *echo.Echo
	address string
}

type callRequest struct {
	Messages []contract.Message `json:"messages"`
	Schema   contract.Schema    `json:"schema,omitempty"`
}

type textResponse struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type structuredResponse struct {
	Model string `json:"model"`
	Data  any    `json:"data"`
}

// New wires the HTTP facade in front of a model router.
func New(cfg config.ServerConfig, rt model.ModelRouter) (*Server, error) {
	if rt == nil {
		return nil, llmErrors.InvalidInput("router must not be nil")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(traceMiddleware)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"trace_id", logger.GetTraceID(c.Request().Context()),
			)
			return nil
		},
	}))

	srv := &Server{
		cfg:     cfg,
		router:  rt,
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Port),
	}
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the routed echo instance.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	readTimeout, err := config.Timeout("server.read_timeout", s.cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return err
	}
	writeTimeout, err := config.Timeout("server.write_timeout", s.cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return err
	}
	shutdownTimeout, err := config.Timeout("server.shutdown_timeout", s.cfg.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	slog.Info("Starting server", "addr", s.address, "models", len(s.router.ListModels()))

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("Server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/v1/models", s.handleListModels)
	s.app.POST("/v1/models/:name/text", s.handleText)
	s.app.POST("/v1/models/:name/structured", s.handleStructured)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"models": s.router.ListModels()})
}

func (s *Server) handleText(c echo.Context) error {
	var req callRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	name := c.Param("name")
	text, err := s.router.CallText(c.Request().Context(), name, req.Messages)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, textResponse{Model: name, Text: text})
}

func (s *Server) handleStructured(c echo.Context) error {
	var req callRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if req.Schema == nil {
		return requestError{Status: http.StatusBadRequest, Message: "schema is required", Type: "invalid_request_error"}
	}

	name := c.Param("name")
	data, err := s.router.CallStructured(c.Request().Context(), name, req.Messages, req.Schema)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, structuredResponse{Model: name, Data: data})
}

func traceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()
		if id := req.Header.Get(traceIDHeader); id != "" {
			ctx = logger.WithTraceID(ctx, id)
		}
		ctx = logger.EnsureTraceID(ctx)
		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(traceIDHeader, logger.GetTraceID(ctx))
		return next(c)
	}
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{Status: http.StatusBadRequest, Message: "request body is required", Type: "invalid_request_error"}
		}
		return requestError{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid JSON payload: %v", err), Type: "invalid_request_error"}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{Status: http.StatusBadRequest, Message: "request body must contain a single JSON object", Type: "invalid_request_error"}
	}
	return nil
}
