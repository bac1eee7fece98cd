// Package delivery HTTP сервер просмотра: проверка токена и отдача видео с Range
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config параметры сервера просмотра
type Config struct {
	Addr       string
	MobileOnly bool
	Production bool
}

// Server HTTP сервер просмотра
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

// NewServer собирает маршруты. Источники видео пробуются по порядку
func NewServer(cfg Config, tokens TokenValidator, logger *zap.Logger, sources ...Source) *Server {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handler{
		tokens:     tokens,
		source:     chainSource(sources),
		mobileOnly: cfg.MobileOnly,
		logger:     logger,
	}

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(RequestLogger(logger))
	engine.Use(Metrics())
	engine.Use(Recovery(logger))

	engine.GET("/health", h.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/", h.watch)
	engine.GET("/watch", h.watch)

	api := engine.Group("/api")
	api.GET("/video/:token", h.videoInfo)
	api.GET("/stream/:token", h.stream)

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
			// WriteTimeout не задан: видео отдаётся дольше любого разумного лимита
		},
		logger: logger,
	}
}

// Handler нужен тестам
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run слушает адрес до отмены контекста, затем плавно останавливается
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}
