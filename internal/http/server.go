package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

type Server struct {
	log    *logger.Logger
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{log: cfg.Log, Engine: NewRouter(cfg)}
}

// Run serves on address until ctx is canceled, then drains for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, address string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "address", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("HTTP server shutting down")
	return srv.Shutdown(shutdownCtx)
}
