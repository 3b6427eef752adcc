package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPServer adapts an *http.Server to the Runner shape: Run blocks
// serving until ctx is cancelled, then drains in-flight requests with a
// bounded grace period before returning.
type HTTPServer struct {
	srv         *http.Server
	shutdownFor time.Duration
	log         *zap.Logger
}

// NewHTTPServer wraps srv, which must not have ListenAndServe called on
// it elsewhere.
func NewHTTPServer(srv *http.Server, shutdownGrace time.Duration, log *zap.Logger) *HTTPServer {
	return &HTTPServer{srv: srv, shutdownFor: shutdownGrace, log: log}
}

func (h *HTTPServer) Name() string { return "http" }

func (h *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.log.Info("http server listening", zap.String("addr", h.srv.Addr))
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownFor)
		defer cancel()
		if err := h.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return ctx.Err()
	}
}
