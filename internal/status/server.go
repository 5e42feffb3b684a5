// Package status serves a realm's health and metrics over HTTP.
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danmuck/edgerealm/internal/node"
	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

var trustedProxies = []string{"127.0.0.1", "::1"}

// ReadyFunc reports whether the realm is still serving.
type ReadyFunc func() bool

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time
	// Instance distinguishes restarts of the same realm.
	Instance string

	ready  ReadyFunc
	router *gin.Engine
}

var _ node.Node = (*Server)(nil)

// New builds the status router for realm id. A nil ready reports ready.
func New(id, addr string, ready ReadyFunc) *Server {
	observability.RegisterMetrics()
	if ready == nil {
		ready = func() bool { return true }
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		log.Warn().Str("realm", id).Strs("proxies", trustedProxies).Err(err).Msg("status trusted proxies rejected")
	}

	s := &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		Instance: uuid.NewString(),
		ready:    ready,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) NodeID() string {
	return s.ID
}

func (s *Server) Kind() string {
	return "realm"
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.Appeared).String(),
			"realm":    s.ID,
			"instance": s.Instance,
			"version":  Version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		ready := s.ready()
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.Appeared).String(),
			"realm":   s.ID,
			"version": Version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Serve listens on Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("realm", s.ID).Str("addr", ln.Addr().String()).Msg("status server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Str("realm", s.ID).Msg("status server stopped")
	return nil
}
