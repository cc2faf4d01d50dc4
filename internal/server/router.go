package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-attach/internal/api"
	"github.com/celerix-dev/celerix-attach/internal/tasks"
)

// NewRouter builds the gin engine: /api for the handlers, /static/* for
// stored attachments. Requests queue background work on runner.
func NewRouter(h *api.Handler, runner *tasks.Runner, maxUpload int64) *gin.Engine {
	r := gin.Default()
	// Forms up to the upload limit plus 1 MiB are parsed in memory; larger
	// ones spill to temp files.
	r.MaxMultipartMemory = maxUpload + 1<<20

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Static("/static", h.Attach.Root())

	apiGroup := r.Group("/api")
	apiGroup.Use(tasks.Middleware(runner))
	h.Register(apiGroup)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

type Server struct {
	handler http.Handler
	cert    *tls.Certificate

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
	stopped  bool
}

func New(handler http.Handler) *Server {
	return &Server{handler: handler}
}

// SetCertificate sets the TLS certificate for the server
func (s *Server) SetCertificate(cert tls.Certificate) {
	s.cert = &cert
}

// Listen serves on addr until Stop is called. It returns nil after a clean stop.
func (s *Server) Listen(addr string) error {
	var listener net.Listener
	var err error

	if s.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*s.cert}}
		listener, err = tls.Listen("tcp", addr, config)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       5 * time.Minute,
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return listener.Close()
	}
	s.listener = listener
	s.srv = srv
	s.mu.Unlock()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Listen has bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires. A Listen that has not started serving yet returns
// without serving.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
