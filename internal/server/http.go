package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/deckquiz/progress-service/pkg/handler"
)

// HTTPServer manages the API server lifecycle.
type HTTPServer struct {
	server      *http.Server
	port        int
	serviceName string
	handler     *handler.Handler
}

// NewHTTPServer creates a new API server instance.
func NewHTTPServer(port int, serviceName string, h *handler.Handler) *HTTPServer {
	return &HTTPServer{
		port:        port,
		serviceName: serviceName,
		handler:     h,
	}
}

// Setup configures the gin engine: tracing and logging middleware, the
// versioned API routes, and a health endpoint for liveness probes.
func (s *HTTPServer) Setup() error {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(s.serviceName),
		handler.RequestLogger(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.handler.RegisterRoutes(engine)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: engine,
	}

	return nil
}

// Start begins listening and serving API requests.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server, letting in-flight requests and
// open event streams drain.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP server stopped")
	return nil
}
