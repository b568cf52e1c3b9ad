// Package stub runs a local development server implementing the
// summarizer service contract: summary fixtures, a metadata probe that
// completes after a delay, validated bullet-point updates, and
// deterministic regenerate jobs.
package stub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"tableflip.dev/vidmark/pkg/summary"
)

// Config tunes the stub server.
type Config struct {
	Addr string
	// Rate is requests per second per client before 429s.
	Rate float64
	// ProbeDelay is how long the metadata probe pretends to run.
	ProbeDelay time.Duration
	// MinBullets mirrors the service-side floor on updates.
	MinBullets int
}

// Server serves the stub API over an injected store.
type Server struct {
	cfg    Config
	store  *Store
	log    *logrus.Logger
	engine *gin.Engine

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds the server around the provided store.
func New(cfg Config, store *Store) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8089"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 20
	}
	if cfg.ProbeDelay <= 0 {
		cfg.ProbeDelay = 3 * time.Second
	}
	if cfg.MinBullets <= 0 {
		cfg.MinBullets = 3
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		log:      logrus.StandardLogger(),
		limiters: make(map[string]*rate.Limiter),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.logRequests(), s.rateLimit())

	engine.GET("/videos/:id/summary", s.getSummary)
	engine.GET("/videos/:id/meta", s.getMeta)
	engine.PUT("/videos/:id/bullet-points", s.putBulletPoints)
	engine.GET("/jobs/:id", s.getJob)

	s.engine = engine
	return s
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(log *logrus.Logger) {
	if log != nil {
		s.log = log
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("stub: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("stub: request")
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		limiter, ok := s.limiters[c.ClientIP()]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(s.cfg.Rate), int(s.cfg.Rate)+1)
			s.limiters[c.ClientIP()] = limiter
		}
		s.mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) getSummary(c *gin.Context) {
	sum, err := s.store.Summary(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) getMeta(c *gin.Context) {
	meta, err := s.store.Meta(c.Param("id"), s.cfg.ProbeDelay)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) putBulletPoints(c *gin.Context) {
	var sum summary.VideoSummary
	if err := c.ShouldBindJSON(&sum); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed summary payload"})
		return
	}
	if err := sum.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if len(sum.BulletPoints) < s.cfg.MinBullets {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("at least %d bullet points required", s.cfg.MinBullets),
		})
		return
	}

	job, err := s.store.Update(c.Param("id"), sum)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.store.Job(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownVideo), errors.Is(err, ErrUnknownJob):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
