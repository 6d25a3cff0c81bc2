// Package server exposes a read-only HTTP status surface for the desk:
// liveness, the last committed snapshot, and the recent push-event log.
// It never mutates desk state.
package server

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/domain"
	// Registers the desk expvar counters served at /debug/vars.
	_ "github.com/tradedesk/godesk/internal/metrics"
	"github.com/tradedesk/godesk/internal/services"
)

var log = logrus.WithField("component", "statusapi")

type Config struct {
	ListenAddr string
}

// Desk is the read-only slice of the sync layer the status API serves.
type Desk interface {
	Health(ctx context.Context) error
	Snapshot() (services.Snapshot, bool)
	Book() (domain.OrderBookSnapshot, time.Time, bool)
	LastError() error
	Events() []services.LogEntry
	Connected() bool
}

type Server struct {
	cfg  Config
	desk Desk
}

func New(cfg Config, desk Desk) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, errors.New("listen addr is required")
	}
	if desk == nil {
		return nil, errors.New("desk is required")
	}
	return &Server{cfg: cfg, desk: desk}, nil
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealthz)

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/snapshot", s.handleSnapshot)
	api.GET("/book", s.handleBook)
	api.GET("/events", s.handleEvents)

	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	debug := r.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/:profile", gin.WrapF(pprof.Index))

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.ListenAddr).Info("status api listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	if err := s.desk.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unreachable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	body := gin.H{"connected": s.desk.Connected()}
	if snap, ok := s.desk.Snapshot(); ok {
		body["fetched_at"] = snap.FetchedAt
	}
	if err := s.desk.LastError(); err != nil {
		body["last_error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap, ok := s.desk.Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleBook(c *gin.Context) {
	book, receivedAt, ok := s.desk.Book()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no book yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received_at": receivedAt, "book": book})
}

func (s *Server) handleEvents(c *gin.Context) {
	entries := s.desk.Events()
	if entries == nil {
		entries = []services.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "events": entries})
}
