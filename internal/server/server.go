package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scrapbot/internal/bot"
	"scrapbot/internal/session"
	"scrapbot/internal/storage"
)

const (
	sessionCookie   = "scrapbot_session"
	cookieMaxAge    = 24 * 60 * 60
	shutdownTimeout = 5 * time.Second
)

type turnRequest struct {
	// The field carries all free-text input regardless of dialogue stage.
	Material string `json:"material"`
}

type turnResponse struct {
	Response string  `json:"response"`
	Image    *string `json:"image"`
}

// RateLimiter caps turns per session over a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, id string, limit int64, window time.Duration) (bool, error)
}

type Config struct {
	Addr       string
	Env        string
	IndexPath  string
	RateLimit  int64
	RateWindow time.Duration
}

// Server is the web chat transport: it owns cookies, routing and per-session
// serialization, and delegates every turn to the dialogue engine.
type Server struct {
	cfg     Config
	engine  *bot.Engine
	store   session.Store
	locks   session.Locker
	ledger  *storage.PostgresStorage
	limiter RateLimiter
	logger  *zap.Logger
	httpSrv *http.Server
}

// New wires the routes. ledger and limiter may be nil; the export endpoint
// and rate limiting are then disabled.
func New(
	cfg Config,
	engine *bot.Engine,
	store session.Store,
	ledger *storage.PostgresStorage,
	limiter RateLimiter,
	logger *zap.Logger,
) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		store:   store,
		ledger:  ledger,
		limiter: limiter,
		logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleHome)
	router.POST("/get_price", s.handleTurn)
	router.GET("/healthz", s.handleHealth)
	router.GET("/admin/export", s.handleExport)

	s.httpSrv = &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}
	return s
}

// Run serves until the context is cancelled, then drains.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// handleHome serves the chat page. Landing here unconditionally resets the
// conversation: any stored session is dropped and a fresh cookie is issued.
func (s *Server) handleHome(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		unlock := s.locks.Lock(id)
		if err := s.store.Clear(c.Request.Context(), id); err != nil {
			s.logger.Error("Failed to clear session", zap.Error(err))
		}
		unlock()
	}

	s.issueCookie(c)
	c.File(s.cfg.IndexPath)
}

func (s *Server) handleTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		id = s.issueCookie(c)
	}

	ctx := c.Request.Context()

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, id, s.cfg.RateLimit, s.cfg.RateWindow)
		if err != nil {
			s.logger.Error("Rate limit check failed", zap.Error(err))
		} else if !ok {
			c.JSON(http.StatusTooManyRequests, turnResponse{
				Response: "You're sending messages too quickly. Please wait a moment.",
			})
			return
		}
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	reply := s.engine.Handle(ctx, sess, req.Material)

	if err := s.store.Save(ctx, id, sess); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	resp := turnResponse{Response: reply.Text}
	if reply.Image != "" {
		resp.Image = &reply.Image
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleExport(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "export not available"})
		return
	}

	buf, err := s.ledger.ExportBookingsExcel(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to export bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func (s *Server) issueCookie(c *gin.Context) string {
	id := uuid.New().String()
	c.SetCookie(sessionCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}
