package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cloudops-dev/cloudops/pkg/audit"
	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
	"github.com/cloudops-dev/cloudops/pkg/metrics"
	"github.com/cloudops-dev/cloudops/pkg/ratelimit"
	"github.com/cloudops-dev/cloudops/pkg/storage"
	"github.com/cloudops-dev/cloudops/pkg/system"
	"github.com/cloudops-dev/cloudops/pkg/telemetry"
)

const (
	DefaultListenAddress = "127.0.0.1:8080"
	DefaultSessionTTL    = 8 * time.Hour
)

type ServerConfig struct {
	Auth     auth.Config
	Sessions storage.Scoped
	Log      *zap.Logger
	Debug    bool

	// AssetsDir, when set, is served under /assets.
	AssetsDir  string
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure. Enable it behind TLS.
	SecureCookie   bool
	VerifierLength int
	// HTTPClient is used for the token exchange. When nil, one client is built
	// from Auth.CAFile/InsecureSkipTLS and shared by every visitor.
	HTTPClient *http.Client
	// Audit receives login and logout events. The server closes it on Close.
	Audit audit.Sink
}

type Server struct {
	gin         *gin.Engine
	cfg         ServerConfig
	log         *zap.SugaredLogger
	authLimiter *ratelimit.IPRateLimiter
	apiLimiter  *ratelimit.IPRateLimiter
	// owned is set when the server created its own in-memory sessions.
	owned *storage.Sessions
	audit *audit.Recorder
	// ownsClient is set when HTTPClient was built here and its pool is ours to release.
	ownsClient bool

	closeOnce sync.Once
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	var owned *storage.Sessions
	if cfg.Sessions == nil {
		owned = storage.NewSessions(cfg.SessionTTL)
		cfg.Sessions = owned
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	ownsClient := false
	if cfg.HTTPClient == nil {
		client, err := auth.NewHTTPClient(cfg.Auth)
		if err != nil {
			// each callback reports the same error to the visitor
			cfg.Log.Warn("Failed to build provider HTTP client", zap.Error(err))
		} else {
			cfg.HTTPClient = client
			ownsClient = true
		}
	}

	engine := gin.New()
	engine.Use(
		telemetry.Middleware(),
		system.RequestLogger(cfg.Log.Sugar()),
		ginzap.GinzapWithConfig(cfg.Log, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			// The callback query carries the authorization code.
			SkipPaths: []string{"/callback", "/healthz"},
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{zap.String("requestID", c.GetString(system.RequestIDKey))}
			},
		}),
		ginzap.RecoveryWithZap(cfg.Log, true),
	)

	if cfg.Debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:8080"},
				AllowMethods:     []string{"GET", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Accept", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}),
		)
	}
	if cfg.AssetsDir != "" {
		engine.Use(ServeAssets("/assets", cfg.AssetsDir))
	}

	s := &Server{
		gin:         engine,
		cfg:         cfg,
		log:         cfg.Log.Sugar(),
		authLimiter: ratelimit.New(ratelimit.DefaultAuthConfig()),
		apiLimiter:  ratelimit.New(ratelimit.DefaultAPIConfig()),
		owned:       owned,
		ownsClient:  ownsClient,
	}
	if cfg.Audit != nil {
		s.audit = audit.NewRecorder(cfg.Audit, cfg.Log)
	}
	onLimited := func(path string) { metrics.RateLimited.WithLabelValues(path).Inc() }
	s.authLimiter.OnLimited = onLimited
	s.apiLimiter.OnLimited = onLimited
	s.routes()
	return s
}

func (s *Server) routes() {
	s.gin.GET("/healthz", s.healthz)
	s.gin.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	visitor := s.gin.Group("/", s.sessionMiddleware())
	authGroup := visitor.Group("", s.authLimiter.Middleware())
	authGroup.GET("/login", s.login)
	authGroup.GET("/callback", s.callback)
	authGroup.GET("/logout", s.logout)

	apiGroup := visitor.Group("/api", s.apiLimiter.Middleware())
	apiGroup.GET("/session", s.getSession)
	apiGroup.GET("/dashboard", s.getDashboard)
	apiGroup.GET("/config", s.getConfig)

	visitor.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	visitor.GET("/:route", s.page)
	s.gin.NoRoute(s.notFound)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultListenAddress
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases background goroutines owned by the server. Repeated calls are no-ops.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.authLimiter.Stop()
		s.apiLimiter.Stop()
		if s.owned != nil {
			s.owned.Close()
		}
		if s.ownsClient {
			s.cfg.HTTPClient.CloseIdleConnections()
		}
		if err := s.audit.Close(); err != nil {
			s.log.Warnw("Failed to close audit sink", "error", err)
		}
	})
}
