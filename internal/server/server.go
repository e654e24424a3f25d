// Package server wires the HTTP surface of the gateway: one route set per
// client dialect, all dispatching through the shared orchestrator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/polygate-dev/polygate/internal/config"
	"github.com/polygate-dev/polygate/internal/obs"
	"github.com/polygate-dev/polygate/internal/pool"
	"github.com/polygate-dev/polygate/internal/protocol"
	"github.com/polygate-dev/polygate/internal/server/middleware"
)

// ctxKeyKindOverride carries the /<kind>/ path prefix override through gin.
const ctxKeyKindOverride = "kindOverride"

// Server owns the gin engine and the request-path dependencies.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	pool   *pool.Pool
	models *pool.ModelCache

	metrics *obs.Metrics
	prom    *obs.PromMetrics
	usage   *obs.UsageStore

	systemPrompt *systemPrompt
	promptLog    *promptLog

	httpServer *http.Server
	stopWatch  func()
	refresher  *tokenRefresher
	prober     *healthProber
}

// NewServer assembles the gateway around an already-loaded pool.
func NewServer(cfg *config.Config, p *pool.Pool) *Server {
	s := &Server{
		cfg:          cfg,
		pool:         p,
		models:       pool.NewModelCache(p),
		metrics:      obs.NewMetrics(),
		prom:         obs.NewPromMetrics(),
		systemPrompt: newSystemPrompt(cfg.SystemPromptFilePath, cfg.SystemPromptMode),
		promptLog:    newPromptLog(cfg.PromptLogMode, cfg.PromptLogBaseName),
	}

	if cfg.UsageDBPath != "" {
		usage, err := obs.NewUsageStore(cfg.UsageDBPath)
		if err != nil {
			logrus.Warnf("usage store unavailable: %v", err)
		} else {
			s.usage = usage
		}
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(s.prom.Handler()))

	auth := middleware.APIKeyAuth(s.cfg.RequiredAPIKey)
	s.engine.GET("/stats", auth, s.handleStats)
	s.engine.GET("/stats/stream", auth, s.handleStatsStream)

	// Default routes plus one prefixed group per kind; the prefix forces
	// dispatch to that kind regardless of model naming.
	s.registerDialects(s.engine.Group("", auth), "")
	for _, kind := range protocol.KnownKinds {
		kind := kind
		group := s.engine.Group("/"+kind, auth, func(c *gin.Context) {
			c.Set(ctxKeyKindOverride, kind)
		})
		s.registerDialects(group, kind)
	}
}

func (s *Server) registerDialects(g *gin.RouterGroup, kind string) {
	g.POST("/v1/chat/completions", s.handleChatCompletions)
	g.POST("/v1/responses", s.handleResponses)
	g.POST("/v1/messages", s.handleMessages)
	g.GET("/v1/models", s.handleOpenAIModels)

	g.POST("/v1beta/models/*modelAction", s.handleGeminiGenerate)
	g.GET("/v1beta/models", s.handleGeminiModels)

	g.POST("/api/chat", s.handleOllamaChat)
	g.POST("/api/generate", s.handleOllamaGenerate)
	g.GET("/api/tags", s.handleOllamaTags)
	g.GET("/api/version", s.handleOllamaVersion)
	g.POST("/api/show", s.handleOllamaShow)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"pools":  s.pool.Health(),
	})
}

// Run starts the pool file watcher, the background token refresher, and
// the HTTP listener. Blocks until the listener stops.
func (s *Server) Run() error {
	if s.cfg.ProviderPoolsFilePath != "" {
		stop, err := s.pool.Watch(s.cfg.ProviderPoolsFilePath)
		if err != nil {
			logrus.Warnf("pool hot reload disabled: %v", err)
		} else {
			s.stopWatch = stop
		}
	}

	if s.cfg.CronRefreshToken {
		s.refresher = newTokenRefresher(s.pool, s.cfg.CronNearMinutes)
		s.refresher.Start()
	}

	s.prober = newHealthProber(s.pool, s.cfg.CronNearMinutes)
	s.prober.Start()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.ServerPort)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logrus.Infof("gateway listening on %s", addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and background tasks.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	if s.refresher != nil {
		s.refresher.Stop()
	}
	if s.prober != nil {
		s.prober.Stop()
	}
	s.metrics.Close()
	if s.usage != nil {
		s.usage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
