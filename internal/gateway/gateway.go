// Package gateway is an optional façade in front of the ShareIt API. It
// rejects malformed requests early and forwards the rest unchanged.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/logging"
	"shareit/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Gateway struct {
	cfg     config.Config
	engine  *gin.Engine
	proxy   *httputil.ReverseProxy
	auth    *api.Authenticator
	limiter *clientLimiter
	log     *zerolog.Logger
	server  *http.Server
	policy  service.BookingPolicy
	now     func() time.Time
}

func New(cfg config.Config, logger *zerolog.Logger) (*Gateway, error) {
	backend, err := url.Parse(cfg.Gateway.BackendURL)
	if err != nil || backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("invalid gateway backend url %q", cfg.Gateway.BackendURL)
	}

	g := &Gateway{
		cfg:     cfg,
		auth:    api.NewAuthenticator(cfg.API.Auth),
		limiter: newClientLimiter(cfg.Gateway.RateLimit),
		log:     logging.Component(logger, "gateway"),
		policy: service.BookingPolicy{
			StrictStart:           cfg.Booking.StrictStart,
			AllowRedecideRejected: cfg.Booking.AllowRedecideRejected,
		},
		now: time.Now,
	}

	g.proxy = httputil.NewSingleHostReverseProxy(backend)
	g.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.log.Error().Err(err).Str("path", r.URL.Path).Msg("backend unavailable")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"backend unavailable","kind":"internal"}`))
	}

	g.engine = gin.New()
	g.engine.Use(gin.Recovery(), g.accessLog(), cors.New(corsConfig(cfg.Gateway.CORS)), g.rateLimit())
	g.routes()

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           g.engine,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return g, nil
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Request-Id", "X-Sharer-User-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

func (g *Gateway) routes() {
	r := g.engine
	forward := g.forward

	r.GET("/healthz", forward)

	r.POST("/users", validateBody[userBody](g.policy, g.now), forward)
	r.GET("/users", forward)
	r.GET("/users/:id", validateID(), forward)
	r.PATCH("/users/:id", validateID(), validateBody[userPatchBody](g.policy, g.now), forward)
	r.DELETE("/users/:id", validateID(), forward)

	items := r.Group("/items")
	items.GET("/search", validatePage(g.cfg.Pagination), forward)
	items.Use(g.requireCaller())
	items.POST("", validateBody[itemBody](g.policy, g.now), forward)
	items.GET("", validatePage(g.cfg.Pagination), forward)
	items.GET("/:id", validateID(), forward)
	items.PATCH("/:id", validateID(), validateBody[itemPatchBody](g.policy, g.now), forward)
	items.DELETE("/:id", validateID(), forward)
	items.POST("/:id/comment", validateID(), validateBody[commentBody](g.policy, g.now), forward)

	bookings := r.Group("/bookings", g.requireCaller())
	bookings.POST("", validateBody[bookingBody](g.policy, g.now), forward)
	bookings.GET("", validateState(), validatePage(g.cfg.Pagination), forward)
	bookings.GET("/owner", validateState(), validatePage(g.cfg.Pagination), forward)
	bookings.GET("/owner/export", validateState(), validatePage(g.cfg.Pagination), forward)
	bookings.GET("/:id", validateID(), forward)
	bookings.PATCH("/:id", validateID(), validateApproved(), forward)

	requests := r.Group("/requests", g.requireCaller())
	requests.POST("", validateBody[requestBody](g.policy, g.now), forward)
	requests.GET("", forward)
	requests.GET("/all", validatePage(g.cfg.Pagination), forward)
	requests.GET("/:id", validateID(), forward)
}

func (g *Gateway) forward(c *gin.Context) {
	g.proxy.ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) Handler() http.Handler {
	return g.engine
}

func (g *Gateway) Start() error {
	g.log.Info().Str("addr", g.server.Addr).Str("backend", g.cfg.Gateway.BackendURL).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func (g *Gateway) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		g.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("client", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("gateway request")
	}
}

func abort(c *gin.Context, code int, kind, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message, "kind": kind})
}
