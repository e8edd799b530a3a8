package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/acme/autocert"

	"tmibot/internal/app/adapters/http/handlers"
	"tmibot/internal/app/adapters/http/middlewares"
	"tmibot/internal/app/infrastructure/config"
	"tmibot/internal/app/ports"
	"tmibot/pkg/logger"
)

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log     logger.Logger
	manager *config.Manager
}

func NewRouter(log logger.Logger, manager *config.Manager, chat ports.ChatPort) *Router {
	r := &Router{
		router:      gin.Default(),
		handlers:    handlers.New(log, manager, chat),
		middlewares: middlewares.New(),
		log:         log,
		manager:     manager,
	}
	cfg := manager.Get()

	pprofGroup := r.router.Group("/", gin.BasicAuth(gin.Accounts{
		"admin": cfg.HTTP.AuthToken,
	}))
	pprof.Register(pprofGroup)

	r.router.GET("/metrics", gin.BasicAuth(gin.Accounts{
		"admin": cfg.HTTP.AuthToken,
	}), gin.WrapH(promhttp.Handler()))

	r.router.GET("/healthz", r.handlers.HealthHandler)

	api := r.router.Group("/", r.middlewares.Auth(cfg.HTTP.AuthToken))
	api.GET("/status", r.handlers.StatusHandler)
	api.POST("/send", r.handlers.SendHandler)
	api.PUT("/channels/:channel", r.handlers.JoinChannelHandler)
	api.DELETE("/channels/:channel", r.handlers.PartChannelHandler)

	return r
}

// Run serves plain HTTP on the configured address, or HTTPS with
// Let's Encrypt certificates when cert domains are set.
func (r *Router) Run() error {
	cfg := r.manager.Get()

	if len(cfg.HTTP.CertDomains) > 0 {
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.HTTP.CertDomains...),
			Cache:      autocert.DirCache("certs"),
		}

		srv := r.newServer(":443", r.router)
		srv.TLSConfig = manager.TLSConfig()

		go func() {
			if err := http.ListenAndServe(":80", manager.HTTPHandler(nil)); err != nil {
				r.log.Error("ACME challenge listener stopped", err)
			}
		}()
		return srv.ListenAndServeTLS("", "")
	}

	return r.newServer(cfg.HTTP.ListenAddr, r.router).ListenAndServe()
}

func (r *Router) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}
