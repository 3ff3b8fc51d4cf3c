package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adanyl0v/go-taskboard/internal/config"
	"github.com/adanyl0v/go-taskboard/internal/delivery/http/v1"
	"github.com/adanyl0v/go-taskboard/internal/media"
	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Media.MaxUploadSize
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")

	CloseNotifier(ctx)
}

func newServices() v1.Services {
	cfg := config.Global()
	m := metrics.New()
	logger := componentLogger("services")
	jwtCfg := cfg.JWT
	boardCfg := cfg.Board

	return v1.Services{
		Auth: services.NewAuthService(
			logger,
			globalStorage,
			jwtCfg.Issuer,
			[]byte(jwtCfg.SigningKey),
			jwtCfg.AccessTokenTTL,
			jwtCfg.RefreshTokenTTL,
		),
		Sessions: services.NewSessionService(logger, globalStorage),
		Tasks: services.NewTaskService(
			logger,
			globalStorage,
			globalNotifier,
			m,
			boardCfg.PageSize,
		),
		Projects:  services.NewProjectService(logger, globalStorage),
		Tags:      services.NewTagService(logger, globalStorage),
		Profiles:  services.NewProfileService(logger, globalStorage),
		Users:     services.NewUserService(logger, globalStorage, boardCfg.SearchLimit),
		Dashboard: services.NewDashboardService(logger, globalStorage, boardCfg.DashboardSize, boardCfg.UpcomingDays),
	}
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()
	mediaCfg := cfg.Media

	v1Handler := v1.New(
		componentLogger("http"),
		newServices(),
		media.NewStore(componentLogger("media"), mediaCfg.Root),
		metrics.New(),
		v1.Options{
			FallbackPath:  cfg.HTTP.FallbackPath,
			MediaURL:      mediaCfg.URL,
			MaxUploadSize: mediaCfg.MaxUploadSize,
		},
	)

	router.Use(v1Handler.HandleRequestMiddleware)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(strings.TrimSuffix(mediaCfg.URL, "/"), mediaCfg.Root)
	v1.Register(router, v1Handler)
}
