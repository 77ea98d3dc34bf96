package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/sahanirahul/bihar-election-2025/config"
	"github.com/sahanirahul/bihar-election-2025/db"
	"github.com/sahanirahul/bihar-election-2025/handlers"
	applog "github.com/sahanirahul/bihar-election-2025/logger"
	mw "github.com/sahanirahul/bihar-election-2025/middleware"
	"github.com/sahanirahul/bihar-election-2025/predictions"
	"github.com/sahanirahul/bihar-election-2025/store"
	"github.com/sahanirahul/bihar-election-2025/store/bunstore"
	"github.com/sahanirahul/bihar-election-2025/store/filestore"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	var st store.Store
	switch cfg.Store {
	case config.StoreFile:
		fs, err := filestore.New(cfg.PredictionsFile)
		if err != nil {
			logger.Fatal("open predictions file failed", zap.Error(err))
		}
		st = fs
		logger.Info("using file store", zap.String("path", cfg.PredictionsFile))
	default:
		bdb := db.Setup(cfg)
		defer bdb.Close()
		if err := db.CreateTables(context.Background(), bdb); err != nil {
			logger.Fatal("create tables failed", zap.Error(err))
		}
		st = bunstore.New(bdb)
		logger.Info("using postgres store")
	}

	svc := predictions.New(st, cfg.MaxPredictionsPerIP)
	h := handlers.New(svc, st)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))
	e.Use(mw.ClientIdentity())

	e.GET("/predictions", h.ListPredictions)
	e.GET("/predictions/count", h.PredictionCount)
	e.POST("/predictions", h.CreatePrediction)
	e.DELETE("/predictions/:id", h.DeletePrediction)
	e.GET("/health", h.Health)

	// Frontend assets with SPA fallback, if a static dir is configured.
	if cfg.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/health" || p == "/predictions" || strings.HasPrefix(p, "/predictions/")
			},
		}))
	}

	if cfg.Debug || len(cfg.TLSDomains) == 0 {
		logger.Info("starting server", zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("starting tls server", zap.Strings("domains", cfg.TLSDomains))
	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
