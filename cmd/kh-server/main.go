package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keyhost/internal/server"
	"keyhost/internal/shared"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("KH_CONFIG"), "path to optional YAML config")
	flag.Parse()

	cfg, err := shared.LoadServerConfig(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}

	log, err := shared.NewLogger(cfg, os.Stderr)
	if err != nil {
		logrus.Fatalf("log_level: %v", err)
	}

	store, err := server.OpenStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer store.Close()

	api := &server.API{
		Store:     store,
		Log:       log,
		BodyLimit: cfg.BodyLimitBytes,
	}
	if cfg.MetricsEnabled() {
		api.Metrics = server.NewMetrics()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewHandler(api, server.NewStaticHandler(cfg.Root), server.ReservedPrefixes(cfg.Root, cfg.DataDir)...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"store": cfg.Store,
		"root":  cfg.Root,
		"data":  cfg.DataDir,
	}).Infof("Server listening on http://localhost:%d", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("listen failed")
		store.Close()
		os.Exit(1)
	}
	<-idle
	log.Info("server stopped")
}
