package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	melcloudhome "github.com/joshp123/melcloudhome-golang"
	"github.com/joshp123/melcloudhome-golang/internal/daemon"
)

func main() {
	configPath := flag.String("config", "/etc/melcloudhomed/config.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := daemon.Load(*configPath)
	if err != nil {
		// Logger config lives in the file that failed to load.
		daemon.NewLogger(daemon.LoggingConfig{}).Error("load config", "error", err)
		os.Exit(1)
	}
	logger := daemon.NewLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []melcloudhome.ClientOption
	if cfg.Browser.ChromiumPath != "" {
		opts = append(opts, melcloudhome.WithChromiumPath(cfg.Browser.ChromiumPath))
	}
	client, err := melcloudhome.NewClient(opts...)
	if err != nil {
		logger.Error("new client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("logging in", "email", cfg.Credentials.Email)
	if err := client.Login(ctx, cfg.Credentials.Email, cfg.Credentials.Password); err != nil {
		logger.Error("login", "error", err)
		os.Exit(1)
	}
	logger.Info("login ok")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(melcloudhome.NewMetricsCollector(client))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{Addr: cfg.HTTP.Addr, Handler: mux}
	go func() {
		logger.Info("http listening", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http serve", "error", err)
			os.Exit(1)
		}
	}()

	var publisher *daemon.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = daemon.NewPublisher(cfg.MQTT)
		if err != nil {
			logger.Error("mqtt connect", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		go publishLoop(ctx, logger, client, publisher, time.Duration(cfg.Poll.Interval))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func publishLoop(ctx context.Context, logger *slog.Logger, client *melcloudhome.Client, publisher *daemon.Publisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	publishOnce(ctx, logger, client, publisher)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publishOnce(ctx, logger, client, publisher)
		}
	}
}

func publishOnce(ctx context.Context, logger *slog.Logger, client *melcloudhome.Client, publisher *daemon.Publisher) {
	devices, err := client.ListDevices(ctx)
	if err != nil {
		logger.Warn("list devices", "error", err)
		return
	}
	for _, device := range devices {
		if err := publisher.PublishDevice(device); err != nil {
			logger.Warn("publish device", "device_id", device.ID, "error", err)
		}
	}
	logger.Info("published device state", "devices", len(devices))
}
