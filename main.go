package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
)

func main() {
	// kingpin exits non-zero on its own when the API key is absent.
	cfg, err := newConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newPromLogger(cfg.logLevel)
	level.Info(logger).Log("msg", "starting stash exporter", "stash_url", cfg.stashGraphqlURL)

	store := newSnapshotStore()

	reg := prometheus.NewRegistry()
	registerMetrics(reg)
	reg.MustRegister(newStatsCollector(store))
	reg.MustRegister(version.NewCollector("stash_exporter"))

	stashExporter := &exporter{
		logger:         log.With(logger, "component", "scheduler"),
		stash:          newStashClient(cfg.stashGraphqlURL, cfg.stashAPIKey),
		store:          store,
		scrapeInterval: cfg.scrapeInterval,
		scrapeTimeout:  cfg.scrapeTimeout,
	}

	router := http.NewServeMux()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      promhttpLogger{logger: log.With(logger, "component", "handler")},
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	server := &http.Server{Handler: router}

	serverSocket, err := net.Listen("tcp", cfg.listenAddress)
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "listening", "address", cfg.listenAddress)

	runGroup := run.Group{}
	runGroup.Add(func() error {
		return server.Serve(serverSocket)
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	})

	scrapeCtx, cancelScrape := context.WithCancel(context.Background())
	runGroup.Add(func() error {
		return stashExporter.scrapeStash(scrapeCtx)
	}, func(error) {
		cancelScrape()
	})

	runGroup.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	if err := runGroup.Run(); err != nil {
		if _, ok := err.(run.SignalError); ok {
			level.Info(logger).Log("msg", "shutting down", "reason", err)
			return
		}
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}
