package main

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	listenAddress = kingpin.Flag("listen-address", "Metrics exporter listen address.").
			Short('l').Envar("STASH_EXPORTER_LISTEN_ADDRESS").Default(":9100").String()
	stashGraphqlURL = kingpin.Flag("stash-graphql-url", "Stash GraphQL API endpoint.").
			Envar("STASH_GRAPHQL_URL").Default("http://localhost:9999/graphql").String()
	stashAPIKey = kingpin.Flag("stash-api-key", "API key for Stash GraphQL API authentication.").
			Envar("STASH_API_KEY").Required().String()
	scrapeIntervalSeconds = kingpin.Flag("scrape-interval-seconds", "Interval at which to retrieve stats from Stash, separate from being scraped by prometheus.").
				Envar("STASH_EXPORTER_SCRAPE_INTERVAL_SECONDS").Default("30").Int()
	scrapeTimeoutSeconds = kingpin.Flag("scrape-timeout-seconds", "Timeout for a single stats request to Stash.").
				Envar("STASH_EXPORTER_SCRAPE_TIMEOUT_SECONDS").Default("10").Int()
	logLevel = kingpin.Flag("log-level", "Log verbosity (debug, info, warn, error).").
			Envar("STASH_EXPORTER_LOG_LEVEL").Default("info").String()
)

// config is built once from flags/environment at startup and handed by
// reference to the components that need it.
type config struct {
	listenAddress   string
	stashGraphqlURL string
	stashAPIKey     string
	scrapeInterval  time.Duration
	scrapeTimeout   time.Duration
	logLevel        string
}

func newConfigFromFlags() (*config, error) {
	kingpin.Parse()
	cfg := &config{
		listenAddress:   *listenAddress,
		stashGraphqlURL: *stashGraphqlURL,
		stashAPIKey:     *stashAPIKey,
		scrapeInterval:  time.Duration(*scrapeIntervalSeconds) * time.Second,
		scrapeTimeout:   time.Duration(*scrapeTimeoutSeconds) * time.Second,
		logLevel:        *logLevel,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.scrapeInterval <= 0 {
		return errors.Errorf("scrape interval must be positive, got %s", c.scrapeInterval)
	}
	// A timeout at or above the interval would let scrapes pile up
	// behind a stuck remote call.
	if c.scrapeTimeout >= c.scrapeInterval {
		return errors.Errorf(
			"scrape timeout (%s) must be shorter than the scrape interval (%s)",
			c.scrapeTimeout, c.scrapeInterval,
		)
	}
	return nil
}
