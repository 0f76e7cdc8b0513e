package main

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type exporter struct {
	logger         log.Logger
	stash          *stashClient
	store          *snapshotStore
	scrapeInterval time.Duration
	scrapeTimeout  time.Duration
}

// scrapeStash polls Stash once at startup and then on every tick until
// ctx is cancelled. The loop is synchronous, so at most one request is
// ever in flight; ticks that fire mid-scrape coalesce into a single
// pending tick rather than queueing up.
func (e *exporter) scrapeStash(ctx context.Context) error {
	ticker := time.NewTicker(e.scrapeInterval)
	defer ticker.Stop()

	for {
		duration, err := timeOperation(func() error {
			return e.scrapeStashOnce(ctx)
		})
		if err != nil {
			// Returning an error here would crash the exporter. If it
			// crashloops but prometheus manages to scrape it in between
			// crashes, we might never notice the stats are stale. Instead,
			// alert on stash_up / stash_exporter_scrape_errors_total.
			level.Error(e.logger).Log("msg", "scrape failed", "kind", scrapeFailureKind(err), "err", err)
		} else {
			level.Debug(e.logger).Log("msg", "scrape complete", "duration", duration)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (e *exporter) scrapeStashOnce(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			scrapeErrs.Inc()
			e.store.markDown()
		}
	}()

	scrapes.Inc()

	ctx, cancel := context.WithTimeout(ctx, e.scrapeTimeout)
	defer cancel()

	snapshot, err := e.stash.getLibraryStats(ctx)
	if err != nil {
		return err
	}

	e.store.replace(snapshot)
	lastSuccessTimestampSeconds.SetToCurrentTime()
	return nil
}
