package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coreMetrics = []string{
	"stash_scenes_total", "stash_images_total", "stash_performers_total",
	"stash_studios_total", "stash_files_total", "stash_files_size_bytes",
	"stash_up",
}

func newTestExporter(fake *fakeGraphqlClient, store *snapshotStore) *exporter {
	return &exporter{
		logger:         newPromLogger("error"),
		stash:          &stashClient{graphqlClient: fake, apiKey: "test-key"},
		store:          store,
		scrapeInterval: 10 * time.Millisecond,
		scrapeTimeout:  5 * time.Millisecond,
	}
}

func TestScrapeStashOnce_UpdatesLibraryGauges(t *testing.T) {
	for _, testCase := range []struct {
		name                       string
		metricsUnderTest           []string
		expectedMetricsFixturePath string
	}{
		{
			name:                       "reports the library counts and up after a successful scrape",
			metricsUnderTest:           coreMetrics,
			expectedMetricsFixturePath: "expected_library_stats.metrics",
		},
		{
			name: "reports size, duration and playback aggregates",
			metricsUnderTest: []string{
				"stash_galleries_total", "stash_tags_total", "stash_groups_total",
				"stash_scenes_size_bytes", "stash_images_size_bytes",
				"stash_scenes_duration_seconds", "stash_play_duration_seconds",
				"stash_o_count_total", "stash_play_count_total", "stash_scenes_played_total",
			},
			expectedMetricsFixturePath: "expected_library_aggregates.metrics",
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			store := newSnapshotStore()
			reg := prometheus.NewPedanticRegistry()
			reg.MustRegister(newStatsCollector(store))

			stashExporter := newTestExporter(newFakeGraphqlClient("library_stats_resp.json"), store)
			require.Nil(t, stashExporter.scrapeStashOnce(context.Background()))

			fixture, err := os.Open(filepath.Join("testdata", testCase.expectedMetricsFixturePath))
			require.Nil(t, err)
			defer fixture.Close()

			// This error is formatted much nicer using stdlib testing.
			if err := testutil.GatherAndCompare(reg, fixture, testCase.metricsUnderTest...); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestScrapeStashOnce_FailurePreservesLastKnownValues(t *testing.T) {
	store := newSnapshotStore()
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(newStatsCollector(store))

	fake := newFakeGraphqlClient("library_stats_resp.json")
	stashExporter := newTestExporter(fake, store)
	require.Nil(t, stashExporter.scrapeStashOnce(context.Background()))

	fake.setError(errors.New(`Post "http://stash:9999/graphql": i/o timeout`))
	err := stashExporter.scrapeStashOnce(context.Background())
	require.NotNil(t, err)
	assert.Equal(t, errKindNetwork, scrapeFailureKind(err))

	fixture, err := os.Open(filepath.Join("testdata", "expected_library_stats_down.metrics"))
	require.Nil(t, err)
	defer fixture.Close()

	if err := testutil.GatherAndCompare(reg, fixture, coreMetrics...); err != nil {
		t.Fatal(err)
	}
}

func TestScrapeStash_NeverOverlapsScrapes(t *testing.T) {
	// Each scrape takes longer than the interval; ticks that fire while
	// one is in flight must be skipped, not queued.
	fake := newFakeGraphqlClient("library_stats_resp.json")
	fake.delay = 25 * time.Millisecond

	stashExporter := newTestExporter(fake, newSnapshotStore())
	stashExporter.scrapeInterval = 10 * time.Millisecond
	stashExporter.scrapeTimeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stashExporter.scrapeStash(ctx) }()

	time.Sleep(120 * time.Millisecond)
	cancel()
	require.Nil(t, <-done)

	runs, maxInFlight := fake.stats()
	assert.Equal(t, 1, maxInFlight)
	// Far fewer attempts than the 12 ticks that fired.
	assert.True(t, runs <= 7, "expected skipped ticks, got %d scrapes", runs)
}

func TestScrapeStash_HonorsScrapeInterval(t *testing.T) {
	fake := newFakeGraphqlClient("library_stats_resp.json")

	stashExporter := newTestExporter(fake, newSnapshotStore())
	stashExporter.scrapeInterval = 20 * time.Millisecond
	stashExporter.scrapeTimeout = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stashExporter.scrapeStash(ctx) }()

	time.Sleep(110 * time.Millisecond)
	cancel()
	require.Nil(t, <-done)

	// One eager scrape plus floor(110/20) ticks, with slack for slow CI.
	runs, _ := fake.stats()
	assert.True(t, runs >= 3 && runs <= 9, "got %d scrapes in a 110ms window", runs)
}

func TestScrapeStash_StopsPromptlyOnCancellation(t *testing.T) {
	stashExporter := newTestExporter(newFakeGraphqlClient("library_stats_resp.json"), newSnapshotStore())
	stashExporter.scrapeInterval = time.Hour
	stashExporter.scrapeTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stashExporter.scrapeStash(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(time.Second):
		t.Fatal("scrape loop did not stop after cancellation")
	}
}
