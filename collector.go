package main

import "github.com/prometheus/client_golang/prometheus"

// statsCollector renders the current snapshot for every /metrics
// request. Collect reads the store exactly once, so a single
// prometheus scrape can never observe a mix of two snapshot
// generations.
type statsCollector struct {
	store *snapshotStore
}

func newStatsCollector(store *snapshotStore) *statsCollector {
	return &statsCollector{store: store}
}

func (c *statsCollector) Describe(descs chan<- *prometheus.Desc) {
	for _, desc := range snapshotDescs {
		descs <- desc
	}
}

func (c *statsCollector) Collect(metrics chan<- prometheus.Metric) {
	snapshot := c.store.read()

	gauge := func(desc *prometheus.Desc, value float64) {
		metrics <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value)
	}

	gauge(scenesDesc, float64(snapshot.scenes))
	gauge(imagesDesc, float64(snapshot.images))
	gauge(galleriesDesc, float64(snapshot.galleries))
	gauge(performersDesc, float64(snapshot.performers))
	gauge(studiosDesc, float64(snapshot.studios))
	gauge(tagsDesc, float64(snapshot.tags))
	gauge(groupsDesc, float64(snapshot.groups))
	gauge(filesDesc, float64(snapshot.files))

	gauge(filesSizeDesc, snapshot.filesSizeBytes)
	gauge(scenesSizeDesc, snapshot.scenesSizeBytes)
	gauge(imagesSizeDesc, snapshot.imagesSizeBytes)

	gauge(scenesDurationDesc, snapshot.scenesDurationSeconds)
	gauge(playDurationDesc, snapshot.playDurationSeconds)
	gauge(oCountDesc, float64(snapshot.oCount))
	gauge(playCountDesc, float64(snapshot.playCount))
	gauge(scenesPlayedDesc, float64(snapshot.scenesPlayed))

	up := float64(0)
	if snapshot.up {
		up = 1
	}
	gauge(upDesc, up)
}
