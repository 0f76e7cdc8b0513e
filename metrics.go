package main

import "github.com/prometheus/client_golang/prometheus"

const namespace = "stash"

func gaugeDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
}

var (
	// library gauges, rendered from the snapshot on every /metrics request
	scenesDesc     = gaugeDesc("scenes_total", "Number of scenes in the Stash library.")
	imagesDesc     = gaugeDesc("images_total", "Number of images in the Stash library.")
	galleriesDesc  = gaugeDesc("galleries_total", "Number of galleries in the Stash library.")
	performersDesc = gaugeDesc("performers_total", "Number of performers in the Stash library.")
	studiosDesc    = gaugeDesc("studios_total", "Number of studios in the Stash library.")
	tagsDesc       = gaugeDesc("tags_total", "Number of tags in the Stash library.")
	groupsDesc     = gaugeDesc("groups_total", "Number of groups in the Stash library.")
	filesDesc      = gaugeDesc("files_total", "Number of files in the Stash library.")

	filesSizeDesc  = gaugeDesc("files_size_bytes", "Total size of all files in the Stash library.")
	scenesSizeDesc = gaugeDesc("scenes_size_bytes", "Total size of all scene files.")
	imagesSizeDesc = gaugeDesc("images_size_bytes", "Total size of all image files.")

	scenesDurationDesc = gaugeDesc("scenes_duration_seconds", "Total runtime of all scenes.")
	playDurationDesc   = gaugeDesc("play_duration_seconds", "Total time spent playing scenes.")
	oCountDesc         = gaugeDesc("o_count_total", "Total O counter across the library.")
	playCountDesc      = gaugeDesc("play_count_total", "Total number of scene plays.")
	scenesPlayedDesc   = gaugeDesc("scenes_played_total", "Number of distinct scenes that have been played.")

	upDesc = gaugeDesc("up", "Whether the most recent scrape of Stash succeeded.")

	snapshotDescs = []*prometheus.Desc{
		scenesDesc, imagesDesc, galleriesDesc, performersDesc, studiosDesc,
		tagsDesc, groupsDesc, filesDesc, filesSizeDesc, scenesSizeDesc,
		imagesSizeDesc, scenesDurationDesc, playDurationDesc, oCountDesc,
		playCountDesc, scenesPlayedDesc, upDesc,
	}

	// exporter metrics
	scrapes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "scrapes_total",
		Help:      "Number of times this exporter has scraped stash",
	})
	scrapeErrs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "scrape_errors_total",
		Help:      "Number of times this exporter has failed to scrape stash",
	})
	lastSuccessTimestampSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "exporter",
		Name:      "last_success_timestamp_seconds",
		Help:      "Time that the library stats were last successfully retrieved.",
	})
)

func registerMetrics(reg prometheus.Registerer) {
	reg.MustRegister(scrapes)
	reg.MustRegister(scrapeErrs)
	reg.MustRegister(lastSuccessTimestampSeconds)
}
