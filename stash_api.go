package main

import (
	"context"
	"strings"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
)

// libraryStatsQuery asks Stash for cheap, aggregated statistics only —
// no per-scene data. If you run a customised schema, validate it in
// the Stash GraphQL playground (Settings > Tools) and adjust.
var libraryStatsQuery = `
query LibraryStats {
  stats {
    scene_count
    scenes_size
    scenes_duration

    image_count
    images_size

    file_count
    files_size

    gallery_count
    performer_count
    studio_count
    group_count
    tag_count

    total_o_count
    total_play_duration
    total_play_count
    scenes_played
  }
}
`

type graphqlRunner interface {
	Run(ctx context.Context, req *graphql.Request, resp interface{}) error
}

type stashClient struct {
	graphqlClient graphqlRunner
	apiKey        string
}

func newStashClient(graphqlURL, apiKey string) *stashClient {
	return &stashClient{
		graphqlClient: graphql.NewClient(graphqlURL),
		apiKey:        apiKey,
	}
}

// getLibraryStats performs a single stats request. It never retries;
// the next scheduled scrape is the retry.
func (c *stashClient) getLibraryStats(ctx context.Context) (statsSnapshot, error) {
	req := graphql.NewRequest(libraryStatsQuery)
	req.Header.Set("ApiKey", c.apiKey)

	var resp libraryStatsResp
	if err := c.graphqlClient.Run(ctx, req, &resp); err != nil {
		return statsSnapshot{}, classifyQueryError(err)
	}
	return resp.snapshot()
}

type scrapeErrorKind string

const (
	errKindNetwork scrapeErrorKind = "network"
	errKindGraphql scrapeErrorKind = "graphql"
	errKindPayload scrapeErrorKind = "payload"
)

// scrapeError carries the failure class so the scrape loop can log it.
// Callers treat every kind as the same failed-scrape outcome.
type scrapeError struct {
	kind scrapeErrorKind
	err  error
}

func (e *scrapeError) Error() string { return string(e.kind) + ": " + e.err.Error() }

func (e *scrapeError) Unwrap() error { return e.err }

// classifyQueryError sorts a machinebox/graphql error into a failure
// class. The library reports server-side errors with a "graphql:"
// prefix and wraps body-decoding failures with "decoding response";
// everything else is transport-level, including deadline expiry.
func classifyQueryError(err error) *scrapeError {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "graphql:"):
		return &scrapeError{kind: errKindGraphql, err: err}
	case strings.Contains(msg, "decoding response"):
		return &scrapeError{kind: errKindPayload, err: err}
	default:
		return &scrapeError{kind: errKindNetwork, err: errors.Wrap(err, "querying stash")}
	}
}

func scrapeFailureKind(err error) scrapeErrorKind {
	var sErr *scrapeError
	if errors.As(err, &sErr) {
		return sErr.kind
	}
	return errKindNetwork
}

// Pointer fields so that an incomplete payload is detectable rather
// than silently zero.
type libraryStatsResp struct {
	Stats *struct {
		SceneCount     *int64   `json:"scene_count"`
		ScenesSize     *float64 `json:"scenes_size"`
		ScenesDuration *float64 `json:"scenes_duration"`

		ImageCount *int64   `json:"image_count"`
		ImagesSize *float64 `json:"images_size"`

		FileCount *int64   `json:"file_count"`
		FilesSize *float64 `json:"files_size"`

		GalleryCount   *int64 `json:"gallery_count"`
		PerformerCount *int64 `json:"performer_count"`
		StudioCount    *int64 `json:"studio_count"`
		GroupCount     *int64 `json:"group_count"`
		TagCount       *int64 `json:"tag_count"`

		TotalOCount       *int64   `json:"total_o_count"`
		TotalPlayDuration *float64 `json:"total_play_duration"`
		TotalPlayCount    *int64   `json:"total_play_count"`
		ScenesPlayed      *int64   `json:"scenes_played"`
	} `json:"stats"`
}

func (r libraryStatsResp) snapshot() (statsSnapshot, error) {
	s := r.Stats
	if s == nil {
		return statsSnapshot{}, &scrapeError{
			kind: errKindPayload, err: errors.New("response has no stats block"),
		}
	}

	var missing []string
	need := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	need("scene_count", s.SceneCount != nil)
	need("scenes_size", s.ScenesSize != nil)
	need("scenes_duration", s.ScenesDuration != nil)
	need("image_count", s.ImageCount != nil)
	need("images_size", s.ImagesSize != nil)
	need("file_count", s.FileCount != nil)
	need("files_size", s.FilesSize != nil)
	need("gallery_count", s.GalleryCount != nil)
	need("performer_count", s.PerformerCount != nil)
	need("studio_count", s.StudioCount != nil)
	need("group_count", s.GroupCount != nil)
	need("tag_count", s.TagCount != nil)
	need("total_o_count", s.TotalOCount != nil)
	need("total_play_duration", s.TotalPlayDuration != nil)
	need("total_play_count", s.TotalPlayCount != nil)
	need("scenes_played", s.ScenesPlayed != nil)
	if len(missing) > 0 {
		return statsSnapshot{}, &scrapeError{
			kind: errKindPayload,
			err:  errors.Errorf("stats response missing fields: %s", strings.Join(missing, ", ")),
		}
	}

	return statsSnapshot{
		scenes:       *s.SceneCount,
		images:       *s.ImageCount,
		galleries:    *s.GalleryCount,
		performers:   *s.PerformerCount,
		studios:      *s.StudioCount,
		tags:         *s.TagCount,
		groups:       *s.GroupCount,
		files:        *s.FileCount,
		oCount:       *s.TotalOCount,
		playCount:    *s.TotalPlayCount,
		scenesPlayed: *s.ScenesPlayed,

		filesSizeBytes:  *s.FilesSize,
		scenesSizeBytes: *s.ScenesSize,
		imagesSizeBytes: *s.ImagesSize,

		scenesDurationSeconds: *s.ScenesDuration,
		playDurationSeconds:   *s.TotalPlayDuration,
	}, nil
}
