package main

import "sync"

// statsSnapshot is the last known set of library-wide statistics
// reported by Stash, plus whether the most recent scrape succeeded.
type statsSnapshot struct {
	scenes       int64
	images       int64
	galleries    int64
	performers   int64
	studios      int64
	tags         int64
	groups       int64
	files        int64
	oCount       int64
	playCount    int64
	scenesPlayed int64

	filesSizeBytes  float64
	scenesSizeBytes float64
	imagesSizeBytes float64

	scenesDurationSeconds float64
	playDurationSeconds   float64

	up bool
}

// snapshotStore holds the current snapshot. The scrape loop is the
// only writer; every /metrics request reads concurrently. Reads copy
// the struct out under the lock, so a reader can never observe fields
// from two different scrapes.
type snapshotStore struct {
	mu       sync.RWMutex
	snapshot statsSnapshot
}

func newSnapshotStore() *snapshotStore {
	// Zero value: all counts at zero, up=false, until the first
	// successful scrape.
	return &snapshotStore{}
}

// replace swaps in a whole new snapshot and marks the exporter up.
func (s *snapshotStore) replace(snapshot statsSnapshot) {
	snapshot.up = true
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

// markDown clears the up flag. The numeric fields keep their last
// successful values so they stay visible next to stash_up 0.
func (s *snapshotStore) markDown() {
	s.mu.Lock()
	s.snapshot.up = false
	s.mu.Unlock()
}

func (s *snapshotStore) read() statsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}
