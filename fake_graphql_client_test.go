package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/machinebox/graphql"
)

// fakeGraphqlClient replays a JSON fixture (wrapped in the {"data": ...}
// envelope a real GraphQL server sends) for every Run call. A non-nil
// err takes precedence over the fixture; a non-zero delay simulates a
// slow remote, honouring context cancellation like the real client.
type fakeGraphqlClient struct {
	responseFixturePath string
	delay               time.Duration

	mu          sync.Mutex
	err         error
	runs        int
	inFlight    int
	maxInFlight int
}

func newFakeGraphqlClient(responseFixturePath string) *fakeGraphqlClient {
	return &fakeGraphqlClient{responseFixturePath: responseFixturePath}
}

func (g *fakeGraphqlClient) Run(ctx context.Context, _ *graphql.Request, respPtr interface{}) error {
	g.mu.Lock()
	g.runs++
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	forcedErr := g.err
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if forcedErr != nil {
		return forcedErr
	}

	responseFixture, err := os.Open(filepath.Join("testdata", g.responseFixturePath))
	if err != nil {
		return err
	}
	defer responseFixture.Close()
	var wrappedResponse map[string]interface{}
	if err := json.NewDecoder(responseFixture).Decode(&wrappedResponse); err != nil {
		return err
	}
	unwrappedSerialisedResp, err := json.Marshal(wrappedResponse["data"])
	if err != nil {
		return err
	}
	return json.Unmarshal(unwrappedSerialisedResp, respPtr)
}

func (g *fakeGraphqlClient) setError(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

func (g *fakeGraphqlClient) stats() (runs, maxInFlight int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runs, g.maxInFlight
}
