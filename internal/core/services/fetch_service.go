package services

import (
	"context"
	"fmt"
	"sync"

	"landkit/internal/core/domain"
	"landkit/internal/core/ports"
)

// FetchService guarantees an item's GeoJSON payload is available before a
// consuming action proceeds, and keeps the registry's per-item status
// consistent with the fetch lifecycle.
//
// Concurrent EnsurePayload calls for the same item share a single outbound
// request: the first caller fetches, later callers wait for its result.
type FetchService struct {
	registry *Registry
	fetcher  ports.PayloadFetcher

	mu       sync.Mutex
	inflight map[inflightKey]*fetchCall
}

type inflightKey struct {
	generation uint64
	uuid       string
}

type fetchCall struct {
	done    chan struct{}
	payload *domain.FeatureCollection
	err     error
}

// NewFetchService creates a new fetch service
func NewFetchService(registry *Registry, fetcher ports.PayloadFetcher) *FetchService {
	return &FetchService{
		registry: registry,
		fetcher:  fetcher,
		inflight: make(map[inflightKey]*fetchCall),
	}
}

// EnsurePayload returns the item's payload, fetching it through the relay
// on first use. A cached payload is returned immediately with no state
// change. Otherwise the item transitions to loading with its last error
// cleared, exactly one request goes out, and the item lands on idle with
// the payload set, or on error with a failure description.
func (s *FetchService) EnsurePayload(ctx context.Context, uuid string) (*domain.FeatureCollection, error) {
	item, ok := s.registry.Get(uuid)
	if !ok {
		return nil, fmt.Errorf("unknown item: %s", uuid)
	}
	if item.Payload != nil {
		return item.Payload, nil
	}

	gen := s.registry.Generation()
	key := inflightKey{generation: gen, uuid: uuid}

	s.mu.Lock()
	if call, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.payload, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	// Re-check under the lock: a fetch that resolved while this caller was
	// waiting to enter has already cached the payload.
	if current, ok := s.registry.Get(uuid); ok && current.Payload != nil {
		s.mu.Unlock()
		return current.Payload, nil
	}
	call := &fetchCall{done: make(chan struct{})}
	s.inflight[key] = call
	s.mu.Unlock()

	call.payload, call.err = s.fetch(ctx, gen, item)
	close(call.done)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()

	return call.payload, call.err
}

func (s *FetchService) fetch(ctx context.Context, gen uint64, item domain.DownloadItem) (*domain.FeatureCollection, error) {
	item.Status = domain.StatusLoading
	item.LastError = ""
	s.registry.replace(gen, item.UUID, item)

	payload, err := s.fetcher.FetchPayload(ctx, item.SourceLocation)
	if err != nil {
		item.Status = domain.StatusError
		item.LastError = err.Error()
		s.registry.replace(gen, item.UUID, item)
		return nil, fmt.Errorf("fetch failed for %q: %w", item.Name, err)
	}

	item.Payload = payload
	item.Status = domain.StatusIdle
	s.registry.replace(gen, item.UUID, item)
	return payload, nil
}
