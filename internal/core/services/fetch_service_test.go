package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"landkit/internal/core/domain"
	"landkit/internal/core/ports/mocks"
)

func testPayload(t *testing.T) *domain.FeatureCollection {
	t.Helper()

	var fc domain.FeatureCollection
	payload := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,2,3],[4,5,6]]]},"properties":{"name":"Zone 1"}}]}`
	if err := json.Unmarshal([]byte(payload), &fc); err != nil {
		t.Fatalf("invalid test payload: %v", err)
	}
	return &fc
}

func seededRegistry() *Registry {
	r := NewRegistry()
	r.ReplaceAll([]domain.DownloadItem{
		domain.NewDownloadItem("u1", "Field A", "https://x/y"),
	})
	return r
}

func TestEnsurePayloadSuccess(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetPayload("https://x/y", testPayload(t))

	svc := NewFetchService(registry, fetcher)

	payload, err := svc.EnsurePayload(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload == nil || payload.Type != "FeatureCollection" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	item, _ := registry.Get("u1")
	if item.Status != domain.StatusIdle {
		t.Errorf("status = %s, want idle", item.Status)
	}
	if item.Payload == nil {
		t.Error("payload not cached on item")
	}
	if item.LastError != "" {
		t.Errorf("lastError = %q, want empty", item.LastError)
	}
}

func TestEnsurePayloadMemoized(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetPayload("https://x/y", testPayload(t))

	svc := NewFetchService(registry, fetcher)

	if _, err := svc.EnsurePayload(context.Background(), "u1"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.EnsurePayload(context.Background(), "u1"); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if got := fetcher.Calls("https://x/y"); got != 1 {
		t.Errorf("expected exactly 1 outbound request, got %d", got)
	}
}

func TestEnsurePayloadFailure(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetError("https://x/y", errors.New("Failed to fetch GeoJSON: 403 Forbidden"))

	svc := NewFetchService(registry, fetcher)

	_, err := svc.EnsurePayload(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected error")
	}

	item, _ := registry.Get("u1")
	if item.Status != domain.StatusError {
		t.Errorf("status = %s, want error", item.Status)
	}
	if item.LastError != "Failed to fetch GeoJSON: 403 Forbidden" {
		t.Errorf("lastError = %q", item.LastError)
	}
	if item.Payload != nil {
		t.Error("payload set despite failure")
	}
}

func TestEnsurePayloadRetryAfterFailure(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetError("https://x/y", errors.New("boom"))

	svc := NewFetchService(registry, fetcher)

	if _, err := svc.EnsurePayload(context.Background(), "u1"); err == nil {
		t.Fatal("expected first attempt to fail")
	}

	// A re-triggered action proceeds as a fresh fetch: the error clears
	// and success lands normally.
	fetcher.SetPayload("https://x/y", testPayload(t))
	fetcher.SetError("https://x/y", nil)

	if _, err := svc.EnsurePayload(context.Background(), "u1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	item, _ := registry.Get("u1")
	if item.Status != domain.StatusIdle || item.LastError != "" || item.Payload == nil {
		t.Errorf("retry did not recover item state: %+v", item)
	}
	if got := fetcher.Calls("https://x/y"); got != 2 {
		t.Errorf("expected 2 outbound requests, got %d", got)
	}
}

func TestEnsurePayloadUnknownItem(t *testing.T) {
	svc := NewFetchService(NewRegistry(), mocks.NewMockPayloadFetcher())

	if _, err := svc.EnsurePayload(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown item")
	}
}

func TestEnsurePayloadConcurrentCallsShareRequest(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetPayload("https://x/y", testPayload(t))

	svc := NewFetchService(registry, fetcher)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.EnsurePayload(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d failed: %v", i, err)
		}
	}

	// Single-flight: overlapping callers share one outbound request.
	if got := fetcher.Calls("https://x/y"); got != 1 {
		t.Errorf("expected exactly 1 outbound request, got %d", got)
	}
}

func TestEnsurePayloadAbandonedAfterReplaceAll(t *testing.T) {
	registry := seededRegistry()
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetError("https://x/y", errors.New("slow failure"))

	svc := NewFetchService(registry, fetcher)

	gen := registry.Generation()
	item, _ := registry.Get("u1")

	// Replace the collection mid-flight, then let the old fetch complete.
	registry.ReplaceAll([]domain.DownloadItem{
		domain.NewDownloadItem("u1", "Field A", "https://x/y"),
	})
	if _, err := svc.fetch(context.Background(), gen, item); err == nil {
		t.Fatal("expected fetch error")
	}

	fresh, _ := registry.Get("u1")
	if fresh.Status != domain.StatusIdle || fresh.LastError != "" {
		t.Errorf("abandoned fetch state merged into new registry: %+v", fresh)
	}
}
