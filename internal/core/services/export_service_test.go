package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landkit/internal/core/domain"
	"landkit/internal/core/ports/mocks"
)

func newExportFixture(t *testing.T) (*ExportService, *mocks.MockPayloadFetcher, *mocks.MockClipboard, *Registry) {
	t.Helper()

	registry := NewRegistry()
	registry.ReplaceAll([]domain.DownloadItem{
		domain.NewDownloadItem("u1", "Field A", "https://x/y"),
	})

	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetPayload("https://x/y", testPayload(t))

	clip := mocks.NewMockClipboard()
	svc := NewExportService(registry, NewFetchService(registry, fetcher), clip)
	return svc, fetcher, clip, registry
}

func TestCopyItem(t *testing.T) {
	svc, _, clip, _ := newExportFixture(t)

	if err := svc.CopyItem(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := clip.Contents()
	if !strings.Contains(got, `"type": "FeatureCollection"`) {
		t.Errorf("clipboard missing pretty-printed payload:\n%s", got)
	}
	if !strings.HasPrefix(got, "{\n  ") {
		t.Errorf("clipboard content not 2-space indented:\n%s", got)
	}
}

func TestCopyItemClipboardFailure(t *testing.T) {
	svc, _, clip, _ := newExportFixture(t)
	clip.SetError(errors.New("no display"))

	err := svc.CopyItem(context.Background(), "u1")
	if err == nil || !strings.Contains(err.Error(), "clipboard") {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestSaveGeoJSON(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)
	dir := t.TempDir()

	resp, err := svc.SaveGeoJSON(context.Background(), ExportRequest{UUID: "u1", OutputDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(resp.Path) != "Field_A.geojson" {
		t.Errorf("unexpected filename: %s", resp.Path)
	}

	data, err := os.ReadFile(resp.Path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), `"name": "Zone 1"`) {
		t.Errorf("exported file missing payload content:\n%s", data)
	}
}

func TestSaveKML(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)
	dir := t.TempDir()

	resp, err := svc.SaveKML(context.Background(), ExportRequest{UUID: "u1", OutputDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(resp.Path) != "Field_A.kml" {
		t.Errorf("unexpected filename: %s", resp.Path)
	}

	data, err := os.ReadFile(resp.Path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "<name>Zone 1</name>") {
		t.Errorf("KML missing placemark:\n%s", doc)
	}
	if !strings.Contains(doc, "1,2,3") || !strings.Contains(doc, "4,5,6") {
		t.Errorf("KML missing coordinates:\n%s", doc)
	}
}

func TestExportActionsShareMemoizedFetch(t *testing.T) {
	svc, fetcher, _, _ := newExportFixture(t)
	dir := t.TempDir()

	if err := svc.CopyItem(context.Background(), "u1"); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if _, err := svc.SaveGeoJSON(context.Background(), ExportRequest{UUID: "u1", OutputDir: dir}); err != nil {
		t.Fatalf("save geojson failed: %v", err)
	}
	if _, err := svc.SaveKML(context.Background(), ExportRequest{UUID: "u1", OutputDir: dir}); err != nil {
		t.Fatalf("save kml failed: %v", err)
	}

	if got := fetcher.Calls("https://x/y"); got != 1 {
		t.Errorf("expected one outbound request across actions, got %d", got)
	}
}

func TestExportPropagatesFetchFailure(t *testing.T) {
	registry := NewRegistry()
	registry.ReplaceAll([]domain.DownloadItem{
		domain.NewDownloadItem("u1", "Field A", "https://x/y"),
	})
	fetcher := mocks.NewMockPayloadFetcher()
	fetcher.SetError("https://x/y", errors.New("Failed to fetch GeoJSON: 500 Internal Server Error"))

	svc := NewExportService(registry, NewFetchService(registry, fetcher), mocks.NewMockClipboard())

	if _, err := svc.SaveKML(context.Background(), ExportRequest{UUID: "u1", OutputDir: t.TempDir()}); err == nil {
		t.Fatal("expected error")
	}

	item, _ := registry.Get("u1")
	if item.Status != domain.StatusError || item.LastError == "" {
		t.Errorf("item not marked failed: %+v", item)
	}
}

func TestExportUnknownItem(t *testing.T) {
	svc, _, _, _ := newExportFixture(t)

	if err := svc.CopyItem(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown item on copy")
	}
	if _, err := svc.SaveGeoJSON(context.Background(), ExportRequest{UUID: "nope"}); err == nil {
		t.Error("expected error for unknown item on save")
	}
}
