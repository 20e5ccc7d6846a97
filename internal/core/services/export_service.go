package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"landkit/internal/core/domain"
	"landkit/internal/core/ports"
	"landkit/pkg/kml"
)

// ExportService implements the per-item user actions: copy the payload to
// the clipboard, save it as .geojson, or save it converted to .kml. Every
// action ensures the payload first and propagates its failure; a failed
// action never disturbs other items.
type ExportService struct {
	registry *Registry
	fetch    *FetchService
	clip     ports.Clipboard
}

// NewExportService creates a new export service
func NewExportService(registry *Registry, fetch *FetchService, clip ports.Clipboard) *ExportService {
	return &ExportService{
		registry: registry,
		fetch:    fetch,
		clip:     clip,
	}
}

// ExportRequest represents a request to export one item
type ExportRequest struct {
	UUID      string
	OutputDir string
}

// ExportResponse reports where an export landed
type ExportResponse struct {
	Path string
}

// CopyItem writes the pretty-printed payload to the system clipboard
func (s *ExportService) CopyItem(ctx context.Context, uuid string) error {
	_, pretty, err := s.payloadJSON(ctx, uuid)
	if err != nil {
		return err
	}

	if err := s.clip.WriteAll(pretty); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}

// SaveGeoJSON writes the payload as <sanitized-name>.geojson with 2-space
// indentation, identical to the retrieved document apart from whitespace.
func (s *ExportService) SaveGeoJSON(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	item, pretty, err := s.payloadJSON(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	path, err := s.writeFile(req.OutputDir, item.Name, ".geojson", []byte(pretty))
	if err != nil {
		return nil, err
	}
	return &ExportResponse{Path: path}, nil
}

// SaveKML converts the payload and writes it as <sanitized-name>.kml
func (s *ExportService) SaveKML(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	item, ok := s.registry.Get(req.UUID)
	if !ok {
		return nil, fmt.Errorf("unknown item: %s", req.UUID)
	}

	payload, err := s.fetch.EnsurePayload(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	doc := kml.Convert(payload, item.Name)
	path, err := s.writeFile(req.OutputDir, item.Name, ".kml", []byte(doc))
	if err != nil {
		return nil, err
	}
	return &ExportResponse{Path: path}, nil
}

func (s *ExportService) payloadJSON(ctx context.Context, uuid string) (domain.DownloadItem, string, error) {
	item, ok := s.registry.Get(uuid)
	if !ok {
		return domain.DownloadItem{}, "", fmt.Errorf("unknown item: %s", uuid)
	}

	payload, err := s.fetch.EnsurePayload(ctx, uuid)
	if err != nil {
		return domain.DownloadItem{}, "", err
	}

	pretty, err := payload.PrettyJSON()
	if err != nil {
		return domain.DownloadItem{}, "", err
	}
	return item, pretty, nil
}

func (s *ExportService) writeFile(dir, name, ext string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, domain.SanitizeFilename(name)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
