package ports

import (
	"context"

	"landkit/internal/core/domain"
)

// PayloadFetcher defines the port for retrieving a GeoJSON payload from a
// signed URL through the fetch relay
type PayloadFetcher interface {
	// FetchPayload retrieves the feature collection behind a signed URL.
	// Failures carry a human-readable description suitable for display
	// next to the item.
	FetchPayload(ctx context.Context, signedURL string) (*domain.FeatureCollection, error)
}

// Clipboard defines the port for writing to the system clipboard
type Clipboard interface {
	// WriteAll replaces the clipboard contents with text
	WriteAll(text string) error
}
