package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"landkit/internal/core/domain"
)

// ParseService turns a pasted GraphQL capture into a fresh item collection.
// Parsing is all-or-nothing: any structural problem fails the whole
// operation and leaves the current registry untouched.
type ParseService struct {
	registry *Registry
}

// NewParseService creates a new parse service
func NewParseService(registry *Registry) *ParseService {
	return &ParseService{registry: registry}
}

// ParseRequest represents a request to parse a capture blob
type ParseRequest struct {
	Input string
}

// ParseResponse represents the items discovered in the capture
type ParseResponse struct {
	Items []domain.DownloadItem
}

// Expected capture shape:
// data.lands.edges[].node{uuid, name, geometry.storage.signedURL}.
// Pointer fields distinguish "absent" from "empty" so that structural
// errors name the missing piece.
type capture struct {
	Data *captureData `json:"data"`
}

type captureData struct {
	Lands *captureLands `json:"lands"`
}

type captureLands struct {
	Edges []captureEdge `json:"edges"`
}

type captureEdge struct {
	Node *captureNode `json:"node"`
}

type captureNode struct {
	UUID     string           `json:"uuid"`
	Name     string           `json:"name"`
	Geometry *captureGeometry `json:"geometry"`
}

type captureGeometry struct {
	Storage *captureStorage `json:"storage"`
}

type captureStorage struct {
	SignedURL string `json:"signedURL"`
}

// Execute parses the capture and, on success, atomically replaces the
// registry with the discovered items in edge order, all in their initial
// idle state.
func (s *ParseService) Execute(ctx context.Context, req ParseRequest) (*ParseResponse, error) {
	items, err := parseCapture(req.Input)
	if err != nil {
		return nil, err
	}

	s.registry.ReplaceAll(items)
	return &ParseResponse{Items: items}, nil
}

func parseCapture(input string) ([]domain.DownloadItem, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("capture is empty")
	}

	var c capture
	if err := json.Unmarshal([]byte(input), &c); err != nil {
		return nil, fmt.Errorf("capture is not valid JSON: %w", err)
	}

	if c.Data == nil {
		return nil, fmt.Errorf("capture is missing the data object")
	}
	if c.Data.Lands == nil {
		return nil, fmt.Errorf("capture is missing the data.lands object")
	}

	items := make([]domain.DownloadItem, 0, len(c.Data.Lands.Edges))
	for i, edge := range c.Data.Lands.Edges {
		node := edge.Node
		if node == nil {
			return nil, fmt.Errorf("edge %d has no node", i)
		}
		if node.UUID == "" {
			return nil, fmt.Errorf("edge %d is missing node.uuid", i)
		}
		if node.Geometry == nil || node.Geometry.Storage == nil || node.Geometry.Storage.SignedURL == "" {
			return nil, fmt.Errorf("edge %d is missing node.geometry.storage.signedURL", i)
		}

		items = append(items, domain.NewDownloadItem(node.UUID, node.Name, node.Geometry.Storage.SignedURL))
	}

	return items, nil
}
