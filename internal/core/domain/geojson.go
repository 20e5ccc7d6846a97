package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureCollection is a GeoJSON document as retrieved from storage.
//
// The raw bytes of the document are kept alongside the decoded fields so
// that exports reproduce the payload exactly as retrieved (modulo
// re-indentation); decoding into structs would silently drop properties
// the converter does not know about.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`

	raw json.RawMessage
}

// Feature is a single geometric feature with optional descriptive properties
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureProperties carries the descriptive tags the converter consumes
type FeatureProperties struct {
	Name     string `json:"name"`
	FuncType string `json:"funcType"`
}

// Geometry holds a geometry type discriminator and its raw coordinates.
// Coordinates stay raw because their nesting depth depends on the type;
// typed accessors decode them on demand and unknown types pass through.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// UnmarshalJSON decodes the document and retains the original bytes
func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	type plain FeatureCollection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*fc = FeatureCollection(p)
	fc.raw = append(json.RawMessage(nil), data...)
	return nil
}

// PrettyJSON renders the document with 2-space indentation, preserving the
// retrieved content byte for byte apart from whitespace.
func (fc *FeatureCollection) PrettyJSON() (string, error) {
	if fc.raw != nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, fc.raw, "", "  "); err != nil {
			return "", fmt.Errorf("failed to format payload: %w", err)
		}
		return buf.String(), nil
	}

	// No raw bytes means the collection was built in memory (tests mostly)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format payload: %w", err)
	}
	return string(data), nil
}

// PolygonRings decodes polygon coordinates: a list of rings, each ring a
// list of [lon, lat, alt?] positions.
func (g Geometry) PolygonRings() ([][][]float64, error) {
	var rings [][][]float64
	if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
		return nil, fmt.Errorf("malformed polygon coordinates: %w", err)
	}
	return rings, nil
}

// MultiPoints decodes multipoint coordinates: a list of [lon, lat, alt?]
// positions.
func (g Geometry) MultiPoints() ([][]float64, error) {
	var points [][]float64
	if err := json.Unmarshal(g.Coordinates, &points); err != nil {
		return nil, fmt.Errorf("malformed multipoint coordinates: %w", err)
	}
	return points, nil
}
