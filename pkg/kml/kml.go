// Package kml converts GeoJSON feature collections to KML documents.
package kml

import (
	"fmt"
	"strconv"
	"strings"

	"landkit/internal/core/domain"
)

const (
	header = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<kml xmlns=\"http://www.opengis.net/kml/2.2\">\n"
	footer = "</kml>\n"

	polygonDescription = "Polygon area"
	pointDescription   = "Reference point"
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Convert maps a feature collection to a KML document string wrapping one
// Document element named after displayName.
//
// Polygon features become one placemark each, built from the first
// coordinate ring only; holes and additional rings are ignored. MultiPoint
// features become one placemark per coordinate. Any other geometry type,
// or a document whose top-level type is not FeatureCollection, contributes
// nothing. The transform is pure: the same input always yields the same
// bytes.
func Convert(doc *domain.FeatureCollection, displayName string) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("  <Document>\n")
	b.WriteString("    <name>" + textEscaper.Replace(displayName) + "</name>\n")

	if doc != nil && doc.Type == "FeatureCollection" {
		for i, feature := range doc.Features {
			switch feature.Geometry.Type {
			case "Polygon":
				writePolygon(&b, feature, displayName, i+1)
			case "MultiPoint":
				writeMultiPoint(&b, feature)
			}
		}
	}

	b.WriteString("  </Document>\n")
	b.WriteString(footer)
	return b.String()
}

func writePolygon(b *strings.Builder, feature domain.Feature, displayName string, index int) {
	rings, err := feature.Geometry.PolygonRings()
	if err != nil || len(rings) == 0 {
		return
	}

	name := feature.Properties.Name
	if name == "" {
		name = fmt.Sprintf("%s - Area %d", displayName, index)
	}
	description := feature.Properties.FuncType
	if description == "" {
		description = polygonDescription
	}

	b.WriteString("    <Placemark>\n")
	b.WriteString("      <name>" + textEscaper.Replace(name) + "</name>\n")
	b.WriteString("      <description>" + textEscaper.Replace(description) + "</description>\n")
	b.WriteString("      <Polygon>\n")
	b.WriteString("        <extrude>1</extrude>\n")
	b.WriteString("        <altitudeMode>clampToGround</altitudeMode>\n")
	b.WriteString("        <outerBoundaryIs>\n")
	b.WriteString("          <LinearRing>\n")
	b.WriteString("            <coordinates>\n")
	for _, position := range rings[0] {
		b.WriteString("              " + formatPosition(position) + "\n")
	}
	b.WriteString("            </coordinates>\n")
	b.WriteString("          </LinearRing>\n")
	b.WriteString("        </outerBoundaryIs>\n")
	b.WriteString("      </Polygon>\n")
	b.WriteString("    </Placemark>\n")
}

func writeMultiPoint(b *strings.Builder, feature domain.Feature) {
	points, err := feature.Geometry.MultiPoints()
	if err != nil {
		return
	}

	for i, position := range points {
		b.WriteString("    <Placemark>\n")
		b.WriteString(fmt.Sprintf("      <name>Reference Point %d</name>\n", i+1))
		b.WriteString("      <description>" + pointDescription + "</description>\n")
		b.WriteString("      <Point>\n")
		b.WriteString("        <coordinates>" + formatPosition(position) + "</coordinates>\n")
		b.WriteString("      </Point>\n")
		b.WriteString("    </Placemark>\n")
	}
}

// formatPosition renders [lon, lat, alt?] as "lon,lat,alt", defaulting the
// altitude to 0. Coordinates keep their natural decimal representation.
func formatPosition(position []float64) string {
	var lon, lat, alt float64
	if len(position) > 0 {
		lon = position[0]
	}
	if len(position) > 1 {
		lat = position[1]
	}
	if len(position) > 2 {
		alt = position[2]
	}

	return formatCoord(lon) + "," + formatCoord(lat) + "," + formatCoord(alt)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
