package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"landkit/internal/core/domain"
	"landkit/pkg/ui"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart [capture-file]",
	Short: "Render an HTML scatter chart of the land geometries",
	Long: `Fetch every record's GeoJSON boundary and plot the polygon vertices and
reference points on a lon/lat scatter chart, written as a standalone HTML
file.

Examples:
  landkit chart capture.json
  landkit chart capture.json --out ./lands.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "lands.html", "Output HTML file")
}

func runChart(cmd *cobra.Command, args []string) error {
	if err := loadCapture(args); err != nil {
		fmt.Println(ui.FormatError("Failed to parse capture"))
		return err
	}

	items := registry.Items()
	if len(items) == 0 {
		fmt.Println(ui.FormatWarning("Capture contains no land records"))
		return nil
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Land Boundaries",
			Subtitle: "Polygon vertices and reference points by lon/lat",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", Type: "value"}),
	)

	ctx := getContext()
	failures := 0
	for _, item := range items {
		payload, err := fetchService.EnsurePayload(ctx, item.UUID)
		if err != nil {
			failures++
			fmt.Println(ui.FormatError(fmt.Sprintf("%s: %v", item.Name, err)))
			continue
		}

		data := scatterPoints(payload)
		if len(data) == 0 {
			continue
		}
		scatter.AddSeries(item.Name, data)
	}

	if failures == len(items) {
		return fmt.Errorf("no records could be fetched")
	}

	if dir := filepath.Dir(chartOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(chartOut)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	fmt.Println(ui.FormatSuccess("Wrote " + chartOut))
	return nil
}

// scatterPoints flattens a feature collection into chart points. Polygons
// contribute their outer ring vertices, multipoints every position.
func scatterPoints(fc *domain.FeatureCollection) []opts.ScatterData {
	var data []opts.ScatterData

	addPosition := func(pos []float64) {
		if len(pos) < 2 {
			return
		}
		data = append(data, opts.ScatterData{Value: []interface{}{pos[0], pos[1]}})
	}

	for _, feature := range fc.Features {
		switch feature.Geometry.Type {
		case "Polygon":
			rings, err := feature.Geometry.PolygonRings()
			if err != nil || len(rings) == 0 {
				continue
			}
			for _, pos := range rings[0] {
				addPosition(pos)
			}
		case "MultiPoint":
			points, err := feature.Geometry.MultiPoints()
			if err != nil {
				continue
			}
			for _, pos := range points {
				addPosition(pos)
			}
		}
	}

	return data
}
