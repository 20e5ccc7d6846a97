package cmd

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"landkit/internal/core/domain"
	"landkit/internal/core/services"
	"landkit/pkg/ui"
)

var (
	exportAll    bool
	exportFormat string
	exportCopy   bool
	exportOut    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:     "export [capture-file]",
	Short:   "Fetch land boundaries and export them as GeoJSON or KML",
	Aliases: []string{"x"},
	Long: `Parse a capture, fetch each selected record's GeoJSON boundary through
the relay, and write it to disk.

Without --all, a fuzzy finder lets you pick a single record. Failures are
contained per record: one bad download never stops the rest.

Examples:
  landkit export capture.json --all
  landkit export capture.json --format kml
  landkit export capture.json --copy
  landkit export capture.json --all --format both --out ./boundaries`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Export every record in the capture")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "geojson", "Output format (geojson, kml, both)")
	exportCmd.Flags().BoolVarP(&exportCopy, "copy", "c", false, "Copy the GeoJSON to the clipboard instead of writing files")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	switch exportFormat {
	case "geojson", "kml", "both":
	default:
		return fmt.Errorf("invalid format %q (expected geojson, kml or both)", exportFormat)
	}

	if err := loadCapture(args); err != nil {
		fmt.Println(ui.FormatError("Failed to parse capture"))
		return err
	}

	items := registry.Items()
	if len(items) == 0 {
		fmt.Println(ui.FormatWarning("Capture contains no land records"))
		return nil
	}

	selected := items
	if !exportAll {
		idx, err := fuzzyfinder.Find(
			items,
			func(i int) string {
				return items[i].Name
			},
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				return fmt.Sprintf("Name: %s\nUUID: %s\nSource: %s",
					items[i].Name, items[i].UUID, items[i].SourceLocation)
			}),
		)
		if err != nil {
			fmt.Println(ui.FormatInfo("Export cancelled"))
			return nil
		}
		selected = items[idx : idx+1]
	}

	outDir := exportOut
	if outDir == "" {
		outDir = appConfig.OutputDir
	}

	failures := 0
	for _, item := range selected {
		if err := exportItem(item, outDir); err != nil {
			failures++
			fmt.Println(ui.FormatError(fmt.Sprintf("%s: %v", item.Name, err)))
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d records failed", failures, len(selected))
	}

	fmt.Println()
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Exported %d records", len(selected))))
	return nil
}

func exportItem(item domain.DownloadItem, outDir string) error {
	ctx := getContext()

	if exportCopy {
		if err := exportService.CopyItem(ctx, item.UUID); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess(item.Name + " copied to clipboard"))
		return nil
	}

	req := services.ExportRequest{UUID: item.UUID, OutputDir: outDir}

	if exportFormat == "geojson" || exportFormat == "both" {
		resp, err := exportService.SaveGeoJSON(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Wrote " + resp.Path))
	}

	if exportFormat == "kml" || exportFormat == "both" {
		resp, err := exportService.SaveKML(ctx, req)
		if err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Wrote " + resp.Path))
	}

	return nil
}
