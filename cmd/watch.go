package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"landkit/internal/core/services"
	"landkit/pkg/ui"
)

var (
	watchFormat string
	watchOut    string
	watchQuiet  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <capture-file>",
	Short: "Watch a capture file and re-export on changes",
	Long: `Watch a capture file and re-run the export whenever it changes.

Paste a fresh listing response into the file and every record is fetched
and written again. A capture that fails to parse is ignored and the
previous records stay exported.

Use --quiet to suppress per-record notifications.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "geojson", "Output format (geojson, kml, both)")
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (default from config)")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress per-record notifications")
}

func runWatch(cmd *cobra.Command, args []string) error {
	switch watchFormat {
	case "geojson", "kml", "both":
	default:
		return fmt.Errorf("invalid format %q (expected geojson, kml or both)", watchFormat)
	}

	capturePath := args[0]

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(capturePath)); err != nil {
		return fmt.Errorf("failed to watch capture directory: %w", err)
	}

	if !watchQuiet {
		fmt.Println(ui.FormatInfo("Watching: " + capturePath))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	outDir := watchOut
	if outDir == "" {
		outDir = appConfig.OutputDir
	}

	// Debounce timer to avoid exporting half-written captures
	var debounceTimer *time.Timer
	debounceDuration := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond

	doExport := func() {
		input, err := os.ReadFile(capturePath)
		if err != nil {
			fmt.Println(ui.FormatError("Failed to read capture: " + err.Error()))
			return
		}

		_, err = parseService.Execute(ctx, services.ParseRequest{Input: string(input)})
		if err != nil {
			fmt.Println(ui.FormatWarning("Capture not parseable, keeping previous records: " + err.Error()))
			return
		}

		items := registry.Items()
		failures := 0
		for _, item := range items {
			if err := exportWatchedItem(item.UUID, item.Name, outDir); err != nil {
				failures++
				fmt.Println(ui.FormatError(fmt.Sprintf("%s: %v", item.Name, err)))
			}
		}

		if !watchQuiet {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("Exported %d records (%d failed)",
				len(items)-failures, failures)))
		}
	}

	// Export the current contents once at startup
	doExport()

	target := filepath.Clean(capturePath)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, doExport)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			if !watchQuiet {
				fmt.Println()
				fmt.Println(ui.FormatMuted("Watch stopped"))
			}
			return nil
		}
	}
}

func exportWatchedItem(uuid, name, outDir string) error {
	ctx := getContext()
	req := services.ExportRequest{UUID: uuid, OutputDir: outDir}

	if watchFormat == "geojson" || watchFormat == "both" {
		resp, err := exportService.SaveGeoJSON(ctx, req)
		if err != nil {
			return err
		}
		if !watchQuiet {
			fmt.Println(ui.FormatSuccess("Wrote " + resp.Path))
		}
	}

	if watchFormat == "kml" || watchFormat == "both" {
		resp, err := exportService.SaveKML(ctx, req)
		if err != nil {
			return err
		}
		if !watchQuiet {
			fmt.Println(ui.FormatSuccess("Wrote " + resp.Path))
		}
	}

	return nil
}
