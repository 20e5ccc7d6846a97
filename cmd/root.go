package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"landkit/internal/adapters/clipboard"
	"landkit/internal/adapters/proxy"
	"landkit/internal/core/services"
	"landkit/pkg/config"
	"landkit/pkg/ui"
)

var (
	// Global configuration
	appConfig *config.Config

	// Services
	registry      *services.Registry
	parseService  *services.ParseService
	fetchService  *services.FetchService
	exportService *services.ExportService
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "landkit",
	Short: "Landkit - A land boundary export tool",
	Long: ui.StyleTitle.Render("Landkit") + " - Land Boundary Export Tool\n\n" +
		"Parse captured land listings, fetch their GeoJSON boundaries through\n" +
		"a relay, and export them as GeoJSON or KML for use in mapping tools.",
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// The relay server and version commands do not touch the client stack
	if cmd.Name() == "relay" || cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)

	timeout := time.Duration(appConfig.RequestTimeoutSeconds) * time.Second
	fetcher := proxy.NewClient(appConfig.RelayURL, timeout)

	registry = services.NewRegistry()
	parseService = services.NewParseService(registry)
	fetchService = services.NewFetchService(registry, fetcher)
	exportService = services.NewExportService(registry, fetchService, clipboard.New())

	return nil
}

// loadAppConfig resolves the config file location and loads it, falling
// back to defaults when the file does not exist.
func loadAppConfig() (*config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
