package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"landkit/internal/relay"
)

// relayConfig mirrors the flag set so viper can overlay env values
type relayConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	RequestTimeout  int    `mapstructure:"request-timeout"`
	UpstreamTimeout int    `mapstructure:"upstream-timeout"`
	MaxBodyKB       int64  `mapstructure:"max-body-kb"`
	JSONLogs        bool   `mapstructure:"json-logs"`
}

var relayViper *viper.Viper

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the relay server that proxies signed storage URLs",
	Long: `Run the HTTP relay that fetches GeoJSON payloads from signed storage
URLs on behalf of clients.

The relay exposes POST /fetch taking {"signedURL": "..."} and returns the
upstream document wrapped in a success envelope. It exists so that clients
never talk to the storage provider directly.

Every flag can also be set through the environment with the LANDKIT_RELAY_
prefix, e.g. LANDKIT_RELAY_PORT=9000.`,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().String("host", "0.0.0.0", "Address to listen on")
	relayCmd.Flags().Int("port", 8787, "Port to listen on")
	relayCmd.Flags().Int("request-timeout", 30, "Whole-request timeout in seconds")
	relayCmd.Flags().Int("upstream-timeout", 20, "Upstream fetch timeout in seconds")
	relayCmd.Flags().Int64("max-body-kb", 64, "Maximum request body size in KiB")
	relayCmd.Flags().Bool("json-logs", false, "Emit logs as JSON")

	relayViper = viper.New()
	relayViper.SetEnvPrefix("LANDKIT_RELAY")
	relayViper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	relayViper.AutomaticEnv()
	if err := relayViper.BindPFlags(relayCmd.Flags()); err != nil {
		panic(err)
	}
}

func runRelay(cmd *cobra.Command, args []string) error {
	var cfg relayConfig
	if err := relayViper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode relay configuration: %w", err)
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if cfg.JSONLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := relay.New(relay.Config{
		ListenHost:      cfg.Host,
		ListenPort:      cfg.Port,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    time.Duration(cfg.RequestTimeout+5) * time.Second,
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		UpstreamTimeout: time.Duration(cfg.UpstreamTimeout) * time.Second,
		MaxHeaderBytes:  1 << 13,
		MaxBodyBytes:    cfg.MaxBodyKB << 10,
	})

	return server.Run(ctx)
}
