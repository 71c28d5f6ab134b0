package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/de-tools/gbb-board/pkg/observability"
	"github.com/de-tools/gbb-board/pkg/server"
	"github.com/de-tools/gbb-board/pkg/services/cache"
	"github.com/de-tools/gbb-board/pkg/services/config"
	"github.com/de-tools/gbb-board/pkg/services/fetch"
	"github.com/de-tools/gbb-board/pkg/services/market"
	"github.com/de-tools/gbb-board/pkg/services/parse"
	reportsvc "github.com/de-tools/gbb-board/pkg/services/report"
	"github.com/de-tools/gbb-board/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	host    string
	port    int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the WA Gas Bulletin Board dashboard",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional YAML config file")
	rootCmd.Flags().StringVar(&host, "host", "", "Bind host (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Bind port (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	reports := registry.NewRegistry()

	controller := reportsvc.NewController(reportsvc.Dependencies{
		Registry: reports,
		Fetcher:  fetch.NewFetcher(cfg.Upstream.BaseURL, cfg.Upstream.Timeout),
		Parser:   parse.NewParser(),
		Cache:    cache.NewStore(clock, cfg.Cache.TTL),
		Metrics:  metrics,
		Clock:    clock,
	})

	logger.Info().Str("base_url", cfg.Upstream.BaseURL).Msg("upstream configured")
	for _, d := range reports.List() {
		logger.Info().Msgf("Report: `%s` (%s), refresh every %s", d.Name, d.DisplayName, d.RefreshEvery)
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	api := server.NewWebAPI(server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Controller: controller,
			Model:      market.NewModel(controller),
			Logger:     logger,
		},
	})

	logger.Info().Msgf("starting server on %s", addr)
	return api.Start()
}
