package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wordsmith/internal/api"
	"wordsmith/internal/watcher"
)

var (
	servePort  int
	serveHost  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the Wordsmith HTTP API so editors and browser extensions can query
completions and record finished words. With watching enabled, edits to a
local dictionary file are loaded without a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: server.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the dictionary file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	defer closeLogs()

	engine, cfg, logger := mustGetEngine(context.Background(), engineSetup{dictionary: true})
	defer engine.Close()

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	addr := host + ":" + strconv.Itoa(port)

	server := api.NewServer(addr, engine, logger, api.Options{
		RecordDebounce: time.Duration(cfg.Server.DebounceMs) * time.Millisecond,
		CORSOrigins:    cfg.Server.CorsOrigins,
	})

	watchCfg := watcher.Config{Enabled: cfg.Watch.Enabled || serveWatch, DebounceMs: cfg.Watch.DebounceMs}
	w := watcher.New(watchCfg, logger, func(ctx context.Context, path string, events []watcher.Event) {
		_, _ = engine.LoadDictionary(ctx, path)
	})
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()
	if src := resolveDictionary(cfg.Dictionary.Source, resolveDataDir()); isLocalFile(src) {
		if err := w.Watch(src); err != nil {
			logger.Warn("Failed to watch dictionary", "path", src, "error", err)
		}
	}

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("Wordsmith HTTP API server listening on http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Pending recordings are flushed before the store closes
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}

		logger.Info("Server stopped gracefully")
	}

	return nil
}

func isLocalFile(src string) bool {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return false
	}
	info, err := os.Stat(src)
	return err == nil && !info.IsDir()
}
