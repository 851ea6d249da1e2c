package main

import (
	"github.com/spf13/cobra"

	"wordsmith/internal/dictionary"
)

// DictResponseCLI reports how the dictionary loaded
type DictResponseCLI struct {
	dictionary.Stats
	Error string `json:"error,omitempty"`
}

var dictSourceFlag string

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect the static dictionary",
}

var dictStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the dictionary and report what it contains",
	Args:  cobra.NoArgs,
	RunE:  runDictStats,
}

func init() {
	dictStatsCmd.Flags().StringVar(&dictSourceFlag, "source", "", "Dictionary file or URL (default: dictionary.source)")
	dictCmd.AddCommand(dictStatsCmd)
	rootCmd.AddCommand(dictCmd)
}

func runDictStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, cfg, _ := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	src := dictSourceFlag
	if src == "" {
		src = resolveDictionary(cfg.Dictionary.Source, resolveDataDir())
	}
	stats, err := engine.LoadDictionary(ctx, src)
	resp := &DictResponseCLI{Stats: stats}
	resp.Source = src
	if err != nil {
		resp.Error = err.Error()
	}
	return printResponse(resp)
}
