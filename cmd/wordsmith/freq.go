package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wordsmith/internal/export"
	"wordsmith/internal/version"
)

// FrequencyResponseCLI lists recorded words by count
type FrequencyResponseCLI struct {
	Words []export.WordCount `json:"words"`
	Total uint64             `json:"total"`
}

var (
	freqExportFormat string
	freqImportFormat string
	freqImportMerge  bool
	freqResetYes     bool
	freqListLimit    int
)

var freqCmd = &cobra.Command{
	Use:   "freq",
	Short: "Manage recorded word frequencies",
}

var freqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded words by count",
	Args:  cobra.NoArgs,
	RunE:  runFreqList,
}

var freqExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the frequency mapping as JSON, YAML or TOML",
	Long: `Write a snapshot of the frequency mapping. The format is taken from --as,
then from the file extension, and defaults to JSON. Without a file the
snapshot is written to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFreqExport,
}

var freqImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import counts from a snapshot or a bare word-to-count mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runFreqImport,
}

var freqResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every recorded word",
	Args:  cobra.NoArgs,
	RunE:  runFreqReset,
}

func init() {
	freqListCmd.Flags().IntVar(&freqListLimit, "limit", 0, "Show at most this many words (0 for all)")
	freqExportCmd.Flags().StringVar(&freqExportFormat, "as", "", "Snapshot format (json, yaml, toml)")
	freqImportCmd.Flags().StringVar(&freqImportFormat, "as", "", "Snapshot format (json, yaml, toml)")
	freqImportCmd.Flags().BoolVar(&freqImportMerge, "merge", true, "Add imported counts to the existing ones instead of replacing them")
	freqResetCmd.Flags().BoolVar(&freqResetYes, "yes", false, "Confirm the reset")

	freqCmd.AddCommand(freqListCmd)
	freqCmd.AddCommand(freqExportCmd)
	freqCmd.AddCommand(freqImportCmd)
	freqCmd.AddCommand(freqResetCmd)
	rootCmd.AddCommand(freqCmd)
}

func runFreqList(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, cfg, _ := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	snap := export.NewSnapshot(engine.Frequency().Snapshot(), cfg.Habit.Threshold, version.Version, time.Now())
	words := snap.Words
	if freqListLimit > 0 && len(words) > freqListLimit {
		words = words[:freqListLimit]
	}
	return printResponse(&FrequencyResponseCLI{Words: words, Total: snap.Metadata.TotalCount})
}

// snapshotFormat picks a format from the flag, then the path, then JSON.
func snapshotFormat(flag, path string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if path != "" && path != "-" {
		return export.FormatFromPath(path)
	}
	return export.FormatJSON, nil
}

func runFreqExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	format, err := snapshotFormat(freqExportFormat, path)
	if err != nil {
		return err
	}

	engine, cfg, logger := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	snap := export.NewSnapshot(engine.Frequency().Snapshot(), cfg.Habit.Threshold, version.Version, time.Now())

	var w io.Writer = cmd.OutOrStdout()
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Encode(w, snap, format); err != nil {
		return err
	}
	if path != "" && path != "-" {
		logger.Info("Exported frequencies", "path", path, "format", string(format), "words", len(snap.Words))
	}
	return nil
}

func runFreqImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	path := args[0]
	format, err := snapshotFormat(freqImportFormat, path)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	snap, err := export.Decode(r, format)
	if err != nil {
		return err
	}

	engine, _, logger := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	freq := engine.Frequency()
	if !freqImportMerge {
		if err := freq.Reset(ctx); err != nil {
			return err
		}
	}
	counts := snap.Counts()
	if err := freq.Merge(ctx, counts); err != nil {
		return err
	}
	promoted := engine.RebuildHabits(ctx)
	logger.Info("Imported frequencies", "path", path, "words", len(counts), "merge", freqImportMerge)

	return printResponse(&HabitResponseCLI{
		Threshold: engine.Stats().Threshold,
		Words:     engine.HabitWords(),
		Promoted:  promoted,
	})
}

func runFreqReset(cmd *cobra.Command, args []string) error {
	if !freqResetYes {
		return fmt.Errorf("refusing to reset without --yes")
	}

	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, _, logger := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	before := engine.Frequency().Len()
	if err := engine.Frequency().Reset(ctx); err != nil {
		return err
	}
	logger.Info("Reset frequencies", "words", before)
	fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d words\n", before)
	return nil
}
