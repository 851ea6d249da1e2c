package main

import (
	"github.com/spf13/cobra"

	"wordsmith/internal/autocomplete"
)

// RecordResponseCLI reports the effect of recording words
type RecordResponseCLI struct {
	Completions []autocomplete.Completion `json:"completions"`
}

var recordCmd = &cobra.Command{
	Use:   "record <word>...",
	Short: "Record completed words",
	Long: `Record each word as completed once. Counts are written through to storage
and words reaching the habit threshold are promoted immediately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, _, logger := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	resp := &RecordResponseCLI{Completions: []autocomplete.Completion{}}
	for _, word := range args {
		c, err := engine.Complete(ctx, word)
		if err != nil {
			logger.Error("Failed to persist word", "word", word, "error", err)
			return err
		}
		if c.Word == "" {
			continue
		}
		resp.Completions = append(resp.Completions, c)
	}
	return printResponse(resp)
}
