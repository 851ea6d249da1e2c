package main

import (
	"github.com/spf13/cobra"

	"wordsmith/internal/autocomplete"
)

// CompleteResponseCLI lists suggestions for one prefix
type CompleteResponseCLI struct {
	Prefix      string                    `json:"prefix"`
	Suggestions []autocomplete.Suggestion `json:"suggestions"`
}

var completeCmd = &cobra.Command{
	Use:   "complete <prefix>",
	Short: "Suggest completions for a prefix",
	Long: `Print the completions for a prefix. Habit words are returned on their own
when any match; otherwise up to 10 dictionary words are listed. Prefixes
shorter than two characters yield no suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, _, _ := mustGetEngine(ctx, engineSetup{dictionary: true})
	defer engine.Close()

	return printResponse(&CompleteResponseCLI{
		Prefix:      args[0],
		Suggestions: engine.Query(args[0]),
	})
}
