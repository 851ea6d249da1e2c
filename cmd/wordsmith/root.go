package main

import (
	"os"

	"github.com/spf13/cobra"

	"wordsmith/internal/version"
)

var (
	// verbosity counts -v flags; quiet silences logging
	verbosity   int
	quiet       bool
	dataDirFlag string
	formatFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "wordsmith",
	Short: "Wordsmith - habit-aware word autocompletion",
	Long: `Wordsmith suggests completions for the word being typed. Words you finish
often enough become habits, and habit matches take priority over the static
dictionary. Word counts are kept encrypted at rest across sessions.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Directory holding .wordsmith (default: $WORDSMITH_HOME or the home directory)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json)")
}

// resolveDataDir determines the data directory.
// Precedence: --data-dir > WORDSMITH_HOME > home directory > working directory
func resolveDataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	if env := os.Getenv("WORDSMITH_HOME"); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	wd, _ := os.Getwd()
	return wd
}

func outputFormat() OutputFormat {
	return OutputFormat(formatFlag)
}
