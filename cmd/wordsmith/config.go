package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"wordsmith/internal/config"
)

var (
	configShowDiff  bool
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Wordsmith configuration",
	Long:  "View and manage Wordsmith configuration stored in .wordsmith/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration, including WORDSMITH_* overrides.

Examples:
  wordsmith config show              # Pretty-print current config
  wordsmith config show --format json
  wordsmith config show --diff       # Only show non-default values`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath string                 `json:"configPath"`
	Exists     bool                   `json:"exists"`
	Config     map[string]interface{} `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dataDir := resolveDataDir()
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return err
	}

	path := filepath.Join(config.Dir(dataDir), config.FileName)
	_, statErr := os.Stat(path)

	values, err := flattenConfig(cfg)
	if err != nil {
		return err
	}
	defaults, err := flattenConfig(config.DefaultConfig())
	if err != nil {
		return err
	}
	if configShowDiff {
		for k, v := range values {
			if isEqual(v, defaults[k]) {
				delete(values, k)
			}
		}
	}
	maskSecrets(values)
	maskSecrets(defaults)

	if outputFormat() == FormatJSON {
		return printResponse(&ConfigShowResponse{ConfigPath: path, Exists: statErr == nil, Config: values})
	}

	fmt.Println("Wordsmith Configuration")
	fmt.Println(strings.Repeat("─", 50))
	if statErr == nil {
		fmt.Printf("Source: %s\n\n", path)
	} else {
		fmt.Printf("Source: defaults (no config file at %s)\n\n", path)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		modified := ""
		if !isEqual(values[k], defaults[k]) {
			modified = fmt.Sprintf(" (default: %v)", defaults[k])
		}
		fmt.Printf("%s: %v%s\n", k, values[k], modified)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dataDir := resolveDataDir()
	path := filepath.Join(config.Dir(dataDir), config.FileName)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(dataDir); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// flattenConfig renders cfg as dotted keys, e.g. "habit.threshold".
func flattenConfig(cfg *config.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var nested map[string]interface{}
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	flatten("", nested, out)
	return out, nil
}

func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]interface{}); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}

func maskSecrets(values map[string]interface{}) {
	if _, ok := values["crypto.passphrase"]; ok {
		values["crypto.passphrase"] = "********"
	}
}

func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
