package main

import (
	"github.com/spf13/cobra"
)

// HabitResponseCLI lists the habit vocabulary
type HabitResponseCLI struct {
	Threshold int      `json:"threshold"`
	Words     []string `json:"words"`
	// Promoted is only set by rebuild
	Promoted []string `json:"promoted,omitempty"`
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Inspect the habit vocabulary",
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habit words",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHabit(false)
	},
}

var habitRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-run promotion over the stored counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHabit(true)
	},
}

func init() {
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitRebuildCmd)
	rootCmd.AddCommand(habitCmd)
}

func runHabit(rebuild bool) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, cfg, _ := mustGetEngine(ctx, engineSetup{})
	defer engine.Close()

	resp := &HabitResponseCLI{Threshold: cfg.Habit.Threshold}
	if rebuild {
		resp.Promoted = engine.RebuildHabits(ctx)
		if resp.Promoted == nil {
			resp.Promoted = []string{}
		}
	}
	resp.Words = engine.HabitWords()
	if resp.Words == nil {
		resp.Words = []string{}
	}
	return printResponse(resp)
}
