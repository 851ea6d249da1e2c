package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *CompleteResponseCLI:
		return formatCompleteHuman(v), nil
	case *RecordResponseCLI:
		return formatRecordHuman(v), nil
	case *HabitResponseCLI:
		return formatHabitHuman(v), nil
	case *FrequencyResponseCLI:
		return formatFrequencyHuman(v), nil
	case *DictResponseCLI:
		return formatDictHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatCompleteHuman(resp *CompleteResponseCLI) string {
	if len(resp.Suggestions) == 0 {
		return fmt.Sprintf("No suggestions for %q", resp.Prefix)
	}
	var b strings.Builder
	for i, s := range resp.Suggestions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-10s %s", s.Source, s.Text)
	}
	return b.String()
}

func formatRecordHuman(resp *RecordResponseCLI) string {
	if len(resp.Completions) == 0 {
		return "Nothing recorded"
	}
	var b strings.Builder
	for i, c := range resp.Completions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d", c.Word, c.Count)
		if c.Promoted {
			b.WriteString(" (now a habit)")
		}
	}
	return b.String()
}

func formatHabitHuman(resp *HabitResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Habit words (threshold %d): %d\n", resp.Threshold, len(resp.Words))
	for _, w := range resp.Words {
		fmt.Fprintf(&b, "  %s\n", w)
	}
	if resp.Promoted != nil {
		fmt.Fprintf(&b, "Eligible after rebuild: %d\n", len(resp.Promoted))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFrequencyHuman(resp *FrequencyResponseCLI) string {
	if len(resp.Words) == 0 {
		return "No words recorded yet"
	}
	width := 4
	for _, w := range resp.Words {
		if sw := runewidth.StringWidth(w.Word); sw > width {
			width = sw
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %7s  %s\n", runewidth.FillRight("WORD", width), "COUNT", "HABIT")
	b.WriteString(strings.Repeat("-", width+17) + "\n")
	for _, w := range resp.Words {
		mark := ""
		if w.Habit {
			mark = "yes"
		}
		fmt.Fprintf(&b, "%s  %7d  %s\n", runewidth.FillRight(w.Word, width), w.Count, mark)
	}
	fmt.Fprintf(&b, "\n%d words, %d completions", len(resp.Words), resp.Total)
	return b.String()
}

func formatDictHuman(resp *DictResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source:     %s\n", resp.Source)
	if resp.Error != "" {
		fmt.Fprintf(&b, "Error:      %s\n", resp.Error)
	}
	fmt.Fprintf(&b, "Words:      %d\n", resp.Words)
	fmt.Fprintf(&b, "Lines:      %d (skipped %d)\n", resp.Lines, resp.Skipped)
	fmt.Fprintf(&b, "Load time:  %s", resp.Duration)
	return b.String()
}

// printResponse writes resp to stdout in the selected format.
func printResponse(resp interface{}) error {
	out, err := FormatResponse(resp, outputFormat())
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
