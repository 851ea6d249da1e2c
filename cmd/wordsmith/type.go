package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"wordsmith/internal/autocomplete"
	"wordsmith/internal/tui"
	"wordsmith/internal/typing"
)

var typeLineMode bool

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Type with live suggestions",
	Long: `Open an interactive editor that suggests completions for the word being
typed. Every word finished with a space, newline or punctuation is recorded.

When stdin is not a terminal, or with --lines, text is read from stdin and
each completed word is recorded without the editor.`,
	Args: cobra.NoArgs,
	RunE: runType,
}

func init() {
	typeCmd.Flags().BoolVar(&typeLineMode, "lines", false, "Read text from stdin instead of opening the editor")
	rootCmd.AddCommand(typeCmd)
}

func runType(cmd *cobra.Command, args []string) error {
	ctx, cancel := newContext()
	defer cancel()
	defer closeLogs()

	engine, _, logger := mustGetEngine(ctx, engineSetup{dictionary: true})
	defer engine.Close()

	if typeLineMode || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		completions, err := recordStream(ctx, cmd.InOrStdin(), engine)
		if err != nil {
			logger.Error("Failed to record stream", "error", err)
			return err
		}
		return printResponse(&RecordResponseCLI{Completions: completions})
	}

	model, err := tea.NewProgram(tui.New(ctx, engine), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	if m, ok := model.(tui.Model); ok {
		logger.Info("Editor closed", "recorded", m.Recorded())
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// recordStream feeds r through a typing buffer and records every word that
// a boundary completes. The end of input acts as a final boundary. The
// buffer is cleared after each word so memory stays bounded by one token.
func recordStream(ctx context.Context, r io.Reader, c tui.Completer) ([]autocomplete.Completion, error) {
	completions := []autocomplete.Completion{}
	record := func(ev typing.Event) error {
		done, err := c.Complete(ctx, ev.Word)
		if err != nil {
			return err
		}
		if done.Word != "" {
			completions = append(completions, done)
		}
		return nil
	}

	buf := typing.NewBuffer()
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return completions, err
		}
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return completions, err
		}
		if ev, ok := buf.Feed(ch); ok {
			if err := record(ev); err != nil {
				return completions, err
			}
			// Nothing before a completed word is needed again
			buf.Reset()
		}
	}
	if ev, ok := buf.Feed('\n'); ok {
		if err := record(ev); err != nil {
			return completions, err
		}
	}
	return completions, nil
}
