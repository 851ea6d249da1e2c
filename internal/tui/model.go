// Package tui is an interactive terminal editor that suggests completions as
// the user types and records every completed word.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"wordsmith/internal/autocomplete"
	"wordsmith/internal/typing"
)

// Completer is the part of the engine the editor needs
type Completer interface {
	Query(prefix string) []autocomplete.Suggestion
	Complete(ctx context.Context, word string) (autocomplete.Completion, error)
}

// recordedMsg reports the outcome of recording a completed word
type recordedMsg struct {
	completion autocomplete.Completion
	err        error
}

// Model is the bubbletea model of the editor
type Model struct {
	ctx    context.Context
	engine Completer
	buf    *typing.Buffer

	suggestions []autocomplete.Suggestion
	selected    int // -1 when nothing is highlighted

	status   string
	failed   bool
	recorded int
	width    int
}

// New creates an editor backed by engine
func New(ctx context.Context, engine Completer) Model {
	return Model{
		ctx:      ctx,
		engine:   engine,
		buf:      typing.NewBuffer(),
		selected: -1,
		status:   "type to get suggestions · tab/enter accepts · esc closes · ctrl+c quits",
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case recordedMsg:
		m.failed = msg.err != nil
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("%q kept for this session but not saved: %v", msg.completion.Word, msg.err)
		case msg.completion.Promoted:
			m.status = fmt.Sprintf("%s %q typed %d times, now a habit", habitIcon, msg.completion.Word, msg.completion.Count)
		default:
			m.status = fmt.Sprintf("recorded %q (%d)", msg.completion.Word, msg.completion.Count)
		}
		if msg.completion.Count > 0 {
			m.recorded++
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if len(m.suggestions) == 0 {
			return m, tea.Quit
		}
		m.suggestions = nil
		m.selected = -1
		return m, nil

	case tea.KeyUp:
		if len(m.suggestions) > 0 {
			m.selected = max(m.selected-1, -1)
		}
		return m, nil

	case tea.KeyDown:
		if len(m.suggestions) > 0 {
			m.selected = min(m.selected+1, len(m.suggestions)-1)
		}
		return m, nil

	case tea.KeyTab:
		if len(m.suggestions) == 0 {
			return m, nil
		}
		idx := max(m.selected, 0)
		return m.accept(m.suggestions[idx].Text)

	case tea.KeyEnter:
		if m.selected >= 0 && m.selected < len(m.suggestions) {
			return m.accept(m.suggestions[m.selected].Text)
		}
		return m.feed('\n')

	case tea.KeySpace:
		return m.feed(' ')

	case tea.KeyBackspace:
		return m.feed('\b')

	case tea.KeyRunes:
		var cmds []tea.Cmd
		for _, r := range msg.Runes {
			next, cmd := m.feed(r)
			m = next.(Model)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		switch len(cmds) {
		case 0:
			return m, nil
		case 1:
			return m, cmds[0]
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) feed(r rune) (tea.Model, tea.Cmd) {
	ev, ok := m.buf.Feed(r)
	m.refresh()
	if !ok {
		return m, nil
	}
	return m, m.record(ev.Word)
}

func (m Model) accept(word string) (tea.Model, tea.Cmd) {
	ev, ok := m.buf.Accept(word)
	m.refresh()
	if !ok {
		return m, nil
	}
	return m, m.record(ev.Word)
}

func (m *Model) refresh() {
	m.suggestions = m.engine.Query(m.buf.CurrentWord())
	m.selected = -1
}

func (m Model) record(word string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		c, err := engine.Complete(ctx, word)
		return recordedMsg{completion: c, err: err}
	}
}

// Text returns everything typed so far
func (m Model) Text() string {
	return m.buf.String()
}

// Suggestions returns the currently offered completions
func (m Model) Suggestions() []autocomplete.Suggestion {
	return m.suggestions
}

// Recorded returns how many words were recorded this session
func (m Model) Recorded() int {
	return m.recorded
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wordsmith"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(m.buf.String()))
	b.WriteString(cursorStyle.Render(" "))
	b.WriteString("\n")

	if len(m.suggestions) > 0 {
		lines := make([]string, len(m.suggestions))
		for i, s := range m.suggestions {
			icon, style := dictIcon, dictStyle
			if s.Source == autocomplete.SourceHabit {
				icon, style = habitIcon, habitStyle
			}
			line := fmt.Sprintf("%s %s  %s", icon, s.Text, s.Source)
			if i == m.selected {
				lines[i] = selectedStyle.Render(line)
			} else {
				lines[i] = style.Render(line)
			}
		}
		b.WriteString(dropdownStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.failed {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}
