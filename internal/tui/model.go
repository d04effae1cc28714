// Package tui is the single-screen terminal client.
//
// The screen shows the source word as its title, the accepted words newest
// first, an answer prompt and alerts for rejected words. The round engine
// runs locally; no server is needed.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/wordimize/internal/game"
	"github.com/robalobadob/wordimize/internal/tui/styles"
	"github.com/robalobadob/wordimize/internal/words"
)

type keyMap struct {
	Answer  key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Restart key.Binding
	Quit    key.Binding
	Dismiss key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Answer:  key.NewBinding(key.WithKeys("a", "+", "enter"), key.WithHelp("a/+", "answer")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new word")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc", " "), key.WithHelp("enter", "ok")),
	}
}

// alert is a dismissible message box.
type alert struct {
	title   string
	message string
	reset   bool
}

// Model is the bubbletea model for the game screen.
type Model struct {
	round   *game.Round
	checker words.Checker
	picker  game.Picker

	input     textinput.Model
	prompting bool
	alert     *alert
	keys      keyMap
	help      help.Model
	width     int
	quitting  bool
}

// New builds a model playing round, checking words with checker and drawing
// new source words from picker.
func New(round *game.Round, checker words.Checker, picker game.Picker) Model {
	in := textinput.New()
	in.Placeholder = "your word"
	in.CharLimit = 32
	in.Width = 24
	in.Prompt = "› "

	return Model{
		round:   round,
		checker: checker,
		picker:  picker,
		input:   in,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case m.alert != nil:
			return m.updateAlert(msg)
		case m.prompting:
			return m.updatePrompt(msg)
		}
		return m.updateList(msg)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateAlert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Dismiss) {
		m.alert = nil
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		word := m.input.Value()
		m.closePrompt()
		m.submit(word)
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Answer):
		m.prompting = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Restart):
		if m.round.Mode == game.ModeDaily {
			m.alert = &alert{title: "Daily word", message: "The daily word stays the same until tomorrow."}
			return m, nil
		}
		m.round.Restart(m.picker)
	}
	return m, nil
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.SetValue("")
}

// submit plays word and raises an alert for anything but a plain accept.
func (m *Model) submit(word string) {
	out := m.round.Submit(word, m.checker, m.picker)
	if out.Accepted() && !out.Reset {
		return
	}
	m.alert = &alert{title: out.Title, message: out.Message, reset: out.Reset}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString("\n")

	switch {
	case m.alert != nil:
		b.WriteString("\n")
		b.WriteString(m.alertView())
		b.WriteString("\n")
	case m.prompting:
		b.WriteString("\n")
		b.WriteString(styles.PromptStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render(m.help.ShortHelpView(m.helpKeys())))
	return b.String()
}

func (m Model) headerView() string {
	title := styles.TitleStyle.Render(strings.ToUpper(m.round.Source))
	mistakes := styles.StatusStyle
	if m.round.Mistakes == m.round.MaxMistakes {
		mistakes = styles.DangerStatusStyle
	}
	status := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.StatusStyle.Render(fmt.Sprintf("round %d", m.round.Number)),
		mistakes.Render(fmt.Sprintf("mistakes %d/%d", m.round.Mistakes, m.round.MaxMistakes)),
		styles.StatusStyle.Render(fmt.Sprintf("found %d", m.round.Found())),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, status)
}

func (m Model) listView() string {
	if len(m.round.Words) == 0 {
		return styles.EmptyListStyle.Render("No words yet. Press a to answer.")
	}
	lines := make([]string, len(m.round.Words))
	for i, w := range m.round.Words {
		style := styles.WordStyle
		if i == 0 {
			style = styles.NewestWordStyle
		}
		lines[i] = style.Render(w)
	}
	return strings.Join(lines, "\n")
}

func (m Model) alertView() string {
	titleStyle := styles.AlertTitleStyle
	if m.alert.reset {
		titleStyle = styles.ResetAlertTitleStyle
	}
	return styles.AlertStyle.Render(
		titleStyle.Render(m.alert.title) + "\n" + styles.AlertMessageStyle.Render(m.alert.message),
	)
}

func (m Model) helpKeys() []key.Binding {
	switch {
	case m.alert != nil:
		return []key.Binding{m.keys.Dismiss}
	case m.prompting:
		return []key.Binding{m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Answer, m.keys.Restart, m.keys.Quit}
}

// Round exposes the round being played.
func (m Model) Round() *game.Round { return m.round }

// Run plays round in the terminal until the user quits or ctx ends.
func Run(ctx context.Context, round *game.Round, checker words.Checker, picker game.Picker) error {
	p := tea.NewProgram(New(round, checker, picker), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal client: %w", err)
	}
	return nil
}
