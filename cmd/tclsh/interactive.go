package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tcl-runtime/interp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	ip      *interp.Interp
	sh      *shell
	out     *bytes.Buffer
	input   textinput.Model
	history []string
	// histIdx == len(history) means the prompt holds a fresh line.
	histIdx int
	draft   string
}

func newInteractiveModel(ip *interp.Interp, sh *shell) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("% ")
	ti.Placeholder = MoveCommand + " 1 2"
	ti.Width = 72
	ti.Focus()

	out := &bytes.Buffer{}
	sh.out = out

	return &interactiveModel{
		ip:    ip,
		sh:    sh,
		out:   out,
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Sequence(
		tea.Println(titleStyle.Render("Tcl Shell")+" "+m.ip.Binding().Path()),
		textinput.Blink,
	)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "up":
			m.recall(-1)
			return m, nil

		case "down":
			m.recall(1)
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, line)
			m.histIdx = len(m.history)
			m.draft = ""
			if line == "exit" {
				return m, tea.Quit
			}
			return m, tea.Println(m.eval(line))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// recall moves through history by delta, keeping the unfinished line as a draft.
func (m *interactiveModel) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	if m.histIdx == len(m.history) {
		m.draft = m.input.Value()
	}
	idx := m.histIdx + delta
	if idx < 0 || idx > len(m.history) {
		return
	}
	m.histIdx = idx
	if idx == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[idx])
	}
	m.input.CursorEnd()
}

// eval runs line on the interpreter and renders the transcript entry.
// It runs inside Update so every call stays on the locked main thread.
func (m *interactiveModel) eval(line string) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("% "))
	b.WriteString(line)

	res, err := evalString(m.ip, line)
	if m.out.Len() > 0 {
		b.WriteByte('\n')
		b.WriteString(outputStyle.Render(strings.TrimRight(m.out.String(), "\n")))
		m.out.Reset()
	}
	switch {
	case err != nil:
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	case res != "":
		b.WriteByte('\n')
		b.WriteString(resultStyle.Render(res))
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	return m.input.View() + "\n" + helpStyle.Render("↑/↓ history • enter eval • exit or ctrl+c quit")
}

func runInteractive(ip *interp.Interp, sh *shell) error {
	prev := sh.out
	defer func() { sh.out = prev }()

	p := tea.NewProgram(newInteractiveModel(ip, sh))
	_, err := p.Run()
	return err
}
