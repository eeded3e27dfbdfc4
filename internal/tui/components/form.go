package components

import (
	"strings"

	"github.com/Veraticus/kroner/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field describes one input of a form.
type Field struct {
	Label       string
	Placeholder string
	Value       string
	CharLimit   int
	Password    bool
}

// FormModel is a vertical stack of labelled text inputs with one focused
// input at a time.
type FormModel struct {
	theme  themes.Theme
	name   string
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	width  int
}

// NewForm creates a form. name identifies it in submit and cancel messages.
func NewForm(theme themes.Theme, name, title string, fields ...Field) FormModel {
	f := FormModel{
		theme:  theme,
		name:   name,
		title:  title,
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
		width:  40,
	}
	for i, field := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = field.Placeholder
		in.CharLimit = field.CharLimit
		if in.CharLimit == 0 {
			in.CharLimit = 120
		}
		if field.Password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		in.SetValue(field.Value)
		f.labels[i] = field.Label
		f.inputs[i] = in
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Name returns the form identifier.
func (f FormModel) Name() string { return f.name }

// Focused returns the index of the focused input.
func (f FormModel) Focused() int { return f.focus }

// Value returns the raw value of input i.
func (f FormModel) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

// SetValue replaces the value of input i.
func (f *FormModel) SetValue(i int, value string) {
	if i < 0 || i >= len(f.inputs) {
		return
	}
	f.inputs[i].SetValue(value)
}

// SetWidth sets the rendered input width.
func (f *FormModel) SetWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = width
	}
}

// FocusField moves focus to input i.
func (f *FormModel) FocusField(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	i = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// Update handles focus movement, submit and cancel, and forwards the rest
// to the focused input.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f, f.FocusField(f.focus + 1)
		case "shift+tab", "up":
			return f, f.FocusField(f.focus - 1)
		case "enter":
			name := f.name
			return f, func() tea.Msg { return FormSubmittedMsg{Form: name} }
		case "esc":
			name := f.name
			return f, func() tea.Msg { return FormCancelledMsg{Form: name} }
		}
	}

	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f FormModel) View() string {
	rows := make([]string, 0, len(f.inputs)*2+1)
	if f.title != "" {
		rows = append(rows, f.theme.Title.Render(f.title))
	}

	labelStyle := lipgloss.NewStyle().Foreground(f.theme.Muted)
	for i, in := range f.inputs {
		label := labelStyle.Render(f.labels[i])
		if i == f.focus {
			label = lipgloss.NewStyle().Foreground(f.theme.Primary).Bold(true).Render(f.labels[i])
		}
		rows = append(rows, label, "  "+in.View())
	}
	return strings.Join(rows, "\n")
}
