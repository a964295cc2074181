package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitfield/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	bitsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// row is one field of the value, nested fields flattened into dotted paths.
type row struct {
	typ    codec.Type
	path   []string
	offset int
	n      int
}

func flatten(l *codec.Layout, prefix []string, base int) []row {
	var rows []row
	for _, f := range l.Fields() {
		path := append(append([]string(nil), prefix...), f.Name)
		rows = append(rows, row{typ: f.Type, path: path, offset: base + f.Offset, n: f.Len})
		if nested, ok := f.Type.(*codec.Layout); ok {
			rows = append(rows, flatten(nested, path, base+f.Offset)...)
		}
	}
	return rows
}

func (r row) raw(s codec.Struct) uint64 {
	v := s.Bits() >> r.offset
	if r.n < 64 {
		v &= 1<<r.n - 1
	}
	return v
}

type modelState int

const (
	stateSelectField modelState = iota
	stateEditValue
)

type interactiveModel struct {
	err      error
	value    codec.Struct
	rows     []row
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(value codec.Struct) *interactiveModel {
	return &interactiveModel{
		value: value,
		rows:  flatten(value.Layout(), nil, 0),
		state: stateSelectField,
	}
}

func runInteractive(value codec.Struct) error {
	p := tea.NewProgram(newInteractiveModel(value), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateEditValue {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = stateSelectField
			return m, nil
		case "enter":
			r := m.rows[m.selected]
			next, err := assign(m.value, r.path, m.input.Value())
			m.err = err
			if err == nil {
				m.value = next
				m.state = stateSelectField
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	l := m.value.Layout()
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}

	case "enter":
		r := m.rows[m.selected]
		ti := textinput.New()
		ti.Placeholder = codec.Format(r.typ, r.raw(m.value))
		ti.Prompt = strings.Join(r.path, ".") + ": "
		ti.Width = 40
		ti.Focus()
		m.input = ti
		m.err = nil
		m.state = stateEditValue

	case "z":
		m.value, m.err = l.Zeroes(), nil
	case "o":
		m.value, m.err = l.Ones(), nil
	case "m":
		m.value, m.err = l.Min(), nil
	case "M":
		m.value, m.err = l.Max(), nil
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	l := m.value.Layout()
	width := l.StorageWidth().Bits()

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bitfield Editor"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%s (%d bits, %s)", l.Name(), l.Bits(), l.StorageWidth()))
	b.WriteString("\n\n")
	b.WriteString(bitsStyle.Render(fmt.Sprintf("%#0*x  %0*b", width/4, m.value.Bits(), width, m.value.Bits())))
	b.WriteString("\n\n")

	for i, r := range m.rows {
		indent := strings.Repeat("  ", len(r.path)-1)
		line := fmt.Sprintf("%s%s [%d:%d) %s = %s", indent, fieldStyle.Render(r.path[len(r.path)-1]),
			r.offset, r.offset+r.n, typeStyle.Render(r.typ.String()), codec.Format(r.typ, r.raw(m.value)))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateEditValue {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateSelectField:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • z/o/m/M zeroes/ones/min/max • q quit"))
	case stateEditValue:
		b.WriteString(helpStyle.Render("enter apply • esc back"))
	}

	return b.String()
}
