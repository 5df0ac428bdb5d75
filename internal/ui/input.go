package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// textField is a single-line editor
type textField struct {
	value       []rune
	cursor      int
	placeholder string
}

func newTextField(placeholder string) textField {
	return textField{placeholder: placeholder}
}

func (f *textField) Value() string {
	return string(f.value)
}

func (f *textField) SetValue(s string) {
	f.value = []rune(s)
	f.cursor = len(f.value)
}

// Update applies an editing key and reports whether the value changed
func (f *textField) Update(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		f.insert(msg.Runes)
		return true
	case tea.KeySpace:
		f.insert([]rune{' '})
		return true
	case tea.KeyBackspace:
		if f.cursor == 0 {
			return false
		}
		f.value = append(f.value[:f.cursor-1], f.value[f.cursor:]...)
		f.cursor--
		return true
	case tea.KeyDelete:
		if f.cursor >= len(f.value) {
			return false
		}
		f.value = append(f.value[:f.cursor], f.value[f.cursor+1:]...)
		return true
	case tea.KeyCtrlU:
		changed := len(f.value) > 0
		f.SetValue("")
		return changed
	case tea.KeyLeft:
		if f.cursor > 0 {
			f.cursor--
		}
	case tea.KeyRight:
		if f.cursor < len(f.value) {
			f.cursor++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		f.cursor = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		f.cursor = len(f.value)
	}
	return false
}

func (f *textField) insert(runes []rune) {
	tail := append([]rune(nil), f.value[f.cursor:]...)
	f.value = append(append(f.value[:f.cursor], runes...), tail...)
	f.cursor += len(runes)
}

// View renders the value with a block cursor when focused
func (f *textField) View(focused bool, muted lipgloss.Style) string {
	if len(f.value) == 0 && !focused {
		return muted.Render(f.placeholder)
	}
	if !focused {
		return string(f.value)
	}

	var b strings.Builder
	b.WriteString(string(f.value[:f.cursor]))
	if f.cursor < len(f.value) {
		b.WriteString(lipgloss.NewStyle().Reverse(true).Render(string(f.value[f.cursor])))
		b.WriteString(string(f.value[f.cursor+1:]))
	} else {
		b.WriteString("█")
	}
	return b.String()
}
