package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Param is one "Key: Value" line of a banner
type Param struct {
	Key   string
	Value string
}

// Banner is a bordered block with a title, the command being run and an
// ordered list of parameters.
type Banner struct {
	Title   string // e.g., "WEBSOCKET SERVER"
	Command string // e.g., "wsrecv server --port 8080"
	Params  []Param
	Width   int // Terminal width for responsive rendering
}

// NewBanner creates a banner sized to the current terminal
func NewBanner(title, command string) *Banner {
	return &Banner{
		Title:   title,
		Command: command,
		Width:   GetTerminalWidth(),
	}
}

// Add appends a parameter line. Empty values are skipped.
func (b *Banner) Add(key, value string) *Banner {
	if value == "" {
		return b
	}
	b.Params = append(b.Params, Param{Key: key, Value: value})
	return b
}

// SetWidth sets the terminal width for responsive rendering
func (b *Banner) SetWidth(width int) *Banner {
	b.Width = width
	return b
}

// Render returns the styled banner as a string
func (b *Banner) Render() string {
	width := b.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := TitleStyle.Render(strings.ToUpper(b.Title))
	commandLine := CommandStyle.Render(b.Command)
	top := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	content := top
	if len(b.Params) > 0 {
		dividerWidth := width - 6 // Border and padding
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))

		// Align values on the longest key
		keyWidth := 0
		for _, p := range b.Params {
			if len(p.Key) > keyWidth {
				keyWidth = len(p.Key)
			}
		}

		lines := make([]string, 0, len(b.Params))
		for _, p := range b.Params {
			key := ParamKeyStyle.Render(p.Key + ":" + strings.Repeat(" ", keyWidth-len(p.Key)))
			lines = append(lines, key+" "+ParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, strings.Join(lines, "\n"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2). // Border characters
		Render(content)
}

// String implements fmt.Stringer
func (b *Banner) String() string {
	return b.Render()
}
