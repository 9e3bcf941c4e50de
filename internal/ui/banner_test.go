package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBanner_Render(t *testing.T) {
	b := NewBanner("websocket server", "wsrecv server").
		SetWidth(80).
		Add("Listen", "127.0.0.1:8080").
		Add("Skipped", "").
		Add("Origins", "http://localhost:5500")

	if len(b.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(b.Params))
	}

	out := b.Render()
	for _, want := range []string{"WEBSOCKET SERVER", "wsrecv server", "Listen:", "127.0.0.1:8080", "http://localhost:5500"} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Skipped") {
		t.Errorf("empty parameter should not be rendered:\n%s", out)
	}

	if got := lipgloss.Width(out); got != 80 {
		t.Errorf("banner width = %d, want 80", got)
	}

	// Params keep insertion order
	if strings.Index(out, "Listen") > strings.Index(out, "Origins") {
		t.Errorf("params rendered out of order:\n%s", out)
	}
}

func TestBanner_MinimumWidth(t *testing.T) {
	out := NewBanner("x", "y").SetWidth(10).Render()
	if got := lipgloss.Width(out); got != MinTerminalWidth {
		t.Errorf("banner width = %d, want %d", got, MinTerminalWidth)
	}
}

func TestGetTerminalWidth_Bounds(t *testing.T) {
	w := GetTerminalWidth()
	if w < MinTerminalWidth || w > MaxContentWidth {
		t.Errorf("GetTerminalWidth() = %d, outside [%d, %d]", w, MinTerminalWidth, MaxContentWidth)
	}
}
