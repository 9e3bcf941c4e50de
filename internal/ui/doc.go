// Package ui renders the startup banner and discovery listings printed by the
// wsrecv CLI.
//
// Output is styled with Lipgloss and sized to the terminal reported by
// golang.org/x/term. Nothing here is interactive: components render once to a
// string and the caller prints it.
//
// Example:
//
//	banner := ui.NewBanner("WEBSOCKET SERVER", "wsrecv server").
//	    Add("Listen", cfg.Addr()).
//	    Add("Origins", strings.Join(cfg.AllowedOrigins, ", "))
//	fmt.Println(banner.Render())
//
// Styling is skipped entirely when stdout is not a terminal (see IsTerminal),
// so logs and pipes stay plain.
package ui
