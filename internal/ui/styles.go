package ui

import "fmt"

// ANSI256 color codes for CLI output.
const (
	colorAccent = 74  // blue, for paths and identifiers
	colorWarn   = 178 // amber, for per-issue warnings
	colorMuted  = 245 // medium gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderWarn returns s in the warning (amber) color.
func RenderWarn(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorWarn, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
