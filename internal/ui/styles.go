// Package ui holds terminal presentation helpers: ANSI color, the viewport
// controller and the stage board renderer.
package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorWarn   = 214 // amber
	colorHot    = 203 // coral
	colorWon    = 114 // green
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderWarn returns s in the warning (amber) color.
func RenderWarn(s string) string { return paint(colorWarn, s) }

// RenderPriority colors an alert priority.
func RenderPriority(p string) string {
	if p == "high" {
		return paint(colorHot, p)
	}
	return RenderMuted(p)
}

// StageColor returns the ANSI256 color used for a lead stage.
func StageColor(stage string) int {
	switch {
	case stage == "Hot":
		return colorHot
	case stage == "Closed-Won":
		return colorWon
	case stage == "Closed-Lost", stage == "Cold":
		return colorMuted
	case len(stage) >= 4 && stage[:4] == "Warm":
		return colorWarn
	}
	return colorAccent
}

// RenderStage returns stage in its stage color.
func RenderStage(stage string) string { return paint(StageColor(stage), stage) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// ColorEnabled reports whether color output is on.
func ColorEnabled() bool {
	return !noColor
}
