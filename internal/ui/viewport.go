package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Mode is the display layout.
type Mode string

const (
	// ModeNormal is the interactive layout with a help footer.
	ModeNormal Mode = "normal"
	// ModeKiosk is the full-width, input-minimized layout for unattended
	// displays.
	ModeKiosk Mode = "kiosk"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

// normalMaxWidth caps the normal layout on wide terminals. Kiosk mode uses
// the full width.
const normalMaxWidth = 160

// ParseMode parses a layout mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal, "":
		return ModeNormal, nil
	case ModeKiosk:
		return ModeKiosk, nil
	}
	return "", fmt.Errorf("invalid layout mode %q (want normal or kiosk)", s)
}

// Layout is a resolved snapshot of the viewport used by renderers.
type Layout struct {
	Mode     Mode `json:"mode"`
	Width    int  `json:"width"`
	ShowHelp bool `json:"show_help"`
}

// Viewport owns the display layout. It is mounted on an output before
// rendering and holds the mode as plain state; renderers read a Layout
// from it and never change process-wide settings.
type Viewport struct {
	mu       sync.RWMutex
	mode     Mode
	width    int
	measure  func() (int, bool)
	mounted  bool
	onChange []func(Layout)
}

// NewViewport creates an unmounted viewport in mode.
func NewViewport(mode Mode) *Viewport {
	if mode == "" {
		mode = ModeNormal
	}
	return &Viewport{mode: mode, width: DefaultWidth}
}

// Mount attaches the viewport to out and measures its width. Mounting an
// already mounted viewport re-measures.
func (v *Viewport) Mount(out *os.File) {
	v.MountFunc(func() (int, bool) { return TerminalWidth(out) })
}

// MountFunc mounts with a custom width source.
func (v *Viewport) MountFunc(measure func() (int, bool)) {
	v.mu.Lock()
	v.measure = measure
	v.mounted = true
	v.remeasureLocked()
	v.mu.Unlock()
}

// Unmount detaches the viewport. Width falls back to DefaultWidth and
// change listeners are dropped.
func (v *Viewport) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = false
	v.measure = nil
	v.width = DefaultWidth
	v.onChange = nil
}

// Mounted reports whether the viewport is attached to an output.
func (v *Viewport) Mounted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mounted
}

// Resize re-measures the mounted output.
func (v *Viewport) Resize() {
	v.mu.Lock()
	v.remeasureLocked()
	layout, listeners := v.layoutLocked(), v.listenersLocked()
	v.mu.Unlock()
	notify(listeners, layout)
}

func (v *Viewport) remeasureLocked() {
	if v.measure == nil {
		return
	}
	if w, ok := v.measure(); ok {
		v.width = w
	} else {
		v.width = DefaultWidth
	}
}

// OnChange registers fn to run after the mode or width changes. It is
// cleared by Unmount.
func (v *Viewport) OnChange(fn func(Layout)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = append(v.onChange, fn)
}

// Mode returns the current layout mode.
func (v *Viewport) Mode() Mode {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mode
}

// SetMode switches the layout mode.
func (v *Viewport) SetMode(m Mode) {
	v.mu.Lock()
	if v.mode == m {
		v.mu.Unlock()
		return
	}
	v.mode = m
	layout, listeners := v.layoutLocked(), v.listenersLocked()
	v.mu.Unlock()
	notify(listeners, layout)
}

// Layout returns the resolved layout.
func (v *Viewport) Layout() Layout {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.layoutLocked()
}

func (v *Viewport) layoutLocked() Layout {
	l := Layout{Mode: v.mode, Width: v.width, ShowHelp: v.mode != ModeKiosk}
	if v.mode == ModeNormal && l.Width > normalMaxWidth {
		l.Width = normalMaxWidth
	}
	return l
}

func (v *Viewport) listenersLocked() []func(Layout) {
	return append(([]func(Layout))(nil), v.onChange...)
}

func notify(listeners []func(Layout), l Layout) {
	for _, fn := range listeners {
		fn(l)
	}
}
