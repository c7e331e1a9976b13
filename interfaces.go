package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// RenderState provides read-only access to app state for the renderer
type RenderState interface {
	// Current image
	CurrentEntry() *ImageEntry
	Texture(entry *ImageEntry) *ebiten.Image
	GetCurrentIndex() int
	ImageCount() int
	View() *ViewState

	// Pointer and toolbar
	Pointer() PointerState
	Toolbar() Toolbar
	ToolbarHover() (Command, bool)

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Display data
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpFirst()
	JumpLast()

	// Zoom and pan
	ZoomBy(steps float64)
	ZoomReset()
	PanByDelta(delta Vec2)
}

// InputState provides read-only access to input-related state
type InputState interface {
	ImageCount() int
	Hotspots(viewport Rect) (prev, next Rect)
}
