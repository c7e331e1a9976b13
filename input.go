package main

import (
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// FrameInput is the input observed during one Update. Positions are in
// logical points.
type FrameInput struct {
	JustPressedKeys    map[ebiten.Key]bool
	JustPressedButtons map[ebiten.MouseButton]bool
	Shift, Ctrl, Alt   bool

	Cursor         Vec2
	WheelX, WheelY float64
	PrimaryPressed bool

	// Dropped holds files dropped onto the window this frame, or nil.
	Dropped fs.FS
}

var polledButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
	ebiten.MouseButton3,
	ebiten.MouseButton4,
}

// pollInput snapshots Ebitengine's input state. ppp is the device scale
// factor used to convert the cursor from screen pixels to points.
func pollInput(ppp float64) *FrameInput {
	in := &FrameInput{
		JustPressedKeys:    make(map[ebiten.Key]bool),
		JustPressedButtons: make(map[ebiten.MouseButton]bool),
		Shift:              ebiten.IsKeyPressed(ebiten.KeyShift),
		Ctrl:               ebiten.IsKeyPressed(ebiten.KeyControl),
		Alt:                ebiten.IsKeyPressed(ebiten.KeyAlt),
		PrimaryPressed:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Dropped:            ebiten.DroppedFiles(),
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		in.JustPressedKeys[k] = true
	}
	for _, b := range polledButtons {
		if inpututil.IsMouseButtonJustPressed(b) {
			in.JustPressedButtons[b] = true
		}
	}
	x, y := ebiten.CursorPosition()
	if ppp <= 0 {
		ppp = 1
	}
	in.Cursor = Vec2{X: float64(x) / ppp, Y: float64(y) / ppp}
	in.WheelX, in.WheelY = ebiten.Wheel()
	return in
}

func (in *FrameInput) KeyJustPressed(k ebiten.Key) bool {
	return in.JustPressedKeys[k]
}

func (in *FrameInput) ButtonJustPressed(b ebiten.MouseButton) bool {
	return in.JustPressedButtons[b]
}

func (in *FrameInput) PrimaryJustPressed() bool {
	return in.JustPressedButtons[ebiten.MouseButtonLeft]
}

// ModifiersMatch reports whether exactly the given modifiers are held.
func (in *FrameInput) ModifiersMatch(shift, ctrl, alt bool) bool {
	return in.Shift == shift && in.Ctrl == ctrl && in.Alt == alt
}

// PointerState describes where the pointer is relative to the viewer.
type PointerState struct {
	InViewport bool
	HoverPrev  bool
	HoverNext  bool
	Dragging   bool
}

// InputHandler turns frame input into viewer actions.
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	executor            *ActionExecutor

	pointer    PointerState
	lastCursor Vec2
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, km *KeybindingManager, mm *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   km,
		mousebindingManager: mm,
		executor:            NewActionExecutor(),
	}
}

// Pointer returns the pointer state computed by the last HandleInput.
func (h *InputHandler) Pointer() PointerState {
	return h.pointer
}

// HandleInput processes viewer input for one frame. viewport is the image
// area in points. It returns true if any action ran.
func (h *InputHandler) HandleInput(in *FrameInput, viewport Rect) bool {
	inputProcessed := false

	inputProcessed = h.handleAppKeys(in) || inputProcessed
	inputProcessed = h.handleNavigationKeys(in) || inputProcessed
	inputProcessed = h.handleZoom(in, viewport) || inputProcessed
	inputProcessed = h.handlePointer(in, viewport) || inputProcessed

	h.lastCursor = in.Cursor
	return inputProcessed
}

func (h *InputHandler) runKeyAction(action string, in *FrameInput) bool {
	if !h.keybindingManager.CheckAction(action, in) {
		return false
	}
	return h.executor.ExecuteAction(action, h.inputActions, 1)
}

// runMouseAction runs action if one of its mouse bindings fired while the
// pointer is over the viewport.
func (h *InputHandler) runMouseAction(action string, in *FrameInput, viewport Rect) bool {
	if h.mousebindingManager == nil || !viewport.Contains(in.Cursor) {
		return false
	}
	amount := h.mousebindingManager.CheckAction(action, in)
	if amount == 0 {
		return false
	}
	return h.executor.ExecuteAction(action, h.inputActions, amount)
}

func (h *InputHandler) handleAppKeys(in *FrameInput) bool {
	inputProcessed := false
	for _, action := range []string{"exit", "help", "info", "fullscreen"} {
		if h.runKeyAction(action, in) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

func (h *InputHandler) handleNavigationKeys(in *FrameInput) bool {
	inputProcessed := false
	for _, action := range []string{"next", "previous", "jump_first", "jump_last"} {
		if h.runKeyAction(action, in) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

// handleZoom applies reset, or otherwise zoom in/out. A reset in the same
// frame suppresses zooming.
func (h *InputHandler) handleZoom(in *FrameInput, viewport Rect) bool {
	if h.runKeyAction("zoom_reset", in) || h.runMouseAction("zoom_reset", in, viewport) {
		return true
	}

	inputProcessed := false
	for _, action := range []string{"zoom_in", "zoom_out"} {
		if h.runKeyAction(action, in) {
			inputProcessed = true
		}
		if h.runMouseAction(action, in, viewport) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

// handlePointer drives the navigation hotspots and drag-to-pan.
func (h *InputHandler) handlePointer(in *FrameInput, viewport Rect) bool {
	p := PointerState{
		InViewport: viewport.Contains(in.Cursor),
		Dragging:   h.pointer.Dragging,
	}
	if p.InViewport && h.inputState.ImageCount() > 0 {
		prev, next := h.inputState.Hotspots(viewport)
		p.HoverPrev = prev.Contains(in.Cursor)
		p.HoverNext = !p.HoverPrev && next.Contains(in.Cursor)
	}

	inputProcessed := false
	settings := GetDefaultMouseSettings()
	if h.mousebindingManager != nil {
		settings = h.mousebindingManager.GetSettings()
	}

	if in.PrimaryJustPressed() && p.InViewport && settings.EnableMouse {
		switch {
		case p.HoverPrev:
			h.inputActions.NavigatePrevious()
			inputProcessed = true
		case p.HoverNext:
			h.inputActions.NavigateNext()
			inputProcessed = true
		case settings.EnableDragPan:
			p.Dragging = true
			h.lastCursor = in.Cursor
		}
	}

	if !in.PrimaryPressed {
		p.Dragging = false
	}
	if p.Dragging {
		delta := in.Cursor.Sub(h.lastCursor).Scale(settings.DragSensitivity)
		if delta != (Vec2{}) {
			h.inputActions.PanByDelta(delta)
			inputProcessed = true
		}
	}

	h.pointer = p
	return inputProcessed
}
