package main

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// maxDropOverlayLines limits how many dropped paths the drop overlay lists.
const maxDropOverlayLines = 12

// App is the viewer. It owns all mutable state; Update and Draw are the only
// entry points and both run on Ebitengine's main loop.
type App struct {
	config       Config
	configStatus ConfigLoadResult
	log          zerolog.Logger

	registry   *Registry
	view       *ViewState
	textures   *TextureCache
	discoverer *Discoverer
	clipboard  *ClipboardBridge
	capture    *ScreenshotCapture

	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	inputHandler        *InputHandler
	renderer            *Renderer

	toolbar      Toolbar
	toolbarHover Command
	hoverOK      bool

	// pending is the command latched by the previous frame.
	pending Command

	ppp        float64
	windowSize Vec2

	fullscreen         bool
	showHelp           bool
	showInfo           bool
	overlayMessage     string
	overlayMessageTime time.Time
	exitRequested      bool
}

// NewApp creates the viewer over an already populated registry.
func NewApp(status ConfigLoadResult, registry *Registry, discoverer *Discoverer, clipboard *ClipboardBridge,
	fontSource *text.GoTextFaceSource, logger zerolog.Logger) *App {
	cfg := status.Config
	a := &App{
		config:              cfg,
		configStatus:        status,
		log:                 logger,
		registry:            registry,
		view:                NewViewState(cfg),
		textures:            NewTextureCache(cfg.TextureCacheSize),
		discoverer:          discoverer,
		clipboard:           clipboard,
		capture:             NewScreenshotCapture(logger),
		keybindingManager:   NewKeybindingManager(cfg.Keybindings),
		mousebindingManager: NewMousebindingManager(cfg.Mousebindings, cfg.Mouse),
		ppp:                 1,
		windowSize:          Vec2{X: float64(cfg.WindowWidth), Y: float64(cfg.WindowHeight)},
	}
	a.inputHandler = NewInputHandler(a, a, a.keybindingManager, a.mousebindingManager)
	a.renderer = NewRenderer(a, fontSource)
	a.toolbar = layoutToolbar(a.windowSize, a.renderer.measure)
	return a
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	if m := ebiten.Monitor(); m != nil {
		a.ppp = m.DeviceScaleFactor()
	}
	return a.step(pollInput(a.ppp))
}

// step advances one frame with the given input.
func (a *App) step(in *FrameInput) error {
	a.drainCommand()

	if in.Dropped != nil {
		a.handleDrop(in.Dropped)
	}

	a.toolbar = layoutToolbar(a.windowSize, a.renderer.measure)
	a.inputHandler.HandleInput(in, a.toolbar.Viewport())

	a.toolbarHover, a.hoverOK = a.toolbar.HitTest(in.Cursor)
	clicked := CommandNoop
	if a.hoverOK && in.PrimaryJustPressed() {
		clicked = a.toolbarHover
	}
	a.pending = latchCommand(in, clicked)

	if entry := a.CurrentEntry(); entry != nil {
		before := entry.State()
		if after := entry.Poll(); after == EntryFailed && before != EntryFailed {
			a.log.Warn().Err(entry.Err()).Msg("failed to load image")
		}
	}

	if a.exitRequested {
		return ebiten.Termination
	}
	return nil
}

// drainCommand runs the command latched by the previous frame.
func (a *App) drainCommand() {
	cmd := a.pending
	a.pending = CommandNoop

	switch cmd {
	case CommandNoop:
	case CommandCopy:
		a.capture.Request()
	case CommandPaste:
		if a.clipboard.Paste(a.registry) {
			a.log.Debug().Int("total", a.registry.Len()).Msg("pasted image")
		}
	default:
		a.log.Debug().Stringer("command", cmd).Msg("command has no action")
	}
}

// handleDrop appends the images found in dropped files and directories.
func (a *App) handleDrop(dropped fs.FS) {
	dfs := afero.FromIOFS{FS: dropped}
	paths := a.discoverer.withFS(dfs).ListDir(context.Background(), ".", true)
	if len(paths) == 0 {
		return
	}
	added := a.registry.AppendFromPaths(dfs, paths)
	a.log.Debug().Int("dropped", len(paths)).Int("added", added).Msg("files dropped")
	a.ShowOverlayMessage(dropOverlayText(paths))
}

func dropOverlayText(paths []string) string {
	var b strings.Builder
	b.WriteString("Dropping files:")
	for i, p := range paths {
		if i == maxDropOverlayLines {
			fmt.Fprintf(&b, "\n... and %d more", len(paths)-i)
			break
		}
		b.WriteString("\n" + p)
	}
	return b.String()
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.Draw(screen, a.ppp)
	a.capture.Complete(screen, a.view.LastDrawRect, a.ppp, a.clipboard)
}

// Layout implements ebiten.Game. The screen is sized in device pixels so
// images are drawn at native resolution.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if m := ebiten.Monitor(); m != nil {
		a.ppp = m.DeviceScaleFactor()
	}
	a.windowSize = Vec2{X: float64(outsideWidth), Y: float64(outsideHeight)}
	return int(math.Ceil(float64(outsideWidth) * a.ppp)), int(math.Ceil(float64(outsideHeight) * a.ppp))
}

// InputActions

func (a *App) Exit() {
	a.exitRequested = true
}

func (a *App) ToggleHelp() {
	a.showHelp = !a.showHelp
}

func (a *App) ToggleInfo() {
	a.showInfo = !a.showInfo
}

func (a *App) ToggleFullscreen() {
	a.fullscreen = !a.fullscreen
	ebiten.SetFullscreen(a.fullscreen)
}

func (a *App) NavigateNext() {
	a.view.Next(a.registry.Len())
	a.log.Debug().Int("index", a.view.Index).Msg("setting next index")
}

func (a *App) NavigatePrevious() {
	a.view.Prev(a.registry.Len())
	a.log.Debug().Int("index", a.view.Index).Msg("setting prev index")
}

func (a *App) JumpFirst() {
	a.view.First(a.registry.Len())
}

func (a *App) JumpLast() {
	a.view.Last(a.registry.Len())
}

func (a *App) ZoomBy(steps float64) {
	a.view.ZoomBy(steps)
}

func (a *App) ZoomReset() {
	a.view.Reset()
}

func (a *App) PanByDelta(delta Vec2) {
	a.view.Drag(delta)
}

func (a *App) ShowOverlayMessage(message string) {
	a.overlayMessage = message
	a.overlayMessageTime = time.Now()
}

// InputState and RenderState

func (a *App) ImageCount() int {
	return a.registry.Len()
}

func (a *App) Hotspots(viewport Rect) (prev, next Rect) {
	return a.view.Hotspots(viewport)
}

func (a *App) CurrentEntry() *ImageEntry {
	return a.registry.At(a.view.Index)
}

func (a *App) Texture(entry *ImageEntry) *ebiten.Image {
	return a.textures.Get(entry)
}

func (a *App) GetCurrentIndex() int { return a.view.Index }
func (a *App) View() *ViewState { return a.view }
func (a *App) Pointer() PointerState { return a.inputHandler.Pointer() }
func (a *App) Toolbar() Toolbar { return a.toolbar }
func (a *App) ToolbarHover() (Command, bool) { return a.toolbarHover, a.hoverOK }
func (a *App) IsShowingHelp() bool { return a.showHelp }
func (a *App) IsShowingInfo() bool { return a.showInfo }
func (a *App) GetOverlayMessage() string { return a.overlayMessage }
func (a *App) GetOverlayMessageTime() time.Time { return a.overlayMessageTime }
func (a *App) GetFontSize() float64 { return a.config.FontSize }
func (a *App) GetConfigStatus() ConfigLoadResult { return a.configStatus }
func (a *App) GetKeybindings() map[string][]string { return a.keybindingManager.GetKeybindings() }
func (a *App) GetMousebindings() map[string][]string { return a.mousebindingManager.GetMousebindings() }
