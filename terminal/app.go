// Package terminal is a full-screen diagram editor built on tcell. It owns
// the screen: mouse input becomes pointer events for the interaction
// engine, nodes are drawn as boxes and connection lines come from the
// renderer painting into a character canvas.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"nodeboard/canvas"
	"nodeboard/diagram"
	"nodeboard/interaction"
	"nodeboard/render"
	"nodeboard/store"
)

// DefaultFrameInterval is the delay between an invalidation and its paint.
const DefaultFrameInterval = 16 * time.Millisecond

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. The screen is busy, so it should not write
// to stdout or stderr.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithZoomStep sets the keyboard zoom increment.
func WithZoomStep(step float64) Option {
	return func(a *App) {
		a.zoomStep = step
	}
}

// WithFrameInterval sets the frame delay for the built-in scheduler.
func WithFrameInterval(d time.Duration) Option {
	return func(a *App) {
		a.frameInterval = d
	}
}

// WithPixelRatio sets the device pixel ratio the canvas reports.
func WithPixelRatio(ratio float64) Option {
	return func(a *App) {
		a.pixelRatio = ratio
	}
}

// WithCapabilities sets the glyphs and colours the editor may use. The
// default assumes a UTF-8 colour terminal.
func WithCapabilities(c Capabilities) Option {
	return func(a *App) {
		a.caps = c
	}
}

// WithScheduler replaces the tcell frame scheduler, mainly for tests.
func WithScheduler(s render.Scheduler) Option {
	return func(a *App) {
		a.scheduler = s
	}
}

// App is the interactive editor. All methods must be called from the
// goroutine running the event loop.
type App struct {
	screen   tcell.Screen
	store    *store.Store
	engine   *interaction.Engine
	renderer *render.Renderer
	surface  *canvas.Surface
	log      *zap.Logger

	scheduler     render.Scheduler
	frames        *FrameScheduler
	frameInterval time.Duration
	zoomStep      float64
	pixelRatio    float64
	caps          Capabilities

	width, height int

	mouseDown  bool
	lastMouse  diagram.Point
	hasPointer bool

	editing string // id of the node whose label is being edited
	editBuf []rune

	message string
	quit    bool
}

// New wires an editor for st onto screen. The screen must be initialized
// before events are handled; Run does that.
func New(screen tcell.Screen, st *store.Store, opts ...Option) *App {
	a := &App{
		screen:        screen,
		store:         st,
		log:           zap.NewNop(),
		frameInterval: DefaultFrameInterval,
		zoomStep:      interaction.DefaultZoomStep,
		pixelRatio:    1,
		caps:          FullCapabilities(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.scheduler == nil {
		a.frames = NewFrameScheduler(screen, a.frameInterval)
		a.scheduler = a.frames
	}

	a.surface = canvas.NewSurface(0, 0)
	a.surface.SetPixelRatio(a.pixelRatio)
	a.surface.SetASCII(a.caps.ASCII)
	a.engine = interaction.NewEngine(st,
		interaction.WithZoomStep(a.zoomStep),
		interaction.WithLogger(a.log.Named("engine")),
		interaction.WithChangeHandler(a.invalidate),
	)
	a.renderer = render.New(a.frame, a.scheduler,
		render.WithLogger(a.log.Named("render")),
		render.WithAfterPaint(a.present),
	)
	a.renderer.Attach(a.surface)
	return a
}

// Engine returns the interaction engine driven by the app.
func (a *App) Engine() *interaction.Engine {
	return a.engine
}

// Run initializes the screen and processes events until the user quits.
func (a *App) Run() error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer a.screen.Fini()

	a.screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	a.screen.HideCursor()
	w, h := a.screen.Size()
	a.resize(w, h)

	for !a.quit {
		ev := a.screen.PollEvent()
		if ev == nil {
			break
		}
		a.HandleEvent(ev)
	}
	a.renderer.Close()
	a.log.Info("editor closed", zap.String("diagramID", a.store.ActiveID()))
	return nil
}

// Quitting reports whether the user asked to leave.
func (a *App) Quitting() bool {
	return a.quit
}

// HandleEvent processes one tcell event.
func (a *App) HandleEvent(ev tcell.Event) {
	if a.frames != nil && a.frames.Dispatch(ev) {
		return
	}
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		a.resize(w, h)
		a.screen.Sync()
	case *tcell.EventKey:
		if a.editing != "" {
			a.handleEditKey(ev)
		} else {
			a.handleKey(ev)
		}
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	// The bottom row is the status line.
	a.surface.SetContainerCells(w, max(h-1, 0))
	a.invalidate()
}

func (a *App) invalidate() {
	a.renderer.Invalidate()
}

// frame is the renderer source.
func (a *App) frame() render.Frame {
	return render.Frame{
		Nodes:       a.store.Nodes(),
		Connections: a.store.Connections(),
		Pan:         a.engine.Pan(),
		Zoom:        a.engine.Zoom(),
	}
}

func (a *App) setMessage(format string, args ...any) {
	a.message = fmt.Sprintf(format, args...)
	a.invalidate()
}

func (a *App) cycleDiagram(step int) {
	diagrams := a.store.Diagrams()
	if len(diagrams) < 2 {
		return
	}
	cur := 0
	for i, d := range diagrams {
		if d.ID == a.store.ActiveID() {
			cur = i
		}
	}
	next := (cur + step + len(diagrams)) % len(diagrams)
	if err := a.store.LoadDiagram(diagrams[next].ID); err != nil {
		a.setMessage("open failed: %v", err)
		return
	}
	a.engine.SetMode(a.engine.Mode())
	a.setMessage("opened %s", diagrams[next].Name)
}
