package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/dmg-emu/jeebie/jeebie/backend"
	"github.com/dmg-emu/jeebie/jeebie/backend/terminal/render"
	"github.com/dmg-emu/jeebie/jeebie/display"
	"github.com/dmg-emu/jeebie/jeebie/input/action"
	"github.com/dmg-emu/jeebie/jeebie/input/event"
	"github.com/dmg-emu/jeebie/jeebie/video"
)

const (
	width     = video.FramebufferWidth
	height    = video.FramebufferHeight
	scaleX    = 1
	scaleY    = 1
	frameTime = time.Second / 60

	gameAreaWidth  = width * scaleX
	gameAreaHeight = height * scaleY
	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24

	// keyTimeout is how long a key press stays "active" without a repeat
	// event before Update treats it as released; set a little above a
	// typical terminal key-repeat interval.
	keyTimeout = 100 * time.Millisecond
)

// Backend renders the emulator to a tcell-driven terminal screen: the Game
// Boy framebuffer as half-block characters on the left, an optional
// register/disassembly/log panel on the right.
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	config     backend.BackendConfig
	eventQueue []backend.InputEvent

	keyStates  map[action.Action]time.Time // last press time per tracked key
	activeKeys map[action.Action]bool      // keys considered held as of the previous frame

	debugProvider backend.DebugDataProvider

	testPatternFrame *video.FrameBuffer
	testPatternType  int
	testFrameCount   int

	pausedByFocus bool // emulation paused because the terminal lost focus

	currentFrame *video.FrameBuffer // last rendered frame, kept for snapshot export
}

func New() *Backend {
	return &Backend{
		logLevel: slog.LevelInfo,
	}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.eventQueue = make([]backend.InputEvent, 0)
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	t.screen = screen
	t.running = true

	t.logBuffer = render.NewLogBuffer(100)
	handler := render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)
	slog.SetDefault(slog.New(handler))

	if config.TestPattern {
		t.testPatternFrame = video.NewFrameBuffer()
		t.generateTestPattern(0)
		slog.Info("Terminal backend initialized in test pattern mode")
	} else {
		slog.Info("Terminal backend initialized")
		if config.ShowDebug {
			slog.Debug("Debug mode enabled")
		}
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// without --background, pause emulation whenever the terminal loses
	// focus; needs the terminal's focus-reporting mode enabled
	if !config.Background {
		t.screen.EnableFocus()
	}

	go t.handleSignals()

	return nil
}

// Update drains pending terminal input, turns the key-state table into
// press/hold/release events, then renders frame (or the test pattern,
// in test-pattern mode).
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := time.Now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventFocus:
			t.processFocusEvent(ev)
		}
	}

	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		info := action.GetInfo(act)
		if info.Category != action.CategoryGameInput {
			continue
		}

		if now.Sub(lastPressed) < keyTimeout {
			currentlyActive[act] = true
			if !t.activeKeys[act] {
				slog.Debug("Key press", "action", info.Description)
				events = append(events, backend.InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			delete(t.keyStates, act)
		}
	}

	for act := range t.activeKeys {
		if !currentlyActive[act] {
			info := action.GetInfo(act)
			slog.Debug("Key release", "action", info.Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	if len(t.eventQueue) > 0 {
		for _, evt := range t.eventQueue {
			info := action.GetInfo(evt.Action)
			slog.Debug("UI event", "action", info.Description, "type", evt.Type)
		}
		events = append(events, t.eventQueue...)
	}
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	renderFrame := frame
	if t.config.TestPattern {
		t.testFrameCount++
		if t.testFrameCount%display.TestPatternAnimationFrames == 0 {
			t.animateTestPattern()
		}
		renderFrame = t.testPatternFrame
	}

	t.currentFrame = renderFrame
	t.render(renderFrame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// processFocusEvent pauses emulation while the terminal is unfocused and
// resumes it on focus return, unless --background keeps it running.
func (t *Backend) processFocusEvent(ev *tcell.EventFocus) {
	if t.config.Background {
		return
	}

	if !ev.Focused && !t.pausedByFocus {
		t.pausedByFocus = true
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorPauseToggle, Type: event.Press})
	} else if ev.Focused && t.pausedByFocus {
		t.pausedByFocus = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorPauseToggle, Type: event.Press})
	}
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	<-signals
	t.running = false
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
}
