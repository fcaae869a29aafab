package terminal

import (
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/dmg-emu/jeebie/jeebie/backend"
	"github.com/dmg-emu/jeebie/jeebie/input"
	"github.com/dmg-emu/jeebie/jeebie/input/action"
	"github.com/dmg-emu/jeebie/jeebie/input/event"
)

// tcellKeyNameMap translates tcell's named keys to the key names the
// default input mapping understands.
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

// tcellRuneNameMap does the same for the plain-character bindings (WASD,
// digits, etc).
var tcellRuneNameMap = map[rune]string{
	'z': "z", 'x': "x", 'w': "w", 's': "s", 'a': "a", 'd': "d",
	'p': "p", 'r': "r", 'o': "o", 'f': "f", 'i': "i", 'n': "n", 'q': "q",
	' ': "Space", 't': "t",
	'1': "1", '2': "2", '3': "3", '4': "4",
	'+': "+", '=': "=", '-': "-", '_': "_",
}

func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for r, keyName := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[r] = act
		}
	}
	return mapping
}

var keyMapping = buildKeyMapping()
var runeMapping = buildRuneMapping()

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if act, exists := keyMapping[ev.Key()]; exists {
		if act == action.EmulatorQuit {
			t.running = false
		}
		t.dispatchAction(act, now)
		return
	}

	if ev.Key() == tcell.KeyRune {
		t.processRuneKey(ev.Rune(), now)
	}
}

func (t *Backend) processRuneKey(r rune, now time.Time) {
	if act, exists := runeMapping[r]; exists {
		info := action.GetInfo(act)
		slog.Debug("Key event (rune)", "rune", string(r), "action", info.Description, "category", info.Category)
		t.dispatchAction(act, now)
	}
}

// dispatchAction routes a resolved action either into the d-pad-aware
// keyStates table (game inputs) or straight onto the event queue
// (everything else: pause, debug toggles, quit).
func (t *Backend) dispatchAction(act action.Action, now time.Time) {
	info := action.GetInfo(act)
	if info.Category != action.CategoryGameInput {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	// D-pad directions are mutually exclusive: pressing one clears the rest
	// so opposite directions can't both be held from stale key state.
	if act == action.GBDPadUp || act == action.GBDPadDown ||
		act == action.GBDPadLeft || act == action.GBDPadRight {
		delete(t.keyStates, action.GBDPadUp)
		delete(t.keyStates, action.GBDPadDown)
		delete(t.keyStates, action.GBDPadLeft)
		delete(t.keyStates, action.GBDPadRight)
	}
	t.keyStates[act] = now
}
