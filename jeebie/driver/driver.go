// Package driver wires a jeebie.Emulator to a pluggable backend.Backend,
// running the render/input loop that every frontend (terminal, SDL2,
// headless) shares.
package driver

import (
	"github.com/dmg-emu/jeebie/jeebie"
	"github.com/dmg-emu/jeebie/jeebie/audio"
	"github.com/dmg-emu/jeebie/jeebie/backend"
	"github.com/dmg-emu/jeebie/jeebie/input"
	"github.com/dmg-emu/jeebie/jeebie/input/action"
	"github.com/dmg-emu/jeebie/jeebie/input/event"
	"github.com/dmg-emu/jeebie/jeebie/timing"
)

// Options configures a single Run invocation.
type Options struct {
	Title       string
	ShowDebug   bool
	TestPattern bool
	Background  bool
}

// audioCapable is implemented by emulators that can expose their APU as a
// generic audio.Provider for backends that open a sound device.
type audioCapable interface {
	GetAudioProvider() audio.Provider
}

// backendActionHandler is implemented by backends that react to
// non-gameplay actions (snapshots, debug toggles, audio channel muting).
type backendActionHandler interface {
	HandleAction(act action.Action)
}

// Run drives emu and be in lockstep: advance one emulated frame, hand the
// framebuffer to the backend, translate whatever input events come back
// into joypad presses, pause toggles, or backend-specific actions. It
// blocks until a Quit action arrives or the backend reports an error.
func Run(emu jeebie.Emulator, be backend.Backend, opts Options) error {
	cfg := backend.BackendConfig{
		Title:         opts.Title,
		ShowDebug:     opts.ShowDebug,
		TestPattern:   opts.TestPattern,
		Background:    opts.Background,
		DebugProvider: emu,
	}
	if ac, ok := emu.(audioCapable); ok {
		cfg.AudioProvider = ac.GetAudioProvider()
	}

	if err := be.Init(cfg); err != nil {
		return err
	}
	defer be.Cleanup()

	emu.SetFrameLimiter(timing.NewAdaptiveLimiter())

	handler := input.NewHandler()
	paused := false

	for {
		if !paused {
			if err := emu.RunUntilFrame(); err != nil {
				return err
			}
		}

		events, err := be.Update(emu.GetCurrentFrame())
		if err != nil {
			return err
		}

		for _, evt := range events {
			if !handler.ProcessEvent(evt) {
				continue
			}

			if evt.Action == action.EmulatorQuit {
				if evt.Type == event.Press {
					return nil
				}
				continue
			}

			if evt.Action == action.EmulatorPauseToggle {
				if evt.Type == event.Press {
					paused = !paused
					emu.ResetFrameTiming()
				}
				continue
			}

			if action.GetInfo(evt.Action).Category == action.CategoryGameInput {
				emu.HandleAction(evt.Action, evt.Type != event.Release)
				continue
			}

			if bah, ok := be.(backendActionHandler); ok && evt.Type == event.Press {
				bah.HandleAction(evt.Action)
			}
		}
	}
}
