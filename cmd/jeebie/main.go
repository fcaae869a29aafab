package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/dmg-emu/jeebie/jeebie"
	"github.com/dmg-emu/jeebie/jeebie/backend"
	"github.com/dmg-emu/jeebie/jeebie/backend/headless"
	"github.com/dmg-emu/jeebie/jeebie/backend/sdl2"
	"github.com/dmg-emu/jeebie/jeebie/backend/terminal"
	"github.com/dmg-emu/jeebie/jeebie/driver"
)

func main() {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A cycle-approximate Game Boy emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom-path, rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "test-pattern",
			Usage: "Display a test pattern instead of emulation (for debugging display)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show debug overlay (CPU/VRAM/OAM state) where the backend supports it",
		},
		cli.BoolFlag{
			Name:  "window",
			Usage: "Force the SDL2 window backend instead of the terminal backend",
		},
		cli.BoolFlag{
			Name:  "background",
			Usage: "Keep emulating in the terminal backend even while unfocused (no-op for other backends)",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	testPattern := c.Bool("test-pattern")

	romPath := c.String("rom-path")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().Get(0)
	}

	if !testPattern && romPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	if c.Bool("headless") {
		return runHeadless(c, romPath, testPattern)
	}

	return runInteractive(c, romPath, testPattern)
}

func runHeadless(c *cli.Context, romPath string, testPattern bool) error {
	frames := c.Int("frames")
	if !testPattern && frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
	if err != nil {
		return err
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))

	var emu jeebie.Emulator
	if testPattern {
		emu = jeebie.NewTestPatternEmulator()
	} else {
		emu, err = jeebie.NewWithFile(romPath)
		if err != nil {
			return err
		}
	}

	be := headless.New(frames, snapshotConfig)

	slog.Info("running headless mode", "rom", romPath, "frames", frames, "test_pattern", testPattern)

	if err := driver.Run(emu, be, driver.Options{Title: "Jeebie", TestPattern: testPattern}); err != nil {
		return fmt.Errorf("headless run failed: %w", err)
	}

	slog.Info("headless execution completed")
	return nil
}

func runInteractive(c *cli.Context, romPath string, testPattern bool) error {
	var emu jeebie.Emulator
	var err error
	if testPattern {
		emu = jeebie.NewTestPatternEmulator()
	} else {
		emu, err = jeebie.NewWithFile(romPath)
		if err != nil {
			return err
		}
	}

	be := chooseBackend(c)

	opts := driver.Options{
		Title:       "Jeebie",
		ShowDebug:   c.Bool("debug"),
		TestPattern: testPattern,
		Background:  c.Bool("background"),
	}

	return driver.Run(emu, be, opts)
}

// chooseBackend picks the SDL2 window backend when requested, falling back
// to the terminal backend. The SDL2 backend stub (build without -tags sdl2)
// reports Init failure itself, so --window without the real SDL2 bindings
// still fails with an explicit error instead of silently using the terminal.
func chooseBackend(c *cli.Context) backend.Backend {
	if c.Bool("window") {
		return sdl2.New()
	}
	return terminal.New()
}
