package audio

import (
	"github.com/dmg-emu/jeebie/jeebie/timing"
)

// APU drives the DMG's four sound channels (CH1 square+sweep, CH2 square,
// CH3 wave, CH4 noise) and mixes them down to an interleaved stereo PCM
// stream. At its core it's a pile of counters clocked at various rates:
// per-channel period timers run every Tick, a 512Hz frame sequencer clocks
// length/sweep/envelope, and a separate accumulator resamples the mixed
// output down to the host's sample rate.
type APU struct {
	enabled           bool
	ch                [4]Channel
	vinLeft, vinRight bool  // NR50: whether the VIN pin is routed to each side
	volLeft, volRight uint8 // NR50: master volume per side, 0-7
	vinSample         int16 // external VIN sample (Pan Docs: Audio mixing - VIN)

	// mixing accumulators: raw channel levels are summed here every tick,
	// then averaged and resampled down to hostSampleRate in flushMix.
	mixLeftAcc         int64
	mixRightAcc        int64
	mixAccumCycles     int
	pcmBuffer          []int16
	pcmCursor          int
	pcmCycleAcc        float64
	pcmCyclesPerSample float64
	hostSampleRate     int

	// 512Hz frame sequencer
	step   int // current step, 0-7
	cycles int // T-cycles accumulated since the last sequencer step

	NR10, NR11, NR12, NR13, NR14 uint8 // Channel 1
	NR21, NR22, NR23, NR24       uint8 // Channel 2
	NR30, NR31, NR32, NR33, NR34 uint8 // Channel 3
	NR41, NR42, NR43, NR44       uint8 // Channel 4
	NR50, NR51, NR52             uint8 // Global controls
	waveRAM                      [waveRAMSize]uint8
}

func New() *APU {
	apu := &APU{hostSampleRate: 44100}
	apu.pcmCyclesPerSample = float64(timing.CPUFrequency) / float64(apu.hostSampleRate)
	apu.powerOn()
	return apu
}

// powerOn loads the register file with the state the boot ROM leaves behind,
// since execution starts at 0x0100 without running a boot ROM.
func (a *APU) powerOn() {
	a.NR52 = 0xF1
	a.NR10, a.NR11, a.NR12 = 0x80, 0xBF, 0xF3
	a.NR21 = 0x3F
	a.NR30, a.NR31, a.NR32 = 0x7F, 0xFF, 0x9F
	a.NR41 = 0xFF
	a.NR50, a.NR51 = 0x77, 0xF3
	a.mapRegistersToState()
}

// Tick advances the APU by cycles T-cycles: it feeds every channel's
// generator, folds the result into the mix accumulator, and walks the
// frame sequencer forward whenever enough cycles have piled up.
func (a *APU) Tick(cycles int) {
	if !a.enabled {
		return
	}

	a.tickGenerators(cycles)
	a.cycles += cycles

	for a.cycles >= cyclesPerStep {
		a.cycles -= cyclesPerStep
		a.tickSequence()
	}
}

// tickGenerators steps each channel's waveform generator by cycles T-cycles,
// gates the result by DAC/mute state, pans it into left/right according to
// NR51, and hands the summed level to the mix accumulator.
func (a *APU) tickGenerators(cycles int) {
	if cycles <= 0 {
		return
	}

	var leftLevel, rightLevel int64
	for i := range a.ch {
		ch := &a.ch[i]
		if !ch.enabled || !ch.dacEnabled || ch.muted {
			continue
		}

		var level int64
		switch i {
		case 0, 1:
			level = a.stepSquare(ch, cycles)
		case 2:
			level = a.stepWave(ch, cycles)
		case 3:
			level = a.stepNoise(ch, cycles)
		}
		if level == 0 {
			continue
		}

		if ch.left {
			leftLevel += level
		}
		if ch.right {
			rightLevel += level
		}
	}

	if a.vinLeft {
		leftLevel += int64(a.vinSample)
	}
	if a.vinRight {
		rightLevel += int64(a.vinSample)
	}

	a.mixLeftAcc += leftLevel * int64(cycles)
	a.mixRightAcc += rightLevel * int64(cycles)
	a.mixAccumCycles += cycles
	a.flushMix(cycles)
}
