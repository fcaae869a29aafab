package audio

import "github.com/dmg-emu/jeebie/jeebie/bit"

// Channel holds the runtime state for one of the APU's four generators.
// Not every field applies to every channel:
//
//   - duty: square-wave shape selector (CH1/CH2), 0-3
//   - sweep: periodic frequency shift, CH1 only
//   - envelope: periodic volume ramp, CH1/CH2/CH4
//   - period: channel rate selector; frequency = 2048-period (CH1-3)
//   - dacEnabled: channel is silent while its DAC is off
//   - lfsr: noise channel's linear feedback shift register
type Channel struct {
	enabled bool

	left, right bool // NR51 panning; if neither is set the channel is inaudible

	duty   uint8
	timer  uint8  // initial length value as loaded from the register (6 bits, 8 for CH3)
	length uint16 // live length countdown, up to 256 for CH3
	volume uint8  // initial volume, 0-15

	sweepPeriod  uint8
	sweepDown    bool
	sweepStep    uint8
	sweepEnabled bool
	sweepTimer   uint8
	shadowFreq   uint16
	sweepNegUsed bool // subtract-mode sweep negate bug tracking

	envelopePace    uint8
	envelopeUp      bool
	envelopeCounter uint8
	envelopeLatched bool

	period       uint16
	trigger      bool
	lengthEnable bool
	freqTimer    int
	dutyStep     uint8
	waveIndex    uint8
	waveSample   uint8
	noiseTimer   int

	lfsr        uint16
	use7bitLFSR bool
	shift       uint8
	divider     uint8

	dacEnabled bool

	muted bool // debug-only mute, independent of enabled/DAC state
}

// calculateSweepFrequency returns the next sweep target, or the unchanged
// shadow frequency when shift is zero (no update, but callers still need the
// overflow bit from checkSweepOverflow for the dummy post-trigger check).
func (ch *Channel) calculateSweepFrequency() (newFreq uint16, overflow bool) {
	if ch.sweepStep == 0 {
		return ch.shadowFreq, false
	}
	return ch.checkSweepOverflow()
}

// checkSweepOverflow computes the sweep target unconditionally, including
// when shift is zero, since the periodic overflow check in tickSweep must
// still run every period regardless. Pure function: never mutates ch.
func (ch *Channel) checkSweepOverflow() (newFreq uint16, overflow bool) {
	delta := ch.shadowFreq >> ch.sweepStep
	if ch.sweepDown {
		if delta > ch.shadowFreq {
			newFreq = 0
		} else {
			newFreq = ch.shadowFreq - delta
		}
	} else {
		newFreq = ch.shadowFreq + delta
	}
	return newFreq, newFreq > 2047
}

var dutyPatterns = [4][8]int64{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var noiseDividers = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func (a *APU) stepSquare(ch *Channel, cycles int) int64 {
	period := a.squarePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.dutyStep = (ch.dutyStep + 1) & 0x7
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if dutyPatterns[ch.duty&0x3][ch.dutyStep] == 0 {
		// A zero in the duty pattern still needs to reach the DAC, so mirror
		// the level rather than returning a flat zero (keeps the signal DC-free).
		return -level
	}
	return level
}

func (a *APU) stepWave(ch *Channel, cycles int) int64 {
	period := a.wavePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.waveIndex = (ch.waveIndex + 1) & 0x1F
	}

	sample := int64(a.readWaveSample(ch.waveIndex)) - 8
	switch ch.volume & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

func (a *APU) stepNoise(ch *Channel, cycles int) int64 {
	period := a.noisePeriodCycles(ch)
	if period == 0 {
		return 0
	}
	if ch.lfsr == 0 {
		ch.lfsr = 0x7FFF
	}
	if ch.noiseTimer <= 0 {
		ch.noiseTimer = period
	}

	ch.noiseTimer -= cycles
	for ch.noiseTimer <= 0 {
		ch.noiseTimer += period
		feedback := (ch.lfsr & 1) ^ ((ch.lfsr >> 1) & 1)
		ch.lfsr = (ch.lfsr >> 1) | (feedback << 14)
		if ch.use7bitLFSR {
			ch.lfsr = (ch.lfsr &^ (1 << 6)) | (feedback << 6)
		}
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if bit.IsSet(0, uint8(ch.lfsr)) {
		// LFSR output bit is inverted before it reaches the DAC.
		return -level
	}
	return level
}

func (a *APU) squarePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 4
}

func (a *APU) wavePeriodCycles(ch *Channel) int {
	period := 2048 - int(ch.period&0x7FF)
	if period <= 0 {
		return 0
	}
	return period * 2
}

func (a *APU) noisePeriodCycles(ch *Channel) int {
	div := noiseDividers[ch.divider&0x7]
	period := div << ch.shift
	if period <= 0 {
		return 0
	}
	return period
}

func (a *APU) readWaveSample(index uint8) uint8 {
	value := a.waveRAM[index>>1]
	a.ch[2].waveSample = value
	if index&1 == 0 {
		return value >> 4
	}
	return value & 0x0F
}

// waveRAMLocked reports whether the CPU's view of wave RAM should be
// redirected to the live sample buffer instead of the backing array, which
// happens whenever CH3 is actively playing.
func (a *APU) waveRAMLocked() bool {
	return a.enabled && a.ch[2].enabled && a.ch[2].dacEnabled
}
