package audio

import (
	"github.com/dmg-emu/jeebie/jeebie/addr"
	"github.com/dmg-emu/jeebie/jeebie/bit"
)

// ReadRegister returns an NRxx register's value with its write-only and
// unused bits forced to 1, matching what real hardware reads back.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.NR10 | 0b1000_0000
	case addr.NR11:
		return a.NR11 | 0b0011_1111
	case addr.NR12:
		return a.NR12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.NR14 | 0b1011_1111
	case addr.NR21:
		return a.NR21 | 0b0011_1111
	case addr.NR22:
		return a.NR22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.NR24 | 0b1011_1111
	case addr.NR30:
		return a.NR30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.NR32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.NR34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.NR42
	case addr.NR43:
		return a.NR43
	case addr.NR44:
		return a.NR44 | 0b1011_1111
	case addr.NR50:
		return a.NR50
	case addr.NR51:
		return a.NR51
	case addr.NR52:
		status := uint8(0b0111_0000) // bits 6-4 always read as 1
		if a.enabled {
			status = bit.Set(7, status)
		}
		for i := range a.ch {
			if a.ch[i].enabled {
				status = bit.Set(uint8(i), status)
			}
		}
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			return a.ch[2].waveSample
		}
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// WriteRegister stores value into the addressed NRxx register (or wave
// RAM), then re-derives every piece of runtime state from the register
// file via mapRegistersToState.
func (a *APU) WriteRegister(address uint16, value uint8) {
	isInWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isInWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
		a.ch[0].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR12:
		a.NR12 = value
		reloadEnvelopeCounter(&a.ch[0], value)
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
		a.ch[1].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR22:
		a.NR22 = value
		reloadEnvelopeCounter(&a.ch[1], value)
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
		a.ch[2].length = 256 - uint16(value)
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
		a.ch[3].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR42:
		a.NR42 = value
		reloadEnvelopeCounter(&a.ch[3], value)
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.NR52 = value
	}

	if isInWaveRAM {
		if a.waveRAMLocked() {
			idx := a.ch[2].waveIndex >> 1
			a.waveRAM[idx] = value
			a.ch[2].waveSample = value
		} else {
			a.waveRAM[address-addr.WaveRAMStart] = value
		}
	}

	a.mapRegistersToState()
}

// reloadEnvelopeCounter is the NRx2-write half of an envelope reset: it
// re-arms the countdown to the pace just written (treating 0 as 8) and
// clears the latch that freezes the envelope once it hits a rail.
func reloadEnvelopeCounter(ch *Channel, nrx2 uint8) {
	pace := bit.ExtractBits(nrx2, 2, 0)
	if pace == 0 {
		pace = 8
	}
	ch.envelopeCounter = pace
	ch.envelopeLatched = false
}

// mapRegistersToState re-derives every piece of channel runtime state from
// the raw NRxx register file. Called after every register write so the
// generators in channel.go always see a consistent decoded view.
func (a *APU) mapRegistersToState() {
	a.enabled = bit.IsSet(7, a.NR52)
	if !a.enabled {
		a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0, 0, 0, 0, 0
		a.NR21, a.NR22, a.NR23, a.NR24 = 0, 0, 0, 0
		a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0, 0, 0, 0, 0
		a.NR41, a.NR42, a.NR43, a.NR44 = 0, 0, 0, 0
		a.NR50, a.NR51 = 0, 0
		for i := range a.ch {
			a.ch[i].enabled = false
		}
	}

	for i := range a.ch {
		a.ch[i].right = bit.IsSet(uint8(i), a.NR51)
		a.ch[i].left = bit.IsSet(uint8(i+4), a.NR51)
	}

	a.vinLeft, a.vinRight = bit.IsSet(7, a.NR50), bit.IsSet(3, a.NR50)
	a.volLeft, a.volRight = bit.ExtractBits(a.NR50, 6, 4), bit.ExtractBits(a.NR50, 2, 0)

	a.mapChannel1()
	a.mapChannel2()
	a.mapChannel3()
	a.mapChannel4()

	for i := range a.ch {
		if !a.ch[i].dacEnabled {
			a.ch[i].enabled = false
		}
	}
}

func (a *APU) mapChannel1() {
	ch := &a.ch[0]

	prevSweepDown := ch.sweepDown
	ch.sweepPeriod = bit.ExtractBits(a.NR10, 6, 4)
	ch.sweepDown = bit.IsSet(3, a.NR10)
	ch.sweepStep = bit.ExtractBits(a.NR10, 2, 0)
	if !ch.sweepDown && prevSweepDown && ch.sweepNegUsed && (ch.sweepPeriod > 0 || ch.sweepStep > 0) {
		// Flipping sweep direction from subtract to add right after a
		// subtract calculation kills CH1 on real hardware.
		ch.enabled = false
	}

	ch.duty = bit.ExtractBits(a.NR11, 7, 6)
	ch.timer = bit.ExtractBits(a.NR11, 5, 0)

	ch.volume = bit.ExtractBits(a.NR12, 7, 4)
	ch.envelopeUp = bit.IsSet(3, a.NR12)
	ch.envelopePace = bit.ExtractBits(a.NR12, 2, 0)
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.period = bit.Combine(a.NR14&0b111, a.NR13)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR14)
	ch.lengthEnable = bit.IsSet(6, a.NR14)
	ch.trigger = triggered
	if ch.trigger {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.envelopeLatched = false
		if ch.envelopePace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = ch.envelopePace
		}
		ch.dutyStep = 0
		ch.freqTimer = a.squarePeriodCycles(ch)

		ch.sweepEnabled = ch.sweepPeriod > 0 || ch.sweepStep > 0
		ch.sweepTimer = ch.sweepPeriod
		if ch.sweepTimer == 0 {
			ch.sweepTimer = 8
		}
		ch.shadowFreq = ch.period
		ch.sweepNegUsed = false

		// A dummy overflow calculation runs right away so a sweep that would
		// already overflow on trigger kills the channel immediately.
		if ch.sweepStep != 0 {
			if ch.sweepDown {
				ch.sweepNegUsed = true
			}
			if _, overflow := ch.calculateSweepFrequency(); overflow {
				ch.enabled = false
			}
		}

		a.NR14 = bit.Reset(7, a.NR14)
		ch.trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 0)
}

func (a *APU) mapChannel2() {
	ch := &a.ch[1]

	ch.duty = bit.ExtractBits(a.NR21, 7, 6)
	ch.timer = bit.ExtractBits(a.NR21, 5, 0)

	ch.volume = bit.ExtractBits(a.NR22, 7, 4)
	ch.envelopeUp = bit.IsSet(3, a.NR22)
	ch.envelopePace = bit.ExtractBits(a.NR22, 2, 0)
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.period = bit.Combine(a.NR24&0b111, a.NR23)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR24)
	ch.lengthEnable = bit.IsSet(6, a.NR24)
	ch.trigger = triggered
	if ch.trigger {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.envelopeLatched = false
		if ch.envelopePace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = ch.envelopePace
		}
		ch.dutyStep = 0
		ch.freqTimer = a.squarePeriodCycles(ch)
		a.NR24 = bit.Reset(7, a.NR24)
		ch.trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 1)
}

func (a *APU) mapChannel3() {
	ch := &a.ch[2]

	ch.dacEnabled = bit.IsSet(7, a.NR30)
	ch.timer = a.NR31
	ch.volume = bit.ExtractBits(a.NR32, 6, 5) // 00=mute, 01=100%, 10=50%, 11=25%
	ch.period = bit.Combine(a.NR34&0b111, a.NR33)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR34)
	ch.lengthEnable = bit.IsSet(6, a.NR34)
	ch.trigger = triggered
	if ch.trigger {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.freqTimer = a.wavePeriodCycles(ch)
		ch.waveIndex = 0
		ch.waveSample = a.waveRAM[0]
		a.NR34 = bit.Reset(7, a.NR34)
		ch.trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 256, 2)
}

func (a *APU) mapChannel4() {
	ch := &a.ch[3]

	ch.timer = bit.ExtractBits(a.NR41, 5, 0)

	ch.volume = bit.ExtractBits(a.NR42, 7, 4)
	ch.envelopeUp = bit.IsSet(3, a.NR42)
	ch.envelopePace = bit.ExtractBits(a.NR42, 2, 0)
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	// frequency = 524288 / divider / 2^(shift+1)
	ch.shift = bit.ExtractBits(a.NR43, 7, 4)
	ch.use7bitLFSR = bit.IsSet(3, a.NR43)
	ch.divider = bit.ExtractBits(a.NR43, 2, 0)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR44)
	ch.lengthEnable = bit.IsSet(6, a.NR44)
	ch.trigger = triggered
	if ch.trigger {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.envelopeLatched = false
		if ch.envelopePace == 0 {
			ch.envelopeCounter = 8
		} else {
			ch.envelopeCounter = ch.envelopePace
		}
		ch.lfsr = 0x7FFF
		ch.noiseTimer = a.noisePeriodCycles(ch)
		a.NR44 = bit.Reset(7, a.NR44)
		ch.trigger = false
	}
	a.handleLengthEnableTransition(prevLenEnable, lengthBefore, triggered, 64, 3)
}
