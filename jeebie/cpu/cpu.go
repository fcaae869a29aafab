package cpu

import (
	"github.com/dmg-emu/jeebie/jeebie/addr"
	"github.com/dmg-emu/jeebie/jeebie/bit"
	"github.com/dmg-emu/jeebie/jeebie/memory"
)

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU is the main struct holding Sharp LR35902 state.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	bus *memory.MMU

	interruptsEnabled bool // IME
	eiPending         bool // EI takes effect after the instruction following it
	halted            bool
	haltBug           bool
	stopped           bool

	currentOpcode uint16
	cycles        uint64
}

// New returns a CPU seeded with the post-boot-ROM DMG register state.
func New(mmu *memory.MMU) *CPU {
	return &CPU{
		bus: mmu,
		a:   0x01,
		f:   0xB0,
		b:   0x00,
		c:   0x13,
		d:   0x00,
		e:   0xD8,
		h:   0x01,
		l:   0x4D,
		sp:  0xFFFE,
		pc:  0x0100,
	}
}

// GetPC returns the current program counter, mainly for debugging/tracing.
func (c *CPU) GetPC() uint16 {
	return c.pc
}

// Registers is a snapshot of CPU register state, used by debug tooling.
type Registers struct {
	A, F       uint8
	B, C       uint8
	D, E       uint8
	H, L       uint8
	SP, PC     uint16
	IME        bool
	Halted     bool
	Cycles     uint64
}

// Snapshot returns a copy of the current register file, for debug display only.
func (c *CPU) Snapshot() Registers {
	return Registers{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME:    c.interruptsEnabled,
		Halted: c.halted,
		Cycles: c.cycles,
	}
}

// Exec fetches, decodes and runs a single instruction, returning the
// number of T-cycles it took. It does not service interrupts or HALT.
func (c *CPU) Exec() int {
	op := Decode(c)

	// advance past the fetched opcode byte(s) so handlers see PC at their
	// first operand; the halt bug suppresses this advance exactly once,
	// making the byte after HALT execute twice
	if c.haltBug {
		c.haltBug = false
	} else if c.currentOpcode > 0xFF {
		c.pc += 2
	} else {
		c.pc++
	}

	return op(c)
}

// Tick runs one step of the CPU: servicing interrupts, handling HALT, and
// executing a single instruction. It returns the number of T-cycles spent.
func (c *CPU) Tick() int {
	if c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	// dispatch clears IME, so remember whether it was set beforehand
	ime := c.interruptsEnabled
	interruptPending := c.handleInterrupts()
	if interruptPending {
		if c.halted {
			c.halted = false
			if !ime {
				c.haltBug = true
			}
		}
		c.stopped = false
		if ime {
			// handleInterrupts already advanced pc/cycles for dispatch.
			return 20
		}
	}

	if c.halted {
		return 4
	}

	if c.stopped {
		return 4
	}

	cycles := c.Exec()
	c.cycles += uint64(cycles)
	return cycles
}

// handleInterrupts checks IE & IF and, if interrupts are globally enabled,
// dispatches the highest priority pending one. It always returns whether
// any interrupt is pending (regardless of IME), since that is also used
// to decide whether HALT should wake up.
func (c *CPU) handleInterrupts() bool {
	ifReg := c.bus.Read(addr.IF)
	ieReg := c.bus.Read(addr.IE)
	pending := ifReg & ieReg & 0x1F

	if pending == 0 {
		return false
	}

	if !c.interruptsEnabled {
		return true
	}

	var bitIndex uint8
	var vector uint16
	for bitIndex = 0; bitIndex < 5; bitIndex++ {
		if pending&(1<<bitIndex) != 0 {
			break
		}
	}

	switch bitIndex {
	case 0:
		vector = 0x40
	case 1:
		vector = 0x48
	case 2:
		vector = 0x50
	case 3:
		vector = 0x58
	case 4:
		vector = 0x60
	}

	c.bus.Write(addr.IF, ifReg&^(1<<bitIndex))
	c.interruptsEnabled = false
	c.pushStack(c.pc)
	c.pc = vector
	c.cycles += 20

	return true
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f&0xF0)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) readImmediate() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}
