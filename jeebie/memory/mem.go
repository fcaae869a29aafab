package memory

import (
	"fmt"
	"log/slog"

	"github.com/dmg-emu/jeebie/jeebie/addr"
	"github.com/dmg-emu/jeebie/jeebie/audio"
	"github.com/dmg-emu/jeebie/jeebie/bit"
	"github.com/dmg-emu/jeebie/jeebie/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// MMU routes every CPU-visible read/write to the region that owns it:
// cartridge ROM/RAM through the active MBC, VRAM/WRAM/OAM to a flat backing
// array, and the I/O page to whichever peripheral (timer, serial, APU,
// joypad) claims that register.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *audio.APU
	regionMap [256]memRegion

	joypadButtons uint8 // live state of A/B/Start/Select, mapped to P1's low bits
	joypadDpad    uint8 // live state of the four d-pad directions, mapped to P1's low bits

	serial SerialPort
	timer  Timer
}

// SerialPort is the minimal interface for a device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// postBootIO is the I/O register state the boot ROM leaves behind. Execution
// starts at 0x0100 without running a boot ROM, so these are loaded directly
// at construction. Timer and audio registers live in their own units and
// seed themselves.
var postBootIO = map[uint16]byte{
	addr.P1:   0xCF,
	addr.IF:   0xE1,
	addr.LCDC: 0x91,
	addr.STAT: 0x85,
	addr.LY:   0x90,
	addr.DMA:  0xFF,
	addr.BGP:  0xFC,
	addr.OBP0: 0xFF,
	addr.OBP1: 0xFF,
}

// New creates an MMU with no cartridge loaded, equivalent to powering on a
// Game Boy with an empty cartridge slot.
func New() *MMU {
	mmu := &MMU{
		memory:        make([]byte, 0x10000),
		cart:          NewCartridge(),
		mbc:           NewNoMBC(nil),
		APU:           audio.New(),
		joypadButtons: 0x0F,
		joypadDpad:    0x0F,
	}
	for address, value := range postBootIO {
		mmu.memory[address] = value
	}
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.TimerInterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates an MMU with cart already loaded and its MBC
// constructed from the header metadata classifyMBC decoded at parse time.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	case MBC2Type:
		mmu.mbc = NewMBC2(cart.data)
	case MBC3Type:
		mmu.mbc = NewMBC3(cart.data, cart.ramBankCount, cart.hasRTC, nil)
	case MBC5Type:
		mmu.mbc = NewMBC5(cart.data, cart.hasRumble, cart.ramBankCount)
	default:
		slog.Warn("unrecognized cartridge type byte, falling back to no-MBC", "cartType", fmt.Sprintf("0x%02X", cart.cartType))
		mmu.mbc = NewNoMBC(cart.data)
	}

	return mmu
}

// Tick advances every I/O peripheral that runs off the CPU clock.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
}

// SetTimerSeed seeds the hidden timer divider directly, for deterministic
// startup state.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ { // ROM
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ { // VRAM
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ { // external RAM
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ { // work RAM
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ { // echo RAM
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM // OAM 0xFE00-0xFE9F, unused 0xFEA0-0xFEFF
	m.regionMap[0xFF] = regionIO  // I/O + HRAM
}

// RequestInterrupt raises the given interrupt's bit in IF.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	interruptFlags := m.Read(addr.IF)

	var bitPos uint8
	switch interrupt {
	case addr.VBlankInterrupt:
		bitPos = 0
	case addr.LCDSTATInterrupt:
		bitPos = 1
	case addr.TimerInterrupt:
		bitPos = 2
	case addr.SerialInterrupt:
		bitPos = 3
	case addr.JoypadInterrupt:
		bitPos = 4
	default:
		panic(fmt.Sprintf("Unknown interrupt: 0x%02X", uint8(interrupt)))
	}

	m.Write(addr.IF, bit.Set(bitPos, interruptFlags))
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}
