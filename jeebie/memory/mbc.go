package memory

import "time"

// MBC represents a Memory Bank Controller interface that all MBC types must implement
type MBC interface {
	// Read reads a byte from the specified address
	Read(addr uint16) uint8
	// Write writes a byte to the specified address and returns value
	// (NoMBC, which has nothing writable, returns 0)
	Write(addr uint16, value uint8) uint8
}

// NoMBC represents cartridges with no memory banking capabilities.
// These are typically smaller games (32KB or less) that fit entirely in the
// base memory region. The cartridge ROM is directly mapped to 0x0000-0x7FFF
// and cannot be banked/switched. These cartridges cannot have external RAM.
type NoMBC struct {
	rom []uint8 // ROM data
}

// NewNoMBC creates a new NoMBC controller
func NewNoMBC(romData []uint8) *NoMBC {
	return &NoMBC{
		rom: romData,
	}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	// no banking and no external RAM: anything past the ROM reads open bus
	if int(addr) >= len(m.rom) {
		return 0xFF
	}
	return m.rom[addr]
}

func (m *NoMBC) Write(addr uint16, value uint8) uint8 {
	// NoMBC doesn't support writing to ROM
	return 0
}

// bankedROM is the read-side logic shared by every banked MBC: bank 0 is
// fixed at 0x0000-0x3FFF, the switchable bank (wrapped to the ROM's actual
// size) is mapped at 0x4000-0x7FFF.
func bankedROM(rom []uint8, bank uint32, addr uint16) uint8 {
	if addr <= 0x3FFF {
		return rom[addr]
	}
	offset := bank * 0x4000
	if offset >= uint32(len(rom)) {
		offset %= uint32(len(rom))
	}
	return rom[offset+uint32(addr-0x4000)]
}

// bankedRAM is the shared read/write-target resolver for external RAM
// banked at 0xA000-0xBFFF. Returns ok=false if RAM is disabled or absent.
func bankedRAM(ram []uint8, bank uint8, enabled bool, addr uint16) (index uint32, ok bool) {
	if !enabled || len(ram) == 0 {
		return 0, false
	}
	offset := uint32(bank) * 0x2000
	if offset >= uint32(len(ram)) {
		offset %= uint32(len(ram))
	}
	return offset + uint32(addr-0xA000), true
}

// MBC1 is the first and most common MBC chip. Features include:
// - Supports up to 2MB ROM (125 16KB banks)
// - Up to 32KB RAM (4 8KB banks)
// - Bank 0 always mapped to 0x0000-0x3FFF
// - Switchable ROM bank at 0x4000-0x7FFF
// - Optional RAM banking at 0xA000-0xBFFF
// - Two banking modes:
//   - Mode 0 (ROM): Allows access to full ROM but only 8KB RAM
//   - Mode 1 (RAM): Restricts ROM banking but allows full RAM access
// - Optional battery backup for RAM persistence
type MBC1 struct {
	rom          []uint8
	ram          []uint8
	romBank      uint8
	ramBank      uint8
	ramEnabled   bool
	bankingMode  uint8
	hasBattery   bool
	ramBankCount uint8
}

// NewMBC1 creates a new MBC1 controller
func NewMBC1(romData []uint8, hasBattery bool, ramBankCount uint8) *MBC1 {
	ramSize := uint32(ramBankCount) * 0x2000 // 8KB per RAM bank
	return &MBC1{
		rom:          romData,
		ram:          make([]uint8, ramSize),
		romBank:      1,
		ramBank:      0,
		ramEnabled:   false,
		bankingMode:  0,
		hasBattery:   hasBattery,
		ramBankCount: ramBankCount,
	}
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return bankedROM(m.rom, uint32(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			return m.ram[index]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value uint8) uint8 {
	switch {
	case addr <= 0x1FFF:
		// RAM Enable
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		// ROM Bank Number (lower 5 bits)
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = (m.romBank & 0x60) | bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		// RAM Bank Number or Upper ROM Bank Number
		if m.bankingMode == 0 {
			// ROM Banking mode - value goes to upper bits of ROM bank
			m.romBank = (m.romBank & 0x1F) | ((value & 0x03) << 5)
		} else {
			// RAM Banking mode - value goes to RAM bank
			m.ramBank = value & 0x03
		}
	case addr >= 0x6000 && addr <= 0x7FFF:
		// Banking Mode Select
		m.bankingMode = value & 0x01
		if m.bankingMode == 1 {
			// When switching to RAM banking mode, clear the upper bits of ROM bank
			m.romBank &= 0x1F
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			m.ram[index] = value
		}
	}
	return value
}

// MBC2 is a simpler MBC chip with built-in RAM. Features include:
// - Supports up to 256KB ROM (16 16KB banks)
// - Built-in 512x4 bits RAM (not external)
// - RAM must be enabled before use, as on MBC1
// - ROM banking similar to MBC1 but simpler
// - The least significant bit of the upper address byte selects between
//   ROM bank select and RAM enable
// - RAM is limited to 4-bit values (upper 4 bits are ignored)
// - Optional battery backup for the built-in RAM
type MBC2 struct {
	rom        []uint8
	ram        []uint8 // 512x4 bits RAM, one nibble per byte
	romBank    uint8
	ramEnabled bool
	hasBattery bool
}

// NewMBC2 creates a new MBC2 controller
func NewMBC2(romData []uint8) *MBC2 {
	return &MBC2{
		rom:        romData,
		ram:        make([]uint8, 512),
		romBank:    1,
		ramEnabled: false,
	}
}

func (m *MBC2) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return bankedROM(m.rom, uint32(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xA1FF:
		if !m.ramEnabled {
			return 0xFF
		}
		// only the low nibble is wired; the high nibble always reads as 1
		return m.ram[addr-0xA000] | 0xF0
	case addr >= 0xA200 && addr <= 0xBFFF:
		// MBC2's 512x4 RAM is echoed across the rest of the external RAM window
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[(addr-0xA000)%0x200] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value uint8) uint8 {
	switch {
	case addr <= 0x3FFF:
		// Bit 8 of the address picks RAM-enable vs ROM-bank-select.
		if addr&0x0100 == 0 {
			m.ramEnabled = (value & 0x0F) == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case addr >= 0xA000 && addr <= 0xA1FF:
		if m.ramEnabled {
			m.ram[addr-0xA000] = value & 0x0F
		}
	case addr >= 0xA200 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[(addr-0xA000)%0x200] = value & 0x0F
		}
	}
	return value
}

// MBC3 is an advanced MBC chip with RTC support. Features include:
// - Supports up to 2MB ROM (128 16KB banks)
// - Up to 32KB RAM (4 8KB banks)
// - Real-Time Clock (RTC) functionality
// - RTC has 5 registers: Seconds, Minutes, Hours, Days (lower), Days (upper)/Flags
// - Similar banking to MBC1 but with different register layout
// - RAM and RTC can be battery backed
// - Used in games that needed to track real time (e.g. Pokémon Gold/Silver)
type MBC3 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint8
	ramBank    uint8 // 0x00-0x03 selects a RAM bank, 0x08-0x0C selects an RTC register
	ramEnabled bool
	hasRTC     bool
	hasBattery bool

	clock     func() time.Time
	rtcBase   time.Time // wall-clock instant the RTC counters were last zeroed/set
	haltedAt  time.Duration
	halted    bool
	carry     bool
	latched   bool
	latchRegs [5]uint8 // snapshot taken on the 0x00->0x01 latch write sequence
	latchPrev uint8    // last byte written to 0x6000-0x7FFF, for edge detection
}

// NewMBC3 creates a new MBC3 controller. clock may be nil, in which case the
// wall clock (time.Now) drives the real-time clock registers.
func NewMBC3(romData []uint8, ramBankCount uint8, hasRTC bool, clock func() time.Time) *MBC3 {
	if clock == nil {
		clock = time.Now
	}
	ramSize := uint32(ramBankCount) * 0x2000
	return &MBC3{
		rom:       romData,
		ram:       make([]uint8, ramSize),
		romBank:   1,
		hasRTC:    hasRTC,
		clock:     clock,
		rtcBase:   clock(),
		latchPrev: 0x01,
	}
}

// elapsed returns how long the RTC has been counting, frozen at the moment
// HALT (bit 6 of the days-high register) was last set.
func (m *MBC3) elapsed() time.Duration {
	if m.halted {
		return m.haltedAt
	}
	return m.clock().Sub(m.rtcBase)
}

// rtcSnapshot computes the live (seconds, minutes, hours, days) register
// values and the day-counter carry flag from elapsed wall-clock time.
func (m *MBC3) rtcSnapshot() [5]uint8 {
	total := m.elapsed()
	secs := int64(total.Seconds())

	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	minutes := secs / 60
	secs %= 60

	carry := m.carry || days > 0x1FF
	days &= 0x1FF

	flags := uint8(days>>8) & 0x01
	if m.halted {
		flags |= 0x40
	}
	if carry {
		flags |= 0x80
	}

	return [5]uint8{uint8(secs), uint8(minutes), uint8(hours), uint8(days & 0xFF), flags}
}

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return bankedROM(m.rom, uint32(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			regs := m.latchRegs
			if !m.latched {
				regs = m.rtcSnapshot()
			}
			return regs[m.ramBank-0x08]
		}
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			return m.ram[index]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value uint8) uint8 {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		if m.hasRTC && m.latchPrev == 0x00 && value == 0x01 {
			snap := m.rtcSnapshot()
			m.latchRegs = snap
			m.latched = true
		}
		m.latchPrev = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.writeRTCRegister(m.ramBank-0x08, value)
			return value
		}
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			m.ram[index] = value
		}
	}
	return value
}

// writeRTCRegister lets the game set the clock directly (used when
// initializing a new save or adjusting after the halt flag is toggled).
// Since there's no persisted RTC base across runs yet, a write re-anchors
// rtcBase so the requested value holds until the next tick.
func (m *MBC3) writeRTCRegister(index uint8, value uint8) {
	snap := m.rtcSnapshot()
	switch index {
	case 0:
		snap[0] = value % 60
	case 1:
		snap[1] = value % 60
	case 2:
		snap[2] = value % 24
	case 3:
		snap[3] = value
	case 4:
		m.halted = value&0x40 != 0
		m.carry = value&0x80 != 0
		snap[4] = value
	}

	days := (uint16(snap[4]&0x01) << 8) | uint16(snap[3])
	total := time.Duration(days)*24*time.Hour +
		time.Duration(snap[2])*time.Hour +
		time.Duration(snap[1])*time.Minute +
		time.Duration(snap[0])*time.Second

	if m.halted {
		m.haltedAt = total
	} else {
		m.rtcBase = m.clock().Add(-total)
	}
}

// MBC5 is the most advanced MBC chip. Features include:
// - Supports up to 8MB ROM (512 16KB banks)
// - Up to 128KB RAM (16 8KB banks)
// - Simple ROM/RAM banking with no quirks (unlike MBC1)
// - 9-bit ROM bank number (allows all 512 banks to be directly accessed)
// - Optional rumble motor support
// - Used in Game Boy Color games that needed more ROM/RAM
// - Backwards compatible with Game Boy
type MBC5 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint16 // MBC5 supports up to 512 ROM banks
	ramBank    uint8
	ramEnabled bool
	hasRumble  bool
	hasBattery bool
}

// NewMBC5 creates a new MBC5 controller
func NewMBC5(romData []uint8, hasRumble bool, ramBankCount uint8) *MBC5 {
	ramSize := uint32(ramBankCount) * 0x2000
	return &MBC5{
		rom:        romData,
		ram:        make([]uint8, ramSize),
		romBank:    1,
		ramEnabled: false,
		hasRumble:  hasRumble,
	}
}

func (m *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return bankedROM(m.rom, uint32(m.romBank), addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			return m.ram[index]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(addr uint16, value uint8) uint8 {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x2FFF:
		// low 8 bits of the 9-bit ROM bank number
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case addr >= 0x3000 && addr <= 0x3FFF:
		// bit 8 of the ROM bank number
		m.romBank = (m.romBank & 0x0FF) | (uint16(value&0x01) << 8)
	case addr >= 0x4000 && addr <= 0x5FFF:
		// RAM bank (rumble motor is wired to bit 3 on rumble cartridges,
		// which steals that bit from the bank number; not modeled here
		// since nothing in this emulator drives the rumble motor)
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if index, ok := bankedRAM(m.ram, m.ramBank, m.ramEnabled, addr); ok {
			m.ram[index] = value
		}
	}
	return value
}
