// Package addr names every memory-mapped register and region the emulator
// touches, so the rest of the code never spells a raw I/O address.
package addr

// PPU registers
const (
	// LCDC is the LCD control register.
	LCDC uint16 = 0xFF40
	// STAT is the LCD status register (mode bits, LYC flag, interrupt sources).
	STAT uint16 = 0xFF41
	// SCY is the background vertical scroll.
	SCY uint16 = 0xFF42
	// SCX is the background horizontal scroll.
	SCX uint16 = 0xFF43
	// LY is the current scanline, read-only from the CPU side.
	LY uint16 = 0xFF44
	// LYC is the scanline compare value driving the STAT coincidence bit.
	LYC uint16 = 0xFF45
	// DMA starts an OAM DMA transfer from the written page.
	DMA uint16 = 0xFF46
	// BGP is the background palette.
	BGP uint16 = 0xFF47
	// OBP0 is sprite palette 0.
	OBP0 uint16 = 0xFF48
	// OBP1 is sprite palette 1.
	OBP1 uint16 = 0xFF49
	// WY is the window top edge.
	WY uint16 = 0xFF4A
	// WX is the window left edge plus 7.
	WX uint16 = 0xFF4B
)

// APU registers, https://gbdev.io/pandocs/Audio_Registers.html
const (
	// AudioStart/AudioEnd bound the register range routed to the APU.
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	// channel 1, square wave with sweep
	NR10 uint16 = 0xFF10 // sweep
	NR11 uint16 = 0xFF11 // length timer and duty cycle
	NR12 uint16 = 0xFF12 // volume and envelope
	NR13 uint16 = 0xFF13 // period low
	NR14 uint16 = 0xFF14 // period high and control

	// channel 2, square wave
	NR21 uint16 = 0xFF16 // length timer and duty cycle
	NR22 uint16 = 0xFF17 // volume and envelope
	NR23 uint16 = 0xFF18 // period low
	NR24 uint16 = 0xFF19 // period high and control

	// channel 3, wave table
	NR30 uint16 = 0xFF1A // DAC enable
	NR31 uint16 = 0xFF1B // length timer
	NR32 uint16 = 0xFF1C // output level
	NR33 uint16 = 0xFF1D // period low
	NR34 uint16 = 0xFF1E // period high and control

	// channel 4, noise
	NR41 uint16 = 0xFF20 // length timer
	NR42 uint16 = 0xFF21 // volume and envelope
	NR43 uint16 = 0xFF22 // LFSR frequency and width
	NR44 uint16 = 0xFF23 // control

	// global sound control
	NR50 uint16 = 0xFF24 // master volume and VIN panning
	NR51 uint16 = 0xFF25 // per-channel panning
	NR52 uint16 = 0xFF26 // power and channel status

	// WaveRAMStart/WaveRAMEnd bound CH3's 32-sample wave pattern RAM.
	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// OAM, the 40-entry sprite attribute table
const (
	OAMStart uint16 = 0xFE00
	OAMEnd   uint16 = 0xFE9F
)

// tile data and tile maps in VRAM
const (
	// TileData0 is the unsigned-index tile data base (tiles 0-255).
	TileData0 uint16 = 0x8000
	// TileData1 is where the signed-index region's negative tiles live.
	TileData1 uint16 = 0x8800
	// TileData2 is the signed-index base (index 0 of the signed mode).
	TileData2 uint16 = 0x9000

	// TileMap0 and TileMap1 are the two background/window tile maps.
	TileMap0 uint16 = 0x9800
	TileMap1 uint16 = 0x9C00
)

// interrupt registers
const (
	// IF holds the pending-interrupt bits.
	IF uint16 = 0xFF0F
	// IE holds the per-line interrupt enable bits.
	IE uint16 = 0xFFFF
)

// P1 is the joypad matrix register.
const P1 uint16 = 0xFF00

// serial link registers
const (
	// SB holds the byte being shifted out (and, after a transfer, the byte
	// shifted in from the peer; 0xFF with nothing connected).
	SB uint16 = 0xFF01
	// SC controls transfers: bit 7 starts one (hardware clears it on
	// completion, raising the Serial interrupt), bit 0 selects the internal
	// ~8192 Hz bit clock over an externally driven one.
	SC uint16 = 0xFF02
)

// timer registers
const (
	// DIV is the visible top byte of the free-running divider; any write resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter; overflowing raises the Timer interrupt.
	TIMA uint16 = 0xFF05
	// TMA is the value reloaded into TIMA on overflow.
	TMA uint16 = 0xFF06
	// TAC enables the timer and selects its rate.
	TAC uint16 = 0xFF07
)

// Interrupt identifies one interrupt line as its bitmask in IE/IF.
type Interrupt uint8

const (
	// VBlankInterrupt fires when the PPU finishes the visible frame.
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt fires for whichever STAT sources are armed.
	LCDSTATInterrupt = 1 << 1
	// TimerInterrupt fires when TIMA overflows.
	TimerInterrupt = 1 << 2
	// SerialInterrupt fires when a serial transfer completes.
	SerialInterrupt = 1 << 3
	// JoypadInterrupt fires on any keypad line's high-to-low transition.
	JoypadInterrupt = 1 << 4
)
