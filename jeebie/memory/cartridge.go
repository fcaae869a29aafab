package memory

import (
	"fmt"

	"github.com/dmg-emu/jeebie/jeebie/bit"
)

const titleLength = 11

const (
	entryPointAddress       = 0x100
	logoAddress             = 0x104
	titleAddress            = 0x134
	manufacturerCodeAddress = 0x13F
	cgbFlagAddress          = 0x143
	newLicenseCodeAddress   = 0x144
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	destinationCodeAddress  = 0x14A
	oldLicenseCodeAddress   = 0x14B
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
	headerEndAddress        = 0x150
)

// Cartridge holds the raw ROM image plus the header fields decoded from it.
// It does not perform any bank switching itself; NewWithCartridge (mem.go)
// reads mbcType/ramBankCount/etc out of it to build the MBC that will.
type Cartridge struct {
	data           []byte
	title          string
	headerChecksum uint16
	globalChecksum uint16
	version        uint8
	cartType       uint8
	romSize        uint8
	ramSize        uint8

	mbcType      MBCType
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data: make([]byte, 0x10000),
	}
}

// NewCartridgeWithData parses a ROM header out of bytes and returns a
// Cartridge wrapping a private copy of it. A truncated image or an
// unrecognized cartridge-type byte is a load error, reported before any
// emulation starts.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) < headerEndAddress {
		return nil, fmt.Errorf("ROM image truncated: %d bytes, header needs at least %d", len(bytes), headerEndAddress)
	}

	cartType := bytes[cartridgeTypeAddress]
	ramSize := bytes[ramSizeAddress]
	mbcType, hasBattery, hasRTC, hasRumble, ok := classifyMBC(cartType)
	if !ok {
		return nil, fmt.Errorf("unsupported cartridge type byte 0x%02X", cartType)
	}

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		title:          cleanGameboyTitle(bytes[titleAddress : titleAddress+titleLength]),
		headerChecksum: bit.Combine(bytes[headerChecksumAddress], bytes[headerChecksumAddress+1]),
		globalChecksum: bit.Combine(bytes[globalChecksumAddress], bytes[globalChecksumAddress+1]),
		version:        bytes[versionNumberAddress],
		cartType:       cartType,
		romSize:        bytes[romSizeAddress],
		ramSize:        ramSize,

		mbcType:      mbcType,
		hasBattery:   hasBattery,
		hasRTC:       hasRTC,
		hasRumble:    hasRumble,
		ramBankCount: ramBankCountForHeader(ramSize),
	}
	copy(cart.data, bytes)

	return cart, nil
}

// ReadByte reads a byte at the specified address. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}

// WriteByte ignores the write and returns the byte already stored at the specified address. Bank switching
// and external RAM are handled by the MBC, not by the Cartridge.
func (c Cartridge) WriteByte(addr uint16, value uint8) uint8 {
	return c.data[addr]
}
