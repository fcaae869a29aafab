package memory

import (
	"github.com/dmg-emu/jeebie/jeebie/addr"
)

// Read dispatches a CPU-visible address to whichever region owns it.
func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionExtRAM:
		return m.mbc.Read(address)
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		return m.memory[address]
	case regionIO:
		return m.readIO(address)
	default:
		return m.memory[address]
	}
}

// Write dispatches a CPU-visible write the same way Read dispatches a read.
func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		m.mbc.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionExtRAM:
		m.mbc.Write(address, value)
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		m.memory[address] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		m.memory[address] = value
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.memory[address]
	case addr.SB, addr.SC:
		return m.serial.Read(address)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		return m.memory[address] | 0xE0 // bits 5-7 always read back as 1
	default:
		if address >= addr.AudioStart && address <= addr.AudioEnd {
			return m.APU.ReadRegister(address)
		}
		return m.memory[address]
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		m.writeJoypad(value)
	case addr.SB, addr.SC:
		m.serial.Write(address, value)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
	case addr.DMA:
		m.runDMATransfer(value)
	default:
		if address >= addr.AudioStart && address <= addr.AudioEnd {
			m.APU.WriteRegister(address, value)
			return
		}
		m.memory[address] = value
	}
}

// runDMATransfer copies 160 bytes from value<<8 into OAM (0xFE00-0xFE9F),
// the one-shot sprite-table upload triggered by a write to DMA.
func (m *MMU) runDMATransfer(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.memory[0xFE00+i] = m.Read(source + i)
	}
}
