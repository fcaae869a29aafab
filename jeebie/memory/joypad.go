package memory

import "github.com/dmg-emu/jeebie/jeebie/addr"

// JoypadKey identifies one physical button on the Game Boy joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// updateJoypadRegister recomputes P1's low nibble from whichever button
// group(s) the game currently has selected via bits 4-5. Both groups
// selected ANDs them together (the real hardware quirk); neither selected
// reads back all-1s (nothing pressed).
func (m *MMU) updateJoypadRegister() {
	p1 := m.memory[addr.P1]
	selectDpad := p1&0x10 == 0
	selectButtons := p1&0x20 == 0

	var lower uint8
	switch {
	case selectDpad && selectButtons:
		lower = m.joypadDpad & m.joypadButtons
	case selectDpad:
		lower = m.joypadDpad
	case selectButtons:
		lower = m.joypadButtons
	default:
		lower = 0x0F
	}

	m.memory[addr.P1] = (p1 & 0xF0) | (lower & 0x0F)
}

func (m *MMU) writeJoypad(value uint8) {
	m.memory[addr.P1] = (m.memory[addr.P1] & 0xCF) | (value & 0x30)
	m.updateJoypadRegister()
}

// HandleKeyPress records key as held and fires the joypad interrupt on the
// 1->0 transition the hardware treats as "just pressed".
func (m *MMU) HandleKeyPress(key JoypadKey) {
	var wasHigh bool
	switch key {
	case JoypadRight:
		wasHigh = m.joypadDpad&0x01 != 0
		m.joypadDpad &^= 0x01
	case JoypadLeft:
		wasHigh = m.joypadDpad&0x02 != 0
		m.joypadDpad &^= 0x02
	case JoypadUp:
		wasHigh = m.joypadDpad&0x04 != 0
		m.joypadDpad &^= 0x04
	case JoypadDown:
		wasHigh = m.joypadDpad&0x08 != 0
		m.joypadDpad &^= 0x08
	case JoypadA:
		wasHigh = m.joypadButtons&0x01 != 0
		m.joypadButtons &^= 0x01
	case JoypadB:
		wasHigh = m.joypadButtons&0x02 != 0
		m.joypadButtons &^= 0x02
	case JoypadSelect:
		wasHigh = m.joypadButtons&0x04 != 0
		m.joypadButtons &^= 0x04
	case JoypadStart:
		wasHigh = m.joypadButtons&0x08 != 0
		m.joypadButtons &^= 0x08
	}

	if wasHigh {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
	m.updateJoypadRegister()
}

// HandleKeyRelease marks key as no longer held.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	switch key {
	case JoypadRight:
		m.joypadDpad |= 0x01
	case JoypadLeft:
		m.joypadDpad |= 0x02
	case JoypadUp:
		m.joypadDpad |= 0x04
	case JoypadDown:
		m.joypadDpad |= 0x08
	case JoypadA:
		m.joypadButtons |= 0x01
	case JoypadB:
		m.joypadButtons |= 0x02
	case JoypadSelect:
		m.joypadButtons |= 0x04
	case JoypadStart:
		m.joypadButtons |= 0x08
	}
	m.updateJoypadRegister()
}
