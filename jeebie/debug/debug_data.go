package debug

// CPUState is the register file as shown in debug panels.
type CPUState struct {
	A uint8
	F uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8

	SP     uint16
	PC     uint16
	IME    bool
	Cycles uint64
}

// MemorySnapshot is a contiguous window of memory, captured around PC so
// the disassembler has bytes to decode.
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState mirrors the emulator's run/pause/step mode for display.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

// CompleteDebugData aggregates everything a debug view renders, captured at
// one instant so the panels stay mutually consistent.
type CompleteDebugData struct {
	OAM             *OAMData
	VRAM            *VRAMData
	CPU             *CPUState
	Memory          *MemorySnapshot
	DebuggerState   DebuggerState
	InterruptEnable uint8 // IE, 0xFFFF
	InterruptFlags  uint8 // IF, 0xFF0F
}
