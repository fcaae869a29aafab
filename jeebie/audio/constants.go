package audio

const (
	// cyclesPerStep spaces the 512 Hz frame sequencer ticks:
	// 4194304 Hz master clock / 512 Hz = 8192 T-cycles per step.
	cyclesPerStep = 8192

	// waveRAMSize is CH3's wave pattern RAM: 16 bytes holding 32 4-bit samples.
	waveRAMSize = 16
)
