package audio

// Provider is the narrow surface a backend needs to play and debug sound,
// keeping backends independent of the APU's channel internals.
type Provider interface {
	// GetSamples drains up to count interleaved stereo samples for playback.
	GetSamples(count int) []int16

	// debugging controls, wired to the audio hotkeys

	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var _ Provider = (*APU)(nil)
