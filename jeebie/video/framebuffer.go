package video

import "math/rand"

// GBColor is a 32-bit RGBA pixel value for one of the four DMG shades.
type GBColor uint32

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor         = 0x989898FF
	DarkGreyColor          = 0x4C4C4CFF
	BlackColor             = 0x000000FF
)

// ByteToColor maps a palette-resolved 2-bit shade to its RGBA value.
// Shade 0 is the lightest: palettes map color indices to shades, and on
// the DMG shade 0 means the LCD segment is off (white-green).
func ByteToColor(value byte) GBColor {
	switch value {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	case 3:
		return BlackColor
	}

	return 0
}

// FrameBuffer holds one complete 160x144 RGBA frame as produced by the PPU.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferSize),
	}
}

func (fb FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// ToSlice exposes the raw pixel slice; callers must treat it as read-only.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clear resets the framebuffer to a black screen.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0
	}
}

// DrawNoise fills the frame with random shades, used by display smoke tests.
func (fb *FrameBuffer) DrawNoise() {
	shades := [4]GBColor{WhiteColor, BlackColor, LightGreyColor, DarkGreyColor}
	for i := range fb.buffer {
		fb.buffer[i] = uint32(shades[rand.Uint32()%4])
	}
}

// ToBinaryData flattens the frame into RGBA byte order for test comparison.
func (fb *FrameBuffer) ToBinaryData() []byte {
	data := make([]byte, len(fb.buffer)*4)
	for i, pixel := range fb.buffer {
		data[i*4] = byte(pixel >> 24)
		data[i*4+1] = byte(pixel >> 16)
		data[i*4+2] = byte(pixel >> 8)
		data[i*4+3] = byte(pixel)
	}
	return data
}

// ToGrayscale reduces each pixel to a 2-bit gray level (0 = black, 3 = white;
// the reverse of the shade numbering ByteToColor takes), the compact form the
// snapshot tests hash and store.
func (fb *FrameBuffer) ToGrayscale() []byte {
	data := make([]byte, len(fb.buffer))
	for i, pixel := range fb.buffer {
		switch GBColor(pixel) {
		case BlackColor:
			data[i] = 0
		case DarkGreyColor:
			data[i] = 1
		case LightGreyColor:
			data[i] = 2
		case WhiteColor:
			data[i] = 3
		default:
			data[i] = 0
		}
	}
	return data
}
