//go:build sdl2

package sdl2

import (
	"log/slog"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

// fontPaths lists common system font locations; the first one found is used
// for all debug-window text. If none resolve, DrawText silently no-ops so a
// missing font never breaks debug rendering, only its legibility.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansMono-Regular.ttf",
	"/System/Library/Fonts/Menlo.ttc",
	"C:/Windows/Fonts/consola.ttf",
}

var (
	fontOnce sync.Once
	font     *ttf.Font
)

func loadDebugFont() {
	if err := ttf.Init(); err != nil {
		slog.Warn("sdl2 debug window: TTF init failed, text disabled", "error", err)
		return
	}
	for _, path := range fontPaths {
		if f, err := ttf.OpenFont(path, 12); err == nil {
			font = f
			return
		}
	}
	slog.Warn("sdl2 debug window: no system font found, text disabled", "tried", fontPaths)
}

// DrawText renders a line of text at (x, y) scaled by a small integer
// factor, used throughout the debug window's panels. It is a no-op if no
// usable system font was found.
func DrawText(renderer *sdl.Renderer, text string, x, y int32, scale int32, r, g, b uint8) {
	fontOnce.Do(loadDebugFont)
	if font == nil || text == "" {
		return
	}

	surface, err := font.RenderUTF8Blended(text, sdl.Color{R: r, G: g, B: b, A: 255})
	if err != nil {
		return
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return
	}
	defer texture.Destroy()

	w := surface.W * scale / 2
	h := surface.H * scale / 2
	renderer.Copy(texture, nil, &sdl.Rect{X: x, Y: y, W: w, H: h})
}
