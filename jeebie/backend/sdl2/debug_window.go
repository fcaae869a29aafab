//go:build sdl2

package sdl2

import (
	"fmt"
	"unsafe"

	"github.com/dmg-emu/jeebie/jeebie/debug"
	"github.com/dmg-emu/jeebie/jeebie/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	DebugWindowWidth  = 1280
	DebugWindowHeight = 800
	maxDisasmLines    = 20
	spriteScale       = 2
)

type DebugWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	visible  bool

	spriteTexture *sdl.Texture
	bgTexture     *sdl.Texture

	// Latest snapshot, as produced by backend.DebugDataProvider.ExtractDebugData.
	data *debug.CompleteDebugData

	// Pre-allocated buffers to avoid allocations in hot loops
	tilemapPixelBuffer []byte   // TileRows*8 * TilesPerRow*8 * 4 bytes, VRAM tile atlas
	spriteTileBuffer   []uint32 // 8*8 buffer for sprite tile rendering
	defaultPalette     []uint32 // Default grayscale palette

	// Cached formatted disassembly lines, rebuilt only when PC changes
	cachedDisasmLines []debug.DisasmLine
	cachedPC          uint16
	disasmCacheValid  bool

	// Channel enabled flags, pushed in from Backend.audioProvider.GetChannelStatus
	audioKnown             bool
	ch1, ch2, ch3, ch4 bool

	needsUpdate bool
}

const (
	atlasTileSize = 8
	atlasCols     = 16
	atlasRows     = debug.TileRows
)

func NewDebugWindow() *DebugWindow {
	return &DebugWindow{
		visible:     false,
		needsUpdate: true,
	}
}

func (dw *DebugWindow) Init() error {
	window, err := sdl.CreateWindow(
		"Game Boy Debug",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		DebugWindowWidth,
		DebugWindowHeight,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		return err
	}
	dw.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return err
	}
	dw.renderer = renderer

	dw.spriteTexture, err = renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		40*16, 16,
	)
	if err != nil {
		return err
	}

	atlasW := int32(atlasCols * atlasTileSize)
	atlasH := int32(atlasRows * atlasTileSize)
	dw.bgTexture, err = renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		atlasW, atlasH,
	)
	if err != nil {
		return err
	}

	// Pre-allocate pixel buffers to avoid allocations in hot loops
	dw.tilemapPixelBuffer = make([]byte, int(atlasW)*int(atlasH)*4)
	dw.spriteTileBuffer = make([]uint32, 8*8)
	dw.defaultPalette = []uint32{
		uint32(video.WhiteColor),
		uint32(video.LightGreyColor),
		uint32(video.DarkGreyColor),
		uint32(video.BlackColor),
	}

	dw.window.Hide()
	return nil
}

// UpdateData installs the latest CPU/memory/OAM/VRAM snapshot. Called from
// Backend.UpdateDebugData whenever the debug window is visible.
func (dw *DebugWindow) UpdateData(data *debug.CompleteDebugData) {
	if data == nil {
		return
	}

	if dw.data != nil && dw.data.CPU != nil && data.CPU != nil && dw.data.CPU.PC != data.CPU.PC {
		dw.disasmCacheValid = false
	}

	dw.data = data
	dw.needsUpdate = true
}

// UpdateAudioStatus installs the per-channel enabled flags exposed by
// audio.Provider.GetChannelStatus, the narrow interface the SDL2 backend
// already depends on for channel mute/solo.
func (dw *DebugWindow) UpdateAudioStatus(ch1, ch2, ch3, ch4 bool) {
	dw.audioKnown = true
	dw.ch1, dw.ch2, dw.ch3, dw.ch4 = ch1, ch2, ch3, ch4
	dw.needsUpdate = true
}

func (dw *DebugWindow) Render() error {
	if !dw.visible || !dw.needsUpdate {
		return nil
	}

	dw.renderer.SetDrawColor(30, 30, 30, 255)
	dw.renderer.Clear()

	dw.renderSpritePanel()
	dw.renderVRAMPanel()
	dw.renderDisassemblyPanel()
	dw.renderAudioPanel()

	dw.renderer.Present()
	dw.needsUpdate = false
	return nil
}

func (dw *DebugWindow) renderSpritePanel() {
	dw.renderPanelLabel(10, 10, "Sprites (OAM)")

	panelRect := &sdl.Rect{X: 10, Y: 35, W: 620, H: 300}
	dw.renderer.SetDrawColor(40, 40, 40, 255)
	dw.renderer.FillRect(panelRect)
	dw.renderer.SetDrawColor(100, 100, 100, 255)
	dw.renderer.DrawRect(panelRect)

	if dw.data == nil || dw.data.OAM == nil || dw.data.VRAM == nil {
		return
	}
	oam := dw.data.OAM
	tiles := dw.data.VRAM.TilePatterns

	const spritesPerColumn = 14
	const columnWidth = 200
	const rowHeight = 20

	for i := 0; i < len(oam.Sprites) && i < 40; i++ {
		sprite := oam.Sprites[i]

		column := i / spritesPerColumn
		row := i % spritesPerColumn
		x := int32(20 + column*columnWidth)
		y := int32(45 + row*rowHeight)

		tileIndex := int(sprite.Sprite.TileIndex)
		if oam.SpriteHeight == 16 {
			tileIndex &= 0xFE
		}
		if tileIndex < len(tiles) {
			dw.renderSmallSpriteTile(tiles[tileIndex], x, y)
		}

		textR, textG, textB := uint8(200), uint8(200), uint8(200)
		if !sprite.IsVisible {
			textR, textG, textB = 100, 100, 100
		}

		info := fmt.Sprintf("%02d:%02X (%3d,%3d)",
			sprite.Index, sprite.Sprite.TileIndex, sprite.Sprite.X, sprite.Sprite.Y)

		DrawText(dw.renderer, info, x+20, y+5, 1, textR, textG, textB)

		flagX := x + 140
		if sprite.Sprite.FlipX {
			DrawText(dw.renderer, "X", flagX, y+5, 1, 255, 150, 150)
			flagX += 8
		}
		if sprite.Sprite.FlipY {
			DrawText(dw.renderer, "Y", flagX, y+5, 1, 150, 255, 150)
			flagX += 8
		}
		if sprite.Sprite.BehindBG {
			DrawText(dw.renderer, "B", flagX, y+5, 1, 150, 150, 255)
			flagX += 8
		}
		if sprite.Sprite.PaletteOBP1 {
			DrawText(dw.renderer, "1", flagX, y+5, 1, 255, 255, 150)
		} else {
			DrawText(dw.renderer, "0", flagX, y+5, 1, 200, 200, 200)
		}
	}

	legendY := int32(45 + spritesPerColumn*rowHeight + 5)
	DrawText(dw.renderer, oam.FormatSummary(), 20, legendY, 1, 150, 150, 150)
}

// renderVRAMPanel shows the full 384-tile pattern atlas decoded from VRAM.
// This is not the live background tilemap (that would need the raw tilemap
// byte grid, which the debug package does not expose), just the tile data
// the background/sprite fetchers would draw from.
func (dw *DebugWindow) renderVRAMPanel() {
	dw.renderPanelLabel(650, 10, "VRAM Tiles")

	panelRect := &sdl.Rect{X: 650, Y: 35, W: atlasCols * atlasTileSize * 2, H: atlasRows*atlasTileSize + 20}
	dw.renderer.SetDrawColor(40, 40, 40, 255)
	dw.renderer.FillRect(panelRect)
	dw.renderer.SetDrawColor(100, 100, 100, 255)
	dw.renderer.DrawRect(panelRect)

	if dw.data == nil || dw.data.VRAM == nil {
		return
	}

	dw.renderTileAtlas(dw.data.VRAM)

	info := dw.data.VRAM.TilemapInfo.FormatSummary()
	DrawText(dw.renderer, info, 660, int32(35+atlasRows*atlasTileSize*2+5), 1, 150, 150, 150)
}

func (dw *DebugWindow) renderTileAtlas(vram *debug.VRAMData) {
	atlasW := atlasCols * atlasTileSize
	for idx, tile := range vram.TilePatterns {
		if idx >= atlasCols*atlasRows {
			break
		}
		col := idx % atlasCols
		row := idx / atlasCols
		pixels := tile.Pixels()
		for ty := 0; ty < atlasTileSize; ty++ {
			for tx := 0; tx < atlasTileSize; tx++ {
				px := col*atlasTileSize + tx
				py := row*atlasTileSize + ty
				offset := (py*atlasW + px) * 4
				if offset+3 >= len(dw.tilemapPixelBuffer) {
					continue
				}
				rgba := dw.defaultPalette[pixels[ty][tx]&0x03]
				dw.tilemapPixelBuffer[offset] = byte(rgba)
				dw.tilemapPixelBuffer[offset+1] = byte(rgba >> 8)
				dw.tilemapPixelBuffer[offset+2] = byte(rgba >> 16)
				dw.tilemapPixelBuffer[offset+3] = byte(rgba >> 24)
			}
		}
	}

	dw.bgTexture.Update(nil, unsafe.Pointer(&dw.tilemapPixelBuffer[0]), atlasW*4)

	srcRect := &sdl.Rect{X: 0, Y: 0, W: int32(atlasW), H: int32(atlasRows * atlasTileSize)}
	dstRect := &sdl.Rect{X: 660, Y: 45, W: int32(atlasW * 2), H: int32(atlasRows * atlasTileSize * 2)}
	dw.renderer.Copy(dw.bgTexture, srcRect, dstRect)
}

func (dw *DebugWindow) renderDisassemblyPanel() {
	dw.renderPanelLabel(10, 350, "Disassembly")

	panelRect := &sdl.Rect{X: 10, Y: 375, W: 620, H: 410}
	dw.renderer.SetDrawColor(40, 40, 40, 255)
	dw.renderer.FillRect(panelRect)
	dw.renderer.SetDrawColor(100, 100, 100, 255)
	dw.renderer.DrawRect(panelRect)

	if dw.data == nil || dw.data.CPU == nil || dw.data.Memory == nil {
		DrawText(dw.renderer, "No debug data available", 20, 390, 1, 100, 100, 100)
		return
	}

	pc := dw.data.CPU.PC

	if !dw.disasmCacheValid || dw.cachedPC != pc {
		dw.cachedDisasmLines = debug.CreateDisassembly(dw.data.Memory, pc, maxDisasmLines)
		dw.cachedPC = pc
		dw.disasmCacheValid = true
	}

	y := int32(385)
	lineHeight := int32(16)

	for _, line := range dw.cachedDisasmLines {
		if y+lineHeight > 750 {
			break
		}

		r, g, b := uint8(180), uint8(180), uint8(180)
		if line.IsCurrent {
			r, g, b = 255, 255, 100
			DrawText(dw.renderer, ">", 15, y, 1, 255, 255, 100)
		}
		text := fmt.Sprintf("%04X: %s", line.Address, line.Instruction)
		DrawText(dw.renderer, text, 30, y, 1, r, g, b)
		y += lineHeight
	}

	statusY := int32(760)
	statusBg := &sdl.Rect{X: 10, Y: statusY - 2, W: 620, H: 20}
	dw.renderer.SetDrawColor(20, 20, 20, 255)
	dw.renderer.FillRect(statusBg)

	var statusText string
	var statusR, statusG, statusB uint8
	switch dw.data.DebuggerState {
	case debug.DebuggerPaused:
		statusText = "PAUSED - SPACE: resume"
		statusR, statusG, statusB = 255, 150, 150
	case debug.DebuggerStepInstruction:
		statusText = "STEPPING - N: next step | SPACE: resume"
		statusR, statusG, statusB = 255, 255, 100
	case debug.DebuggerStepFrame:
		statusText = "FRAME STEP - F: next frame | SPACE: resume"
		statusR, statusG, statusB = 150, 255, 150
	default:
		statusText = "RUNNING - SPACE: pause"
		statusR, statusG, statusB = 150, 255, 150
	}

	DrawText(dw.renderer, statusText, 20, statusY, 1, statusR, statusG, statusB)
}

func (dw *DebugWindow) renderAudioPanel() {
	dw.renderPanelLabel(650, 610, "Audio Channels")

	panelRect := &sdl.Rect{X: 650, Y: 635, W: 380, H: 100}
	dw.renderer.SetDrawColor(40, 40, 40, 255)
	dw.renderer.FillRect(panelRect)
	dw.renderer.SetDrawColor(100, 100, 100, 255)
	dw.renderer.DrawRect(panelRect)

	if !dw.audioKnown {
		return
	}

	channels := []struct {
		name    string
		enabled bool
		color   [3]uint8
	}{
		{"Ch1 Square", dw.ch1, [3]uint8{100, 200, 100}},
		{"Ch2 Square", dw.ch2, [3]uint8{100, 150, 200}},
		{"Ch3 Wave  ", dw.ch3, [3]uint8{200, 150, 100}},
		{"Ch4 Noise ", dw.ch4, [3]uint8{200, 100, 200}},
	}

	y := int32(645)
	for _, ch := range channels {
		DrawText(dw.renderer, ch.name, 660, y, 1, 180, 180, 180)

		if ch.enabled {
			dw.renderer.SetDrawColor(ch.color[0], ch.color[1], ch.color[2], 255)
		} else {
			dw.renderer.SetDrawColor(80, 80, 80, 255)
		}
		statusRect := &sdl.Rect{X: 780, Y: y, W: 15, H: 15}
		dw.renderer.FillRect(statusRect)

		y += 20
	}
}

func (dw *DebugWindow) renderSmallSpriteTile(tile video.Tile, x, y int32) {
	for i := range dw.spriteTileBuffer {
		dw.spriteTileBuffer[i] = 0
	}

	pixels := tile.Pixels()
	for ty := 0; ty < 8; ty++ {
		for tx := 0; tx < 8; tx++ {
			dw.spriteTileBuffer[ty*8+tx] = dw.defaultPalette[pixels[ty][tx]&0x03]
		}
	}

	for ty := 0; ty < 8; ty++ {
		for tx := 0; tx < 8; tx++ {
			pixel := dw.spriteTileBuffer[ty*8+tx]
			r := uint8(pixel)
			g := uint8(pixel >> 8)
			b := uint8(pixel >> 16)
			dw.renderer.SetDrawColor(r, g, b, 255)
			for sy := 0; sy < spriteScale; sy++ {
				for sx := 0; sx < spriteScale; sx++ {
					dw.renderer.DrawPoint(
						x+int32(tx*spriteScale+sx),
						y+int32(ty*spriteScale+sy),
					)
				}
			}
		}
	}
}

func (dw *DebugWindow) renderPanelLabel(x, y int32, text string) {
	const fontScale = 1
	const charWidth = 6
	const charHeight = 7
	const padding = 4

	labelWidth := int32(len(text)*charWidth*fontScale + padding*2)
	labelHeight := int32(charHeight*fontScale + padding*2)

	labelRect := &sdl.Rect{X: x, Y: y, W: labelWidth, H: labelHeight}
	dw.renderer.SetDrawColor(60, 60, 60, 255)
	dw.renderer.FillRect(labelRect)
	dw.renderer.SetDrawColor(180, 180, 180, 255)
	dw.renderer.DrawRect(labelRect)

	DrawText(dw.renderer, text, x+padding, y+padding, fontScale, 200, 200, 200)
}

func (dw *DebugWindow) SetVisible(visible bool) {
	dw.visible = visible
	if visible {
		dw.window.Show()
		dw.needsUpdate = true
	} else {
		dw.window.Hide()
	}
}

func (dw *DebugWindow) IsVisible() bool {
	return dw.visible
}

func (dw *DebugWindow) IsInitialized() bool {
	return dw.window != nil
}

// ProcessEvent lets the debug window observe raw SDL events before the main
// backend's key-mapping layer does; it currently has nothing of its own to
// react to, since window toggling and stepping are driven by action.Action.
func (dw *DebugWindow) ProcessEvent(evt sdl.Event) {}

func (dw *DebugWindow) Cleanup() error {
	if dw.spriteTexture != nil {
		dw.spriteTexture.Destroy()
	}
	if dw.bgTexture != nil {
		dw.bgTexture.Destroy()
	}
	if dw.renderer != nil {
		dw.renderer.Destroy()
	}
	if dw.window != nil {
		dw.window.Destroy()
	}
	return nil
}
