package video

import (
	"github.com/dmg-emu/jeebie/jeebie/bit"
	"github.com/dmg-emu/jeebie/jeebie/memory"
)

// pixel is a single staged entry in a background or sprite FIFO: a 2-bit
// color index, still unmapped through any palette.
type pixel struct {
	color uint8
}

// pixelFIFO is the small ring buffer the background and sprite fetchers
// stage pixels into before they are drained (and, for sprites, merged
// against the background) one pixel at a time. A tile row is at most 8
// pixels and a fetch never starts before the previous one has fully
// drained, so 8 slots is always enough headroom.
type pixelFIFO struct {
	buf   [8]pixel
	head  int
	count int
}

func (f *pixelFIFO) push(p pixel) {
	idx := (f.head + f.count) % len(f.buf)
	f.buf[idx] = p
	f.count++
}

func (f *pixelFIFO) pop() pixel {
	p := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	return p
}

func (f *pixelFIFO) len() int {
	return f.count
}

// fetchBackgroundRow is the collapsed background/window fetch unit: it reads
// one tile index out of the tile map, reads both bit-planes of that tile's
// row, and pushes the resulting 8 pixels into fifo. Both the background and
// window layers are the same kind of tile-mapped surface, so they share this
// fetcher; only the map/data base addresses and the row being walked differ.
func fetchBackgroundRow(fifo *pixelFIFO, mem *memory.MMU, tileMapAddr, tilesAddr uint16, signedTileSet bool, mapRow, mapCol, tileLine int) {
	tileLine2 := tileLine * 2
	tileValue := mem.Read(tileMapAddr + uint16(mapRow+mapCol))

	var tileAddr uint16
	if signedTileSet {
		tileOffset := int(int8(tileValue)) * 16
		tileAddr = uint16(int(tilesAddr) + tileOffset + tileLine2)
	} else {
		tileAddr = tilesAddr + uint16(int(tileValue)*16+tileLine2)
	}

	low := mem.Read(tileAddr)
	high := mem.Read(tileAddr + 1)

	for i := 0; i < 8; i++ {
		bitIndex := uint8(7 - i)
		var color uint8
		if bit.IsSet(bitIndex, low) {
			color |= 1
		}
		if bit.IsSet(bitIndex, high) {
			color |= 2
		}
		fifo.push(pixel{color: color})
	}
}

// fetchSpriteRow is the sprite fetcher's fetch unit: it reads both
// bit-planes of a single sprite tile row and pushes the 8 resulting pixels
// into fifo in screen left-to-right order, honoring horizontal flip at
// fetch time so the drain side never has to think about it.
func fetchSpriteRow(fifo *pixelFIFO, mem *memory.MMU, tileAddr uint16, flipX bool) {
	low := mem.Read(tileAddr)
	high := mem.Read(tileAddr + 1)

	for i := 0; i < 8; i++ {
		bitIndex := uint8(i)
		if !flipX {
			bitIndex = uint8(7 - i)
		}
		var color uint8
		if bit.IsSet(bitIndex, low) {
			color |= 1
		}
		if bit.IsSet(bitIndex, high) {
			color |= 2
		}
		fifo.push(pixel{color: color})
	}
}
