package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// claimRow claims all 8 pixels a sprite at screen X covers, the way
// drawSprites does during its ownership pass.
func claimRow(b *SpritePriorityBuffer, spriteIndex, spriteX int) {
	for i := 0; i < 8; i++ {
		b.TryClaimPixel(spriteX+i, spriteIndex, spriteX)
	}
}

func TestSpritePriorityBuffer_Clear(t *testing.T) {
	b := &SpritePriorityBuffer{}

	b.ownerIndex[0] = 5
	b.ownerX[0] = 10
	b.ownerIndex[50] = 3
	b.ownerX[50] = 20

	b.Clear()

	for i := 0; i < FramebufferWidth; i++ {
		assert.Equal(t, -1, b.ownerIndex[i], "pixel %d should have no owner", i)
		assert.Equal(t, 0xFF, b.ownerX[i], "pixel %d should carry the sentinel X", i)
	}
}

func TestSpritePriorityBuffer_TryClaimPixel(t *testing.T) {
	tests := []struct {
		name        string
		ownerIndex  int // preexisting owner, or -1
		ownerX      int
		pixelX      int
		spriteIndex int
		spriteX     int
		wantClaim   bool
		wantOwner   int
	}{
		{"claim unowned pixel", -1, 0, 50, 2, 20, true, 2},
		{"lower X coordinate wins", 3, 30, 50, 2, 20, true, 2},
		{"higher X coordinate loses", 3, 10, 50, 2, 20, false, 3},
		{"same X, lower OAM index wins", 5, 20, 50, 3, 20, true, 3},
		{"same X, higher OAM index loses", 3, 20, 50, 5, 20, false, 3},
		{"negative pixel X rejected", -1, 0, -1, 2, 20, false, -1},
		{"pixel X past right edge rejected", -1, 0, FramebufferWidth, 2, 20, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &SpritePriorityBuffer{}
			b.Clear()
			if tt.ownerIndex != -1 {
				b.ownerIndex[tt.pixelX] = tt.ownerIndex
				b.ownerX[tt.pixelX] = tt.ownerX
			}

			claimed := b.TryClaimPixel(tt.pixelX, tt.spriteIndex, tt.spriteX)
			assert.Equal(t, tt.wantClaim, claimed, "claim result mismatch")
			assert.Equal(t, tt.wantOwner, b.GetOwner(tt.pixelX), "owner mismatch")
		})
	}
}

func TestSpritePriorityBuffer_GetOwner(t *testing.T) {
	b := &SpritePriorityBuffer{}
	b.Clear()

	b.ownerIndex[0] = 5
	b.ownerIndex[50] = 3
	b.ownerIndex[159] = 7

	assert.Equal(t, 5, b.GetOwner(0))
	assert.Equal(t, 3, b.GetOwner(50))
	assert.Equal(t, 7, b.GetOwner(159))
	assert.Equal(t, -1, b.GetOwner(100))

	assert.Equal(t, -1, b.GetOwner(-1))
	assert.Equal(t, -1, b.GetOwner(FramebufferWidth))
}

func TestSpritePriorityBuffer_OverlapResolution(t *testing.T) {
	b := &SpritePriorityBuffer{}
	b.Clear()

	// sprite 0 covers 20-27, sprite 1 covers 15-22 and outranks it on X,
	// sprite 2 shares sprite 1's X but loses on OAM index
	claimRow(b, 0, 20)
	claimRow(b, 1, 15)
	claimRow(b, 2, 15)

	for i := 15; i <= 22; i++ {
		assert.Equal(t, 1, b.GetOwner(i), "pixel %d: sprite 1 has the lowest X", i)
	}
	for i := 23; i <= 27; i++ {
		assert.Equal(t, 0, b.GetOwner(i), "pixel %d: only sprite 0 covers it", i)
	}
}

func TestSpritePriorityBuffer_ClaimOrderIrrelevant(t *testing.T) {
	// a later claim by a lower-X sprite must evict earlier owners, so the
	// outcome is the same whichever OAM order the claims arrive in
	b := &SpritePriorityBuffer{}
	b.Clear()

	claimRow(b, 1, 12)
	claimRow(b, 3, 12)
	claimRow(b, 5, 10)

	for i := 10; i <= 17; i++ {
		assert.Equal(t, 5, b.GetOwner(i), "pixel %d: sprite 5 has the lowest X", i)
	}
	for i := 18; i <= 19; i++ {
		assert.Equal(t, 1, b.GetOwner(i), "pixel %d: X tie resolves to the lower OAM index", i)
	}
}
