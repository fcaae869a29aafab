package video

// SpritePriorityBuffer resolves which sprite paints each pixel of a scanline
// under the DMG priority rules (https://gbdev.io/pandocs/OAM.html#drawing-priority):
// the sprite with the lowest X coordinate wins, and on an X tie the lower
// OAM index wins.
//
// Rather than sorting the scanline's sprites by (X, OAM index) and drawing
// back-to-front, ownership is precomputed per pixel: every sprite tries to
// claim each of the 8 columns it covers, and a claim only succeeds against
// the current owner if the claimer outranks it. The render pass then paints
// only the pixels each sprite actually owns.
type SpritePriorityBuffer struct {
	// ownerIndex holds the OAM index of each pixel's owning sprite, or -1
	ownerIndex [FramebufferWidth]int

	// ownerX holds the owning sprite's X coordinate, the primary ranking key
	ownerX [FramebufferWidth]int
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear() {
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF // worse than any real X, so the first claim always lands
	}
}

// TryClaimPixel records spriteIndex as the owner of pixelX if it outranks
// the current owner, reporting whether the claim succeeded.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	owner := s.ownerIndex[pixelX]

	wins := owner == -1 ||
		spriteX < s.ownerX[pixelX] ||
		(spriteX == s.ownerX[pixelX] && spriteIndex < owner)
	if !wins {
		return false
	}

	s.ownerIndex[pixelX] = spriteIndex
	s.ownerX[pixelX] = spriteX
	return true
}

// GetOwner returns the OAM index of the sprite owning pixelX, or -1.
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
