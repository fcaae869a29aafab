package memory

import (
	"testing"
	"time"
)

func TestMBC1(t *testing.T) {
	t.Run("ROM Bank 0 (Fixed)", func(t *testing.T) {
		// Create a fake ROM with recognizable data
		rom := make([]uint8, 0x8000) // 32KB
		for i := range rom {
			rom[i] = uint8(i & 0xFF)
		}

		mbc := NewMBC1(rom, false, 0)

		// Test reading from bank 0 (non-switchable)
		for addr := uint16(0x0000); addr < 0x4000; addr++ {
			got := mbc.Read(addr)
			want := uint8(addr & 0xFF)
			if got != want {
				t.Errorf("Read(0x%04X) = 0x%02X; want 0x%02X", addr, got, want)
			}
		}
	})

	t.Run("ROM Bank Switching", func(t *testing.T) {
		// Create a fake ROM with 4 banks (64KB)
		rom := make([]uint8, 0x10000)
		for i := range rom {
			// Fill each bank with its bank number
			bankNum := uint8(i / 0x4000)
			rom[i] = bankNum
		}

		mbc := NewMBC1(rom, false, 0)

		tests := []struct {
			name     string
			bankNum  uint8
			wantByte uint8
		}{
			{"Default Bank (1)", 1, 1},
			{"Switch to Bank 2", 2, 2},
			{"Switch to Bank 3", 3, 3},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.bankNum > 1 {
					mbc.Write(0x2000, tt.bankNum)
				}
				got := mbc.Read(0x4000)
				if got != tt.wantByte {
					t.Errorf("Bank %d: Read(0x4000) = 0x%02X; want 0x%02X",
						tt.bankNum, got, tt.wantByte)
				}
			})
		}
	})

	t.Run("RAM Banking", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), false, 4) // 4 RAM banks

		t.Run("RAM Disabled by Default", func(t *testing.T) {
			got := mbc.Read(0xA000)
			if got != 0xFF {
				t.Errorf("Read from disabled RAM = 0x%02X; want 0xFF", got)
			}
		})

		t.Run("RAM Enable/Disable", func(t *testing.T) {
			// Enable RAM
			mbc.Write(0x0000, 0x0A)
			mbc.Write(0xA000, 0x42)
			got := mbc.Read(0xA000)
			if got != 0x42 {
				t.Errorf("Read after RAM enable = 0x%02X; want 0x42", got)
			}

			// Disable RAM
			mbc.Write(0x0000, 0x00)
			got = mbc.Read(0xA000)
			if got != 0xFF {
				t.Errorf("Read after RAM disable = 0x%02X; want 0xFF", got)
			}
		})

		t.Run("Multiple RAM Banks", func(t *testing.T) {
			// Enable RAM
			mbc.Write(0x0000, 0x0A)
			// Switch to RAM banking mode
			mbc.Write(0x6000, 1)

			// Write different values to different banks
			tests := []struct {
				bankNum uint8
				value   uint8
			}{
				{0, 0x42},
				{1, 0x43},
				{2, 0x44},
				{3, 0x45},
			}

			// Write to each bank
			for _, tt := range tests {
				mbc.Write(0x4000, tt.bankNum)
				mbc.Write(0xA000, tt.value)
			}

			// Verify each bank retained its value
			for _, tt := range tests {
				mbc.Write(0x4000, tt.bankNum)
				got := mbc.Read(0xA000)
				if got != tt.value {
					t.Errorf("Bank %d: got 0x%02X; want 0x%02X",
						tt.bankNum, got, tt.value)
				}
			}
		})
	})

	t.Run("Banking Modes", func(t *testing.T) {
		// Create a ROM with 8 banks (128KB)
		rom := make([]uint8, 8*0x4000) // 8 banks * 16KB per bank
		for i := range rom {
			// Fill each bank with its bank number
			bankNum := uint8(i / 0x4000)
			rom[i] = bankNum
		}

		mbc := NewMBC1(rom, false, 4)

		t.Run("ROM Banking Mode (0)", func(t *testing.T) {
			mbc.Write(0x6000, 0) // ROM banking mode
			mbc.Write(0x2000, 5) // Set lower 5 bits of ROM bank to 5
			mbc.Write(0x4000, 0) // Set upper 2 bits of ROM bank to 0

			got := mbc.Read(0x4000)
			want := uint8(5) // Bank 5 (00101b)
			if got != want {
				t.Errorf("Read in ROM mode = 0x%02X; want 0x%02X", got, want)
			}

			// Test bank wrapping (trying to access bank 37 with only 8 banks should wrap to bank 5)
			// 37 % 8 = 5
			mbc.Write(0x2000, 5) // Set lower 5 bits of ROM bank to 5
			mbc.Write(0x4000, 1) // Set upper 2 bits of ROM bank to 1 (would be bank 37)

			got = mbc.Read(0x4000)
			want = uint8(5) // Bank wraps from 37 to 5 (37 % 8 = 5)
			if got != want {
				t.Errorf("Read in ROM mode with bank wrapping = 0x%02X; want 0x%02X", got, want)
			}
		})

		t.Run("RAM Banking Mode (1)", func(t *testing.T) {
			mbc.Write(0x6000, 1) // RAM banking mode
			mbc.Write(0x2000, 5) // Set ROM bank to 5
			mbc.Write(0x4000, 2) // Set RAM bank to 2

			// In RAM mode, the upper bits should not affect ROM bank
			if mbc.romBank != 5 {
				t.Errorf("ROM bank in RAM mode = %d; want 5", mbc.romBank)
			}

			// But should affect RAM bank
			if mbc.ramBank != 2 {
				t.Errorf("RAM bank = %d; want 2", mbc.ramBank)
			}

			// Verify we can still read from the correct ROM bank
			got := mbc.Read(0x4000)
			want := uint8(5) // Should read from bank 5
			if got != want {
				t.Errorf("Read in RAM mode = 0x%02X; want 0x%02X", got, want)
			}
		})
	})

	t.Run("Invalid Bank Handling", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), false, 0)

		t.Run("Bank 0 Translation", func(t *testing.T) {
			mbc.Write(0x2000, 0)
			if mbc.romBank != 1 {
				t.Errorf("ROM bank 0 not translated to 1, got bank %d", mbc.romBank)
			}
		})

		t.Run("Out of Bounds Access", func(t *testing.T) {
			got := mbc.Read(0xC000) // Outside of ROM/RAM range
			if got != 0xFF {
				t.Errorf("Read from invalid address = 0x%02X; want 0xFF", got)
			}
		})
	})
}

func TestMBC2(t *testing.T) {
	bankedROM := func() []uint8 {
		rom := make([]uint8, 4*0x4000)
		for i := range rom {
			rom[i] = uint8(i / 0x4000)
		}
		return rom
	}

	t.Run("Address Bit 8 Selects Register", func(t *testing.T) {
		mbc := NewMBC2(bankedROM())

		// bit 8 clear: RAM enable
		mbc.Write(0x0000, 0x0A)
		if !mbc.ramEnabled {
			t.Error("write to even-0x100 range with 0x0A should enable RAM")
		}

		// bit 8 set: ROM bank select
		mbc.Write(0x0100, 0x03)
		if got := mbc.Read(0x4000); got != 3 {
			t.Errorf("Read(0x4000) after bank select = %d; want 3", got)
		}

		// bank select must not have touched RAM enable
		if !mbc.ramEnabled {
			t.Error("ROM bank select must not disable RAM")
		}
	})

	t.Run("Bank 0 Translation", func(t *testing.T) {
		mbc := NewMBC2(bankedROM())
		mbc.Write(0x0100, 0x00)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("Read(0x4000) with bank 0 selected = %d; want 1 (bank 0 maps to 1)", got)
		}
	})

	t.Run("Nibble RAM", func(t *testing.T) {
		mbc := NewMBC2(bankedROM())
		mbc.Write(0x0000, 0x0A)

		// only the low nibble is stored; the high nibble reads as 1s
		mbc.Write(0xA000, 0xA5)
		if got := mbc.Read(0xA000); got != 0xF5 {
			t.Errorf("Read(0xA000) = 0x%02X; want 0xF5", got)
		}
	})

	t.Run("RAM Echoes Across Window", func(t *testing.T) {
		mbc := NewMBC2(bankedROM())
		mbc.Write(0x0000, 0x0A)

		mbc.Write(0xA010, 0x07)
		if got := mbc.Read(0xA210); got != 0xF7 {
			t.Errorf("Read(0xA210) = 0x%02X; want echo of 0xA010 (0xF7)", got)
		}
	})

	t.Run("RAM Disabled Reads Open Bus", func(t *testing.T) {
		mbc := NewMBC2(bankedROM())
		if got := mbc.Read(0xA000); got != 0xFF {
			t.Errorf("Read from disabled RAM = 0x%02X; want 0xFF", got)
		}
	})
}

func TestMBC3(t *testing.T) {
	t.Run("7-bit ROM Banking", func(t *testing.T) {
		rom := make([]uint8, 8*0x4000)
		for i := range rom {
			rom[i] = uint8(i / 0x4000)
		}
		mbc := NewMBC3(rom, 0, false, nil)

		mbc.Write(0x2000, 0x05)
		if got := mbc.Read(0x4000); got != 5 {
			t.Errorf("Read(0x4000) = %d; want 5", got)
		}

		// the full 7 bits land in the bank register (wrapped by ROM size on read)
		mbc.Write(0x2000, 0x7F)
		if mbc.romBank != 0x7F {
			t.Errorf("romBank = %d; want 0x7F", mbc.romBank)
		}
	})

	t.Run("RTC Latch Sequence", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		mbc := NewMBC3(make([]uint8, 0x8000), 0, true, clock)

		now = now.Add(26*time.Hour + 2*time.Minute + 3*time.Second)

		// latch on the 0x00 -> 0x01 write sequence
		mbc.Write(0x6000, 0x00)
		mbc.Write(0x6000, 0x01)

		readRTC := func(reg uint8) uint8 {
			mbc.Write(0x4000, reg)
			return mbc.Read(0xA000)
		}

		if got := readRTC(0x08); got != 3 {
			t.Errorf("RTC seconds = %d; want 3", got)
		}
		if got := readRTC(0x09); got != 2 {
			t.Errorf("RTC minutes = %d; want 2", got)
		}
		if got := readRTC(0x0A); got != 2 {
			t.Errorf("RTC hours = %d; want 2", got)
		}
		if got := readRTC(0x0B); got != 1 {
			t.Errorf("RTC day counter = %d; want 1", got)
		}

		// latched values hold still while the clock keeps running
		now = now.Add(90 * time.Second)
		if got := readRTC(0x08); got != 3 {
			t.Errorf("latched RTC seconds = %d; want 3 (frozen)", got)
		}
	})

	t.Run("RTC Halt Flag", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		mbc := NewMBC3(make([]uint8, 0x8000), 0, true, clock)

		now = now.Add(10 * time.Second)

		// halt the clock through the days-high register
		mbc.Write(0x4000, 0x0C)
		mbc.Write(0xA000, 0x40)

		now = now.Add(45 * time.Second)
		mbc.Write(0x4000, 0x08)
		if got := mbc.Read(0xA000); got != 10 {
			t.Errorf("halted RTC seconds = %d; want 10", got)
		}
	})

	t.Run("RAM Bank Selection", func(t *testing.T) {
		mbc := NewMBC3(make([]uint8, 0x8000), 4, false, nil)
		mbc.Write(0x0000, 0x0A)

		mbc.Write(0x4000, 0x00)
		mbc.Write(0xA000, 0x11)
		mbc.Write(0x4000, 0x03)
		mbc.Write(0xA000, 0x33)

		mbc.Write(0x4000, 0x00)
		if got := mbc.Read(0xA000); got != 0x11 {
			t.Errorf("bank 0 = 0x%02X; want 0x11", got)
		}
		mbc.Write(0x4000, 0x03)
		if got := mbc.Read(0xA000); got != 0x33 {
			t.Errorf("bank 3 = 0x%02X; want 0x33", got)
		}
	})
}

func TestMBC5(t *testing.T) {
	bankedROM := func(banks int) []uint8 {
		rom := make([]uint8, banks*0x4000)
		for i := range rom {
			rom[i] = uint8((i / 0x4000) & 0xFF)
		}
		return rom
	}

	t.Run("Bank 0 Is Selectable", func(t *testing.T) {
		// unlike MBC1/2/3, writing 0 really maps bank 0 at 0x4000
		mbc := NewMBC5(bankedROM(4), false, 0)
		mbc.Write(0x2000, 0x00)
		if got := mbc.Read(0x4000); got != 0 {
			t.Errorf("Read(0x4000) = %d; want 0", got)
		}
	})

	t.Run("9-bit Bank Number", func(t *testing.T) {
		mbc := NewMBC5(bankedROM(4), false, 0)

		mbc.Write(0x2000, 0x02) // low 8 bits
		mbc.Write(0x3000, 0x01) // bit 8
		if mbc.romBank != 0x102 {
			t.Errorf("romBank = 0x%03X; want 0x102", mbc.romBank)
		}

		// wraps to the ROM's real size on read: 258 % 4 = 2
		if got := mbc.Read(0x4000); got != 2 {
			t.Errorf("Read(0x4000) = %d; want 2", got)
		}

		// clearing bit 8 keeps the low byte
		mbc.Write(0x3000, 0x00)
		if mbc.romBank != 0x002 {
			t.Errorf("romBank = 0x%03X; want 0x002", mbc.romBank)
		}
	})

	t.Run("16 RAM Banks", func(t *testing.T) {
		mbc := NewMBC5(bankedROM(4), false, 16)
		mbc.Write(0x0000, 0x0A)

		mbc.Write(0x4000, 0x00)
		mbc.Write(0xA000, 0xAA)
		mbc.Write(0x4000, 0x0F)
		mbc.Write(0xA000, 0xBB)

		mbc.Write(0x4000, 0x00)
		if got := mbc.Read(0xA000); got != 0xAA {
			t.Errorf("bank 0 = 0x%02X; want 0xAA", got)
		}
		mbc.Write(0x4000, 0x0F)
		if got := mbc.Read(0xA000); got != 0xBB {
			t.Errorf("bank 15 = 0x%02X; want 0xBB", got)
		}
	})
}
