package ico

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeBMPDepthSelection(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		color         func(index int) [4]byte
		wantBits      uint16
	}{
		{
			// Two colors fit a 1-bit palette.
			name: "two colors", width: 2, height: 2,
			color: func(index int) [4]byte {
				if index == 1 {
					return [4]byte{0x00, 0xff, 0x00, 0xff}
				}
				return [4]byte{0xff, 0x00, 0x00, 0xff}
			},
			wantBits: 1,
		},
		{
			// Ten colors need the 16-entry palette.
			name: "ten colors", width: 13, height: 7,
			color: func(index int) [4]byte {
				return [4]byte{byte(index % 10), 0, 0, 0xff}
			},
			wantBits: 4,
		},
		{
			// Fifty colors need the 256-entry palette.
			name: "fifty colors", width: 31, height: 29,
			color: func(index int) [4]byte {
				return [4]byte{byte(index % 50), 0, 0, 0xff}
			},
			wantBits: 8,
		},
		{
			// Fifty colors again, but with only 50 pixels the 1024-byte
			// palette costs more than storing raw 24-bit pixels.
			name: "fifty colors in a small image", width: 10, height: 5,
			color: func(index int) [4]byte {
				return [4]byte{byte(index % 50), 0, 0, 0xff}
			},
			wantBits: 24,
		},
		{
			// Five hundred colors overflow every palette size.
			name: "five hundred colors", width: 24, height: 24,
			color: func(index int) [4]byte {
				return [4]byte{byte(index % 100), byte((index / 100) % 5), 0, 0xff}
			},
			wantBits: 24,
		},
		{
			// Alpha values between 0 and 255 need the explicit alpha channel.
			name: "non-binary alpha", width: 2, height: 2,
			color: func(index int) [4]byte {
				if index == 1 {
					return [4]byte{0x00, 0xff, 0x00, 0x7f}
				}
				return [4]byte{0xff, 0x00, 0x00, 0x7f}
			},
			wantBits: 32,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgba := make([]byte, 0, 4*tt.width*tt.height)
			for index := 0; index < tt.width*tt.height; index++ {
				c := tt.color(index)
				rgba = append(rgba, c[:]...)
			}
			image := FromRGBAData(uint32(tt.width), uint32(tt.height), rgba)
			entry, err := EncodeAsBMP(image)
			if err != nil {
				t.Fatalf("EncodeAsBMP() error: %v", err)
			}
			if entry.IsPNG() {
				t.Error("IsPNG() = true, want false")
			}
			if entry.BitsPerPixel() != tt.wantBits {
				t.Errorf("BitsPerPixel() = %d, want %d", entry.BitsPerPixel(), tt.wantBits)
			}
			decoded, err := entry.Decode()
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !bytes.Equal(decoded.RGBAData(), rgba) {
				t.Error("decoded RGBA data differs from the original")
			}
		})
	}
}

// Binary transparency at palette depths travels in the mask plane and must
// survive a round trip.
func TestEncodeBMPMaskPlane(t *testing.T) {
	rgba := []byte("" +
		"\xff\x00\x00\xff\x00\xff\x00\x00" +
		"\x00\xff\x00\x00\xff\x00\x00\xff")
	image := FromRGBAData(2, 2, rgba)
	entry, err := EncodeAsBMP(image)
	if err != nil {
		t.Fatalf("EncodeAsBMP() error: %v", err)
	}
	if entry.BitsPerPixel() != 1 {
		t.Errorf("BitsPerPixel() = %d, want 1", entry.BitsPerPixel())
	}
	decoded, err := entry.Decode()
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !bytes.Equal(decoded.RGBAData(), rgba) {
		t.Errorf("decoded RGBA data = %x, want %x", decoded.RGBAData(), rgba)
	}
}

// 16-bit payloads are never produced by the encoder but must decode; each
// 5-bit channel scales to 0-255 with rounding.
func TestReadBMP16Bit(t *testing.T) {
	data := make([]byte, bmpHeaderSize)
	data[0] = bmpHeaderSize // header size
	data[4] = 2             // width
	data[8] = 4             // doubled height
	data[12] = 1            // planes
	data[14] = 16           // bits per pixel
	// Color plane, bottom row first.
	data = append(data,
		0x00, 0x00, 0xe0, 0x03, // black, green
		0xff, 0x7f, 0x00, 0x40) // white, mid red (16 of 31)
	// Mask plane: only the green pixel is masked.
	data = append(data,
		0x40, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00)
	image, err := readBMP(data)
	if err != nil {
		t.Fatalf("readBMP() error: %v", err)
	}
	want := []byte("" +
		"\xff\xff\xff\xff\x84\x00\x00\xff" +
		"\x00\x00\x00\xff\x00\xff\x00\x00")
	if !bytes.Equal(image.RGBAData(), want) {
		t.Errorf("RGBAData() = %x, want %x", image.RGBAData(), want)
	}
}

func TestReadBMPRejectsMalformedHeaders(t *testing.T) {
	valid := make([]byte, bmpHeaderSize)
	valid[0] = bmpHeaderSize
	valid[4] = 1 // width
	valid[8] = 2 // doubled height
	valid[12] = 1
	valid[14] = 24

	corrupt := func(mutate func(data []byte)) []byte {
		data := make([]byte, len(valid))
		copy(data, valid)
		mutate(data)
		return data
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", valid[:8]},
		{"wrong header size", corrupt(func(data []byte) { data[0] = 124 })},
		{"zero width", corrupt(func(data []byte) { data[4] = 0 })},
		{"odd height", corrupt(func(data []byte) { data[8] = 3 })},
		{"unsupported bits per pixel", corrupt(func(data []byte) { data[14] = 2 })},
		{"truncated pixel data", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readBMP(tt.data); !errors.Is(err, ErrFormat) {
				t.Errorf("readBMP() error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestBMPDepths(t *testing.T) {
	tests := []struct {
		bits      uint16
		depth     bmpDepth
		numColors int
	}{
		{1, depthOne, 2},
		{4, depthFour, 16},
		{8, depthEight, 256},
		{16, depthSixteen, 0},
		{24, depthTwentyFour, 0},
		{32, depthThirtyTwo, 0},
	}
	for _, tt := range tests {
		depth, ok := bmpDepthFromBitsPerPixel(tt.bits)
		if !ok || depth != tt.depth {
			t.Errorf("bmpDepthFromBitsPerPixel(%d) = (%d, %v), want (%d, true)",
				tt.bits, depth, ok, tt.depth)
		}
		if depth.bitsPerPixel() != tt.bits {
			t.Errorf("bitsPerPixel() = %d, want %d", depth.bitsPerPixel(), tt.bits)
		}
		if depth.numColors() != tt.numColors {
			t.Errorf("numColors() for %d bpp = %d, want %d",
				tt.bits, depth.numColors(), tt.numColors)
		}
	}
	if _, ok := bmpDepthFromBitsPerPixel(2); ok {
		t.Error("bmpDepthFromBitsPerPixel(2) = ok, want failure")
	}
}
