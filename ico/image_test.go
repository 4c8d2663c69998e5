package ico

import (
	"testing"
)

func TestFromRGBADataPanicsOnMisuse(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		length        int
	}{
		{"zero width", 0, 2, 0},
		{"zero height", 2, 0, 0},
		{"short buffer", 2, 2, 15},
		{"long buffer", 2, 2, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("FromRGBAData() did not panic")
				}
			}()
			FromRGBAData(tt.width, tt.height, make([]byte, tt.length))
		})
	}
}

func TestCursorHotspot(t *testing.T) {
	image := FromRGBAData(1, 1, []byte{0, 0, 0, 0xff})
	if _, _, ok := image.CursorHotspot(); ok {
		t.Error("CursorHotspot() = ok on a fresh image, want none")
	}
	image.SetCursorHotspot(3, 4)
	if x, y, ok := image.CursorHotspot(); !ok || x != 3 || y != 4 {
		t.Errorf("CursorHotspot() = (%d, %d, %v), want (3, 4, true)", x, y, ok)
	}
	image.ClearCursorHotspot()
	if _, _, ok := image.CursorHotspot(); ok {
		t.Error("CursorHotspot() = ok after clearing, want none")
	}
}

func TestComputeStats(t *testing.T) {
	image := FromRGBAData(2, 2, []byte(""+
		"\x01\x02\x03\xff\x0a\x0b\x0c\x00"+
		"\x01\x02\x03\xff\x01\x02\x03\x7f"))
	stats := image.computeStats()
	if !stats.hasAlpha {
		t.Error("hasAlpha = false, want true")
	}
	if !stats.hasNonbinaryAlpha {
		t.Error("hasNonbinaryAlpha = false, want true")
	}
	want := []uint32{packRGB(1, 2, 3), packRGB(10, 11, 12)}
	if len(stats.colors) != len(want) {
		t.Fatalf("len(colors) = %d, want %d", len(stats.colors), len(want))
	}
	for i, key := range want {
		if stats.colors[i] != key {
			t.Errorf("colors[%d] = %06x, want %06x", i, stats.colors[i], key)
		}
	}
}

// Past 256 distinct colors the probe gives up and reports no color list.
func TestComputeStatsColorOverflow(t *testing.T) {
	rgba := make([]byte, 0, 4*257)
	for i := 0; i < 257; i++ {
		rgba = append(rgba, byte(i), byte(i>>8), 0, 0xff)
	}
	image := FromRGBAData(257, 1, rgba)
	if stats := image.computeStats(); stats.colors != nil {
		t.Errorf("colors has %d entries, want nil past the cap", len(stats.colors))
	}
}
