package ico

import (
	"fmt"
	"sort"
)

// IconImage is a decoded raster from an ICO or CUR file.  Pixel data is held
// as 4 bytes per pixel (R, G, B, A) in row-major order from top to bottom.
type IconImage struct {
	width      uint32
	height     uint32
	hotspotX   uint16
	hotspotY   uint16
	hasHotspot bool
	rgbaData   []byte
}

// FromRGBAData creates a new image with the given dimensions and RGBA data.
// The width and height must be nonzero, and rgbaData must hold exactly
// 4*width*height bytes in row-major order from top to bottom.  Panics if the
// dimensions are out of range or if rgbaData is the wrong length; these are
// caller bugs, not recoverable conditions.
func FromRGBAData(width, height uint32, rgbaData []byte) *IconImage {
	if width < 1 {
		panic(fmt.Sprintf("ico: invalid width (was %d, but must be at least 1)", width))
	}
	if height < 1 {
		panic(fmt.Sprintf("ico: invalid height (was %d, but must be at least 1)", height))
	}
	expected := uint64(width) * uint64(height) * 4
	if uint64(len(rgbaData)) != expected {
		panic(fmt.Sprintf(
			"ico: invalid data length (was %d, but must be %d for %dx%d image)",
			len(rgbaData), expected, width, height))
	}
	return &IconImage{width: width, height: height, rgbaData: rgbaData}
}

// Width returns the width of the image, in pixels.
func (im *IconImage) Width() uint32 {
	return im.width
}

// Height returns the height of the image, in pixels.
func (im *IconImage) Height() uint32 {
	return im.height
}

// CursorHotspot returns the coordinates of the cursor hotspot (pixels right
// from the left edge of the image, and pixels down from the top edge).  The
// bool is false if this image is an icon rather than a cursor.
func (im *IconImage) CursorHotspot() (x, y uint16, ok bool) {
	return im.hotspotX, im.hotspotY, im.hasHotspot
}

// SetCursorHotspot sets the cursor hotspot coordinates, marking this image as
// a cursor.
func (im *IconImage) SetCursorHotspot(x, y uint16) {
	im.hotspotX = x
	im.hotspotY = y
	im.hasHotspot = true
}

// ClearCursorHotspot removes the hotspot, marking this image as a plain icon.
func (im *IconImage) ClearCursorHotspot() {
	im.hotspotX = 0
	im.hotspotY = 0
	im.hasHotspot = false
}

// RGBAData returns the RGBA pixel data for this image, in row-major order
// from top to bottom.
func (im *IconImage) RGBAData() []byte {
	return im.rgbaData
}

// imageStats is a single-pass analysis of a raster, recomputed for each
// encode call to drive the depth and format selection.
type imageStats struct {
	// hasAlpha is true if any pixel is not fully opaque.
	hasAlpha bool
	// hasNonbinaryAlpha is true if any pixel has an alpha value strictly
	// between 0 and 255; such a pixel can only be represented by 32-bpp BMP
	// or by PNG.
	hasNonbinaryAlpha bool
	// colors lists the distinct colors in the image as packed 0xRRGGBB keys
	// in ascending order, or is nil if the image has more than 256 distinct
	// colors.  The probe stops counting past the 256-entry cap.
	colors []uint32
}

// packRGB packs a color into the 24-bit key used for color counting and the
// encode-side palette lookup.
func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func (im *IconImage) computeStats() imageStats {
	set := make(map[uint32]struct{})
	var stats imageStats
	for start := 0; start < len(im.rgbaData); start += 4 {
		alpha := im.rgbaData[start+3]
		if alpha != 0xff {
			stats.hasAlpha = true
			if alpha != 0 {
				stats.hasNonbinaryAlpha = true
			}
		}
		if len(set) <= 256 {
			key := packRGB(im.rgbaData[start], im.rgbaData[start+1], im.rgbaData[start+2])
			set[key] = struct{}{}
		}
	}
	if len(set) <= 256 {
		stats.colors = make([]uint32, 0, len(set))
		for key := range set {
			stats.colors = append(stats.colors, key)
		}
		sort.Slice(stats.colors, func(i, j int) bool {
			return stats.colors[i] < stats.colors[j]
		})
	}
	return stats
}
