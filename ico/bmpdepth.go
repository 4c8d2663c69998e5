package ico

// bmpDepth enumerates the color depths a BMP-encoded entry can use.  It is a
// closed set; the associated bits-per-pixel and color-table size are derived
// from it rather than stored.
type bmpDepth uint8

const (
	depthOne bmpDepth = iota
	depthFour
	depthEight
	depthSixteen
	depthTwentyFour
	depthThirtyTwo
)

// bmpDepthFromBitsPerPixel maps a BITMAPINFOHEADER bits-per-pixel field to a
// depth.  Returns false for unsupported values.
func bmpDepthFromBitsPerPixel(bitsPerPixel uint16) (bmpDepth, bool) {
	switch bitsPerPixel {
	case 1:
		return depthOne, true
	case 4:
		return depthFour, true
	case 8:
		return depthEight, true
	case 16:
		return depthSixteen, true
	case 24:
		return depthTwentyFour, true
	case 32:
		return depthThirtyTwo, true
	default:
		return 0, false
	}
}

func (d bmpDepth) bitsPerPixel() uint16 {
	switch d {
	case depthOne:
		return 1
	case depthFour:
		return 4
	case depthEight:
		return 8
	case depthSixteen:
		return 16
	case depthTwentyFour:
		return 24
	default:
		return 32
	}
}

// numColors returns the size of the color table for this depth.  Depths of 16
// bits and up store pixels directly and carry no color table.
func (d bmpDepth) numColors() int {
	switch d {
	case depthOne:
		return 2
	case depthFour:
		return 16
	case depthEight:
		return 256
	default:
		return 0
	}
}
