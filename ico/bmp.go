package ico

import (
	"encoding/binary"
)

// The size of a BITMAPINFOHEADER struct, in bytes.  ICO/CUR payloads must use
// exactly this header variant; the longer V4/V5 headers are rejected.
const bmpHeaderSize = 40

// padRow rounds a row's byte count up to the next multiple of four, the
// alignment every BMP plane uses.
func padRow(n int) int {
	return (n + 3) / 4 * 4
}

// readBMPSize parses just the size fields of a BMP payload header.  The
// stored height counts the rows of both the color plane and the mask plane,
// so it must be even; the logical image height is half of it.
func readBMPSize(data []byte) (width, height uint32, err error) {
	if len(data) < 12 {
		return 0, 0, invalidDataf("BMP data too short (was %d bytes)", len(data))
	}
	headerLen := binary.LittleEndian.Uint32(data[0:4])
	if headerLen != bmpHeaderSize {
		return 0, 0, invalidDataf("invalid BMP header size (was %d, must be %d)",
			headerLen, bmpHeaderSize)
	}
	w := int32(binary.LittleEndian.Uint32(data[4:8]))
	if w < 1 {
		return 0, 0, invalidDataf("invalid BMP width (was %d, but must be at least 1)", w)
	}
	h := int32(binary.LittleEndian.Uint32(data[8:12]))
	if h%2 != 0 {
		return 0, 0, invalidDataf(
			"invalid height field in BMP header (was %d, but must be divisible by 2)", h)
	}
	h /= 2
	if h < 1 {
		return 0, 0, invalidDataf("invalid BMP height (was %d, but must be at least 1)", h)
	}
	return uint32(w), uint32(h), nil
}

// readBMP decodes a headerless ICO-style BMP payload: a BITMAPINFOHEADER,
// an optional color table, the color plane, and (except at 32 bpp) the 1-bit
// mask plane.  Both planes are stored bottom row first with rows padded to
// four bytes.
func readBMP(data []byte) (*IconImage, error) {
	width, height, err := readBMPSize(data)
	if err != nil {
		return nil, err
	}
	if len(data) < bmpHeaderSize {
		return nil, invalidDataf("BMP data too short (was %d bytes, but need at least %d)",
			len(data), bmpHeaderSize)
	}
	bitsPerPixel := binary.LittleEndian.Uint16(data[14:16])
	depth, ok := bmpDepthFromBitsPerPixel(bitsPerPixel)
	if !ok {
		return nil, invalidDataf("unsupported BMP bits-per-pixel (%d)", bitsPerPixel)
	}
	if uint64(width)*uint64(height) > 0xffffffff {
		return nil, invalidDataf("BMP width * height is too large (%dx%d)", width, height)
	}

	// Color table: 4-byte entries stored B, G, R, reserved.
	numColors := depth.numColors()
	pos := bmpHeaderSize
	if len(data) < pos+4*numColors {
		return nil, invalidDataf("BMP color table truncated")
	}
	colorTable := make([][3]uint8, numColors)
	for i := 0; i < numColors; i++ {
		colorTable[i] = [3]uint8{data[pos+2], data[pos+1], data[pos]} // r, g, b
		pos += 4
	}

	// Check that both planes are present before allocating the raster.
	w := int(width)
	h := int(height)
	rgbRowSize := padRow((w*int(bitsPerPixel) + 7) / 8)
	maskRowSize := padRow((w + 7) / 8)
	needed := pos + h*rgbRowSize
	if depth != depthThirtyTwo {
		needed += h * maskRowSize
	}
	if len(data) < needed {
		return nil, invalidDataf("BMP pixel data truncated (was %d bytes, but need %d)",
			len(data), needed)
	}

	// Decode the color plane.  Rows are stored starting from the bottom row;
	// alpha defaults to opaque for every depth that has no alpha channel.
	rgba := make([]byte, 4*w*h)
	for i := range rgba {
		rgba[i] = 0xff
	}
	for row := 0; row < h; row++ {
		start := 4 * (h - row - 1) * w
		switch depth {
		case depthOne:
			for col := 0; col < w; col++ {
				index := (data[pos+col/8] >> (7 - col%8)) & 0x1
				c := colorTable[index]
				copy(rgba[start+4*col:], c[:])
			}
		case depthFour:
			for col := 0; col < w; col++ {
				index := (data[pos+col/2] >> (4 * (1 - col%2))) & 0xf
				c := colorTable[index]
				copy(rgba[start+4*col:], c[:])
			}
		case depthEight:
			for col := 0; col < w; col++ {
				c := colorTable[data[pos+col]]
				copy(rgba[start+4*col:], c[:])
			}
		case depthSixteen:
			// Packed 5-5-5 RGB; each 5-bit channel is scaled to 0-255 with
			// rounding.
			for col := 0; col < w; col++ {
				color := binary.LittleEndian.Uint16(data[pos+2*col:])
				red := (color >> 10) & 0x1f
				green := (color >> 5) & 0x1f
				blue := color & 0x1f
				rgba[start+4*col] = uint8((red*255 + 15) / 31)
				rgba[start+4*col+1] = uint8((green*255 + 15) / 31)
				rgba[start+4*col+2] = uint8((blue*255 + 15) / 31)
			}
		case depthTwentyFour:
			for col := 0; col < w; col++ {
				rgba[start+4*col] = data[pos+3*col+2]
				rgba[start+4*col+1] = data[pos+3*col+1]
				rgba[start+4*col+2] = data[pos+3*col]
			}
		case depthThirtyTwo:
			for col := 0; col < w; col++ {
				rgba[start+4*col] = data[pos+4*col+2]
				rgba[start+4*col+1] = data[pos+4*col+1]
				rgba[start+4*col+2] = data[pos+4*col]
				rgba[start+4*col+3] = data[pos+4*col+3]
			}
		}
		pos += rgbRowSize
	}

	// Decode the mask plane: a set bit forces the pixel fully transparent.
	// 32-bpp payloads carry their alpha in the color plane and have no mask.
	if depth != depthThirtyTwo {
		for row := 0; row < h; row++ {
			start := 4 * (h - row - 1) * w
			for col := 0; col < w; col++ {
				if (data[pos+col/8]>>(7-col%8))&0x1 == 1 {
					rgba[start+4*col+3] = 0
				}
			}
			pos += maskRowSize
		}
	}

	return FromRGBAData(width, height, rgba), nil
}

// encodeBMP encodes the image as an ICO-style BMP payload and returns the
// size of the color table, the chosen bits-per-pixel, and the encoded bytes.
func (im *IconImage) encodeBMP(stats imageStats) (uint8, uint16, []byte) {
	// Pick the cheapest depth that can represent the image.  Only 32 bpp can
	// carry alpha values between 0 and 255, because the color table has no
	// alpha column and the mask plane is a single bit per pixel.
	var depth bmpDepth
	var colors []uint32
	switch {
	case stats.hasNonbinaryAlpha:
		depth = depthThirtyTwo
	case stats.colors == nil:
		depth = depthTwentyFour
	case len(stats.colors) <= 2:
		depth, colors = depthOne, stats.colors
	case len(stats.colors) <= 16:
		depth, colors = depthFour, stats.colors
	case im.width*im.height < 512:
		// At fewer than 512 pixels it's cheaper to store raw 24-bpp pixels
		// than to pay for the 1024-byte, 256-entry color table.
		depth = depthTwentyFour
	default:
		depth, colors = depthEight, stats.colors
	}
	bitsPerPixel := depth.bitsPerPixel()
	numColors := depth.numColors()

	w := int(im.width)
	h := int(im.height)
	rgba := im.rgbaData
	rgbRowSize := padRow((w*int(bitsPerPixel) + 7) / 8)
	maskRowSize := padRow((w + 7) / 8)
	dataSize := bmpHeaderSize + 4*numColors + h*rgbRowSize
	if depth != depthThirtyTwo {
		dataSize += h * maskRowSize
	}
	data := make([]byte, dataSize)

	// BITMAPINFOHEADER; the height field counts the rows of both planes.
	// The unfilled fields (compression, resolution, color counts) stay zero.
	binary.LittleEndian.PutUint32(data[0:4], bmpHeaderSize)
	binary.LittleEndian.PutUint32(data[4:8], im.width)
	binary.LittleEndian.PutUint32(data[8:12], 2*im.height)
	binary.LittleEndian.PutUint16(data[12:14], 1) // planes
	binary.LittleEndian.PutUint16(data[14:16], bitsPerPixel)

	// Color table, with unused slots left zero-filled.
	colorMap := make(map[uint32]uint8, len(colors))
	pos := bmpHeaderSize
	for i, key := range colors {
		colorMap[key] = uint8(i)
		data[pos] = uint8(key)         // blue
		data[pos+1] = uint8(key >> 8)  // green
		data[pos+2] = uint8(key >> 16) // red
		pos += 4
	}
	pos = bmpHeaderSize + 4*numColors

	// Color plane, bottom row first; row padding is already zero.
	for row := 0; row < h; row++ {
		start := 4 * (h - row - 1) * w
		switch depth {
		case depthOne:
			for col := 0; col < w; col++ {
				key := packRGB(rgba[start+4*col], rgba[start+4*col+1], rgba[start+4*col+2])
				data[pos+col/8] |= colorMap[key] << (7 - col%8)
			}
		case depthFour:
			for col := 0; col < w; col++ {
				key := packRGB(rgba[start+4*col], rgba[start+4*col+1], rgba[start+4*col+2])
				data[pos+col/2] |= colorMap[key] << (4 * (1 - col%2))
			}
		case depthEight:
			for col := 0; col < w; col++ {
				key := packRGB(rgba[start+4*col], rgba[start+4*col+1], rgba[start+4*col+2])
				data[pos+col] = colorMap[key]
			}
		case depthTwentyFour:
			for col := 0; col < w; col++ {
				data[pos+3*col] = rgba[start+4*col+2]
				data[pos+3*col+1] = rgba[start+4*col+1]
				data[pos+3*col+2] = rgba[start+4*col]
			}
		case depthThirtyTwo:
			for col := 0; col < w; col++ {
				data[pos+4*col] = rgba[start+4*col+2]
				data[pos+4*col+1] = rgba[start+4*col+1]
				data[pos+4*col+2] = rgba[start+4*col]
				data[pos+4*col+3] = rgba[start+4*col+3]
			}
		}
		pos += rgbRowSize
	}

	// Mask plane: a bit is set exactly when the source pixel is fully
	// transparent.  32-bpp payloads carry explicit alpha and write no mask.
	if depth != depthThirtyTwo {
		for row := 0; row < h; row++ {
			start := 4 * (h - row - 1) * w
			for col := 0; col < w; col++ {
				if rgba[start+4*col+3] == 0 {
					data[pos+col/8] |= 1 << (7 - col%8)
				}
			}
			pos += maskRowSize
		}
	}

	// The on-disk num-colors field is a single byte; a full 256-entry table
	// wraps to 0, matching what the directory record stores.
	return uint8(numColors), bitsPerPixel, data
}
