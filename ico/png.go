package ico

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"
)

// PNG constants: the 8-byte file signature (every PNG payload in an ICO file
// starts with it) and the layout of the IHDR chunk, which is required to come
// first and carries the only fields this package needs to peek at.
const (
	pngSignatureSize = 8
	pngIHDRSize      = 13
	// Signature + chunk length + "IHDR" + 13 data bytes.
	pngInfoSize = pngSignatureSize + 4 + 4 + pngIHDRSize
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// PNG color type codes from the IHDR chunk.
const (
	pngColorGrayscale      = 0
	pngColorRGB            = 2
	pngColorIndexed        = 3
	pngColorGrayscaleAlpha = 4
	pngColorRGBA           = 6
)

// pngInfo is the subset of the IHDR chunk this package cares about.
type pngInfo struct {
	width     uint32
	height    uint32
	bitDepth  uint8
	colorType uint8
}

// readPNGInfo parses and validates the fixed-position IHDR chunk of a PNG
// payload.  It enforces 8 bits per channel but accepts any color type, so
// the size peek still works on payloads the full decoder will reject.
// Chunk CRCs and everything past the IHDR are left to the full decoder.
func readPNGInfo(data []byte) (pngInfo, error) {
	if len(data) < pngInfoSize {
		return pngInfo{}, invalidDataf("PNG data too short (was %d bytes, but need at least %d)",
			len(data), pngInfoSize)
	}
	if !bytes.Equal(data[:pngSignatureSize], pngSignature) {
		return pngInfo{}, invalidDataf("invalid PNG signature")
	}
	// PNG chunk fields are big-endian, unlike the rest of the ICO format.
	if binary.BigEndian.Uint32(data[8:12]) != pngIHDRSize ||
		string(data[12:16]) != "IHDR" {
		return pngInfo{}, invalidDataf("PNG data does not start with an IHDR chunk")
	}
	info := pngInfo{
		width:     binary.BigEndian.Uint32(data[16:20]),
		height:    binary.BigEndian.Uint32(data[20:24]),
		bitDepth:  data[24],
		colorType: data[25],
	}
	if info.width < 1 {
		return pngInfo{}, invalidDataf("invalid PNG width (was %d, but must be at least 1)", info.width)
	}
	if info.height < 1 {
		return pngInfo{}, invalidDataf("invalid PNG height (was %d, but must be at least 1)", info.height)
	}
	if info.bitDepth != 8 {
		return pngInfo{}, invalidDataf("unsupported PNG bit depth (%d)", info.bitDepth)
	}
	return info, nil
}

// ReadPNG decodes an image from a standalone PNG stream.  The PNG must use 8
// bits per channel and one of the grayscale, grayscale+alpha, RGB, or RGBA
// color models; the pixel data is normalized to the canonical RGBA layout.
func ReadPNG(r io.Reader) (*IconImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return readPNG(data)
}

func readPNG(data []byte) (*IconImage, error) {
	info, err := readPNGInfo(data)
	if err != nil {
		return nil, err
	}
	switch info.colorType {
	case pngColorGrayscale, pngColorRGB, pngColorGrayscaleAlpha, pngColorRGBA:
	case pngColorIndexed:
		return nil, invalidDataf("unsupported PNG color type (indexed)")
	default:
		return nil, invalidDataf("unsupported PNG color type (%d)", info.colorType)
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalidDataf("malformed PNG data: %v", err)
	}
	width := uint32(src.Bounds().Dx())
	height := uint32(src.Bounds().Dy())
	rgba := make([]byte, 4*int(width)*int(height))
	switch img := src.(type) {
	case *image.NRGBA:
		// Covers both RGBA PNGs and grayscale+alpha PNGs; the standard
		// decoder replicates the gray channel into R, G and B for the
		// latter.
		for y := 0; y < int(height); y++ {
			row := img.Pix[y*img.Stride:]
			copy(rgba[y*4*int(width):], row[:4*int(width)])
		}
	case *image.RGBA:
		// RGB PNGs decode to a fully opaque RGBA image; with every alpha at
		// 255 the premultiplied values equal the straight ones.
		for y := 0; y < int(height); y++ {
			row := img.Pix[y*img.Stride:]
			copy(rgba[y*4*int(width):], row[:4*int(width)])
		}
	case *image.Gray:
		start := 0
		for y := 0; y < int(height); y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < int(width); x++ {
				gray := row[x]
				rgba[start] = gray
				rgba[start+1] = gray
				rgba[start+2] = gray
				rgba[start+3] = 0xff
				start += 4
			}
		}
	default:
		return nil, invalidDataf("unsupported PNG color model (%T)", src)
	}
	return FromRGBAData(width, height, rgba), nil
}

// WritePNG encodes the image as a standalone PNG file.  Fully opaque images
// are written without an alpha channel; anything else is written as RGBA.
func (im *IconImage) WritePNG(w io.Writer) error {
	_, err := im.writePNG(im.computeStats(), w)
	return err
}

// writePNG encodes the image and returns the effective bits-per-pixel of the
// chosen channel layout (24 for RGB, 32 for RGBA).
func (im *IconImage) writePNG(stats imageStats, w io.Writer) (uint16, error) {
	img := &image.NRGBA{
		Pix:    im.rgbaData,
		Stride: 4 * int(im.width),
		Rect:   image.Rect(0, 0, int(im.width), int(im.height)),
	}
	// The standard encoder drops the alpha channel by itself for opaque
	// images, so an all-opaque raster comes out as an RGB PNG.
	if err := png.Encode(w, img); err != nil {
		return 0, invalidInputf("PNG encoding failed: %v", err)
	}
	if stats.hasAlpha {
		return 32, nil
	}
	return 24, nil
}
