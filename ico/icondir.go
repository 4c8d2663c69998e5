package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// fileHeaderSize is the size of the fixed ICONDIR file header.
	fileHeaderSize = 6
	// entrySize is the size of one ICONDIRENTRY directory record.
	entrySize = 16
	// maxEntries is the largest entry count the 16-bit header field can hold.
	maxEntries = 0xffff
)

// IconDir is a collection of images; the contents of a single ICO or CUR
// file.  Every entry shares the directory's resource type.
type IconDir struct {
	restype ResourceType
	entries []*IconDirEntry
}

// New creates a new, empty collection of icons or cursors.
func New(resourceType ResourceType) *IconDir {
	return &IconDir{restype: resourceType}
}

// ResourceType returns the type of resource stored in this collection,
// either icons or cursors.
func (d *IconDir) ResourceType() ResourceType {
	return d.restype
}

// Entries returns the entries in this collection.
func (d *IconDir) Entries() []*IconDirEntry {
	return d.entries
}

// AddEntry appends an entry to the collection.  Panics if the entry's
// resource type does not match the directory's; mixing icons and cursors in
// one file is a caller bug, not a recoverable condition.
func (d *IconDir) AddEntry(entry *IconDirEntry) {
	if d.restype != entry.restype {
		panic(fmt.Sprintf("ico: can't add %v entry to %v directory",
			entry.restype, d.restype))
	}
	d.entries = append(d.entries, entry)
}

// Read parses an ICO or CUR file into memory.  Payload offsets in the
// directory are absolute, so the source must be seekable.
func Read(r io.ReadSeeker) (*IconDir, error) {
	var header [fileHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, invalidDataf("truncated ICONDIR header: %v", err)
	}
	if reserved := binary.LittleEndian.Uint16(header[0:2]); reserved != 0 {
		return nil, invalidDataf(
			"invalid reserved field value in ICONDIR (was %d, but must be 0)", reserved)
	}
	typeCode := binary.LittleEndian.Uint16(header[2:4])
	restype, ok := resourceTypeFromNumber(typeCode)
	if !ok {
		return nil, invalidDataf("invalid resource type (%d)", typeCode)
	}
	numEntries := int(binary.LittleEndian.Uint16(header[4:6]))

	type span struct {
		offset uint32
		size   uint32
	}
	entries := make([]*IconDirEntry, 0, numEntries)
	spans := make([]span, 0, numEntries)
	record := make([]byte, entrySize)
	for i := 0; i < numEntries; i++ {
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, invalidDataf("truncated ICONDIRENTRY %d: %v", i, err)
		}
		if record[3] != 0 {
			return nil, invalidDataf(
				"invalid reserved field value in ICONDIRENTRY (was %d, but must be 0)", record[3])
		}
		// The record stores width and height as single bytes, with zero
		// standing in for any size of 256 or more.  Start from these bytes,
		// reading 0 as 256; once the payload is loaded its own header
		// supplies the true size.
		width := uint32(record[0])
		if width == 0 {
			width = 256
		}
		height := uint32(record[1])
		if height == 0 {
			height = 256
		}
		entries = append(entries, &IconDirEntry{
			restype:      restype,
			width:        width,
			height:       height,
			numColors:    record[2],
			colorPlanes:  binary.LittleEndian.Uint16(record[4:6]),
			bitsPerPixel: binary.LittleEndian.Uint16(record[6:8]),
		})
		spans = append(spans, span{
			size:   binary.LittleEndian.Uint32(record[8:12]),
			offset: binary.LittleEndian.Uint32(record[12:16]),
		})
	}

	// Payload offsets are absolute and need not be contiguous or in entry
	// order, so each one is loaded with its own seek.
	for i, sp := range spans {
		if _, err := r.Seek(int64(sp.offset), io.SeekStart); err != nil {
			return nil, invalidDataf("can't seek to payload of entry %d: %v", i, err)
		}
		data := make([]byte, sp.size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, invalidDataf("truncated payload for entry %d: %v", i, err)
		}
		entries[i].data = data
	}

	// Refine each entry's size from its payload.  Peek errors are ignored
	// here so that a directory with one corrupt entry stays inspectable;
	// they resurface when Decode is called on that entry.
	for _, entry := range entries {
		if width, height, err := entry.decodeSize(); err == nil {
			entry.width = width
			entry.height = height
		}
	}
	return &IconDir{restype: restype, entries: entries}, nil
}

// Write serializes the directory as an ICO or CUR file: the 6-byte header,
// one 16-byte record per entry, then the concatenated payloads in entry
// order.
func (d *IconDir) Write(w io.Writer) error {
	if len(d.entries) > maxEntries {
		return invalidInputf("too many entries in IconDir (was %d, but max is %d)",
			len(d.entries), maxEntries)
	}
	buf := make([]byte, fileHeaderSize+entrySize*len(d.entries))
	binary.LittleEndian.PutUint16(buf[2:4], d.restype.Number())
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(d.entries)))
	dataOffset := uint32(len(buf))
	pos := fileHeaderSize
	for _, entry := range d.entries {
		// Sizes of 256 and up don't fit the single-byte fields and are
		// clamped back to the zero sentinel.
		if entry.width <= 255 {
			buf[pos] = uint8(entry.width)
		}
		if entry.height <= 255 {
			buf[pos+1] = uint8(entry.height)
		}
		buf[pos+2] = entry.numColors
		binary.LittleEndian.PutUint16(buf[pos+4:pos+6], entry.colorPlanes)
		binary.LittleEndian.PutUint16(buf[pos+6:pos+8], entry.bitsPerPixel)
		binary.LittleEndian.PutUint32(buf[pos+8:pos+12], uint32(len(entry.data)))
		binary.LittleEndian.PutUint32(buf[pos+12:pos+16], dataOffset)
		dataOffset += uint32(len(entry.data))
		pos += entrySize
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for _, entry := range d.entries {
		if _, err := w.Write(entry.data); err != nil {
			return err
		}
	}
	return nil
}

// IconDirEntry is one entry in an ICO or CUR file; a single icon or cursor.
// The raw payload bytes are immutable once loaded and decode independently
// of every other entry.
type IconDirEntry struct {
	restype ResourceType
	width   uint32
	height  uint32
	// numColors mirrors the on-disk color-count byte.
	numColors uint8
	// For icons these two fields hold the color-plane count and the
	// bits-per-pixel; for cursors the same record bytes hold the hotspot
	// coordinates instead.
	colorPlanes  uint16
	bitsPerPixel uint16
	data         []byte
}

// ResourceType returns the type of resource stored in this entry, either an
// icon or a cursor.
func (e *IconDirEntry) ResourceType() ResourceType {
	return e.restype
}

// Width returns the width of the image, in pixels.
func (e *IconDirEntry) Width() uint32 {
	return e.width
}

// Height returns the height of the image, in pixels.
func (e *IconDirEntry) Height() uint32 {
	return e.height
}

// BitsPerPixel returns the color depth of the image.  Returns zero for
// cursor entries, since CUR files store hotspot coordinates in place of this
// field.
func (e *IconDirEntry) BitsPerPixel() uint16 {
	if e.restype == ResourceCursor {
		return 0
	}
	return e.bitsPerPixel
}

// CursorHotspot returns the coordinates of the cursor hotspot (pixels right
// from the left edge of the image, and pixels down from the top edge).  The
// bool is false for icon entries.
func (e *IconDirEntry) CursorHotspot() (x, y uint16, ok bool) {
	if e.restype != ResourceCursor {
		return 0, 0, false
	}
	return e.colorPlanes, e.bitsPerPixel, true
}

// IsPNG returns true if the payload is encoded as a PNG, or false if it is
// encoded as a BMP.
func (e *IconDirEntry) IsPNG() bool {
	return bytes.HasPrefix(e.data, pngSignature[:4])
}

// Data returns the raw, encoded payload bytes.
func (e *IconDirEntry) Data() []byte {
	return e.data
}

// decodeSize peeks at just enough of the payload to determine the true image
// size.
func (e *IconDirEntry) decodeSize() (width, height uint32, err error) {
	if e.IsPNG() {
		info, err := readPNGInfo(e.data)
		if err != nil {
			return 0, 0, err
		}
		return info.width, info.height, nil
	}
	return readBMPSize(e.data)
}

// Decode decodes this entry into an image.  Returns an error if the payload
// is malformed or can't be decoded.
func (e *IconDirEntry) Decode() (*IconImage, error) {
	var image *IconImage
	var err error
	if e.IsPNG() {
		image, err = readPNG(e.data)
	} else {
		image, err = readBMP(e.data)
	}
	if err != nil {
		return nil, err
	}
	if image.Width() != e.width || image.Height() != e.height {
		return nil, invalidDataf(
			"encoded image has wrong dimensions (was %dx%d, but should be %dx%d)",
			image.Width(), image.Height(), e.width, e.height)
	}
	if x, y, ok := e.CursorHotspot(); ok {
		image.SetCursorHotspot(x, y)
	}
	return image, nil
}

// Encode encodes an image into a new entry.  The payload format is chosen
// automatically: PNG for images with non-binary alpha or more than 64x64
// pixels, where PNG's compression and full alpha channel pay off, and BMP
// otherwise, for compatibility with older ICO consumers.
func Encode(image *IconImage) (*IconDirEntry, error) {
	stats := image.computeStats()
	if stats.hasNonbinaryAlpha || image.Width()*image.Height() > 64*64 {
		return encodeAsPNG(image, stats)
	}
	return encodeAsBMP(image, stats)
}

// EncodeAsBMP encodes an image as a BMP payload in a new entry.  The color
// depth is chosen automatically based on the image.
func EncodeAsBMP(image *IconImage) (*IconDirEntry, error) {
	return encodeAsBMP(image, image.computeStats())
}

// EncodeAsPNG encodes an image as a PNG payload in a new entry.
func EncodeAsPNG(image *IconImage) (*IconDirEntry, error) {
	return encodeAsPNG(image, image.computeStats())
}

func encodeAsBMP(image *IconImage, stats imageStats) (*IconDirEntry, error) {
	numColors, bitsPerPixel, data := image.encodeBMP(stats)
	entry := &IconDirEntry{
		restype:      ResourceIcon,
		width:        image.Width(),
		height:       image.Height(),
		numColors:    numColors,
		colorPlanes:  1,
		bitsPerPixel: bitsPerPixel,
		data:         data,
	}
	if x, y, ok := image.CursorHotspot(); ok {
		entry.restype = ResourceCursor
		entry.colorPlanes = x
		entry.bitsPerPixel = y
	}
	return entry, nil
}

func encodeAsPNG(image *IconImage, stats imageStats) (*IconDirEntry, error) {
	var buf bytes.Buffer
	bitsPerPixel, err := image.writePNG(stats, &buf)
	if err != nil {
		return nil, err
	}
	entry := &IconDirEntry{
		restype:      ResourceIcon,
		width:        image.Width(),
		height:       image.Height(),
		colorPlanes:  0,
		bitsPerPixel: bitsPerPixel,
		data:         buf.Bytes(),
	}
	if x, y, ok := image.CursorHotspot(); ok {
		entry.restype = ResourceCursor
		entry.colorPlanes = x
		entry.bitsPerPixel = y
	}
	return entry, nil
}
