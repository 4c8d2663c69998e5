package ico

import (
	"encoding/json"
)

// Structural (de)serialization of the in-memory model, for callers that want
// to ship a parsed directory over a wire or store it outside the ICO/CUR
// binary form.  This is a shape-preserving adapter over the data model: it
// round-trips every field verbatim, performs no format logic, and payload
// bytes travel as base64 per encoding/json's []byte convention.

// MarshalJSON encodes the resource type as its lowercase name.
func (rt ResourceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(rt.String())
}

// UnmarshalJSON decodes a resource type from its lowercase name.
func (rt *ResourceType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "icon":
		*rt = ResourceIcon
	case "cursor":
		*rt = ResourceCursor
	default:
		return invalidDataf("invalid resource type %q", name)
	}
	return nil
}

type iconDirRecord struct {
	ResourceType ResourceType    `json:"resource_type"`
	Entries      []*IconDirEntry `json:"entries"`
}

// MarshalJSON serializes the directory and all of its entries.
func (d *IconDir) MarshalJSON() ([]byte, error) {
	return json.Marshal(iconDirRecord{
		ResourceType: d.restype,
		Entries:      d.entries,
	})
}

// UnmarshalJSON reconstructs a directory.  Entries keep whatever resource
// type they were serialized with; the directory invariant that every entry
// matches is restored by re-tagging entries to the directory's type, the
// same way Read stamps the file-level type onto each record.
func (d *IconDir) UnmarshalJSON(data []byte) error {
	var record iconDirRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	for i, entry := range record.Entries {
		if entry == nil {
			return invalidDataf("null entry at index %d", i)
		}
		entry.restype = record.ResourceType
	}
	d.restype = record.ResourceType
	d.entries = record.Entries
	return nil
}

type iconDirEntryRecord struct {
	ResourceType ResourceType `json:"resource_type"`
	Width        uint32       `json:"width"`
	Height       uint32       `json:"height"`
	NumColors    uint8        `json:"num_colors"`
	ColorPlanes  uint16       `json:"color_planes"`
	BitsPerPixel uint16       `json:"bits_per_pixel"`
	Data         []byte       `json:"data"`
}

// MarshalJSON serializes one entry, including its raw payload bytes.
func (e *IconDirEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(iconDirEntryRecord{
		ResourceType: e.restype,
		Width:        e.width,
		Height:       e.height,
		NumColors:    e.numColors,
		ColorPlanes:  e.colorPlanes,
		BitsPerPixel: e.bitsPerPixel,
		Data:         e.data,
	})
}

// UnmarshalJSON reconstructs one entry.
func (e *IconDirEntry) UnmarshalJSON(data []byte) error {
	var record iconDirEntryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	e.restype = record.ResourceType
	e.width = record.Width
	e.height = record.Height
	e.numColors = record.NumColors
	e.colorPlanes = record.ColorPlanes
	e.bitsPerPixel = record.BitsPerPixel
	e.data = record.Data
	return nil
}
