package ico

// ResourceType is the kind of resource stored in an ICO or CUR file.  The
// numeric values are the on-disk type codes from the ICONDIR header.
type ResourceType uint16

const (
	// ResourceIcon marks plain images (ICO files).
	ResourceIcon ResourceType = 1
	// ResourceCursor marks images with cursor hotspots (CUR files).
	ResourceCursor ResourceType = 2
)

// resourceTypeFromNumber maps an on-disk type code back to a ResourceType.
// Returns false for any code other than 1 or 2.
func resourceTypeFromNumber(number uint16) (ResourceType, bool) {
	switch number {
	case 1:
		return ResourceIcon, true
	case 2:
		return ResourceCursor, true
	default:
		return 0, false
	}
}

// Number returns the on-disk type code for this resource type.
func (rt ResourceType) Number() uint16 {
	return uint16(rt)
}

func (rt ResourceType) String() string {
	switch rt {
	case ResourceIcon:
		return "icon"
	case ResourceCursor:
		return "cursor"
	default:
		return "unknown"
	}
}
