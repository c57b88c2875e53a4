package note

import (
	"errors"
	"fmt"
)

// ErrUnsupportedDevice is returned when the requested device name has
// no entry in the equipment table.
var ErrUnsupportedDevice = errors.New("unsupported device")

// ErrAddressOverflow is returned when a planned block address does not
// fit the 4-byte address words of the format.
var ErrAddressOverflow = errors.New("computed address exceeds uint32 range")

// FormatError reports a malformed input file. Offset is the byte
// position the reader was examining when the structure stopped making
// sense.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed note file at offset %d: %s", e.Offset, e.Reason)
}

// DimensionError reports a background raster that is not at the device
// resolution.
type DimensionError struct {
	Page          int
	Width, Height int
	Want          DeviceSpec
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("page %d raster is %dx%d, device %s requires %dx%d",
		e.Page, e.Width, e.Height, e.Want.Name, e.Want.Width, e.Want.Height)
}
