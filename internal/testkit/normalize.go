package testkit

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"spanres/internal/source"
)

// CheckNormalized reports a file whose content is not in Unicode NFC. Ranges
// are byte offsets into the content as stored; an editor that normalizes the
// text on load would see them shifted.
func CheckNormalized(sf *source.File) error {
	if sf == nil || norm.NFC.IsNormal(sf.Content) {
		return nil
	}
	for off := 0; off < len(sf.Content); {
		// Segment boundaries let the first offending segment be located.
		n := norm.NFC.NextBoundary(sf.Content[off:], true)
		if n <= 0 {
			break
		}
		if seg := sf.Content[off : off+n]; !norm.NFC.IsNormal(seg) {
			return fmt.Errorf("%s: content is not NFC-normalized at byte %d", sf.Path, off)
		}
		off += n
	}
	return fmt.Errorf("%s: content is not NFC-normalized", sf.Path)
}
