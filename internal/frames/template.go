package frames

import (
	"fmt"
	"strings"
)

// PathTemplate names frame files as Prefix + zero-padded index + Ext, with
// indices starting at 1.
type PathTemplate struct {
	Prefix string
	Ext    string
	Digits int // zero padding width, 3 when unset
}

// Path returns the asset path of the frame with the given 1-based index.
func (t PathTemplate) Path(index int) string {
	digits := t.Digits
	if digits <= 0 {
		digits = 3
	}
	ext := t.Ext
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s%0*d%s", t.Prefix, digits, index, ext)
}
