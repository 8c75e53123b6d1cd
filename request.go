package tex2png

import "fmt"

// Request is a single expression-to-PNG conversion.
// Expression and Size are opaque: they are passed to the tools verbatim.
type Request struct {
	Expression string
	Size       string // dvipng -D resolution, e.g. "800"
	Output     string // destination PNG path
}

// Validate checks that the fields the raster stage depends on are present.
// The expression itself is never inspected; an empty expression is a valid,
// if pointless, document.
func (r Request) Validate() error {
	if r.Size == "" {
		return ErrEmptySize
	}
	if r.Output == "" {
		return ErrEmptyOutput
	}
	return nil
}

// String implements fmt.Stringer for logging. The expression is omitted since
// it can be arbitrarily long.
func (r Request) String() string {
	return fmt.Sprintf("size=%s output=%s (%d bytes of expression)", r.Size, r.Output, len(r.Expression))
}
