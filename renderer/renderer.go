package renderer

import "github.com/sanecz/protocol/layout"

// Renderer turns a layout result into final output bytes, for example
// a plain-text diagram.
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
