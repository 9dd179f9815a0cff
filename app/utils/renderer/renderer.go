package renderer

import (
	"github.com/unrolled/render"
)

// New returns the JSON renderer shared by every handler.
func New(indent bool) *render.Render {
	return render.New(render.Options{
		IndentJSON:   indent,
		UnEscapeHTML: true,
	})
}
