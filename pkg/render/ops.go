package render

import (
	"fmt"
	"io"
)

// Op is a single positioned draw operation.
// It is implemented by TextOp and SlugOp only.
type Op interface {
	isOp()
}

// TextOp prints Text with its baseline origin at (X, Y).
type TextOp struct {
	X, Y float64
	Text string
}

// SlugOp fills a rounded rectangle with its top-left corner at (X, Y).
type SlugOp struct {
	X, Y float64
	W, H float64
	R    float64
}

func (TextOp) isOp() {}
func (SlugOp) isOp() {}

func (o TextOp) String() string {
	return fmt.Sprintf("text(%.2f, %.2f, %q)", o.X, o.Y, o.Text)
}

func (o SlugOp) String() string {
	return fmt.Sprintf("slug(%.2f, %.2f, %.2fx%.2f r%.2f)", o.X, o.Y, o.W, o.H, o.R)
}

// Metrics measures text in the surface's current font.
type Metrics interface {
	StringWidth(s string) float64
}

// Surface is the drawing target of a Composer.
type Surface interface {
	Metrics
	SetFont(family string, size float64)
	DrawText(x, y float64, s string)
	FillRoundedRect(x, y, w, h, r float64)
	// ShowPage closes the current page. The next draw starts a new one.
	ShowPage()
	// Finish writes the document. The surface must not be used afterwards.
	Finish(w io.Writer) error
}
