package sink

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/matzehuels/preslug/pkg/render"
)

// monoAdvance is the advance width of a Courier glyph, in em.
const monoAdvance = 0.6

// Recorder is a render.Surface that keeps draw calls in memory.
//
// Text is measured as a monospaced font, which matches the PDF sink exactly
// for the default Courier font.
type Recorder struct {
	family string
	size   float64
	pages  [][]render.Op
	cur    []render.Op
	open   bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{family: render.DefaultFontFamily, size: render.DefaultFontSize}
}

func (r *Recorder) SetFont(family string, size float64) {
	r.family, r.size = family, size
}

func (r *Recorder) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.size * monoAdvance
}

func (r *Recorder) DrawText(x, y float64, s string) {
	r.open = true
	r.cur = append(r.cur, render.TextOp{X: x, Y: y, Text: s})
}

func (r *Recorder) FillRoundedRect(x, y, w, h, radius float64) {
	r.open = true
	r.cur = append(r.cur, render.SlugOp{X: x, Y: y, W: w, H: h, R: radius})
}

func (r *Recorder) ShowPage() {
	r.pages = append(r.pages, r.cur)
	r.cur = nil
	r.open = false
}

// Pages returns the recorded pages. Ops drawn after the last ShowPage are
// included as a final page.
func (r *Recorder) Pages() [][]render.Op {
	pages := r.pages
	if r.open {
		pages = append(pages[:len(pages):len(pages)], r.cur)
	}
	return pages
}

// Finish writes the recorded pages as JSON.
func (r *Recorder) Finish(w io.Writer) error {
	return WriteJSON(w, r.family, r.size, r.Pages())
}

var _ render.Surface = (*Recorder)(nil)

// Preview is the JSON form of a recorded document.
type Preview struct {
	Font  PreviewFont   `json:"font"`
	Pages []PreviewPage `json:"pages"`
}

type PreviewFont struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

type PreviewPage struct {
	Ops []PreviewOp `json:"ops"`
}

// PreviewOp is one draw call. Kind is "text" or "slug".
type PreviewOp struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
	R    float64 `json:"r,omitempty"`
	Text string  `json:"text,omitempty"`
}

// WriteJSON encodes pages of ops as an indented Preview document.
func WriteJSON(w io.Writer, family string, size float64, pages [][]render.Op) error {
	doc := Preview{
		Font:  PreviewFont{Family: family, Size: size},
		Pages: make([]PreviewPage, 0, len(pages)),
	}
	for _, ops := range pages {
		page := PreviewPage{Ops: make([]PreviewOp, 0, len(ops))}
		for _, op := range ops {
			switch op := op.(type) {
			case render.TextOp:
				page.Ops = append(page.Ops, PreviewOp{Kind: "text", X: op.X, Y: op.Y, Text: op.Text})
			case render.SlugOp:
				page.Ops = append(page.Ops, PreviewOp{Kind: "slug", X: op.X, Y: op.Y, W: op.W, H: op.H, R: op.R})
			}
		}
		doc.Pages = append(doc.Pages, page)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
