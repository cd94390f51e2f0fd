package sink

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/preslug/pkg/buildinfo"
	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
	"github.com/matzehuels/preslug/pkg/render"
)

type PDFOption func(*pdfConfig)

type pdfConfig struct {
	title      string
	created    time.Time
	compressed bool
}

func WithTitle(title string) PDFOption { return func(c *pdfConfig) { c.title = title } }

// WithCreationDate pins the document timestamps, making output reproducible.
func WithCreationDate(t time.Time) PDFOption { return func(c *pdfConfig) { c.created = t } }

func WithoutCompression() PDFOption { return func(c *pdfConfig) { c.compressed = false } }

// PDF is a render.Surface producing a PDF document.
//
// Pages are opened lazily on the first draw after ShowPage, so closing the
// last page never leaves a trailing blank one.
type PDF struct {
	doc       *fpdf.Fpdf
	translate func(string) string
	open      bool
	pages     int
}

// NewPDF creates an empty document with the schema's page size.
func NewPDF(schema *layout.Schema, opts ...PDFOption) *PDF {
	cfg := pdfConfig{compressed: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, h := schema.PageSize()
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(cfg.compressed)
	doc.SetCreator(buildinfo.Creator(), true)
	if cfg.title != "" {
		doc.SetTitle(cfg.title, true)
	}
	if !cfg.created.IsZero() {
		doc.SetCreationDate(cfg.created)
		doc.SetModificationDate(cfg.created)
		doc.SetCatalogSort(true)
	}
	doc.SetFillColor(0, 0, 0)
	doc.SetTextColor(0, 0, 0)

	p := &PDF{
		doc:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
	}
	p.SetFont(render.DefaultFontFamily, render.DefaultFontSize)
	return p
}

// SetFont selects one of the core PDF fonts (Courier, Helvetica, Times).
func (p *PDF) SetFont(family string, size float64) {
	p.doc.SetFont(family, "", size)
}

// StringWidth returns the width of s in the current font, in points.
func (p *PDF) StringWidth(s string) float64 {
	return p.doc.GetStringWidth(p.translate(s))
}

func (p *PDF) DrawText(x, y float64, s string) {
	p.ensurePage()
	p.doc.Text(x, y, p.translate(s))
}

func (p *PDF) FillRoundedRect(x, y, w, h, r float64) {
	p.ensurePage()
	p.doc.RoundedRect(x, y, w, h, r, "1234", "F")
}

// ShowPage closes the current page. A page with nothing drawn on it is
// still emitted, so blank pages are preserved.
func (p *PDF) ShowPage() {
	p.ensurePage()
	p.open = false
}

// Pages returns the number of pages started so far.
func (p *PDF) Pages() int { return p.pages }

// Finish writes the document to w.
func (p *PDF) Finish(w io.Writer) error {
	if err := p.doc.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compose pdf")
	}
	if err := p.doc.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return nil
}

func (p *PDF) ensurePage() {
	if p.open {
		return
	}
	p.doc.AddPage()
	p.open = true
	p.pages++
}

var _ render.Surface = (*PDF)(nil)
