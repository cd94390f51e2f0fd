package render

import (
	"sort"
	"strings"

	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
)

// Default font of printed slips. Courier is a core PDF font, so no font
// files are embedded.
const (
	DefaultFontFamily = "Courier"
	DefaultFontSize   = 10.0
)

// Option configures a Composer.
type Option func(*Composer)

// WithFont sets the font used for all text on the page.
func WithFont(family string, size float64) Option {
	return func(c *Composer) {
		if family != "" {
			c.fontFamily = family
		}
		if size > 0 {
			c.fontSize = size
		}
	}
}

// WithOffset shifts every coordinate by (x, y). It compensates for printers
// that feed pre-printed forms slightly out of position.
func WithOffset(x, y float64) Option {
	return func(c *Composer) { c.offsetX, c.offsetY = x, y }
}

// Composer writes pages of field values onto a Surface.
// A Composer is not safe for concurrent use; it owns its surface.
type Composer struct {
	schema  *layout.Schema
	surface Surface

	fontFamily string
	fontSize   float64
	offsetX    float64
	offsetY    float64

	pages int
}

// NewComposer creates a composer drawing onto surface with schema geometry.
func NewComposer(schema *layout.Schema, surface Surface, opts ...Option) *Composer {
	c := &Composer{
		schema:     schema,
		surface:    surface,
		fontFamily: DefaultFontFamily,
		fontSize:   DefaultFontSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	surface.SetFont(c.fontFamily, c.fontSize)
	return c
}

// Schema returns the schema the composer lays pages out with.
func (c *Composer) Schema() *layout.Schema { return c.schema }

// Pages returns the number of pages written so far.
func (c *Composer) Pages() int { return c.pages }

// Page renders one page from values keyed by field name.
//
// Every key must name a schema field. Fields without a value are left
// blank. All values are validated before the first op is drawn, so a failed
// call leaves the surface untouched.
func (c *Composer) Page(values map[string]string) error {
	ops, err := c.Ops(values)
	if err != nil {
		return err
	}
	for _, op := range ops {
		c.draw(op)
	}
	c.surface.ShowPage()
	c.pages++
	return nil
}

// Ops renders values to draw operations without touching the surface.
// Offsets are not applied.
func (c *Composer) Ops(values map[string]string) ([]Op, error) {
	if err := c.checkKeys(values); err != nil {
		return nil, err
	}
	slug := c.schema.SlugSize()
	var ops []Op
	for _, f := range c.schema.Fields() {
		value, ok := values[f.FieldName()]
		if !ok {
			continue
		}
		fieldOps, err := RenderField(f, value, c.surface, slug)
		if err != nil {
			return nil, err
		}
		ops = append(ops, fieldOps...)
	}
	return ops, nil
}

// TestPage composes one page that fills every field, used to check printer
// alignment against a blank form.
func (c *Composer) TestPage() error {
	return c.Page(TestPageValues(c.schema))
}

// TestPageValues synthesizes a value for every field: the upper-cased name
// for text fields and the digits 0123456789... up to the length for numeric
// fields.
func TestPageValues(schema *layout.Schema) map[string]string {
	values := make(map[string]string, schema.Len())
	for _, f := range schema.Fields() {
		switch f := f.(type) {
		case layout.TextField:
			values[f.Name] = strings.ToUpper(f.Name)
		case layout.NumericField:
			var b strings.Builder
			for i := 0; i < f.Length; i++ {
				b.WriteByte(byte('0' + i%10))
			}
			values[f.Name] = b.String()
		}
	}
	return values
}

func (c *Composer) checkKeys(values map[string]string) error {
	var unknown []string
	for name := range values {
		if c.schema.Index(name) < 0 {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errors.New(errors.ErrCodeFieldNotFound, "field %q not found in schema", unknown[0])
}

func (c *Composer) draw(op Op) {
	switch op := op.(type) {
	case TextOp:
		c.surface.DrawText(op.X+c.offsetX, op.Y+c.offsetY, op.Text)
	case SlugOp:
		c.surface.FillRoundedRect(op.X+c.offsetX, op.Y+c.offsetY, op.W, op.H, op.R)
	}
}
