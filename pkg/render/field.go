package render

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/layout"
)

// RenderField computes the draw operations for one field value.
//
// Text fields produce a single TextOp at the field's start point. Numeric
// fields produce a TextOp and a SlugOp per digit; see the package
// documentation for the geometry.
func RenderField(f layout.Field, value string, m Metrics, slug layout.Slug) ([]Op, error) {
	switch f := f.(type) {
	case layout.TextField:
		return []Op{TextOp{X: f.Start.X, Y: f.Start.Y, Text: value}}, nil
	case layout.NumericField:
		return renderNumeric(f, value, m, slug)
	default:
		return nil, errors.New(errors.ErrCodeInternal, "unsupported field type %T", f)
	}
}

func renderNumeric(f layout.NumericField, value string, m Metrics, slug layout.Slug) ([]Op, error) {
	padded, err := Justify(f, value)
	if err != nil {
		return nil, err
	}

	ops := make([]Op, 0, 2*f.Length)
	for i := 0; i < len(padded); i++ {
		c := padded[i]
		if c == ' ' {
			continue
		}
		digit := string(c)
		d := int(c - '0')
		col := f.Column(i)
		offset := (slug.W - m.StringWidth(digit)) / 2
		ops = append(ops,
			TextOp{X: col + offset, Y: f.TextRow, Text: digit},
			SlugOp{X: col, Y: f.Row(d), W: slug.W, H: slug.H, R: slug.Radius},
		)
	}
	return ops, nil
}

// Justify validates a numeric value and right-justifies it to the field
// length by left-padding with spaces. Justifying an already justified value
// returns it unchanged.
func Justify(f layout.NumericField, value string) (string, error) {
	n := utf8.RuneCountInString(value)
	if n > f.Length {
		return "", errors.New(errors.ErrCodeValueTooLong,
			"field %q: value %q has %d characters, max %d", f.Name, value, n, f.Length)
	}
	if !isDigits(strings.ReplaceAll(value, " ", "")) {
		return "", errors.New(errors.ErrCodeNotNumeric,
			"field %q: value %q is not numeric", f.Name, value)
	}
	return strings.Repeat(" ", f.Length-n) + value, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
