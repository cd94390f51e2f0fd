package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/matzehuels/preslug/pkg/errors"
)

// DefaultSlugRadius is the corner radius used when slug_size has no third element.
const DefaultSlugRadius = 1.5

//go:embed default.json
var defaultDefinition []byte

// Schema is a validated, read-only page template.
type Schema struct {
	pageSize Point
	slug     Slug
	fields   []Field
	byName   map[string]int
}

// PageSize returns the page width and height in points.
func (s *Schema) PageSize() (w, h float64) { return s.pageSize.X, s.pageSize.Y }

// SlugSize returns the bubble mark geometry.
func (s *Schema) SlugSize() Slug { return s.slug }

// Fields returns the field definitions in declaration order.
// The returned slice is a copy.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.FieldName()
	}
	return names
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// FieldByName looks up a field definition.
func (s *Schema) FieldByName(name string) (Field, error) {
	i, ok := s.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeFieldNotFound, "field %q not found", name)
	}
	return s.fields[i], nil
}

// WithSlugRadius returns a copy of s whose slugs use corner radius r.
// Fields are shared; both schemas stay read-only.
func (s *Schema) WithSlugRadius(r float64) (*Schema, error) {
	if r < 0 || r > s.slug.W/2 || r > s.slug.H/2 {
		return nil, errors.New(errors.ErrCodeSchemaInvalid,
			"slug radius %g does not fit a %gx%g slug", r, s.slug.W, s.slug.H)
	}
	out := *s
	out.slug.Radius = r
	return &out, nil
}

// Index returns the declaration position of a field, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	return -1
}

// rawSchema mirrors the JSON definition before validation.
type rawSchema struct {
	PageSize []float64  `json:"page_size"`
	SlugSize []float64  `json:"slug_size"`
	Fields   []rawField `json:"fields"`
}

type rawField struct {
	Name *string `json:"name"`
	Type string  `json:"_type"`

	// text
	Start []float64 `json:"start"`

	// numeric
	Length    *int     `json:"length"`
	StartCol  *float64 `json:"start_col"`
	ColWidth  *float64 `json:"col_width"`
	TextRow   *float64 `json:"text_row"`
	SlugRow   *float64 `json:"slug_row"`
	RowHeight *float64 `json:"row_height"`
}

// Load decodes and validates a schema definition.
func Load(r io.Reader) (*Schema, error) {
	var raw rawSchema
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "decode schema")
	}
	return build(raw)
}

// LoadFile reads a schema definition from path.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "open schema %s", path)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// Default returns the schema compiled into the binary.
// It is parsed once; every caller shares the same read-only value.
func Default() (*Schema, error) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = Load(bytes.NewReader(defaultDefinition))
	})
	return defaultSchema, defaultSchemaErr
}

// DefaultDefinition returns the raw JSON of the built-in schema.
func DefaultDefinition() []byte {
	return bytes.Clone(defaultDefinition)
}

func build(raw rawSchema) (*Schema, error) {
	if len(raw.PageSize) != 2 {
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "page_size must have 2 elements, got %d", len(raw.PageSize))
	}
	if raw.PageSize[0] <= 0 || raw.PageSize[1] <= 0 {
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "page_size must be positive")
	}

	s := &Schema{
		pageSize: Point{X: raw.PageSize[0], Y: raw.PageSize[1]},
		byName:   make(map[string]int, len(raw.Fields)),
	}

	switch len(raw.SlugSize) {
	case 2:
		s.slug = Slug{W: raw.SlugSize[0], H: raw.SlugSize[1], Radius: DefaultSlugRadius}
	case 3:
		s.slug = Slug{W: raw.SlugSize[0], H: raw.SlugSize[1], Radius: raw.SlugSize[2]}
	default:
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "slug_size must have 2 or 3 elements, got %d", len(raw.SlugSize))
	}
	if s.slug.W <= 0 || s.slug.H <= 0 || s.slug.Radius < 0 {
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "slug_size must be positive")
	}

	for i, rf := range raw.Fields {
		if rf.Name == nil || *rf.Name == "" {
			return nil, errors.New(errors.ErrCodeSchemaInvalid, "field entry #%d has no name", i+1)
		}
		name := *rf.Name
		if _, dup := s.byName[name]; dup {
			return nil, errors.New(errors.ErrCodeSchemaInvalid, "duplicate field name %q", name)
		}
		f, err := buildField(name, rf)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSchemaInvalid, err, "field %q", name)
		}
		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

func buildField(name string, rf rawField) (Field, error) {
	switch Kind(rf.Type) {
	case KindText:
		if len(rf.Start) != 2 {
			return nil, fmt.Errorf("start must have 2 elements, got %d", len(rf.Start))
		}
		return TextField{Name: name, Start: Point{X: rf.Start[0], Y: rf.Start[1]}}, nil
	case KindNumeric:
		missing := func(key string, present bool) error {
			if present {
				return nil
			}
			return fmt.Errorf("numeric field requires %q", key)
		}
		for _, check := range []error{
			missing("length", rf.Length != nil),
			missing("start_col", rf.StartCol != nil),
			missing("col_width", rf.ColWidth != nil),
			missing("text_row", rf.TextRow != nil),
			missing("slug_row", rf.SlugRow != nil),
			missing("row_height", rf.RowHeight != nil),
		} {
			if check != nil {
				return nil, check
			}
		}
		if *rf.Length < 1 {
			return nil, fmt.Errorf("length must be at least 1, got %d", *rf.Length)
		}
		return NumericField{
			Name:      name,
			Length:    *rf.Length,
			StartCol:  *rf.StartCol,
			ColWidth:  *rf.ColWidth,
			TextRow:   *rf.TextRow,
			SlugRow:   *rf.SlugRow,
			RowHeight: *rf.RowHeight,
		}, nil
	case "":
		return nil, fmt.Errorf("missing _type")
	default:
		return nil, fmt.Errorf("unknown _type %q", rf.Type)
	}
}
