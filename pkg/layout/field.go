package layout

// Kind identifies a field variant.
type Kind string

const (
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
)

// Point is a coordinate in points, top-left origin.
type Point struct {
	X, Y float64
}

// Slug is the size of one bubble mark.
type Slug struct {
	W, H   float64
	Radius float64 // corner radius
}

// Field is a named, positioned region on the page.
// It is implemented by TextField and NumericField only.
type Field interface {
	FieldName() string
	Kind() Kind
	isField()
}

// TextField places its value verbatim at Start.
type TextField struct {
	Name  string
	Start Point
}

func (f TextField) FieldName() string { return f.Name }
func (f TextField) Kind() Kind        { return KindText }
func (TextField) isField()            {}

// NumericField renders up to Length digits, one per column.
type NumericField struct {
	Name      string
	Length    int     // max digit count
	StartCol  float64 // x of the leftmost column
	ColWidth  float64 // horizontal distance between columns
	TextRow   float64 // y of the printed digit
	SlugRow   float64 // y of bubble row 0
	RowHeight float64 // vertical distance between bubble rows
}

func (f NumericField) FieldName() string { return f.Name }
func (f NumericField) Kind() Kind        { return KindNumeric }
func (NumericField) isField()            {}

// Column returns the x coordinate of column i (0-based, left to right).
func (f NumericField) Column(i int) float64 {
	return f.StartCol + f.ColWidth*float64(i)
}

// Row returns the y coordinate of the bubble row for digit d.
func (f NumericField) Row(d int) float64 {
	return f.SlugRow + f.RowHeight*float64(d)
}
