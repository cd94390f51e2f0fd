// Package layout describes the fixed geometry of a printed slip.
//
// # Overview
//
// A [Schema] is an immutable description of one page template: the page
// size in points, the size of a single bubble mark (the "slug"), and an
// ordered set of named fields. Coordinates use a top-left origin, the same
// convention the PDF sink draws with.
//
// Fields come in two variants:
//
//   - [TextField]: a string placed verbatim at a start point.
//   - [NumericField]: a row of digit columns. Each column prints its digit
//     above a grid of ten bubble rows and fills the row whose index equals
//     the digit.
//
// # Loading
//
// Schemas are decoded from JSON:
//
//	{
//	  "page_size": [612, 792],
//	  "slug_size": [9, 6, 2],
//	  "fields": [
//	    {"name": "Name", "_type": "text", "start": [40, 110]},
//	    {"name": "Test ID", "_type": "numeric", "length": 6,
//	     "start_col": 300, "col_width": 14,
//	     "text_row": 250, "slug_row": 262, "row_height": 12}
//	  ]
//	}
//
// The optional third element of slug_size is the corner radius of a mark.
// [Load] rejects entries without a name, duplicate names, unknown types and
// incomplete geometry. [Default] returns the schema compiled into the binary.
//
// A loaded Schema is never mutated and may be shared by concurrent renders.
package layout
