// Package render turns field values into positioned draw operations.
//
// # Overview
//
// Rendering happens in two steps. [RenderField] maps one field definition
// and its value to a slice of [Op]s: a [TextOp] for printed text and a
// [SlugOp] for each filled bubble. It performs no I/O, so the whole page can
// be validated before anything is drawn.
//
// A [Composer] then owns a [Surface] and writes pages onto it. Each call to
// [Composer.Page] renders every supplied value to ops in schema order, draws
// them, and closes the page. A value that fails validation aborts the page
// before any op reaches the surface.
//
//	schema, _ := layout.Default()
//	surface := sink.NewPDF(schema)
//	c := render.NewComposer(schema, surface, render.WithOffset(0, 4))
//	if err := c.Page(map[string]string{"Name": "Ada Lovelace (1815)"}); err != nil {
//	    return err
//	}
//	return surface.Finish(w)
//
// # Numeric fields
//
// A numeric value is right-justified into the field's columns by left-padding
// with spaces. Pad columns draw nothing. Each digit d in column i is printed
// centered over the slug at the column's x, and the slug in row d is filled:
//
//	x = start_col + col_width*i
//	y = slug_row + row_height*d
//
// Values longer than the field fail with VALUE_TOO_LONG. Values that are not
// digits once spaces are removed fail with NOT_NUMERIC.
package render
