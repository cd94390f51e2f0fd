// Package sink provides the drawing surfaces a [render.Composer] writes to.
//
// # Overview
//
// Two surfaces implement [render.Surface]:
//
//   - [PDF]: print-ready output built on github.com/go-pdf/fpdf. Pages take
//     their size from the layout schema and text uses a core PDF font, so
//     no font files are required.
//   - [Recorder]: keeps every draw call in memory. It backs the JSON preview
//     of a render and is convenient in tests.
//
// Basic usage:
//
//	schema, _ := layout.Default()
//	pdf := sink.NewPDF(schema, sink.WithTitle("objective-101"))
//	c := render.NewComposer(schema, pdf)
//	_ = c.TestPage()
//	err := pdf.Finish(w)
//
// [render.Composer]: github.com/matzehuels/preslug/pkg/render.Composer
// [render.Surface]: github.com/matzehuels/preslug/pkg/render.Surface
package sink
