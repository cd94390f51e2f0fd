package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/layout"
)

// schemaCommand creates the schema command group.
func (c *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate or show form definitions",
	}
	cmd.AddCommand(c.schemaValidateCommand())
	cmd.AddCommand(c.schemaShowCommand())
	return cmd
}

func (c *CLI) schemaValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <form.json>",
		Short: "Check a form definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newConsole(cmd)
			s, err := layout.LoadFile(args[0])
			if err != nil {
				out.failure("%s is invalid", args[0])
				return err
			}
			out.success("%s is valid", args[0])
			out.detail("%d fields", s.Len())
			return nil
		},
	}
}

func (c *CLI) schemaShowCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [form.json]",
		Short: "List the fields of a form definition",
		Long: `List the fields of a form definition. Without an argument the configured
form is shown (the built-in one unless render.schema is set).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw && len(args) == 0 && c.settings().Render.Schema == "" {
				_, err := cmd.OutOrStdout().Write(layout.DefaultDefinition())
				return err
			}

			var (
				s   *layout.Schema
				err error
			)
			if len(args) == 1 {
				s, err = layout.LoadFile(args[0])
			} else {
				s, err = c.settings().Schema()
			}
			if err != nil {
				return err
			}
			printSchema(newConsole(cmd), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the built-in definition as JSON")
	return cmd
}

func printSchema(out *console, s *layout.Schema) {
	w, h := s.PageSize()
	slug := s.SlugSize()
	out.title("Form")
	out.field("page", fmt.Sprintf("%g x %g pt", w, h))
	out.field("slug", fmt.Sprintf("%g x %g pt, radius %g", slug.W, slug.H, slug.Radius))
	out.println()

	out.title("Fields")
	for _, f := range s.Fields() {
		switch f := f.(type) {
		case layout.TextField:
			out.field(f.Name, fmt.Sprintf("text at (%g, %g)", f.Start.X, f.Start.Y))
		case layout.NumericField:
			out.field(f.Name, fmt.Sprintf("numeric, %d digits from x=%g step %g, text y=%g, bubbles y=%g+%g*d",
				f.Length, f.StartCol, f.ColWidth, f.TextRow, f.SlugRow, f.RowHeight))
		}
	}
}
