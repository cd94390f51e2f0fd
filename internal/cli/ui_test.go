package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	out := newConsole(cmd)

	out.success("Rendered %s room %s", "Speech", "101")
	out.document(6, true)
	out.wrote("speech-101.pdf")
	out.warn("No %s rooms in roster", "objective")
	out.field("page", "612 x 792 pt")

	got := buf.String()
	for _, want := range []string{"Rendered Speech room 101", "6 pages", "cached", "speech-101.pdf", "No objective rooms in roster", "612 x 792 pt"} {
		if !strings.Contains(got, want) {
			t.Errorf("console output lacks %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "\n"); n != 5 {
		t.Errorf("console wrote %d lines, want 5", n)
	}
}
