package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	inkAccent = lipgloss.Color("36")
	inkOK     = lipgloss.Color("35")
	inkWarn   = lipgloss.Color("220")
	inkFail   = lipgloss.Color("167")
	inkHint   = lipgloss.Color("75")
	inkValue  = lipgloss.Color("255")
	inkLabel  = lipgloss.Color("245")
	inkMuted  = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(inkAccent)
	styleAccent = lipgloss.NewStyle().Foreground(inkAccent)
	styleMuted  = lipgloss.NewStyle().Foreground(inkMuted)
	styleValue  = lipgloss.NewStyle().Foreground(inkValue)
	styleHeader = lipgloss.NewStyle().Foreground(inkLabel).Bold(true)
	styleLabel  = lipgloss.NewStyle().Foreground(inkLabel).Width(18)
	styleHint   = lipgloss.NewStyle().Foreground(inkHint)
)

// marker is the leading glyph of a status line.
type marker struct {
	glyph string
	style lipgloss.Style
}

var (
	markOK   = marker{"✓", lipgloss.NewStyle().Foreground(inkOK)}
	markFail = marker{"✗", lipgloss.NewStyle().Foreground(inkFail)}
	markWarn = marker{"!", lipgloss.NewStyle().Foreground(inkWarn)}
	markInfo = marker{"›", lipgloss.NewStyle().Foreground(inkLabel)}
)

// console writes human-facing command output. Log lines go to the logger
// on stderr; everything a user reads as the result of a command goes here.
type console struct {
	w io.Writer
}

func newConsole(cmd *cobra.Command) *console {
	return &console{w: cmd.OutOrStdout()}
}

func (c *console) status(m marker, format string, args ...any) {
	fmt.Fprintln(c.w, m.style.Render(m.glyph)+" "+fmt.Sprintf(format, args...))
}

func (c *console) success(format string, args ...any) { c.status(markOK, format, args...) }
func (c *console) failure(format string, args ...any) { c.status(markFail, format, args...) }
func (c *console) info(format string, args ...any)    { c.status(markInfo, format, args...) }

func (c *console) warn(format string, args ...any) {
	c.status(markWarn, "%s", markWarn.style.Render(fmt.Sprintf(format, args...)))
}

// detail prints an indented secondary line.
func (c *console) detail(format string, args ...any) {
	fmt.Fprintln(c.w, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// wrote reports a file the command produced.
func (c *console) wrote(path string) {
	fmt.Fprintln(c.w, "  "+styleMuted.Render("→")+" "+styleValue.Render(path))
}

// document summarizes one rendered document.
func (c *console) document(pages int, cacheHit bool) {
	origin := styleMuted.Render("fresh")
	if cacheHit {
		origin = markOK.style.Render("cached")
	}
	fmt.Fprintln(c.w, "  "+styleMuted.Render(fmt.Sprintf("%d pages · ", pages))+origin)
}

func (c *console) title(s string) {
	fmt.Fprintln(c.w, styleTitle.Render(s))
}

func (c *console) field(label, value string) {
	fmt.Fprintln(c.w, styleLabel.Render(label)+" "+styleValue.Render(value))
}

// hint suggests a follow-up command.
func (c *console) hint(what, command string) {
	fmt.Fprintln(c.w, styleMuted.Render(what+":")+" "+styleHint.Render(command))
}

func (c *console) println(a ...any) {
	fmt.Fprintln(c.w, a...)
}
