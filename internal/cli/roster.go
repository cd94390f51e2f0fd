package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/preslug/pkg/roster"
)

// rosterCommand creates the roster command, which summarizes a CSV roster
// without rendering anything.
func (c *CLI) rosterCommand() *cobra.Command {
	var encode bool

	cmd := &cobra.Command{
		Use:   "roster <roster.csv>",
		Short: "Summarize the rooms of a CSV roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			ros, err := readRoster(ctx, runner, args[0])
			if err != nil {
				return err
			}
			if encode {
				data, err := roster.Encode(ros)
				if err != nil {
					return err
				}
				newConsole(cmd).println(data)
				return nil
			}
			newConsole(cmd).println(rosterTable(ros))
			return nil
		},
	}
	cmd.Flags().BoolVar(&encode, "encode", false, "print the roster encoded as the print forms carry it")
	return cmd
}

// rosterTable renders one row per event: room count, students, and the
// rooms with their sizes.
func rosterTable(ros *roster.Roster) string {
	rows := make([][]string, 0, len(roster.Events))
	for _, e := range roster.Events {
		rooms := ros.Rooms(e)
		sizes := make([]string, len(rooms))
		for i, room := range rooms {
			recs, _ := ros.Records(e, room)
			sizes[i] = fmt.Sprintf("%s (%d)", roomLabel(room), len(recs))
		}
		rows = append(rows, []string{
			e.Label(),
			fmt.Sprint(len(rooms)),
			fmt.Sprint(ros.Len(e)),
			strings.Join(sizes, ", "),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(inkMuted)).
		Headers("Event", "Rooms", "Students", "Room (students)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return styleAccent
			case col == 3:
				return styleMuted.Width(48)
			}
			return styleValue
		}).
		Render()
}
