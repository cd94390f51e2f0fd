package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/preslug/pkg/roster"
)

var (
	pickerCursor = lipgloss.NewStyle().Foreground(inkOK).Bold(true)
	pickerRow    = lipgloss.NewStyle().Foreground(inkValue)
)

// roomChoice is one row of the room picker.
type roomChoice struct {
	key      string
	students int
}

// roomPicker is a bubbletea model listing the rooms of one event. Arrow
// keys move; typing digits jumps to the first room whose key starts with
// them, which is quicker than scrolling through a large school.
type roomPicker struct {
	event    roster.Event
	rooms    []roomChoice
	cursor   int
	offset   int
	height   int
	typed    string
	selected *roomChoice
}

func newRoomPicker(ros *roster.Roster, event roster.Event) roomPicker {
	p := roomPicker{event: event, height: 15}
	for _, key := range ros.Rooms(event) {
		recs, _ := ros.Records(event, key)
		p.rooms = append(p.rooms, roomChoice{key: key, students: len(recs)})
	}
	return p
}

func (p roomPicker) Init() tea.Cmd { return nil }

func (p roomPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.height = max(msg.Height-7, 5)
		p.scroll()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return p, tea.Quit
		case tea.KeyEnter:
			if len(p.rooms) > 0 {
				choice := p.rooms[p.cursor]
				p.selected = &choice
			}
			return p, tea.Quit
		case tea.KeyUp:
			p.move(-1)
		case tea.KeyDown:
			p.move(1)
		case tea.KeyBackspace:
			if p.typed != "" {
				p.typed = p.typed[:len(p.typed)-1]
			}
		case tea.KeyRunes:
			if string(msg.Runes) == "q" {
				return p, tea.Quit
			}
			p.typeRunes(msg.Runes)
		}
	}
	return p, nil
}

func (p *roomPicker) typeRunes(runes []rune) {
	for _, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			p.typed += string(r)
			p.jump()
		case r == 'k':
			p.move(-1)
		case r == 'j':
			p.move(1)
		}
	}
}

func (p *roomPicker) move(delta int) {
	p.typed = ""
	p.cursor = min(max(p.cursor+delta, 0), max(len(p.rooms)-1, 0))
	p.scroll()
}

// jump moves to the first room matching the digits typed so far.
func (p *roomPicker) jump() {
	for i, r := range p.rooms {
		if strings.HasPrefix(r.key, p.typed) {
			p.cursor = i
			p.scroll()
			return
		}
	}
}

func (p *roomPicker) scroll() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
}

func (p roomPicker) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select " + p.event.Label() + " Room"))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("↑/↓ move  0-9 jump  ⏎ select  esc quit"))
	b.WriteString("\n\n")

	end := min(p.offset+p.height, len(p.rooms))
	rows := make([][]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		mark := "  "
		if i == p.cursor {
			mark = "▸ "
		}
		rows = append(rows, []string{mark, roomLabel(p.rooms[i].key), fmt.Sprint(p.rooms[i].students)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(inkMuted)).
		Headers("", "Room", "Students").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case p.offset+row == p.cursor:
				return pickerCursor
			}
			return pickerRow
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	status := fmt.Sprintf("  [%d/%d]", min(p.cursor+1, len(p.rooms)), len(p.rooms))
	if p.typed != "" {
		status += "  room " + p.typed + "…"
	}
	b.WriteString(styleMuted.Render(status))
	return b.String()
}

// pickRoom runs the picker on the terminal. ok is false when the user quits
// without choosing.
func pickRoom(ros *roster.Roster, event roster.Event) (room string, ok bool, err error) {
	final, err := tea.NewProgram(newRoomPicker(ros, event)).Run()
	if err != nil {
		return "", false, err
	}
	p, isPicker := final.(roomPicker)
	if !isPicker || p.selected == nil {
		return "", false, nil
	}
	return p.selected.key, true, nil
}

// roomLabel shows the empty room key readably.
func roomLabel(key string) string {
	if key == "" {
		return "(none)"
	}
	return key
}
