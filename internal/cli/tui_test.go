package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/preslug/pkg/roster"
)

func press(p roomPicker, msgs ...tea.KeyMsg) (roomPicker, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = p.Update(msg)
		p = next.(roomPicker)
	}
	return p, cmd
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestRoomPickerNavigation(t *testing.T) {
	ros, _, err := roster.ReadCSV(strings.NewReader(rosterCSV))
	if err != nil {
		t.Fatal(err)
	}
	p := newRoomPicker(ros, roster.EventSpeech)
	if len(p.rooms) != 2 || p.rooms[0].key != "101" || p.rooms[0].students != 2 {
		t.Fatalf("rooms = %+v, want 101 (2) first", p.rooms)
	}

	p, _ = press(p, key(tea.KeyUp))
	if p.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", p.cursor)
	}
	p, _ = press(p, key(tea.KeyDown), typed("j"))
	if p.cursor != 1 {
		t.Errorf("cursor = %d after moving past the end, want 1", p.cursor)
	}
	if !strings.Contains(p.View(), "Select Speech Room") {
		t.Error("View lacks the title")
	}

	p, cmd := press(p, key(tea.KeyEnter))
	if p.selected == nil || p.selected.key != "102" {
		t.Errorf("selected = %+v, want room 102", p.selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestRoomPickerJump(t *testing.T) {
	p := roomPicker{height: 2}
	for _, k := range []string{"101", "102", "110", "201", "202"} {
		p.rooms = append(p.rooms, roomChoice{key: k})
	}

	tests := []struct {
		keys   []tea.KeyMsg
		cursor int
		offset int
	}{
		{[]tea.KeyMsg{typed("2")}, 3, 2},
		{[]tea.KeyMsg{typed("11")}, 2, 1},
		{[]tea.KeyMsg{typed("20"), typed("2")}, 4, 3},
		{[]tea.KeyMsg{typed("20"), typed("2"), key(tea.KeyBackspace), key(tea.KeyUp)}, 3, 3},
		{[]tea.KeyMsg{typed("9")}, 0, 0},
	}
	for _, tt := range tests {
		got, _ := press(p, tt.keys...)
		if got.cursor != tt.cursor || got.offset != tt.offset {
			t.Errorf("after %v: cursor, offset = %d, %d; want %d, %d", tt.keys, got.cursor, got.offset, tt.cursor, tt.offset)
		}
	}
}

func TestRoomPickerQuit(t *testing.T) {
	p := roomPicker{rooms: []roomChoice{{key: "1"}}, height: 5}
	for _, msg := range []tea.KeyMsg{key(tea.KeyEsc), typed("q")} {
		got, cmd := press(p, msg)
		if got.selected != nil {
			t.Errorf("%v should not select a room", msg)
		}
		if cmd == nil {
			t.Errorf("%v should quit", msg)
		}
	}
}

func TestRoomPickerEmpty(t *testing.T) {
	p, cmd := press(roomPicker{height: 5}, key(tea.KeyDown), key(tea.KeyEnter))
	if p.cursor != 0 || p.selected != nil || cmd == nil {
		t.Errorf("empty picker: cursor %d, selected %+v, quit %v", p.cursor, p.selected, cmd != nil)
	}
	if !strings.Contains(p.View(), "[0/0]") {
		t.Errorf("empty picker view = %q", p.View())
	}
}
