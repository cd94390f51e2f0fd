// Package roster turns an uploaded CSV roster into per-event room groups.
//
// # Input
//
// Each CSV row carries ten positional columns:
//
//	id, team, first, last, speech room, speech time,
//	interview room, interview time, homeroom, seat
//
// Empty rows are skipped. Rows with one to nine columns are rejected with
// MALFORMED_ROW; columns past the tenth are ignored. Every value is trimmed.
//
// # Grouping
//
// [Extract] files each student under three events. Speech and interview
// records are keyed by their room and carry the slot time as HHMM. Objective
// records are keyed by homeroom and carry the seat label. Room keys keep
// ASCII digits only ([NormalizeRoom]), so "Rm 12B" groups with "12". A room
// without any digits becomes the empty key, which is a valid group.
//
// A [Roster] is immutable once built.
package roster

import (
	"cmp"
	"slices"

	"github.com/matzehuels/preslug/pkg/errors"
)

// Event is a competition event with its own slip layout.
type Event string

const (
	EventSpeech    Event = "speech"
	EventInterview Event = "interview"
	EventObjective Event = "objective"
)

// Events lists every event in display order.
var Events = []Event{EventSpeech, EventInterview, EventObjective}

// ParseEvent validates an event name.
func ParseEvent(s string) (Event, error) {
	for _, e := range Events {
		if string(e) == s {
			return e, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidEvent, "unknown event %q", s)
}

// Label returns the event name as printed on a slip.
func (e Event) Label() string {
	switch e {
	case EventSpeech:
		return "Speech"
	case EventInterview:
		return "Interview"
	case EventObjective:
		return "Objective"
	}
	return string(e)
}

// Record is one student's entry within an event group.
//
// Key is the sort key of the event: HHMM for speech and interview, the seat
// label for objective.
type Record struct {
	ID    string `json:"id"`
	First string `json:"first"`
	Last  string `json:"last"`
	Key   string `json:"key"`
}

// Roster maps event -> room -> records in upload order.
type Roster struct {
	groups map[Event]map[string][]Record
}

func newRoster() *Roster {
	r := &Roster{groups: make(map[Event]map[string][]Record, len(Events))}
	for _, e := range Events {
		r.groups[e] = make(map[string][]Record)
	}
	return r
}

func (r *Roster) add(e Event, room string, rec Record) {
	r.groups[e][room] = append(r.groups[e][room], rec)
}

// Rooms returns the room keys of an event, ordered numerically.
func (r *Roster) Rooms(e Event) []string {
	rooms := make([]string, 0, len(r.groups[e]))
	for room := range r.groups[e] {
		rooms = append(rooms, room)
	}
	slices.SortFunc(rooms, compareRooms)
	return rooms
}

// Records returns a copy of the records of a room and whether the room
// exists for the event.
func (r *Roster) Records(e Event, room string) ([]Record, bool) {
	recs, ok := r.groups[e][room]
	if !ok {
		return nil, false
	}
	return slices.Clone(recs), true
}

// Len returns the number of records filed under an event.
func (r *Roster) Len(e Event) int {
	n := 0
	for _, recs := range r.groups[e] {
		n += len(recs)
	}
	return n
}

func compareRooms(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
