// Package sheets plans the pages of an event's slips for one room.
//
// A plan is a list of [PageValues], one per printed page, in print order.
// Planning is pure: it sorts records and formats field values but draws
// nothing, so a plan that fails never produces a partial document.
// [Assemble] then feeds a plan to a [render.Composer].
//
// Objective slips print one page per student for each of seven subjects,
// subject-major, students by seat descending. Speech and interview slips
// print one page per judge for each student, students by slot time
// ascending. Ties keep roster order.
//
// [render.Composer]: github.com/matzehuels/preslug/pkg/render.Composer
package sheets

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/matzehuels/preslug/pkg/errors"
	"github.com/matzehuels/preslug/pkg/render"
	"github.com/matzehuels/preslug/pkg/roster"
)

// Field names of the slip form.
const (
	FieldName      = "Name"
	FieldTest      = "Test"
	FieldTeacher   = "Teacher"
	FieldDate      = "Date"
	FieldTestID    = "Test ID"
	FieldStudentID = "Student ID Number"
	FieldPeriod    = "Period"
)

// Judge slips carry this subject code in the last Test ID column.
const judgedTestCode = "9"

// PageValues maps field names to the values printed on one page.
type PageValues map[string]string

// Subject is one objective test.
type Subject struct {
	Number string // two characters, space padded
	Name   string
}

// Subjects lists the objective tests in print order.
var Subjects = []Subject{
	{" 1", "1 - Lang & Lit"},
	{" 2", "2 - Music"},
	{" 3", "3 - Science"},
	{" 4", "4 - Art"},
	{" 5", "5 - Math"},
	{" 6", "6 - Economics"},
	{"11", "11 - Social Science"},
}

// Options control planning.
type Options struct {
	// TestDate is printed in the Date field of objective slips.
	TestDate string
	// Judges is the number of pages per student for speech and interview.
	Judges int
}

// Plan builds the pages of one room of one event.
//
// A room absent from the roster fails with ROOM_NOT_FOUND. A room that
// exists but holds no records yields an empty plan.
func Plan(event roster.Event, r *roster.Roster, room string, opts Options) ([]PageValues, error) {
	if _, err := roster.ParseEvent(string(event)); err != nil {
		return nil, err
	}
	records, ok := r.Records(event, room)
	if !ok {
		return nil, errors.New(errors.ErrCodeRoomNotFound, "no %s room %q in roster", event, room)
	}
	if event == roster.EventObjective {
		return Objective(room, records, opts.TestDate)
	}
	return SpeechInterview(event, room, records, opts.Judges)
}

// Objective plans the objective test slips of a homeroom.
func Objective(room string, records []roster.Record, testDate string) ([]PageValues, error) {
	sorted, err := sortByKey(records, true)
	if err != nil {
		return nil, err
	}

	pages := make([]PageValues, 0, len(Subjects)*len(sorted))
	for _, subj := range Subjects {
		for _, rec := range sorted {
			pages = append(pages, PageValues{
				FieldName:      displayName(rec),
				FieldTest:      subj.Name,
				FieldTeacher:   "Room " + room,
				FieldDate:      testDate,
				FieldTestID:    "    " + subj.Number,
				FieldStudentID: "      " + rec.ID,
				FieldPeriod:    "Seat " + rec.Key,
			})
		}
	}
	return pages, nil
}

// SpeechInterview plans judged slips: judges pages per student.
func SpeechInterview(event roster.Event, room string, records []roster.Record, judges int) ([]PageValues, error) {
	if err := errors.ValidateJudges(judges); err != nil {
		return nil, err
	}
	sorted, err := sortByKey(records, false)
	if err != nil {
		return nil, err
	}

	pages := make([]PageValues, 0, judges*len(sorted))
	for _, rec := range sorted {
		slot, err := roster.DisplayTime(rec.Key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeParse, err, "student %s", rec.ID)
		}
		for j := 1; j <= judges; j++ {
			pages = append(pages, PageValues{
				FieldName:      displayName(rec),
				FieldTest:      event.Label(),
				FieldTeacher:   "Room " + room,
				FieldDate:      slot,
				FieldTestID:    fmt.Sprintf("%d    %s", j, judgedTestCode),
				FieldPeriod:    fmt.Sprintf("Judge %d", j),
				FieldStudentID: "      " + rec.ID,
			})
		}
	}
	return pages, nil
}

// Assemble composes every planned page in order.
func Assemble(c *render.Composer, pages []PageValues) error {
	for i, p := range pages {
		if err := c.Page(p); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return errors.Wrap(code, err, "page %d", i+1)
		}
	}
	return nil
}

func displayName(rec roster.Record) string {
	return fmt.Sprintf("%s %s (%s)", rec.First, rec.Last, rec.ID)
}

// sortByKey orders records by their integer key, keeping roster order for
// equal keys.
func sortByKey(records []roster.Record, descending bool) ([]roster.Record, error) {
	type keyed struct {
		rec roster.Record
		key int
	}
	ks := make([]keyed, len(records))
	for i, rec := range records {
		k, err := strconv.Atoi(rec.Key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSortKey, err,
				"student %s: sort key %q is not an integer", rec.ID, rec.Key)
		}
		ks[i] = keyed{rec: rec, key: k}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		if descending {
			return cmp.Compare(b.key, a.key)
		}
		return cmp.Compare(a.key, b.key)
	})

	out := make([]roster.Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out, nil
}
