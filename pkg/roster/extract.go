package roster

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/preslug/pkg/errors"
)

// Columns is the number of positional columns of a roster row.
const Columns = 10

const (
	colID = iota
	colTeam
	colFirst
	colLast
	colSpeechRoom
	colSpeechTime
	colInterviewRoom
	colInterviewTime
	colHomeroom
	colSeat
)

// Extract groups parsed rows into a Roster. It returns the number of
// students, which counts every non-empty row.
//
// Row numbers in errors are 1-based positions in rows.
func Extract(rows [][]string) (*Roster, int, error) {
	b := newBuilder()
	for i, row := range rows {
		if err := b.add(i+1, row); err != nil {
			return nil, 0, err
		}
	}
	return b.roster, b.students, nil
}

// ReadCSV parses and groups a CSV roster. Row numbers in errors are line
// numbers of the input.
func ReadCSV(r io.Reader) (*Roster, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	b := newBuilder()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeMalformedRow, err, "read csv")
		}
		line, _ := cr.FieldPos(0)
		if err := b.add(line, row); err != nil {
			return nil, 0, err
		}
	}
	return b.roster, b.students, nil
}

type builder struct {
	roster   *Roster
	students int
}

func newBuilder() *builder {
	return &builder{roster: newRoster()}
}

func (b *builder) add(n int, row []string) error {
	if len(row) == 0 {
		return nil
	}
	if len(row) < Columns {
		return errors.New(errors.ErrCodeMalformedRow,
			"row %d: expected %d columns, got %d", n, Columns, len(row))
	}

	var f [Columns]string
	for i := range f {
		f[i] = strings.TrimSpace(row[i])
	}

	speechTime, err := NormalizeTime(f[colSpeechTime])
	if err != nil {
		return errors.Wrap(errors.ErrCodeTimeParse, err, "row %d: speech time", n)
	}
	interviewTime, err := NormalizeTime(f[colInterviewTime])
	if err != nil {
		return errors.Wrap(errors.ErrCodeTimeParse, err, "row %d: interview time", n)
	}

	id, first, last := f[colID], f[colFirst], f[colLast]
	b.roster.add(EventSpeech, NormalizeRoom(f[colSpeechRoom]),
		Record{ID: id, First: first, Last: last, Key: speechTime})
	b.roster.add(EventInterview, NormalizeRoom(f[colInterviewRoom]),
		Record{ID: id, First: first, Last: last, Key: interviewTime})
	b.roster.add(EventObjective, NormalizeRoom(f[colHomeroom]),
		Record{ID: id, First: first, Last: last, Key: f[colSeat]})
	b.students++
	return nil
}

// NormalizeRoom keeps only the ASCII digits of a room label.
func NormalizeRoom(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// NormalizeTime converts a 24-hour "15:04:05" time to "1504".
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTimeParse, err, "parse time %q", s)
	}
	return t.Format("1504"), nil
}

// DisplayTime converts an HHMM key to a 12-hour clock time such as "2:05 PM".
func DisplayTime(hhmm string) (string, error) {
	t, err := time.Parse("1504", hhmm)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTimeParse, err, "parse slot time %q", hhmm)
	}
	return t.Format("3:04 PM"), nil
}
