package roster

import (
	"encoding/base64"
	"encoding/json"

	"github.com/matzehuels/preslug/pkg/errors"
)

// wireRoster is the JSON form of a Roster. Map keys encode in sorted order,
// so equal rosters always encode to equal strings.
type wireRoster map[Event]map[string][]Record

// Encode serializes a roster to base64 JSON, suitable for a hidden form
// field that carries an upload to the print step.
func Encode(r *Roster) (string, error) {
	data, err := json.Marshal(wireRoster(r.groups))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode roster")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a roster produced by Encode.
func Decode(s string) (*Roster, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode roster")
	}
	var w wireRoster
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode roster")
	}

	r := newRoster()
	for e, rooms := range w {
		if _, err := ParseEvent(string(e)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode roster")
		}
		for room, recs := range rooms {
			if room != NormalizeRoom(room) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "decode roster: invalid room key %q", room)
			}
			r.groups[e][room] = recs
		}
	}
	return r, nil
}
