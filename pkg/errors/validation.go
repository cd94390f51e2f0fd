package errors

import (
	"strconv"
	"unicode"
)

// MaxRoomKeyLength bounds room keys accepted from requests. Room keys end up
// in download filenames, so they are kept short and digits-only.
const MaxRoomKeyLength = 16

// MaxJudges bounds the judge count of a speech or interview render.
const MaxJudges = 9

// ValidateRoomKey validates a room key received from a caller.
// The rules match what roster extraction produces:
//   - digits only (the empty key is a legitimate unassigned room)
//   - at most MaxRoomKeyLength characters
func ValidateRoomKey(room string) error {
	if len(room) > MaxRoomKeyLength {
		return New(ErrCodeInvalidInput, "room key too long (max %d characters)", MaxRoomKeyLength)
	}
	for _, r := range room {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return New(ErrCodeInvalidInput, "room key must contain digits only: %q", room)
		}
	}
	return nil
}

// ValidateJudges checks a judge count.
// The judge number is written into a one-digit column of the test id, so
// counts above MaxJudges cannot be rendered.
func ValidateJudges(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "judge count must be at least 1, got %d", n)
	}
	if n > MaxJudges {
		return New(ErrCodeInvalidInput, "judge count must be at most %d, got %d", MaxJudges, n)
	}
	return nil
}

// ParseJudges parses a judge count from a request parameter.
// An empty string yields def.
func ParseJudges(s string, def int) (int, error) {
	if s == "" {
		return def, ValidateJudges(def)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "judge count %q is not a number", s)
	}
	return n, ValidateJudges(n)
}
