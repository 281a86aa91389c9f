package domain

import (
	"fmt"
	"strconv"
	"time"
)

// NotesMap holds a trip's hourly notes keyed by NoteKey. It is always
// persisted as a whole: writers replace the entire map, so concurrent edits
// resolve to whichever writer persisted last.
type NotesMap map[string]string

// NoteKey builds the canonical key for the note at the given calendar date
// and hour of day, e.g. "2025-06-01-09". Keys are unique per (date, hour).
func NoteKey(date time.Time, hour int) string {
	return fmt.Sprintf("%s-%02d", date.Format("2006-01-02"), hour)
}

// ValidateNoteKey reports whether key is a well-formed day-hour key with the
// hour in [0, 23]. Returns ErrValidation otherwise.
func ValidateNoteKey(key string) error {
	const dateLayout = "2006-01-02"
	if len(key) != len(dateLayout)+3 || key[len(dateLayout)] != '-' {
		return fmt.Errorf("%w: malformed note key %q", ErrValidation, key)
	}
	if _, err := time.Parse(dateLayout, key[:len(dateLayout)]); err != nil {
		return fmt.Errorf("%w: invalid date in note key %q", ErrValidation, key)
	}
	hour, err := strconv.Atoi(key[len(dateLayout)+1:])
	if err != nil {
		return fmt.Errorf("%w: malformed note key %q", ErrValidation, key)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour out of range in note key %q", ErrValidation, key)
	}
	return nil
}

// Validate checks every key in the map. The first malformed key fails the
// whole map, since the map is persisted wholesale.
func (n NotesMap) Validate() error {
	for key := range n {
		if err := ValidateNoteKey(key); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the map. Callers that hand a NotesMap
// across a concurrency boundary must clone it first.
func (n NotesMap) Clone() NotesMap {
	if n == nil {
		return nil
	}
	out := make(NotesMap, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}
