package journal

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidFilter is returned when a filter string does not parse.
var ErrInvalidFilter = errors.New("invalid change filter")

// ChangeFilter selects which changes replay takes. Position i in the
// change list is taken when bit i is set; positions past the end of the
// filter are not taken. A nil *ChangeFilter takes everything.
//
// The text form is a string of '0' and '1', optionally preceded by
// "N:" which stands for N leading '1's. "24:01011" takes the first 24
// changes, skips the 25th, takes the 26th, and so on.
type ChangeFilter struct {
	shouldTake []bool
}

// ParseFilter parses the text form of a filter. The empty string means
// "no filter" and yields nil: replay takes every change.
func ParseFilter(s string) (*ChangeFilter, error) {
	if s == "" {
		return nil, nil
	}
	f := &ChangeFilter{}
	bits := s
	if i := strings.Index(s, ":"); i >= 0 {
		prefix, rest := s[:i], s[i+1:]
		n, err := strconv.Atoi(prefix)
		if err != nil || n < 0 {
			return nil, errors.Wrapf(ErrInvalidFilter, "bad prefix %q", prefix)
		}
		for ; n > 0; n-- {
			f.shouldTake = append(f.shouldTake, true)
		}
		bits = rest
	}
	for _, ch := range bits {
		switch ch {
		case '1':
			f.shouldTake = append(f.shouldTake, true)
		case '0':
			f.shouldTake = append(f.shouldTake, false)
		default:
			return nil, errors.Wrapf(ErrInvalidFilter, "unexpected char %q", ch)
		}
	}
	return f, nil
}

// Take reports whether change i should be applied.
func (f *ChangeFilter) Take(i int) bool {
	if f == nil {
		return true
	}
	return i < len(f.shouldTake) && f.shouldTake[i]
}

// Len returns the number of positions the filter specifies.
func (f *ChangeFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.shouldTake)
}
