package racetime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognized is returned when no layout or phrase matches the input.
var ErrUnrecognized = errors.New("unrecognized time")

var layouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02", "02.01.2006"}

// SinceParser turns list filters such as "2026-05-01", "yesterday" or
// "last friday" into an absolute lower bound.
type SinceParser struct {
	w   *when.Parser
	loc *time.Location
}

// NewSinceParser creates a parser resolving dates in loc. A nil loc means UTC.
func NewSinceParser(loc *time.Location) *SinceParser {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	return &SinceParser{w: w, loc: loc}
}

// Parse resolves input relative to now. Blank input yields nil.
func (p *SinceParser) Parse(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, p.loc); err == nil {
			return &t, nil
		}
	}

	r, err := p.w.Parse(strings.ToLower(input), now.In(p.loc))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnrecognized, input, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w %q", ErrUnrecognized, input)
	}
	t := r.Time.In(p.loc)
	return &t, nil
}
