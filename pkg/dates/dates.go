// Package dates resolves calendar dates in the operation's single configured
// timezone. The ledger stores and filters by calendar date, never timestamp,
// so every "today" decision must go through one Clock to avoid day-boundary
// drift between callers.
package dates

import (
	"fmt"
	"time"
)

// Layout is the canonical wire and storage format for calendar dates.
const Layout = "2006-01-02"

// Clock resolves calendar dates in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock builds a Clock for the named IANA timezone.
func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixedClock pins the clock to a reference instant. Test constructor.
func NewFixedClock(timezone string, at time.Time) (*Clock, error) {
	c, err := NewClock(timezone)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return at }
	return c, nil
}

// Today returns the current calendar date in the clock's location.
func (c *Clock) Today() string {
	return c.now().In(c.loc).Format(Layout)
}

// Tomorrow returns the calendar date after today in the clock's location.
func (c *Clock) Tomorrow() string {
	return c.now().In(c.loc).AddDate(0, 0, 1).Format(Layout)
}

// SpanEndingToday returns the inclusive sequence of n calendar dates ending
// today, oldest first. n < 1 yields a single-day span.
func (c *Clock) SpanEndingToday(n int) []string {
	if n < 1 {
		n = 1
	}
	end := c.now().In(c.loc)
	span := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		span = append(span, end.AddDate(0, 0, -i).Format(Layout))
	}
	return span
}

// Parse validates a calendar date string in the canonical layout.
func Parse(value string) (string, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return "", fmt.Errorf("invalid calendar date %q: %w", value, err)
	}
	return t.Format(Layout), nil
}
