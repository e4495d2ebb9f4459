// Package session decides whether the display is inside its configured
// daily window.
package session

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"PriceBoard/internal/logger"
)

// TimeOfDay is an hour and minute on a 24-hour clock. 24:00 is accepted as
// an alias for midnight at the end of the day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, errors.Wrapf(err, "invalid time of day %q", s)
	}
	if t.Hour == 24 && t.Minute == 0 {
		return t, nil
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, errors.Errorf("invalid time of day %q", s)
	}
	return t, nil
}

func (t TimeOfDay) minutes() int {
	return (t.Hour*60 + t.Minute) % (24 * 60)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Window is the half-open interval [Open, Close). A window whose close is
// earlier than its open runs past midnight. Open == Close means all day.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// Contains reports whether the wall-clock time of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	open, closeAt := w.Open.minutes(), w.Close.minutes()
	switch {
	case open == closeAt:
		return true
	case open < closeAt:
		return m >= open && m < closeAt
	default:
		return m >= open || m < closeAt
	}
}

// Clock evaluates a Window in a fixed time zone.
type Clock struct {
	window   Window
	location *time.Location
}

// NewClock resolves the named zone. If the zone cannot be loaded, the clock
// uses the system local time.
func NewClock(zone string, w Window, log *zap.Logger) *Clock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.OrNop(log).Warn("time zone unavailable, using local time", zap.String("zone", zone), zap.Error(err))
		loc = time.Local
	}
	return &Clock{window: w, location: loc}
}

// IsActive reports whether now is inside the session window.
func (c *Clock) IsActive(now time.Time) bool {
	return c.window.Contains(now.In(c.location))
}

// Location returns the zone the clock evaluates in.
func (c *Clock) Location() *time.Location {
	return c.location
}
