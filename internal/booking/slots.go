package booking

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
)

// Grid is the set of start times a booking may use, from First to Last
// inclusive in Step increments.
type Grid struct {
	First time.Duration
	Last  time.Duration
	Step  time.Duration
}

func DefaultGrid() Grid {
	g, _ := NewGrid(models.FirstSlot, models.LastSlot, models.SlotMinutes)
	return g
}

func NewGrid(first, last string, stepMinutes int) (Grid, error) {
	f, err := parseClock(first)
	if err != nil {
		return Grid{}, err
	}
	l, err := parseClock(last)
	if err != nil {
		return Grid{}, err
	}
	if stepMinutes <= 0 {
		return Grid{}, errors.New("slot step must be positive")
	}
	if l < f {
		return Grid{}, fmt.Errorf("last slot %s is before first slot %s", last, first)
	}
	return Grid{First: f, Last: l, Step: time.Duration(stepMinutes) * time.Minute}, nil
}

// Slots lists the grid as "HH:MM" strings.
func (g Grid) Slots() []string {
	if g.Step <= 0 {
		return nil
	}
	var slots []string
	for t := g.First; t <= g.Last; t += g.Step {
		slots = append(slots, clock(t))
	}
	return slots
}

// Contains accepts "HH:MM" or "HH:MM:SS" values that fall on the grid.
func (g Grid) Contains(s string) bool {
	_, ok := g.Normalize(s)
	return ok
}

// Normalize returns the grid slot for s in "HH:MM" form, so "8:00" and
// "08:00:00" both become "08:00".
func (g Grid) Normalize(s string) (string, bool) {
	t, err := parseClock(s)
	if err != nil || g.Step <= 0 {
		return "", false
	}
	if t < g.First || t > g.Last || (t-g.First)%g.Step != 0 {
		return "", false
	}
	return clock(t), true
}

// MinBookingDate is the first date a booking may be made for: tomorrow in
// now's location.
func MinBookingDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// IsAfterToday reports whether date falls strictly after now's calendar day.
func IsAfterToday(date, now time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(MinBookingDate(now))
}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", s)
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
