// Package models defines the cycle tracking entities. A Cycle is a contiguous
// run of days from a start date to an optional end date; each day may carry
// one recorded observation.
package models

import (
	"github.com/google/uuid"
)

// Observation is a single day's entry within a cycle. DayNumber is 1-based
// relative to the cycle's start date; Code is the canonical observation
// string, empty while the day is not yet recorded.
type Observation struct {
	DayNumber int    `json:"dayNumber"`
	Date      Date   `json:"date"`
	Code      string `json:"observation"`
}

// Filled reports whether the day has a recorded entry.
func (o Observation) Filled() bool { return o.Code != "" }

// Cycle is a contiguous span of tracked days. At most one cycle is open
// (EndDate nil) at any time; closed cycles are historical and addressed by
// explicit ID.
type Cycle struct {
	ID        uuid.UUID `json:"id"`
	StartDate Date      `json:"startDate"`
	EndDate   *Date     `json:"endDate"`

	// Observations are ordered by DayNumber and may sparsely cover only a
	// subset of the cycle's days.
	Observations []Observation `json:"days"`
}

// Open reports whether the cycle is still accepting new entries.
func (c *Cycle) Open() bool { return c.EndDate == nil }

// DayNumberFor maps a calendar date onto this cycle's 1-based day numbering.
// Dates before the start date yield values < 1.
func (c *Cycle) DayNumberFor(date Date) int {
	return date.DaysSince(c.StartDate) + 1
}

// DateForDay is the inverse of DayNumberFor.
func (c *Cycle) DateForDay(dayNumber int) Date {
	return c.StartDate.AddDays(dayNumber - 1)
}

// LastFilled returns the highest-numbered observation with a recorded entry.
func (c *Cycle) LastFilled() (Observation, bool) {
	for i := len(c.Observations) - 1; i >= 0; i-- {
		if c.Observations[i].Filled() {
			return c.Observations[i], true
		}
	}
	return Observation{}, false
}

// CurrentDay is the cycle-relative day number of today for an open cycle. For
// closed cycles it is the day number of the end date, the cycle's final
// length.
func (c *Cycle) CurrentDay(today Date) int {
	if c.EndDate != nil {
		return c.DayNumberFor(*c.EndDate)
	}
	n := c.DayNumberFor(today)
	if n < 1 {
		return 1
	}
	return n
}
