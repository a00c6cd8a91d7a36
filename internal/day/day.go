// Package day provides Day, an immutable local calendar day used to bucket
// time records.
package day

import (
	"fmt"
	"time"
)

// MillisPerDay is the length of one day bucket.
const MillisPerDay int64 = 86_400_000

// Day is a single local calendar day. UTCOffset is the zone offset in minutes
// east of UTC. Two Days are equal iff all four fields match.
type Day struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Day       int `json:"day"`
	UTCOffset int `json:"utcOffset"`
}

// New returns a normalized Day, so New(2026, 1, 32, 0) is 2026-02-01.
func New(year, month, dayOfMonth, utcOffset int) Day {
	t := time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, zone(utcOffset))
	return Day{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), UTCOffset: utcOffset}
}

// FromTime returns the Day containing t in t's own location.
func FromTime(t time.Time) Day {
	_, offset := t.Zone()
	return Day{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), UTCOffset: offset / 60}
}

// FromMillis returns the Day containing the epoch millisecond ms at the given offset.
func FromMillis(ms int64, utcOffset int) Day {
	return FromTime(time.UnixMilli(ms).In(zone(utcOffset)))
}

// Today returns the current local day.
func Today() Day {
	return FromTime(time.Now())
}

// Parse reads a YYYY-MM-DD date at the given offset.
func Parse(s string, utcOffset int) (Day, error) {
	t, err := time.ParseInLocation("2006-01-02", s, zone(utcOffset))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns midnight of d in its fixed zone.
func (d Day) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, zone(d.UTCOffset))
}

// StartOfDayMillis returns the epoch milliseconds of local midnight.
func (d Day) StartOfDayMillis() int64 {
	return d.Time().UnixMilli()
}

// EndOfDayMillis returns the exclusive end of the day bucket.
func (d Day) EndOfDayMillis() int64 {
	return d.StartOfDayMillis() + MillisPerDay
}

// Contains reports whether ms lies in [start, start+MillisPerDay).
func (d Day) Contains(ms int64) bool {
	start := d.StartOfDayMillis()
	return ms >= start && ms < start+MillisPerDay
}

// AddDay returns the day n days after d (n may be negative).
func (d Day) AddDay(n int) Day {
	return New(d.Year, d.Month, d.Day+n, d.UTCOffset)
}

// Equal reports whether d and o are the same day at the same offset.
func (d Day) Equal(o Day) bool {
	return d == o
}

// Before reports whether d starts before o.
func (d Day) Before(o Day) bool {
	return d.StartOfDayMillis() < o.StartOfDayMillis()
}

// String formats d as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Week returns Monday through Sunday of the ISO week containing d.
func (d Day) Week() []Day {
	wd := int(d.Time().Weekday())
	if wd == 0 {
		wd = 7 // ISO: Sunday is the last day of the week
	}
	monday := d.AddDay(-(wd - 1))
	week := make([]Day, 7)
	for i := range week {
		week[i] = monday.AddDay(i)
	}
	return week
}

// ISOWeekLabel returns a label like "2026-W09".
func (d Day) ISOWeekLabel() string {
	year, week := d.Time().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func zone(offsetMinutes int) *time.Location {
	if offsetMinutes == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetMinutes*60)
}
