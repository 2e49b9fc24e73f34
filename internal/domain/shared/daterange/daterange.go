package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDay   = errors.New("daterange: date must use YYYY-MM-DD")
)

// DayLayout is the wire format of calendar days.
const DayLayout = "2006-01-02"

const day = 24 * time.Hour

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ParseDay parses a YYYY-MM-DD value into UTC midnight.
func ParseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return t, nil
}

// Parse builds a range from two YYYY-MM-DD values.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is NightCount for an already validated range.
func (dr DateRange) Nights() int {
	n, err := NightCount(dr.CheckIn, dr.CheckOut)
	if err != nil {
		return 0
	}
	return n
}

// NightCount returns ceil((checkOut - checkIn) / 1 day), never less than 1.
func NightCount(checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrInvalidRange
	}
	diff := checkOut.Sub(checkIn)
	nights := int(diff / day)
	if diff%day != 0 {
		nights++
	}
	if nights < 1 {
		nights = 1
	}
	return nights, nil
}

// ExpandToDays lists the calendar days in [checkIn, checkOut). The checkout day is
// never part of the result so it stays free for the next arrival.
func ExpandToDays(checkIn, checkOut time.Time) []time.Time {
	start := truncateDay(checkIn)
	end := truncateDay(checkOut)
	if !end.After(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start)/day))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Days is ExpandToDays for the receiver.
func (dr DateRange) Days() []time.Time {
	return ExpandToDays(dr.CheckIn, dr.CheckOut)
}

// Overlaps reports whether two half-open ranges intersect.
func Overlaps(a, b DateRange) bool {
	return a.CheckIn.Before(b.CheckOut) && b.CheckIn.Before(a.CheckOut)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return Overlaps(dr, other)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

func (dr DateRange) String() string {
	return dr.CheckIn.Format(DayLayout) + "/" + dr.CheckOut.Format(DayLayout)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
