// Package datex canonicalizes date-like inputs into a calendar day with no
// time-of-day or zone. Date is the join key between tasks and days.
package datex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/daystreak/api/internal/pkg/apperr"
)

const Layout = "2006-01-02"

var layouts = []string{
	Layout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Date is a civil calendar day. The zero value means "no date".
type Date struct {
	t time.Time // always midnight UTC
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime keeps the civil day t has in its own location; the zone is
// dropped, not converted.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current civil day in loc (UTC when loc is nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Now().In(loc))
}

// Parse normalizes a string, time.Time or Date into a Date.
func Parse(v any) (Date, error) {
	switch x := v.(type) {
	case Date:
		if x.IsZero() {
			return Date{}, &apperr.InvalidDateError{Input: ""}
		}
		return x, nil
	case time.Time:
		if x.IsZero() {
			return Date{}, &apperr.InvalidDateError{Input: x.String()}
		}
		return FromTime(x), nil
	case *time.Time:
		if x == nil {
			return Date{}, &apperr.InvalidDateError{Input: "<nil>"}
		}
		return Parse(*x)
	case string:
		return parseString(x)
	case []byte:
		return parseString(string(x))
	default:
		return Date{}, &apperr.InvalidDateError{Input: fmt.Sprint(v)}
	}
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Date {
	d, err := parseString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseString(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &apperr.InvalidDateError{Input: s}
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, &apperr.InvalidDateError{Input: s}
}

// Range returns every day in [start, end], ascending. Empty when start is after end.
func Range(start, end Date) []Date {
	if start.After(end) {
		return nil
	}
	out := make([]Date, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysSince returns the number of calendar days from o to d.
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Value stores the day as YYYY-MM-DD so ordering works on text and date columns alike.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("datex: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	p, err := parseString(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	p, err := parseString(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = p
	return nil
}
