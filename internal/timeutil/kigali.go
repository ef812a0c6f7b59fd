package timeutil

import (
	"time"
)

// Station is the local zone of the washing stations (Central Africa Time, UTC+2).
var Station *time.Location

func init() {
	var err error
	Station, err = time.LoadLocation("Africa/Kigali")
	if err != nil {
		Station = time.FixedZone("CAT", 2*60*60)
	}
}

// Now returns the current time in station time.
func Now() time.Time {
	return time.Now().In(Station)
}

func ToStation(t time.Time) time.Time {
	return t.In(Station)
}

// ParseDate accepts a plain date or an RFC 3339 timestamp. Plain dates are
// read in station time.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, Station); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(Station), nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(Station), nil
}

// StartOfDay returns 00:00:00 in station time for the given instant.
func StartOfDay(t time.Time) time.Time {
	s := t.In(Station)
	return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, Station)
}

// EndOfDay returns the last nanosecond of the station-time day.
func EndOfDay(t time.Time) time.Time {
	s := t.In(Station)
	return time.Date(s.Year(), s.Month(), s.Day(), 23, 59, 59, 999999999, Station)
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
)
