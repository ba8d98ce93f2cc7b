package domain

import "time"

const (
	DatetimeLayout     = "2006-01-02T15:04:05Z"
	OnlyDate           = "2006-01-02"
	DayMonthLayout     = "2 Jan"
	DatetimeZoneLayout = "2006-01-02 15:04:05.000 -0700"

	// DefaultTimezone is where the caregiver and patient live
	DefaultTimezone = "Asia/Jakarta"
)

// LoadLocation returns the named location, falling back to UTC when it is unknown
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

// BeginningOfDay returns midnight of the given date in loc
func BeginningOfDay(date time.Time, loc *time.Location) time.Time {
	date = date.In(loc)
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns the end of the day (23:59:59) of the given date in loc
func EndOfDay(date time.Time, loc *time.Location) time.Time {
	date = date.In(loc)
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}
