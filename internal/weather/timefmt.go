package weather

import "time"

// localAt shifts a UTC epoch second by the location's UTC offset. The result
// is a wall-clock instant for that location; the host zone never leaks in.
func localAt(epoch int64, offsetSec int) time.Time {
	return time.Unix(epoch, 0).UTC().Add(time.Duration(offsetSec) * time.Second)
}

// FormatClock renders a localized 12-hour clock string, e.g. "02:30 PM".
func FormatClock(epoch int64, offsetSec int) string {
	return localAt(epoch, offsetSec).Format("03:04 PM")
}

// FormatDate renders the short calendar date used as the daily grouping key
// and as the date label in prompts, e.g. "Mon, Jan 5".
func FormatDate(epoch int64, offsetSec int) string {
	return localAt(epoch, offsetSec).Format("Mon, Jan 2")
}

// FormatHour renders the bare hour label used in the hourly prompt, e.g. "5 PM".
func FormatHour(epoch int64, offsetSec int) string {
	return localAt(epoch, offsetSec).Format("3 PM")
}
