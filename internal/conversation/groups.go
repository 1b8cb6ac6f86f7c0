package conversation

import "time"

// DayGroup is one calendar-day bucket of a displayed conversation.
type DayGroup struct {
	// Label is "Today", "Yesterday", or a formatted calendar date.
	Label string
	// Date is the midnight anchor of the bucket's day.
	Date time.Time
	// Messages are the bucket's records, timestamp-ascending.
	Messages []Record
}

const dateLabelFormat = "Jan 2, 2006"

// DayGroups partitions an already-ordered conversation view into calendar
// day buckets, chronologically ascending. Labels are resolved against now
// so "Today" and "Yesterday" track the viewer's clock.
func DayGroups(records []Record, now time.Time) []DayGroup {
	var groups []DayGroup
	for _, rec := range records {
		day := startOfDay(rec.Timestamp, now.Location())
		if len(groups) == 0 || !groups[len(groups)-1].Date.Equal(day) {
			groups = append(groups, DayGroup{
				Label: dayLabel(day, now),
				Date:  day,
			})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, rec)
	}
	return groups
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func dayLabel(day, now time.Time) string {
	today := startOfDay(now, now.Location())
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format(dateLabelFormat)
	}
}
