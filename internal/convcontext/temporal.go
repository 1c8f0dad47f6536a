package convcontext

import "time"

// temporalAt derives the temporal context of t in loc.
func temporalAt(t time.Time, loc *time.Location) *TemporalContext {
	local := t.In(loc)
	tc := &TemporalContext{
		TimeOfDay: timeOfDayForHour(local.Hour()),
		DayOfWeek: dayOfWeekFor(local.Weekday()),
		Season:    seasonForMonth(local.Month()),
	}
	if label, ok := specialDates[specialDate{month: int(local.Month()), day: local.Day()}]; ok {
		tc.IsSpecialDate = true
		tc.SpecialDate = label
	}
	return tc
}

func timeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour <= 11:
		return Morning
	case hour >= 12 && hour <= 16:
		return Afternoon
	case hour >= 17 && hour <= 20:
		return Evening
	case hour >= 21 && hour <= 23:
		return Night
	default:
		return LateNight
	}
}

func dayOfWeekFor(d time.Weekday) DayOfWeek {
	if d == time.Sunday || d == time.Saturday {
		return Weekend
	}
	return Weekday
}

// seasonForMonth uses the Northern-hemisphere calendar mapping.
func seasonForMonth(m time.Month) Season {
	switch {
	case m >= time.March && m <= time.May:
		return Spring
	case m >= time.June && m <= time.August:
		return Summer
	case m >= time.September && m <= time.November:
		return Autumn
	default:
		return Winter
	}
}
