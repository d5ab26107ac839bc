package timer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	intervalPattern = regexp.MustCompile(`^every\s+(\d+)\s*(h|hr|hours?|m|min|minutes?|d|days?)\s*$`)
	dailyPattern    = regexp.MustCompile(`^every\s+day\s+at\s+(.+)$`)
	weekdayPattern  = regexp.MustCompile(`^every\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)(?:\s+at\s+(.+))?$`)
	atPattern       = regexp.MustCompile(`^at\s+(.+)$`)
	cronPattern     = regexp.MustCompile(`^cron\s+(.+)$`)

	ampmShort = regexp.MustCompile(`(?i)^(\d{1,2})\s*(am|pm)$`)
	ampmFull  = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(am|pm)$`)
	militime  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	weekdayIndex = map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday,
	}
)

// NextRun parses schedule and returns the next UTC fire instant after now.
// Recognized grammar:
//
//	every N(h|m|d)
//	every day at <time>
//	every <weekday> [at <time>]   (defaults to 09:00 UTC)
//	at <time>                     (one-shot)
//	cron <m h dom mon dow>
func NextRun(schedule string, now time.Time) (time.Time, error) {
	now = now.UTC()
	trimmed := strings.ToLower(strings.TrimSpace(schedule))

	if m := intervalPattern.FindStringSubmatch(trimmed); m != nil {
		amount, _ := strconv.Atoi(m[1])
		switch m[2][0] {
		case 'h':
			return now.Add(time.Duration(amount) * time.Hour), nil
		case 'm':
			return now.Add(time.Duration(amount) * time.Minute), nil
		case 'd':
			return now.Add(time.Duration(amount) * 24 * time.Hour), nil
		}
	}

	if m := dailyPattern.FindStringSubmatch(trimmed); m != nil {
		hour, minute, err := parseTime(m[1])
		if err != nil {
			return time.Time{}, err
		}
		candidate := atClock(now, hour, minute)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil
	}

	if m := weekdayPattern.FindStringSubmatch(trimmed); m != nil {
		targetDay := weekdayIndex[m[1]]
		hour, minute := 9, 0
		if m[2] != "" {
			var err error
			hour, minute, err = parseTime(m[2])
			if err != nil {
				return time.Time{}, err
			}
		}
		daysAhead := int(targetDay - now.Weekday())
		if daysAhead <= 0 {
			daysAhead += 7
		}
		candidate := atClock(now, hour, minute).AddDate(0, 0, daysAhead)
		return candidate, nil
	}

	if m := atPattern.FindStringSubmatch(trimmed); m != nil {
		hour, minute, err := parseTime(m[1])
		if err != nil {
			return time.Time{}, err
		}
		candidate := atClock(now, hour, minute)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil
	}

	if m := cronPattern.FindStringSubmatch(trimmed); m != nil {
		return nextCron(m[1], now)
	}

	return time.Time{}, fmt.Errorf("timer: no next run for schedule %q", schedule)
}

// IsOneShot reports whether schedule is an "at <time>" one-shot expression.
func IsOneShot(schedule string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(schedule)), "at ")
}

func atClock(now time.Time, hour, minute int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
}

func parseTime(raw string) (hour, minute int, err error) {
	raw = strings.TrimSpace(raw)

	if m := ampmShort.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		return normalizeAMPM(h, strings.ToLower(m[2])), 0, nil
	}
	if m := ampmFull.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return normalizeAMPM(h, strings.ToLower(m[3])), min, nil
	}
	if m := militime.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return h, min, nil
	}
	return 0, 0, fmt.Errorf("timer: unrecognized time %q", raw)
}

func normalizeAMPM(hour int, suffix string) int {
	isPM := suffix == "pm"
	if isPM && hour != 12 {
		hour += 12
	} else if !isPM && hour == 12 {
		hour = 0
	}
	return hour
}

// nextCron scans minute-by-minute, up to one year forward, for the next
// instant matching a standard 5-field cron expression (m h dom mon dow).
func nextCron(expr string, now time.Time) (time.Time, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return time.Time{}, fmt.Errorf("timer: cron expression %q must have 5 fields", expr)
	}

	validMinute, err := expandCronField(fields[0], 0, 59)
	if err != nil {
		return time.Time{}, err
	}
	validHour, err := expandCronField(fields[1], 0, 23)
	if err != nil {
		return time.Time{}, err
	}
	validDay, err := expandCronField(fields[2], 1, 31)
	if err != nil {
		return time.Time{}, err
	}
	validMonth, err := expandCronField(fields[3], 1, 12)
	if err != nil {
		return time.Time{}, err
	}
	validWeekday, err := expandCronField(fields[4], 0, 6)
	if err != nil {
		return time.Time{}, err
	}

	candidate := now.Truncate(time.Minute).Add(time.Minute)
	const oneYearInMinutes = 525960
	for i := 0; i < oneYearInMinutes; i++ {
		if validMinute[candidate.Minute()] && validHour[candidate.Hour()] &&
			validDay[candidate.Day()] && validMonth[int(candidate.Month())] &&
			validWeekday[int(candidate.Weekday())] {
			return candidate, nil
		}
		candidate = candidate.Add(time.Minute)
	}
	return time.Time{}, fmt.Errorf("timer: no matching time found for cron expression %q within one year", expr)
}

func expandCronField(field string, lo, hi int) (map[int]bool, error) {
	out := make(map[int]bool)

	if field == "*" {
		for i := lo; i <= hi; i++ {
			out[i] = true
		}
		return out, nil
	}
	if base, step, ok := strings.Cut(field, "/"); ok {
		start := lo
		if base != "*" {
			v, err := strconv.Atoi(base)
			if err != nil {
				return nil, fmt.Errorf("timer: invalid cron field %q", field)
			}
			start = v
		}
		n, err := strconv.Atoi(step)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("timer: invalid cron step %q", field)
		}
		for i := start; i <= hi; i += n {
			out[i] = true
		}
		return out, nil
	}
	if a, b, ok := strings.Cut(field, "-"); ok {
		lo2, err1 := strconv.Atoi(a)
		hi2, err2 := strconv.Atoi(b)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("timer: invalid cron range %q", field)
		}
		for i := lo2; i <= hi2; i++ {
			out[i] = true
		}
		return out, nil
	}
	if strings.Contains(field, ",") {
		for _, part := range strings.Split(field, ",") {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("timer: invalid cron list %q", field)
			}
			out[v] = true
		}
		return out, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return nil, fmt.Errorf("timer: invalid cron field %q", field)
	}
	out[v] = true
	return out, nil
}
