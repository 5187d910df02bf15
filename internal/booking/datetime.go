package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Business hours: bookings start at 08:00 and the last slot is 17:xx.
const (
	openingHour = 8
	closingHour = 18
)

// maxAdvanceDays is how far ahead a booking may be placed.
const maxAdvanceDays = 365

const (
	dateCanonicalLayout = "2006-01-02"

	msgPastDate     = "Appointment date cannot be in the past. Please choose a future date."
	msgTooFarAhead  = "Appointments can only be booked up to 1 year in advance."
	msgBeforeOpen   = "Appointments are available from 8:00 AM onwards."
	msgAfterClosing = "Appointments are available until 6:00 PM."
)

// Words and trailing fragments stripped before date parsing, so a combined
// phrase like "tomorrow at 3pm" degrades to its date portion.
var (
	timeOfDayWords = []string{"morning", "afternoon", "evening", "night", "noon", "midday"}

	trailingAtTime  = regexp.MustCompile(`\bat\s+\d.*$`)
	trailingClock   = regexp.MustCompile(`\d{1,2}\s*(?:am|pm).*$`)
	multipleSpaces  = regexp.MustCompile(`\s+`)
	nextWeekdayExpr = regexp.MustCompile(`^next\s+([a-z]+)$`)
	thisWeekdayExpr = regexp.MustCompile(`^this\s+([a-z]+)$`)
)

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// Explicit date layouts, month-day ordering preferred. Layouts without a year
// default to the current year. This is a fixed table rather than a fuzzy
// parser: the past/advance-window rules depend on knowing exactly which
// inputs are accepted.
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2006-01-02", true},
	{"2006/01/02", true},
	{"01/02/2006", true},
	{"1/2/2006", true},
	{"01-02-2006", true},
	{"1-2-2006", true},
	{"January 2, 2006", true},
	{"January 2 2006", true},
	{"Jan 2, 2006", true},
	{"Jan 2 2006", true},
	{"2 January 2006", true},
	{"2 Jan 2006", true},
	{"January 2", false},
	{"Jan 2", false},
	{"2 January", false},
	{"2 Jan", false},
	{"01/02", false},
	{"1/2", false},
}

// ParseDate converts a natural-language date expression to canonical
// YYYY-MM-DD, evaluated against the current clock.
func ParseDate(raw string) Result {
	return ParseDateAt(raw, time.Now())
}

// ParseDateAt is ParseDate with an injectable clock.
func ParseDateAt(raw string, now time.Time) Result {
	today := truncateToDay(now)
	text := normalizeDateText(raw)

	if date, ok := resolveRelativeDate(text, today); ok {
		return checkDateWindow(date, today)
	}

	if date, ok := parseLayoutDate(text, today); ok {
		return checkDateWindow(date, today)
	}

	return reject("Could not understand '%s'. Please use a date like 'tomorrow', 'next Monday', or 'YYYY-MM-DD'.", strings.TrimSpace(raw))
}

// normalizeDateText lowercases, strips time-of-day words and trailing time
// fragments, and collapses whitespace.
func normalizeDateText(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = trailingAtTime.ReplaceAllString(text, "")
	text = trailingClock.ReplaceAllString(text, "")
	for _, word := range timeOfDayWords {
		text = strings.ReplaceAll(text, word, "")
	}
	return strings.TrimSpace(multipleSpaces.ReplaceAllString(text, " "))
}

func resolveRelativeDate(text string, today time.Time) (time.Time, bool) {
	switch text {
	case "", "today", "now":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "day after tomorrow":
		return today.AddDate(0, 0, 2), true
	}

	if m := nextWeekdayExpr.FindStringSubmatch(text); m != nil {
		if wd, ok := weekdayNames[m[1]]; ok {
			// Strictly future: landing on today's weekday jumps a full week.
			offset := (int(wd) - int(today.Weekday()) + 7) % 7
			if offset == 0 {
				offset = 7
			}
			return today.AddDate(0, 0, offset), true
		}
	}

	if m := thisWeekdayExpr.FindStringSubmatch(text); m != nil {
		if wd, ok := weekdayNames[m[1]]; ok {
			// Today counts as a match for "this <weekday>".
			offset := (int(wd) - int(today.Weekday()) + 7) % 7
			return today.AddDate(0, 0, offset), true
		}
	}

	return time.Time{}, false
}

func parseLayoutDate(text string, today time.Time) (time.Time, bool) {
	normalized := titleCaseMonths(text)
	for _, candidate := range dateLayouts {
		parsed, err := time.ParseInLocation(candidate.layout, normalized, today.Location())
		if err != nil {
			continue
		}
		if !candidate.hasYear {
			parsed = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, today.Location())
		}
		// A past date in the current year is assumed to mean next year.
		if parsed.Before(today) && parsed.Year() == today.Year() {
			parsed = parsed.AddDate(1, 0, 0)
		}
		return parsed, true
	}
	return time.Time{}, false
}

func checkDateWindow(date, today time.Time) Result {
	if date.Before(today) {
		return reject(msgPastDate)
	}
	if date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return reject(msgTooFarAhead)
	}
	return accept(date.Format(dateCanonicalLayout))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// titleCaseMonths capitalizes month-name tokens so lowercased input still
// matches time package layouts.
func titleCaseMonths(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		trimmed := strings.TrimSuffix(w, ",")
		if len(trimmed) < 3 {
			continue
		}
		if _, err := time.Parse("January", titleCase(trimmed)); err == nil {
			words[i] = titleCase(trimmed) + w[len(trimmed):]
			continue
		}
		if _, err := time.Parse("Jan", titleCase(trimmed)); err == nil {
			words[i] = titleCase(trimmed) + w[len(trimmed):]
		}
	}
	return strings.Join(words, " ")
}

// Named day periods resolve to fixed canonical times.
var timePeriods = []struct {
	phrase string
	value  string
}{
	{"early morning", "08:00"},
	{"late morning", "11:00"},
	{"late afternoon", "16:00"},
	{"morning", "09:00"},
	{"noon", "12:00"},
	{"midday", "12:00"},
	{"afternoon", "14:00"},
	{"evening", "17:00"},
}

var (
	amPmExpr    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)$`)
	clock24Expr = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?$`)
)

// ParseTime converts a natural-language time expression to canonical 24-hour
// HH:MM, enforcing business hours.
func ParseTime(raw string) Result {
	text := strings.ToLower(strings.TrimSpace(raw))
	collapsed := multipleSpaces.ReplaceAllString(text, " ")

	for _, period := range timePeriods {
		if collapsed == period.phrase {
			return accept(period.value)
		}
	}

	// "2 pm" -> "2pm", "2.30pm" -> "2:30pm"
	compact := strings.ReplaceAll(collapsed, " ", "")
	compact = strings.ReplaceAll(compact, ".", ":")

	if m := amPmExpr.FindStringSubmatch(compact); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 {
			if m[3] == "pm" && hour != 12 {
				hour += 12
			}
			if m[3] == "am" && hour == 12 {
				hour = 0
			}
			return checkBusinessHours(hour, minute)
		}
	}

	if m := clock24Expr.FindStringSubmatch(compact); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour <= 23 {
			return checkBusinessHours(hour, minute)
		}
	}

	return reject("Could not understand '%s'. Please use format like '2pm', '14:30', or 'afternoon'.", strings.TrimSpace(raw))
}

func checkBusinessHours(hour, minute int) Result {
	if hour < openingHour {
		return reject(msgBeforeOpen)
	}
	if hour >= closingHour {
		return reject(msgAfterClosing)
	}
	return accept(twoDigit(hour) + ":" + twoDigit(minute))
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
