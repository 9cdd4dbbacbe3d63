package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	serialRe   = regexp.MustCompile(`^\d{5}$`)
)

// genericLayouts are tried last, in order, for date spellings the explicit
// rules don't cover.
var genericLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

// serialEpoch is the spreadsheet serial-date epoch. Serial numbers count
// from 1900-01-01 but the format wrongly treats 1900 as a leap year, so
// converting back needs a two-day correction.
var serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToISO normalizes a heterogeneous date representation to YYYY-MM-DD.
// Returns "" when the value is unparseable.
//
// Precedence: ISO passthrough, day-first D/M/YYYY or D-M-YYYY, bare 5-digit
// spreadsheet serial, then the generic layout list.
func ToISO(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}

	if isoRe.MatchString(v) {
		return v
	}

	if m := dayFirstRe.FindStringSubmatch(v); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if !calendarDayExists(year, month, day) {
			return ""
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}

	if serialRe.MatchString(v) {
		serial, _ := strconv.Atoi(v)
		return serialEpoch.AddDate(0, 0, serial-2).Format("2006-01-02")
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return ""
}

// calendarDayExists rejects day-first matches like 31/13/2024 whose digits
// fit the pattern but name no real date.
func calendarDayExists(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
