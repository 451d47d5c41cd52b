package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EarliestYear is the first year kept. Older reports predate the modern
// reporting era and are treated as outside the credible record.
const EarliestYear = 1947

const timestampLayout = "2006/01/02 15:04"

var (
	// sourceYearRe pulls the year out of a month page URL:
	// ".../webreports/ndxe201904.html" -> "2019".
	sourceYearRe = regexp.MustCompile(`ndxe(\d{4})`)
	// trailingTimeRe matches "H:MM" or "HH:MM" at the very end of the date text.
	trailingTimeRe = regexp.MustCompile(`(\d{1,2}):(\d{1,2})$`)
	leadingMonthRe = regexp.MustCompile(`^(\d{1,2})`)
	dayRe          = regexp.MustCompile(`/(\d{1,2})/`)
)

// ParseTimestamp rebuilds a report time from the raw date text and the year
// embedded in the source URL. Errors wrap [ErrMissingField],
// [ErrBeforeEarliestYear] or [ErrMalformedValue].
func ParseTimestamp(dateTime, source string) (time.Time, error) {
	dateTime = strings.TrimSpace(dateTime)

	ym := sourceYearRe.FindStringSubmatch(source)
	if ym == nil {
		return time.Time{}, fmt.Errorf("year: %w", ErrMissingField)
	}
	tm := trailingTimeRe.FindStringSubmatch(dateTime)
	if tm == nil {
		return time.Time{}, fmt.Errorf("time: %w", ErrMissingField)
	}

	year, _ := strconv.Atoi(ym[1])
	if year < EarliestYear {
		return time.Time{}, fmt.Errorf("year %d: %w", year, ErrBeforeEarliestYear)
	}

	mm := leadingMonthRe.FindStringSubmatch(dateTime)
	if mm == nil {
		return time.Time{}, fmt.Errorf("month: %w", ErrMissingField)
	}
	dm := dayRe.FindStringSubmatch(dateTime)
	if dm == nil {
		return time.Time{}, fmt.Errorf("day: %w", ErrMissingField)
	}

	assembled := fmt.Sprintf("%s/%s/%s %s:%s", ym[1], pad2(mm[1]), pad2(dm[1]), pad2(tm[1]), pad2(tm[2]))
	ts, err := time.ParseInLocation(timestampLayout, assembled, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", assembled, ErrMalformedValue)
	}
	return ts, nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
