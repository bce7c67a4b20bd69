package services

import (
	"strings"
	"time"
)

// TimeRange is a closed [Start, End] window of absolute instants.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// jakarta is the calendar every day boundary in the engine is computed
// against, regardless of the server's wall-clock timezone.
var jakarta = loadJakarta()

func loadJakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func JakartaLocation() *time.Location {
	return jakarta
}

// ResolveTimeRange turns a symbolic period plus optional explicit dates into
// a concrete window anchored to the Asia/Jakarta calendar day. It is the
// single source of truth for "what day is it" across the engine.
func ResolveTimeRange(keyword, startDate, endDate string, now time.Time) (TimeRange, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		keyword = "today"
	}
	today := now.In(jakarta)

	switch keyword {
	case "today", "harian":
		return TimeRange{Start: startOfDay(today), End: endOfDay(today)}, nil
	case "7d", "mingguan":
		return daysBack(today, 6), nil
	case "30d", "bulanan":
		return daysBack(today, 29), nil
	case "90d":
		return daysBack(today, 89), nil
	case "custom":
		if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
			return TimeRange{}, ErrValidation("rentang custom membutuhkan tanggal mulai dan tanggal akhir")
		}
		start, err := parseDate(startDate)
		if err != nil {
			return TimeRange{}, err
		}
		end, err := parseDate(endDate)
		if err != nil {
			return TimeRange{}, err
		}
		tr := TimeRange{Start: startOfDay(start), End: endOfDay(end)}
		if tr.Start.After(tr.End) {
			return TimeRange{}, ErrValidation("tanggal mulai berada setelah tanggal akhir")
		}
		return tr, nil
	case "all":
		end := endOfDay(today)
		if strings.TrimSpace(endDate) != "" {
			parsed, err := parseDate(endDate)
			if err != nil {
				return TimeRange{}, err
			}
			end = endOfDay(parsed)
		}
		start := time.Date(1970, 1, 1, 0, 0, 0, 0, jakarta)
		if start.After(end) {
			return TimeRange{}, ErrValidation("tanggal mulai berada setelah tanggal akhir")
		}
		return TimeRange{Start: start, End: end}, nil
	default:
		return TimeRange{}, ErrValidation("rentang waktu tidak dikenal: " + keyword)
	}
}

func daysBack(today time.Time, days int) TimeRange {
	return TimeRange{
		Start: startOfDay(today.AddDate(0, 0, -days)),
		End:   endOfDay(today),
	}
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), jakarta)
	if err != nil {
		return time.Time{}, ErrValidation("format tanggal tidak valid: " + raw)
	}
	return parsed, nil
}

func startOfDay(t time.Time) time.Time {
	local := t.In(jakarta)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, jakarta)
}

func endOfDay(t time.Time) time.Time {
	local := t.In(jakarta)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999_000_000, jakarta)
}
