package analytics

import "time"

// Grouping is the time resolution of a series.
type Grouping string

const (
	GroupDay   Grouping = "day"
	GroupWeek  Grouping = "week"
	GroupMonth Grouping = "month"
	GroupYear  Grouping = "year"
)

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// ChooseGrouping picks a bucket size from the window span.
func ChooseGrouping(start, end time.Time) Grouping {
	days := end.Sub(start).Hours() / 24
	switch {
	case days > 365:
		return GroupMonth
	case days > 90:
		return GroupWeek
	default:
		return GroupDay
	}
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// bucketStart returns the representative date of the bucket containing t.
// Weeks start on Sunday.
func bucketStart(t time.Time, g Grouping) time.Time {
	day := StartOfDay(t)
	switch g {
	case GroupWeek:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case GroupMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	case GroupYear:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

func nextBucket(t time.Time, g Grouping) time.Time {
	switch g {
	case GroupWeek:
		return t.AddDate(0, 0, 7)
	case GroupMonth:
		return t.AddDate(0, 1, 0)
	case GroupYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func sameBucket(a, b time.Time, g Grouping) bool {
	return bucketStart(a, g).Equal(bucketStart(b.In(a.Location()), g))
}

func bucketLabel(t time.Time, g Grouping) string {
	switch g {
	case GroupWeek:
		return t.Format("Jan 02")
	case GroupMonth:
		return t.Format("Jan 2006")
	case GroupYear:
		return t.Format("2006")
	default:
		return t.Format("Jan 02")
	}
}

// maxBuckets bounds interval generation for absurdly long windows.
const maxBuckets = 5000

// Intervals returns the bucket start dates covering [start, end].
// It returns false when the interval is degenerate.
func Intervals(start, end time.Time, g Grouping) ([]time.Time, bool) {
	if end.Before(start) {
		return nil, false
	}
	var out []time.Time
	for cur := bucketStart(start, g); !cur.After(end); cur = nextBucket(cur, g) {
		out = append(out, cur)
		if len(out) > maxBuckets {
			return nil, false
		}
	}
	return out, len(out) > 0
}

// BuildSeries buckets entries between start and end. Each bucket re-runs
// ComputeTotals over the entries that share its day, week, month or year.
// A degenerate interval falls back to the two points start and end.
func BuildSeries(entries []Entry, start, end time.Time, g Grouping) []SeriesPoint {
	buckets, ok := Intervals(start, end, g)
	if !ok {
		buckets = []time.Time{start, end}
	}
	points := make([]SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		bucket := filterEntries(entries, func(e Entry) bool { return sameBucket(b, e.Date, g) })
		t := ComputeTotals(bucket)
		points = append(points, SeriesPoint{
			Date:     DateKey(b),
			Label:    bucketLabel(b, g),
			Income:   t.Income,
			Expenses: t.Expenses,
			Net:      t.Net,
		})
	}
	return points
}
