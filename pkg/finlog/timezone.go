package finlog

import (
	"time"

	"finlog/pkg/analytics"
)

const dateLayout = "2006-01-02"

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}

func (c *Core) nowLocal() time.Time {
	return c.now().In(c.loc)
}

func (c *Core) todayISO() string {
	return c.nowLocal().Format(dateLayout)
}

// normalizeDate parses any accepted date form and returns it as YYYY-MM-DD
// in the core's location.
func (c *Core) normalizeDate(field, value string) (string, error) {
	t, err := analytics.ParseDate(value, c.loc)
	if err != nil {
		return "", validationError("invalid %s: %q", field, value)
	}
	return t.In(c.loc).Format(dateLayout), nil
}

func (c *Core) parseDate(value string) (time.Time, error) {
	return analytics.ParseDate(value, c.loc)
}

// PeriodSpec builds an analytics window from request strings. Either custom
// bound may be empty; a custom end covers its whole day.
func (c *Core) PeriodSpec(period, start, end string) (analytics.PeriodSpec, error) {
	spec := analytics.PeriodSpec{Period: period}
	if start != "" {
		t, err := c.parseDate(start)
		if err != nil {
			return spec, validationError("invalid start: %q", start)
		}
		spec.CustomStart = &t
	}
	if end != "" {
		t, err := c.parseDate(end)
		if err != nil {
			return spec, validationError("invalid end: %q", end)
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		spec.CustomEnd = &t
	}
	if spec.CustomStart != nil && spec.CustomEnd != nil && spec.CustomStart.After(*spec.CustomEnd) {
		return spec, validationError("start must not be after end")
	}
	return spec, nil
}
