package finlog

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finlog/pkg/analytics"
)

const fetchAnalyticsMessage = "failed to fetch analytics"

// ledger is everything the engine needs for one owner.
type ledger struct {
	entries   []analytics.Entry
	goals     []analytics.Goal
	snapshots []analytics.Snapshot
}

// loadEntries reads the owner's entries between start and end (YYYY-MM-DD,
// inclusive, empty for open) and runs them through the normalizer.
func (c *Core) loadEntries(ctx context.Context, ownerID, start, end string) ([]analytics.Entry, error) {
	where, params := buildEntryFilter(ownerID, EntryFilter{StartDate: start, EndDate: end})
	stored, err := c.queryEntries(ctx, entrySelect+where+" ORDER BY e.entry_date, e.created_at, e.id", params...)
	if err != nil {
		return nil, err
	}
	raw := make([]analytics.RawEntry, len(stored))
	for i, e := range stored {
		raw[i] = e.rawEntry()
	}
	entries, stats := analytics.NormalizeRows(raw, c.loc)
	if stats.BadDates > 0 || stats.BadAmounts > 0 {
		c.logger.Warn("entries dropped or coerced during normalization",
			"owner", ownerID, "rows", stats.Rows, "bad_dates", stats.BadDates, "bad_amounts", stats.BadAmounts)
	}
	return entries, nil
}

// fetchLedger loads entries, goals and snapshots concurrently and joins
// before returning. Any read failure fails the whole fetch.
func (c *Core) fetchLedger(ctx context.Context, ownerID, start, end string) (*ledger, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	var data ledger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := c.loadEntries(gctx, ownerID, start, end)
		data.entries = entries
		return err
	})
	g.Go(func() error {
		goals, err := c.GetGoals(gctx, ownerID)
		data.goals = c.analyticsGoals(goals)
		return err
	})
	g.Go(func() error {
		snapshots, err := c.GetSnapshots(gctx, ownerID, "", "")
		data.snapshots = c.analyticsSnapshots(snapshots)
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Error(fetchAnalyticsMessage, "owner", ownerID, "err", err)
		return nil, WrapError(ErrCodeDatabase, fetchAnalyticsMessage, err)
	}
	return &data, nil
}

// Analytics computes the analytics view for the requested period. The full
// ledger is loaded because goals overlapping the window may reach outside it.
func (c *Core) Analytics(ctx context.Context, ownerID string, spec analytics.PeriodSpec) (*analytics.Result, error) {
	data, err := c.fetchLedger(ctx, ownerID, "", "")
	if err != nil {
		return nil, err
	}
	if spec.Now.IsZero() {
		spec.Now = c.nowLocal()
	}
	result := analytics.ComputeAnalytics(data.entries, data.goals, data.snapshots, spec)
	return &result, nil
}

// Dashboard computes the yearly dashboard. A zero year means the current one.
func (c *Core) Dashboard(ctx context.Context, ownerID string, year int) (*analytics.DashboardYearData, error) {
	now := c.nowLocal()
	if year <= 0 {
		year = now.Year()
	}
	data, err := c.fetchLedger(ctx, ownerID, "", "")
	if err != nil {
		return nil, err
	}
	result := analytics.ComputeDashboard(data.entries, data.goals, data.snapshots, year, now)
	return &result, nil
}

// Heatmap builds the daily P&L calendar for year.
func (c *Core) Heatmap(ctx context.Context, ownerID string, year int) (*analytics.Heatmap, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if year <= 0 {
		year = c.nowLocal().Year()
	}
	entries, err := c.loadEntries(ctx, ownerID, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, fetchAnalyticsMessage, err)
	}
	heatmap := analytics.BuildHeatmapScale(entries, year, c.loc)
	return &heatmap, nil
}

// GoalProgress evaluates every goal of the owner.
func (c *Core) GoalProgress(ctx context.Context, ownerID string) ([]analytics.GoalProgress, error) {
	data, err := c.fetchLedger(ctx, ownerID, "", "")
	if err != nil {
		return nil, err
	}
	return analytics.EvaluateGoals(data.goals, data.entries, data.snapshots), nil
}

// Report summarizes entries between start and end inclusive. Empty dates
// default to the first day of the current month and today.
func (c *Core) Report(ctx context.Context, ownerID, start, end, title string) (*analytics.Report, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	now := c.nowLocal()
	if start == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.loc).Format(dateLayout)
	}
	if end == "" {
		end = now.Format(dateLayout)
	}
	start, err := c.normalizeDate("start", start)
	if err != nil {
		return nil, err
	}
	end, err = c.normalizeDate("end", end)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, validationError("start must not be after end")
	}
	if title == "" {
		title = fmt.Sprintf("Report %s to %s", start, end)
	}

	entries, err := c.loadEntries(ctx, ownerID, start, end)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, fetchAnalyticsMessage, err)
	}
	startT, _ := c.parseDate(start)
	endT, _ := c.parseDate(end)
	report := analytics.BuildReport(entries, startT, endT.AddDate(0, 0, 1).Add(-time.Nanosecond), title)
	return &report, nil
}
