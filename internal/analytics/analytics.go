// Package analytics derives dashboard metrics from order records. Every
// function is pure: same input, same output, no hidden state, safe to
// recompute on every change notification.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"kitchen-admin/internal/domain"
)

// DateRange is inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// RevenueTotal sums order totals for orders matching status and the
// optional date range. Orders with a missing total are excluded and
// reported in skipped so the caller can log the data-quality signal;
// they never crash the aggregation.
func RevenueTotal(orders []domain.Order, status domain.Status, dateRange *DateRange) (total decimal.Decimal, skipped int) {
	total = decimal.Zero
	for _, o := range orders {
		if o.Status != status {
			continue
		}
		if dateRange != nil && !dateRange.contains(o.CreatedAt) {
			continue
		}
		if !o.Total.Valid {
			skipped++
			continue
		}
		total = total.Add(o.Total.Decimal)
	}
	return total, skipped
}

type DayCount struct {
	Day   time.Time
	Count int
}

// CountByDay buckets orders by calendar day (UTC) over the trailing window
// ending at now, zero-filled and ordered oldest to newest. window is a
// number of days including today.
func CountByDay(orders []domain.Order, window int, now time.Time) []DayCount {
	days := dayBuckets(window, now)
	counts := make(map[time.Time]int, window)
	for _, o := range orders {
		counts[day(o.CreatedAt)]++
	}
	out := make([]DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, DayCount{Day: d, Count: counts[d]})
	}
	return out
}

type DaySales struct {
	Day   time.Time
	Sales decimal.Decimal
}

// SalesByDay is CountByDay's revenue twin: per-day completed revenue for
// the sales chart. Orders with a missing total contribute zero.
func SalesByDay(orders []domain.Order, window int, now time.Time) []DaySales {
	days := dayBuckets(window, now)
	sales := make(map[time.Time]decimal.Decimal, window)
	for _, o := range orders {
		if o.Status != domain.StatusCompleted || !o.Total.Valid {
			continue
		}
		d := day(o.CreatedAt)
		sales[d] = sales[d].Add(o.Total.Decimal)
	}
	out := make([]DaySales, 0, len(days))
	for _, d := range days {
		s, ok := sales[d]
		if !ok {
			s = decimal.Zero
		}
		out = append(out, DaySales{Day: d, Sales: s})
	}
	return out
}

type ItemSales struct {
	Name     string
	Quantity int
}

// TopItemsBySales groups line items by name, sums quantities and returns
// the top limit names by quantity descending. The sort is stable, so ties
// keep first-encountered order; callers must not depend on tie order being
// deterministic across differently-ordered inputs.
func TopItemsBySales(items []domain.LineItem, limit int) []ItemSales {
	totals := make(map[string]int)
	var names []string
	for _, li := range items {
		if _, seen := totals[li.Name]; !seen {
			names = append(names, li.Name)
		}
		totals[li.Name] += li.Quantity
	}
	out := make([]ItemSales, 0, len(names))
	for _, n := range names {
		out = append(out, ItemSales{Name: n, Quantity: totals[n]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LineItems flattens the line items of a batch of orders, for feeding
// TopItemsBySales from order records.
func LineItems(orders []domain.Order) []domain.LineItem {
	var out []domain.LineItem
	for _, o := range orders {
		out = append(out, o.Items...)
	}
	return out
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayBuckets(window int, now time.Time) []time.Time {
	if window < 1 {
		window = 1
	}
	today := day(now)
	out := make([]time.Time, 0, window)
	for i := window - 1; i >= 0; i-- {
		out = append(out, today.AddDate(0, 0, -i))
	}
	return out
}
