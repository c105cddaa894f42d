package attendance

import (
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

// StandardDayMinutes is the regular working time of one recorded day (8 hours).
const StandardDayMinutes = 480

const (
	dayLabelLayout   = "Mon, 02 Jan 2006"
	monthLabelLayout = "January 2006"
)

// AggregateWorkMinutes groups computed records per employee into daily buckets (one per
// date, valued by WorkedMinutes) and monthly buckets (daily sums sharing YYYY-MM).
// lookup resolves display names; an empty name falls back to the employee ID.
func AggregateWorkMinutes(records []attendance.ComputedDailyRecord, lookup func(employeeID string) string) []attendance.EmployeeAggregation {
	daily := make(map[string]map[string]int)
	for _, r := range records {
		days, ok := daily[r.EmployeeID]
		if !ok {
			days = make(map[string]int)
			daily[r.EmployeeID] = days
		}
		days[r.DateKey()] += r.WorkedMinutes
	}

	out := make([]attendance.EmployeeAggregation, 0, len(daily))
	for employeeID, days := range daily {
		name := ""
		if lookup != nil {
			name = strings.TrimSpace(lookup(employeeID))
		}
		if name == "" {
			name = employeeID
		}

		agg := attendance.EmployeeAggregation{
			EmployeeID:   employeeID,
			EmployeeName: name,
			Daily:        dailyBuckets(days),
		}
		agg.Monthly = MonthlyTotals(agg.Daily)
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

func dailyBuckets(days map[string]int) []attendance.PeriodTotal {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]attendance.PeriodTotal, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, attendance.PeriodTotal{
			Key:     k,
			Label:   periodLabel(k, attendance.DateLayout, dayLabelLayout),
			Minutes: days[k],
		})
	}
	return buckets
}

// MonthlyTotals sums daily buckets by their YYYY-MM prefix, ordered by month.
func MonthlyTotals(daily []attendance.PeriodTotal) []attendance.PeriodTotal {
	return rollup(daily, len(attendance.MonthLayout), attendance.MonthLayout, monthLabelLayout)
}

// YearlyTotals sums monthly buckets by their YYYY prefix, ordered by year.
func YearlyTotals(monthly []attendance.PeriodTotal) []attendance.PeriodTotal {
	return rollup(monthly, 4, "2006", "2006")
}

// YearTotal sums the monthly buckets of one year ("2026").
func YearTotal(monthly []attendance.PeriodTotal, year string) int {
	total := 0
	for _, m := range monthly {
		if strings.HasPrefix(m.Key, year) {
			total += m.Minutes
		}
	}
	return total
}

func rollup(buckets []attendance.PeriodTotal, prefixLen int, keyLayout, labelLayout string) []attendance.PeriodTotal {
	sums := make(map[string]int)
	var keys []string
	for _, b := range buckets {
		if len(b.Key) < prefixLen {
			continue
		}
		k := b.Key[:prefixLen]
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] += b.Minutes
	}
	sort.Strings(keys)

	out := make([]attendance.PeriodTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, attendance.PeriodTotal{
			Key:     k,
			Label:   periodLabel(k, keyLayout, labelLayout),
			Minutes: sums[k],
		})
	}
	return out
}

func periodLabel(key, keyLayout, labelLayout string) string {
	t, err := time.Parse(keyLayout, key)
	if err != nil {
		return key
	}
	return t.Format(labelLayout)
}

// CountDays returns how many daily buckets fall under the given key prefix
// (a month "2026-10", a year "2026", or "" for all).
func CountDays(daily []attendance.PeriodTotal, prefix string) int {
	n := 0
	for _, d := range daily {
		if strings.HasPrefix(d.Key, prefix) {
			n++
		}
	}
	return n
}

// SplitMinutes classifies total minutes against recordedDays standard days.
// With no recorded day there is no baseline and every minute is regular.
func SplitMinutes(total, recordedDays, standardDayMinutes int) attendance.PeriodSplit {
	split := attendance.PeriodSplit{
		TotalMinutes: total,
		RecordedDays: recordedDays,
	}
	if recordedDays <= 0 {
		split.RegularMinutes = total
		return split
	}
	split.OvertimeMinutes = max(0, total-recordedDays*standardDayMinutes)
	split.RegularMinutes = total - split.OvertimeMinutes
	return split
}
