package services

import (
	"fmt"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

// DuenessChecker decides whether a recurring transaction should be
// materialized now. Each frequency has its own implementation.
type DuenessChecker interface {
	IsDue(rt core.RecurringTransaction, now time.Time) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(rt core.RecurringTransaction, now time.Time) bool {
	if rt.LastExecutedDate.IsZero() {
		return true
	}
	return rt.LastExecutedDate.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker fires on the configured weekday (0 = Sunday), at most once
// per calendar day.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(rt core.RecurringTransaction, now time.Time) bool {
	if int(now.Weekday()) != rt.DayOfWeek {
		return false
	}
	if rt.LastExecutedDate.IsZero() {
		return true
	}
	daysSince := now.Sub(rt.LastExecutedDate).Hours() / 24
	return daysSince >= 1
}

// MonthlyChecker fires once per month when the target day is reached. A
// target day past the end of a short month clamps to its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(rt core.RecurringTransaction, now time.Time) bool {
	last := rt.LastExecutedDate
	if !last.IsZero() && last.Year() == now.Year() && last.Month() == now.Month() {
		return false
	}

	targetDay := rt.DayOfMonth
	if targetDay == 0 {
		targetDay = 1
	}
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}

	return now.Day() >= targetDay
}

// YearlyChecker fires once per year on the anniversary of creation.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(rt core.RecurringTransaction, now time.Time) bool {
	last := rt.LastExecutedDate
	if !last.IsZero() && last.Year() == now.Year() {
		return false
	}

	targetMonth := rt.CreatedAt.Month()
	targetDay := rt.CreatedAt.Day()

	if now.Month() < targetMonth {
		return false
	}
	if now.Month() == targetMonth {
		lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if targetDay > lastDayOfMonth {
			targetDay = lastDayOfMonth
		}
		return now.Day() >= targetDay
	}
	return true
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error for an
// unsupported one.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
