package services

import (
	"testing"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastExecuted time.Time
		want         bool
	}{
		{
			name:         "never executed - is due",
			lastExecuted: time.Time{},
			want:         true,
		},
		{
			name:         "executed today - not due",
			lastExecuted: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "executed yesterday - is due",
			lastExecuted: time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := core.RecurringTransaction{Frequency: core.Daily, LastExecutedDate: tt.lastExecuted}
			got := checker.IsDue(rt, now)
			if got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	// 2024-01-15 is a Monday.
	monday := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		dayOfWeek    int
		lastExecuted time.Time
		now          time.Time
		want         bool
	}{
		{
			name:         "matching weekday never executed - is due",
			dayOfWeek:    1,
			lastExecuted: time.Time{},
			now:          monday,
			want:         true,
		},
		{
			name:         "wrong weekday - not due",
			dayOfWeek:    5,
			lastExecuted: time.Time{},
			now:          monday,
			want:         false,
		},
		{
			name:         "already executed today - not due",
			dayOfWeek:    1,
			lastExecuted: time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC),
			now:          monday,
			want:         false,
		},
		{
			name:         "executed previous week - is due",
			dayOfWeek:    1,
			lastExecuted: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
			now:          monday,
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := core.RecurringTransaction{
				Frequency:        core.Weekly,
				DayOfWeek:        tt.dayOfWeek,
				LastExecutedDate: tt.lastExecuted,
			}
			got := checker.IsDue(rt, tt.now)
			if got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name         string
		dayOfMonth   int
		lastExecuted time.Time
		now          time.Time
		want         bool
	}{
		{
			name:         "never executed and past target day - is due",
			dayOfMonth:   10,
			lastExecuted: time.Time{},
			now:          time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "never executed and before target day - not due",
			dayOfMonth:   20,
			lastExecuted: time.Time{},
			now:          time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "executed this month - not due",
			dayOfMonth:   10,
			lastExecuted: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "new month on target day - is due",
			dayOfMonth:   15,
			lastExecuted: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "target day 31 in February - clamps to month end",
			dayOfMonth:   31,
			lastExecuted: time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "no day configured defaults to first of month",
			dayOfMonth:   0,
			lastExecuted: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := core.RecurringTransaction{
				Frequency:        core.Monthly,
				DayOfMonth:       tt.dayOfMonth,
				LastExecutedDate: tt.lastExecuted,
			}
			got := checker.IsDue(rt, tt.now)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker_IsDue(t *testing.T) {
	checker := YearlyChecker{}

	tests := []struct {
		name         string
		createdAt    time.Time
		lastExecuted time.Time
		now          time.Time
		want         bool
	}{
		{
			name:         "never executed past anniversary - is due",
			createdAt:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			lastExecuted: time.Time{},
			now:          time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "executed this year - not due",
			createdAt:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			lastExecuted: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "new year before anniversary month - not due",
			createdAt:    time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			lastExecuted: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
			want:         false,
		},
		{
			name:         "new year on anniversary - is due",
			createdAt:    time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			lastExecuted: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
		{
			name:         "new year past anniversary month - is due",
			createdAt:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			lastExecuted: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			now:          time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := core.RecurringTransaction{
				Frequency:        core.Yearly,
				CreatedAt:        tt.createdAt,
				LastExecutedDate: tt.lastExecuted,
			}
			got := checker.IsDue(rt, tt.now)
			if got != tt.want {
				t.Errorf("YearlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		wantErr   bool
	}{
		{"daily", core.Daily, false},
		{"weekly", core.Weekly, false},
		{"monthly", core.Monthly, false},
		{"yearly", core.Yearly, false},
		{"unknown", core.Frequency("biweekly"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := GetDuenessChecker(tt.frequency)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetDuenessChecker() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && checker == nil {
				t.Error("GetDuenessChecker() returned nil checker")
			}
		})
	}
}
