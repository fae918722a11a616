// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring rule dueness
// checking. Each frequency type (daily, weekly, monthly) has its own
// strategy that encapsulates the logic for determining if a rule is due
// on a given calendar date.

package services

import (
	"fmt"
	"time"

	"maymonee/internal/core"
)

// DuenessChecker is the strategy interface for checking if a recurring rule
// is due. Each implementation encapsulates the algorithm for a specific
// frequency type.
type DuenessChecker interface {
	// IsDue returns true if the rule should materialize a transaction on
	// the given date. The date is never before the rule's start date.
	IsDue(rule core.RecurringRule, on core.Date) bool
}

// DailyChecker implements DuenessChecker for daily recurring rules.
type DailyChecker struct{}

// IsDue returns true for every date from the start date on.
func (DailyChecker) IsDue(core.RecurringRule, core.Date) bool {
	return true
}

// WeeklyChecker implements DuenessChecker for weekly recurring rules.
type WeeklyChecker struct{}

// IsDue returns true when the date's weekday is one of the rule's selected
// weekdays. A rule with no selection runs on its start date's weekday.
func (WeeklyChecker) IsDue(rule core.RecurringRule, on core.Date) bool {
	days := rule.RecurDays
	if len(days) == 0 {
		days = []int{int(rule.Date.Weekday())}
	}
	weekday := int(on.Weekday())
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}

// MonthlyChecker implements DuenessChecker for monthly recurring rules.
type MonthlyChecker struct{}

// IsDue returns true when the date's day of month is one of the rule's
// selected days. A rule with no selection runs on its start date's day.
// Days past the end of a short month clamp to that month's last day.
func (MonthlyChecker) IsDue(rule core.RecurringRule, on core.Date) bool {
	dates := rule.RecurDates
	if len(dates) == 0 {
		dates = []int{rule.Date.Day()}
	}
	lastDay := lastDayOfMonth(on.Year(), on.Time.Month())
	day := on.Day()
	for _, d := range dates {
		if d > lastDay {
			d = lastDay
		}
		if d == day {
			return true
		}
	}
	return false
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// duenessStrategies maps frequency types to their corresponding checkers.
// This registry enables O(1) lookup and easy extension for new frequency types.
var duenessStrategies = map[core.RecurFrequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a frequency.
// Returns an error if the frequency is not supported.
func GetDuenessChecker(frequency core.RecurFrequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for new
// frequency types without modifying the registry.
func RegisterDuenessChecker(frequency core.RecurFrequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
