// Package engine derives expiry dates and urgency classifications from
// product records. Everything here is pure: the caller supplies "now",
// nothing reads the wall clock or touches storage.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/despensa-app/despensa/internal/domain"
)

// Classification thresholds in whole days. Exported so boundary behavior
// can be asserted directly.
const (
	// ExpiresTodayDays is the days-remaining value meaning "expires today".
	ExpiresTodayDays = 0
	// WarningThresholdDays is the largest days-remaining still classified
	// as a warning.
	WarningThresholdDays = 3
)

// UrgencyKind is the three-band urgency class of a record.
type UrgencyKind string

const (
	KindExpired UrgencyKind = "expired"
	KindWarning UrgencyKind = "warning"
	KindOK      UrgencyKind = "ok"
)

// Urgency pairs the urgency class with its display label.
type Urgency struct {
	Kind  UrgencyKind `json:"kind"`
	Label string      `json:"label"`
}

// DateRuleError signals a data-integrity bug: a shelf-life unit the
// engine does not recognize reached computation. It is never defaulted
// away; a record that cannot be computed fails loudly.
type DateRuleError struct {
	Unit domain.ShelfLifeUnit
}

func (e *DateRuleError) Error() string {
	return fmt.Sprintf("unrecognized shelf-life unit %q", e.Unit)
}

// startOfDay strips the time-of-day and timezone components, anchoring
// the calendar date at UTC midnight. All date arithmetic happens on these
// normalized values so DST transitions cannot shift results by a day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeExpiry converts openedAt + value + unit into the expiry date.
// A value of 0 yields expiry = openedAt for every rule.
func ComputeExpiry(openedAt time.Time, value int, unit domain.ShelfLifeUnit) (time.Time, error) {
	opened := startOfDay(openedAt)
	switch unit {
	case domain.UnitDays:
		return opened.Add(time.Duration(value) * 24 * time.Hour), nil
	case domain.UnitMonths30:
		// Fixed 30-day months: an approximation that diverges from
		// calendar months by up to a few days.
		return opened.Add(time.Duration(value) * 30 * 24 * time.Hour), nil
	case domain.UnitMonthsCalendar:
		return addMonthsClamped(opened, value), nil
	default:
		return time.Time{}, &DateRuleError{Unit: unit}
	}
}

// addMonthsClamped advances whole calendar months, keeping the day of
// month when the target month is long enough and clamping to its last
// day otherwise (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysRemaining returns the signed whole-day distance from now to expiry:
// positive before expiry, zero on the expiry day, negative after. Both
// operands are normalized to the start of their calendar day first, so
// the result depends only on calendar dates.
func DaysRemaining(expiry, now time.Time) int {
	e := startOfDay(expiry)
	n := startOfDay(now)
	return int(e.Sub(n).Round(24*time.Hour) / (24 * time.Hour))
}

// Classify maps days-remaining onto the three-band urgency classifier.
func Classify(days int) Urgency {
	switch {
	case days < ExpiresTodayDays:
		return Urgency{Kind: KindExpired, Label: fmt.Sprintf("Expirado há %d dias", -days)}
	case days == ExpiresTodayDays:
		return Urgency{Kind: KindWarning, Label: "Expira hoje"}
	case days <= WarningThresholdDays:
		return Urgency{Kind: KindWarning, Label: fmt.Sprintf("A expirar: %d dia(s)", days)}
	default:
		return Urgency{Kind: KindOK, Label: fmt.Sprintf("Faltam %d dias", days)}
	}
}

// Item is a record joined with its derived expiry state. Derived values
// are recomputed on every evaluation and never persisted.
type Item struct {
	Record  domain.ProductRecord `json:"record"`
	Expiry  time.Time            `json:"expiry"`
	Days    int                  `json:"days_remaining"`
	Urgency Urgency              `json:"urgency"`
}

// Evaluate derives the expiry state of a single record at "now".
func Evaluate(rec domain.ProductRecord, now time.Time) (Item, error) {
	expiry, err := ComputeExpiry(rec.OpenedAt, rec.ShelfLifeValue, rec.ShelfLifeUnit)
	if err != nil {
		return Item{}, err
	}
	days := DaysRemaining(expiry, now)
	return Item{Record: rec, Expiry: expiry, Days: days, Urgency: Classify(days)}, nil
}

// GroupAndSort partitions records by category and orders each bucket by
// ascending days-remaining, most urgent first. The sort is stable: ties
// keep the relative input order. Records with an unknown category form
// their own bucket rather than being dropped. Any record that cannot be
// computed fails the whole call.
func GroupAndSort(records []domain.ProductRecord, now time.Time) (map[domain.Category][]Item, error) {
	grouped := make(map[domain.Category][]Item)
	for _, rec := range records {
		item, err := Evaluate(rec, now)
		if err != nil {
			return nil, err
		}
		grouped[rec.Category] = append(grouped[rec.Category], item)
	}
	for cat := range grouped {
		items := grouped[cat]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Days < items[j].Days
		})
	}
	return grouped, nil
}
