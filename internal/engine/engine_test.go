package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-app/despensa/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeExpiryDays(t *testing.T) {
	testCases := []struct {
		name     string
		opened   time.Time
		value    int
		expected time.Time
	}{
		{"zero value means immediate expiry", date(2024, 3, 15), 0, date(2024, 3, 15)},
		{"single day", date(2024, 3, 15), 1, date(2024, 3, 16)},
		{"crosses month boundary", date(2024, 1, 30), 5, date(2024, 2, 4)},
		{"crosses leap day", date(2024, 2, 27), 3, date(2024, 3, 1)},
		{"crosses year boundary", date(2023, 12, 20), 20, date(2024, 1, 9)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeExpiry(tc.opened, tc.value, domain.UnitDays)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestComputeExpiryMonths30(t *testing.T) {
	got, err := ComputeExpiry(date(2024, 1, 1), 2, domain.UnitMonths30)
	require.NoError(t, err)
	// 60 fixed days, not two calendar months
	assert.Equal(t, date(2024, 3, 1), got)
}

func TestComputeExpiryMonthsCalendarClamps(t *testing.T) {
	testCases := []struct {
		name     string
		opened   time.Time
		months   int
		expected time.Time
	}{
		{"jan 31 into leap february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"jan 31 into non-leap february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"may 31 into june clamps to 30", date(2024, 5, 31), 1, date(2024, 6, 30)},
		{"mid-month keeps day", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"crosses year boundary", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"zero months", date(2024, 1, 31), 0, date(2024, 1, 31)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeExpiry(tc.opened, tc.months, domain.UnitMonthsCalendar)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestComputeExpiryUnknownUnit(t *testing.T) {
	_, err := ComputeExpiry(date(2024, 1, 1), 5, domain.ShelfLifeUnit("weeks"))
	require.Error(t, err)
	var ruleErr *DateRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, domain.ShelfLifeUnit("weeks"), ruleErr.Unit)
}

func TestComputeExpiryIgnoresTimeOfDay(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)

	morning := time.Date(2024, 3, 30, 1, 0, 0, 0, lisbon)
	// Crosses the spring DST transition; the fixed-day rule must still
	// land exactly one calendar day later.
	got, err := ComputeExpiry(morning, 1, domain.UnitDays)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 31), got)

	evening := time.Date(2024, 3, 30, 23, 59, 0, 0, lisbon)
	got2, err := ComputeExpiry(evening, 1, domain.UnitDays)
	require.NoError(t, err)
	assert.Equal(t, got, got2)
}

func TestDaysRemaining(t *testing.T) {
	testCases := []struct {
		name     string
		expiry   time.Time
		now      time.Time
		expected int
	}{
		{"two days ahead", date(2024, 1, 31), date(2024, 1, 29), 2},
		{"same day late vs early is zero",
			time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC),
			time.Date(2024, 6, 10, 0, 1, 0, 0, time.UTC), 0},
		{"already expired is negative", date(2024, 1, 10), date(2024, 1, 15), -5},
		{"tomorrow", date(2024, 1, 2), date(2024, 1, 1), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DaysRemaining(tc.expiry, tc.now))
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	testCases := []struct {
		days  int
		kind  UrgencyKind
		label string
	}{
		{-10, KindExpired, "Expirado há 10 dias"},
		{-1, KindExpired, "Expirado há 1 dias"},
		{0, KindWarning, "Expira hoje"},
		{1, KindWarning, "A expirar: 1 dia(s)"},
		{3, KindWarning, "A expirar: 3 dia(s)"},
		{4, KindOK, "Faltam 4 dias"},
		{120, KindOK, "Faltam 120 dias"},
	}

	for _, tc := range testCases {
		got := Classify(tc.days)
		assert.Equal(t, tc.kind, got.Kind, "days=%d", tc.days)
		assert.Equal(t, tc.label, got.Label, "days=%d", tc.days)
	}
}

func TestGroupAndSortOrdersByUrgency(t *testing.T) {
	now := date(2024, 1, 10)
	recs := []domain.ProductRecord{
		rec("a", domain.CategoryAlimentos, date(2024, 1, 1), 30),
		rec("b", domain.CategoryAlimentos, date(2024, 1, 1), 5),
		rec("c", domain.CategoryMedicamentos, date(2024, 1, 1), 2),
		rec("d", domain.CategoryAlimentos, date(2024, 1, 1), 12),
	}

	grouped, err := GroupAndSort(recs, now)
	require.NoError(t, err)

	require.Len(t, grouped[domain.CategoryAlimentos], 3)
	assert.Equal(t, "b", grouped[domain.CategoryAlimentos][0].Record.ID)
	assert.Equal(t, "d", grouped[domain.CategoryAlimentos][1].Record.ID)
	assert.Equal(t, "a", grouped[domain.CategoryAlimentos][2].Record.ID)
	require.Len(t, grouped[domain.CategoryMedicamentos], 1)
}

func TestGroupAndSortIsStable(t *testing.T) {
	now := date(2024, 1, 10)
	// all four share the same days-remaining
	recs := []domain.ProductRecord{
		rec("first", domain.CategoryOutros, date(2024, 1, 1), 15),
		rec("second", domain.CategoryOutros, date(2024, 1, 1), 15),
		rec("third", domain.CategoryOutros, date(2024, 1, 1), 15),
		rec("fourth", domain.CategoryOutros, date(2024, 1, 1), 15),
	}

	grouped, err := GroupAndSort(recs, now)
	require.NoError(t, err)

	items := grouped[domain.CategoryOutros]
	require.Len(t, items, 4)
	assert.Equal(t, "first", items[0].Record.ID)
	assert.Equal(t, "second", items[1].Record.ID)
	assert.Equal(t, "third", items[2].Record.ID)
	assert.Equal(t, "fourth", items[3].Record.ID)
}

func TestGroupAndSortKeepsUnknownCategories(t *testing.T) {
	now := date(2024, 1, 10)
	recs := []domain.ProductRecord{
		rec("x", domain.Category("Desconhecida"), date(2024, 1, 1), 5),
	}

	grouped, err := GroupAndSort(recs, now)
	require.NoError(t, err)
	require.Len(t, grouped[domain.Category("Desconhecida")], 1)
}

func TestGroupAndSortFailsOnBadUnit(t *testing.T) {
	bad := rec("x", domain.CategoryOutros, date(2024, 1, 1), 5)
	bad.ShelfLifeUnit = "fortnights"

	_, err := GroupAndSort([]domain.ProductRecord{bad}, date(2024, 1, 10))
	require.Error(t, err)
	var ruleErr *DateRuleError
	assert.ErrorAs(t, err, &ruleErr)
}

func TestEndToEndScenario(t *testing.T) {
	// opened 2024-01-01, 30 days shelf life, evaluated on 2024-01-29
	item, err := Evaluate(rec("e2e", domain.CategoryAlimentos, date(2024, 1, 1), 30), date(2024, 1, 29))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 31), item.Expiry)
	assert.Equal(t, 2, item.Days)
	assert.Equal(t, KindWarning, item.Urgency.Kind)
	assert.Equal(t, "A expirar: 2 dia(s)", item.Urgency.Label)
}

func rec(id string, cat domain.Category, opened time.Time, days int) domain.ProductRecord {
	return domain.ProductRecord{
		ID:             id,
		Name:           "item-" + id,
		Category:       cat,
		OpenedAt:       opened,
		ShelfLifeValue: days,
		ShelfLifeUnit:  domain.UnitDays,
	}
}
