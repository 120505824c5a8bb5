package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-app/despensa/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(id string, cat domain.Category) *domain.ProductRecord {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	return &domain.ProductRecord{
		ID:             id,
		Name:           "Iogurte natural",
		Category:       cat,
		Subcategory:    "Laticínios",
		OpenedAt:       time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC),
		ShelfLifeValue: 7,
		ShelfLifeUnit:  domain.UnitDays,
		Usage:          "consumir fresco",
		DosePlan:       domain.DosePlan{Enabled: true, Dose: "1 comprimido", Freq: "2× por dia"},
		Lot:            "L-123",
		Store:          "Continente",
		Price:          "1.29",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("r1", domain.CategoryAlimentos)
	require.NoError(t, s.Upsert(ctx, rec))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestGetAbsentIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord("r1", domain.CategoryAlimentos)))
	require.NoError(t, s.Delete(ctx, "r1"))

	_, err := s.Get(ctx, "r1")
	assert.True(t, IsNotFound(err))

	// deleting again, and deleting something never stored, both succeed
	require.NoError(t, s.Delete(ctx, "r1"))
	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestUpsertReplacesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord("r1", domain.CategoryAlimentos)))
	require.NoError(t, s.Upsert(ctx, testRecord("r2", domain.CategoryAlimentos)))

	edited := testRecord("r1", domain.CategoryAlimentos)
	edited.Name = "Iogurte grego"
	require.NoError(t, s.Upsert(ctx, edited))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "upsert must never duplicate")

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Iogurte grego", got.Name)
}

func TestListByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord("a", domain.CategoryAlimentos)))
	require.NoError(t, s.Upsert(ctx, testRecord("b", domain.CategoryMedicamentos)))
	require.NoError(t, s.Upsert(ctx, testRecord("c", domain.CategoryAlimentos)))

	foods, err := s.ListByCategory(ctx, domain.CategoryAlimentos)
	require.NoError(t, err)
	require.Len(t, foods, 2)

	meds, err := s.ListByCategory(ctx, domain.CategoryMedicamentos)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "b", meds[0].ID)

	empty, err := s.ListByCategory(ctx, domain.CategoryOutros)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpsertMovesCategoryIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord("r1", domain.CategoryAlimentos)))

	moved := testRecord("r1", domain.CategoryOutros)
	moved.Subcategory = "Suplementos"
	require.NoError(t, s.Upsert(ctx, moved))

	foods, err := s.ListByCategory(ctx, domain.CategoryAlimentos)
	require.NoError(t, err)
	assert.Empty(t, foods, "stale index entry must be removed")

	others, err := s.ListByCategory(ctx, domain.CategoryOutros)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "r1", others[0].ID)
}

func TestDeleteCleansCategoryIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testRecord("r1", domain.CategoryAlimentos)))
	require.NoError(t, s.Delete(ctx, "r1"))

	foods, err := s.ListByCategory(ctx, domain.CategoryAlimentos)
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, testRecord("r1", domain.CategoryAlimentos)))
	require.NoError(t, s.Close())

	s2, err := OpenBolt(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Iogurte natural", got.Name)
}
