// Package records is the write path in front of the store: validation
// before storage, id and timestamp stamping, and change notifications.
// The engine stays pure; this layer owns the clock for timestamps only.
package records

import (
	"context"
	"sort"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/despensa-app/despensa/internal/domain"
	"github.com/despensa-app/despensa/internal/engine"
	"github.com/despensa-app/despensa/internal/store"
)

// Bus topics published on successful writes. Subscribers receive the
// record id.
const (
	TopicSaved   = "record.saved"
	TopicDeleted = "record.deleted"
)

type Service struct {
	store store.Store
	bus   EventBus.Bus
	node  *snowflake.Node
}

func NewService(st store.Store, bus EventBus.Bus) (*Service, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "snowflake node")
	}
	return &Service{store: st, bus: bus, node: node}, nil
}

// Save validates and upserts a record. A record without an id is a
// creation: the id is generated and createdAt set. A record with an id is
// a full replacement edit: createdAt is preserved from the stored record
// and updatedAt refreshed. Returns the stored record.
func (s *Service) Save(ctx context.Context, rec domain.ProductRecord) (*domain.ProductRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	if rec.ID == "" {
		rec.ID = s.node.Generate().String()
		rec.CreatedAt = now
	} else {
		prev, err := s.store.Get(ctx, rec.ID)
		switch {
		case err == nil:
			rec.CreatedAt = prev.CreatedAt
		case store.IsNotFound(err):
			// upsert with a caller-chosen id behaves as a creation
			rec.CreatedAt = now
		default:
			return nil, err
		}
	}
	rec.UpdatedAt = now

	if err := s.store.Upsert(ctx, &rec); err != nil {
		return nil, err
	}
	if s.bus != nil {
		s.bus.Publish(TopicSaved, rec.ID)
	}
	zap.L().Info("record saved",
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
		zap.String("category", string(rec.Category)))
	return &rec, nil
}

// Get returns a single record; store.ErrNotFound passes through.
func (s *Service) Get(ctx context.Context, id string) (*domain.ProductRecord, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a record permanently. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(TopicDeleted, id)
	}
	zap.L().Info("record deleted", zap.String("id", id))
	return nil
}

// ListAll is a raw full scan with no derived state.
func (s *Service) ListAll(ctx context.Context) ([]domain.ProductRecord, error) {
	return s.store.ListAll(ctx)
}

// ListByCategory uses the store's secondary index.
func (s *Service) ListByCategory(ctx context.Context, cat domain.Category) ([]domain.ProductRecord, error) {
	return s.store.ListByCategory(ctx, cat)
}

// CategoryGroup is one category section of the overview, ordered most
// urgent first. Known categories appear even when empty, so the caller
// can tell "no items" from "category unknown".
type CategoryGroup struct {
	Category domain.Category `json:"category"`
	Items    []engine.Item   `json:"items"`
	Urgent   int             `json:"urgent"`
}

// Overview reads all records and derives the grouped, sorted display
// model at "now". Buckets for unknown categories found in the data are
// appended after the known ones.
func (s *Service) Overview(ctx context.Context, now time.Time) ([]CategoryGroup, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped, err := engine.GroupAndSort(recs, now)
	if err != nil {
		return nil, err
	}

	groups := make([]CategoryGroup, 0, len(grouped))
	seen := make(map[domain.Category]bool)
	for _, cat := range domain.Categories {
		groups = append(groups, newGroup(cat, grouped[cat]))
		seen[cat] = true
	}
	var unknown []domain.Category
	for cat := range grouped {
		if !seen[cat] {
			unknown = append(unknown, cat)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, cat := range unknown {
		groups = append(groups, newGroup(cat, grouped[cat]))
	}
	return groups, nil
}

func newGroup(cat domain.Category, items []engine.Item) CategoryGroup {
	urgent := 0
	for _, it := range items {
		if it.Days <= engine.WarningThresholdDays {
			urgent++
		}
	}
	if items == nil {
		items = []engine.Item{}
	}
	return CategoryGroup{Category: cat, Items: items, Urgent: urgent}
}
