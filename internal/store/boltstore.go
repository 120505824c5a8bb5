package store

import (
	"bytes"
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/despensa-app/despensa/internal/domain"
)

var (
	bucketRecords     = []byte("products")
	bucketCategoryIdx = []byte("category_idx")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BoltStore is the default backend: a single bbolt file on the local
// device. Records live in the products bucket keyed by id; the category
// index bucket holds category\x00id keys maintained in the same write
// transaction as the record.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the store file and ensures both buckets
// exist.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "open %s: %v", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCategoryIdx)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(ErrUnavailable, "init buckets: %v", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func idxKey(cat domain.Category, id string) []byte {
	key := make([]byte, 0, len(cat)+1+len(id))
	key = append(key, cat...)
	key = append(key, 0)
	key = append(key, id...)
	return key
}

func (s *BoltStore) ListAll(ctx context.Context) ([]domain.ProductRecord, error) {
	var out []domain.ProductRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(_, v []byte) error {
			var rec domain.ProductRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "list records: %v", err)
	}
	return out, nil
}

func (s *BoltStore) ListByCategory(ctx context.Context, cat domain.Category) ([]domain.ProductRecord, error) {
	prefix := idxKey(cat, "")
	var out []domain.ProductRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketRecords)
		c := tx.Bucket(bucketCategoryIdx).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			id := k[len(prefix):]
			v := records.Get(id)
			if v == nil {
				// index entry without a record, skip
				continue
			}
			var rec domain.ProductRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "list category %s: %v", cat, err)
	}
	return out, nil
}

func (s *BoltStore) Get(ctx context.Context, id string) (*domain.ProductRecord, error) {
	var rec *domain.ProductRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRecords).Get([]byte(id))
		if v == nil {
			return nil
		}
		rec = new(domain.ProductRecord)
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "get %s: %v", id, err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *BoltStore) Upsert(ctx context.Context, rec *domain.ProductRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "encode %s: %v", rec.ID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketRecords)
		idx := tx.Bucket(bucketCategoryIdx)
		key := []byte(rec.ID)

		// Replacing in place may move the record between categories, so
		// the old index entry has to go first.
		if old := records.Get(key); old != nil {
			var prev domain.ProductRecord
			if err := json.Unmarshal(old, &prev); err == nil && prev.Category != rec.Category {
				if err := idx.Delete(idxKey(prev.Category, rec.ID)); err != nil {
					return err
				}
			}
		}
		if err := idx.Put(idxKey(rec.Category, rec.ID), nil); err != nil {
			return err
		}
		return records.Put(key, buf)
	})
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "upsert %s: %v", rec.ID, err)
	}
	return nil
}

// Delete removes the record if present. Deleting an absent id succeeds.
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(bucketRecords)
		key := []byte(id)
		old := records.Get(key)
		if old == nil {
			return nil
		}
		var prev domain.ProductRecord
		if err := json.Unmarshal(old, &prev); err == nil {
			if err := tx.Bucket(bucketCategoryIdx).Delete(idxKey(prev.Category, id)); err != nil {
				return err
			}
		}
		return records.Delete(key)
	})
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "delete %s: %v", id, err)
	}
	return nil
}
