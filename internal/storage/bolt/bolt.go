// Package bolt persists world snapshots in an embedded bbolt file.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tinymud/internal/game/db"
	"github.com/cory-johannsen/tinymud/internal/storage"
)

var (
	bucketMeta    = []byte("meta")
	bucketObjects = []byte("objects")

	keyCount   = []byte("count")
	keySavedAt = []byte("saved_at")
)

// Store is a storage.Store backed by a bbolt database file.
type Store struct {
	bolt   *bbolt.DB
	logger *zap.Logger
}

// Open opens or creates the bbolt file at path, creating parent directories.
//
// Postcondition: Returns an open Store or a non-nil error.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("bolt: creating %s: %w", dir, err)
		}
	}
	b, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	err = b.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}
	return &Store{bolt: b, logger: logger}, nil
}

// Path returns the filesystem path of the bbolt file.
func (s *Store) Path() string { return s.bolt.Path() }

// Load reads the saved world, or returns storage.ErrEmpty.
func (s *Store) Load(ctx context.Context) (*db.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var recs []storage.Record
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			obj, err := decodeObject(v)
			if err != nil {
				return fmt.Errorf("decode object %s: %w", keyToRef(k), err)
			}
			recs = append(recs, storage.Record{Ref: keyToRef(k), Object: *obj})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: load: %w", err)
	}
	d, err := storage.Assemble(recs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("world loaded", zap.String("path", s.Path()), zap.Int("objects", d.Len()))
	return d, nil
}

// Save replaces the stored world with d in a single transaction.
func (s *Store) Save(ctx context.Context, d *db.Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketObjects) != nil {
			if err := tx.DeleteBucket(bucketObjects); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketObjects)
		if err != nil {
			return err
		}
		for ref, o := range d.All() {
			data, err := encodeObject(o)
			if err != nil {
				return fmt.Errorf("encode object %s: %w", ref, err)
			}
			if err := b.Put(refToKey(ref), data); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyCount, refToKey(db.Ref(d.Len()))); err != nil {
			return err
		}
		stamp, err := time.Now().UTC().MarshalText()
		if err != nil {
			return err
		}
		return meta.Put(keySavedAt, stamp)
	})
	if err != nil {
		return fmt.Errorf("bolt: save: %w", err)
	}
	s.logger.Debug("world saved", zap.String("path", s.Path()), zap.Int("objects", d.Len()))
	return nil
}

// SavedAt returns when the world was last saved, or the zero time.
func (s *Store) SavedAt() (time.Time, error) {
	var t time.Time
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keySavedAt)
		if v == nil {
			return nil
		}
		return t.UnmarshalText(v)
	})
	return t, err
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.bolt.Close()
}

// refToKey converts a non-negative Ref to an 8-byte big-endian key so keys
// sort in ref order.
func refToKey(ref db.Ref) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(ref))
	return buf
}

func keyToRef(k []byte) db.Ref {
	return db.Ref(binary.BigEndian.Uint64(k))
}

func encodeObject(obj *db.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeObject(data []byte) (*db.Object, error) {
	var obj db.Object
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&obj); err != nil {
		return nil, err
	}
	return &obj, nil
}
