// Package store sinks generated key/value pairs into a nutsdb bucket and
// reads them back as a generator.
package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nutsdb/nutsdb"

	"github.com/ahmedtd/kvgen/kvgen"
)

var ErrNotFound = errors.New("key not found")

// DefaultBatch is the number of puts committed per transaction when Load is
// given no batch size.
const DefaultBatch = 1000

type Store struct {
	db     *nutsdb.DB
	bucket string
}

// Open opens (or creates) the database in dir and makes sure bucket exists.
func Open(dir, bucket string) (*Store, error) {
	opts := nutsdb.DefaultOptions
	opts.Dir = dir
	opts.EntryIdxMode = nutsdb.HintKeyValAndRAMIdxMode
	opts.SegmentSize = 8 * 1024 * 1024

	db, err := nutsdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("while opening nutsdb in %s: %w", dir, err)
	}

	if err := db.Update(func(tx *nutsdb.Tx) error {
		if tx.ExistBucket(nutsdb.DataStructureBTree, bucket) {
			return nil
		}
		return tx.NewBucket(nutsdb.DataStructureBTree, bucket)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("while creating bucket %s: %w", bucket, err)
	}

	return &Store{db: db, bucket: bucket}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load drains it into the bucket, committing every batch puts.  Pairs are
// copied before they are handed to nutsdb, since it reuses its buffers.  The
// returned count only includes committed pairs.
func (s *Store) Load(it kvgen.Iterator, batch int) (int, error) {
	if batch < 1 {
		batch = DefaultBatch
	}

	loaded := 0
	for done := false; !done; {
		pending := 0
		err := s.db.Update(func(tx *nutsdb.Tx) error {
			for pending < batch {
				k, v, ok := it.Next()
				if !ok {
					done = true
					return nil
				}
				// 0 means no TTL.
				if err := tx.Put(s.bucket, bytes.Clone(k), bytes.Clone(v), 0); err != nil {
					return err
				}
				pending++
			}
			return nil
		})
		if err != nil {
			return loaded, fmt.Errorf("while loading batch after %d pairs: %w", loaded, err)
		}
		loaded += pending
	}
	return loaded, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *nutsdb.Tx) error {
		v, err := tx.Get(s.bucket, key)
		if err != nil {
			return err
		}
		value = bytes.Clone(v)
		return nil
	})
	if errors.Is(err, nutsdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("while getting %s: %w", key, err)
	}
	return value, nil
}

type snapshot struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (s *snapshot) Next() ([]byte, []byte, bool) {
	if s.pos >= len(s.keys) {
		return nil, nil, false
	}
	k, v := s.keys[s.pos], s.values[s.pos]
	s.pos++
	return k, v, true
}

// Iterator snapshots the bucket and replays it in key order.  Keys compare
// bytewise, so an index wider than five digits sorts before "key_99999".
func (s *Store) Iterator() (kvgen.Iterator, error) {
	snap := &snapshot{}
	err := s.db.View(func(tx *nutsdb.Tx) error {
		var err error
		snap.keys, snap.values, err = tx.GetAll(s.bucket)
		return err
	})
	if errors.Is(err, nutsdb.ErrBucketEmpty) {
		return &snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while reading bucket %s: %w", s.bucket, err)
	}
	return snap, nil
}
