// Package workspace autosaves annotations to a bbolt file keyed by image
// base name, so an interrupted session can be restored.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
	"github.com/example/boxannotator/internal/persist"
)

var bucket = []byte("annotations")

// Store is an open workspace file.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the workspace at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error { return s.db.Close() }

// Save records bs under base. An empty collection removes the key.
func (s *Store) Save(base string, bs []geom.Box) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if len(bs) == 0 {
			return b.Delete([]byte(base))
		}
		data, err := persist.MarshalBoxes(bs)
		if err != nil {
			return err
		}
		return b.Put([]byte(base), data)
	})
}

// Restore returns the boxes saved under base. ok is false when nothing was
// saved.
func (s *Store) Restore(base string) (bs []geom.Box, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(base))
		if v == nil {
			return nil
		}
		ok = true
		bs, err = persist.UnmarshalBoxes(v)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("restore %s: %w", base, err)
	}
	return bs, ok, nil
}

// Bases lists every saved base name in key order.
func (s *Store) Bases() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

// SaveAll writes every image of st.
func (s *Store) SaveAll(st *boxes.Store) error {
	for i, base := range st.BaseNames() {
		if err := s.Save(base, st.BoxesAt(i)); err != nil {
			return err
		}
	}
	return nil
}

// RestoreAll fills st from the workspace and returns how many images had
// saved boxes.
func (s *Store) RestoreAll(st *boxes.Store) (int, error) {
	n := 0
	for i, base := range st.BaseNames() {
		bs, ok, err := s.Restore(base)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		if err := st.SetBoxes(i, bs); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
