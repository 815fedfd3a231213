package persist

import (
	"bytes"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"

	"abtsolver/actionmap"
	"abtsolver/beliefnode"
	"abtsolver/obsmap"
)

// TreeStore is an optional incremental save point backed by Badger,
// keyed by session id, alongside the canonical text format WriteTree
// produces (Testable Property 8 is defined against the text format; this
// is a convenience cache for long-running online sessions that want to
// checkpoint without writing a full file each time).
type TreeStore struct {
	db *badger.DB
}

func OpenTreeStore(path string) (*TreeStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("persist: open tree store: %w", err)
	}
	return &TreeStore{db: db}, nil
}

func (s *TreeStore) Close() error { return s.db.Close() }

func (s *TreeStore) Save(sessionID string, tree *beliefnode.Tree, ac ActionCodec, oc ObservationCodec) error {
	var buf bytes.Buffer
	if err := WriteTree(&buf, tree, ac, oc); err != nil {
		return fmt.Errorf("persist: encode tree: %w", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionID), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("persist: write tree store: %w", err)
	}
	log.Debug().Str("session", sessionID).Int("bytes", buf.Len()).Msg("checkpointed tree")
	return nil
}

func (s *TreeStore) Load(sessionID string, actionPool actionmap.Pool, observationPool obsmap.Pool, ac ActionCodec, oc ObservationCodec) (*beliefnode.Tree, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("persist: read tree store: %w", err)
	}
	return ReadTree(bytes.NewReader(data), actionPool, observationPool, ac, oc)
}
