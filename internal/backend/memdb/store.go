// Package memdb is the reference Storage implementation used by tests and
// by cmd/wasmvmd's local-dev mode: an ordered, in-memory key/value store
// with the same copy-in/copy-out discipline as the teacher's
// internal/state.State, but holding raw byte keys in one flat tree with no
// hex-keyed namespacing, rebuilt on
// google/btree (grounded on the pack's erigon and certen-validator repos)
// instead of an unordered map so Scan can walk keys in lexicographic
// order without a sort pass on every call.
package memdb

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/empower1/wasmvm/internal/backend"
	"github.com/empower1/wasmvm/internal/types"
	"github.com/google/btree"
	"go.uber.org/zap"
)

const gasPerByte = 1

type entry struct {
	key, value []byte
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

// Store is a per-contract ordered byte-string map, safe for concurrent
// use, with live iterators keyed by backend.IteratorID.
type Store struct {
	mu        sync.RWMutex
	tree      *btree.BTree
	iterators map[backend.IteratorID]*scanIterator
	nextIter  backend.IteratorID
	logger    *zap.SugaredLogger
}

// NewStore returns an empty Store.
func NewStore(logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		tree:      btree.New(32),
		iterators: make(map[backend.IteratorID]*scanIterator),
		logger:    logger,
	}
}

var _ backend.Storage = (*Store)(nil)

func (s *Store) Get(_ context.Context, key []byte) ([]byte, types.GasInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item := s.tree.Get(entry{key: key})
	cost := types.WithCost(gasPerByte * uint64(len(key)))
	if item == nil {
		return nil, cost, nil
	}
	e := item.(entry)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, cost, nil
}

func (s *Store) Set(_ context.Context, key, value []byte) (types.GasInfo, error) {
	if len(key) == 0 {
		return types.GasInfoFree, fmt.Errorf("storage key must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keyCopy := append([]byte(nil), key...)
	valCopy := append([]byte(nil), value...)
	s.tree.ReplaceOrInsert(entry{key: keyCopy, value: valCopy})
	return types.WithCost(gasPerByte * uint64(len(key)+len(value))), nil
}

func (s *Store) Remove(_ context.Context, key []byte) (types.GasInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(entry{key: key})
	return types.WithCost(gasPerByte * uint64(len(key))), nil
}

// scanIterator captures a snapshot of the keys in range at Scan time, so
// concurrent Set/Remove calls within the same call cannot invalidate an
// iterator mid-drain (spec §4.4 "scan returns keys in the requested
// direction; next drains").
type scanIterator struct {
	items []entry
	pos   int
}

func (s *Store) Scan(_ context.Context, start, end []byte, order backend.IterationOrder) (backend.IteratorID, types.GasInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []entry
	visit := func(i btree.Item) bool {
		e := i.(entry)
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return false
		}
		items = append(items, e)
		return true
	}
	if start != nil {
		s.tree.AscendGreaterOrEqual(entry{key: start}, visit)
	} else {
		s.tree.Ascend(visit)
	}
	if order == backend.Descending {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}

	id := s.nextIter
	s.nextIter++
	s.iterators[id] = &scanIterator{items: items}
	return id, types.GasInfoFree, nil
}

func (s *Store) Next(_ context.Context, id backend.IteratorID) (*backend.KV, types.GasInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.iterators[id]
	if !ok {
		return nil, types.GasInfoFree, fmt.Errorf("iterator %d does not exist or belongs to a prior call", id)
	}
	if it.pos >= len(it.items) {
		delete(s.iterators, id)
		return nil, types.GasInfoFree, nil
	}
	e := it.items[it.pos]
	it.pos++
	return &backend.KV{
		Key:   append([]byte(nil), e.key...),
		Value: append([]byte(nil), e.value...),
	}, types.WithCost(gasPerByte * uint64(len(e.key)+len(e.value))), nil
}
