package storage

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/syndtr/goleveldb/leveldb"

	"mvstaking/native/staking"
)

var (
	globalKey = []byte("staking/global")
	botsKey   = []byte("staking/bots")
)

func positionKey(id *big.Int) []byte {
	return append([]byte("staking/position/"), id.String()...)
}

// LedgerState persists the staking ledger's records as JSON blobs in a
// key-value database. It implements the engine's state interface.
type LedgerState struct {
	db Database
}

// NewLedgerState wraps a database as engine state.
func NewLedgerState(db Database) *LedgerState {
	return &LedgerState{db: db}
}

// Position loads a position record; a nil record means the id is unused.
func (s *LedgerState) Position(id *big.Int) (*staking.Position, error) {
	if id == nil {
		return nil, nil
	}
	raw, err := s.db.Get(positionKey(id))
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pos := &staking.Position{}
	if err := json.Unmarshal(raw, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// PutPosition stores a position record keyed by its id.
func (s *LedgerState) PutPosition(pos *staking.Position) error {
	if pos == nil || pos.ID == nil {
		return errors.New("storage: position id required")
	}
	raw, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return s.db.Put(positionKey(pos.ID), raw)
}

// DeletePosition removes a position record. Only the engine's rollback
// path uses this; settled positions remain addressable forever.
func (s *LedgerState) DeletePosition(id *big.Int) error {
	if id == nil {
		return nil
	}
	return s.db.Delete(positionKey(id))
}

// Global loads the singleton accounting record, nil when uninitialized.
func (s *LedgerState) Global() (*staking.GlobalState, error) {
	raw, err := s.db.Get(globalKey)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	global := &staking.GlobalState{}
	if err := json.Unmarshal(raw, global); err != nil {
		return nil, err
	}
	return global, nil
}

// PutGlobal stores the singleton accounting record.
func (s *LedgerState) PutGlobal(global *staking.GlobalState) error {
	raw, err := json.Marshal(global)
	if err != nil {
		return err
	}
	return s.db.Put(globalKey, raw)
}

// Bots loads the bot registry, empty when never written.
func (s *LedgerState) Bots() (*staking.Registry, error) {
	raw, err := s.db.Get(botsKey)
	if errors.Is(err, leveldb.ErrNotFound) {
		return staking.NewRegistry(), nil
	}
	if err != nil {
		return nil, err
	}
	bots := staking.NewRegistry()
	if err := json.Unmarshal(raw, bots); err != nil {
		return nil, err
	}
	return bots, nil
}

// PutBots stores the bot registry.
func (s *LedgerState) PutBots(bots *staking.Registry) error {
	raw, err := json.Marshal(bots)
	if err != nil {
		return err
	}
	return s.db.Put(botsKey, raw)
}
