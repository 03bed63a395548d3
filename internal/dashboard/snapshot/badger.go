package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"cosurvival/pkg/platform/sentinel"
)

const badgerKeyPrefix = "snapshot:"

// Badger stores snapshots in an embedded BadgerDB. The DB lifecycle is
// managed by the caller.
type Badger struct {
	db *badger.DB
}

func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func (b *Badger) Load(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe("badger", "load", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, sentinel.ErrUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return data, nil
}

func (b *Badger) Save(ctx context.Context, key string, data []byte) (err error) {
	start := time.Now()
	defer func() { observe("badger", "save", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+key), data)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return sentinel.ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}
