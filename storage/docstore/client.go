// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package docstore stores collections as buckets of documents in a
// single bolt file. Each document is {"_id": recordID, "data": body};
// the body is nested under data so record fields can never collide with
// the reserved primary-key attribute.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var (
	mon = monkit.Package()

	// Error is the docstore error class.
	Error = errs.Class("docstore error")
)

const (
	fileMode       = 0600
	defaultTimeout = 1 * time.Second
)

// document is the persisted envelope.
type document struct {
	ID   string          `json:"_id"`
	Data json.RawMessage `json:"data"`
}

// Client implements storage.Adapter over a bolt file.
type Client struct {
	log *zap.Logger
	db  *bolt.DB
}

// New opens (or creates) the bolt file at path.
func New(log *zap.Logger, path string) (*Client, error) {
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, storage.ErrAdapterUnavailable.Wrap(err)
	}
	return &Client{log: log, db: db}, nil
}

// Load streams every document in the collection bucket and
// reconstructs the snapshot, stripping the envelope.
func (client *Client) Load(ctx context.Context, coll storage.Collection) (_ storage.Snapshot, err error) {
	defer mon.Task()(&ctx)(&err)

	snap := storage.Snapshot{}
	err = client.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(coll))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(key, value []byte) error {
			var doc document
			if err := json.Unmarshal(value, &doc); err != nil {
				return storage.ErrSerialization.Wrap(err)
			}
			snap[string(key)] = storage.CloneValue(doc.Data)
			return nil
		})
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return snap, nil
}

// Save replaces the collection bucket with a bulk upsert of snap inside
// one update transaction.
func (client *Client) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) (err error) {
	defer mon.Task()(&ctx)(&err)

	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(coll)) != nil {
			if err := tx.DeleteBucket([]byte(coll)); err != nil {
				return err
			}
		}
		if len(snap) == 0 {
			return nil
		}
		bucket, err := tx.CreateBucket([]byte(coll))
		if err != nil {
			return err
		}
		for id, body := range snap {
			value, err := json.Marshal(document{ID: id, Data: body})
			if err != nil {
				return storage.ErrSerialization.Wrap(err)
			}
			if err := bucket.Put([]byte(id), value); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Close closes the bolt file.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}

// Kind reports the adapter tag.
func (client *Client) Kind() storage.Kind { return storage.Document }
