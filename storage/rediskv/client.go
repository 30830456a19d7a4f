// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package rediskv stores each record as an individual entry keyed
// <prefix><collection>:<recordID>.
package rediskv

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/go-redis/redis"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var (
	mon = monkit.Package()

	// Error is the rediskv error class.
	Error = errs.Class("rediskv error")
)

const scanCount = 1000

// Client implements storage.Adapter over a redis connection.
type Client struct {
	log    *zap.Logger
	db     *redis.Client
	prefix string

	mu    sync.Mutex
	locks map[storage.Collection]*sync.Mutex
}

// New connects to redis at address and verifies the connection.
func New(log *zap.Logger, address, password string, db int, prefix string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, storage.ErrAdapterUnavailable.Wrap(errs.Combine(err, client.Close()))
	}
	return &Client{
		log:    log,
		db:     client,
		prefix: prefix,
		locks:  map[storage.Collection]*sync.Mutex{},
	}, nil
}

func (client *Client) collLock(coll storage.Collection) *sync.Mutex {
	client.mu.Lock()
	defer client.mu.Unlock()
	lock, ok := client.locks[coll]
	if !ok {
		lock = &sync.Mutex{}
		client.locks[coll] = lock
	}
	return lock
}

// collectionPrefix is the key namespace of one collection.
func (client *Client) collectionPrefix(coll storage.Collection) string {
	return client.prefix + string(coll) + ":"
}

// Load enumerates the collection's keys and decodes each value.
func (client *Client) Load(ctx context.Context, coll storage.Collection) (_ storage.Snapshot, err error) {
	defer mon.Task()(&ctx)(&err)

	prefix := client.collectionPrefix(coll)
	keys, err := client.scanKeys(prefix)
	if err != nil {
		return nil, err
	}

	snap := storage.Snapshot{}
	if len(keys) == 0 {
		return snap, nil
	}
	values, err := client.db.MGet(keys...).Result()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	for i, value := range values {
		encoded, ok := value.(string)
		if !ok {
			continue // expired between scan and fetch
		}
		id := strings.TrimPrefix(keys[i], prefix)
		snap[id] = json.RawMessage(encoded)
	}
	return snap, nil
}

// Save writes every entry in one pipelined batch and deletes entries
// that are no longer present in the snapshot. Saves on the same
// collection are serialised so the scan/delete phase cannot interleave
// with another writer's sets.
func (client *Client) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) (err error) {
	defer mon.Task()(&ctx)(&err)

	lock := client.collLock(coll)
	lock.Lock()
	defer lock.Unlock()

	prefix := client.collectionPrefix(coll)
	existing, err := client.scanKeys(prefix)
	if err != nil {
		return err
	}

	pipe := client.db.Pipeline()
	for id, body := range snap {
		pipe.Set(prefix+id, string(body), 0)
	}
	for _, key := range existing {
		if _, keep := snap[strings.TrimPrefix(key, prefix)]; !keep {
			pipe.Del(key)
		}
	}
	if _, err := pipe.Exec(); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (client *Client) scanKeys(prefix string) ([]string, error) {
	match := string(escapeMatch([]byte(prefix))) + "*"
	var keys []string
	var cursor uint64
	for {
		batch, next, err := client.db.Scan(cursor, match, scanCount).Result()
		if err != nil {
			return nil, Error.Wrap(err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Close closes the redis connection.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}

// Kind reports the adapter tag.
func (client *Client) Kind() storage.Kind { return storage.KV }
