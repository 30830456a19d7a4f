// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package sqlstore implements the embedded row store and the remote
// relational family behind one adapter body. Collections begin life as
// single encoded blobs in the shared storage_kv table and graduate to
// dedicated (id, data) tables through the distribution pass.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var (
	mon = monkit.Package()

	// Error is the sqlstore error class.
	Error = errs.Class("sqlstore error")
)

// kvTable is the shared generic representation: one row per collection,
// id = collection name, data = the whole collection as one blob.
const kvTable = "storage_kv"

// Client implements storage.Adapter over a database/sql engine.
type Client struct {
	log     *zap.Logger
	db      *sql.DB
	dialect Dialect

	mu     sync.Mutex
	locks  map[storage.Collection]*sync.Mutex
	tables map[string]bool
}

// New opens the engine described by kind and options, bounds the
// connection pool and bootstraps the storage_kv table. Every failure on
// this path reports the adapter as unavailable so the router can apply
// its fallback policy.
func New(ctx context.Context, log *zap.Logger, kind storage.Kind, opts storage.Options) (_ *Client, err error) {
	defer mon.Task()(&ctx)(&err)

	dialect, err := DialectFor(kind)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(opts))
	if err != nil {
		return nil, storage.ErrAdapterUnavailable.Wrap(err)
	}
	if kind == storage.RowStore {
		// sqlite serialises writers itself; a second connection only
		// produces "database is locked" errors.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(opts.ConnectionLimit)
		if err := db.PingContext(ctx); err != nil {
			return nil, storage.ErrAdapterUnavailable.Wrap(errs.Combine(err, db.Close()))
		}
	}

	if _, err := db.ExecContext(ctx, dialect.CreateTableSQL(kvTable)); err != nil {
		return nil, storage.ErrAdapterUnavailable.Wrap(errs.Combine(err, db.Close()))
	}

	return &Client{
		log:     log,
		db:      db,
		dialect: dialect,
		locks:   map[storage.Collection]*sync.Mutex{},
		tables:  map[string]bool{},
	}, nil
}

// DB exposes the underlying handle for the distribution pass tests.
func (client *Client) DB() *sql.DB { return client.db }

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

// tableExists probes for a dedicated collection table, remembering
// positive answers.
func (client *Client) tableExists(ctx context.Context, table string) (bool, error) {
	client.mu.Lock()
	known := client.tables[table]
	client.mu.Unlock()
	if known {
		return true, nil
	}

	var name string
	err := client.db.QueryRowContext(ctx, client.dialect.TableExistsSQL(), table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, Error.Wrap(err)
	}

	client.mu.Lock()
	client.tables[table] = true
	client.mu.Unlock()
	return true, nil
}

// Load probes the dedicated table first and falls back to decoding the
// collection's storage_kv blob.
func (client *Client) Load(ctx context.Context, coll storage.Collection) (_ storage.Snapshot, err error) {
	defer mon.Task()(&ctx)(&err)

	distributed, err := client.tableExists(ctx, string(coll))
	if err != nil {
		return nil, err
	}
	if distributed {
		return client.loadTable(ctx, string(coll))
	}
	return client.loadBlob(ctx, coll)
}

func (client *Client) loadTable(ctx context.Context, table string) (storage.Snapshot, error) {
	query := "SELECT id, data FROM " + client.dialect.QuoteIdent(table)
	rows, err := client.db.QueryContext(ctx, query)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	snap := storage.Snapshot{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, Error.Wrap(errs.Combine(err, rows.Close()))
		}
		snap[id] = json.RawMessage(data)
	}
	return snap, Error.Wrap(errs.Combine(rows.Err(), rows.Close()))
}

func (client *Client) loadBlob(ctx context.Context, coll storage.Collection) (storage.Snapshot, error) {
	query := client.dialect.Rebind("SELECT data FROM " + client.dialect.QuoteIdent(kvTable) + " WHERE id = ?")
	var data string
	err := client.db.QueryRowContext(ctx, query, string(coll)).Scan(&data)
	if err == sql.ErrNoRows {
		return storage.Snapshot{}, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, storage.ErrSerialization.Wrap(err)
	}
	if snap == nil {
		snap = storage.Snapshot{}
	}
	return snap, nil
}

// Save replaces the collection contents: in the dedicated table inside
// one transaction when it exists, else as a single storage_kv blob.
func (client *Client) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) (err error) {
	defer mon.Task()(&ctx)(&err)

	lock := client.collLock(coll)
	lock.Lock()
	defer lock.Unlock()

	distributed, err := client.tableExists(ctx, string(coll))
	if err != nil {
		return err
	}
	if distributed {
		return client.saveTable(ctx, string(coll), snap)
	}
	return client.saveBlob(ctx, coll, snap)
}

func (client *Client) saveTable(ctx context.Context, table string, snap storage.Snapshot) error {
	tx, err := client.db.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	// rollback after a successful commit is a no-op
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+client.dialect.QuoteIdent(table)); err != nil {
		return Error.Wrap(err)
	}
	upsert := client.dialect.UpsertSQL(table)
	for id, body := range snap {
		if _, err := tx.ExecContext(ctx, upsert, id, string(body)); err != nil {
			return Error.Wrap(err)
		}
	}
	return Error.Wrap(tx.Commit())
}

func (client *Client) saveBlob(ctx context.Context, coll storage.Collection, snap storage.Snapshot) error {
	if snap == nil {
		snap = storage.Snapshot{}
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return storage.ErrSerialization.Wrap(err)
	}
	_, err = client.db.ExecContext(ctx, client.dialect.UpsertSQL(kvTable), string(coll), string(blob))
	return Error.Wrap(err)
}

// Close releases the connection pool.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}

// Kind reports the engine tag the client was opened with.
func (client *Client) Kind() storage.Kind { return client.dialect.Kind() }
