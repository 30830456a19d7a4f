// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Enclicainteractive/volt/storage"
)

// Report describes one distribution pass.
type Report struct {
	Distributed []storage.Collection `json:"distributed"`
	Deleted     []storage.Collection `json:"deleted"`
	Errors      []string             `json:"errors"`
}

// Distribute lifts every collection still stored as a storage_kv blob
// into its own (id, data) table, then removes the blob. Collections that
// fail are reported and left in place; the pass is idempotent.
func (client *Client) Distribute(ctx context.Context) (_ Report, err error) {
	defer mon.Task()(&ctx)(&err)

	var report Report
	for _, coll := range storage.All {
		snap, found, err := client.takeBlob(ctx, coll)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", coll, err))
			continue
		}
		if !found {
			continue
		}
		if err := client.distributeOne(ctx, coll, snap); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", coll, err))
			continue
		}
		report.Distributed = append(report.Distributed, coll)
		report.Deleted = append(report.Deleted, coll)
	}
	if len(report.Distributed) > 0 || len(report.Errors) > 0 {
		client.log.Info("distribution pass",
			zap.Int("distributed", len(report.Distributed)),
			zap.Int("errors", len(report.Errors)))
	}
	return report, nil
}

// takeBlob reads and decodes a collection's storage_kv row.
func (client *Client) takeBlob(ctx context.Context, coll storage.Collection) (storage.Snapshot, bool, error) {
	query := client.dialect.Rebind("SELECT data FROM " + client.dialect.QuoteIdent(kvTable) + " WHERE id = ?")
	var data string
	err := client.db.QueryRowContext(ctx, query, string(coll)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Error.Wrap(err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, false, storage.ErrSerialization.Wrap(err)
	}
	return snap, true, nil
}

// distributeOne creates the dedicated table, copies every record into
// it inside one transaction and deletes the storage_kv row.
func (client *Client) distributeOne(ctx context.Context, coll storage.Collection, snap storage.Snapshot) error {
	table := string(coll)
	if _, err := client.db.ExecContext(ctx, client.dialect.CreateTableSQL(table)); err != nil {
		return Error.Wrap(err)
	}

	tx, err := client.db.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := client.dialect.UpsertSQL(table)
	for id, body := range snap {
		if _, err := tx.ExecContext(ctx, upsert, id, string(body)); err != nil {
			return Error.Wrap(err)
		}
	}
	del := client.dialect.Rebind("DELETE FROM " + client.dialect.QuoteIdent(kvTable) + " WHERE id = ?")
	if _, err := tx.ExecContext(ctx, del, table); err != nil {
		return Error.Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return Error.Wrap(err)
	}

	client.mu.Lock()
	client.tables[table] = true
	client.mu.Unlock()
	return nil
}
