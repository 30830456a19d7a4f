// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import (
	"context"

	"github.com/zeebo/errs"
)

// Error classes shared by every storage component.
var (
	// Error is the default storage error class.
	Error = errs.Class("storage error")
	// ErrConfig is returned for unknown adapter kinds or invalid options.
	ErrConfig = errs.Class("storage config error")
	// ErrAdapterUnavailable is returned when a back-end cannot be reached
	// or its driver refused to bootstrap.
	ErrAdapterUnavailable = errs.Class("adapter unavailable")
	// ErrSerialization is returned for undecodable stored payloads.
	ErrSerialization = errs.Class("serialization error")
	// ErrConstraint is returned when a shape or uniqueness invariant breaks.
	ErrConstraint = errs.Class("constraint violation")
	// ErrNotFound is the domain error for missing records.
	ErrNotFound = errs.Class("not found")
	// ErrAlreadyExists is the domain error for duplicate records.
	ErrAlreadyExists = errs.Class("already exists")
	// ErrExpired is the domain error for exhausted or out-of-date records.
	ErrExpired = errs.Class("expired")
	// ErrMigration is returned when a migration aborted and rolled back.
	ErrMigration = errs.Class("migration aborted")
)

// Kind tags a back-end adapter implementation.
type Kind string

// All supported adapter kinds.
const (
	FileTree  Kind = "file_tree"
	RowStore  Kind = "row_store"
	MySQL     Kind = "mysql"
	MariaDB   Kind = "mariadb"
	Postgres  Kind = "postgres"
	Cockroach Kind = "cockroach"
	SQLServer Kind = "sql_server"
	Document  Kind = "document"
	KV        Kind = "kv"
)

// Kinds lists every supported adapter kind.
var Kinds = []Kind{FileTree, RowStore, MySQL, MariaDB, Postgres, Cockroach, SQLServer, Document, KV}

// Valid reports whether the kind is a known adapter tag.
func (kind Kind) Valid() bool {
	for _, known := range Kinds {
		if kind == known {
			return true
		}
	}
	return false
}

// Remote reports whether the kind talks to an out-of-process engine.
// Writes through the cache are asynchronous for remote kinds.
func (kind Kind) Remote() bool {
	switch kind {
	case FileTree, RowStore:
		return false
	}
	return true
}

// SQL reports whether the kind stores collections in (id, data) tables
// and therefore participates in the distribution pass.
func (kind Kind) SQL() bool {
	switch kind {
	case RowStore, MySQL, MariaDB, Postgres, Cockroach, SQLServer:
		return true
	}
	return false
}

// Adapter is the uniform contract every back-end implements.
//
// Load returns the full current contents of a collection, an empty
// snapshot when the collection is absent. Save atomically replaces the
// contents; saving an empty snapshot empties the collection. Concurrent
// saves on the same collection are serialised by the adapter, saves on
// distinct collections may proceed in parallel.
type Adapter interface {
	Load(ctx context.Context, coll Collection) (Snapshot, error)
	Save(ctx context.Context, coll Collection, snap Snapshot) error
	Close() error
	Kind() Kind
}
