// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package filetree stores each collection as a pretty-printed JSON file
// under a root directory.
package filetree

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var (
	mon = monkit.Package()

	// Error is the filetree error class.
	Error = errs.Class("filetree error")
)

const (
	dirMode  = 0700
	fileMode = 0600
)

// Client implements storage.Adapter over a directory of JSON files.
type Client struct {
	log *zap.Logger
	dir string
}

// New creates the root directory if needed and returns a client.
func New(log *zap.Logger, dir string) (*Client, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, storage.ErrAdapterUnavailable.Wrap(err)
	}
	return &Client{log: log, dir: dir}, nil
}

// Dir returns the root directory the client persists into.
func (client *Client) Dir() string { return client.dir }

// Path returns the canonical file location of a collection.
func (client *Client) Path(coll storage.Collection) string {
	return filepath.Join(client.dir, coll.Filename())
}

// Load parses the collection file, returning an empty snapshot when the
// file does not exist.
func (client *Client) Load(ctx context.Context, coll storage.Collection) (_ storage.Snapshot, err error) {
	defer mon.Task()(&ctx)(&err)

	payload, err := os.ReadFile(client.Path(coll))
	if os.IsNotExist(err) {
		return storage.Snapshot{}, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, storage.ErrSerialization.Wrap(err)
	}
	if snap == nil {
		snap = storage.Snapshot{}
	}
	return snap, nil
}

// Save atomically replaces the collection file: the payload is written
// to a sibling temp file and renamed over the target, so a crash never
// leaves a torn collection behind.
func (client *Client) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) (err error) {
	defer mon.Task()(&ctx)(&err)

	if snap == nil {
		snap = storage.Snapshot{}
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return storage.ErrSerialization.Wrap(err)
	}

	target := client.Path(coll)
	tmp, err := os.CreateTemp(client.dir, coll.Filename()+".tmp-*")
	if err != nil {
		return Error.Wrap(err)
	}
	if _, err := tmp.Write(payload); err != nil {
		return Error.Wrap(errs.Combine(err, tmp.Close(), os.Remove(tmp.Name())))
	}
	if err := tmp.Close(); err != nil {
		return Error.Wrap(errs.Combine(err, os.Remove(tmp.Name())))
	}
	if err := os.Chmod(tmp.Name(), fileMode); err != nil {
		return Error.Wrap(errs.Combine(err, os.Remove(tmp.Name())))
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Error.Wrap(errs.Combine(err, os.Remove(tmp.Name())))
	}
	return nil
}

// Close releases nothing; the client holds no open handles.
func (client *Client) Close() error { return nil }

// Kind reports the adapter tag.
func (client *Client) Kind() storage.Kind { return storage.FileTree }
