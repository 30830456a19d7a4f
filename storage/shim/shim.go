// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package shim keeps legacy call sites working while collections live
// in a database. Code that still reads and writes the well-known JSON
// files goes through these wrappers; for managed paths the shim serves
// the cached collection instead of the disk, for everything else it
// forwards to the filesystem unchanged.
package shim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/router"
)

var mon = monkit.Package()

// Shim intercepts file access for paths that map to managed
// collections.
type Shim struct {
	log    *zap.Logger
	router *router.Router
}

// New returns a shim over the router.
func New(log *zap.Logger, rtr *router.Router) *Shim {
	return &Shim{log: log, router: rtr}
}

// managedCollection resolves a path to the collection stored at that
// canonical location, if any.
func (shim *Shim) managedCollection(path string) (storage.Collection, bool) {
	dir := shim.router.Config().Options.WithDefaults(storage.FileTree).DataDir
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != filepath.Clean(dir) {
		return "", false
	}
	coll, ok := storage.ByFilename(filepath.Base(clean))
	return coll, ok
}

// IsManagedPath reports whether the path is the canonical disk location
// of a known collection while a non-file adapter is active. File-tree
// deployments keep the files authoritative, so nothing is managed.
func (shim *Shim) IsManagedPath(path string) bool {
	if shim.router.Kind() == storage.FileTree {
		return false
	}
	_, ok := shim.managedCollection(path)
	return ok
}

// LoadByPath reads the collection behind the path through the cache.
// Returns def when the path is managed but the collection is empty.
func (shim *Shim) LoadByPath(ctx context.Context, path string, def json.RawMessage) (_ json.RawMessage, err error) {
	defer mon.Task()(&ctx)(&err)

	coll, ok := shim.managedCollection(path)
	if !ok {
		return nil, storage.ErrConfig.New("path %q maps to no collection", path)
	}
	snap := shim.router.Cache().View(coll)
	if len(snap) == 0 {
		return def, nil
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, storage.ErrSerialization.Wrap(err)
	}
	return body, nil
}

// SaveByPath decodes value as a JSON tree and replaces the collection
// behind the path.
func (shim *Shim) SaveByPath(ctx context.Context, path string, value json.RawMessage) (err error) {
	defer mon.Task()(&ctx)(&err)

	coll, ok := shim.managedCollection(path)
	if !ok {
		return storage.ErrConfig.New("path %q maps to no collection", path)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(value, &snap); err != nil {
		return storage.ErrSerialization.Wrap(err)
	}
	return shim.router.Cache().Update(ctx, coll, func(storage.Snapshot) (storage.Snapshot, error) {
		return snap, nil
	})
}

// ReadFile is a drop-in for os.ReadFile that serves managed paths from
// the cache. Unmanaged paths return the os error untouched so callers'
// os.IsNotExist checks keep working.
func (shim *Shim) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if shim.IsManagedPath(path) {
		body, err := shim.LoadByPath(ctx, path, json.RawMessage("{}"))
		return []byte(body), err
	}
	return os.ReadFile(path)
}

// WriteFile is a drop-in for os.WriteFile that routes managed paths
// through the service layer. Unmanaged paths return the os error
// untouched.
func (shim *Shim) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if shim.IsManagedPath(path) {
		return shim.SaveByPath(ctx, path, data)
	}
	return os.WriteFile(path, data, perm)
}

// Exists is a drop-in for a stat probe. Managed paths always exist,
// whether or not the legacy file is still on disk.
func (shim *Shim) Exists(path string) (bool, error) {
	if shim.IsManagedPath(path) {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errs.Wrap(err)
}
