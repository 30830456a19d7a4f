// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package router owns the active adapter and the cache in front of it.
package router

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/cache"
	"github.com/Enclicainteractive/volt/storage/docstore"
	"github.com/Enclicainteractive/volt/storage/filetree"
	"github.com/Enclicainteractive/volt/storage/rediskv"
	"github.com/Enclicainteractive/volt/storage/sqlstore"
	"github.com/Enclicainteractive/volt/storage/storelogger"
)

var (
	mon = monkit.Package()

	// Error is the router error class.
	Error = errs.Class("storage router error")
)

// Router constructs the configured adapter, owns the only reference to
// it and exposes the cache services read from. Construction failure of
// a remote back-end falls back to the file-tree adapter exactly once,
// at initial construction; later failures surface.
type Router struct {
	log *zap.Logger

	mu      sync.RWMutex
	config  storage.Config
	adapter storage.Adapter
	cache   *cache.Cache
}

// New builds the adapter named by config, applying the file-tree
// fallback policy, and preloads the cache.
func New(ctx context.Context, log *zap.Logger, config storage.Config) (_ *Router, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	adapter, err := buildAdapter(ctx, log, config)
	if err != nil {
		if !storage.ErrAdapterUnavailable.Has(err) {
			return nil, err
		}
		log.Warn("adapter unavailable, falling back to file tree",
			zap.String("kind", string(config.Type)),
			zap.Error(err))
		config.Type = storage.FileTree
		adapter, err = buildAdapter(ctx, log, config)
		if err != nil {
			return nil, err
		}
	}

	router := &Router{log: log, config: config, adapter: adapter}
	router.cache = cache.New(log, storelogger.New(log, adapter), config.Durable)
	if err := router.cache.Preload(ctx); err != nil {
		return nil, Error.Wrap(errs.Combine(err, adapter.Close()))
	}
	return router, nil
}

func buildAdapter(ctx context.Context, log *zap.Logger, config storage.Config) (storage.Adapter, error) {
	opts := config.Options.WithDefaults(config.Type)
	switch {
	case config.Type == storage.FileTree:
		return filetree.New(log, opts.DataDir)
	case config.Type.SQL():
		return sqlstore.New(ctx, log, config.Type, opts)
	case config.Type == storage.Document:
		return docstore.New(log, opts.DBPath)
	case config.Type == storage.KV:
		return rediskv.New(log, net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)), opts.Password, opts.DB, opts.KeyPrefix)
	}
	return nil, storage.ErrConfig.New("unknown adapter kind %q", config.Type)
}

// Kind reports the active adapter's tag.
func (router *Router) Kind() storage.Kind {
	router.mu.RLock()
	defer router.mu.RUnlock()
	return router.adapter.Kind()
}

// Config returns the active configuration.
func (router *Router) Config() storage.Config {
	router.mu.RLock()
	defer router.mu.RUnlock()
	return router.config
}

// Cache returns the cache in front of the active adapter.
func (router *Router) Cache() *cache.Cache {
	router.mu.RLock()
	defer router.mu.RUnlock()
	return router.cache
}

// Adapter returns the active adapter, for export and verification.
func (router *Router) Adapter() storage.Adapter {
	router.mu.RLock()
	defer router.mu.RUnlock()
	return router.adapter
}

// Reinit switches to a new configuration: the replacement adapter is
// built first, then the current one is drained and closed, the cache
// dropped and re-populated. On build failure the current adapter stays
// active.
func (router *Router) Reinit(ctx context.Context, config storage.Config) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := config.Validate(); err != nil {
		return err
	}
	adapter, err := buildAdapter(ctx, router.log, config)
	if err != nil {
		return err
	}

	fresh := cache.New(router.log, storelogger.New(router.log, adapter), config.Durable)
	if err := fresh.Preload(ctx); err != nil {
		return Error.Wrap(errs.Combine(err, adapter.Close()))
	}

	router.mu.Lock()
	old, oldCache := router.adapter, router.cache
	router.adapter, router.cache, router.config = adapter, fresh, config
	router.mu.Unlock()

	oldCache.Flush()
	return Error.Wrap(old.Close())
}

// Distribute runs the distribution pass when the active adapter is a
// SQL engine, then re-populates the cache so reads short-circuit to the
// dedicated tables. For other adapters it reports nothing to do.
func (router *Router) Distribute(ctx context.Context) (_ sqlstore.Report, err error) {
	defer mon.Task()(&ctx)(&err)

	router.mu.RLock()
	client, ok := router.adapter.(*sqlstore.Client)
	active := router.cache
	router.mu.RUnlock()
	if !ok {
		return sqlstore.Report{}, nil
	}

	active.Flush()
	report, err := client.Distribute(ctx)
	if err != nil {
		return report, err
	}
	return report, active.Preload(ctx)
}

// Close drains the cache and releases the active adapter.
func (router *Router) Close() error {
	router.mu.Lock()
	defer router.mu.Unlock()
	router.cache.Flush()
	return Error.Wrap(router.adapter.Close())
}
