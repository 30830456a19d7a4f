// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package storelogger wraps any adapter with debug logging.
package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
)

var mon = monkit.Package()

var id int64

// Logger implements storage.Adapter, logging every call before
// delegating to the wrapped adapter.
type Logger struct {
	log     *zap.Logger
	adapter storage.Adapter
}

// New creates a Logger around adapter.
func New(log *zap.Logger, adapter storage.Adapter) *Logger {
	loggerid := atomic.AddInt64(&id, 1)
	return &Logger{
		log:     log.Named(strconv.Itoa(int(loggerid))),
		adapter: adapter,
	}
}

// Load logs and delegates.
func (logger *Logger) Load(ctx context.Context, coll storage.Collection) (_ storage.Snapshot, err error) {
	defer mon.Task()(&ctx)(&err)
	logger.log.Debug("Load", zap.String("collection", string(coll)))
	return logger.adapter.Load(ctx, coll)
}

// Save logs and delegates.
func (logger *Logger) Save(ctx context.Context, coll storage.Collection, snap storage.Snapshot) (err error) {
	defer mon.Task()(&ctx)(&err)
	logger.log.Debug("Save",
		zap.String("collection", string(coll)),
		zap.Int("records", len(snap)))
	return logger.adapter.Save(ctx, coll, snap)
}

// Close logs and delegates.
func (logger *Logger) Close() error {
	logger.log.Debug("Close")
	return logger.adapter.Close()
}

// Kind reports the wrapped adapter's tag.
func (logger *Logger) Kind() storage.Kind { return logger.adapter.Kind() }
