// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package testcontext bundles a context, an errgroup and a temporary
// directory for tests.
package testcontext

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Context carries a cancellable context, a goroutine group and a lazily
// created temp directory.
type Context struct {
	context.Context
	group *errgroup.Group
	test  testing.TB

	once      sync.Once
	directory string
}

// New creates a test context.
func New(test testing.TB) *Context {
	group, ctx := errgroup.WithContext(context.Background())
	return &Context{
		Context: ctx,
		group:   group,
		test:    test,
	}
}

// Go runs fn in a goroutine; Cleanup checks the result.
func (ctx *Context) Go(fn func() error) {
	ctx.test.Helper()
	ctx.group.Go(fn)
}

// Check calls fn and fails the test on error.
func (ctx *Context) Check(fn func() error) {
	ctx.test.Helper()
	if err := fn(); err != nil {
		ctx.test.Fatal(err)
	}
}

// Dir returns a directory path inside the test's temp area.
func (ctx *Context) Dir(subs ...string) string {
	ctx.test.Helper()

	ctx.once.Do(func() {
		var err error
		ctx.directory, err = os.MkdirTemp("", ctx.test.Name())
		if err != nil {
			ctx.test.Fatal(err)
		}
	})

	dir := filepath.Join(append([]string{ctx.directory}, subs...)...)
	if err := os.MkdirAll(dir, 0700); err != nil {
		ctx.test.Fatal(err)
	}
	return dir
}

// File returns a file path inside the test's temp area.
func (ctx *Context) File(subs ...string) string {
	ctx.test.Helper()

	if len(subs) == 0 {
		ctx.test.Fatal("expected at least one argument")
	}

	dir := ctx.Dir(subs[:len(subs)-1]...)
	return filepath.Join(dir, subs[len(subs)-1])
}

// Cleanup waits for outstanding goroutines and removes the temp area.
func (ctx *Context) Cleanup() {
	ctx.test.Helper()

	defer func() {
		if ctx.directory != "" {
			if err := os.RemoveAll(ctx.directory); err != nil {
				ctx.test.Fatal(err)
			}
		}
	}()
	if err := ctx.group.Wait(); err != nil {
		ctx.test.Fatal(err)
	}
}
