// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package migrate moves the full data set between storage back-ends.
// A run is an ordered list of steps; any failure after the target is
// configured rolls the router back to the previous back-end, so partial
// progress is never left visible.
package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/filetree"
	"github.com/Enclicainteractive/volt/storage/router"
)

var mon = monkit.Package()

// Step statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusWarning   = "warning"
	StatusFailed    = "failed"
)

// Step is one entry of the migration log.
type Step struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Options selects the migration target.
type Options struct {
	TargetKind    storage.Kind
	TargetOptions storage.Options
	// SourceDir is an extra file tree merged into the export; its data
	// wins over the active adapter's for the same collection.
	SourceDir string
	DoBackup  bool
}

// run accumulates the step log.
type run struct {
	log    *zap.Logger
	router *router.Router
	steps  []Step
}

func (r *run) step(name, status, detail string) {
	r.steps = append(r.steps, Step{Name: name, Status: status, Detail: detail})
	r.log.Info("migration step",
		zap.String("step", name),
		zap.String("status", status),
		zap.String("detail", detail))
}

// Run migrates the router to the target back-end. The returned step log
// records every phase, including a rollback when one happened. The
// error is non-nil exactly when the migration did not complete.
func Run(ctx context.Context, log *zap.Logger, rtr *router.Router, opts Options) (_ []Step, err error) {
	defer mon.Task()(&ctx)(&err)

	if !opts.TargetKind.Valid() {
		return nil, storage.ErrConfig.New("unknown target kind %q", opts.TargetKind)
	}

	r := &run{log: log, router: rtr}
	prev := rtr.Config()
	dataDir := prev.Options.WithDefaults(storage.FileTree).DataDir

	// backup
	if !opts.DoBackup {
		r.step("backup", StatusSkipped, "disabled")
	} else if backupDir, err := backupTree(dataDir); err != nil {
		r.step("backup", StatusFailed, err.Error())
		return r.steps, storage.ErrMigration.Wrap(err)
	} else if backupDir == "" {
		r.step("backup", StatusSkipped, "no data directory")
	} else {
		r.step("backup", StatusCompleted, backupDir)
	}

	// export: drain pending write-throughs first so the adapter holds
	// every acknowledged write.
	rtr.Cache().Flush()
	data, err := storage.ExportAll(ctx, rtr.Adapter())
	if err != nil {
		r.step("export", StatusFailed, err.Error())
		return r.steps, storage.ErrMigration.Wrap(err)
	}
	if err := mergeSourceDir(ctx, log, opts.SourceDir, data); err != nil {
		r.step("export", StatusFailed, err.Error())
		return r.steps, storage.ErrMigration.Wrap(err)
	}
	expected := data.Counts()
	r.step("export", StatusCompleted, describeCounts(expected))

	// configure
	target := storage.Config{Type: opts.TargetKind, Options: opts.TargetOptions, Durable: prev.Durable}
	if err := rtr.Reinit(ctx, target); err != nil {
		r.step("configure", StatusFailed, err.Error())
		return r.steps, storage.ErrMigration.Wrap(err)
	}
	r.step("configure", StatusCompleted, string(opts.TargetKind))

	// Everything from here on rolls back on failure.
	fail := func(name string, cause error) ([]Step, error) {
		r.step(name, StatusFailed, cause.Error())
		if rollbackErr := rtr.Reinit(ctx, prev); rollbackErr != nil {
			r.step("rollback", StatusFailed, rollbackErr.Error())
			return r.steps, storage.ErrMigration.Wrap(errs.Combine(cause, rollbackErr))
		}
		r.step("rollback", StatusCompleted, string(prev.Type))
		return r.steps, storage.ErrMigration.Wrap(cause)
	}

	// import
	if err := storage.ImportAll(ctx, rtr.Adapter(), data); err != nil {
		return fail("import", err)
	}
	r.step("import", StatusCompleted, describeCounts(expected))

	// verify: reinitialise once more to simulate a restart, then read
	// everything back.
	if err := rtr.Reinit(ctx, target); err != nil {
		return fail("verify", err)
	}
	observed, err := storage.ExportAll(ctx, rtr.Adapter())
	if err != nil {
		return fail("verify", err)
	}
	if err := verifyCounts(expected, observed.Counts()); err != nil {
		return fail("verify", err)
	}
	r.step("verify", StatusCompleted, describeCounts(observed.Counts()))

	// distribute: failures degrade to a warning, the generic table is
	// still readable.
	if opts.TargetKind.SQL() {
		report, err := rtr.Distribute(ctx)
		switch {
		case err != nil:
			r.step("distribute", StatusWarning, err.Error())
		case len(report.Errors) > 0:
			r.step("distribute", StatusWarning, strings.Join(report.Errors, "; "))
		default:
			r.step("distribute", StatusCompleted,
				fmt.Sprintf("%d collections", len(report.Distributed)))
		}
	} else {
		r.step("distribute", StatusSkipped, "not a sql back-end")
	}

	// sync-json-runtime: keep the runtime file tree coherent with the
	// migrated data for collaborators that still read the files.
	if opts.SourceDir == "" || filepath.Clean(opts.SourceDir) == filepath.Clean(dataDir) {
		r.step("sync-json-runtime", StatusSkipped, "no separate source directory")
	} else if copied, err := copyJSONFiles(opts.SourceDir, dataDir); err != nil {
		r.step("sync-json-runtime", StatusWarning, err.Error())
	} else {
		r.step("sync-json-runtime", StatusCompleted, fmt.Sprintf("%d files", copied))
	}

	if kind := rtr.Kind(); kind != opts.TargetKind {
		return fail("final-check", storage.ErrMigration.New("active kind %q, wanted %q", kind, opts.TargetKind))
	}
	r.step("final-check", StatusCompleted, string(opts.TargetKind))
	return r.steps, nil
}

// backupTree copies every file under dataDir into a timestamped sibling
// directory and returns its path, or "" when there is nothing to back
// up.
func backupTree(dataDir string) (string, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", errs.Wrap(err)
	}

	backupDir := fmt.Sprintf("%s-backup-%s", filepath.Clean(dataDir), time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return "", errs.Wrap(err)
	}
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", errs.Wrap(err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		err := copyFile(filepath.Join(dataDir, entry.Name()), filepath.Join(backupDir, entry.Name()))
		if err != nil {
			return "", err
		}
	}
	return backupDir, nil
}

// mergeSourceDir overlays a file-tree scan of dir onto data. The files
// win when both sides hold a collection, covering migrations run
// against JSON files the operator still has.
func mergeSourceDir(ctx context.Context, log *zap.Logger, dir string, data storage.Data) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errs.Wrap(err)
	}

	tree, err := filetree.New(log, dir)
	if err != nil {
		return err
	}
	fromFiles, err := storage.ExportAll(ctx, tree)
	if err != nil {
		return err
	}
	for coll, snap := range fromFiles {
		data[coll] = snap
	}
	return nil
}

// verifyCounts requires every expected collection to hold at least as
// many records as before. Pre-existing rows on the target may push the
// observed count higher.
func verifyCounts(expected, observed map[storage.Collection]int) error {
	for coll, want := range expected {
		if got := observed[coll]; got < want {
			return storage.ErrMigration.New("collection %q holds %d records, expected at least %d", coll, got, want)
		}
	}
	return nil
}

func describeCounts(counts map[storage.Collection]int) string {
	if len(counts) == 0 {
		return "no records"
	}
	names := make([]string, 0, len(counts))
	total := 0
	for coll, count := range counts {
		names = append(names, string(coll))
		total += count
	}
	sort.Strings(names)
	return fmt.Sprintf("%d records across %s", total, strings.Join(names, ", "))
}

func copyJSONFiles(fromDir, toDir string) (copied int, err error) {
	if err := os.MkdirAll(toDir, 0700); err != nil {
		return 0, errs.Wrap(err)
	}
	entries, err := os.ReadDir(fromDir)
	if err != nil {
		return 0, errs.Wrap(err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		err := copyFile(filepath.Join(fromDir, entry.Name()), filepath.Join(toDir, entry.Name()))
		if err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func copyFile(from, to string) (err error) {
	src, err := os.Open(from)
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, src.Close()) }()

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, dst.Close()) }()

	_, err = io.Copy(dst, src)
	return errs.Wrap(err)
}
