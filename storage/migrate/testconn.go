// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package migrate

import (
	"context"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/docstore"
	"github.com/Enclicainteractive/volt/storage/filetree"
	"github.com/Enclicainteractive/volt/storage/rediskv"
	"github.com/Enclicainteractive/volt/storage/sqlstore"
)

// ConnectionResult is the outcome of probing a back-end.
type ConnectionResult struct {
	// Tested is false when the kind has no connectivity to probe.
	Tested bool `json:"tested"`
	// Success is true when the back-end answered.
	Success bool `json:"success"`
	// DriverMissing is true when the failure was a missing database
	// driver rather than an unreachable engine.
	DriverMissing bool   `json:"driverMissing"`
	Error         string `json:"error,omitempty"`
}

// TestConnection probes whether the back-end described by kind and
// options can be reached, without touching the active adapter.
func TestConnection(ctx context.Context, log *zap.Logger, kind storage.Kind, opts storage.Options) ConnectionResult {
	if !kind.Valid() {
		return ConnectionResult{Error: "unknown adapter kind " + string(kind)}
	}
	opts = opts.WithDefaults(kind)

	var adapter storage.Adapter
	var err error
	switch {
	case kind == storage.FileTree:
		adapter, err = filetree.New(log, opts.DataDir)
	case kind.SQL():
		adapter, err = sqlstore.New(ctx, log, kind, opts)
	case kind == storage.Document:
		adapter, err = docstore.New(log, opts.DBPath)
	case kind == storage.KV:
		adapter, err = rediskv.New(log, net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)), opts.Password, opts.DB, opts.KeyPrefix)
	default:
		return ConnectionResult{Error: "unknown adapter kind " + string(kind)}
	}
	if err != nil {
		return ConnectionResult{
			Tested:        true,
			DriverMissing: strings.Contains(err.Error(), "unknown driver"),
			Error:         err.Error(),
		}
	}
	return ConnectionResult{Tested: true, Success: adapter.Close() == nil}
}
