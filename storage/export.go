// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import (
	"context"

	monkit "gopkg.in/spacemonkeygo/monkit.v2"
)

var mon = monkit.Package()

// ExportAll reads every collection from the adapter into a full data set.
// Empty collections are omitted.
func ExportAll(ctx context.Context, adapter Adapter) (_ Data, err error) {
	defer mon.Task()(&ctx)(&err)

	data := make(Data)
	for _, coll := range All {
		snap, err := adapter.Load(ctx, coll)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		if len(snap) > 0 {
			data[coll] = snap
		}
	}
	return data, nil
}

// ImportAll writes a full data set into the adapter, normalising legacy
// key spellings in every record on the way in.
func ImportAll(ctx context.Context, adapter Adapter, data Data) (err error) {
	defer mon.Task()(&ctx)(&err)

	for _, coll := range All {
		snap, ok := data[coll]
		if !ok || len(snap) == 0 {
			continue
		}
		if err := adapter.Save(ctx, coll, NormalizeSnapshot(snap)); err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}
