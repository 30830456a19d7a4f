// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// AdminLog is one audit trail entry.
type AdminLog struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	ActorID   string `json:"actorId,omitempty"`
	TargetID  string `json:"targetId,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// AdminLogsService appends to a size-capped audit trail.
type AdminLogsService struct {
	db   *DB
	coll collection[AdminLog]
}

// Append records an audit entry and evicts the oldest entries beyond
// the configured cap.
func (service *AdminLogsService) Append(ctx context.Context, entry AdminLog) (err error) {
	defer mon.Task()(&ctx)(&err)

	if entry.Action == "" {
		return storage.ErrConstraint.New("admin log needs an action")
	}
	entry.ID = newID("log")
	entry.CreatedAt = now()

	return service.coll.mutateAll(ctx, func(logs map[string]AdminLog) error {
		logs[entry.ID] = entry
		limit := service.db.config.AdminLogCap
		if limit <= 0 || len(logs) <= limit {
			return nil
		}
		ordered := make([]AdminLog, 0, len(logs))
		for _, log := range logs {
			ordered = append(ordered, log)
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].CreatedAt != ordered[j].CreatedAt {
				return ordered[i].CreatedAt < ordered[j].CreatedAt
			}
			return ordered[i].ID < ordered[j].ID
		})
		for _, stale := range ordered[:len(ordered)-limit] {
			delete(logs, stale.ID)
		}
		return nil
	})
}

// Tail returns up to limit entries, newest first.
func (service *AdminLogsService) Tail(limit int) ([]AdminLog, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	logs := make([]AdminLog, 0, len(records))
	for _, log := range records {
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].CreatedAt != logs[j].CreatedAt {
			return logs[i].CreatedAt > logs[j].CreatedAt
		}
		return logs[i].ID > logs[j].ID
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
