// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// CallLog records one voice or video call.
type CallLog struct {
	ID             string   `json:"id"`
	CallID         string   `json:"callId"`
	ConversationID string   `json:"conversationId"`
	CallerID       string   `json:"callerId,omitempty"`
	Participants   []string `json:"participants,omitempty"`
	Status         string   `json:"status,omitempty"`
	StartedAt      int64    `json:"startedAt"`
	EndedAt        int64    `json:"endedAt,omitempty"`
	Duration       int64    `json:"duration,omitempty"`
}

// CallLogsService records call history per conversation, capped per
// conversation by config.
type CallLogsService struct {
	db   *DB
	coll collection[CallLog]
}

// LogCall upserts a call record keyed by callID. An existing record
// keeps its original StartedAt; everything else is replaced. Per
// conversation, the oldest entries beyond the cap are evicted.
func (service *CallLogsService) LogCall(ctx context.Context, entry CallLog) (err error) {
	defer mon.Task()(&ctx)(&err)

	if entry.CallID == "" || entry.ConversationID == "" {
		return storage.ErrConstraint.New("call log needs call and conversation ids")
	}
	return service.coll.mutateAll(ctx, func(logs map[string]CallLog) error {
		existing, found := findByCallID(logs, entry.CallID)
		if found {
			entry.ID = existing.ID
			entry.StartedAt = existing.StartedAt
		} else {
			entry.ID = newID("call")
			if entry.StartedAt == 0 {
				entry.StartedAt = now()
			}
		}
		logs[entry.ID] = entry

		limit := service.db.config.CallLogCap
		if limit <= 0 {
			return nil
		}
		var siblings []CallLog
		for _, log := range logs {
			if log.ConversationID == entry.ConversationID {
				siblings = append(siblings, log)
			}
		}
		if len(siblings) <= limit {
			return nil
		}
		sort.Slice(siblings, func(i, j int) bool {
			if siblings[i].StartedAt != siblings[j].StartedAt {
				return siblings[i].StartedAt < siblings[j].StartedAt
			}
			return siblings[i].ID < siblings[j].ID
		})
		for _, stale := range siblings[:len(siblings)-limit] {
			delete(logs, stale.ID)
		}
		return nil
	})
}

func findByCallID(logs map[string]CallLog, callID string) (CallLog, bool) {
	for _, log := range logs {
		if log.CallID == callID {
			return log, true
		}
	}
	return CallLog{}, false
}

// GetByCallID returns the record for a call id.
func (service *CallLogsService) GetByCallID(callID string) (CallLog, error) {
	logs, err := service.coll.all()
	if err != nil {
		return CallLog{}, err
	}
	for _, log := range logs {
		if log.CallID == callID {
			return log, nil
		}
	}
	return CallLog{}, storage.ErrNotFound.New("call %s", callID)
}

// Update applies fn to the record for callID.
func (service *CallLogsService) Update(ctx context.Context, callID string, fn func(*CallLog) error) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutateAll(ctx, func(logs map[string]CallLog) error {
		existing, found := findByCallID(logs, callID)
		if !found {
			return storage.ErrNotFound.New("call %s", callID)
		}
		if err := fn(&existing); err != nil {
			return err
		}
		logs[existing.ID] = existing
		return nil
	})
}

// ListForConversation returns the conversation's calls, newest first.
func (service *CallLogsService) ListForConversation(conversationID string) ([]CallLog, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var logs []CallLog
	for _, log := range records {
		if log.ConversationID == conversationID {
			logs = append(logs, log)
		}
	}
	sortNewestFirst(logs)
	return logs, nil
}

// ListForUser returns calls the user took part in, newest first.
func (service *CallLogsService) ListForUser(userID string) ([]CallLog, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var logs []CallLog
	for _, log := range records {
		if log.CallerID == userID || contains(log.Participants, userID) {
			logs = append(logs, log)
		}
	}
	sortNewestFirst(logs)
	return logs, nil
}

func sortNewestFirst(logs []CallLog) {
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].StartedAt != logs[j].StartedAt {
			return logs[i].StartedAt > logs[j].StartedAt
		}
		return logs[i].ID > logs[j].ID
	})
}

func contains(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}
