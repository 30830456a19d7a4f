// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"

	"github.com/Enclicainteractive/volt/storage"
)

// ReactionSet maps emoji to the users who reacted, keyed by message.
type ReactionSet map[string][]string

// ReactionsService manages per-message reactions.
type ReactionsService struct {
	db   *DB
	coll collection[ReactionSet]
}

// Get returns the reactions on a message; an empty set when none.
func (service *ReactionsService) Get(messageID string) (ReactionSet, error) {
	set, ok, err := service.coll.get(messageID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ReactionSet{}, nil
	}
	return set, nil
}

// Add records a reaction. Reacting twice with the same emoji is a
// no-op.
func (service *ReactionsService) Add(ctx context.Context, messageID, emoji, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, messageID, func(set *ReactionSet, exists bool) error {
		if *set == nil {
			*set = ReactionSet{}
		}
		for _, existing := range (*set)[emoji] {
			if existing == userID {
				return nil
			}
		}
		(*set)[emoji] = append((*set)[emoji], userID)
		return nil
	})
}

// Remove withdraws a reaction, pruning the emoji bucket when it empties
// and the whole record when no reactions remain.
func (service *ReactionsService) Remove(ctx context.Context, messageID, emoji, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		body, ok := snap[messageID]
		if !ok {
			return nil
		}
		var set ReactionSet
		if err := storage.Decode(body, &set); err != nil {
			return err
		}
		kept := set[emoji][:0]
		for _, existing := range set[emoji] {
			if existing != userID {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			delete(set, emoji)
		} else {
			set[emoji] = kept
		}
		if len(set) == 0 {
			delete(snap, messageID)
			return nil
		}
		encoded, err := storage.Encode(set)
		if err != nil {
			return err
		}
		snap[messageID] = encoded
		return nil
	})
}

// clear backs the message-delete cascade.
func (service *ReactionsService) clear(ctx context.Context, messageID string) error {
	return service.coll.remove(ctx, messageID)
}
