// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/Enclicainteractive/volt/internal/jsonutil"
	"github.com/Enclicainteractive/volt/storage"
)

// Message is one channel message.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	Edited    bool   `json:"edited,omitempty"`
	EditedAt  int64  `json:"editedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges unmodelled fields back into the record.
func (message Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return jsonutil.Marshal(alias(message), message.Extra)
}

// UnmarshalJSON keeps unmodelled fields aside in Extra.
func (message *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var known alias
	extra, err := jsonutil.Unmarshal(data, &known)
	if err != nil {
		return err
	}
	*message = Message(known)
	message.Extra = extra
	return nil
}

// MessagesService manages channel messages.
type MessagesService struct {
	db   *DB
	coll collection[Message]
}

// Get returns a message or ErrNotFound.
func (service *MessagesService) Get(id string) (Message, error) {
	message, ok, err := service.coll.get(id)
	if err != nil {
		return Message{}, err
	}
	if !ok {
		return Message{}, storage.ErrNotFound.New("message %s", id)
	}
	return message, nil
}

// ListChannel returns the tail of a channel: up to limit messages
// sorted by creation time ascending, ties broken by identity. When
// beforeID names a known message only messages created strictly before
// it are considered.
func (service *MessagesService) ListChannel(channelID string, limit int, beforeID string) ([]Message, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}

	var cutoff *Message
	if beforeID != "" {
		if boundary, ok := records[beforeID]; ok {
			cutoff = &boundary
		}
	}

	var messages []Message
	for _, message := range records {
		if message.ChannelID != channelID {
			continue
		}
		if cutoff != nil && !createdBefore(message, *cutoff) {
			continue
		}
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool { return createdBefore(messages[i], messages[j]) })
	if limit <= 0 {
		limit = defaultTail
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// createdBefore is the listing order: createdAt ascending, identity
// ascending on ties.
func createdBefore(a, b Message) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// Create stores a new message.
func (service *MessagesService) Create(ctx context.Context, channelID, author, content string) (_ Message, err error) {
	defer mon.Task()(&ctx)(&err)

	message := Message{
		ID:        newID("msg"),
		ChannelID: channelID,
		Author:    author,
		Content:   content,
		CreatedAt: now(),
	}
	if err := service.coll.put(ctx, message.ID, message); err != nil {
		return Message{}, err
	}
	return message, nil
}

// Edit rewrites the content of an existing message.
func (service *MessagesService) Edit(ctx context.Context, id, content string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, id, func(message *Message, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("message %s", id)
		}
		message.Content = content
		message.Edited = true
		message.EditedAt = now()
		return nil
	})
}

// Delete removes a message and its reactions.
func (service *MessagesService) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := service.coll.remove(ctx, id); err != nil {
		return err
	}
	return service.db.Reactions.clear(ctx, id)
}
