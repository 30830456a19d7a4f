// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"sort"

	"github.com/Enclicainteractive/volt/storage"
)

// defaultTail is how many messages a listing returns when the caller
// does not say.
const defaultTail = 50

// DMMessage is one message inside a conversation.
type DMMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Author         string `json:"author"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"createdAt"`
	Edited         bool   `json:"edited,omitempty"`
	EditedAt       int64  `json:"editedAt,omitempty"`
}

// DMMessagesService manages conversation messages.
type DMMessagesService struct {
	db   *DB
	coll collection[DMMessage]
}

// List returns the tail of a conversation: the most recent limit
// messages in ascending creation order. limit <= 0 means the default.
func (service *DMMessagesService) List(conversationID string, limit int) ([]DMMessage, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var messages []DMMessage
	for _, message := range records {
		if message.ConversationID == conversationID {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt != messages[j].CreatedAt {
			return messages[i].CreatedAt < messages[j].CreatedAt
		}
		return messages[i].ID < messages[j].ID
	})
	if limit <= 0 {
		limit = defaultTail
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Append adds a message and stamps the conversation's last activity.
func (service *DMMessagesService) Append(ctx context.Context, conversationID, author, content string) (_ DMMessage, err error) {
	defer mon.Task()(&ctx)(&err)

	message := DMMessage{
		ID:             newID("dmsg"),
		ConversationID: conversationID,
		Author:         author,
		Content:        content,
		CreatedAt:      now(),
	}
	if err := service.coll.put(ctx, message.ID, message); err != nil {
		return DMMessage{}, err
	}
	if err := service.db.DMs.UpdateLastMessage(ctx, conversationID, message.CreatedAt); err != nil {
		return DMMessage{}, err
	}
	return message, nil
}

// Edit rewrites the content. Only the author may edit.
func (service *DMMessagesService) Edit(ctx context.Context, id, author, content string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, id, func(message *DMMessage, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("dm message %s", id)
		}
		if message.Author != author {
			return storage.ErrConstraint.New("only the author may edit message %s", id)
		}
		message.Content = content
		message.Edited = true
		message.EditedAt = now()
		return nil
	})
}

// Delete removes the message. Only the author may delete.
func (service *DMMessagesService) Delete(ctx context.Context, id, author string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.update(ctx, func(snap storage.Snapshot) error {
		body, ok := snap[id]
		if !ok {
			return storage.ErrNotFound.New("dm message %s", id)
		}
		var message DMMessage
		if err := storage.Decode(body, &message); err != nil {
			return err
		}
		if message.Author != author {
			return storage.ErrConstraint.New("only the author may delete message %s", id)
		}
		delete(snap, id)
		return nil
	})
}
