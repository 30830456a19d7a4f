// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Enclicainteractive/volt/internal/jsonutil"
	"github.com/Enclicainteractive/volt/storage"
)

// Conversation is a direct-message conversation, pairwise or group.
type Conversation struct {
	ID             string   `json:"id"`
	Participants   []string `json:"participants"`
	Owner          string   `json:"owner,omitempty"`
	Group          bool     `json:"group,omitempty"`
	ParticipantKey string   `json:"participantKey,omitempty"`
	CreatedAt      int64    `json:"createdAt"`
	LastMessageAt  int64    `json:"lastMessageAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges unmodelled fields back into the record.
func (conv Conversation) MarshalJSON() ([]byte, error) {
	type alias Conversation
	return jsonutil.Marshal(alias(conv), conv.Extra)
}

// UnmarshalJSON keeps unmodelled fields aside in Extra.
func (conv *Conversation) UnmarshalJSON(data []byte) error {
	type alias Conversation
	var known alias
	extra, err := jsonutil.Unmarshal(data, &known)
	if err != nil {
		return err
	}
	*conv = Conversation(known)
	conv.Extra = extra
	return nil
}

// participantKey is the canonical identity of a pairwise conversation.
func participantKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// DMsService manages conversations.
type DMsService struct {
	db   *DB
	coll collection[Conversation]
}

// List returns the user's conversations, most recent activity first.
func (service *DMsService) List(userID string) ([]Conversation, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	var conversations []Conversation
	for _, conv := range records {
		for _, participant := range conv.Participants {
			if participant == userID {
				conversations = append(conversations, conv)
				break
			}
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		left, right := conversations[i], conversations[j]
		leftAt, rightAt := left.LastMessageAt, right.LastMessageAt
		if leftAt == 0 {
			leftAt = left.CreatedAt
		}
		if rightAt == 0 {
			rightAt = right.CreatedAt
		}
		if leftAt != rightAt {
			return leftAt > rightAt
		}
		return left.ID < right.ID
	})
	return conversations, nil
}

// Get returns a conversation or ErrNotFound.
func (service *DMsService) Get(id string) (Conversation, error) {
	conv, ok, err := service.coll.get(id)
	if err != nil {
		return Conversation{}, err
	}
	if !ok {
		return Conversation{}, storage.ErrNotFound.New("conversation %s", id)
	}
	return conv, nil
}

// GetOrCreate returns the pairwise conversation between two users,
// creating it if absent. Idempotent under the canonical participantKey.
func (service *DMsService) GetOrCreate(ctx context.Context, a, b string) (_ Conversation, err error) {
	defer mon.Task()(&ctx)(&err)

	if a == b {
		return Conversation{}, storage.ErrConstraint.New("pairwise conversation needs two distinct users")
	}
	key := participantKey(a, b)
	var result Conversation
	err = service.coll.update(ctx, func(snap storage.Snapshot) error {
		for _, body := range snap {
			var conv Conversation
			if err := storage.Decode(body, &conv); err != nil {
				return err
			}
			if !conv.Group && conv.ParticipantKey == key {
				result = conv
				return nil
			}
		}
		result = Conversation{
			ID:             newID("dm"),
			Participants:   []string{a, b},
			ParticipantKey: key,
			CreatedAt:      now(),
		}
		body, err := storage.Encode(result)
		if err != nil {
			return err
		}
		snap[result.ID] = body
		return nil
	})
	return result, err
}

// CreateGroup creates a group conversation. The owner is always a
// participant; fewer than three participants is a constraint violation.
func (service *DMsService) CreateGroup(ctx context.Context, owner string, participants []string) (_ Conversation, err error) {
	defer mon.Task()(&ctx)(&err)

	members := map[string]bool{owner: true}
	for _, participant := range participants {
		members[participant] = true
	}
	if len(members) < 3 {
		return Conversation{}, storage.ErrConstraint.New("group conversation needs at least 3 participants, got %d", len(members))
	}
	all := make([]string, 0, len(members))
	for member := range members {
		all = append(all, member)
	}
	sort.Strings(all)

	conv := Conversation{
		ID:           newID("dm"),
		Participants: all,
		Owner:        owner,
		Group:        true,
		CreatedAt:    now(),
	}
	if err := service.coll.put(ctx, conv.ID, conv); err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

// UpdateLastMessage stamps the conversation's last activity.
func (service *DMsService) UpdateLastMessage(ctx context.Context, id string, at int64) error {
	return service.coll.mutate(ctx, id, func(conv *Conversation, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("conversation %s", id)
		}
		conv.LastMessageAt = at
		return nil
	})
}
