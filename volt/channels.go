// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/Enclicainteractive/volt/internal/jsonutil"
	"github.com/Enclicainteractive/volt/storage"
)

// Channel is one server channel.
type Channel struct {
	ID        string `json:"id"`
	ServerID  string `json:"serverId,omitempty"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges unmodelled fields back into the record.
func (channel Channel) MarshalJSON() ([]byte, error) {
	type alias Channel
	return jsonutil.Marshal(alias(channel), channel.Extra)
}

// UnmarshalJSON keeps unmodelled fields aside in Extra.
func (channel *Channel) UnmarshalJSON(data []byte) error {
	type alias Channel
	var known alias
	extra, err := jsonutil.Unmarshal(data, &known)
	if err != nil {
		return err
	}
	*channel = Channel(known)
	channel.Extra = extra
	return nil
}

// ChannelsService manages channels. The collection exists in two wire
// shapes: the canonical keyed-map {channelId: channel} and the legacy
// server-bucketed {serverId: [channel]}. Reads understand both; every
// mutation re-emits the shape the data was loaded in.
type ChannelsService struct {
	db *DB
}

// channelSet is the decoded collection plus the shape it arrived in.
type channelSet struct {
	legacy bool
	// order lists channel ids per server, preserving legacy bucket order.
	order    map[string][]string
	servers  []string
	channels map[string]Channel
}

func decodeChannels(snap storage.Snapshot) (*channelSet, error) {
	set := &channelSet{
		order:    map[string][]string{},
		channels: map[string]Channel{},
	}
	for _, body := range snap {
		if len(bytes.TrimSpace(body)) > 0 && bytes.TrimSpace(body)[0] == '[' {
			set.legacy = true
		}
		break
	}
	if !set.legacy {
		for id, body := range snap {
			var channel Channel
			if err := storage.Decode(body, &channel); err != nil {
				return nil, err
			}
			if channel.ID == "" {
				channel.ID = id
			}
			set.channels[channel.ID] = channel
		}
		return set, nil
	}

	for serverID, body := range snap {
		var bucket []Channel
		if err := storage.Decode(body, &bucket); err != nil {
			return nil, err
		}
		set.servers = append(set.servers, serverID)
		for _, channel := range bucket {
			if channel.ServerID == "" {
				channel.ServerID = serverID
			}
			set.channels[channel.ID] = channel
			set.order[serverID] = append(set.order[serverID], channel.ID)
		}
	}
	sort.Strings(set.servers)
	return set, nil
}

func (set *channelSet) encode() (storage.Snapshot, error) {
	snap := storage.Snapshot{}
	if !set.legacy {
		for id, channel := range set.channels {
			body, err := storage.Encode(channel)
			if err != nil {
				return nil, err
			}
			snap[id] = body
		}
		return snap, nil
	}

	buckets := map[string][]Channel{}
	for _, serverID := range set.servers {
		buckets[serverID] = nil
		for _, id := range set.order[serverID] {
			if channel, ok := set.channels[id]; ok {
				buckets[serverID] = append(buckets[serverID], channel)
			}
		}
	}
	// channels added to servers unseen in the legacy payload get a
	// fresh bucket
	for id, channel := range set.channels {
		if !set.placed(id) {
			buckets[channel.ServerID] = append(buckets[channel.ServerID], channel)
		}
	}
	for serverID, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		body, err := storage.Encode(bucket)
		if err != nil {
			return nil, err
		}
		snap[serverID] = body
	}
	return snap, nil
}

func (set *channelSet) placed(channelID string) bool {
	for _, ids := range set.order {
		for _, id := range ids {
			if id == channelID {
				return true
			}
		}
	}
	return false
}

func (set *channelSet) upsert(channel Channel) {
	_, existed := set.channels[channel.ID]
	set.channels[channel.ID] = channel
	if set.legacy && !existed && set.order[channel.ServerID] == nil {
		set.servers = append(set.servers, channel.ServerID)
		sort.Strings(set.servers)
	}
}

func (set *channelSet) delete(channelID string) {
	delete(set.channels, channelID)
	for serverID, ids := range set.order {
		kept := ids[:0]
		for _, id := range ids {
			if id != channelID {
				kept = append(kept, id)
			}
		}
		set.order[serverID] = kept
	}
}

func (service *ChannelsService) edit(ctx context.Context, fn func(*channelSet) error) error {
	return service.db.cache().Update(ctx, storage.Channels, func(snap storage.Snapshot) (storage.Snapshot, error) {
		set, err := decodeChannels(snap)
		if err != nil {
			return nil, err
		}
		if err := fn(set); err != nil {
			return nil, err
		}
		return set.encode()
	})
}

func (service *ChannelsService) view() (*channelSet, error) {
	return decodeChannels(service.db.cache().View(storage.Channels))
}

// Get returns a channel by identity from either shape.
func (service *ChannelsService) Get(id string) (Channel, error) {
	set, err := service.view()
	if err != nil {
		return Channel{}, err
	}
	channel, ok := set.channels[id]
	if !ok {
		return Channel{}, storage.ErrNotFound.New("channel %s", id)
	}
	return channel, nil
}

// ListByServer returns a server's channels in stored order.
func (service *ChannelsService) ListByServer(serverID string) ([]Channel, error) {
	set, err := service.view()
	if err != nil {
		return nil, err
	}
	var channels []Channel
	if set.legacy {
		for _, id := range set.order[serverID] {
			if channel, ok := set.channels[id]; ok {
				channels = append(channels, channel)
			}
		}
		return channels, nil
	}
	for _, channel := range set.channels {
		if channel.ServerID == serverID {
			channels = append(channels, channel)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].ID < channels[j].ID })
	return channels, nil
}

// Create stores a new channel, preserving the collection's shape.
func (service *ChannelsService) Create(ctx context.Context, channel Channel) (_ Channel, err error) {
	defer mon.Task()(&ctx)(&err)

	if channel.ID == "" {
		channel.ID = newID("ch")
	}
	if channel.CreatedAt == 0 {
		channel.CreatedAt = now()
	}
	err = service.edit(ctx, func(set *channelSet) error {
		if _, exists := set.channels[channel.ID]; exists {
			return storage.ErrAlreadyExists.New("channel %s", channel.ID)
		}
		set.upsert(channel)
		if set.legacy {
			set.order[channel.ServerID] = append(set.order[channel.ServerID], channel.ID)
		}
		return nil
	})
	if err != nil {
		return Channel{}, err
	}
	return channel, nil
}

// Update applies fn to an existing channel.
func (service *ChannelsService) Update(ctx context.Context, id string, fn func(*Channel)) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.edit(ctx, func(set *channelSet) error {
		channel, ok := set.channels[id]
		if !ok {
			return storage.ErrNotFound.New("channel %s", id)
		}
		fn(&channel)
		channel.ID = id
		set.channels[id] = channel
		return nil
	})
}

// Delete removes a channel.
func (service *ChannelsService) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.edit(ctx, func(set *channelSet) error {
		if _, ok := set.channels[id]; !ok {
			return storage.ErrNotFound.New("channel %s", id)
		}
		set.delete(id)
		return nil
	})
}

// deleteByServer backs the server-delete cascade.
func (service *ChannelsService) deleteByServer(ctx context.Context, serverID string) error {
	return service.edit(ctx, func(set *channelSet) error {
		for id, channel := range set.channels {
			if channel.ServerID == serverID {
				set.delete(id)
			}
		}
		delete(set.order, serverID)
		return nil
	})
}
