// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

import "strings"

// Collection names a logical container of records.
type Collection string

// The fixed family of collections the platform stores.
const (
	Users          Collection = "users"
	Friends        Collection = "friends"
	FriendRequests Collection = "friend_requests"
	Bots           Collection = "bots"
	Categories     Collection = "categories"
	E2EKeys        Collection = "e2e_keys"
	DMs            Collection = "dms"
	DMMessages     Collection = "dm_messages"
	Servers        Collection = "servers"
	Channels       Collection = "channels"
	Messages       Collection = "messages"
	Reactions      Collection = "reactions"
	Invites        Collection = "invites"
	Blocked        Collection = "blocked"
	Files          Collection = "files"
	Attachments    Collection = "attachments"
	Discovery      Collection = "discovery"
	GlobalBans     Collection = "global_bans"
	ServerBans     Collection = "server_bans"
	AdminLogs      Collection = "admin_logs"
	SystemMessages Collection = "system_messages"
	E2ETrue        Collection = "e2e_true"
	PinnedMessages Collection = "pinned_messages"
	SelfVolts      Collection = "self_volts"
	Federation     Collection = "federation"
	ServerStart    Collection = "server_start"
	CallLogs       Collection = "call_logs"
)

// All lists every collection in a stable order. Export, import,
// preload and verification all iterate this list.
var All = []Collection{
	Users, Friends, FriendRequests, Bots, Categories, E2EKeys,
	DMs, DMMessages, Servers, Channels, Messages, Reactions,
	Invites, Blocked, Files, Attachments, Discovery,
	GlobalBans, ServerBans, AdminLogs, SystemMessages,
	E2ETrue, PinnedMessages, SelfVolts, Federation, ServerStart,
	CallLogs,
}

// Valid reports whether coll is one of the known collections.
func (coll Collection) Valid() bool {
	for _, known := range All {
		if coll == known {
			return true
		}
	}
	return false
}

// Filename returns the fixed on-disk name of the collection under the
// file-tree adapter, e.g. friend_requests maps to friend-requests.json.
func (coll Collection) Filename() string {
	return strings.ReplaceAll(string(coll), "_", "-") + ".json"
}

// ByFilename resolves a file-tree filename back to its collection.
func ByFilename(name string) (Collection, bool) {
	for _, coll := range All {
		if coll.Filename() == name {
			return coll, true
		}
	}
	return "", false
}

// Singleton reports whether the collection holds exactly one record
// stored as a one-entry keyed-map.
func (coll Collection) Singleton() bool {
	return coll == ServerStart || coll == Federation
}
