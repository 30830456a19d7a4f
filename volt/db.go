// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

// Package volt exposes the typed collection services the rest of the
// platform calls. Services read from the router's cache and never see
// the adapter kind.
package volt

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"go.uber.org/zap"
	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"github.com/Enclicainteractive/volt/storage"
	"github.com/Enclicainteractive/volt/storage/cache"
	"github.com/Enclicainteractive/volt/storage/router"
)

var mon = monkit.Package()

// now returns the current time in milliseconds since epoch. Tests stub
// it to control clocks.
var now = func() int64 { return time.Now().UnixMilli() }

// Config carries service-level tunables.
type Config struct {
	// ChildVerificationTTL is how long a child age verification stays
	// valid. Adult verifications never expire.
	ChildVerificationTTL time.Duration
	// AdminLogCap bounds the admin log tail kept per query.
	AdminLogCap int
	// CallLogCap bounds per-conversation call listings.
	CallLogCap int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ChildVerificationTTL: 30 * 24 * time.Hour,
		AdminLogCap:          500,
		CallLogCap:           100,
	}
}

// DB bundles every collection service over one router.
type DB struct {
	log    *zap.Logger
	router *router.Router
	config Config

	Users          *UsersService
	Friends        *FriendsService
	FriendRequests *FriendRequestsService
	DMs            *DMsService
	DMMessages     *DMMessagesService
	Messages       *MessagesService
	Channels       *ChannelsService
	Servers        *ServersService
	Invites        *InvitesService
	Reactions      *ReactionsService
	Discovery      *DiscoveryService
	GlobalBans     *GlobalBansService
	ServerBans     *ServerBansService
	AdminLogs      *AdminLogsService
	SystemMessages *SystemMessagesService
	CallLogs       *CallLogsService
	Files          *FilesService
	Attachments    *AttachmentsService
	Federation     *SingletonService
	ServerStart    *SingletonService

	// Collections without domain operations get raw CRUD.
	Bots           *RawService
	Categories     *RawService
	E2EKeys        *RawService
	E2ETrue        *RawService
	Blocked        *RawService
	PinnedMessages *RawService
	SelfVolts      *RawService
}

// Open wires every service to the router.
func Open(log *zap.Logger, rtr *router.Router, config Config) *DB {
	db := &DB{log: log, router: rtr, config: config}

	db.Users = &UsersService{db: db, coll: collection[User]{db, storage.Users}}
	db.Friends = &FriendsService{db: db, coll: collection[FriendList]{db, storage.Friends}}
	db.FriendRequests = &FriendRequestsService{db: db, coll: collection[FriendRequest]{db, storage.FriendRequests}}
	db.DMs = &DMsService{db: db, coll: collection[Conversation]{db, storage.DMs}}
	db.DMMessages = &DMMessagesService{db: db, coll: collection[DMMessage]{db, storage.DMMessages}}
	db.Messages = &MessagesService{db: db, coll: collection[Message]{db, storage.Messages}}
	db.Channels = &ChannelsService{db: db}
	db.Servers = &ServersService{db: db, coll: collection[Server]{db, storage.Servers}}
	db.Invites = &InvitesService{db: db, coll: collection[Invite]{db, storage.Invites}}
	db.Reactions = &ReactionsService{db: db, coll: collection[ReactionSet]{db, storage.Reactions}}
	db.Discovery = &DiscoveryService{db: db}
	db.GlobalBans = &GlobalBansService{db: db, coll: collection[Ban]{db, storage.GlobalBans}}
	db.ServerBans = &ServerBansService{db: db, coll: collection[Ban]{db, storage.ServerBans}}
	db.AdminLogs = &AdminLogsService{db: db, coll: collection[AdminLog]{db, storage.AdminLogs}}
	db.SystemMessages = &SystemMessagesService{db: db, coll: collection[SystemMessage]{db, storage.SystemMessages}}
	db.CallLogs = &CallLogsService{db: db, coll: collection[CallLog]{db, storage.CallLogs}}
	db.Files = &FilesService{db: db, coll: collection[FileMeta]{db, storage.Files}}
	db.Attachments = &AttachmentsService{db: db, coll: collection[AttachmentList]{db, storage.Attachments}}
	db.Federation = &SingletonService{db: db, name: storage.Federation}
	db.ServerStart = &SingletonService{db: db, name: storage.ServerStart}

	db.Bots = &RawService{db: db, name: storage.Bots}
	db.Categories = &RawService{db: db, name: storage.Categories}
	db.E2EKeys = &RawService{db: db, name: storage.E2EKeys}
	db.E2ETrue = &RawService{db: db, name: storage.E2ETrue}
	db.Blocked = &RawService{db: db, name: storage.Blocked}
	db.PinnedMessages = &RawService{db: db, name: storage.PinnedMessages}
	db.SelfVolts = &RawService{db: db, name: storage.SelfVolts}

	return db
}

// Router returns the router the services run over.
func (db *DB) Router() *router.Router { return db.router }

func (db *DB) cache() *cache.Cache { return db.router.Cache() }

// newID returns a fresh random record identity with a type prefix.
func newID(prefix string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return prefix + "_" + hex.EncodeToString(buf)
}

const inviteAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newInviteCode returns a random 8-character upper-case base-36 code.
func newInviteCode() string {
	code := make([]byte, 8)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, _ := rand.Int(rand.Reader, max)
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code)
}
