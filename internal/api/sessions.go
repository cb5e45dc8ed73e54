// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/impulsa/internal/core/initiative"
	"github.com/taibuivan/impulsa/internal/core/postulation"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	"github.com/taibuivan/impulsa/internal/platform/session"
)

// # Per-User State

// Session is everything the dashboard remembers about one user between requests.
type Session struct {
	Board  *postulation.Board
	Cursor *initiative.Cursor
	Inbox  *notify.Inbox
	Sink   notify.Sink
}

// Sessions serves per-user state to the domain handlers.
type Sessions struct {
	registry *session.Registry[*Session]
}

// NewSessions builds the session registry. Sessions idle longer than ttl are
// forgotten; pageSize is the initial admin page size.
func NewSessions(ttl time.Duration, pageSize int, logger *slog.Logger) *Sessions {
	return &Sessions{
		registry: session.NewRegistry(ttl, func(userID string) *Session {
			inbox := notify.NewInbox(notify.DefaultInboxCapacity)
			return &Session{
				Board:  postulation.NewBoard(),
				Cursor: initiative.NewCursor(pageSize),
				Inbox:  inbox,
				Sink:   notify.Logged(inbox, logger.With(slog.String("user_id", userID))),
			}
		}),
	}
}

// Board implements [postulation.Sessions].
func (sessions *Sessions) Board(userID string) *postulation.Board {
	return sessions.registry.Get(userID).Board
}

// Cursor implements [initiative.Sessions].
func (sessions *Sessions) Cursor(userID string) *initiative.Cursor {
	return sessions.registry.Get(userID).Cursor
}

// Sink implements [postulation.Sessions] and [initiative.Sessions].
func (sessions *Sessions) Sink(userID string) notify.Sink {
	return sessions.registry.Get(userID).Sink
}

// Inbox returns the pending notifications of userID.
func (sessions *Sessions) Inbox(userID string) *notify.Inbox {
	return sessions.registry.Get(userID).Inbox
}

// Run evicts idle sessions until ctx is cancelled.
func (sessions *Sessions) Run(ctx context.Context, interval time.Duration) {
	sessions.registry.Run(ctx, interval)
}
