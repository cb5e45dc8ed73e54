// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify carries user-facing feedback from the engine back to the UI.

The engine only knows two collaborators: a [Sink] that accepts
notify(message, severity) and a [Navigator] that asks the UI to move to another
route. The dashboard service implements them with a per-user [Inbox], drained
by the UI, and a per-request [Redirect].
*/
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one message waiting to be shown.
type Notification struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// Sink receives user-facing notifications.
type Sink interface {
	Notify(message string, severity Severity)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(message string, severity Severity)

// Notify implements [Sink].
func (f SinkFunc) Notify(message string, severity Severity) { f(message, severity) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(string, Severity) {})

// # Inbox

// DefaultInboxCapacity bounds an inbox that the UI never drains.
const DefaultInboxCapacity = 50

// Inbox buffers notifications for one user until the UI drains them.
//
// When full, the oldest notification is dropped.
type Inbox struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewInbox returns an inbox holding at most capacity notifications.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &Inbox{capacity: capacity, now: time.Now}
}

// Notify implements [Sink].
func (inbox *Inbox) Notify(message string, severity Severity) {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()

	if len(inbox.items) == inbox.capacity {
		inbox.items = inbox.items[1:]
	}
	inbox.items = append(inbox.items, Notification{
		Message:  message,
		Severity: severity,
		At:       inbox.now().UTC(),
	})
}

// Drain returns the pending notifications, oldest first, and empties the inbox.
func (inbox *Inbox) Drain() []Notification {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()

	drained := inbox.items
	inbox.items = nil
	if drained == nil {
		drained = []Notification{}
	}
	return drained
}

// Len returns the number of pending notifications.
func (inbox *Inbox) Len() int {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	return len(inbox.items)
}

// # Logging decorator

// Logged writes every notification to logger before forwarding it to next.
func Logged(next Sink, logger *slog.Logger) Sink {
	return SinkFunc(func(message string, severity Severity) {
		level := slog.LevelInfo
		if severity == SeverityError {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "user_notified",
			slog.String("severity", string(severity)),
			slog.String("message", message),
		)
		next.Notify(message, severity)
	})
}

// # Navigation

// Navigator asks the UI to move to another route.
type Navigator interface {
	Navigate(route string)
}

// Redirect records the last requested route of a single request.
type Redirect struct {
	route string
}

// Navigate implements [Navigator].
func (redirect *Redirect) Navigate(route string) { redirect.route = route }

// Route returns the requested route, or "" when none was requested.
func (redirect *Redirect) Route() string { return redirect.route }
