// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	requestutil "github.com/taibuivan/impulsa/internal/platform/request"
	"github.com/taibuivan/impulsa/internal/platform/respond"
)

// NewNotificationsHandler serves GET /api/v1/notifications: it returns and
// clears the caller's pending notifications, oldest first.
func NewNotificationsHandler(sessions *Sessions) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		userID, err := requestutil.RequiredUserID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, sessions.Inbox(userID).Drain())
	}
}
