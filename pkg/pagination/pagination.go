// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged listings.
//
// # Overview
//
// The platform API pages with a zero-based "page" index and a "size". This
// package parses those parameters from requests, builds the response metadata,
// and slices locally aggregated rows into the same page windows.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultSize is the number of items per page if not specified.
	DefaultSize = 12
	// MaxSize is the upper bound for items per page to prevent system abuse.
	MaxSize = 100
	// FirstPage is the starting page (0-indexed, as the platform API expects).
	FirstPage = 0
)

// Params holds the parsed page index and size from a request's query string.
type Params struct {
	Page int
	Size int
	// HasPage reports whether the caller sent an explicit page index.
	HasPage bool
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
//
// It automatically calculates the TotalPages based on the total count and size.
func NewMeta(page, size, total int) Meta {
	return Meta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}
}

// TotalPages returns how many pages of size are needed for total rows.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Window returns the rows of page index for the given size.
//
// An index past the last page is clamped to the last page, so shrinking the
// row set (e.g. after a deletion) never yields an empty window while rows remain.
func Window[T any](rows []T, index, size int) []T {
	if size <= 0 || len(rows) == 0 {
		return []T{}
	}

	index = Clamp(index, len(rows), size)
	start := index * size
	end := min(start+size, len(rows))

	return rows[start:end]
}

// Clamp bounds index to the valid page range for total rows.
func Clamp(index, total, size int) int {
	last := TotalPages(total, size) - 1
	if index > last {
		index = last
	}
	if index < FirstPage {
		index = FirstPage
	}
	return index
}

// FromRequest parses "page" and "size" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [FirstPage], defaultSize, or [MaxSize].
func FromRequest(r *http.Request, defaultSize int) Params {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}

	page, hasPage := parseIntParam(r, "page", FirstPage)
	size, _ := parseIntParam(r, "size", defaultSize)

	if page < FirstPage {
		page = FirstPage
	}

	if size < 1 || size > MaxSize {
		size = defaultSize
	}

	return Params{Page: page, Size: size, HasPage: hasPage}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal, false
	}

	return n, true
}
