// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package initiative manages the initiatives a user owns and the admin listing of
every initiative on the platform.

# Core Responsibility

  - Selection: [EligibleIDs] picks which initiatives can surface postulations.
  - Deletion: optimistic removal across every cached initiative listing.
  - Admin listing: the hybrid [Pager] that pages on the server for the
    unfiltered view and aggregates locally when a state filter is active.

Initiatives are owned by the platform API; this package only reads them,
except for deletion.
*/
package initiative

import (
	"encoding/json"
	"fmt"
)

// # Initiative Enums

// State is the lifecycle position of an initiative.
type State string

const (
	StateDraft     State = "draft"
	StateProposal  State = "proposal"
	StateInProcess State = "inprocess"
	StateApproved  State = "approved"
	StateDisable   State = "disable"
)

// ParseState validates a state received from a client.
func ParseState(value string) (State, error) {
	switch State(value) {
	case StateDraft, StateProposal, StateInProcess, StateApproved, StateDisable:
		return State(value), nil
	}
	return "", fmt.Errorf("initiative: unknown state %q", value)
}

// # Core Entities

// Initiative is a collaboration project published on the platform.
type Initiative struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	State        State           `json:"state"`
	Date         string          `json:"date,omitempty"`
	Img          string          `json:"img,omitempty"`
	User         json.RawMessage `json:"user,omitempty"` // Opaque owner summary
	VotesInFavor int             `json:"votesInFavor"`
	VotesAgainst int             `json:"votesAgainst"`
}

// Page is one server-side page of the admin listing.
type Page struct {
	Content       []Initiative `json:"content"`
	TotalElements int          `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Size          int          `json:"size"`
	Number        int          `json:"number"`
}

// # Selection

// EligibleIDs returns the ids of the initiatives whose postulations may be shown.
// Drafts never surface postulations. Order is preserved.
func EligibleIDs(initiatives []Initiative) []int64 {
	ids := make([]int64, 0, len(initiatives))
	for _, initiative := range initiatives {
		if initiative.State == StateDraft {
			continue
		}
		ids = append(ids, initiative.ID)
	}
	return ids
}

// # Cache Edits

// Without returns a copy of a cached initiative listing with id removed.
//
// It understands the two shapes stored under the initiatives prefix: plain
// lists and server pages (whose content is filtered and total decremented).
// Any other value is returned unchanged.
func Without(data any, id int64) any {
	switch listing := data.(type) {
	case []Initiative:
		return remove(listing, id)
	case Page:
		kept := remove(listing.Content, id)
		removed := len(listing.Content) - len(kept)
		listing.Content = kept
		listing.TotalElements -= removed
		return listing
	default:
		return data
	}
}

func remove(initiatives []Initiative, id int64) []Initiative {
	kept := make([]Initiative, 0, len(initiatives))
	for _, initiative := range initiatives {
		if initiative.ID != id {
			kept = append(kept, initiative)
		}
	}
	return kept
}
