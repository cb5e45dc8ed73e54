// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import "context"

// Repository is the platform API surface used for postulations.
type Repository interface {
	// ListByInitiative returns the raw postulations received by one initiative.
	ListByInitiative(ctx context.Context, initiativeID int64) ([]Postulation, error)

	// Accept accepts a postulation.
	Accept(ctx context.Context, id int64) error

	// Delete removes a postulation.
	Delete(ctx context.Context, id int64) error
}

// AppliedStore keeps the "user already applied to this initiative" flags read
// by the apply flow.
type AppliedStore interface {
	IsApplied(ctx context.Context, userID string, initiativeID int64) (bool, error)
	MarkApplied(ctx context.Context, userID string, initiativeID int64) error
	Clear(ctx context.Context, userID string, initiativeID int64) error
}
