// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative

import "context"

// Repository is the platform API surface used for initiatives.
type Repository interface {
	// ListMine returns the initiatives owned by the caller.
	ListMine(ctx context.Context) ([]Initiative, error)

	// ListPage returns one zero-based page of every initiative (admin only).
	ListPage(ctx context.Context, page, size int) (Page, error)

	// Delete removes an initiative.
	Delete(ctx context.Context, id int64) error
}
