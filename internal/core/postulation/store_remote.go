// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"context"
	"strconv"

	"github.com/taibuivan/impulsa/internal/platform/upstream"
)

// # Remote Implementation

// RemoteRepository reads and mutates postulations through the platform API.
type RemoteRepository struct {
	client *upstream.Client
}

// NewRemoteRepository constructs a [RemoteRepository].
func NewRemoteRepository(client *upstream.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

func (repository *RemoteRepository) ListByInitiative(ctx context.Context, initiativeID int64) ([]Postulation, error) {
	var postulations []Postulation
	path := upstream.Path("applications", "initiative", strconv.FormatInt(initiativeID, 10))
	if err := repository.client.Get(ctx, path, nil, &postulations); err != nil {
		return nil, err
	}
	return postulations, nil
}

// acceptRequest is the body of the accept call.
type acceptRequest struct {
	ApplicationID int64 `json:"applicationId"`
	Accept        bool  `json:"accept"`
}

func (repository *RemoteRepository) Accept(ctx context.Context, id int64) error {
	return repository.client.Post(ctx, upstream.Path("applications", "accept"), acceptRequest{ApplicationID: id, Accept: true}, nil)
}

func (repository *RemoteRepository) Delete(ctx context.Context, id int64) error {
	return repository.client.Delete(ctx, upstream.Path("applications", strconv.FormatInt(id, 10)))
}
