// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative

import (
	"context"
	"net/url"
	"strconv"

	"github.com/taibuivan/impulsa/internal/platform/upstream"
)

// # Remote Implementation

// RemoteRepository reads and deletes initiatives through the platform API.
type RemoteRepository struct {
	client *upstream.Client
}

// NewRemoteRepository constructs a [RemoteRepository].
func NewRemoteRepository(client *upstream.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

func (repository *RemoteRepository) ListMine(ctx context.Context) ([]Initiative, error) {
	var initiatives []Initiative
	if err := repository.client.Get(ctx, upstream.Path("initiatives", "mine"), nil, &initiatives); err != nil {
		return nil, err
	}
	if initiatives == nil {
		initiatives = []Initiative{}
	}
	return initiatives, nil
}

func (repository *RemoteRepository) ListPage(ctx context.Context, page, size int) (Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result Page
	if err := repository.client.Get(ctx, "initiatives", query, &result); err != nil {
		return Page{}, err
	}
	if result.Content == nil {
		result.Content = []Initiative{}
	}
	return result, nil
}

func (repository *RemoteRepository) Delete(ctx context.Context, id int64) error {
	return repository.client.Delete(ctx, upstream.Path("initiatives", strconv.FormatInt(id, 10)))
}
