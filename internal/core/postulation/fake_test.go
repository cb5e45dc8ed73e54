// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/taibuivan/impulsa/internal/core/initiative"
	"github.com/taibuivan/impulsa/internal/core/postulation"
)

// fakeRepository is an in-memory [postulation.Repository].
type fakeRepository struct {
	list   func(ctx context.Context, initiativeID int64) ([]postulation.Postulation, error)
	accept func(ctx context.Context, id int64) error
	delete func(ctx context.Context, id int64) error

	listCalls atomic.Int32
}

func (repo *fakeRepository) ListByInitiative(ctx context.Context, initiativeID int64) ([]postulation.Postulation, error) {
	repo.listCalls.Add(1)
	return repo.list(ctx, initiativeID)
}

func (repo *fakeRepository) Accept(ctx context.Context, id int64) error {
	if repo.accept == nil {
		return nil
	}
	return repo.accept(ctx, id)
}

func (repo *fakeRepository) Delete(ctx context.Context, id int64) error {
	if repo.delete == nil {
		return nil
	}
	return repo.delete(ctx, id)
}

// byInitiative serves fixed postulations per initiative.
func byInitiative(data map[int64][]postulation.Postulation) func(context.Context, int64) ([]postulation.Postulation, error) {
	return func(_ context.Context, initiativeID int64) ([]postulation.Postulation, error) {
		return data[initiativeID], nil
	}
}

// fakeInitiatives is a [postulation.InitiativeSource].
type fakeInitiatives []initiative.Initiative

func (initiatives fakeInitiatives) ListMine(context.Context, string) ([]initiative.Initiative, error) {
	return initiatives, nil
}

// memoryApplied is an in-memory [postulation.AppliedStore].
type memoryApplied struct {
	mu    sync.Mutex
	flags map[string]bool
}

func newMemoryApplied() *memoryApplied {
	return &memoryApplied{flags: make(map[string]bool)}
}

func appliedID(userID string, initiativeID int64) string {
	return userID + "/" + strconv.FormatInt(initiativeID, 10)
}

func (store *memoryApplied) IsApplied(_ context.Context, userID string, initiativeID int64) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.flags[appliedID(userID, initiativeID)], nil
}

func (store *memoryApplied) MarkApplied(_ context.Context, userID string, initiativeID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.flags[appliedID(userID, initiativeID)] = true
	return nil
}

func (store *memoryApplied) Clear(_ context.Context, userID string, initiativeID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.flags, appliedID(userID, initiativeID))
	return nil
}

// record builds an augmented postulation for projection tests.
func record(id int64, userName, initiativeTitle, gSkills, date string) postulation.Augmented {
	return postulation.Augmented{
		ID:              id,
		UserName:        userName,
		InitiativeTitle: initiativeTitle,
		InitiativeImage: "/img/" + initiativeTitle + ".png",
		GSkills:         gSkills,
		HardSkills:      []string{},
		ApplicationDate: date,
	}
}

func ids(records []postulation.Augmented) []int64 {
	result := make([]int64, len(records))
	for i, r := range records {
		result[i] = r.ID
	}
	return result
}
