// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/impulsa/internal/core/postulation"
)

/*
TestBoard_Controls verifies the filter/sort interplay of the dashboard store.
*/
func TestBoard_Controls(t *testing.T) {
	board := postulation.NewBoard()
	state := board.State()
	assert.Equal(t, postulation.LabelAll, state.Filter)
	assert.Equal(t, postulation.GroupNone, state.Sort.Field)

	// 1. A label sorts by its field
	board.SelectFilter(postulation.LabelApplicant)
	assert.Equal(t, postulation.Sort{Field: postulation.GroupUserName, Direction: postulation.Ascending}, board.State().Sort)

	// 2. Toggling the same field flips, re-selecting the label keeps the direction
	assert.Equal(t, postulation.Descending, board.ToggleSort(postulation.GroupUserName).Direction)
	board.SelectFilter(postulation.LabelApplicant)
	assert.Equal(t, postulation.Descending, board.State().Sort.Direction)

	// 3. "Todas" returns to the unsorted list
	board.SelectFilter(postulation.LabelAll)
	assert.Equal(t, postulation.GroupNone, board.State().Sort.Field)

	board.SetQuery("huerto")
	assert.Equal(t, "huerto", board.State().Query)
}

/*
TestBoard_Selection verifies the selection and dialog lifecycle.
*/
func TestBoard_Selection(t *testing.T) {
	board := postulation.NewBoard()
	_, ok := board.Selected()
	assert.False(t, ok)

	board.Select(postulation.Augmented{ID: 9})
	state := board.State()
	assert.True(t, state.DialogOpen)
	assert.EqualValues(t, 9, state.Selected.ID)

	// the state is a copy
	state.Selected.ID = 10
	selected, _ := board.Selected()
	assert.EqualValues(t, 9, selected.ID)

	board.CloseDialog()
	_, ok = board.Selected()
	assert.True(t, ok)
	assert.False(t, board.State().DialogOpen)

	board.ClearSelection()
	_, ok = board.Selected()
	assert.False(t, ok)
}

func TestParseFilterLabel(t *testing.T) {
	label, err := postulation.ParseFilterLabel("")
	assert.NoError(t, err)
	assert.Equal(t, postulation.LabelAll, label)

	label, err = postulation.ParseFilterLabel("Habilidad general")
	assert.NoError(t, err)
	assert.Equal(t, postulation.GroupGSkills, label.GroupKey())

	_, err = postulation.ParseFilterLabel("Estado")
	assert.Error(t, err)
}
