// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import "sync"

// # Board

// BoardState is a copy of the dashboard controls of one user.
type BoardState struct {
	Query      string      `json:"query"`
	Filter     FilterLabel `json:"filter"`
	Sort       Sort        `json:"sort"`
	Selected   *Augmented  `json:"selected,omitempty"`
	DialogOpen bool        `json:"dialogOpen"`
}

// Board is the mutable store behind the postulations dashboard of one user:
// search text, filter label, sort, and the record selected for deletion.
type Board struct {
	mu    sync.Mutex
	state BoardState
}

// NewBoard starts with every postulation shown, unsorted.
func NewBoard() *Board {
	return &Board{state: BoardState{
		Filter: LabelAll,
		Sort:   Sort{Field: GroupNone, Direction: Ascending},
	}}
}

// State returns a copy of the controls.
func (board *Board) State() BoardState {
	board.mu.Lock()
	defer board.mu.Unlock()

	state := board.state
	if state.Selected != nil {
		selected := *state.Selected
		state.Selected = &selected
	}
	return state
}

// SetQuery replaces the search text.
func (board *Board) SetQuery(query string) {
	board.mu.Lock()
	defer board.mu.Unlock()
	board.state.Query = query
}

// SelectFilter activates label. Picking the label of a different field sorts
// by that field ascending; the current direction is kept otherwise.
func (board *Board) SelectFilter(label FilterLabel) {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.state.Filter = label
	if field := label.GroupKey(); field != board.state.Sort.Field {
		board.state.Sort = Sort{Field: field, Direction: Ascending}
	}
}

// ToggleSort applies [Sort.Toggle] and returns the new sort.
func (board *Board) ToggleSort(field GroupKey) Sort {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.state.Sort = board.state.Sort.Toggle(field)
	return board.state.Sort
}

// Select points at record and opens the confirmation dialog.
func (board *Board) Select(record Augmented) {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.state.Selected = &record
	board.state.DialogOpen = true
}

// CloseDialog closes the confirmation dialog and keeps the selection.
func (board *Board) CloseDialog() {
	board.mu.Lock()
	defer board.mu.Unlock()
	board.state.DialogOpen = false
}

// Selected returns the selected record.
func (board *Board) Selected() (Augmented, bool) {
	board.mu.Lock()
	defer board.mu.Unlock()

	if board.state.Selected == nil {
		return Augmented{}, false
	}
	return *board.state.Selected, true
}

// ClearSelection closes the dialog and forgets the selected record.
func (board *Board) ClearSelection() {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.state.Selected = nil
	board.state.DialogOpen = false
}
