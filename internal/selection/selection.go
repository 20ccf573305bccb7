// Package selection models the checkbox selection over one page of the
// submission listing: which visible rows are marked, and how the
// select-all control and the bulk delete action should render as a
// result. State and events are plain values and Reduce is a pure
// function, so the behavior is testable without any rendering layer.
package selection

// State is the selection over the currently visible page. The zero
// value is an empty page with nothing selected. Reduce never mutates
// its input, it returns the next State.
type State struct {
	visible  []int64
	selected map[int64]struct{}
}

// Event advances selection state through Reduce.
type Event interface {
	apply(s State) State
}

// PageLoaded replaces the visible rows with IDs, kept in display order,
// and clears any previous selection. Browsers restore checkbox state on
// back-navigation, so a fresh page always starts unselected. Duplicate
// ids are kept once.
type PageLoaded struct {
	IDs []int64
}

// RowToggled sets the selection flag of a single row. An id that is not
// on the current page is ignored.
type RowToggled struct {
	ID      int64
	Checked bool
}

// SelectAllToggled marks or clears every visible row at once.
type SelectAllToggled struct {
	Checked bool
}

// Reduce applies ev to s and returns the next state.
func Reduce(s State, ev Event) State {
	if ev == nil {
		return s
	}
	return ev.apply(s)
}

func (e PageLoaded) apply(State) State {
	visible := make([]int64, 0, len(e.IDs))
	seen := make(map[int64]struct{}, len(e.IDs))
	for _, id := range e.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		visible = append(visible, id)
	}
	return State{visible: visible, selected: make(map[int64]struct{})}
}

func (e RowToggled) apply(s State) State {
	if !s.isVisible(e.ID) {
		return s
	}
	next := s.clone()
	if e.Checked {
		next.selected[e.ID] = struct{}{}
	} else {
		delete(next.selected, e.ID)
	}
	return next
}

func (e SelectAllToggled) apply(s State) State {
	next := State{visible: s.visible, selected: make(map[int64]struct{}, len(s.visible))}
	if e.Checked {
		for _, id := range s.visible {
			next.selected[id] = struct{}{}
		}
	}
	return next
}

func (s State) isVisible(id int64) bool {
	for _, v := range s.visible {
		if v == id {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	next := State{
		visible:  s.visible,
		selected: make(map[int64]struct{}, len(s.selected)),
	}
	for id := range s.selected {
		next.selected[id] = struct{}{}
	}
	return next
}

// Selected reports whether id is currently marked.
func (s State) Selected(id int64) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the marked ids in display order.
func (s State) SelectedIDs() []int64 {
	ids := make([]int64, 0, len(s.selected))
	for _, id := range s.visible {
		if s.Selected(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// VisibleIDs returns the ids of the current page in display order.
func (s State) VisibleIDs() []int64 {
	return append([]int64(nil), s.visible...)
}

// View is everything the listing template needs to draw the select-all
// checkbox and the bulk delete control.
type View struct {
	SelectAllChecked  bool    `json:"select_all_checked"`
	Indeterminate     bool    `json:"indeterminate"`
	BulkActionEnabled bool    `json:"bulk_action_enabled"`
	SelectedIDs       []int64 `json:"selected_ids"`
	SelectedCount     int     `json:"selected_count"`
	VisibleCount      int     `json:"visible_count"`
}

// Project derives the UI flags from s alone:
//
//	checked       when every visible row is marked and the page is not empty
//	indeterminate when some but not all visible rows are marked
//	bulk enabled  when at least one row is marked
func Project(s State) View {
	selected := s.SelectedIDs()
	n, total := len(selected), len(s.visible)
	return View{
		SelectAllChecked:  total > 0 && n == total,
		Indeterminate:     n > 0 && n < total,
		BulkActionEnabled: n > 0,
		SelectedIDs:       selected,
		SelectedCount:     n,
		VisibleCount:      total,
	}
}
