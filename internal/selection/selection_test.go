package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(ids ...int64) State {
	return Reduce(State{}, PageLoaded{IDs: ids})
}

func TestProjectEmptyPage(t *testing.T) {
	v := Project(loaded())
	assert.False(t, v.SelectAllChecked)
	assert.False(t, v.Indeterminate)
	assert.False(t, v.BulkActionEnabled)
	assert.Zero(t, v.SelectedCount)
	assert.Zero(t, v.VisibleCount)
}

func TestTriState(t *testing.T) {
	s := loaded(1, 2, 3)

	v := Project(s)
	assert.False(t, v.SelectAllChecked)
	assert.False(t, v.Indeterminate)
	assert.False(t, v.BulkActionEnabled)

	s = Reduce(s, RowToggled{ID: 2, Checked: true})
	v = Project(s)
	assert.False(t, v.SelectAllChecked)
	assert.True(t, v.Indeterminate)
	assert.True(t, v.BulkActionEnabled)
	assert.Equal(t, []int64{2}, v.SelectedIDs)

	s = Reduce(s, RowToggled{ID: 1, Checked: true})
	s = Reduce(s, RowToggled{ID: 3, Checked: true})
	v = Project(s)
	assert.True(t, v.SelectAllChecked)
	assert.False(t, v.Indeterminate)
	assert.Equal(t, []int64{1, 2, 3}, v.SelectedIDs)

	s = Reduce(s, RowToggled{ID: 1, Checked: false})
	v = Project(s)
	assert.False(t, v.SelectAllChecked)
	assert.True(t, v.Indeterminate)
	assert.Equal(t, 2, v.SelectedCount)
}

func TestSelectAllToggle(t *testing.T) {
	s := loaded(10, 20, 30)

	s = Reduce(s, SelectAllToggled{Checked: true})
	v := Project(s)
	assert.True(t, v.SelectAllChecked)
	assert.Equal(t, []int64{10, 20, 30}, v.SelectedIDs)

	s = Reduce(s, SelectAllToggled{Checked: false})
	v = Project(s)
	assert.False(t, v.SelectAllChecked)
	assert.False(t, v.BulkActionEnabled)
	assert.Empty(t, v.SelectedIDs)
}

func TestSelectAllOverridesPartial(t *testing.T) {
	s := loaded(1, 2, 3)
	s = Reduce(s, RowToggled{ID: 3, Checked: true})
	s = Reduce(s, SelectAllToggled{Checked: false})
	assert.Zero(t, Project(s).SelectedCount)

	s = Reduce(s, RowToggled{ID: 1, Checked: true})
	s = Reduce(s, SelectAllToggled{Checked: true})
	assert.Equal(t, []int64{1, 2, 3}, Project(s).SelectedIDs)
}

func TestPageLoadResetsSelection(t *testing.T) {
	s := loaded(1, 2, 3)
	s = Reduce(s, SelectAllToggled{Checked: true})
	require.Equal(t, 3, Project(s).SelectedCount)

	s = Reduce(s, PageLoaded{IDs: []int64{4, 5}})
	v := Project(s)
	assert.Zero(t, v.SelectedCount)
	assert.False(t, v.SelectAllChecked)
	assert.False(t, v.BulkActionEnabled)
	assert.Equal(t, []int64{4, 5}, s.VisibleIDs())
}

func TestStaleRowIgnored(t *testing.T) {
	s := loaded(1, 2)
	s = Reduce(s, RowToggled{ID: 99, Checked: true})
	assert.Zero(t, Project(s).SelectedCount)

	// A row that left the page on reload stays gone even if toggled again.
	s = Reduce(s, RowToggled{ID: 1, Checked: true})
	s = Reduce(s, PageLoaded{IDs: []int64{2, 3}})
	s = Reduce(s, RowToggled{ID: 1, Checked: true})
	assert.Empty(t, s.SelectedIDs())
}

func TestPageLoadDropsDuplicates(t *testing.T) {
	s := loaded(7, 7, 8, 7)
	assert.Equal(t, []int64{7, 8}, s.VisibleIDs())

	s = Reduce(s, SelectAllToggled{Checked: true})
	v := Project(s)
	assert.Equal(t, 2, v.SelectedCount)
	assert.True(t, v.SelectAllChecked)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	base := loaded(1, 2, 3)
	_ = Reduce(base, SelectAllToggled{Checked: true})
	_ = Reduce(base, RowToggled{ID: 2, Checked: true})
	assert.Zero(t, Project(base).SelectedCount)
}

func TestDerivedStateInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ids := []int64{1, 2, 3, 4, 5}

	s := loaded(ids...)
	for i := 0; i < 2000; i++ {
		switch rnd.Intn(4) {
		case 0:
			s = Reduce(s, RowToggled{ID: ids[rnd.Intn(len(ids))], Checked: true})
		case 1:
			s = Reduce(s, RowToggled{ID: ids[rnd.Intn(len(ids))], Checked: false})
		case 2:
			s = Reduce(s, SelectAllToggled{Checked: rnd.Intn(2) == 0})
		case 3:
			s = Reduce(s, RowToggled{ID: 1000 + int64(rnd.Intn(3)), Checked: true})
		}

		v := Project(s)
		assert.Equal(t, v.SelectedCount == v.VisibleCount && v.VisibleCount > 0, v.SelectAllChecked)
		assert.Equal(t, v.SelectedCount > 0 && v.SelectedCount < v.VisibleCount, v.Indeterminate)
		assert.Equal(t, v.SelectedCount > 0, v.BulkActionEnabled)
		assert.Len(t, v.SelectedIDs, v.SelectedCount)
	}
}
