package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scroll struct {
	index    int
	deferred bool
}

type recordingEffects struct {
	scrolls   []scroll
	fragments []string
}

func (r *recordingEffects) ScrollTo(i int, deferred bool) {
	r.scrolls = append(r.scrolls, scroll{i, deferred})
}

func (r *recordingEffects) SetFragment(f string) {
	r.fragments = append(r.fragments, f)
}

func newNav(t *testing.T, count int) (*Navigator, *recordingEffects) {
	t.Helper()
	fx := &recordingEffects{}
	n := New(fx)
	n.Reset(count)
	return n, fx
}

func TestNavigator_InitialState(t *testing.T) {
	n, _ := newNav(t, 3)
	st := n.State()
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, []int{0}, st.History)
	assert.Equal(t, 0, st.Cursor)
	assert.False(t, st.CanBack)
	assert.False(t, st.CanForward)
	assert.Empty(t, st.Collapsed)
}

func TestNavigator_EmptyDocument(t *testing.T) {
	n, fx := newNav(t, 0)
	assert.Equal(t, -1, n.Active())
	assert.ErrorIs(t, n.Select(0), ErrNoSuchSection)
	assert.ErrorIs(t, n.ToggleCollapse(0), ErrNoSuchSection)
	assert.False(t, n.Back())
	assert.False(t, n.Forward())
	assert.False(t, n.LoadDeepLink("section-0"))
	assert.Equal(t, []int{}, n.State().History)
	assert.Empty(t, fx.scrolls)
}

func TestNavigator_HistoryTruncation(t *testing.T) {
	n, _ := newNav(t, 6)
	require.NoError(t, n.Select(1))
	require.NoError(t, n.Select(2))
	st := n.State()
	require.Equal(t, []int{0, 1, 2}, st.History)
	require.Equal(t, 2, st.Cursor)

	require.True(t, n.Back())
	require.NoError(t, n.Select(5))

	st = n.State()
	assert.Equal(t, []int{0, 1, 5}, st.History)
	assert.Equal(t, 2, st.Cursor)
	assert.Equal(t, 5, st.Active)
	assert.False(t, st.CanForward)
}

func TestNavigator_SelectCurrentHeadIsNoOp(t *testing.T) {
	n, _ := newNav(t, 4)
	require.NoError(t, n.Select(2))
	before := n.State()

	require.NoError(t, n.Select(2))
	after := n.State()
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, before.Cursor, after.Cursor)

	// Also a no-op when the head was reached by going back.
	require.True(t, n.Back())
	require.NoError(t, n.Select(0))
	st := n.State()
	assert.Equal(t, []int{0, 2}, st.History)
	assert.Equal(t, 0, st.Cursor)
}

func TestNavigator_SelectExpandsAndEmitsEffects(t *testing.T) {
	n, fx := newNav(t, 3)
	require.NoError(t, n.ToggleCollapse(2))
	require.True(t, n.IsCollapsed(2))

	require.NoError(t, n.Select(2))
	assert.False(t, n.IsCollapsed(2))
	assert.Equal(t, []scroll{{2, false}}, fx.scrolls)
	assert.Equal(t, []string{"section-2"}, fx.fragments)
}

func TestNavigator_ToggleCollapseKeepsActive(t *testing.T) {
	n, fx := newNav(t, 3)
	require.NoError(t, n.Select(1))
	require.NoError(t, n.ToggleCollapse(1))
	assert.Equal(t, 1, n.Active())
	assert.Equal(t, []int{1}, n.State().Collapsed)

	require.NoError(t, n.ToggleCollapse(1))
	assert.Empty(t, n.State().Collapsed)
	assert.Len(t, fx.scrolls, 1, "collapse must not scroll")
}

func TestNavigator_BackForwardBoundaries(t *testing.T) {
	n, fx := newNav(t, 3)
	assert.False(t, n.Back())
	assert.False(t, n.Forward())
	assert.Empty(t, fx.scrolls)

	require.NoError(t, n.Select(1))
	require.NoError(t, n.ToggleCollapse(0))

	require.True(t, n.Back())
	assert.Equal(t, 0, n.Active())
	assert.False(t, n.IsCollapsed(0), "back force-expands the target")
	assert.False(t, n.Back())

	require.True(t, n.Forward())
	assert.Equal(t, 1, n.Active())
	assert.False(t, n.Forward())

	assert.Equal(t, []string{"section-1", "section-0", "section-1"}, fx.fragments)
}

func TestNavigator_SelectOutOfRange(t *testing.T) {
	n, _ := newNav(t, 2)
	assert.ErrorIs(t, n.Select(2), ErrNoSuchSection)
	assert.ErrorIs(t, n.Select(-1), ErrNoSuchSection)
	assert.Equal(t, []int{0}, n.State().History)
}

func TestNavigator_LoadDeepLink(t *testing.T) {
	n, fx := newNav(t, 5)
	require.NoError(t, n.ToggleCollapse(3))

	assert.True(t, n.LoadDeepLink("#section-3"))
	st := n.State()
	assert.Equal(t, 3, st.Active)
	assert.Equal(t, []int{3}, st.History)
	assert.Equal(t, 0, st.Cursor)
	assert.Empty(t, st.Collapsed)
	assert.Equal(t, []scroll{{3, true}}, fx.scrolls)
}

func TestNavigator_LoadDeepLinkInvalid(t *testing.T) {
	for _, f := range []string{"", "#", "section-", "section-x", "#section-9", "section--1", "intro"} {
		n, fx := newNav(t, 5)
		assert.False(t, n.LoadDeepLink(f), f)
		assert.Equal(t, []int{0}, n.State().History, f)
		assert.Empty(t, fx.scrolls, f)
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	i, ok := ParseFragment("#" + Fragment(12))
	require.True(t, ok)
	assert.Equal(t, 12, i)
}
