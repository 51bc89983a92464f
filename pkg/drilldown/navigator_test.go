package drilldown

import (
	"testing"

	"github.com/statsbudsjett/statsbudsjett/internal/test_utils"
	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNavigator(t *testing.T) Navigator {
	t.Helper()
	year := test_utils.LoadBudgetYear(t)
	categories := aggregate.Aggregate(year.Expenditure, aggregate.DefaultExpenditureConfig())
	return New(&year.Expenditure, categories)
}

func labels(crumbs []Breadcrumb) []string {
	result := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		result = append(result, c.Label)
	}
	return result
}

func TestNavigator_Open(t *testing.T) {
	t.Run("should open a single-area category on the area", func(t *testing.T) {
		// given
		nav := setupNavigator(t)

		// when
		nav, ok := nav.Open("forsvar")

		// then
		require.True(t, ok)
		assert.Equal(t, SingleArea, nav.State())
		top, _ := nav.Current()
		assert.Equal(t, LevelArea, top.Level)
		assert.Equal(t, 4, top.Number())
	})

	t.Run("should ask for an area when the category spans several", func(t *testing.T) {
		// given
		nav := setupNavigator(t)

		// when
		nav, ok := nav.Open("folketrygden")

		// then
		require.True(t, ok)
		assert.Equal(t, MultiArea, nav.State())
		children := nav.Children()
		require.Len(t, children, 4)
		assert.Equal(t, []int{29, 28, 30, 33}, []int{children[0].Number, children[1].Number, children[2].Number, children[3].Number})
	})

	t.Run("should reject unknown categories", func(t *testing.T) {
		// given
		nav := setupNavigator(t)

		// when
		next, ok := nav.Open("finnes_ikke")

		// then
		assert.False(t, ok)
		assert.Equal(t, Closed, next.State())
	})

	t.Run("should reject categories with no area in the side", func(t *testing.T) {
		// given
		year := test_utils.LoadBudgetYear(t)
		nav := New(&year.Expenditure, []aggregate.DisplayCategory{{ID: "borte", SourceAreas: []int{99}}})

		// when
		_, ok := nav.Open("borte")

		// then
		assert.False(t, ok)
	})

	t.Run("should replace an open drill-down", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")
		nav, _ = nav.Descend(410)

		// when
		nav, ok := nav.Open("helse")

		// then
		require.True(t, ok)
		assert.Equal(t, 1, nav.Depth())
		top, _ := nav.Current()
		assert.Equal(t, 10, top.Number())
	})
}

func TestNavigator_Descend(t *testing.T) {
	t.Run("should go from area to category to chapter", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")

		// when
		nav, okCategory := nav.Descend(410)
		nav, okChapter := nav.Descend(1700)

		// then
		require.True(t, okCategory)
		require.True(t, okChapter)
		assert.Equal(t, 3, nav.Depth())
		assert.Equal(t, []string{"Forsvar", "Militært forsvar", "Forsvarsdepartementet"}, labels(nav.Breadcrumbs()))
		crumbs := nav.Breadcrumbs()
		assert.True(t, crumbs[0].Clickable)
		assert.True(t, crumbs[1].Clickable)
		assert.False(t, crumbs[2].Clickable)
	})

	t.Run("should list line items as the terminal table", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")
		nav, _ = nav.Descend(410)
		nav, _ = nav.Descend(1700)

		// when
		items := nav.Children()
		below, ok := nav.Descend(1)

		// then
		require.Len(t, items, 2)
		assert.Equal(t, LevelLineItem, items[0].Level)
		assert.Equal(t, 1, items[0].Number)
		assert.False(t, items[0].New)
		assert.Equal(t, 45, items[1].Number)
		assert.True(t, items[1].New)
		assert.False(t, ok)
		assert.Equal(t, nav.Depth(), below.Depth())
	})

	t.Run("should sort children by amount", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")
		nav, _ = nav.Descend(410)

		// when
		chapters := nav.Children()

		// then
		require.Len(t, chapters, 2)
		assert.Equal(t, 1720, chapters[0].Number)
		assert.Equal(t, 1700, chapters[1].Number)
	})

	t.Run("should reject unknown children and a closed panel", func(t *testing.T) {
		// given
		nav := setupNavigator(t)

		// when
		_, closedOk := nav.Descend(410)
		nav, _ = nav.Open("forsvar")
		next, unknownOk := nav.Descend(999)

		// then
		assert.False(t, closedOk)
		assert.False(t, unknownOk)
		assert.Equal(t, 1, next.Depth())
	})

	t.Run("should not descend from a group node", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("folketrygden")

		// when
		_, ok := nav.Descend(2620)

		// then
		assert.False(t, ok)
	})
}

func TestNavigator_SelectArea(t *testing.T) {
	t.Run("should select a candidate area", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("folketrygden")

		// when
		nav, ok := nav.SelectArea(28)

		// then
		require.True(t, ok)
		assert.Equal(t, SingleArea, nav.State())
		assert.Equal(t, []string{"Folketrygden", "Folketrygden, sosiale formål"}, labels(nav.Breadcrumbs()))
	})

	t.Run("should reject areas outside the group", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("folketrygden")

		// when
		next, ok := nav.SelectArea(4)

		// then
		assert.False(t, ok)
		assert.Equal(t, MultiArea, next.State())
	})

	t.Run("should only select in multi area state", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")

		// when
		_, ok := nav.SelectArea(4)

		// then
		assert.False(t, ok)
	})
}

func TestNavigator_NavigateTo(t *testing.T) {
	t.Run("should truncate the stack", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")
		nav, _ = nav.Descend(410)
		nav, _ = nav.Descend(1700)

		// when
		nav, ok := nav.NavigateTo(0)

		// then
		require.True(t, ok)
		assert.Equal(t, 1, nav.Depth())
		assert.Len(t, nav.Breadcrumbs(), 1)
		assert.False(t, nav.Breadcrumbs()[0].Clickable)
	})

	t.Run("should return to the area picker from inside a group", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("folketrygden")
		nav, _ = nav.SelectArea(29)

		// when
		nav, ok := nav.NavigateTo(0)

		// then
		require.True(t, ok)
		assert.Equal(t, MultiArea, nav.State())
	})

	t.Run("should reject out of range indices", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		nav, _ = nav.Open("forsvar")

		// when
		_, tooDeep := nav.NavigateTo(1)
		_, negative := nav.NavigateTo(-1)

		// then
		assert.False(t, tooDeep)
		assert.False(t, negative)
	})

	t.Run("should leave earlier navigators untouched", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		area, _ := nav.Open("forsvar")
		category, _ := area.Descend(410)

		// when
		_, _ = category.Descend(1700)
		back, _ := category.NavigateTo(0)

		// then
		assert.Equal(t, 1, area.Depth())
		assert.Equal(t, 2, category.Depth())
		assert.Equal(t, 1, back.Depth())
	})
}

func TestNavigator_Close(t *testing.T) {
	// given
	nav := setupNavigator(t)
	nav, _ = nav.Open("forsvar")

	// when
	nav = nav.Close()

	// then
	assert.Equal(t, Closed, nav.State())
	assert.Empty(t, nav.Breadcrumbs())
	assert.Nil(t, nav.Children())
}

func TestNavigator_Replay(t *testing.T) {
	t.Run("should rebuild the navigator from steps", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		steps := []Step{
			{Action: ActionOpen, Category: "folketrygden"},
			{Action: ActionSelect, Number: 28},
			{Action: ActionDescend, Number: 2810},
			{Action: ActionDescend, Number: 2620},
		}

		// when
		replayed, applied := nav.Replay(steps)

		// then
		assert.Equal(t, 4, applied)
		assert.Equal(t, 4, replayed.Depth())
		top, _ := replayed.Current()
		assert.Equal(t, LevelChapter, top.Level)
		assert.Equal(t, 2620, top.Number())
	})

	t.Run("should stop at the first rejected step", func(t *testing.T) {
		// given
		nav := setupNavigator(t)
		steps := []Step{
			{Action: ActionOpen, Category: "forsvar"},
			{Action: ActionDescend, Number: 999},
			{Action: ActionDescend, Number: 410},
		}

		// when
		replayed, applied := nav.Replay(steps)

		// then
		assert.Equal(t, 1, applied)
		assert.Equal(t, 1, replayed.Depth())
	})

	t.Run("should reject unknown actions", func(t *testing.T) {
		// given
		nav := setupNavigator(t)

		// when
		_, applied := nav.Replay([]Step{{Action: "fly"}})

		// then
		assert.Equal(t, 0, applied)
	})
}
