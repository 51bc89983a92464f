package keyfigure

import (
	"testing"

	"github.com/statsbudsjett/statsbudsjett/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_Render(t *testing.T) {
	t.Run("should render the default figures from the budget year", func(t *testing.T) {
		// given
		year := test_utils.LoadBudgetYear(t)

		// when
		block := Block{}.Render(year)

		// then
		assert.Equal(t, "Nøkkeltall", block.Title)
		assert.Equal(t, LayoutHorizontal, block.Layout)
		require.Len(t, block.Figures, 5)
		values := make([]string, 0, len(block.Figures))
		for _, f := range block.Figures {
			assert.True(t, f.Resolved, f.Label)
			values = append(values, f.Value)
		}
		assert.Equal(t, []string{
			"2350,0 mrd. kr",
			"1543,6 mrd. kr",
			"413,6 mrd. kr",
			"724,9 mrd. kr",
			"311,2 mrd. kr",
		}, values)
	})

	t.Run("should keep a configured layout and fall back on unknown ones", func(t *testing.T) {
		assert.Equal(t, LayoutGrid, Block{Layout: LayoutGrid}.Render(nil).Layout)
		assert.Equal(t, LayoutHorizontal, Block{Layout: "rad"}.Render(nil).Layout)
	})
}

func TestRender(t *testing.T) {
	year := test_utils.LoadBudgetYear(t)

	t.Run("should prefer a literal value", func(t *testing.T) {
		rendered := Render([]Figure{{Label: "Totale utgifter", Value: "2 970,9", Unit: "mrd. kr", Ref: "utgifter.total"}}, year)

		require.Len(t, rendered, 1)
		assert.Equal(t, "2 970,9", rendered[0].Value)
		assert.Equal(t, "mrd. kr", rendered[0].Unit)
		assert.False(t, rendered[0].Resolved)
	})

	t.Run("should render percentage references as percent", func(t *testing.T) {
		rendered := Render([]Figure{{Label: "Uttaksprosent", Ref: "oljekorrigert.uttaksprosent"}}, year)

		assert.Equal(t, "3,1 %", rendered[0].Value)
	})

	t.Run("should resolve filtered references", func(t *testing.T) {
		rendered := Render([]Figure{{Label: "Forsvar", Ref: "utgifter.omraader[omr_nr=4].total"}}, year)

		assert.Equal(t, "110,0 mrd. kr", rendered[0].Value)
	})

	t.Run("should show the placeholder for unresolved figures", func(t *testing.T) {
		rendered := Render([]Figure{
			{Label: "Ukjent", Ref: "utgifter.finnes_ikke"},
			{Label: "Ugyldig", Ref: "utgifter..total"},
			{Label: "Tom"},
		}, year)

		for _, r := range rendered {
			assert.Equal(t, Placeholder, r.Value, r.Label)
			assert.False(t, r.Resolved)
		}
	})

	t.Run("should show the placeholder without budget data", func(t *testing.T) {
		rendered := Render(DefaultFigures(), nil)

		assert.Equal(t, Placeholder, rendered[0].Value)
	})
}

func TestRender_Indicator(t *testing.T) {
	t.Run("should carry the indicator of a figure", func(t *testing.T) {
		rendered := Render([]Figure{{Label: "Forsvar", Value: "110,0", Indicator: IndicatorUp}}, nil)

		require.Len(t, rendered, 1)
		assert.Equal(t, IndicatorUp, rendered[0].Indicator)
	})

	t.Run("should accept only known indicators", func(t *testing.T) {
		for _, i := range []Indicator{"", IndicatorUp, IndicatorDown, IndicatorNeutral} {
			assert.True(t, i.Valid(), i)
		}
		assert.False(t, Indicator("sidelengs").Valid())
	})
}
