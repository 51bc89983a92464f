// Package keyfigure renders the editorial key-figure widget: labelled values
// that are either typed in by an editor or bound to a path into the budget
// tree.
package keyfigure

import (
	"strings"

	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/statsbudsjett/statsbudsjett/pkg/dataref"
	"github.com/statsbudsjett/statsbudsjett/pkg/numfmt"
)

// Placeholder is shown for a figure without a value.
const Placeholder = "—"

type Layout string

const (
	LayoutHorizontal Layout = "horisontal"
	LayoutVertical   Layout = "vertikal"
	LayoutGrid       Layout = "rutenett"
)

// Indicator is the arrow an editor puts next to a figure.
type Indicator string

const (
	IndicatorUp      Indicator = "opp"
	IndicatorDown    Indicator = "ned"
	IndicatorNeutral Indicator = "noytral"
)

func (i Indicator) Valid() bool {
	switch i {
	case "", IndicatorUp, IndicatorDown, IndicatorNeutral:
		return true
	}
	return false
}

// Figure is one configured key figure. A literal Value wins over Ref.
type Figure struct {
	Label     string    `json:"etikett"`
	Value     string    `json:"verdi,omitempty"`
	Ref       string    `json:"datareferanse,omitempty"`
	Unit      string    `json:"enhet,omitempty"`
	Indicator Indicator `json:"endringsindikator,omitempty"`
}

type Block struct {
	Title   string   `json:"tittel"`
	Layout  Layout   `json:"layout"`
	Figures []Figure `json:"tall"`
}

// Rendered is a figure ready for display.
type Rendered struct {
	Label     string    `json:"etikett"`
	Value     string    `json:"verdi"`
	Unit      string    `json:"enhet,omitempty"`
	Indicator Indicator `json:"endringsindikator,omitempty"`
	Resolved  bool      `json:"beregnet"`
}

type RenderedBlock struct {
	Title   string     `json:"tittel"`
	Layout  Layout     `json:"layout"`
	Figures []Rendered `json:"tall"`
}

// DefaultFigures is the figure set used when a block configures none.
func DefaultFigures() []Figure {
	return []Figure{
		{Label: "Utgifter uten olje og gass", Ref: "oljekorrigert.utgifter_total"},
		{Label: "Inntekter uten olje og gass", Ref: "oljekorrigert.inntekter_total"},
		{Label: "Oljekorrigert underskudd", Ref: "spu.fondsuttak"},
		{Label: "Netto kontantstrøm petroleum", Ref: "spu.netto_kontantstrom"},
		{Label: "Netto overføring til SPU", Ref: "spu.netto_overfoering_til_spu"},
	}
}

// DefaultBlock is the block rendered when the CMS has no configuration.
func DefaultBlock() Block {
	return Block{Title: "Nøkkeltall", Layout: LayoutHorizontal, Figures: DefaultFigures()}
}

// Render fills in defaults for a partially configured block and renders each
// figure against year. year may be nil, leaving bound figures unresolved.
func (b Block) Render(year *budget.BudgetYear) RenderedBlock {
	out := RenderedBlock{Title: b.Title, Layout: b.Layout}
	if out.Title == "" {
		out.Title = "Nøkkeltall"
	}
	switch out.Layout {
	case LayoutHorizontal, LayoutVertical, LayoutGrid:
	default:
		out.Layout = LayoutHorizontal
	}
	figures := b.Figures
	if len(figures) == 0 {
		figures = DefaultFigures()
	}
	out.Figures = Render(figures, year)
	return out
}

func Render(figures []Figure, year *budget.BudgetYear) []Rendered {
	rendered := make([]Rendered, 0, len(figures))
	for _, f := range figures {
		rendered = append(rendered, render(f, year))
	}
	return rendered
}

func render(f Figure, year *budget.BudgetYear) Rendered {
	r := Rendered{Label: f.Label, Value: f.Value, Unit: f.Unit, Indicator: f.Indicator}
	if r.Value != "" {
		return r
	}
	r.Value = Placeholder
	if f.Ref == "" || year == nil {
		return r
	}
	v, ok := dataref.Resolve(f.Ref, year)
	if !ok {
		return r
	}
	// percentages are stored as plain numbers, e.g. uttaksprosent 3.1
	if strings.Contains(f.Ref, "prosent") {
		r.Value = numfmt.Percent(v)
	} else {
		r.Value = numfmt.Amount(v)
	}
	r.Resolved = true
	return r
}
