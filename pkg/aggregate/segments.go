package aggregate

import "github.com/statsbudsjett/statsbudsjett/pkg/budget"

// Chart is the payload behind the landing page bars.
type Chart struct {
	Year             int               `json:"budsjettaar"`
	Expenditure      []DisplayCategory `json:"utgifter"`
	Revenue          []DisplayCategory `json:"inntekter"`
	ExpenditureTotal int64             `json:"utgifter_total"`
	RevenueTotal     int64             `json:"inntekter_total"`
	FundDraw         int64             `json:"overfoering_fra_fond"`
}

func Segments(year *budget.BudgetYear, expenditure, revenue Config) Chart {
	return Chart{
		Year:             year.Year,
		Expenditure:      Aggregate(year.Expenditure, expenditure),
		Revenue:          Aggregate(year.Revenue, revenue),
		ExpenditureTotal: year.Expenditure.Total,
		RevenueTotal:     year.Revenue.Total,
		FundDraw:         year.Fund.TransferFromFund,
	}
}

// Find returns the category with the given id.
func Find(categories []DisplayCategory, id string) (DisplayCategory, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return DisplayCategory{}, false
}
