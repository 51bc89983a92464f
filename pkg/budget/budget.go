package budget

// BudgetYear is the complete, immutable ledger for one budget year as published
// in the yearly snapshot file. Amounts are whole kroner.
type BudgetYear struct {
	Year        int                `json:"budsjettaar"`
	Published   string             `json:"publisert"`
	Currency    string             `json:"valuta"`
	Expenditure BudgetSide         `json:"utgifter"`
	Revenue     BudgetSide         `json:"inntekter"`
	Fund        SovereignFundFacts `json:"spu"`
	OilAdjusted OilAdjustedTotals  `json:"oljekorrigert"`
	Metadata    Metadata           `json:"metadata"`
}

type Side string

const (
	SideExpenditure Side = "utgifter"
	SideRevenue     Side = "inntekter"
)

func (s Side) Valid() bool {
	return s == SideExpenditure || s == SideRevenue
}

// Side returns the expenditure or revenue side. Unknown sides return nil.
func (y *BudgetYear) Side(side Side) *BudgetSide {
	switch side {
	case SideExpenditure:
		return &y.Expenditure
	case SideRevenue:
		return &y.Revenue
	}
	return nil
}

type BudgetSide struct {
	Total  int64         `json:"total"`
	Areas  []ProgramArea `json:"omraader"`
	Change *ChangeRecord `json:"endring_fra_saldert"`
}

// Area returns the program area with the given number.
func (s *BudgetSide) Area(number int) (*ProgramArea, bool) {
	for i := range s.Areas {
		if s.Areas[i].Number == number {
			return &s.Areas[i], true
		}
	}
	return nil, false
}

type ProgramArea struct {
	Number     int               `json:"omr_nr"`
	Name       string            `json:"navn"`
	Total      int64             `json:"total"`
	Categories []ProgramCategory `json:"kategorier"`
	Change     *ChangeRecord     `json:"endring_fra_saldert"`
}

func (a *ProgramArea) Category(number int) (*ProgramCategory, bool) {
	for i := range a.Categories {
		if a.Categories[i].Number == number {
			return &a.Categories[i], true
		}
	}
	return nil, false
}

type ProgramCategory struct {
	Number   int           `json:"kat_nr"`
	Name     string        `json:"navn"`
	Total    int64         `json:"total"`
	Chapters []Chapter     `json:"kapitler"`
	Change   *ChangeRecord `json:"endring_fra_saldert"`
}

func (c *ProgramCategory) Chapter(number int) (*Chapter, bool) {
	for i := range c.Chapters {
		if c.Chapters[i].Number == number {
			return &c.Chapters[i], true
		}
	}
	return nil, false
}

type Chapter struct {
	Number    int           `json:"kap_nr"`
	Name      string        `json:"navn"`
	Total     int64         `json:"total"`
	LineItems []LineItem    `json:"poster"`
	Change    *ChangeRecord `json:"endring_fra_saldert"`
}

type LineItem struct {
	Number    int           `json:"post_nr"`
	SubNumber int           `json:"upost_nr"`
	Name      string        `json:"navn"`
	Amount    int64         `json:"belop"`
	Group     LineItemGroup `json:"postgruppe"`
	Keywords  []string      `json:"stikkord"`
	Change    *ChangeRecord `json:"endring_fra_saldert"`
}

// IsNew reports that the line item has no counterpart in the baseline budget.
func (l LineItem) IsNew() bool {
	return l.Change == nil
}

// SovereignFundFacts holds the transfers between the state budget and the
// Government Pension Fund Global for the year.
type SovereignFundFacts struct {
	TransferToFund       int64            `json:"overfoering_til_fond"`
	FinancialItemsToFund int64            `json:"finansposter_til_fond"`
	TransferFromFund     int64            `json:"overfoering_fra_fond"`
	NetTransfer          int64            `json:"netto_overfoering"`
	FundDraw             int64            `json:"fondsuttak"`
	NetPetroleumCashFlow int64            `json:"netto_kontantstrom"`
	NetTransferToFund    int64            `json:"netto_overfoering_til_spu"`
	CashFlowSources      []CashFlowSource `json:"kontantstrom_kilder"`
}

type CashFlowSource struct {
	ID     string `json:"id"`
	Name   string `json:"navn"`
	Amount int64  `json:"belop"`
}

// OilAdjustedTotals are the totals without petroleum revenue and the fund
// transfers. The structural deficit and the withdrawal rate are entered by hand
// and may be missing.
type OilAdjustedTotals struct {
	Expenditure       int64    `json:"utgifter_total"`
	Revenue           int64    `json:"inntekter_total"`
	StructuralDeficit *int64   `json:"strukturelt_underskudd,omitempty"`
	WithdrawalRate    *float64 `json:"uttaksprosent,omitempty"`
}

type Metadata struct {
	Source         string `json:"kilde"`
	BaselineBudget string `json:"saldert_budsjett_forrige"`
}
