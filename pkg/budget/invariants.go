package budget

import (
	"errors"
	"fmt"
)

var ErrInvariantViolated = errors.New("budget invariant violated")

// cashFlowTolerance absorbs rounding in the pipeline that sums the petroleum
// cash flow sources.
const cashFlowTolerance = 1

// CheckInvariants verifies the accounting identities of a budget year and
// returns one error per violation. An empty result means the year is sound.
func CheckInvariants(year *BudgetYear) []error {
	var violations []error
	violations = append(violations, checkSide(SideExpenditure, &year.Expenditure)...)
	violations = append(violations, checkSide(SideRevenue, &year.Revenue)...)

	expectedFromFund := year.Expenditure.Total - year.Revenue.Total
	if year.Fund.TransferFromFund != expectedFromFund {
		violations = append(violations, violation("spu.overfoering_fra_fond is %d, expected utgifter.total - inntekter.total = %d",
			year.Fund.TransferFromFund, expectedFromFund))
	}

	var sources int64
	for _, source := range year.Fund.CashFlowSources {
		sources += source.Amount
	}
	if diff := sources - year.Fund.NetPetroleumCashFlow; diff > cashFlowTolerance || diff < -cashFlowTolerance {
		violations = append(violations, violation("spu.kontantstrom_kilder sum to %d, expected netto_kontantstrom %d",
			sources, year.Fund.NetPetroleumCashFlow))
	}
	return violations
}

func checkSide(side Side, s *BudgetSide) []error {
	var violations []error
	var areasTotal int64
	for _, area := range s.Areas {
		areasTotal += area.Total
		var categoriesTotal int64
		for _, category := range area.Categories {
			categoriesTotal += category.Total
			var chaptersTotal int64
			for _, chapter := range category.Chapters {
				chaptersTotal += chapter.Total
				var itemsTotal int64
				for _, item := range chapter.LineItems {
					itemsTotal += item.Amount
				}
				if itemsTotal != chapter.Total {
					violations = append(violations, violation("%s kap %d: total %d, line items sum to %d", side, chapter.Number, chapter.Total, itemsTotal))
				}
			}
			if chaptersTotal != category.Total {
				violations = append(violations, violation("%s kat %d: total %d, chapters sum to %d", side, category.Number, category.Total, chaptersTotal))
			}
		}
		if categoriesTotal != area.Total {
			violations = append(violations, violation("%s omr %d: total %d, categories sum to %d", side, area.Number, area.Total, categoriesTotal))
		}
	}
	if areasTotal != s.Total {
		violations = append(violations, violation("%s: total %d, program areas sum to %d", side, s.Total, areasTotal))
	}
	return violations
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...))
}
