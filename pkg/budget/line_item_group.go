package budget

// LineItemGroup classifies a line item by its number within the chapter.
type LineItemGroup string

const (
	GroupOperating          LineItemGroup = "driftsutgifter"
	GroupInvestments        LineItemGroup = "investeringer"
	GroupTransfersToState   LineItemGroup = "overforinger_statsregnskaper"
	GroupTransfersToPrivate LineItemGroup = "overforinger_private"
	GroupLending            LineItemGroup = "utlaan_statsgjeld"
)

// GroupFor returns the group of a line item number. Numbers outside the
// 1-99 range are treated as operating expenses.
func GroupFor(lineItemNumber int) LineItemGroup {
	switch {
	case lineItemNumber >= 1 && lineItemNumber <= 29:
		return GroupOperating
	case lineItemNumber >= 30 && lineItemNumber <= 49:
		return GroupInvestments
	case lineItemNumber >= 50 && lineItemNumber <= 69:
		return GroupTransfersToState
	case lineItemNumber >= 70 && lineItemNumber <= 89:
		return GroupTransfersToPrivate
	case lineItemNumber >= 90 && lineItemNumber <= 99:
		return GroupLending
	}
	return GroupOperating
}

// fillLineItemGroups derives the group of line items exported without one.
func fillLineItemGroups(year *BudgetYear) {
	for _, side := range []*BudgetSide{&year.Expenditure, &year.Revenue} {
		for a := range side.Areas {
			for c := range side.Areas[a].Categories {
				for k := range side.Areas[a].Categories[c].Chapters {
					items := side.Areas[a].Categories[c].Chapters[k].LineItems
					for i := range items {
						if items[i].Group == "" {
							items[i].Group = GroupFor(items[i].Number)
						}
					}
				}
			}
		}
	}
}
