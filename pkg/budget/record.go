package budget

// Record is a node of the budget tree addressable by its snapshot field names.
// Lookup returns int64, float64, string, Record, []Record or nil for an absent
// optional value. The second result is false when the node has no such field.
type Record interface {
	Lookup(field string) (any, bool)
}

func (y *BudgetYear) Lookup(field string) (any, bool) {
	switch field {
	case "budsjettaar":
		return int64(y.Year), true
	case "publisert":
		return y.Published, true
	case "valuta":
		return y.Currency, true
	case "utgifter":
		return &y.Expenditure, true
	case "inntekter":
		return &y.Revenue, true
	case "spu":
		return &y.Fund, true
	case "oljekorrigert":
		return &y.OilAdjusted, true
	case "metadata":
		return &y.Metadata, true
	}
	return nil, false
}

func (s *BudgetSide) Lookup(field string) (any, bool) {
	switch field {
	case "total":
		return s.Total, true
	case "omraader":
		records := make([]Record, len(s.Areas))
		for i := range s.Areas {
			records[i] = &s.Areas[i]
		}
		return records, true
	case "endring_fra_saldert":
		return changeValue(s.Change), true
	}
	return nil, false
}

func (a *ProgramArea) Lookup(field string) (any, bool) {
	switch field {
	case "omr_nr":
		return int64(a.Number), true
	case "navn":
		return a.Name, true
	case "total":
		return a.Total, true
	case "kategorier":
		records := make([]Record, len(a.Categories))
		for i := range a.Categories {
			records[i] = &a.Categories[i]
		}
		return records, true
	case "endring_fra_saldert":
		return changeValue(a.Change), true
	}
	return nil, false
}

func (c *ProgramCategory) Lookup(field string) (any, bool) {
	switch field {
	case "kat_nr":
		return int64(c.Number), true
	case "navn":
		return c.Name, true
	case "total":
		return c.Total, true
	case "kapitler":
		records := make([]Record, len(c.Chapters))
		for i := range c.Chapters {
			records[i] = &c.Chapters[i]
		}
		return records, true
	case "endring_fra_saldert":
		return changeValue(c.Change), true
	}
	return nil, false
}

func (c *Chapter) Lookup(field string) (any, bool) {
	switch field {
	case "kap_nr":
		return int64(c.Number), true
	case "navn":
		return c.Name, true
	case "total":
		return c.Total, true
	case "poster":
		records := make([]Record, len(c.LineItems))
		for i := range c.LineItems {
			records[i] = &c.LineItems[i]
		}
		return records, true
	case "endring_fra_saldert":
		return changeValue(c.Change), true
	}
	return nil, false
}

func (l *LineItem) Lookup(field string) (any, bool) {
	switch field {
	case "post_nr":
		return int64(l.Number), true
	case "upost_nr":
		return int64(l.SubNumber), true
	case "navn":
		return l.Name, true
	case "belop":
		return l.Amount, true
	case "postgruppe":
		return string(l.Group), true
	case "endring_fra_saldert":
		return changeValue(l.Change), true
	}
	return nil, false
}

func (c *ChangeRecord) Lookup(field string) (any, bool) {
	switch field {
	case "belop":
		return c.Current, true
	case "saldert_forrige":
		return c.Baseline, true
	case "endring_absolut":
		if c.Absolute == nil {
			return nil, true
		}
		return *c.Absolute, true
	case "endring_prosent":
		if c.Percent == nil {
			return nil, true
		}
		return *c.Percent, true
	}
	return nil, false
}

func (f *SovereignFundFacts) Lookup(field string) (any, bool) {
	switch field {
	case "overfoering_til_fond":
		return f.TransferToFund, true
	case "finansposter_til_fond":
		return f.FinancialItemsToFund, true
	case "overfoering_fra_fond":
		return f.TransferFromFund, true
	case "netto_overfoering":
		return f.NetTransfer, true
	case "fondsuttak":
		return f.FundDraw, true
	case "netto_kontantstrom":
		return f.NetPetroleumCashFlow, true
	case "netto_overfoering_til_spu":
		return f.NetTransferToFund, true
	case "kontantstrom_kilder":
		records := make([]Record, len(f.CashFlowSources))
		for i := range f.CashFlowSources {
			records[i] = &f.CashFlowSources[i]
		}
		return records, true
	}
	return nil, false
}

func (s *CashFlowSource) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return s.ID, true
	case "navn":
		return s.Name, true
	case "belop":
		return s.Amount, true
	}
	return nil, false
}

func (o *OilAdjustedTotals) Lookup(field string) (any, bool) {
	switch field {
	case "utgifter_total":
		return o.Expenditure, true
	case "inntekter_total":
		return o.Revenue, true
	case "strukturelt_underskudd":
		if o.StructuralDeficit == nil {
			return nil, true
		}
		return *o.StructuralDeficit, true
	case "uttaksprosent":
		if o.WithdrawalRate == nil {
			return nil, true
		}
		return *o.WithdrawalRate, true
	}
	return nil, false
}

func (m *Metadata) Lookup(field string) (any, bool) {
	switch field {
	case "kilde":
		return m.Source, true
	case "saldert_budsjett_forrige":
		return m.BaselineBudget, true
	}
	return nil, false
}

// changeValue keeps a missing change record an untyped nil so callers can
// tell it apart from a present record.
func changeValue(c *ChangeRecord) any {
	if c == nil {
		return nil
	}
	return c
}
