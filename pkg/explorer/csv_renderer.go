package explorer

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/pkg/aggregate"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
)

type ChartRenderer interface {
	RenderChart(chart aggregate.Chart) (string, error)
}

// CsvChartRendererImpl writes one row per chart segment followed by a total
// row for each side. Amounts are whole kroner.
type CsvChartRendererImpl struct{}

func NewCsvChartRenderer() *CsvChartRendererImpl {
	return &CsvChartRendererImpl{}
}

func (r *CsvChartRendererImpl) RenderChart(chart aggregate.Chart) (string, error) {
	data := make([][]string, 0, len(chart.Expenditure)+len(chart.Revenue)+4)
	data = append(data, []string{"side", "id", "navn", "belop", "endring_prosent"})
	data = appendSide(data, budget.SideExpenditure, chart.Expenditure, chart.ExpenditureTotal)
	data = appendSide(data, budget.SideRevenue, chart.Revenue, chart.RevenueTotal)
	data = append(data, []string{"", "overfoering_fra_fond", "Overføring fra SPU", strconv.FormatInt(chart.FundDraw, 10), ""})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func appendSide(data [][]string, side budget.Side, categories []aggregate.DisplayCategory, total int64) [][]string {
	for _, c := range categories {
		data = append(data, []string{string(side), c.ID, c.Name, strconv.FormatInt(c.Amount, 10), changePercent(c.Change)})
	}
	return append(data, []string{string(side), "total", "SUM", strconv.FormatInt(total, 10), ""})
}

func changePercent(change *budget.ChangeRecord) string {
	if change == nil || change.Percent == nil {
		return ""
	}
	return strconv.FormatFloat(*change.Percent, 'f', 1, 64)
}
