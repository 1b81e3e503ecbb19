// Package reports renders analytics results as PNG charts, a monthly PDF and
// a daily XLSX workbook.
package reports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/flavorfleet/admin-dashboard/analytics"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// ErrNoChartData means every value of the chart is zero.
var ErrNoChartData = errors.New("no data to chart")

const (
	chartWidth  = 800
	chartHeight = 480
)

func renderPie(title string, values []chart.Value) ([]byte, error) {
	var kept []chart.Value
	for _, v := range values {
		if v.Value > 0 {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoChartData
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Values: kept,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBars(title string, bars []chart.Value) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoChartData
	}
	max := 0.0
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
	}
	if max == 0 {
		max = 1
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// DayNightChart is a pie of month revenue split into Day and Night.
func DayNightChart(sum *analytics.MonthlySummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(sum.DayNight))
	for _, p := range sum.DayNight {
		values = append(values, chart.Value{
			Value: p.Revenue,
			Label: fmt.Sprintf("%s %s", p.Period, utils.FormatPercent(p.Percent)),
		})
	}
	return renderPie("Day vs Night revenue, "+sum.Label, values)
}

// CategoryChart is a pie of quantity sold per category.
func CategoryChart(sum *analytics.MonthlySummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		values = append(values, chart.Value{
			Value: float64(c.Quantity),
			Label: fmt.Sprintf("%s %s", c.Category, utils.FormatPercent(c.Percent)),
		})
	}
	return renderPie("Category breakdown, "+sum.Label, values)
}

func WeekdayOrdersChart(wa *analytics.WeekdayAnalysis) ([]byte, error) {
	bars := make([]chart.Value, 0, len(wa.Weekdays))
	for _, w := range wa.Weekdays {
		bars = append(bars, chart.Value{Value: float64(w.Orders), Label: w.Weekday[:3]})
	}
	return renderBars("Orders by weekday, "+wa.Label, bars)
}

func WeekdayRevenueChart(wa *analytics.WeekdayAnalysis) ([]byte, error) {
	bars := make([]chart.Value, 0, len(wa.Weekdays))
	for _, w := range wa.Weekdays {
		bars = append(bars, chart.Value{Value: w.Revenue, Label: w.Weekday[:3]})
	}
	return renderBars("Revenue by weekday, "+wa.Label, bars)
}

// AddOnChart shows add-on usage counts.
func AddOnChart(title string, counts []analytics.AddOnCount) ([]byte, error) {
	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, chart.Value{Value: float64(c.Count), Label: c.Name})
	}
	return renderBars(title, bars)
}
