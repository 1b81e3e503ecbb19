package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/flavorfleet/admin-dashboard/analytics"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func sampleMonthly() *analytics.MonthlySummary {
	return &analytics.MonthlySummary{
		Month:      analytics.Month{Year: 2024, Month: time.January},
		Label:      "January 2024",
		Revenue:    300,
		OrderCount: 2,
		TopItem:    &analytics.ItemQuantity{Name: "Cola", Quantity: 3},
		DayNight: []analytics.PeriodShare{
			{Period: analytics.PeriodDay, Revenue: 100, Percent: 100.0 / 3},
			{Period: analytics.PeriodNight, Revenue: 200, Percent: 200.0 / 3},
		},
		Categories: []analytics.CategoryShare{
			{CategoryID: 2, Category: "Drinks", Quantity: 3, Percent: 50},
			{CategoryID: 1, Category: "Mains", Quantity: 3, Percent: 50},
		},
		MVPCategory: &analytics.CategoryRef{ID: 1, Name: "Mains"},
		MVPItems:    []analytics.ItemQuantity{{Name: "Burger", Quantity: 2}},
		AddOnUsage:  []analytics.AddOnCount{{Name: "Cheese", Count: 2}},
	}
}

func TestDayNightChart(t *testing.T) {
	png, err := DayNightChart(sampleMonthly())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))

	empty := sampleMonthly()
	empty.DayNight[0].Revenue = 0
	empty.DayNight[1].Revenue = 0
	_, err = DayNightChart(empty)
	assert.ErrorIs(t, err, ErrNoChartData)
}

func TestWeekdayCharts(t *testing.T) {
	wa := &analytics.WeekdayAnalysis{Label: "All time"}
	for _, d := range analytics.Weekdays {
		wa.Weekdays = append(wa.Weekdays, analytics.WeekdayStat{Weekday: d})
	}
	// all-zero bars still render
	png, err := WeekdayOrdersChart(wa)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))

	wa.Weekdays[4].Revenue = 300
	png, err = WeekdayRevenueChart(wa)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))
}

func TestAddOnChart_Empty(t *testing.T) {
	_, err := AddOnChart("Add-ons", nil)
	assert.ErrorIs(t, err, ErrNoChartData)
}

func TestMonthlyPDF(t *testing.T) {
	data, err := MonthlyPDF(sampleMonthly(), "Rs.")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// zero month without charts
	zero := &analytics.MonthlySummary{
		Label:    "March 2024",
		DayNight: []analytics.PeriodShare{{Period: analytics.PeriodDay}, {Period: analytics.PeriodNight}},
	}
	data, err = MonthlyPDF(zero, "Rs.")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestDailyXLSX(t *testing.T) {
	di := &analytics.DailyInsight{
		Date:       analytics.Date{Year: 2024, Month: time.January, Day: 5},
		Label:      "Friday, 05 January 2024",
		OrderCount: 2,
		Revenue:    300,
		Orders: []analytics.OrderRow{
			{ID: 1, UserID: "u1", Amount: 100, CreatedAt: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
			{ID: 2, UserID: "u2", Amount: 200, CreatedAt: time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)},
		},
		Items:  []analytics.ItemQuantity{{Name: "Cola", Quantity: 3}},
		AddOns: []analytics.AddOnCount{{Name: "Cheese", Count: 2}},
	}

	data, err := DailyXLSX(di)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Orders", "Items", "AddOns"}, f.GetSheetList())

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Order ID", "User", "Amount", "Created at"}, rows[0])
	assert.Equal(t, "u2", rows[2][1])

	date, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", date)
}
