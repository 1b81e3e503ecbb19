package reports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/flavorfleet/admin-dashboard/analytics"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// MonthlyPDF renders the monthly summary with its Day/Night and category
// charts. Core PDF fonts lack the rupee sign, so currency is a plain prefix
// such as "Rs.".
func MonthlyPDF(sum *analytics.MonthlySummary, currency string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Monthly summary "+sum.Month.String(), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Monthly summary: "+sum.Label), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Revenue", utils.FormatCurrency(currency, sum.Revenue))
	line("Orders", fmt.Sprintf("%d", sum.OrderCount))
	top := "-"
	if sum.TopItem != nil {
		top = fmt.Sprintf("%s (%d sold)", sum.TopItem.Name, sum.TopItem.Quantity)
	}
	line("Top item", top)
	for _, p := range sum.DayNight {
		line(p.Period+" revenue", fmt.Sprintf("%s (%s)", utils.FormatCurrency(currency, p.Revenue), utils.FormatPercent(p.Percent)))
	}
	pdf.Ln(4)

	table := func(title string, header [2]string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(120, 7, tr(header[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(50, 7, tr(header[1]), "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if len(rows) == 0 {
			pdf.CellFormat(170, 7, "No data", "1", 1, "C", false, 0, "")
		}
		for _, r := range rows {
			pdf.CellFormat(120, 7, tr(r[0]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, tr(r[1]), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	var catRows [][2]string
	for _, c := range sum.Categories {
		catRows = append(catRows, [2]string{c.Category, fmt.Sprintf("%d (%s)", c.Quantity, utils.FormatPercent(c.Percent))})
	}
	table("Category breakdown", [2]string{"Category", "Quantity"}, catRows)

	if sum.MVPCategory != nil {
		var mvpRows [][2]string
		for _, it := range sum.MVPItems {
			mvpRows = append(mvpRows, [2]string{it.Name, fmt.Sprintf("%d", it.Quantity)})
		}
		table("Top items in "+sum.MVPCategory.Name, [2]string{"Item", "Quantity"}, mvpRows)
	}

	var addOnRows [][2]string
	for _, a := range sum.AddOnUsage {
		addOnRows = append(addOnRows, [2]string{a.Name, fmt.Sprintf("%d", a.Count)})
	}
	table("Add-on usage (all time)", [2]string{"Add-on", "Times used"}, addOnRows)

	if err := embedChart(pdf, "daynight", DayNightChart, sum); err != nil {
		return nil, err
	}
	if err := embedChart(pdf, "categories", CategoryChart, sum); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// embedChart adds a chart on its own row; an all-zero chart is skipped.
func embedChart(pdf *fpdf.Fpdf, name string, render func(*analytics.MonthlySummary) ([]byte, error), sum *analytics.MonthlySummary) error {
	png, err := render(sum)
	if errors.Is(err, ErrNoChartData) {
		return nil
	}
	if err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if pdf.GetY() > 180 {
		pdf.AddPage()
	}
	pdf.ImageOptions(name, 15, pdf.GetY(), 170, 0, true, opts, 0, "")
	pdf.Ln(4)
	return pdf.Error()
}
