package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/flavorfleet/admin-dashboard/analytics"
)

// DailyXLSX exports the daily insight as a workbook with Summary, Orders,
// Items and AddOns sheets.
func DailyXLSX(di *analytics.DailyInsight) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	category := "All categories"
	if di.Category != nil {
		category = di.Category.Name
	}
	summary := [][]interface{}{
		{"Date", di.Date.String()},
		{"Label", di.Label},
		{"Orders", di.OrderCount},
		{"Revenue", di.Revenue},
		{"Item filter", category},
	}
	if err := writeRows(f, "Summary", nil, summary, header); err != nil {
		return nil, err
	}

	orders := make([][]interface{}, 0, len(di.Orders))
	for _, o := range di.Orders {
		orders = append(orders, []interface{}{o.ID, o.UserID, o.Amount, o.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	if err := writeSheet(f, "Orders", []interface{}{"Order ID", "User", "Amount", "Created at"}, orders, header); err != nil {
		return nil, err
	}

	items := make([][]interface{}, 0, len(di.Items))
	for _, it := range di.Items {
		items = append(items, []interface{}{it.Name, it.Quantity})
	}
	if err := writeSheet(f, "Items", []interface{}{"Item", "Quantity"}, items, header); err != nil {
		return nil, err
	}

	addOns := make([][]interface{}, 0, len(di.AddOns))
	for _, a := range di.AddOns {
		addOns = append(addOns, []interface{}{a.Name, a.Count})
	}
	if err := writeSheet(f, "AddOns", []interface{}{"Add-on", "Times used"}, addOns, header); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, head []interface{}, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, head, rows, headerStyle)
}

func writeRows(f *excelize.File, sheet string, head []interface{}, rows [][]interface{}, headerStyle int) error {
	row := 1
	if head != nil {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &head); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(head), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, last, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		row++
	}
	for _, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := r
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}
	return nil
}
