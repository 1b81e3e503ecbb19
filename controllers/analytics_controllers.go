package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/analytics"
	"github.com/flavorfleet/admin-dashboard/reports"
	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

const emptyHistoryMessage = "No orders have been recorded yet"

type AnalyticsController struct {
	analytics *services.AnalyticsService
	currency  string
}

func NewAnalyticsController(svc *services.AnalyticsService, currency string) *AnalyticsController {
	return &AnalyticsController{analytics: svc, currency: currency}
}

func monthlyOptions(c *gin.Context) (analytics.MonthlyOptions, error) {
	var opts analytics.MonthlyOptions
	if raw := c.Query("month"); raw != "" {
		m, err := analytics.ParseMonth(raw)
		if err != nil {
			return opts, err
		}
		opts.Month = &m
	}
	categoryID, err := parseOptionalUint(c.Query("category_id"), "category_id")
	if err != nil {
		return opts, err
	}
	opts.CategoryID = categoryID
	return opts, nil
}

func weekdayOptions(c *gin.Context) (analytics.WeekdayOptions, error) {
	var opts analytics.WeekdayOptions
	scope, ok := analytics.ParseScope(c.Query("scope"))
	if !ok {
		return opts, fmt.Errorf("invalid scope %q, expected overall or monthly", c.Query("scope"))
	}
	opts.Scope = scope
	if raw := c.Query("month"); raw != "" {
		m, err := analytics.ParseMonth(raw)
		if err != nil {
			return opts, err
		}
		opts.Month = &m
	}
	return opts, nil
}

func dailyOptions(c *gin.Context) (analytics.DailyOptions, error) {
	var opts analytics.DailyOptions
	if raw := c.Query("date"); raw != "" {
		d, err := analytics.ParseDate(raw)
		if err != nil {
			return opts, err
		}
		opts.Date = &d
	}
	categoryID, err := parseOptionalUint(c.Query("category_id"), "category_id")
	if err != nil {
		return opts, err
	}
	opts.CategoryID = categoryID
	return opts, nil
}

// respondReport answers 200 for every report; an empty order history carries
// an informational message instead of an error.
func respondReport(c *gin.Context, message string, empty bool, data interface{}) {
	if empty {
		message = emptyHistoryMessage
	}
	utils.RespondJSON(c, http.StatusOK, message, data)
}

func (ac *AnalyticsController) Overview(c *gin.Context) {
	ov, err := ac.analytics.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReport(c, "Analytics overview", ov.Empty, ov)
}

func (ac *AnalyticsController) MonthlySummary(c *gin.Context) {
	opts, err := monthlyOptions(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	sum, err := ac.analytics.MonthlySummary(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReport(c, "Monthly summary for "+sum.Label, sum.Empty, sum)
}

func (ac *AnalyticsController) WeekdayAnalysis(c *gin.Context) {
	opts, err := weekdayOptions(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	wa, err := ac.analytics.WeekdayAnalysis(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReport(c, "Weekday analysis: "+wa.Label, wa.Empty, wa)
}

func (ac *AnalyticsController) DailyInsight(c *gin.Context) {
	opts, err := dailyOptions(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	di, err := ac.analytics.DailyInsight(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReport(c, "Daily insight for "+di.Label, di.Empty, di)
}

// Chart renders one PNG chart: day-night, categories, weekday-orders,
// weekday-revenue or addons. The addons chart covers a single day when a
// date is given and all time otherwise.
func (ac *AnalyticsController) Chart(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("chart"), ".png")
	ctx := c.Request.Context()

	var (
		png []byte
		err error
	)
	switch name {
	case "day-night", "categories":
		opts, perr := monthlyOptions(c)
		if perr != nil {
			utils.RespondError(c, http.StatusBadRequest, perr)
			return
		}
		sum, serr := ac.analytics.MonthlySummary(ctx, opts)
		if serr != nil {
			respondServiceError(c, serr)
			return
		}
		if name == "day-night" {
			png, err = reports.DayNightChart(sum)
		} else {
			png, err = reports.CategoryChart(sum)
		}
	case "weekday-orders", "weekday-revenue":
		opts, perr := weekdayOptions(c)
		if perr != nil {
			utils.RespondError(c, http.StatusBadRequest, perr)
			return
		}
		wa, serr := ac.analytics.WeekdayAnalysis(ctx, opts)
		if serr != nil {
			respondServiceError(c, serr)
			return
		}
		if name == "weekday-orders" {
			png, err = reports.WeekdayOrdersChart(wa)
		} else {
			png, err = reports.WeekdayRevenueChart(wa)
		}
	case "addons":
		if c.Query("date") != "" {
			opts, perr := dailyOptions(c)
			if perr != nil {
				utils.RespondError(c, http.StatusBadRequest, perr)
				return
			}
			di, serr := ac.analytics.DailyInsight(ctx, opts)
			if serr != nil {
				respondServiceError(c, serr)
				return
			}
			png, err = reports.AddOnChart("Add-ons used on "+di.Label, di.AddOns)
		} else {
			sum, serr := ac.analytics.MonthlySummary(ctx, analytics.MonthlyOptions{})
			if serr != nil {
				respondServiceError(c, serr)
				return
			}
			png, err = reports.AddOnChart("Add-on usage (all time)", sum.AddOnUsage)
		}
	default:
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("unknown chart %q", name))
		return
	}

	if errors.Is(err, reports.ErrNoChartData) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (ac *AnalyticsController) MonthlyPDF(c *gin.Context) {
	opts, err := monthlyOptions(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	sum, err := ac.analytics.MonthlySummary(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if sum.Empty {
		respondReport(c, "", true, sum)
		return
	}
	data, err := reports.MonthlyPDF(sum, ac.currency)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="monthly-%s.pdf"`, sum.Month))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (ac *AnalyticsController) DailyXLSX(c *gin.Context) {
	opts, err := dailyOptions(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	di, err := ac.analytics.DailyInsight(c.Request.Context(), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if di.Empty {
		respondReport(c, "", true, di)
		return
	}
	data, err := reports.DailyXLSX(di)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="daily-%s.xlsx"`, di.Date))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
