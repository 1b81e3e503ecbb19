package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/flavorfleet/admin-dashboard/analytics"
	"github.com/flavorfleet/admin-dashboard/repository"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// AnalyticsService loads the full order history for every request and hands
// it to the aggregation pipeline.
type AnalyticsService struct {
	orders   *repository.OrderRepository
	pipeline *analytics.Pipeline
}

func NewAnalyticsService(orders *repository.OrderRepository, loc *time.Location) *AnalyticsService {
	return &AnalyticsService{orders: orders, pipeline: analytics.New(loc)}
}

func (s *AnalyticsService) Location() *time.Location {
	return s.pipeline.Location()
}

func (s *AnalyticsService) load(ctx context.Context, report string) (*analytics.Dataset, func(), error) {
	start := time.Now()
	ctx, span := utils.StartSpan(ctx, "analytics."+report)
	done := func() {
		utils.ReportBuildLatency.WithLabelValues(report).Observe(time.Since(start).Seconds())
		span.End()
	}

	ds, err := s.orders.LoadDataset(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		done()
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}

	span.SetAttributes(
		attribute.Int("rows.orders", len(ds.Orders)),
		attribute.Int("rows.order_items", len(ds.OrderItems)),
	)
	utils.DatasetRows.WithLabelValues("orders").Set(float64(len(ds.Orders)))
	utils.DatasetRows.WithLabelValues("order_items").Set(float64(len(ds.OrderItems)))
	utils.DatasetRows.WithLabelValues("order_item_addons").Set(float64(len(ds.OrderItemAddOns)))
	utils.DatasetRows.WithLabelValues("foods").Set(float64(len(ds.Foods)))
	utils.DatasetRows.WithLabelValues("categories").Set(float64(len(ds.Categories)))
	utils.DatasetRows.WithLabelValues("addons").Set(float64(len(ds.AddOns)))
	return ds, done, nil
}

func (s *AnalyticsService) Overview(ctx context.Context) (*analytics.Overview, error) {
	ds, done, err := s.load(ctx, "overview")
	if err != nil {
		return nil, err
	}
	defer done()
	out := s.pipeline.Overview(ds)
	return &out, nil
}

func (s *AnalyticsService) MonthlySummary(ctx context.Context, opts analytics.MonthlyOptions) (*analytics.MonthlySummary, error) {
	ds, done, err := s.load(ctx, "monthly")
	if err != nil {
		return nil, err
	}
	defer done()
	out := s.pipeline.MonthlySummary(ds, opts)
	return &out, nil
}

func (s *AnalyticsService) WeekdayAnalysis(ctx context.Context, opts analytics.WeekdayOptions) (*analytics.WeekdayAnalysis, error) {
	ds, done, err := s.load(ctx, "weekday")
	if err != nil {
		return nil, err
	}
	defer done()
	out := s.pipeline.WeekdayAnalysis(ds, opts)
	return &out, nil
}

func (s *AnalyticsService) DailyInsight(ctx context.Context, opts analytics.DailyOptions) (*analytics.DailyInsight, error) {
	ds, done, err := s.load(ctx, "daily")
	if err != nil {
		return nil, err
	}
	defer done()
	out := s.pipeline.DailyInsight(ds, opts)
	return &out, nil
}
