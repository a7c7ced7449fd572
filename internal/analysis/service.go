package analysis

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

const tracerName = "statportal/analysis"

// MapRowLabel is the row label of tables that can be drawn as a map.
const MapRowLabel = "Wilaya"

// Analysis kinds offered for a table.
const (
	KindChart = "graphique"
	KindMap   = "carte"
)

// API is the part of the upstream client analysis reads from.
type API interface {
	Table(ctx context.Context, id int) (*upstream.TableSummary, error)
	Analysis(ctx context.Context, id int) (*upstream.Analysis, error)
	Map(ctx context.Context, id int, year string) (*upstream.MapData, error)
}

// Service builds charts and maps for tables.
type Service struct {
	api    API
	tracer trace.Tracer
}

// NewService creates an analysis service.
func NewService(api API) *Service {
	return &Service{api: api, tracer: otel.Tracer(tracerName)}
}

// Kinds lists the analyses available for a table. Maps are only offered
// for tables broken down by region.
func (s *Service) Kinds(ctx context.Context, id int) ([]string, error) {
	t, err := s.api.Table(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load table %d: %w", id, err)
	}
	kinds := []string{KindChart}
	if t.RowLabel == MapRowLabel {
		kinds = append(kinds, KindMap)
	}
	return kinds, nil
}

// Chart fetches the analysis cells of a table and averages them.
func (s *Service) Chart(ctx context.Context, id int) (*Chart, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.Chart", trace.WithAttributes(attribute.Int("table.id", id)))
	defer span.End()

	a, err := s.api.Analysis(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load analysis of table %d: %w", id, err)
	}
	chart := BuildChart(a)
	span.SetAttributes(attribute.Int("chart.points", len(chart.Points)))
	return chart, nil
}

// Map fetches the regional values of a table for year. Without a year the
// first year offered upstream is used.
func (s *Service) Map(ctx context.Context, id int, year string) (*Map, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.Map", trace.WithAttributes(
		attribute.Int("table.id", id),
		attribute.String("year", year),
	))
	defer span.End()

	data, err := s.api.Map(ctx, id, year)
	if err == nil && year == "" && len(data.Years) > 0 {
		years := data.Years
		year = years[0]
		data, err = s.api.Map(ctx, id, year)
		if err == nil && len(data.Years) == 0 {
			data.Years = years
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load map of table %d: %w", id, err)
	}
	return BuildMap(data, year), nil
}
