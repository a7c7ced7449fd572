package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/util"
)

const tracerName = "statportal/export"

// Format names an export file type.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Media types of the export formats.
const (
	MimeCSV  = "text/csv"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePDF  = "application/pdf"
	MimeHTML = "text/html"
)

// ErrNilView is returned when there is nothing to export.
var ErrNilView = errors.New("nil table view")

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatXLSX, FormatPDF, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", util.ErrUnsupportedFormat, s)
}

// Exporter writes a view in one format.
type Exporter interface {
	// Export writes v to w.
	Export(w io.Writer, v *table.View) error

	// ContentType returns the MIME type of the output.
	ContentType() string
}

// Registry maps formats to exporters.
type Registry struct {
	logger    observability.Logger
	exporters map[Format]Exporter
	tracer    trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithExporter registers or replaces the exporter of a format.
func WithExporter(f Format, e Exporter) Option {
	return func(r *Registry) {
		r.exporters[f] = e
	}
}

// NewRegistry creates a registry with the four built-in exporters.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: observability.NopLogger(),
		exporters: map[Format]Exporter{
			FormatCSV:  NewCSVExporter(),
			FormatXLSX: NewXLSXExporter(),
			FormatPDF:  NewPDFExporter(),
			FormatHTML: NewHTMLExporter(),
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the exporter for f.
func (r *Registry) Get(f Format) (Exporter, error) {
	e, ok := r.exporters[f]
	if !ok {
		r.logger.Debug("unsupported export format", observability.String("format", string(f)))
		return nil, fmt.Errorf("%w: %q", util.ErrUnsupportedFormat, f)
	}
	return e, nil
}

// Formats lists the registered formats in name order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Write exports v as f to w. Failures are returned to the caller; nothing
// partial is reported as success.
func (r *Registry) Write(ctx context.Context, w io.Writer, f Format, v *table.View) (err error) {
	ctx, span := r.tracer.Start(ctx, "export.Write", trace.WithAttributes(
		attribute.String("format", string(f)),
	))
	start := time.Now()
	defer func() {
		GetExportMetrics().observe(f, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.WithContext(ctx).Warn("table export failed",
				observability.String("format", string(f)),
				observability.Error(err))
		}
		span.End()
	}()

	if v == nil {
		return ErrNilView
	}
	e, err := r.Get(f)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("rows", len(v.Rows)), attribute.Int("columns", len(v.Order)))
	if err := e.Export(w, v); err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	return nil
}

// Filename returns the download name of a table export.
func Filename(tableID int, f Format) string {
	return fmt.Sprintf("tableau_%d.%s", tableID, f)
}
