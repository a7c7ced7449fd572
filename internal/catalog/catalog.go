package catalog

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

const tracerName = "statportal/catalog"

// API is the part of the upstream client the catalog reads from.
type API interface {
	Categories(ctx context.Context) ([]upstream.Category, error)
	Category(ctx context.Context, id int) (*upstream.Category, error)
	Themes(ctx context.Context) ([]upstream.Theme, error)
	Theme(ctx context.Context, id int) (*upstream.Theme, error)
	Tables(ctx context.Context) ([]upstream.TableSummary, error)
	Sources(ctx context.Context) ([]string, error)
	SourceTables(ctx context.Context, source string) ([]upstream.SourceTable, error)
}

// CategoryCard is a category as listed on the categories page.
type CategoryCard struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ThemeCard is a theme as listed under its category.
type ThemeCard struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CategoryID  int    `json:"category_id"`
	Description string `json:"description"`
}

// TableCard is a table as listed under its theme.
type TableCard struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	DisplayTitle string `json:"display_title"`
	RowLabel     string `json:"row_label,omitempty"`
	Source       string `json:"source,omitempty"`
}

// CategoryPage is a category with its themes.
type CategoryPage struct {
	Category CategoryCard `json:"category"`
	Themes   []ThemeCard  `json:"themes"`
}

// ThemePage is a theme with its tables.
type ThemePage struct {
	Theme  ThemeCard   `json:"theme"`
	Tables []TableCard `json:"tables"`
}

// SourcePage lists the tables published by one source.
type SourcePage struct {
	Source string                 `json:"source"`
	Tables []upstream.SourceTable `json:"tables"`
}

// Service builds the browsing pages.
type Service struct {
	api    API
	logger observability.Logger
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a catalog service reading from api.
func NewService(api API, opts ...Option) *Service {
	s := &Service{
		api:    api,
		logger: observability.NopLogger(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories lists the categories whose name matches query, by id.
func (s *Service) Categories(ctx context.Context, query string) (cards []CategoryCard, err error) {
	ctx, end := s.startSpan(ctx, "Categories", attribute.String("query", query))
	defer func() { end(err) }()

	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cards = make([]CategoryCard, 0, len(categories))
	for _, c := range categories {
		if Matches(c.Name, query) {
			cards = append(cards, categoryCard(c))
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

// Category fetches a category and its matching themes concurrently.
func (s *Service) Category(ctx context.Context, id int, query string) (page *CategoryPage, err error) {
	ctx, end := s.startSpan(ctx, "Category", attribute.Int("category.id", id))
	defer func() { end(err) }()

	var (
		category *upstream.Category
		themes   []upstream.Theme
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		category, err = s.api.Category(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		themes, err = s.api.Themes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}

	page = &CategoryPage{Category: categoryCard(*category), Themes: []ThemeCard{}}
	for _, t := range themes {
		if t.CategoryID == id && Matches(t.Name, query) {
			page.Themes = append(page.Themes, themeCard(t))
		}
	}
	sort.Slice(page.Themes, func(i, j int) bool { return page.Themes[i].ID < page.Themes[j].ID })
	return page, nil
}

// Theme fetches a theme and its matching tables concurrently. Tables are
// matched on their display title.
func (s *Service) Theme(ctx context.Context, id int, query string) (page *ThemePage, err error) {
	ctx, end := s.startSpan(ctx, "Theme", attribute.Int("theme.id", id))
	defer func() { end(err) }()

	var (
		theme  *upstream.Theme
		tables []upstream.TableSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		theme, err = s.api.Theme(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		tables, err = s.api.Tables(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load theme %d: %w", id, err)
	}

	page = &ThemePage{Theme: themeCard(*theme), Tables: []TableCard{}}
	for _, t := range tables {
		if t.ThemeID != id {
			continue
		}
		card := tableCard(t)
		if Matches(card.DisplayTitle, query) {
			page.Tables = append(page.Tables, card)
		}
	}
	sort.Slice(page.Tables, func(i, j int) bool { return page.Tables[i].ID < page.Tables[j].ID })
	return page, nil
}

// Sources lists the data sources matching query in upstream order.
func (s *Service) Sources(ctx context.Context, query string) (out []string, err error) {
	ctx, end := s.startSpan(ctx, "Sources")
	defer func() { end(err) }()

	sources, err := s.api.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	out = make([]string, 0, len(sources))
	for _, src := range sources {
		if Matches(src, query) {
			out = append(out, src)
		}
	}
	return out, nil
}

// Source lists the tables of one source.
func (s *Service) Source(ctx context.Context, source string) (page *SourcePage, err error) {
	ctx, end := s.startSpan(ctx, "Source", attribute.String("source", source))
	defer func() { end(err) }()

	tables, err := s.api.SourceTables(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("list tables of source %q: %w", source, err)
	}
	if tables == nil {
		tables = []upstream.SourceTable{}
	}
	return &SourcePage{Source: source, Tables: tables}, nil
}

func (s *Service) startSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "catalog."+name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.WithContext(ctx).Debug("catalog lookup failed",
				observability.String("operation", name),
				observability.Error(err),
			)
		}
		span.End()
	}
}

func categoryCard(c upstream.Category) CategoryCard {
	return CategoryCard{ID: c.ID, Name: c.Name, Description: CategoryDescription(c.Name)}
}

func themeCard(t upstream.Theme) ThemeCard {
	return ThemeCard{ID: t.ID, Name: t.Name, CategoryID: t.CategoryID, Description: ThemeDescription(t.Name)}
}

func tableCard(t upstream.TableSummary) TableCard {
	return TableCard{
		ID:           t.ID,
		Title:        t.Title,
		DisplayTitle: DisplayTitle(t.Title),
		RowLabel:     t.RowLabel,
		Source:       t.Source,
	}
}
