package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/upstream"
	"github.com/vyrodovalexey/statportal/internal/util"
)

const (
	// WorkbookExtension is the only accepted upload type.
	WorkbookExtension = ".xlsx"

	// DefaultMaxSize bounds the workbook size.
	DefaultMaxSize int64 = 20 << 20

	// DefaultMessage is returned when the API acknowledges without a message.
	DefaultMessage = "Importation réussie"

	actionImport = "import"
)

// Uploader sends a validated workbook upstream.
type Uploader interface {
	Import(ctx context.Context, in upstream.ImportRequest) (*upstream.ImportResult, error)
}

// Request is an import submitted by a user. A zero CategoryID selects the
// user's own category.
type Request struct {
	Filename   string
	Content    []byte
	ThemeID    int
	CategoryID int
}

// Importer gates and forwards workbook imports.
type Importer struct {
	api     Uploader
	maxSize int64
	logger  observability.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithMaxSize bounds the accepted workbook size.
func WithMaxSize(n int64) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxSize = n
		}
	}
}

// WithLogger sets the importer logger.
func WithLogger(logger observability.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

// New creates an importer.
func New(api Uploader, opts ...Option) *Importer {
	i := &Importer{api: api, maxSize: DefaultMaxSize, logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import checks that user may import req, fills in the category and
// forwards the workbook. It returns the API's confirmation message.
func (i *Importer) Import(ctx context.Context, user *upstream.User, req Request) (string, error) {
	metrics := GetImportMetrics()

	categoryID, err := i.authorize(user, req)
	if err != nil {
		metrics.record(resultForbidden)
		return "", err
	}
	if err := i.validate(req, categoryID); err != nil {
		metrics.record(resultInvalid)
		return "", err
	}

	logger := i.logger.WithContext(ctx).With(
		observability.String("filename", req.Filename),
		observability.Int("category", categoryID),
		observability.Int("theme", req.ThemeID),
	)

	res, err := i.api.Import(ctx, upstream.ImportRequest{
		Filename:   filepath.Base(req.Filename),
		Content:    req.Content,
		CategoryID: categoryID,
		ThemeID:    req.ThemeID,
	})
	if err != nil {
		metrics.record(resultFailed)
		logger.Warn("workbook import failed", observability.Error(err))
		return "", fmt.Errorf("import %s: %w", req.Filename, err)
	}

	metrics.record(resultOK)
	metrics.bytes.Add(float64(len(req.Content)))
	logger.Info("workbook imported", observability.Int("bytes", len(req.Content)))

	if msg := strings.TrimSpace(res.Message); msg != "" {
		return msg, nil
	}
	return DefaultMessage, nil
}

// authorize returns the category the import is filed under.
func (i *Importer) authorize(user *upstream.User, req Request) (int, error) {
	if user == nil {
		return 0, util.NewPermissionError(actionImport, "not authenticated")
	}
	if !user.CanImport() {
		return 0, util.NewPermissionError(actionImport, "requires a department head or superuser account")
	}

	own := user.CategoryID()
	if req.CategoryID == 0 || req.CategoryID == own {
		return own, nil
	}
	if !user.CanChooseCategory() {
		return 0, util.NewPermissionError(actionImport, "cannot import into another category")
	}
	return req.CategoryID, nil
}

func (i *Importer) validate(req Request, categoryID int) error {
	verr := util.NewValidationError("Veuillez remplir tous les champs.")
	switch {
	case strings.TrimSpace(req.Filename) == "" || len(req.Content) == 0:
		verr.AddField("file", "required")
	case !strings.EqualFold(filepath.Ext(req.Filename), WorkbookExtension):
		verr.AddField("file", "must be an "+WorkbookExtension+" workbook")
	case int64(len(req.Content)) > i.maxSize:
		verr.AddField("file", fmt.Sprintf("larger than %d bytes", i.maxSize))
	}
	if req.ThemeID <= 0 {
		verr.AddField("theme_id", "required")
	}
	if categoryID <= 0 {
		verr.AddField("cat_id", "required")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
