package upstream

import "encoding/json"

// User is the account returned by the login endpoint.
type User struct {
	ID          int           `json:"id"`
	Email       string        `json:"email"`
	IsChef      bool          `json:"is_chef"`
	IsSuperuser bool          `json:"is_superuser"`
	IsStaff     bool          `json:"is_staff"`
	Category    *UserCategory `json:"categorie"`
}

// UserCategory is the category a department head belongs to.
type UserCategory struct {
	ID   int    `json:"id"`
	Name string `json:"nom_cat"`
}

// UnmarshalJSON accepts the category object as well as a bare category id.
func (c *UserCategory) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*c = UserCategory{ID: id}
		return nil
	}
	type plain UserCategory
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = UserCategory(p)
	return nil
}

// CategoryID returns the id of the user's own category, or 0 when the
// account has none.
func (u *User) CategoryID() int {
	if u == nil || u.Category == nil {
		return 0
	}
	return u.Category.ID
}

// CanImport reports whether the user may import workbooks.
func (u *User) CanImport() bool {
	return u != nil && (u.IsChef || u.IsSuperuser)
}

// CanChooseCategory reports whether the user may import into a category
// other than their own.
func (u *User) CanChooseCategory() bool {
	return u != nil && (u.IsSuperuser || u.IsStaff)
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Category is a top-level grouping of themes.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nom_cat"`
}

// Theme groups tables inside a category.
type Theme struct {
	ID         int    `json:"id"`
	Name       string `json:"nom_theme"`
	CategoryID int    `json:"categorie"`
}

// TableSummary is a table as listed by the tableaux endpoints.
type TableSummary struct {
	ID        int    `json:"id"`
	SheetName string `json:"nom_feuille"`
	Title     string `json:"titre"`
	RowLabel  string `json:"etiquette_ligne"`
	ThemeID   int    `json:"theme"`
	Source    string `json:"source"`
}

// SourceTable is a table listed under a source.
type SourceTable struct {
	ID    int    `json:"id"`
	Title string `json:"titre"`
}

// Search result kinds.
const (
	KindTable    = "Tableau"
	KindCategory = "Categorie"
	KindTheme    = "Theme"
)

// SearchResult is one hit of the global search.
type SearchResult struct {
	Type   string `json:"type"`
	ID     int    `json:"id"`
	Name   string `json:"nom"`
	Source string `json:"source,omitempty"`
}

// FilterOptions lists the row and column labels a table can be filtered on.
// Labels of nested entries read "parent ~ child".
type FilterOptions struct {
	Rows    []string `json:"lignes"`
	Columns []string `json:"colonnes"`
}

// FilterRequest selects the rows and columns of a filtered structure.
type FilterRequest struct {
	Rows    []string `json:"lignes"`
	Columns []string `json:"colonnes"`
}

// Analysis kinds reported by the analyse endpoint.
const (
	AnalysisYears   = "annees"
	AnalysisGroups  = "groupes"
	AnalysisMap     = "carte"
	AnalysisGeneric = "generique"
)

// Analysis is the flat cell list served for charting.
type Analysis struct {
	Title  string          `json:"titre"`
	Points []AnalysisPoint `json:"donnees"`
	Type   string          `json:"type"`
}

// AnalysisPoint is one cell of an analysed table.
type AnalysisPoint struct {
	RowLabel    string   `json:"categorie_ligne"`
	ColumnLabel string   `json:"categorie_colonne"`
	Value       *float64 `json:"valeur"`
}

// MapData holds per-region values for one year.
type MapData struct {
	Title  string             `json:"titre"`
	Years  []string           `json:"annees"`
	Values map[string]float64 `json:"valeurs"`
}

// ImportRequest uploads a workbook.
type ImportRequest struct {
	Filename   string
	Content    []byte
	CategoryID int
	ThemeID    int
}

// ImportResult is the upstream answer to an import.
type ImportResult struct {
	Message string `json:"message"`
}
