package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are stateful, so each call gets its own.
func fold(s string) string { return cases.Fold().String(s) }

func title(s string) string { return cases.Title(language.French, cases.NoLower).String(s) }

// Matches reports whether name contains query, ignoring case. A blank
// query matches everything.
func Matches(name, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	return strings.Contains(fold(name), fold(q))
}

// DisplayTitle shortens a table title to the part between the first ':'
// and the first ';' when the ';' follows the ':'; otherwise to what follows
// the ':'; otherwise the whole title.
func DisplayTitle(title string) string {
	start := strings.Index(title, ":")
	end := strings.Index(title, ";")
	switch {
	case start >= 0 && end > start:
		return strings.TrimSpace(title[start+1 : end])
	case start >= 0:
		return strings.TrimSpace(title[start+1:])
	default:
		return strings.TrimSpace(title)
	}
}

// Description presets keyed by name fragments.
const (
	categoryDefault = "Tableaux et indicateurs thématiques."
	themeDefault    = "Indicateurs clés du thème."
)

type keywordDescription struct {
	keywords    []string
	description string
}

var categoryDescriptions = []keywordDescription{
	{[]string{"démograph"}, "Statistiques de population, structure, dynamiques."},
	{[]string{"pauvret"}, "Conditions de vie, vulnérabilités, bien-être."},
	{[]string{"environnement"}, "Environnement, territoires, gouvernance."},
	{[]string{"économ", "econom"}, "Activité, prix, emploi et revenus."},
}

var themeDescriptions = []keywordDescription{
	{[]string{"démograph", "demograph"}, "Population et structure."},
	{[]string{"sant"}, "Couverture, personnel, équipements."},
	{[]string{"éduc", "educ"}, "Scolarisation, réussite, infrastructures."},
	{[]string{"etat civil", "état civil"}, "Naissances, mariages, décès."},
}

func describe(name string, table []keywordDescription, fallback string) string {
	n := strings.ToLower(name)
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(n, kw) {
				return entry.description
			}
		}
	}
	return fallback
}

// CategoryDescription returns the blurb shown under a category name.
func CategoryDescription(name string) string {
	return describe(name, categoryDescriptions, categoryDefault)
}

// ThemeDescription returns the blurb shown under a theme name.
func ThemeDescription(name string) string {
	return describe(name, themeDescriptions, themeDefault)
}
