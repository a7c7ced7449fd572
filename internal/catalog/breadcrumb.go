package catalog

import "strings"

// HomeLabel is the first crumb of every trail.
const HomeLabel = "Accueil"

// Crumb is one step of a breadcrumb trail.
type Crumb struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	Current bool   `json:"current"`
}

// Breadcrumb builds the trail for a route path such as
// "/categories/3/themes". The home page has no trail.
func Breadcrumb(routePath string) []Crumb {
	var segments []string
	for _, s := range strings.Split(routePath, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil
	}

	trail := make([]Crumb, 0, len(segments)+1)
	trail = append(trail, Crumb{Label: HomeLabel, Path: "/"})
	for i, seg := range segments {
		trail = append(trail, Crumb{
			Label:   SegmentLabel(seg),
			Path:    "/" + strings.Join(segments[:i+1], "/"),
			Current: i == len(segments)-1,
		})
	}
	return trail
}

// SegmentLabel turns a path segment into a label: dashes become spaces and
// every word starts with a capital.
func SegmentLabel(segment string) string {
	return title(strings.ReplaceAll(segment, "-", " "))
}
