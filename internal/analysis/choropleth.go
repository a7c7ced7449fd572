package analysis

import (
	"sort"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// NoDataColor fills regions without a positive value.
const NoDataColor = "#ccc"

// Class is one step of the choropleth scale: values strictly above Above
// get Color.
type Class struct {
	Above float64 `json:"above"`
	Color string  `json:"color"`
}

// Scale lists the classes from the highest threshold down.
var Scale = []Class{
	{Above: 10_000_000, Color: "#084081"},
	{Above: 5_000_000, Color: "#0868ac"},
	{Above: 1_000_000, Color: "#2b8cbe"},
	{Above: 500_000, Color: "#4eb3d3"},
	{Above: 100_000, Color: "#7bccc4"},
	{Above: 0, Color: "#a8ddb5"},
}

// ColorFor returns the fill colour of a value.
func ColorFor(value float64) string {
	for _, c := range Scale {
		if value > c.Above {
			return c.Color
		}
	}
	return NoDataColor
}

// Region is one area of the map.
type Region struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Map is a choropleth for one year.
type Map struct {
	Title   string   `json:"title"`
	Years   []string `json:"years"`
	Year    string   `json:"year"`
	Regions []Region `json:"regions"`
	Scale   []Class  `json:"scale"`
}

// BuildMap classifies every region of m, sorted by name.
func BuildMap(m *upstream.MapData, year string) *Map {
	out := &Map{
		Title:   m.Title,
		Years:   m.Years,
		Year:    year,
		Regions: make([]Region, 0, len(m.Values)),
		Scale:   Scale,
	}
	if out.Years == nil {
		out.Years = []string{}
	}
	for name, v := range m.Values {
		out.Regions = append(out.Regions, Region{Name: name, Value: v, Color: ColorFor(v)})
	}
	sort.Slice(out.Regions, func(i, j int) bool { return out.Regions[i].Name < out.Regions[j].Name })
	return out
}

// Fill returns the colour of a named region, NoDataColor when the region
// has no value.
func (m *Map) Fill(name string) string {
	for _, r := range m.Regions {
		if r.Name == name {
			return r.Color
		}
	}
	return NoDataColor
}
