package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// Axis names the label a chart groups on.
type Axis string

// Chart axes.
const (
	AxisYear  Axis = "annee"
	AxisGroup Axis = "groupe"
)

// Point is one bar of a chart: the mean of the values sharing a label.
type Point struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Chart is a bar chart ready for display.
type Chart struct {
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Axis   Axis    `json:"axis"`
	Points []Point `json:"points"`
}

// BuildChart averages the cells of a by column label for year tables and
// by row label otherwise. Integer labels such as years come first in
// ascending order, the others follow in first-appearance order. Means are
// rounded to four decimals. A missing value counts as zero.
func BuildChart(a *upstream.Analysis) *Chart {
	chart := &Chart{Title: a.Title, Type: a.Type, Axis: AxisGroup, Points: []Point{}}
	if a.Type == upstream.AnalysisYears {
		chart.Axis = AxisYear
	}

	type sum struct {
		total float64
		count int
	}
	var labels []string
	sums := make(map[string]*sum)
	for _, p := range a.Points {
		label := p.RowLabel
		if chart.Axis == AxisYear {
			label = p.ColumnLabel
		}
		s, ok := sums[label]
		if !ok {
			s = &sum{}
			sums[label] = s
			labels = append(labels, label)
		}
		if p.Value != nil {
			s.total += *p.Value
		}
		s.count++
	}

	orderLabels(labels)
	for _, label := range labels {
		s := sums[label]
		chart.Points = append(chart.Points, Point{
			Label: label,
			Mean:  round4(s.total / float64(s.count)),
			Count: s.count,
		})
	}
	return chart
}

// orderLabels moves array-index labels (canonical non-negative integers)
// ahead of the rest, sorted numerically. Other labels keep their order.
func orderLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, aIdx := indexLabel(labels[i])
		b, bIdx := indexLabel(labels[j])
		if aIdx && bIdx {
			return a < b
		}
		return aIdx && !bIdx
	})
}

func indexLabel(label string) (uint64, bool) {
	if label == "" || (len(label) > 1 && label[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(label, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
