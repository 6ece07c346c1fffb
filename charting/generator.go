package charting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Generator handles chart image creation
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Palette cycles across variety series
var seriesColors = []string{
	"e74c3c", "2980b9", "27ae60", "8e44ad", "f39c12", "16a085", "7f8c8d",
}

// GenerateMetricTrend renders one PNG line chart of the metric trend, one
// series per variety.
func (g *Generator) GenerateMetricTrend(metric string, series []VarietySeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no data for metric %s", metric)
	}

	var chartSeries []chart.Series
	for i, s := range series {
		ts := chart.TimeSeries{
			Name: s.Variety,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(seriesColors[i%len(seriesColors)]),
				StrokeWidth: 2,
			},
		}
		for _, p := range s.Points {
			t, err := time.Parse("2006-01-02", p.IssueDate)
			if err != nil {
				continue
			}
			ts.XValues = append(ts.XValues, t)
			ts.YValues = append(ts.YValues, p.Value)
		}
		if len(ts.XValues) > 0 {
			chartSeries = append(chartSeries, ts)
		}
	}
	if len(chartSeries) == 0 {
		return nil, fmt.Errorf("no plottable points for metric %s", metric)
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Issue Date",
		},
		YAxis: chart.YAxis{
			Name: metric,
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	buffer := bytes.NewBuffer([]byte{})
	err := graph.Render(chart.PNG, buffer)
	return buffer.Bytes(), err
}
