package chart

// Bucket is one aggregated group in a 1-D series
type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Cell is one aggregated (row, col) pair in a heatmap grid. Intensity
// is normalized to [0,1] for color mapping.
type Cell struct {
	Row       string  `json:"row"`
	Col       string  `json:"col"`
	Value     float64 `json:"value"`
	Intensity float64 `json:"intensity"`
}

// RenderSeries is everything a renderer needs for one chart: either a
// 1-D bucket series or a 2-D heatmap grid, never both.
type RenderSeries struct {
	ChartType Type     `json:"chart_type"`
	AxisField string   `json:"axis_field,omitempty"`
	Metric    string   `json:"metric,omitempty"`
	Buckets   []Bucket `json:"buckets,omitempty"`

	RowField string   `json:"row_field,omitempty"`
	ColField string   `json:"col_field,omitempty"`
	Rows     []string `json:"rows,omitempty"`
	Cols     []string `json:"cols,omitempty"`
	Cells    []Cell   `json:"cells,omitempty"`
	MinValue float64  `json:"min_value,omitempty"`
	MaxValue float64  `json:"max_value,omitempty"`
}
