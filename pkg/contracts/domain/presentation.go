package domain

// ColorStop is one position/color pair of a continuous color scale.
type ColorStop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// Presentation is the chart presentation configuration handed to rendering
// collaborators. It is served by value and never mutated after construction;
// treat it as an immutable record, not shared state.
type Presentation struct {
	LineColor          string      `json:"line_color"`
	MovingAverageColor string      `json:"moving_average_color"`
	SmootherColor      string      `json:"smoother_color"`
	ColorScale         []ColorStop `json:"color_scale"`
	Template           string      `json:"template"`

	LineTitle    string `json:"line_title"`
	ScatterTitle string `json:"scatter_title"`
	XAxisTitle   string `json:"x_axis_title"`
	YAxisTitle   string `json:"y_axis_title"`

	MAWindowMin     int `json:"ma_window_min"`
	MAWindowMax     int `json:"ma_window_max"`
	MAWindowDefault int `json:"ma_window_default"`
	MedianWindow    int `json:"median_window"`
	SmootherMinRows int `json:"smoother_min_rows"`
}

// DefaultPresentation returns the presentation record for the Lebanon
// external debt dashboard: the magenta brand color, the magenta-to-turquoise
// scatter gradient, and the smoothing window limits the charts were designed
// around.
func DefaultPresentation() Presentation {
	return Presentation{
		LineColor:          "#a429aa",
		MovingAverageColor: "#6e1a70",
		SmootherColor:      "#2a9da0",
		ColorScale: []ColorStop{
			{Position: 0.00, Color: "#a429aa"},
			{Position: 0.25, Color: "#c868c9"},
			{Position: 0.50, Color: "#e8c6e9"},
			{Position: 0.75, Color: "#66d7d1"},
			{Position: 1.00, Color: "#11c7c7"},
		},
		Template:        "plotly_white",
		LineTitle:       "Lebanon External Debt Over Time (USD)",
		ScatterTitle:    "Scatter of Lebanon External Debt (USD)",
		XAxisTitle:      "Year",
		YAxisTitle:      "External Debt (Current USD)",
		MAWindowMin:     3,
		MAWindowMax:     15,
		MAWindowDefault: 5,
		MedianWindow:    7,
		SmootherMinRows: 5,
	}
}
