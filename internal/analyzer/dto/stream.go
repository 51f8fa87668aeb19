package dto

// StreamDataMarketCollector is the payload of a price collection task. An
// empty Symbols list means every active universe member plus the indices.
type StreamDataMarketCollector struct {
	Symbols    []string `json:"symbols"`
	WindowDays int      `json:"window_days"`
}

// StreamDataMarketRegime is the payload of a regime analysis task. An empty
// AnalysisDate means the latest stored trading day.
type StreamDataMarketRegime struct {
	AnalysisDate string `json:"analysis_date"`
	Notify       bool   `json:"notify"`
}

// StreamDataEventSync is the payload of an event schedule sync task.
type StreamDataEventSync struct {
	Symbols []string `json:"symbols"`
}
