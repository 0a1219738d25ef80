package weather

import (
	"fmt"
	"strings"
)

// condition is one of the four reportable weather conditions.
type condition struct {
	key   string
	label string
	value func(DailySummary) float64
}

// conditions is the canonical reporting order.
var conditions = []condition{
	{"rain", "rain", func(s DailySummary) float64 { return s.AvgRainProb }},
	{"cloudy", "cloudy skies", func(s DailySummary) float64 { return s.AvgCloudyProb }},
	{"sunny", "clear skies", func(s DailySummary) float64 { return s.AvgSunnyProb }},
	{"high_wind", "high wind", func(s DailySummary) float64 { return s.AvgHighWindProb }},
}

var conditionAliases = map[string]string{
	"rain":      "rain",
	"rainy":     "rain",
	"cloudy":    "cloudy",
	"clouds":    "cloudy",
	"sunny":     "sunny",
	"clear":     "sunny",
	"high_wind": "high_wind",
	"high wind": "high_wind",
	"wind":      "high_wind",
	"windy":     "high_wind",
}

// KnownCondition reports whether name is an accepted checklist entry.
func KnownCondition(name string) bool {
	_, ok := conditionAliases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

const noDataText = "No historical weather data was available around this date, so condition probabilities could not be estimated."

// SummaryText renders a short deterministic description of summary. Checklist
// entries are matched case-insensitively; unknown entries are ignored and an
// empty (or fully unknown) checklist mentions every condition.
func SummaryText(summary DailySummary, checklist []string, hasData bool) string {
	if !hasData {
		return noDataText
	}

	requested := make(map[string]bool, len(checklist))
	for _, item := range checklist {
		if key, ok := conditionAliases[strings.ToLower(strings.TrimSpace(item))]; ok {
			requested[key] = true
		}
	}

	top := conditions[0]
	for _, c := range conditions[1:] {
		if c.value(summary) > top.value(summary) {
			top = c
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Historically the most likely condition is %s (%.1f%% on average).", top.label, top.value(summary))
	for _, c := range conditions {
		if len(requested) > 0 && !requested[c.key] {
			continue
		}
		fmt.Fprintf(&b, " Chance of %s: %.1f%%.", c.label, c.value(summary))
	}
	return b.String()
}

// ReportInput carries every stage output needed to compose a result.
type ReportInput struct {
	Location    string
	Date        string
	Coordinates Coordinates
	Collection  Collection
	Hourly      []HourlyProbability
	Summary     DailySummary
	Confidence  ConfidenceLevel
	Checklist   []string
}

// ComposeReport assembles the AnalysisResult. HourlyProbabilities is never nil
// so it serializes as an empty list when there is no data.
func ComposeReport(in ReportInput) AnalysisResult {
	hourly := in.Hourly
	if hourly == nil {
		hourly = []HourlyProbability{}
	}

	return AnalysisResult{
		Location:            in.Location,
		Coordinates:         in.Coordinates,
		Date:                in.Date,
		Summary:             in.Summary,
		HourlyProbabilities: hourly,
		ConfidenceLevel:     in.Confidence,
		SummaryText:         SummaryText(in.Summary, in.Checklist, len(hourly) > 0),
		PlannedSamples:      in.Collection.Planned(),
		SuccessfulSamples:   in.Collection.Successes,
		DataStatus:          in.Collection.Status(),
	}
}
