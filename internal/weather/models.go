package weather

import (
	"fmt"
	"math"
	"time"
)

// Coordinates is a resolved latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects NaN/Inf and out-of-range coordinates.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidInput)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90,90]", ErrInvalidInput, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180,180]", ErrInvalidInput, c.Longitude)
	}
	return nil
}

// SampleKey identifies one historical query point.
type SampleKey struct {
	Year      int `json:"year"`
	DayOffset int `json:"dayOffset"`
}

// SamplePoint is a SampleKey resolved to a concrete UTC calendar day.
type SamplePoint struct {
	Key  SampleKey
	Date time.Time // midnight UTC
}

// HourlyObservation is a single hour's reading at one sample point.
// A nil field means the provider did not report it; it is never the same as zero.
type HourlyObservation struct {
	Timestamp           time.Time // always UTC, hour resolution
	PrecipitationMm     *float64
	RelativeHumidityPct *float64
	WindSpeedMs         *float64
}

// FailureReason classifies why a sample point could not be fetched.
type FailureReason string

const (
	ReasonTimeout        FailureReason = "timeout"
	ReasonRateLimited    FailureReason = "rate_limited"
	ReasonInvalidRequest FailureReason = "invalid_request"
	ReasonProviderError  FailureReason = "provider_error"
	ReasonUnknown        FailureReason = "unknown"
)

// FetchFailure is the Failure arm of a FetchOutcome.
type FetchFailure struct {
	Reason FailureReason
	Err    error
}

func (f *FetchFailure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// FetchOutcome is the result for exactly one planned sample point.
// Failure is nil on success.
type FetchOutcome struct {
	Point        SamplePoint
	Observations []HourlyObservation
	Failure      *FetchFailure
}

// OK reports whether the outcome is a success.
func (o FetchOutcome) OK() bool {
	return o.Failure == nil
}

// HourlyProbability holds condition probabilities (0-100) for one hour of the day.
type HourlyProbability struct {
	Hour         int     `json:"hour"`
	RainProb     float64 `json:"rain_prob"`
	CloudyProb   float64 `json:"cloudy_prob"`
	SunnyProb    float64 `json:"sunny_prob"`
	HighWindProb float64 `json:"high_wind_prob"`
}

// DailySummary is the mean of the hourly probabilities.
type DailySummary struct {
	AvgRainProb     float64 `json:"avg_rain_prob"`
	AvgCloudyProb   float64 `json:"avg_cloudy_prob"`
	AvgSunnyProb    float64 `json:"avg_sunny_prob"`
	AvgHighWindProb float64 `json:"avg_high_wind_prob"`
}

// ConfidenceLevel is a coarse reliability rating of a result.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "Low"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceHigh   ConfidenceLevel = "High"
)

// Ordinal orders levels Low < Medium < High.
func (c ConfidenceLevel) Ordinal() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// DataStatus reports how much of the planned window produced data.
type DataStatus string

const (
	DataComplete    DataStatus = "complete"
	DataPartial     DataStatus = "partial"
	DataUnavailable DataStatus = "unavailable"
)

// AnalysisResult is the engine's sole output.
type AnalysisResult struct {
	Location            string              `json:"location"`
	Coordinates         Coordinates         `json:"coordinates"`
	Date                string              `json:"date"`
	Summary             DailySummary        `json:"summary"`
	HourlyProbabilities []HourlyProbability `json:"hourly_probabilities"`
	ConfidenceLevel     ConfidenceLevel     `json:"confidence_level"`
	SummaryText         string              `json:"summary_text"`
	PlannedSamples      int                 `json:"planned_samples"`
	SuccessfulSamples   int                 `json:"successful_samples"`
	DataStatus          DataStatus          `json:"data_status"`
	ChartBase64         string              `json:"chart_base64,omitempty"`
}

// AnalysisRequest is the input of Service.Analyze.
type AnalysisRequest struct {
	Location        string
	StartDate       string // YYYY-MM-DD
	EndDate         string // optional; must be empty or equal to StartDate
	Conditions      []string
	ActivityProfile string
}
