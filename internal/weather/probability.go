package weather

import "sort"

// Condition thresholds.
const (
	cloudyHumidityPct = 70.0
	sunnyHumidityPct  = 60.0
	highWindMs        = 10.0
)

// hourAccumulator counts condition hits for one hour of the day. Every
// probability has its own denominator: only observations that report the
// relevant field(s) are counted.
type hourAccumulator struct {
	rain, precipSeen   int
	cloudy, humidSeen  int
	sunny, bothSeen    int
	highWind, windSeen int
}

func (a *hourAccumulator) add(o HourlyObservation) {
	if o.PrecipitationMm != nil {
		a.precipSeen++
		if *o.PrecipitationMm > 0 {
			a.rain++
		}
	}
	if o.RelativeHumidityPct != nil {
		a.humidSeen++
		if *o.RelativeHumidityPct > cloudyHumidityPct {
			a.cloudy++
		}
	}
	if o.PrecipitationMm != nil && o.RelativeHumidityPct != nil {
		a.bothSeen++
		if *o.PrecipitationMm == 0 && *o.RelativeHumidityPct < sunnyHumidityPct {
			a.sunny++
		}
	}
	if o.WindSpeedMs != nil {
		a.windSeen++
		if *o.WindSpeedMs > highWindMs {
			a.highWind++
		}
	}
}

// percent returns 0 when the field was never reported for the hour.
func percent(hits, seen int) float64 {
	if seen == 0 {
		return 0
	}
	return 100 * float64(hits) / float64(seen)
}

// CalculateHourly groups observations by UTC hour of day and returns one
// record per hour present, ascending by hour. The output depends only on the
// multiset of observations, not on their order.
func CalculateHourly(observations []HourlyObservation) []HourlyProbability {
	byHour := make(map[int]*hourAccumulator)
	for _, o := range observations {
		h := o.Timestamp.UTC().Hour()
		acc, ok := byHour[h]
		if !ok {
			acc = &hourAccumulator{}
			byHour[h] = acc
		}
		acc.add(o)
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	result := make([]HourlyProbability, 0, len(hours))
	for _, h := range hours {
		acc := byHour[h]
		result = append(result, HourlyProbability{
			Hour:         h,
			RainProb:     percent(acc.rain, acc.precipSeen),
			CloudyProb:   percent(acc.cloudy, acc.humidSeen),
			SunnyProb:    percent(acc.sunny, acc.bothSeen),
			HighWindProb: percent(acc.highWind, acc.windSeen),
		})
	}
	return result
}

// Summarize averages each probability across the hours present. An empty
// input yields an all-zero summary.
func Summarize(hourly []HourlyProbability) DailySummary {
	if len(hourly) == 0 {
		return DailySummary{}
	}

	var s DailySummary
	for _, h := range hourly {
		s.AvgRainProb += h.RainProb
		s.AvgCloudyProb += h.CloudyProb
		s.AvgSunnyProb += h.SunnyProb
		s.AvgHighWindProb += h.HighWindProb
	}

	n := float64(len(hourly))
	s.AvgRainProb /= n
	s.AvgCloudyProb /= n
	s.AvgSunnyProb /= n
	s.AvgHighWindProb /= n
	return s
}
